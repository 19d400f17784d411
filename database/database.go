package database

import (
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timesheet/models"
)

// New opens a postgres connection and migrates the schema. TranslateError
// is on so unique-index violations surface as gorm.ErrDuplicatedKey, which
// the services map to conflict errors.
func New(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates all tables. Shared with the test fixtures.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Organisation{},
		&models.OrgSettings{},
		&models.User{},
		&models.ManagerEmployee{},
		&models.Project{},
		&models.ProjectManager{},
		&models.ProjectEmployee{},
		&models.Timesheet{},
		&models.TimeEntry{},
		&models.Notification{},
		&models.Holiday{},
	)
}

// Seed bootstraps a default organisation with settings and an admin user
// when the database is empty, so a fresh deployment is usable immediately.
func Seed(db *gorm.DB, log zerolog.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		org := models.Organisation{Name: "Default Organisation"}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}

		settings := models.DefaultSettings(org.ID)
		if err := tx.Create(&settings).Error; err != nil {
			return err
		}

		admin := models.User{
			OrganisationID: org.ID,
			Name:           "Administrator",
			Email:          "admin@example.com",
			PasswordHash:   string(hashedPassword),
			Role:           models.RoleAdmin,
			Status:         models.UserActive,
		}
		if err := tx.Create(&admin).Error; err != nil {
			return err
		}

		log.Info().Str("email", admin.Email).Msg("default admin user created")
		return nil
	})
}
