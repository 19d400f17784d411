package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"timesheet/database"
	"timesheet/models"
)

// newTestDB opens a fresh in-memory database per test. A single connection
// keeps the database alive and serializes concurrent test goroutines.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func createOrg(t *testing.T, db *gorm.DB) *models.Organisation {
	t.Helper()
	org := models.Organisation{Name: "Acme"}
	if err := db.Create(&org).Error; err != nil {
		t.Fatalf("create org: %v", err)
	}
	settings := models.DefaultSettings(org.ID)
	if err := db.Create(&settings).Error; err != nil {
		t.Fatalf("create settings: %v", err)
	}
	return &org
}

func updateSettings(t *testing.T, db *gorm.DB, orgID uint, mutate func(*models.OrgSettings)) {
	t.Helper()
	var settings models.OrgSettings
	if err := db.Where("organisation_id = ?", orgID).First(&settings).Error; err != nil {
		t.Fatalf("load settings: %v", err)
	}
	mutate(&settings)
	if err := db.Save(&settings).Error; err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

var userSeq int

func createUser(t *testing.T, db *gorm.DB, orgID uint, role models.Role) *models.User {
	t.Helper()
	userSeq++
	user := models.User{
		OrganisationID: orgID,
		Name:           fmt.Sprintf("User %d", userSeq),
		Email:          fmt.Sprintf("user%d@example.com", userSeq),
		PasswordHash:   "x",
		Role:           role,
		Status:         models.UserActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}

var projectSeq int

func createProject(t *testing.T, db *gorm.DB, orgID uint) *models.Project {
	t.Helper()
	projectSeq++
	project := models.Project{
		OrganisationID: orgID,
		Code:           fmt.Sprintf("PRJ-%d", projectSeq),
		Name:           fmt.Sprintf("Project %d", projectSeq),
		Status:         models.ProjectActive,
	}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	return &project
}

func assignToProject(t *testing.T, db *gorm.DB, projectID, employeeID uint) {
	t.Helper()
	edge := models.ProjectEmployee{ProjectID: projectID, EmployeeID: employeeID}
	if err := db.Create(&edge).Error; err != nil {
		t.Fatalf("assign employee to project: %v", err)
	}
}

func addReport(t *testing.T, db *gorm.DB, managerID, employeeID uint) {
	t.Helper()
	edge := models.ManagerEmployee{ManagerID: managerID, EmployeeID: employeeID}
	if err := db.Create(&edge).Error; err != nil {
		t.Fatalf("add manager edge: %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }

func TestPageParamsNormalize(t *testing.T) {
	tests := []struct {
		name       string
		in         PageParams
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"zero values use defaults", PageParams{}, 1, 20, 0},
		{"negative page clamps to first", PageParams{Page: -3, Limit: 10}, 1, 10, 0},
		{"limit capped at max", PageParams{Page: 2, Limit: 500}, 2, 100, 100},
		{"normal paging", PageParams{Page: 3, Limit: 25}, 3, 25, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, offset := tt.in.normalize()
			if page != tt.wantPage || limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("normalize() = (%d, %d, %d), want (%d, %d, %d)",
					page, limit, offset, tt.wantPage, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
