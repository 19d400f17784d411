package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/timeutil"
)

// HolidayService manages the org-level non-working days consumed by the
// monthly report.
type HolidayService struct {
	db *gorm.DB
}

func NewHolidayService(db *gorm.DB) *HolidayService {
	return &HolidayService{db: db}
}

func (s *HolidayService) List(orgID uint) ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := s.db.Where("organisation_id = ?", orgID).
		Order("date asc").
		Find(&holidays).Error
	return holidays, err
}

func (s *HolidayService) Create(orgID uint, name string, date time.Time, recurring bool) (*models.Holiday, error) {
	if name == "" {
		return nil, apperr.Validation("holiday name is required")
	}
	holiday := models.Holiday{
		OrganisationID: orgID,
		Name:           name,
		Date:           timeutil.StartOfDay(date),
		Recurring:      recurring,
	}
	if err := s.db.Create(&holiday).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (s *HolidayService) Delete(orgID, id uint) error {
	var holiday models.Holiday
	err := s.db.Where("id = ? AND organisation_id = ?", id, orgID).First(&holiday).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("holiday")
	}
	if err != nil {
		return err
	}
	return s.db.Delete(&holiday).Error
}
