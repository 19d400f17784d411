package services

import (
	"errors"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/timeutil"
)

// SettingsService reads and writes per-organisation timesheet policy.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

type UpdateSettingsInput struct {
	WorkWeekStart     *string
	MaxHoursPerDay    *float64
	MaxHoursPerWeek   *float64
	AllowBackdated    *bool
	MandatoryDesc     *bool
	AllowCopyWeek     *bool
	CopyPreviousHours *bool
}

// Get returns the stored settings row for the organisation. Unlike the
// internal fallback used by validation, a missing row here is NotFound so
// an admin can tell "unset" from "defaults".
func (s *SettingsService) Get(orgID uint) (*models.OrgSettings, error) {
	var settings models.OrgSettings
	err := s.db.Where("organisation_id = ?", orgID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("organisation settings")
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// Update upserts the settings row, creating it from defaults when the
// organisation does not have one yet.
func (s *SettingsService) Update(orgID uint, in UpdateSettingsInput) (*models.OrgSettings, error) {
	if in.WorkWeekStart != nil &&
		*in.WorkWeekStart != timeutil.WeekStartMonday && *in.WorkWeekStart != timeutil.WeekStartSunday {
		return nil, apperr.Validation("work week start must be monday or sunday")
	}
	if in.MaxHoursPerDay != nil && (*in.MaxHoursPerDay <= 0 || *in.MaxHoursPerDay > 24) {
		return nil, apperr.Validation("max hours per day must be between 0 and 24")
	}

	var settings models.OrgSettings
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("organisation_id = ?", orgID).First(&settings).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings = models.DefaultSettings(orgID)
		} else if err != nil {
			return err
		}

		if in.WorkWeekStart != nil {
			settings.WorkWeekStart = *in.WorkWeekStart
		}
		if in.MaxHoursPerDay != nil {
			settings.MaxHoursPerDay = *in.MaxHoursPerDay
		}
		if in.MaxHoursPerWeek != nil {
			settings.MaxHoursPerWeek = *in.MaxHoursPerWeek
		}
		if in.AllowBackdated != nil {
			settings.AllowBackdated = *in.AllowBackdated
		}
		if in.MandatoryDesc != nil {
			settings.MandatoryDesc = *in.MandatoryDesc
		}
		if in.AllowCopyWeek != nil {
			settings.AllowCopyWeek = *in.AllowCopyWeek
		}
		if in.CopyPreviousHours != nil {
			settings.CopyPreviousHours = *in.CopyPreviousHours
		}
		return tx.Save(&settings).Error
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
