package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

// DayPatch is the per-day slice of an entry mutation. Nil fields keep the
// existing value; on create they mean zero hours / empty description.
type DayPatch struct {
	Hours *float64
	Desc  *string
}

// EntryInput creates a new time entry. Days are ordered monday..sunday.
// TotalHours is never accepted as input; it is derived from the days.
type EntryInput struct {
	ProjectID uint
	Billable  *bool
	Days      [models.DaysPerWeek]DayPatch
}

// EntryPatch partially updates an entry. Unset fields retain their value.
type EntryPatch struct {
	ProjectID *uint
	Billable  *bool
	Days      [models.DaysPerWeek]DayPatch
}

// editableParent resolves the parent timesheet under the owner scope and
// asserts it is still in an editable state.
func editableParent(tx *gorm.DB, orgID, userID, timesheetID uint) (*models.Timesheet, error) {
	ts, err := findOwned(tx, orgID, userID, timesheetID)
	if err != nil {
		return nil, err
	}
	if !ts.Editable() {
		return nil, apperr.ImmutableTimesheet()
	}
	return ts, nil
}

// recalculateTotals rewrites the parent's derived hour columns from its
// entries. Runs inside the same transaction as the entry mutation so the
// invariant cannot be observed broken.
func recalculateTotals(tx *gorm.DB, timesheetID uint) error {
	var entries []models.TimeEntry
	if err := tx.Where("timesheet_id = ?", timesheetID).Find(&entries).Error; err != nil {
		return err
	}

	total := 0.0
	billable := 0.0
	for _, e := range entries {
		total += e.TotalHours
		if e.Billable {
			billable += e.TotalHours
		}
	}
	return tx.Model(&models.Timesheet{}).Where("id = ?", timesheetID).
		Updates(map[string]interface{}{"total_hours": total, "billable_hours": billable}).Error
}

// assertProjectAssigned enforces the employee-side project guard.
func (s *TimesheetService) assertProjectAssigned(tx *gorm.DB, orgID, userID, projectID uint) error {
	var count int64
	err := tx.Model(&models.ProjectEmployee{}).
		Where("project_id = ? AND employee_id = ?", projectID, userID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotAssigned()
	}
	return nil
}

// validateEntryPolicy checks the merged day values of an entry against the
// organisation's policy: per-day hour cap and, when required, a non-blank
// description for every day with logged hours.
func validateEntryPolicy(entry *models.TimeEntry, settings models.OrgSettings) error {
	for i := 0; i < models.DaysPerWeek; i++ {
		hours := entry.DayHours(i)
		if hours < 0 {
			return apperr.Validation("hours cannot be negative")
		}
		if hours > settings.MaxHoursPerDay {
			return apperr.MaxHoursExceeded(settings.MaxHoursPerDay)
		}
		if settings.MandatoryDesc && hours > 0 && strings.TrimSpace(entry.DayDesc(i)) == "" {
			return apperr.DescriptionRequired()
		}
	}
	return nil
}

// ListEntries returns the entries of an owned timesheet in creation order.
func (s *TimesheetService) ListEntries(orgID, userID, timesheetID uint) ([]models.TimeEntry, error) {
	if _, err := findOwned(s.db, orgID, userID, timesheetID); err != nil {
		return nil, err
	}
	var entries []models.TimeEntry
	err := s.db.Preload("Project").
		Where("timesheet_id = ?", timesheetID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}

// CreateEntry adds an entry to a DRAFT or REJECTED timesheet and
// recomputes the parent's totals in the same transaction.
func (s *TimesheetService) CreateEntry(orgID, userID, timesheetID uint, in EntryInput, role models.Role) (*models.TimeEntry, error) {
	var entry models.TimeEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editableParent(tx, orgID, userID, timesheetID); err != nil {
			return err
		}

		settings, err := settingsFor(tx, orgID)
		if err != nil {
			return err
		}

		var project models.Project
		err = tx.Where("id = ? AND organisation_id = ?", in.ProjectID, orgID).First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("project")
		}
		if err != nil {
			return err
		}

		if role == models.RoleEmployee {
			if err := s.assertProjectAssigned(tx, orgID, userID, in.ProjectID); err != nil {
				return err
			}
		}

		entry = models.TimeEntry{
			TimesheetID: timesheetID,
			ProjectID:   in.ProjectID,
			Billable:    true,
		}
		if in.Billable != nil {
			entry.Billable = *in.Billable
		}
		for i, day := range in.Days {
			if day.Hours != nil {
				entry.SetDayHours(i, *day.Hours)
			}
			if day.Desc != nil {
				entry.SetDayDesc(i, *day.Desc)
			}
		}
		entry.Recalculate()

		if err := validateEntryPolicy(&entry, settings); err != nil {
			return err
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return recalculateTotals(tx, timesheetID)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateEntry merges the patch over the stored entry, re-validating the
// project assignment only when the project changes, then recomputes the
// entry total and the parent totals.
func (s *TimesheetService) UpdateEntry(orgID, userID, timesheetID, entryID uint, patch EntryPatch, role models.Role) (*models.TimeEntry, error) {
	var entry models.TimeEntry

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editableParent(tx, orgID, userID, timesheetID); err != nil {
			return err
		}

		err := tx.Where("id = ? AND timesheet_id = ?", entryID, timesheetID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("time entry")
		}
		if err != nil {
			return err
		}

		if patch.ProjectID != nil && *patch.ProjectID != entry.ProjectID {
			var project models.Project
			err = tx.Where("id = ? AND organisation_id = ?", *patch.ProjectID, orgID).First(&project).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("project")
			}
			if err != nil {
				return err
			}
			if role == models.RoleEmployee {
				if err := s.assertProjectAssigned(tx, orgID, userID, *patch.ProjectID); err != nil {
					return err
				}
			}
			entry.ProjectID = *patch.ProjectID
		}
		if patch.Billable != nil {
			entry.Billable = *patch.Billable
		}
		for i, day := range patch.Days {
			if day.Hours != nil {
				entry.SetDayHours(i, *day.Hours)
			}
			if day.Desc != nil {
				entry.SetDayDesc(i, *day.Desc)
			}
		}
		entry.Recalculate()

		settings, err := settingsFor(tx, orgID)
		if err != nil {
			return err
		}
		if err := validateEntryPolicy(&entry, settings); err != nil {
			return err
		}

		if err := tx.Save(&entry).Error; err != nil {
			return err
		}
		return recalculateTotals(tx, timesheetID)
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry and recomputes the parent totals.
func (s *TimesheetService) DeleteEntry(orgID, userID, timesheetID, entryID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := editableParent(tx, orgID, userID, timesheetID); err != nil {
			return err
		}

		var entry models.TimeEntry
		err := tx.Where("id = ? AND timesheet_id = ?", entryID, timesheetID).First(&entry).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("time entry")
		}
		if err != nil {
			return err
		}

		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return recalculateTotals(tx, timesheetID)
	})
}
