package services

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/timeutil"
)

// TimesheetService owns the timesheet lifecycle: creation against the
// organisation's week policy, the DRAFT/SUBMITTED/APPROVED/REJECTED state
// machine, entry aggregation and the copy-previous-week reconciler.
type TimesheetService struct {
	db   *gorm.DB
	team *TeamService
	log  zerolog.Logger
}

func NewTimesheetService(db *gorm.DB, team *TeamService, log zerolog.Logger) *TimesheetService {
	return &TimesheetService{db: db, team: team, log: log}
}

// findOwned resolves a timesheet by (id, owner, org). A non-owner or
// cross-org id is indistinguishable from a missing one.
func findOwned(tx *gorm.DB, orgID, userID, id uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := tx.Where("id = ? AND user_id = ? AND organisation_id = ?", id, userID, orgID).
		First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("timesheet")
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// List returns the owner's timesheets newest week first, with a total
// counted under the same filter in the same transaction.
func (s *TimesheetService) List(orgID, userID uint, p PageParams) ([]models.Timesheet, ListMeta, error) {
	page, limit, offset := p.normalize()
	var sheets []models.Timesheet
	var total int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Timesheet{}).
			Where("user_id = ? AND organisation_id = ?", userID, orgID)
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("week_start_date desc").
			Offset(offset).Limit(limit).
			Find(&sheets).Error
	})
	return sheets, ListMeta{Total: total, Page: page, Limit: limit}, err
}

// Get returns an owned timesheet with its entries and their projects.
func (s *TimesheetService) Get(orgID, userID, id uint) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := s.db.
		Preload("TimeEntries", func(db *gorm.DB) *gorm.DB { return db.Order("time_entries.created_at asc") }).
		Preload("TimeEntries.Project").
		Where("id = ? AND user_id = ? AND organisation_id = ?", id, userID, orgID).
		First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("timesheet")
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// Create opens a DRAFT timesheet for the week containing weekStartInput,
// normalized to the organisation's week anchor. The existence pre-check
// runs inside the creating transaction; the composite unique index is the
// backstop when two creates for the same week race past it.
func (s *TimesheetService) Create(orgID, userID uint, weekStartInput time.Time) (*models.Timesheet, error) {
	settings, err := settingsFor(s.db, orgID)
	if err != nil {
		return nil, err
	}

	weekStart := timeutil.WeekStart(weekStartInput, settings.WorkWeekStart)
	weekEnd := timeutil.WeekEnd(weekStart)

	if !settings.AllowBackdated && timeutil.IsPast(weekStart) {
		return nil, apperr.BackdatingNotAllowed()
	}

	ts := models.Timesheet{
		OrganisationID: orgID,
		UserID:         userID,
		WeekStartDate:  weekStart,
		WeekEndDate:    weekEnd,
		Status:         models.StatusDraft,
	}

	conflict := apperr.Conflict("a timesheet already exists for this week")
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Timesheet{}).
			Where("user_id = ? AND organisation_id = ? AND week_start_date = ?", userID, orgID, weekStart).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict
		}
		return translateDuplicate(tx.Create(&ts).Error, conflict)
	})
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

// Update changes the week of a DRAFT timesheet. The new date is normalized
// the same way as on create; nothing else is mutable pre-submission.
func (s *TimesheetService) Update(orgID, userID, id uint, weekStartInput *time.Time) (*models.Timesheet, error) {
	var ts *models.Timesheet
	conflict := apperr.Conflict("a timesheet already exists for this week")

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ts, err = findOwned(tx, orgID, userID, id)
		if err != nil {
			return err
		}
		if ts.Status != models.StatusDraft {
			return apperr.ImmutableTimesheet()
		}
		if weekStartInput == nil {
			return nil
		}

		settings, err := settingsFor(tx, orgID)
		if err != nil {
			return err
		}
		ts.WeekStartDate = timeutil.WeekStart(*weekStartInput, settings.WorkWeekStart)
		ts.WeekEndDate = timeutil.WeekEnd(ts.WeekStartDate)
		return translateDuplicate(tx.Save(ts).Error, conflict)
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// Delete removes a DRAFT timesheet and its entries.
func (s *TimesheetService) Delete(orgID, userID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ts, err := findOwned(tx, orgID, userID, id)
		if err != nil {
			return err
		}
		if ts.Status != models.StatusDraft {
			return apperr.ImmutableTimesheet()
		}
		if err := tx.Where("timesheet_id = ?", ts.ID).Delete(&models.TimeEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(ts).Error
	})
}

// Submit moves a DRAFT or REJECTED timesheet to SUBMITTED.
func (s *TimesheetService) Submit(orgID, userID, id uint) (*models.Timesheet, error) {
	var ts *models.Timesheet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ts, err = findOwned(tx, orgID, userID, id)
		if err != nil {
			return err
		}
		if !ts.Editable() {
			return apperr.InvalidTransition(string(ts.Status), string(models.StatusSubmitted))
		}
		ts.Status = models.StatusSubmitted
		return tx.Save(ts).Error
	})
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// CopyResult is the outcome of CopyPreviousWeek. SkippedCount is the number
// of source entries dropped because the employee lost the project
// assignment since the source week.
type CopyResult struct {
	Timesheet    *models.Timesheet `json:"timesheet"`
	SkippedCount int               `json:"skipped_count"`
}

// CopyPreviousWeek clones the most recent APPROVED or SUBMITTED timesheet
// ("most recent" by week, not by creation time) into the target week as a
// new DRAFT. Whether day hours carry over is the organisation's
// copy-previous-hours policy; with it off only project, billable flag and
// descriptions are copied. With force, an existing DRAFT for the target
// week is overwritten; a submitted or decided one never is.
func (s *TimesheetService) CopyPreviousWeek(orgID, userID uint, targetWeekInput time.Time, role models.Role, force bool) (*CopyResult, error) {
	settings, err := settingsFor(s.db, orgID)
	if err != nil {
		return nil, err
	}
	if !settings.AllowCopyWeek {
		return nil, apperr.CopyWeekDisabled()
	}

	var previous models.Timesheet
	err = s.db.Preload("TimeEntries").
		Where("user_id = ? AND organisation_id = ? AND status IN ?",
			userID, orgID, []models.TimesheetStatus{models.StatusApproved, models.StatusSubmitted}).
		Order("week_start_date desc").
		First(&previous).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("previous submitted or approved timesheet")
	}
	if err != nil {
		return nil, err
	}

	weekStart := timeutil.WeekStart(targetWeekInput, settings.WorkWeekStart)
	weekEnd := timeutil.WeekEnd(weekStart)

	entries := previous.TimeEntries
	skipped := 0
	if role == models.RoleEmployee {
		assignedIDs, err := s.team.AssignedProjectIDs(orgID, userID)
		if err != nil {
			return nil, err
		}
		assigned := uintSet(assignedIDs)
		kept := entries[:0:0]
		for _, e := range entries {
			if _, ok := assigned[e.ProjectID]; ok {
				kept = append(kept, e)
			}
		}
		skipped = len(entries) - len(kept)
		entries = kept
	}

	clones := make([]models.TimeEntry, 0, len(entries))
	for _, e := range entries {
		clone := models.TimeEntry{
			ProjectID: e.ProjectID,
			Billable:  e.Billable,
		}
		for i := 0; i < models.DaysPerWeek; i++ {
			if settings.CopyPreviousHours {
				clone.SetDayHours(i, e.DayHours(i))
			}
			clone.SetDayDesc(i, e.DayDesc(i))
		}
		clone.Recalculate()
		clones = append(clones, clone)
	}

	totalHours := 0.0
	billableHours := 0.0
	for _, c := range clones {
		totalHours += c.TotalHours
		if c.Billable {
			billableHours += c.TotalHours
		}
	}

	conflict := apperr.Conflict("a timesheet already exists for the target week")
	var result *models.Timesheet

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Timesheet
		err := tx.Where("user_id = ? AND organisation_id = ? AND week_start_date = ?", userID, orgID, weekStart).
			First(&existing).Error
		switch {
		case err == nil:
			if !force {
				return conflict
			}
			if existing.Status != models.StatusDraft {
				return apperr.ImmutableTimesheet()
			}
			// Overwrite: replace the draft's entries and totals in place.
			if err := tx.Where("timesheet_id = ?", existing.ID).Delete(&models.TimeEntry{}).Error; err != nil {
				return err
			}
			for i := range clones {
				clones[i].TimesheetID = existing.ID
				if err := tx.Create(&clones[i]).Error; err != nil {
					return err
				}
			}
			existing.TotalHours = totalHours
			existing.BillableHours = billableHours
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result = &existing
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			ts := models.Timesheet{
				OrganisationID: orgID,
				UserID:         userID,
				WeekStartDate:  weekStart,
				WeekEndDate:    weekEnd,
				Status:         models.StatusDraft,
				TotalHours:     totalHours,
				BillableHours:  billableHours,
			}
			if err := translateDuplicate(tx.Create(&ts).Error, conflict); err != nil {
				return err
			}
			for i := range clones {
				clones[i].TimesheetID = ts.ID
				if err := tx.Create(&clones[i]).Error; err != nil {
					return err
				}
			}
			result = &ts
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	result.TimeEntries = clones
	return &CopyResult{Timesheet: result, SkippedCount: skipped}, nil
}
