package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/timeutil"
)

// ApprovalService transitions SUBMITTED timesheets to APPROVED or
// REJECTED. A MANAGER only sees and decides timesheets of direct reports;
// an ADMIN acts org-wide. Nobody decides their own sheet.
type ApprovalService struct {
	db            *gorm.DB
	team          *TeamService
	notifications *NotificationService
	log           zerolog.Logger
}

func NewApprovalService(db *gorm.DB, team *TeamService, notifications *NotificationService, log zerolog.Logger) *ApprovalService {
	return &ApprovalService{db: db, team: team, notifications: notifications, log: log}
}

// scopeOwnerIDs resolves the owner-id filter for the actor: nil means
// unrestricted (ADMIN); otherwise the query is limited to the returned
// set, which for a manager with no reports is empty and matches nothing.
func (s *ApprovalService) scopeOwnerIDs(orgID, actorID uint, role models.Role) ([]uint, error) {
	if role == models.RoleAdmin {
		return nil, nil
	}
	ids, err := s.team.DirectReportIDs(orgID, actorID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

func scopedQuery(tx *gorm.DB, orgID uint, ownerIDs []uint) *gorm.DB {
	q := tx.Model(&models.Timesheet{}).Where("organisation_id = ?", orgID)
	if ownerIDs != nil {
		q = q.Where("user_id IN ?", ownerIDs)
	}
	return q
}

// ListPending returns SUBMITTED timesheets in the actor's scope, oldest
// update first so long-waiting sheets surface at the top.
func (s *ApprovalService) ListPending(orgID, actorID uint, role models.Role, p PageParams) ([]models.Timesheet, ListMeta, error) {
	ownerIDs, err := s.scopeOwnerIDs(orgID, actorID, role)
	if err != nil {
		return nil, ListMeta{}, err
	}

	page, limit, offset := p.normalize()
	var sheets []models.Timesheet
	var total int64

	err = s.db.Transaction(func(tx *gorm.DB) error {
		q := scopedQuery(tx, orgID, ownerIDs).Where("status = ?", models.StatusSubmitted)
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.
			Preload("User").
			Preload("TimeEntries").
			Preload("TimeEntries.Project").
			Order("updated_at asc").
			Offset(offset).Limit(limit).
			Find(&sheets).Error
	})
	return sheets, ListMeta{Total: total, Page: page, Limit: limit}, err
}

// Stats summarizes the actor's approval queue.
type Stats struct {
	Pending          int64   `json:"pending"`
	ApprovedThisWeek int64   `json:"approved_this_week"`
	TeamHours        float64 `json:"team_hours"`
	TeamMembers      int64   `json:"team_members"`
}

// Stats computes queue counts under the actor's scope. The "this week"
// boundary is always monday-anchored, independent of the organisation's
// timesheet week setting.
func (s *ApprovalService) Stats(orgID, actorID uint, role models.Role) (*Stats, error) {
	ownerIDs, err := s.scopeOwnerIDs(orgID, actorID, role)
	if err != nil {
		return nil, err
	}

	weekStart := timeutil.CurrentWeekStart()
	var stats Stats

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := scopedQuery(tx, orgID, ownerIDs).
			Where("status = ?", models.StatusSubmitted).
			Count(&stats.Pending).Error; err != nil {
			return err
		}

		if err := scopedQuery(tx, orgID, ownerIDs).
			Where("status = ? AND approved_at >= ?", models.StatusApproved, weekStart).
			Count(&stats.ApprovedThisWeek).Error; err != nil {
			return err
		}

		var teamHours *float64
		if err := scopedQuery(tx, orgID, ownerIDs).
			Where("status IN ?", []models.TimesheetStatus{models.StatusSubmitted, models.StatusApproved}).
			Select("SUM(total_hours)").
			Scan(&teamHours).Error; err != nil {
			return err
		}
		if teamHours != nil {
			stats.TeamHours = *teamHours
		}

		if role == models.RoleAdmin {
			return tx.Model(&models.User{}).
				Where("organisation_id = ? AND status = ?", orgID, models.UserActive).
				Count(&stats.TeamMembers).Error
		}
		stats.TeamMembers = int64(len(ownerIDs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// decide runs the shared guard chain for approve/reject: resolve by
// (id, org), refuse self-decision, require the direct-report edge for
// managers, require SUBMITTED.
func (s *ApprovalService) decide(tx *gorm.DB, orgID, actorID, timesheetID uint, role models.Role, to models.TimesheetStatus, action string) (*models.Timesheet, error) {
	var ts models.Timesheet
	err := tx.Where("id = ? AND organisation_id = ?", timesheetID, orgID).First(&ts).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("timesheet")
	}
	if err != nil {
		return nil, err
	}

	if ts.UserID == actorID {
		return nil, apperr.SelfApprovalForbidden(action)
	}
	if role == models.RoleManager {
		// The guard must run on tx: the precondition read stays in the
		// deciding transaction, and a second pool connection would deadlock
		// a single-connection pool.
		if err := assertDirectReport(tx, orgID, actorID, ts.UserID); err != nil {
			return nil, err
		}
	}
	if ts.Status != models.StatusSubmitted {
		return nil, apperr.InvalidTransition(string(ts.Status), string(to))
	}
	return &ts, nil
}

// transition flips the status with a guard on the current value. A racing
// decider that changed the status first makes this affect zero rows, which
// surfaces as InvalidTransition and rolls the loser back.
func transition(tx *gorm.DB, id uint, to models.TimesheetStatus, updates map[string]interface{}) error {
	updates["status"] = to
	res := tx.Model(&models.Timesheet{}).
		Where("id = ? AND status = ?", id, models.StatusSubmitted).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var current models.Timesheet
		if err := tx.First(&current, id).Error; err != nil {
			return err
		}
		return apperr.InvalidTransition(string(current.Status), string(to))
	}
	return nil
}

// Approve finalizes a SUBMITTED timesheet. Each entry's hours accrue onto
// its project's used-hours ledger in the same transaction; APPROVED is
// terminal so the accrual can never double-apply or be reversed.
func (s *ApprovalService) Approve(orgID, actorID, timesheetID uint, role models.Role) (*models.Timesheet, error) {
	var ts *models.Timesheet

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ts, err = s.decide(tx, orgID, actorID, timesheetID, role, models.StatusApproved, "approve")
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := transition(tx, ts.ID, models.StatusApproved, map[string]interface{}{
			"approved_by_id": actorID,
			"approved_at":    now,
		}); err != nil {
			return err
		}
		ts.Status = models.StatusApproved
		ts.ApprovedByID = &actorID
		ts.ApprovedAt = &now

		var entries []models.TimeEntry
		if err := tx.Where("timesheet_id = ?", ts.ID).Find(&entries).Error; err != nil {
			return err
		}
		for _, e := range entries {
			if e.TotalHours == 0 {
				continue
			}
			if err := tx.Model(&models.Project{}).
				Where("id = ?", e.ProjectID).
				UpdateColumn("used_hours", gorm.Expr("used_hours + ?", e.TotalHours)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ts.UserID, models.NotifyApproved, fmt.Sprintf(
		"Your timesheet for week starting %s has been approved.", timeutil.DateString(ts.WeekStartDate)))
	return ts, nil
}

// Reject sends a SUBMITTED timesheet back to its owner with a reason. The
// sheet re-admits edits and may be re-submitted.
func (s *ApprovalService) Reject(orgID, actorID, timesheetID uint, reason string, role models.Role) (*models.Timesheet, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperr.Validation("rejection reason is required")
	}

	var ts *models.Timesheet
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		ts, err = s.decide(tx, orgID, actorID, timesheetID, role, models.StatusRejected, "reject")
		if err != nil {
			return err
		}

		if err := transition(tx, ts.ID, models.StatusRejected, map[string]interface{}{
			"rejected_reason": reason,
		}); err != nil {
			return err
		}
		ts.Status = models.StatusRejected
		ts.RejectedReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ts.UserID, models.NotifyRejected, fmt.Sprintf(
		"Your timesheet for week starting %s was rejected. Reason: %s",
		timeutil.DateString(ts.WeekStartDate), reason))
	return ts, nil
}

// notifyOwner runs after the deciding transaction committed; a failed
// notification never rolls back the decision.
func (s *ApprovalService) notifyOwner(userID uint, typ models.NotificationType, message string) {
	if err := s.notifications.Create(userID, typ, message); err != nil {
		s.log.Error().Err(err).Uint("user_id", userID).Str("type", string(typ)).
			Msg("failed to create notification")
	}
}
