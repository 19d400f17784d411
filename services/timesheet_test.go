package services

import (
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/timeutil"
)

func newTimesheetFixture(t *testing.T) (*gorm.DB, *TimesheetService, *models.Organisation, *models.User) {
	t.Helper()
	db := newTestDB(t)
	svc := NewTimesheetService(db, NewTeamService(db), testLogger())
	org := createOrg(t, db)
	user := createUser(t, db, org.ID, models.RoleEmployee)
	return db, svc, org, user
}

func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := timeutil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return parsed
}

func TestCreateNormalizesWeekStart(t *testing.T) {
	_, svc, org, user := newTimesheetFixture(t)

	// A wednesday input lands on the monday of the same week.
	ts, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-11"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := timeutil.DateString(ts.WeekStartDate); got != "2026-02-09" {
		t.Errorf("week start = %s, want 2026-02-09", got)
	}
	if got := timeutil.DateString(ts.WeekEndDate); got != "2026-02-15" {
		t.Errorf("week end date = %s, want 2026-02-15", got)
	}
	if ts.Status != models.StatusDraft {
		t.Errorf("status = %s, want DRAFT", ts.Status)
	}
	if ts.TotalHours != 0 || ts.BillableHours != 0 {
		t.Errorf("new timesheet must have zero totals, got %v/%v", ts.TotalHours, ts.BillableHours)
	}
}

func TestCreateSundayAnchoredWeek(t *testing.T) {
	db, svc, org, user := newTimesheetFixture(t)
	updateSettings(t, db, org.ID, func(s *models.OrgSettings) {
		s.WorkWeekStart = timeutil.WeekStartSunday
	})

	ts, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-11"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got := timeutil.DateString(ts.WeekStartDate); got != "2026-02-08" {
		t.Errorf("week start = %s, want 2026-02-08", got)
	}
}

func TestCreateDuplicateWeekConflicts(t *testing.T) {
	_, svc, org, user := newTimesheetFixture(t)

	if _, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-09")); err != nil {
		t.Fatalf("first create: %v", err)
	}
	// Different day, same week.
	_, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-13"))
	if !apperr.HasCode(err, apperr.CodeConflict) {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestCreateDuplicateWeekRace(t *testing.T) {
	_, svc, org, user := newTimesheetFixture(t)
	week := mustParseDate(t, "2026-02-09")

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(org.ID, user.ID, week)
		}(i)
	}
	wg.Wait()

	succeeded, conflicted := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case apperr.HasCode(err, apperr.CodeConflict):
			conflicted++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Errorf("exactly one create must win, got %d", succeeded)
	}
	if conflicted != 3 {
		t.Errorf("expected 3 conflicts, got %d", conflicted)
	}
}

func TestSameWeekDifferentUsersAllowed(t *testing.T) {
	db, svc, org, user := newTimesheetFixture(t)
	other := createUser(t, db, org.ID, models.RoleEmployee)
	week := mustParseDate(t, "2026-02-09")

	if _, err := svc.Create(org.ID, user.ID, week); err != nil {
		t.Fatalf("first user: %v", err)
	}
	if _, err := svc.Create(org.ID, other.ID, week); err != nil {
		t.Fatalf("second user must be able to use the same week: %v", err)
	}
}

func TestCreateBackdatedForbiddenWhenDisabled(t *testing.T) {
	db, svc, org, user := newTimesheetFixture(t)
	updateSettings(t, db, org.ID, func(s *models.OrgSettings) {
		s.AllowBackdated = false
	})

	past := time.Now().UTC().AddDate(0, 0, -14)
	_, err := svc.Create(org.ID, user.ID, past)
	if !apperr.HasCode(err, apperr.CodeBackdatingNotAllowed) {
		t.Errorf("expected BACKDATING_NOT_ALLOWED, got %v", err)
	}

	// A week that has not started yet resolves to a future start and is
	// always allowed. The current week is only creatable on its first day:
	// mid-week the resolved start is already before today's midnight.
	if _, err := svc.Create(org.ID, user.ID, time.Now().UTC().AddDate(0, 0, 7)); err != nil {
		t.Errorf("upcoming week must be allowed: %v", err)
	}
}

func TestGetScopedToOwnerAndOrg(t *testing.T) {
	db, svc, org, user := newTimesheetFixture(t)
	other := createUser(t, db, org.ID, models.RoleEmployee)
	otherOrg := createOrg(t, db)

	ts, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-09"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Get(org.ID, user.ID, ts.ID); err != nil {
		t.Errorf("owner get: %v", err)
	}
	if _, err := svc.Get(org.ID, other.ID, ts.ID); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("non-owner must see NOT_FOUND, got %v", err)
	}
	if _, err := svc.Get(otherOrg.ID, user.ID, ts.ID); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("cross-org must see NOT_FOUND, got %v", err)
	}
}

func TestUpdateWeekNormalizedAndDraftOnly(t *testing.T) {
	_, svc, org, user := newTimesheetFixture(t)

	ts, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-09"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	newWeek := mustParseDate(t, "2026-02-18") // wednesday
	updated, err := svc.Update(org.ID, user.ID, ts.ID, &newWeek)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := timeutil.DateString(updated.WeekStartDate); got != "2026-02-16" {
		t.Errorf("updated week start = %s, want 2026-02-16", got)
	}

	if _, err := svc.Submit(org.ID, user.ID, ts.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	another := mustParseDate(t, "2026-02-23")
	if _, err := svc.Update(org.ID, user.ID, ts.ID, &another); !apperr.HasCode(err, apperr.CodeImmutableTimesheet) {
		t.Errorf("submitted timesheet must be immutable, got %v", err)
	}
}

func TestDeleteDraftOnly(t *testing.T) {
	db, svc, org, user := newTimesheetFixture(t)

	ts, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-09"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(org.ID, user.ID, ts.ID); err != nil {
		t.Fatalf("Delete draft: %v", err)
	}

	var count int64
	db.Model(&models.Timesheet{}).Where("id = ?", ts.ID).Count(&count)
	if count != 0 {
		t.Error("deleted timesheet still present")
	}

	ts2, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-16"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Submit(org.ID, user.ID, ts2.ID); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := svc.Delete(org.ID, user.ID, ts2.ID); !apperr.HasCode(err, apperr.CodeImmutableTimesheet) {
		t.Errorf("submitted timesheet must not delete, got %v", err)
	}
}

func TestSubmitTransitions(t *testing.T) {
	db, svc, org, user := newTimesheetFixture(t)

	ts, err := svc.Create(org.ID, user.ID, mustParseDate(t, "2026-02-09"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	submitted, err := svc.Submit(org.ID, user.ID, ts.ID)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Status != models.StatusSubmitted {
		t.Errorf("status = %s, want SUBMITTED", submitted.Status)
	}

	// Submitting again is an invalid transition.
	if _, err := svc.Submit(org.ID, user.ID, ts.ID); !apperr.HasCode(err, apperr.CodeInvalidTransition) {
		t.Errorf("double submit must fail, got %v", err)
	}

	// A rejected sheet is re-submittable.
	db.Model(&models.Timesheet{}).Where("id = ?", ts.ID).
		Updates(map[string]interface{}{"status": models.StatusRejected, "rejected_reason": "fix monday"})
	if _, err := svc.Submit(org.ID, user.ID, ts.ID); err != nil {
		t.Errorf("resubmit after rejection: %v", err)
	}
}

func TestListPaginates(t *testing.T) {
	_, svc, org, user := newTimesheetFixture(t)

	weeks := []string{"2026-01-05", "2026-01-12", "2026-01-19", "2026-01-26", "2026-02-02"}
	for _, w := range weeks {
		if _, err := svc.Create(org.ID, user.ID, mustParseDate(t, w)); err != nil {
			t.Fatalf("Create %s: %v", w, err)
		}
	}

	sheets, meta, err := svc.List(org.ID, user.ID, PageParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if meta.Total != 5 {
		t.Errorf("total = %d, want 5", meta.Total)
	}
	if len(sheets) != 2 {
		t.Fatalf("page size = %d, want 2", len(sheets))
	}
	// Newest week first: page 2 holds the 3rd and 4th newest.
	if got := timeutil.DateString(sheets[0].WeekStartDate); got != "2026-01-19" {
		t.Errorf("page 2 first row = %s, want 2026-01-19", got)
	}
}
