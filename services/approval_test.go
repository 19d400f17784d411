package services

import (
	"testing"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

type approvalFixture struct {
	db         *gorm.DB
	timesheets *TimesheetService
	approvals  *ApprovalService
	org        *models.Organisation
	manager    *models.User
	admin      *models.User
	employee   *models.User
	project    *models.Project
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()
	db := newTestDB(t)
	team := NewTeamService(db)
	notifications := NewNotificationService(db)

	f := &approvalFixture{
		db:         db,
		timesheets: NewTimesheetService(db, team, testLogger()),
		approvals:  NewApprovalService(db, team, notifications, testLogger()),
	}
	f.org = createOrg(t, db)
	f.manager = createUser(t, db, f.org.ID, models.RoleManager)
	f.admin = createUser(t, db, f.org.ID, models.RoleAdmin)
	f.employee = createUser(t, db, f.org.ID, models.RoleEmployee)
	addReport(t, db, f.manager.ID, f.employee.ID)

	f.project = createProject(t, db, f.org.ID)
	assignToProject(t, db, f.project.ID, f.employee.ID)
	return f
}

// submittedSheet creates a submitted timesheet with one 20-hour entry for
// the given owner.
func (f *approvalFixture) submittedSheet(t *testing.T, ownerID uint, week string) *models.Timesheet {
	t.Helper()
	ts, err := f.timesheets.Create(f.org.ID, ownerID, mustParseDate(t, week))
	if err != nil {
		t.Fatalf("create timesheet: %v", err)
	}
	_, err = f.timesheets.CreateEntry(f.org.ID, ownerID, ts.ID, EntryInput{
		ProjectID: f.project.ID,
		Days:      dayHours(8, 8, 4),
	}, models.RoleAdmin)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := f.timesheets.Submit(f.org.ID, ownerID, ts.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	return ts
}

func TestApproveHappyPath(t *testing.T) {
	f := newApprovalFixture(t)
	ts := f.submittedSheet(t, f.employee.ID, "2026-02-09")

	approved, err := f.approvals.Approve(f.org.ID, f.manager.ID, ts.ID, models.RoleManager)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != models.StatusApproved {
		t.Errorf("status = %s, want APPROVED", approved.Status)
	}
	if approved.ApprovedByID == nil || *approved.ApprovedByID != f.manager.ID {
		t.Error("approver not recorded")
	}
	if approved.ApprovedAt == nil {
		t.Error("approval time not recorded")
	}

	// Entry hours accrued onto the project ledger.
	var project models.Project
	f.db.First(&project, f.project.ID)
	if project.UsedHours != 20 {
		t.Errorf("project used hours = %v, want 20", project.UsedHours)
	}

	// Owner got a notification.
	var count int64
	f.db.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", f.employee.ID, models.NotifyApproved).
		Count(&count)
	if count != 1 {
		t.Errorf("notification count = %d, want 1", count)
	}
}

func TestApproveIsTerminal(t *testing.T) {
	f := newApprovalFixture(t)
	ts := f.submittedSheet(t, f.employee.ID, "2026-02-09")

	if _, err := f.approvals.Approve(f.org.ID, f.manager.ID, ts.ID, models.RoleManager); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if _, err := f.approvals.Approve(f.org.ID, f.admin.ID, ts.ID, models.RoleAdmin); !apperr.HasCode(err, apperr.CodeInvalidTransition) {
		t.Errorf("double approve must fail, got %v", err)
	}
	if _, err := f.approvals.Reject(f.org.ID, f.admin.ID, ts.ID, "too late", models.RoleAdmin); !apperr.HasCode(err, apperr.CodeInvalidTransition) {
		t.Errorf("reject after approve must fail, got %v", err)
	}

	// Ledger accrued exactly once.
	var project models.Project
	f.db.First(&project, f.project.ID)
	if project.UsedHours != 20 {
		t.Errorf("used hours = %v, want single accrual of 20", project.UsedHours)
	}
}

func TestSelfApprovalForbidden(t *testing.T) {
	f := newApprovalFixture(t)
	// Manager's own sheet, admin manages them.
	addReport(t, f.db, f.admin.ID, f.manager.ID)
	ts := f.submittedSheet(t, f.manager.ID, "2026-02-09")

	_, err := f.approvals.Approve(f.org.ID, f.manager.ID, ts.ID, models.RoleManager)
	if !apperr.HasCode(err, apperr.CodeSelfApprovalForbidden) {
		t.Errorf("expected SELF_APPROVAL_FORBIDDEN, got %v", err)
	}
	_, err = f.approvals.Reject(f.org.ID, f.manager.ID, ts.ID, "no", models.RoleManager)
	if !apperr.HasCode(err, apperr.CodeSelfApprovalForbidden) {
		t.Errorf("expected SELF_APPROVAL_FORBIDDEN on reject, got %v", err)
	}

	// Another privileged user can decide it.
	if _, err := f.approvals.Approve(f.org.ID, f.admin.ID, ts.ID, models.RoleAdmin); err != nil {
		t.Errorf("admin approve: %v", err)
	}
}

func TestManagerLimitedToDirectReports(t *testing.T) {
	f := newApprovalFixture(t)
	stranger := createUser(t, f.db, f.org.ID, models.RoleEmployee)
	ts := f.submittedSheet(t, stranger.ID, "2026-02-09")

	_, err := f.approvals.Approve(f.org.ID, f.manager.ID, ts.ID, models.RoleManager)
	if !apperr.HasCode(err, apperr.CodeNotDirectReport) {
		t.Errorf("expected NOT_DIRECT_REPORT, got %v", err)
	}

	// Admin bypasses the team graph.
	if _, err := f.approvals.Approve(f.org.ID, f.admin.ID, ts.ID, models.RoleAdmin); err != nil {
		t.Errorf("admin approve: %v", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	f := newApprovalFixture(t)
	ts := f.submittedSheet(t, f.employee.ID, "2026-02-09")

	for _, reason := range []string{"", "   "} {
		if _, err := f.approvals.Reject(f.org.ID, f.manager.ID, ts.ID, reason, models.RoleManager); !apperr.HasCode(err, apperr.CodeValidation) {
			t.Errorf("reason %q: expected VALIDATION_ERROR, got %v", reason, err)
		}
	}

	rejected, err := f.approvals.Reject(f.org.ID, f.manager.ID, ts.ID, "missing friday hours", models.RoleManager)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if rejected.Status != models.StatusRejected {
		t.Errorf("status = %s, want REJECTED", rejected.Status)
	}
	if rejected.RejectedReason != "missing friday hours" {
		t.Errorf("reason = %q", rejected.RejectedReason)
	}

	// Rejected sheet is editable and resubmittable by its owner.
	if _, err := f.timesheets.Submit(f.org.ID, f.employee.ID, ts.ID); err != nil {
		t.Errorf("resubmit after rejection: %v", err)
	}
}

func TestApproveDraftIsInvalidTransition(t *testing.T) {
	f := newApprovalFixture(t)
	ts, err := f.timesheets.Create(f.org.ID, f.employee.ID, mustParseDate(t, "2026-02-09"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.approvals.Approve(f.org.ID, f.manager.ID, ts.ID, models.RoleManager); !apperr.HasCode(err, apperr.CodeInvalidTransition) {
		t.Errorf("approve of DRAFT must fail, got %v", err)
	}
}

func TestListPendingScoping(t *testing.T) {
	f := newApprovalFixture(t)
	stranger := createUser(t, f.db, f.org.ID, models.RoleEmployee)

	f.submittedSheet(t, f.employee.ID, "2026-02-09")
	f.submittedSheet(t, stranger.ID, "2026-02-09")

	managerView, meta, err := f.approvals.ListPending(f.org.ID, f.manager.ID, models.RoleManager, PageParams{})
	if err != nil {
		t.Fatalf("manager ListPending: %v", err)
	}
	if meta.Total != 1 || len(managerView) != 1 {
		t.Fatalf("manager sees %d sheets, want 1", len(managerView))
	}
	if managerView[0].UserID != f.employee.ID {
		t.Error("manager sees a non-report's timesheet")
	}

	adminView, meta, err := f.approvals.ListPending(f.org.ID, f.admin.ID, models.RoleAdmin, PageParams{})
	if err != nil {
		t.Fatalf("admin ListPending: %v", err)
	}
	if meta.Total != 2 || len(adminView) != 2 {
		t.Errorf("admin sees %d sheets, want 2", len(adminView))
	}
}

func TestApprovalStats(t *testing.T) {
	f := newApprovalFixture(t)
	second := createUser(t, f.db, f.org.ID, models.RoleEmployee)
	addReport(t, f.db, f.manager.ID, second.ID)
	assignToProject(t, f.db, f.project.ID, second.ID)

	f.submittedSheet(t, f.employee.ID, "2026-02-09")
	approved := f.submittedSheet(t, second.ID, "2026-02-16")
	if _, err := f.approvals.Approve(f.org.ID, f.manager.ID, approved.ID, models.RoleManager); err != nil {
		t.Fatalf("Approve: %v", err)
	}

	stats, err := f.approvals.Stats(f.org.ID, f.manager.ID, models.RoleManager)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Pending != 1 {
		t.Errorf("pending = %d, want 1", stats.Pending)
	}
	if stats.ApprovedThisWeek != 1 {
		t.Errorf("approved this week = %d, want 1", stats.ApprovedThisWeek)
	}
	// Both sheets carry 20 hours and count toward team hours.
	if stats.TeamHours != 40 {
		t.Errorf("team hours = %v, want 40", stats.TeamHours)
	}
	if stats.TeamMembers != 2 {
		t.Errorf("team members = %d, want 2", stats.TeamMembers)
	}

	adminStats, err := f.approvals.Stats(f.org.ID, f.admin.ID, models.RoleAdmin)
	if err != nil {
		t.Fatalf("admin Stats: %v", err)
	}
	// Admin counts every active user in the organisation.
	if adminStats.TeamMembers != 4 {
		t.Errorf("admin team members = %d, want 4", adminStats.TeamMembers)
	}
}

func TestDecisionScopedToOrg(t *testing.T) {
	f := newApprovalFixture(t)
	ts := f.submittedSheet(t, f.employee.ID, "2026-02-09")
	otherOrg := createOrg(t, f.db)
	foreignAdmin := createUser(t, f.db, otherOrg.ID, models.RoleAdmin)

	_, err := f.approvals.Approve(otherOrg.ID, foreignAdmin.ID, ts.ID, models.RoleAdmin)
	if !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Errorf("cross-org decision must be NOT_FOUND, got %v", err)
	}
}
