package services

import (
	"testing"

	"timesheet/apperr"
	"timesheet/models"
)

func TestAssignManagersValidation(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	org := createOrg(t, db)
	manager := createUser(t, db, org.ID, models.RoleManager)
	employee := createUser(t, db, org.ID, models.RoleEmployee)
	otherEmployee := createUser(t, db, org.ID, models.RoleEmployee)
	inactive := createUser(t, db, org.ID, models.RoleManager)
	db.Model(inactive).Update("status", models.UserInactive)
	otherOrg := createOrg(t, db)
	foreignManager := createUser(t, db, otherOrg.ID, models.RoleManager)

	tests := []struct {
		name       string
		managerIDs []uint
		wantErr    bool
	}{
		{"valid manager", []uint{manager.ID}, false},
		{"self as manager", []uint{employee.ID}, true},
		{"employee role as manager", []uint{otherEmployee.ID}, true},
		{"inactive manager", []uint{inactive.ID}, true},
		{"cross-org manager", []uint{foreignManager.ID}, true},
		{"mixed valid and invalid", []uint{manager.ID, otherEmployee.ID}, true},
		{"empty set clears", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := team.AssignManagers(org.ID, employee.ID, tt.managerIDs)
			if tt.wantErr {
				if !apperr.HasCode(err, apperr.CodeValidation) {
					t.Errorf("expected VALIDATION_ERROR, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAssignManagersReplacesSet(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	org := createOrg(t, db)
	first := createUser(t, db, org.ID, models.RoleManager)
	second := createUser(t, db, org.ID, models.RoleManager)
	employee := createUser(t, db, org.ID, models.RoleEmployee)

	if err := team.AssignManagers(org.ID, employee.ID, []uint{first.ID}); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	if err := team.AssignManagers(org.ID, employee.ID, []uint{second.ID}); err != nil {
		t.Fatalf("second assign: %v", err)
	}

	ids, err := team.ManagerIDs(org.ID, employee.ID)
	if err != nil {
		t.Fatalf("ManagerIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != second.ID {
		t.Errorf("manager set = %v, want [%d]", ids, second.ID)
	}

	ok, err := team.IsDirectReport(org.ID, first.ID, employee.ID)
	if err != nil {
		t.Fatalf("IsDirectReport: %v", err)
	}
	if ok {
		t.Error("old edge must be gone after replacement")
	}
}

func TestDirectReportQueriesScopedToOrg(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	org := createOrg(t, db)
	manager := createUser(t, db, org.ID, models.RoleManager)
	employee := createUser(t, db, org.ID, models.RoleEmployee)
	addReport(t, db, manager.ID, employee.ID)

	otherOrg := createOrg(t, db)

	ids, err := team.DirectReportIDs(org.ID, manager.ID)
	if err != nil {
		t.Fatalf("DirectReportIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != employee.ID {
		t.Errorf("reports = %v, want [%d]", ids, employee.ID)
	}

	// Same edge queried under a different org matches nothing.
	ids, err = team.DirectReportIDs(otherOrg.ID, manager.ID)
	if err != nil {
		t.Fatalf("cross-org DirectReportIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("cross-org reports = %v, want none", ids)
	}

	if err := team.AssertDirectReport(org.ID, manager.ID, employee.ID); err != nil {
		t.Errorf("AssertDirectReport: %v", err)
	}
	err = team.AssertDirectReport(org.ID, employee.ID, manager.ID)
	if !apperr.HasCode(err, apperr.CodeNotDirectReport) {
		t.Errorf("reverse edge must fail, got %v", err)
	}
}

func TestAssignedProjectIDs(t *testing.T) {
	db := newTestDB(t)
	team := NewTeamService(db)
	org := createOrg(t, db)
	employee := createUser(t, db, org.ID, models.RoleEmployee)
	assigned := createProject(t, db, org.ID)
	createProject(t, db, org.ID) // not assigned
	assignToProject(t, db, assigned.ID, employee.ID)

	ids, err := team.AssignedProjectIDs(org.ID, employee.ID)
	if err != nil {
		t.Fatalf("AssignedProjectIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != assigned.ID {
		t.Errorf("assigned = %v, want [%d]", ids, assigned.ID)
	}
}
