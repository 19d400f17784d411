package services

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

// TeamService owns the manager/employee assignment graph. Every other
// service that needs to answer "who may act on whom" goes through it.
type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

// DirectReportIDs returns the ids of all employees directly managed by
// this manager within the organisation.
func (s *TeamService) DirectReportIDs(orgID, managerID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.ManagerEmployee{}).
		Joins("JOIN users ON users.id = manager_employees.employee_id").
		Where("manager_employees.manager_id = ? AND users.organisation_id = ?", managerID, orgID).
		Pluck("manager_employees.employee_id", &ids).Error
	return ids, err
}

// ManagerIDs returns the ids of all managers of the given employee.
func (s *TeamService) ManagerIDs(orgID, employeeID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.ManagerEmployee{}).
		Joins("JOIN users ON users.id = manager_employees.manager_id").
		Where("manager_employees.employee_id = ? AND users.organisation_id = ?", employeeID, orgID).
		Pluck("manager_employees.manager_id", &ids).Error
	return ids, err
}

// TeamMembers returns the full user rows for a manager's direct reports.
func (s *TeamService) TeamMembers(orgID, managerID uint) ([]models.User, error) {
	var members []models.User
	err := s.db.
		Joins("JOIN manager_employees ON manager_employees.employee_id = users.id").
		Where("manager_employees.manager_id = ? AND users.organisation_id = ?", managerID, orgID).
		Order("users.name asc").
		Find(&members).Error
	return members, err
}

// ManagersOf returns the full user rows for an employee's managers.
func (s *TeamService) ManagersOf(orgID, employeeID uint) ([]models.User, error) {
	var managers []models.User
	err := s.db.
		Joins("JOIN manager_employees ON manager_employees.manager_id = users.id").
		Where("manager_employees.employee_id = ? AND users.organisation_id = ?", employeeID, orgID).
		Order("users.name asc").
		Find(&managers).Error
	return managers, err
}

// isDirectReport runs the edge lookup on the given handle so callers
// already inside a transaction stay on its connection.
func isDirectReport(db *gorm.DB, orgID, managerID, employeeID uint) (bool, error) {
	var count int64
	err := db.Model(&models.ManagerEmployee{}).
		Joins("JOIN users ON users.id = manager_employees.employee_id").
		Where("manager_employees.manager_id = ? AND manager_employees.employee_id = ? AND users.organisation_id = ?",
			managerID, employeeID, orgID).
		Count(&count).Error
	return count > 0, err
}

// IsDirectReport reports whether the employee is directly managed by the
// manager. Absence of the edge means false; the check fails closed.
func (s *TeamService) IsDirectReport(orgID, managerID, employeeID uint) (bool, error) {
	return isDirectReport(s.db, orgID, managerID, employeeID)
}

// assertDirectReport is the guard used before any manager-initiated
// mutation on an employee's data.
func assertDirectReport(db *gorm.DB, orgID, managerID, employeeID uint) error {
	ok, err := isDirectReport(db, orgID, managerID, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotDirectReport()
	}
	return nil
}

// AssertDirectReport is the pool-handle form of the guard.
func (s *TeamService) AssertDirectReport(orgID, managerID, employeeID uint) error {
	return assertDirectReport(s.db, orgID, managerID, employeeID)
}

// AssignManagers replaces the full manager set of an employee. The new set
// must consist of active MANAGER/ADMIN users in the same organisation and
// must not contain the employee themselves.
func (s *TeamService) AssignManagers(orgID, employeeID uint, managerIDs []uint) error {
	for _, id := range managerIDs {
		if id == employeeID {
			return apperr.Validation("a user cannot be assigned as their own manager")
		}
	}

	if len(managerIDs) > 0 {
		var validIDs []uint
		err := s.db.Model(&models.User{}).
			Where("id IN ? AND organisation_id = ? AND role IN ? AND status = ?",
				managerIDs, orgID, []models.Role{models.RoleManager, models.RoleAdmin}, models.UserActive).
			Pluck("id", &validIDs).Error
		if err != nil {
			return err
		}

		valid := uintSet(validIDs)
		var invalid []uint
		for _, id := range managerIDs {
			if _, ok := valid[id]; !ok {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			sort.Slice(invalid, func(i, j int) bool { return invalid[i] < invalid[j] })
			return apperr.Validation(fmt.Sprintf(
				"invalid manager ids %v: must be active users with MANAGER or ADMIN role in the same organisation", invalid))
		}
	}

	// Full replace: drop all existing edges, then insert the new set.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", employeeID).
			Delete(&models.ManagerEmployee{}).Error; err != nil {
			return err
		}
		for _, managerID := range managerIDs {
			edge := models.ManagerEmployee{ManagerID: managerID, EmployeeID: employeeID}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveManagedEmployees drops every edge where the user is the manager.
// Called when a user's role is changed away from MANAGER/ADMIN.
func (s *TeamService) RemoveManagedEmployees(managerID uint) error {
	return s.db.Where("manager_id = ?", managerID).
		Delete(&models.ManagerEmployee{}).Error
}

// AssignedProjectIDs returns the ids of projects the employee is assigned
// to within the organisation.
func (s *TeamService) AssignedProjectIDs(orgID, employeeID uint) ([]uint, error) {
	var ids []uint
	err := s.db.Model(&models.ProjectEmployee{}).
		Joins("JOIN projects ON projects.id = project_employees.project_id").
		Where("project_employees.employee_id = ? AND projects.organisation_id = ?", employeeID, orgID).
		Pluck("project_employees.project_id", &ids).Error
	return ids, err
}
