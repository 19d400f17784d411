package services

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

// ProjectService manages projects and their manager/employee assignment
// sets. Project codes are unique per organisation.
type ProjectService struct {
	db *gorm.DB
}

func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// ProjectInput creates or updates a project. Nil fields on update keep the
// stored value; a nil ManagerIDs leaves the assignment set untouched while
// an empty non-nil slice clears it.
type ProjectInput struct {
	Code        *string
	Name        *string
	Client      *string
	BudgetHours *float64
	Status      *models.ProjectStatus
	ManagerIDs  []uint
	// distinguishes "not sent" from "replace with empty set"
	ReplaceManagers bool
}

// List returns projects in the actor's scope: a MANAGER sees only projects
// they are assigned to manage, everyone else sees the whole organisation.
func (s *ProjectService) List(orgID, actorID uint, role models.Role, p PageParams) ([]models.Project, ListMeta, error) {
	page, limit, offset := p.normalize()
	var projects []models.Project
	var total int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.Project{}).Where("projects.organisation_id = ?", orgID)
		if role == models.RoleManager {
			q = q.Joins("JOIN project_managers ON project_managers.project_id = projects.id").
				Where("project_managers.manager_id = ?", actorID)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.
			Preload("Managers").
			Preload("Managers.Manager").
			Order("projects.created_at desc").
			Offset(offset).Limit(limit).
			Find(&projects).Error
	})
	return projects, ListMeta{Total: total, Page: page, Limit: limit}, err
}

// Create adds a project. A creating MANAGER is auto-assigned to it.
func (s *ProjectService) Create(orgID uint, in ProjectInput, actorID uint, role models.Role) (*models.Project, error) {
	if in.Code == nil || *in.Code == "" {
		return nil, apperr.Validation("project code is required")
	}
	if in.Name == nil || *in.Name == "" {
		return nil, apperr.Validation("project name is required")
	}

	project := models.Project{
		OrganisationID: orgID,
		Code:           *in.Code,
		Name:           *in.Name,
		Status:         models.ProjectActive,
	}
	if in.Client != nil {
		project.Client = *in.Client
	}
	if in.BudgetHours != nil {
		project.BudgetHours = *in.BudgetHours
	}
	if in.Status != nil {
		project.Status = *in.Status
	}

	managerIDs := in.ManagerIDs
	if role == models.RoleManager {
		// Creating manager is always assigned; extra ids are kept minus
		// the duplicate self reference.
		assigned := []uint{actorID}
		for _, id := range managerIDs {
			if id != actorID {
				assigned = append(assigned, id)
			}
		}
		managerIDs = assigned
	}

	conflict := apperr.Conflict(fmt.Sprintf("project code %q already exists in this organisation", project.Code))
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).
			Where("organisation_id = ? AND code = ?", orgID, project.Code).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict
		}
		if err := translateDuplicate(tx.Create(&project).Error, conflict); err != nil {
			return err
		}
		for _, managerID := range managerIDs {
			edge := models.ProjectManager{ProjectID: project.ID, ManagerID: managerID}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update patches a project and optionally replaces its manager set.
func (s *ProjectService) Update(orgID, id uint, in ProjectInput) (*models.Project, error) {
	var project models.Project

	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND organisation_id = ?", id, orgID).First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("project")
		}
		if err != nil {
			return err
		}

		if in.Code != nil && *in.Code != project.Code {
			var count int64
			if err := tx.Model(&models.Project{}).
				Where("organisation_id = ? AND code = ? AND id <> ?", orgID, *in.Code, id).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return apperr.Conflict(fmt.Sprintf("project code %q already exists", *in.Code))
			}
			project.Code = *in.Code
		}
		if in.Name != nil {
			project.Name = *in.Name
		}
		if in.Client != nil {
			project.Client = *in.Client
		}
		if in.BudgetHours != nil {
			project.BudgetHours = *in.BudgetHours
		}
		if in.Status != nil {
			project.Status = *in.Status
		}
		if err := tx.Save(&project).Error; err != nil {
			return err
		}

		if in.ReplaceManagers {
			if err := tx.Where("project_id = ?", id).Delete(&models.ProjectManager{}).Error; err != nil {
				return err
			}
			for _, managerID := range in.ManagerIDs {
				edge := models.ProjectManager{ProjectID: id, ManagerID: managerID}
				if err := tx.Create(&edge).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project and its assignment edges.
func (s *ProjectService) Delete(orgID, id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.Where("id = ? AND organisation_id = ?", id, orgID).First(&project).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("project")
		}
		if err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectManager{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectEmployee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
}

// ReplaceEmployees swaps the full employee assignment set of a project.
// All ids must be active users in the same organisation.
func (s *ProjectService) ReplaceEmployees(orgID, projectID uint, employeeIDs []uint) error {
	var project models.Project
	err := s.db.Where("id = ? AND organisation_id = ?", projectID, orgID).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("project")
	}
	if err != nil {
		return err
	}

	if len(employeeIDs) > 0 {
		var validIDs []uint
		err := s.db.Model(&models.User{}).
			Where("id IN ? AND organisation_id = ? AND status = ?", employeeIDs, orgID, models.UserActive).
			Pluck("id", &validIDs).Error
		if err != nil {
			return err
		}
		valid := uintSet(validIDs)
		var invalid []uint
		for _, id := range employeeIDs {
			if _, ok := valid[id]; !ok {
				invalid = append(invalid, id)
			}
		}
		if len(invalid) > 0 {
			sort.Slice(invalid, func(i, j int) bool { return invalid[i] < invalid[j] })
			return apperr.Validation(fmt.Sprintf(
				"invalid employee ids %v: must be active users in the same organisation", invalid))
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectEmployee{}).Error; err != nil {
			return err
		}
		for _, employeeID := range employeeIDs {
			edge := models.ProjectEmployee{ProjectID: projectID, EmployeeID: employeeID}
			if err := tx.Create(&edge).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
