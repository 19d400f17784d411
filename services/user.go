package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

// UserService manages organisation members. A MANAGER only operates on
// their direct reports and may only grant the EMPLOYEE role; an ADMIN is
// unrestricted within the organisation.
type UserService struct {
	db   *gorm.DB
	team *TeamService
}

func NewUserService(db *gorm.DB, team *TeamService) *UserService {
	return &UserService{db: db, team: team}
}

type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       models.Role
	Department string
	ManagerIDs []uint
}

type UpdateUserInput struct {
	Name       *string
	Role       *models.Role
	Department *string
	Status     *models.UserStatus
	ManagerIDs []uint
	// distinguishes "not sent" from "replace with empty set"
	ReplaceManagers bool
}

// assertCanManage lets an ADMIN through and requires the direct-report
// edge for a MANAGER.
func (s *UserService) assertCanManage(orgID, actorID uint, role models.Role, targetID uint) error {
	if role == models.RoleAdmin {
		return nil
	}
	ok, err := s.team.IsDirectReport(orgID, actorID, targetID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Forbidden("you can only manage your direct reports")
	}
	return nil
}

// List returns users in the actor's scope: MANAGER sees direct reports,
// ADMIN the whole organisation.
func (s *UserService) List(orgID, actorID uint, role models.Role, p PageParams) ([]models.User, ListMeta, error) {
	var reportIDs []uint
	if role == models.RoleManager {
		var err error
		reportIDs, err = s.team.DirectReportIDs(orgID, actorID)
		if err != nil {
			return nil, ListMeta{}, err
		}
		if reportIDs == nil {
			reportIDs = []uint{}
		}
	}

	page, limit, offset := p.normalize()
	var users []models.User
	var total int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.User{}).Where("organisation_id = ?", orgID)
		if role == models.RoleManager {
			q = q.Where("id IN ?", reportIDs)
		}
		if err := q.Count(&total).Error; err != nil {
			return err
		}
		return q.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error
	})
	return users, ListMeta{Total: total, Page: page, Limit: limit}, err
}

// Get returns a user in the organisation.
func (s *UserService) Get(orgID, id uint) (*models.User, error) {
	var user models.User
	err := s.db.Where("id = ? AND organisation_id = ?", id, orgID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create adds a user to the organisation. A creating MANAGER may only
// create EMPLOYEEs and becomes their manager unless another set is given.
func (s *UserService) Create(orgID uint, in CreateUserInput, actorID uint, actorRole models.Role) (*models.User, error) {
	if in.Role == "" {
		in.Role = models.RoleEmployee
	}
	if actorRole == models.RoleManager && in.Role != models.RoleEmployee {
		return nil, apperr.Forbidden("managers can only create employees")
	}
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		OrganisationID: orgID,
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   string(hash),
		Role:           in.Role,
		Department:     in.Department,
		Status:         models.UserActive,
	}

	conflict := apperr.Conflict("email address is already in use")
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return conflict
		}
		return translateDuplicate(tx.Create(&user).Error, conflict)
	})
	if err != nil {
		return nil, err
	}

	managerIDs := in.ManagerIDs
	if actorRole == models.RoleManager && len(managerIDs) == 0 {
		managerIDs = []uint{actorID}
	}
	if len(managerIDs) > 0 {
		if err := s.team.AssignManagers(orgID, user.ID, managerIDs); err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// Update patches a user. Demoting someone away from MANAGER/ADMIN drops
// all of their managed-employee edges.
func (s *UserService) Update(orgID, id uint, in UpdateUserInput, actorID uint, actorRole models.Role) (*models.User, error) {
	user, err := s.Get(orgID, id)
	if err != nil {
		return nil, err
	}
	if err := s.assertCanManage(orgID, actorID, actorRole, id); err != nil {
		return nil, err
	}
	if actorRole == models.RoleManager && in.Role != nil && *in.Role != models.RoleEmployee {
		return nil, apperr.Forbidden("managers can only assign the employee role")
	}

	previousRole := user.Role
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Department != nil {
		user.Department = *in.Department
	}
	if in.Status != nil {
		user.Status = *in.Status
	}
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}

	if user.Role == models.RoleEmployee && previousRole != models.RoleEmployee {
		if err := s.team.RemoveManagedEmployees(id); err != nil {
			return nil, err
		}
	}
	if in.ReplaceManagers {
		if err := s.team.AssignManagers(orgID, id, in.ManagerIDs); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// Deactivate soft-deletes a user: the row stays, status flips to inactive
// and the stored refresh token is revoked so no session can be renewed.
func (s *UserService) Deactivate(orgID, id uint, actorID uint, actorRole models.Role) error {
	user, err := s.Get(orgID, id)
	if err != nil {
		return err
	}
	if err := s.assertCanManage(orgID, actorID, actorRole, id); err != nil {
		return err
	}

	user.Status = models.UserInactive
	user.RefreshTokenHash = ""
	return s.db.Save(user).Error
}
