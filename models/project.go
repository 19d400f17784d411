package models

import (
	"time"
)

type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "active"
	ProjectInactive ProjectStatus = "inactive"
)

// Project code is unique per organisation. UsedHours is a ledger that only
// grows: the approval workflow accrues entry hours onto it when a timesheet
// is approved.
type Project struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	OrganisationID uint              `gorm:"not null;index;uniqueIndex:idx_projects_org_code" json:"organisation_id"`
	Code           string            `gorm:"not null;size:50;uniqueIndex:idx_projects_org_code" json:"code"`
	Name           string            `gorm:"not null;size:200" json:"name"`
	Client         string            `gorm:"size:200" json:"client"`
	BudgetHours    float64           `gorm:"not null;default:0" json:"budget_hours"`
	UsedHours      float64           `gorm:"not null;default:0" json:"used_hours"`
	Status         ProjectStatus     `gorm:"not null;size:20;default:active" json:"status"`
	Managers       []ProjectManager  `gorm:"foreignKey:ProjectID" json:"managers,omitempty"`
	Employees      []ProjectEmployee `gorm:"foreignKey:ProjectID" json:"employees,omitempty"`
}

func (p *Project) IsActive() bool {
	return p.Status == ProjectActive
}

// ProjectManager links a manager to a project they oversee.
type ProjectManager struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ProjectID uint      `gorm:"not null;index;uniqueIndex:idx_project_manager" json:"project_id"`
	ManagerID uint      `gorm:"not null;index;uniqueIndex:idx_project_manager" json:"manager_id"`
	Manager   *User     `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

// ProjectEmployee links an employee to a project they may log time on.
type ProjectEmployee struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ProjectID  uint      `gorm:"not null;index;uniqueIndex:idx_project_employee" json:"project_id"`
	EmployeeID uint      `gorm:"not null;index;uniqueIndex:idx_project_employee" json:"employee_id"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}
