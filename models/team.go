package models

import (
	"time"
)

// ManagerEmployee is a direct-report edge. Both endpoints live in the same
// organisation and an employee may have several managers. The manager side
// must hold the MANAGER or ADMIN role at assignment time; that is enforced
// by the team service, not the schema.
type ManagerEmployee struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	ManagerID  uint      `gorm:"not null;index;uniqueIndex:idx_manager_employee" json:"manager_id"`
	EmployeeID uint      `gorm:"not null;index;uniqueIndex:idx_manager_employee" json:"employee_id"`
	Manager    *User     `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	Employee   *User     `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`
}
