package models

import (
	"time"
)

type NotificationType string

const (
	NotifyApproved     NotificationType = "approved"
	NotifyRejected     NotificationType = "rejected"
	NotifyTimesheetDue NotificationType = "timesheet_due"
	NotifyReminder     NotificationType = "reminder"
)

// Notification is purely informational; approval and rejection create one
// for the timesheet owner on a best-effort basis.
type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	UserID    uint             `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"not null;size:30" json:"type"`
	Message   string           `gorm:"not null;size:500" json:"message"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
}
