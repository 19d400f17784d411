package models

import (
	"time"

	"timesheet/timeutil"
)

// Organisation is the tenant boundary. Every other entity carries an
// OrganisationID and all lookups filter on it.
type Organisation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"not null;size:200" json:"name"`
}

// OrgSettings holds per-organisation timesheet policy. An organisation
// without a settings row behaves as if it had DefaultSettings.
type OrgSettings struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	OrganisationID uint      `gorm:"uniqueIndex;not null" json:"organisation_id"`

	// monday or sunday, see timeutil. The bool columns carry no SQL
	// defaults: GORM omits zero-valued fields that have one, so an
	// explicit false would not survive the insert. Defaults live in
	// DefaultSettings.
	WorkWeekStart   string  `gorm:"not null;size:10;default:monday" json:"work_week_start"`
	MaxHoursPerDay  float64 `gorm:"not null;default:24" json:"max_hours_per_day"`
	MaxHoursPerWeek float64 `gorm:"not null;default:60" json:"max_hours_per_week"`
	AllowBackdated  bool    `gorm:"not null" json:"allow_backdated"`
	MandatoryDesc   bool    `gorm:"not null" json:"mandatory_desc"`
	AllowCopyWeek   bool    `gorm:"not null" json:"allow_copy_week"`

	// When false, "copy previous week" clones project/description shells
	// with zeroed hours instead of carrying the hours forward.
	CopyPreviousHours bool `gorm:"not null" json:"copy_previous_hours"`
}

// DefaultSettings returns the policy applied when no settings row exists.
func DefaultSettings(orgID uint) OrgSettings {
	return OrgSettings{
		OrganisationID:    orgID,
		WorkWeekStart:     timeutil.WeekStartMonday,
		MaxHoursPerDay:    24,
		MaxHoursPerWeek:   60,
		AllowBackdated:    true,
		MandatoryDesc:     false,
		AllowCopyWeek:     true,
		CopyPreviousHours: true,
	}
}

// Holiday is an org-level non-working day consumed by the monthly report.
// Recurring holidays match their month/day in every year.
type Holiday struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	OrganisationID uint      `gorm:"not null;index" json:"organisation_id"`
	Name           string    `gorm:"not null;size:200" json:"name"`
	Date           time.Time `gorm:"not null;type:date" json:"date"`
	Recurring      bool      `gorm:"not null;default:false" json:"recurring"`
}
