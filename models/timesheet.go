package models

import (
	"time"
)

type TimesheetStatus string

const (
	StatusDraft     TimesheetStatus = "DRAFT"
	StatusSubmitted TimesheetStatus = "SUBMITTED"
	StatusApproved  TimesheetStatus = "APPROVED"
	StatusRejected  TimesheetStatus = "REJECTED"
)

// Timesheet covers one user's work week. TotalHours and BillableHours are
// derived from the entries and never written directly by callers. The
// composite unique index is the backstop for the one-timesheet-per-week
// rule under concurrent creates.
type Timesheet struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	OrganisationID uint            `gorm:"not null;index;uniqueIndex:idx_timesheets_user_week" json:"organisation_id"`
	UserID         uint            `gorm:"not null;index;uniqueIndex:idx_timesheets_user_week" json:"user_id"`
	User           *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WeekStartDate  time.Time       `gorm:"not null;uniqueIndex:idx_timesheets_user_week" json:"week_start_date"`
	WeekEndDate    time.Time       `gorm:"not null" json:"week_end_date"`
	Status         TimesheetStatus `gorm:"not null;size:20;default:DRAFT" json:"status"`
	TotalHours     float64         `gorm:"not null;default:0" json:"total_hours"`
	BillableHours  float64         `gorm:"not null;default:0" json:"billable_hours"`
	ApprovedByID   *uint           `json:"approved_by_id,omitempty"`
	ApprovedBy     *User           `gorm:"foreignKey:ApprovedByID" json:"approved_by,omitempty"`
	ApprovedAt     *time.Time      `json:"approved_at,omitempty"`
	RejectedReason string          `gorm:"size:500" json:"rejected_reason,omitempty"`
	TimeEntries    []TimeEntry     `gorm:"foreignKey:TimesheetID" json:"time_entries,omitempty"`
}

// Editable reports whether entries and fields may still be changed.
// DRAFT and REJECTED are the only editable states.
func (t *Timesheet) Editable() bool {
	return t.Status == StatusDraft || t.Status == StatusRejected
}

// TimeEntry is one project-keyed row of per-weekday hours under a
// timesheet. Day slots are ordered monday..sunday regardless of the
// organisation's week anchor; slot 0 is the first day of the sheet's week.
type TimeEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	TimesheetID uint      `gorm:"not null;index" json:"timesheet_id"`
	ProjectID   uint      `gorm:"not null;index" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	// No column default: GORM omits zero-valued fields carrying one, which
	// would turn an explicit false into true on insert.
	Billable    bool      `gorm:"not null" json:"billable"`

	MonHours float64 `gorm:"not null;default:0" json:"mon_hours"`
	MonDesc  string  `gorm:"size:500" json:"mon_desc"`
	TueHours float64 `gorm:"not null;default:0" json:"tue_hours"`
	TueDesc  string  `gorm:"size:500" json:"tue_desc"`
	WedHours float64 `gorm:"not null;default:0" json:"wed_hours"`
	WedDesc  string  `gorm:"size:500" json:"wed_desc"`
	ThuHours float64 `gorm:"not null;default:0" json:"thu_hours"`
	ThuDesc  string  `gorm:"size:500" json:"thu_desc"`
	FriHours float64 `gorm:"not null;default:0" json:"fri_hours"`
	FriDesc  string  `gorm:"size:500" json:"fri_desc"`
	SatHours float64 `gorm:"not null;default:0" json:"sat_hours"`
	SatDesc  string  `gorm:"size:500" json:"sat_desc"`
	SunHours float64 `gorm:"not null;default:0" json:"sun_hours"`
	SunDesc  string  `gorm:"size:500" json:"sun_desc"`

	// Derived: always the sum of the seven day slots.
	TotalHours float64 `gorm:"not null;default:0" json:"total_hours"`
}

// DaysPerWeek is the number of day slots on an entry.
const DaysPerWeek = 7

// DayHours returns the hours in slot i (0=mon..6=sun).
func (e *TimeEntry) DayHours(i int) float64 {
	switch i {
	case 0:
		return e.MonHours
	case 1:
		return e.TueHours
	case 2:
		return e.WedHours
	case 3:
		return e.ThuHours
	case 4:
		return e.FriHours
	case 5:
		return e.SatHours
	case 6:
		return e.SunHours
	}
	return 0
}

// DayDesc returns the description in slot i.
func (e *TimeEntry) DayDesc(i int) string {
	switch i {
	case 0:
		return e.MonDesc
	case 1:
		return e.TueDesc
	case 2:
		return e.WedDesc
	case 3:
		return e.ThuDesc
	case 4:
		return e.FriDesc
	case 5:
		return e.SatDesc
	case 6:
		return e.SunDesc
	}
	return ""
}

// SetDayHours writes the hours in slot i.
func (e *TimeEntry) SetDayHours(i int, hours float64) {
	switch i {
	case 0:
		e.MonHours = hours
	case 1:
		e.TueHours = hours
	case 2:
		e.WedHours = hours
	case 3:
		e.ThuHours = hours
	case 4:
		e.FriHours = hours
	case 5:
		e.SatHours = hours
	case 6:
		e.SunHours = hours
	}
}

// SetDayDesc writes the description in slot i.
func (e *TimeEntry) SetDayDesc(i int, desc string) {
	switch i {
	case 0:
		e.MonDesc = desc
	case 1:
		e.TueDesc = desc
	case 2:
		e.WedDesc = desc
	case 3:
		e.ThuDesc = desc
	case 4:
		e.FriDesc = desc
	case 5:
		e.SatDesc = desc
	case 6:
		e.SunDesc = desc
	}
}

// Recalculate refreshes TotalHours from the day slots.
func (e *TimeEntry) Recalculate() {
	total := 0.0
	for i := 0; i < DaysPerWeek; i++ {
		total += e.DayHours(i)
	}
	e.TotalHours = total
}
