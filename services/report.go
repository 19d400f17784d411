package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
	"timesheet/timeutil"
)

// ReportService is the read side consumed by the export renderers. It
// applies the same role scoping as the rest of the core: EMPLOYEE is
// forced to their own data, MANAGER to self plus direct reports, ADMIN is
// unrestricted within the organisation.
type ReportService struct {
	db   *gorm.DB
	team *TeamService
}

func NewReportService(db *gorm.DB, team *TeamService) *ReportService {
	return &ReportService{db: db, team: team}
}

type ReportFilters struct {
	From      time.Time
	To        time.Time
	UserID    *uint
	ProjectID *uint
	Status    *models.TimesheetStatus
}

type ReportAggregates struct {
	TotalHours       float64 `json:"total_hours"`
	BillableHours    float64 `json:"billable_hours"`
	NonBillableHours float64 `json:"non_billable_hours"`
	Utilization      int     `json:"utilization"`
	TimesheetCount   int     `json:"timesheet_count"`
}

type Report struct {
	Timesheets []models.Timesheet `json:"timesheets"`
	Aggregates ReportAggregates   `json:"aggregates"`
}

// allowedTargets resolves which owner ids the actor may report on. A nil
// result means unrestricted.
func (s *ReportService) allowedTargets(orgID, actorID uint, role models.Role) ([]uint, error) {
	switch role {
	case models.RoleAdmin:
		return nil, nil
	case models.RoleManager:
		ids, err := s.team.DirectReportIDs(orgID, actorID)
		if err != nil {
			return nil, err
		}
		return append(ids, actorID), nil
	default:
		return []uint{actorID}, nil
	}
}

// Generate builds a date-range report over timesheets in the actor's
// scope, with aggregate hour totals and a utilization percentage.
func (s *ReportService) Generate(orgID uint, f ReportFilters, actorID uint, role models.Role) (*Report, error) {
	allowed, err := s.allowedTargets(orgID, actorID, role)
	if err != nil {
		return nil, err
	}

	if f.UserID != nil && allowed != nil {
		permitted := false
		for _, id := range allowed {
			if id == *f.UserID {
				permitted = true
				break
			}
		}
		if !permitted {
			return nil, apperr.Forbidden("you can only view reports for your direct reports")
		}
	}

	q := s.db.Model(&models.Timesheet{}).
		Where("organisation_id = ?", orgID).
		Where("week_start_date >= ? AND week_start_date <= ?", timeutil.StartOfDay(f.From), timeutil.StartOfDay(f.To))
	switch {
	case f.UserID != nil:
		q = q.Where("user_id = ?", *f.UserID)
	case allowed != nil:
		q = q.Where("user_id IN ?", allowed)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	entryPreload := func(db *gorm.DB) *gorm.DB {
		if f.ProjectID != nil {
			return db.Where("time_entries.project_id = ?", *f.ProjectID)
		}
		return db
	}

	var timesheets []models.Timesheet
	err = q.
		Preload("User").
		Preload("TimeEntries", entryPreload).
		Preload("TimeEntries.Project").
		Order("week_start_date desc").
		Find(&timesheets).Error
	if err != nil {
		return nil, err
	}

	var agg ReportAggregates
	for _, ts := range timesheets {
		agg.TotalHours += ts.TotalHours
		agg.BillableHours += ts.BillableHours
	}
	agg.NonBillableHours = agg.TotalHours - agg.BillableHours
	agg.TimesheetCount = len(timesheets)
	if agg.TotalHours > 0 {
		agg.Utilization = int(math.Round(agg.BillableHours / agg.TotalHours * 100))
	}

	return &Report{Timesheets: timesheets, Aggregates: agg}, nil
}

// MonthlyDayRow is one calendar day of the monthly breakdown.
type MonthlyDayRow struct {
	Date        string  `json:"date"`
	Day         string  `json:"day"`
	Project     string  `json:"project"`
	Task        string  `json:"task"`
	Time        float64 `json:"time"`
	Overtime    float64 `json:"overtime"`
	TotalTime   float64 `json:"total_time"`
	IsHoliday   bool    `json:"is_holiday"`
	HolidayName string  `json:"holiday_name,omitempty"`
	IsLeave     bool    `json:"is_leave"`
	IsWeekend   bool    `json:"is_weekend"`
}

type MonthlyTimesheetData struct {
	EmployeeName  string          `json:"employee_name"`
	EmployeeID    uint            `json:"employee_id"`
	Department    string          `json:"department"`
	Month         string          `json:"month"`
	MonthFull     string          `json:"month_full"`
	Days          []MonthlyDayRow `json:"days"`
	TotalHours    float64         `json:"total_hours"`
	TotalOvertime float64         `json:"total_overtime"`
	HolidayCount  int             `json:"holiday_count"`
	LeaveCount    int             `json:"leave_count"`
}

// regularDayHours is the boundary between regular time and overtime on a
// working day in the monthly breakdown.
const regularDayHours = 8.0

// GenerateMonthly builds the day-by-day sheet for one user and month,
// classifying weekends, org holidays (recurring ones match every year) and
// leave entries, and splitting hours beyond eight into overtime.
func (s *ReportService) GenerateMonthly(orgID, targetUserID uint, year, month int, actorID uint, role models.Role) (*MonthlyTimesheetData, error) {
	if month < 1 || month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}

	if targetUserID != actorID {
		switch role {
		case models.RoleEmployee:
			return nil, apperr.Forbidden("insufficient permissions")
		case models.RoleManager:
			ok, err := s.team.IsDirectReport(orgID, actorID, targetUserID)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperr.Forbidden("you can only view reports for your direct reports")
			}
		}
	}

	var target models.User
	err := s.db.Where("id = ? AND organisation_id = ?", targetUserID, orgID).First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()

	// Widen by a week either side so week boundaries straddling the month
	// are included.
	searchStart := monthStart.AddDate(0, 0, -7)
	searchEnd := monthStart.AddDate(0, 1, 6)

	var timesheets []models.Timesheet
	err = s.db.
		Preload("TimeEntries").
		Preload("TimeEntries.Project").
		Where("user_id = ? AND organisation_id = ?", targetUserID, orgID).
		Where("week_start_date >= ? AND week_start_date <= ?", searchStart, searchEnd).
		Find(&timesheets).Error
	if err != nil {
		return nil, err
	}

	var holidays []models.Holiday
	if err := s.db.Where("organisation_id = ?", orgID).Find(&holidays).Error; err != nil {
		return nil, err
	}
	holidayNames := make(map[string]string)
	for _, h := range holidays {
		holidayNames[timeutil.DateString(h.Date)] = h.Name
		if h.Recurring {
			recurring := time.Date(year, h.Date.Month(), h.Date.Day(), 0, 0, 0, 0, time.UTC)
			holidayNames[timeutil.DateString(recurring)] = h.Name
		}
	}

	data := MonthlyTimesheetData{
		EmployeeName: target.Name,
		EmployeeID:   target.ID,
		Department:   target.Department,
		Month:        fmt.Sprintf("%s'%02d", monthStart.Format("Jan"), year%100),
		MonthFull:    monthStart.Format("January 2006"),
	}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
		weekday := date.Weekday()
		isWeekend := weekday == time.Saturday || weekday == time.Sunday
		holidayName, isHoliday := holidayNames[timeutil.DateString(date)]

		dayHours := 0.0
		var projectNames, tasks []string
		isLeave := false

		for _, ts := range timesheets {
			slot := timeutil.DayIndex(date, ts.WeekStartDate)
			if slot < 0 {
				continue
			}
			for _, entry := range ts.TimeEntries {
				hours := entry.DayHours(slot)
				if hours <= 0 {
					continue
				}
				dayHours += hours
				if entry.Project != nil {
					name := entry.Project.Name
					if name != "" && !containsString(projectNames, name) {
						projectNames = append(projectNames, name)
					}
					// Leave is logged against projects named or coded "leave".
					if strings.Contains(strings.ToLower(name), "leave") ||
						strings.Contains(strings.ToLower(entry.Project.Code), "leave") {
						isLeave = true
					}
				}
				if desc := entry.DayDesc(slot); desc != "" && !containsString(tasks, desc) {
					tasks = append(tasks, desc)
				}
			}
		}

		if isHoliday {
			data.HolidayCount++
		}
		if isLeave {
			data.LeaveCount++
		}

		regular := math.Min(dayHours, regularDayHours)
		overtime := 0.0
		if dayHours > regularDayHours {
			overtime = dayHours - regularDayHours
		}
		if !isHoliday && !isLeave && !isWeekend {
			data.TotalHours += regular
			data.TotalOvertime += overtime
		}

		row := MonthlyDayRow{
			Date:        date.Format("02-Jan"),
			Day:         date.Format("Monday"),
			Project:     strings.Join(projectNames, ", "),
			Task:        strings.Join(tasks, ", "),
			Time:        regular,
			Overtime:    overtime,
			TotalTime:   dayHours,
			IsHoliday:   isHoliday,
			HolidayName: holidayName,
			IsLeave:     isLeave,
			IsWeekend:   isWeekend,
		}
		if isHoliday || isLeave {
			row.Time = 0
			row.TotalTime = 0
		}
		data.Days = append(data.Days, row)
	}

	return &data, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
