// Package export renders reports into downloadable formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"timesheet/services"
	"timesheet/timeutil"
)

// WriteReportCSV renders a report as CSV, one row per timesheet followed
// by a totals row.
func WriteReportCSV(w io.Writer, report *services.Report) error {
	cw := csv.NewWriter(w)

	header := []string{"Employee", "Email", "Week Start", "Week End", "Status", "Total Hours", "Billable Hours"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, ts := range report.Timesheets {
		name, email := "", ""
		if ts.User != nil {
			name = ts.User.Name
			email = ts.User.Email
		}
		row := []string{
			name,
			email,
			timeutil.DateString(ts.WeekStartDate),
			timeutil.DateString(ts.WeekEndDate),
			string(ts.Status),
			fmt.Sprintf("%.2f", ts.TotalHours),
			fmt.Sprintf("%.2f", ts.BillableHours),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	totals := []string{
		"TOTAL", "", "", "", "",
		fmt.Sprintf("%.2f", report.Aggregates.TotalHours),
		fmt.Sprintf("%.2f", report.Aggregates.BillableHours),
	}
	if err := cw.Write(totals); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

// WriteMonthlyCSV renders the day-by-day monthly sheet as CSV.
func WriteMonthlyCSV(w io.Writer, data *services.MonthlyTimesheetData) error {
	cw := csv.NewWriter(w)

	meta := [][]string{
		{"Employee", data.EmployeeName},
		{"Department", data.Department},
		{"Month", data.MonthFull},
		{},
	}
	for _, row := range meta {
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	header := []string{"Date", "Day", "Project", "Task", "Time", "Overtime", "Total"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, day := range data.Days {
		note := day.Project
		switch {
		case day.IsHoliday:
			note = "Holiday: " + day.HolidayName
		case day.IsLeave:
			note = "Leave"
		case day.IsWeekend && day.TotalTime == 0:
			note = "Weekend"
		}
		row := []string{
			day.Date,
			day.Day,
			note,
			day.Task,
			fmt.Sprintf("%.2f", day.Time),
			fmt.Sprintf("%.2f", day.Overtime),
			fmt.Sprintf("%.2f", day.TotalTime),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	totals := []string{
		"TOTAL", "", "", "",
		fmt.Sprintf("%.2f", data.TotalHours),
		fmt.Sprintf("%.2f", data.TotalOvertime),
		fmt.Sprintf("%.2f", data.TotalHours+data.TotalOvertime),
	}
	if err := cw.Write(totals); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
