package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"timesheet/models"
	"timesheet/services"
)

func TestWriteReportCSV(t *testing.T) {
	report := &services.Report{
		Timesheets: []models.Timesheet{
			{
				User:          &models.User{Name: "Ada", Email: "ada@example.com"},
				WeekStartDate: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC),
				WeekEndDate:   time.Date(2026, 2, 15, 23, 59, 59, 0, time.UTC),
				Status:        models.StatusApproved,
				TotalHours:    36,
				BillableHours: 32,
			},
		},
		Aggregates: services.ReportAggregates{TotalHours: 36, BillableHours: 32},
	}

	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, report); err != nil {
		t.Fatalf("WriteReportCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + data + totals", len(rows))
	}
	if rows[1][0] != "Ada" || rows[1][2] != "2026-02-09" || rows[1][5] != "36.00" {
		t.Errorf("data row = %v", rows[1])
	}
	if rows[2][0] != "TOTAL" || rows[2][6] != "32.00" {
		t.Errorf("totals row = %v", rows[2])
	}
}

func TestWriteMonthlyCSV(t *testing.T) {
	data := &services.MonthlyTimesheetData{
		EmployeeName: "Ada",
		Department:   "Engineering",
		MonthFull:    "February 2026",
		Days: []services.MonthlyDayRow{
			{Date: "09-Feb", Day: "Monday", Project: "Platform", Task: "release prep", Time: 8, Overtime: 1, TotalTime: 9},
			{Date: "11-Feb", Day: "Wednesday", IsHoliday: true, HolidayName: "Founders Day"},
			{Date: "14-Feb", Day: "Saturday", IsWeekend: true},
		},
		TotalHours:    12,
		TotalOvertime: 1,
	}

	var buf bytes.Buffer
	if err := WriteMonthlyCSV(&buf, data); err != nil {
		t.Fatalf("WriteMonthlyCSV: %v", err)
	}

	reader := csv.NewReader(&buf)
	reader.FieldsPerRecord = -1 // meta rows are narrower than day rows
	rows, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	last := rows[len(rows)-1]
	if last[0] != "TOTAL" || last[4] != "12.00" || last[5] != "1.00" {
		t.Errorf("totals row = %v", last)
	}

	var sawHoliday, sawWeekend bool
	for _, row := range rows {
		if len(row) > 2 && row[2] == "Holiday: Founders Day" {
			sawHoliday = true
		}
		if len(row) > 2 && row[2] == "Weekend" {
			sawWeekend = true
		}
	}
	if !sawHoliday || !sawWeekend {
		t.Errorf("holiday/weekend notes missing (holiday=%v weekend=%v)", sawHoliday, sawWeekend)
	}
}
