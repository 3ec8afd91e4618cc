package interfaces

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	payroll "payroll-cloud/internal/payroll/domain"
)

// BuildPayrollXLSX renders a payroll month as a workbook with a
// summary sheet and one row per employee.
func BuildPayrollXLSX(month string, lines []payroll.PayrollLine) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	linesSheet := "lines"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(linesSheet)

	total := 0.0
	hours := 0.0
	for _, line := range lines {
		total += line.TotalPay.InexactFloat64()
		hours += line.TotalHours.InexactFloat64()
	}

	_ = f.SetCellValue(summarySheet, "A1", "Payroll Summary")
	_ = f.SetCellValue(summarySheet, "A3", "Month")
	_ = f.SetCellValue(summarySheet, "B3", month)
	_ = f.SetCellValue(summarySheet, "A4", "Employees")
	_ = f.SetCellValue(summarySheet, "B4", len(lines))
	_ = f.SetCellValue(summarySheet, "A5", "Total Hours")
	_ = f.SetCellValue(summarySheet, "B5", hours)
	_ = f.SetCellValue(summarySheet, "A6", "Total Pay (EUR)")
	_ = f.SetCellValue(summarySheet, "B6", total)

	_ = f.SetCellValue(linesSheet, "A1", "Employee ID")
	_ = f.SetCellValue(linesSheet, "B1", "Name")
	_ = f.SetCellValue(linesSheet, "C1", "Hours")
	_ = f.SetCellValue(linesSheet, "D1", "Rate")
	_ = f.SetCellValue(linesSheet, "E1", "Pay")
	_ = f.SetCellValue(linesSheet, "F1", "Payable")
	for i, line := range lines {
		row := i + 2
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("A%d", row), line.EmployeeID)
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("B%d", row), line.EmployeeName)
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("C%d", row), line.TotalHours.InexactFloat64())
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("D%d", row), line.HourlyRate.InexactFloat64())
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("E%d", row), line.TotalPay.InexactFloat64())
		_ = f.SetCellValue(linesSheet, fmt.Sprintf("F%d", row), line.Payable)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPaymentsCSV renders payment history as CSV.
func BuildPaymentsCSV(payments []payroll.Payment) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "employee_id", "employee_name", "month", "total_hours", "total_pay", "rate_per_hour", "status", "date_paid"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}
	for _, payment := range payments {
		datePaid := ""
		if payment.DatePaid != nil {
			datePaid = payment.DatePaid.Format(time.RFC3339)
		}
		row := []string{
			payment.ID,
			payment.EmployeeID,
			payment.EmployeeName,
			payment.Month,
			payment.TotalHours.String(),
			payment.TotalPay.StringFixed(2),
			payment.RatePerHour.String(),
			payment.Status,
			datePaid,
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}
