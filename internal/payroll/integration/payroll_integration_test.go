package integration_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	employeesdomain "payroll-cloud/internal/employees/domain"
	employeesrepo "payroll-cloud/internal/employees/infrastructure/postgres"
	payrollapp "payroll-cloud/internal/payroll/application"
	payrollrepo "payroll-cloud/internal/payroll/infrastructure/postgres"
	"payroll-cloud/internal/sepa"
	workrecordsdomain "payroll-cloud/internal/workrecords/domain"
	workrecordsrepo "payroll-cloud/internal/workrecords/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
)

func TestPayroll_SummaryExportAndPaymentRoundTrip(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := applySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	ctx := context.Background()
	month := "2031-03"

	_, _ = db.ExecContext(ctx, "DELETE FROM payments WHERE month = $1", month)
	_, _ = db.ExecContext(ctx, "DELETE FROM work_records WHERE date LIKE $1", month+"%")
	_, _ = db.ExecContext(ctx, "DELETE FROM employees WHERE id IN ('emp-it-1', 'emp-it-2')")

	empRepo := employeesrepo.NewEmployeeRepository(db)
	now := time.Now().UTC()
	payable := employeesdomain.Employee{
		ID:    "emp-it-1",
		Name:  "Maija Virtanen",
		Email: "maija.virtanen@payroll-it.test",
		Role:  "employee",
		Bank: employeesdomain.BankInfo{
			BankName: "Nordea",
			IBAN:     "FI21 1234 5600 0007 85",
			BIC:      "NDEAFIHH",
		},
		Employment: employeesdomain.EmploymentInfo{
			JobTitle:   "Technician",
			HourlyRate: decimal.NewFromInt(20),
		},
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	noBank := employeesdomain.Employee{
		ID:        "emp-it-2",
		Name:      "Jussi Korhonen",
		Email:     "jussi.korhonen@payroll-it.test",
		Role:      "employee",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := empRepo.Save(ctx, &payable, ""); err != nil {
		t.Fatalf("save employee: %v", err)
	}
	if err := empRepo.Save(ctx, &noBank, ""); err != nil {
		t.Fatalf("save employee: %v", err)
	}

	recordRepo := workrecordsrepo.NewRecordRepository(db)
	records := []workrecordsdomain.WorkRecord{
		{ID: "wr-it-1", EmployeeID: "emp-it-1", EmployeeName: "Maija Virtanen", Date: month + "-03", Hours: decimal.NewFromFloat(7.5), Status: workrecordsdomain.StatusApproved, CreatedAt: now, UpdatedAt: now},
		{ID: "wr-it-2", EmployeeID: "emp-it-1", EmployeeName: "Maija Virtanen", Date: month + "-04", Hours: decimal.NewFromFloat(2.5), Status: workrecordsdomain.StatusApproved, CreatedAt: now, UpdatedAt: now},
		{ID: "wr-it-3", EmployeeID: "emp-it-2", EmployeeName: "Jussi Korhonen", Date: month + "-03", Hours: decimal.NewFromInt(8), Status: workrecordsdomain.StatusApproved, CreatedAt: now, UpdatedAt: now},
	}
	for i := range records {
		if err := recordRepo.Save(ctx, &records[i]); err != nil {
			t.Fatalf("save record: %v", err)
		}
	}

	paymentRepo := payrollrepo.NewPaymentRepository(db)
	service, err := payrollapp.NewService(recordRepo, empRepo, paymentRepo, sepa.DebtorProfile{
		Name: "Acme Payroll Oy",
		IBAN: "FI2112345600000785",
		BIC:  "NDEAFIHH",
	})
	if err != nil {
		t.Fatalf("payroll service: %v", err)
	}

	lines, err := service.MonthlySummary(ctx, month)
	if err != nil {
		t.Fatalf("monthly summary: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 payroll lines, got %d", len(lines))
	}
	if got := lines[0].TotalPay.StringFixed(2); got != "200.00" {
		t.Fatalf("expected 200.00 for emp-it-1, got %s", got)
	}
	// no rate on file, employer default 15
	if got := lines[1].TotalPay.StringFixed(2); got != "120.00" {
		t.Fatalf("expected 120.00 for emp-it-2, got %s", got)
	}

	result, err := service.BuildExport(ctx, month, time.Time{})
	if err != nil {
		t.Fatalf("build export: %v", err)
	}
	xml := string(result.XML)
	if !strings.Contains(xml, "<NbOfTxs>1</NbOfTxs>") {
		t.Fatalf("expected a single transaction, got:\n%s", xml)
	}
	if !strings.Contains(xml, "<InstdAmt Ccy=\"EUR\">200.00</InstdAmt>") {
		t.Fatalf("expected instructed amount 200.00, got:\n%s", xml)
	}
	if len(result.Excluded) != 1 || result.Excluded[0].EmployeeID != "emp-it-2" {
		t.Fatalf("expected emp-it-2 excluded, got %+v", result.Excluded)
	}

	payment, err := service.RecordPayment(ctx, payrollapp.RecordPaymentRequest{
		EmployeeID:   "emp-it-1",
		EmployeeName: "Maija Virtanen",
		Month:        month,
		TotalHours:   decimal.NewFromInt(10),
		TotalPay:     decimal.NewFromInt(200),
		RatePerHour:  decimal.NewFromInt(20),
	})
	if err != nil {
		t.Fatalf("record payment: %v", err)
	}
	if payment.DatePaid == nil {
		t.Fatal("expected date paid to be set")
	}

	payments, err := service.ListPayments(ctx, month)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 1 || payments[0].ID != payment.ID {
		t.Fatalf("expected the recorded payment, got %+v", payments)
	}
}

func applySchema(db *sql.DB) error {
	content, err := os.ReadFile(filepath.Join(projectRoot(), "schema.sql"))
	if err != nil {
		return err
	}
	_, err = db.Exec(string(content))
	return err
}

func projectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return filepath.Clean(filepath.Join(dir, "..", "..", ".."))
}
