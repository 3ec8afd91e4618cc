package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	employees "payroll-cloud/internal/employees/domain"
	payroll "payroll-cloud/internal/payroll/domain"
	"payroll-cloud/internal/sepa"
	workrecords "payroll-cloud/internal/workrecords/domain"
)

type stubRecords struct {
	records   []workrecords.WorkRecord
	gotFilter workrecords.Filter
}

func (s *stubRecords) List(ctx context.Context, filter workrecords.Filter) ([]workrecords.WorkRecord, error) {
	s.gotFilter = filter
	var out []workrecords.WorkRecord
	for _, record := range s.records {
		if filter.Month != "" && record.Month() != filter.Month {
			continue
		}
		if filter.Status != "" && record.Status != filter.Status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

type stubEmployees struct {
	list []employees.Employee
}

func (s *stubEmployees) List(ctx context.Context) ([]employees.Employee, error) {
	return s.list, nil
}

type stubPayments struct {
	byID map[string]payroll.Payment
}

func newStubPayments() *stubPayments {
	return &stubPayments{byID: make(map[string]payroll.Payment)}
}

func (s *stubPayments) List(ctx context.Context, month string) ([]payroll.Payment, error) {
	var out []payroll.Payment
	for _, payment := range s.byID {
		if month != "" && payment.Month != month {
			continue
		}
		out = append(out, payment)
	}
	return out, nil
}

func (s *stubPayments) Get(ctx context.Context, id string) (*payroll.Payment, error) {
	payment, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	return &payment, nil
}

func (s *stubPayments) Save(ctx context.Context, payment *payroll.Payment) error {
	s.byID[payment.ID] = *payment
	return nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

func approvedRecord(employeeID, name, date, hours string) workrecords.WorkRecord {
	return workrecords.WorkRecord{
		ID:           "wr-" + employeeID + "-" + date,
		EmployeeID:   employeeID,
		EmployeeName: name,
		Date:         date,
		Hours:        decimal.RequireFromString(hours),
		Status:       workrecords.StatusApproved,
	}
}

func employee(id, name, iban string, rate string) employees.Employee {
	emp := employees.Employee{
		ID:     id,
		Name:   name,
		Email:  strings.ToLower(name) + "@example.com",
		Role:   "employee",
		Active: true,
	}
	emp.Bank.IBAN = iban
	if rate != "" {
		emp.Employment.HourlyRate = decimal.RequireFromString(rate)
	}
	return emp
}

func testDebtor() sepa.DebtorProfile {
	return sepa.DebtorProfile{
		Name: "Demo Company Oy",
		IBAN: "FI2112345600000785",
		BIC:  "NDEAFIHH",
	}
}

func newTestService(t *testing.T, records *stubRecords, emps *stubEmployees) *Service {
	t.Helper()
	clock := fixedClock{at: time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)}
	service, err := NewService(records, emps, newStubPayments(), testDebtor(), WithClock(clock))
	require.NoError(t, err)
	return service
}

func TestMonthlySummaryAggregatesApprovedHours(t *testing.T) {
	records := &stubRecords{records: []workrecords.WorkRecord{
		approvedRecord("EMP001", "Alice", "2025-11-03", "7.5"),
		approvedRecord("EMP001", "Alice", "2025-11-04", "8"),
		approvedRecord("EMP002", "Bob", "2025-11-03", "6"),
		{ID: "wr-x", EmployeeID: "EMP001", Date: "2025-11-05", Hours: decimal.NewFromInt(8), Status: workrecords.StatusPending},
	}}
	emps := &stubEmployees{list: []employees.Employee{
		employee("EMP001", "Alice", "FI2112345600000785", "20"),
		employee("EMP002", "Bob", "", ""),
	}}
	service := newTestService(t, records, emps)

	lines, err := service.MonthlySummary(context.Background(), "2025-11")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	require.Equal(t, "EMP001", lines[0].EmployeeID)
	require.True(t, lines[0].TotalHours.Equal(decimal.RequireFromString("15.5")))
	require.True(t, lines[0].TotalPay.Equal(decimal.RequireFromString("310")), "15.5h x 20 = 310, got %s", lines[0].TotalPay)
	require.True(t, lines[0].Payable)

	require.Equal(t, "EMP002", lines[1].EmployeeID)
	require.True(t, lines[1].HourlyRate.Equal(decimal.NewFromInt(15)), "default rate applies")
	require.True(t, lines[1].TotalPay.Equal(decimal.NewFromInt(90)))
	require.False(t, lines[1].Payable)

	require.Equal(t, workrecords.StatusApproved, records.gotFilter.Status)
}

func TestMonthlySummaryRejectsBadMonth(t *testing.T) {
	service := newTestService(t, &stubRecords{}, &stubEmployees{})
	_, err := service.MonthlySummary(context.Background(), "November")
	require.ErrorIs(t, err, payroll.ErrBadMonth)
}

func TestBuildExportProducesSEPAFile(t *testing.T) {
	records := &stubRecords{records: []workrecords.WorkRecord{
		approvedRecord("EMP001", "Alice", "2025-11-03", "10"),
	}}
	emps := &stubEmployees{list: []employees.Employee{
		employee("EMP001", "Alice", "FI2112345600000785", "20"),
	}}
	service := newTestService(t, records, emps)

	result, err := service.BuildExport(context.Background(), "2025-11", time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, "sepa_2025-11.xml", result.Filename)
	require.Equal(t, "SAL-2025-11-1764576000", result.MessageID, "message id derives from the injected clock")
	require.Empty(t, result.Excluded)

	xml := string(result.XML)
	require.Contains(t, xml, "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03")
	require.Contains(t, xml, "<MsgId>SAL-2025-11-1764576000</MsgId>")
	require.Contains(t, xml, "<InstdAmt Ccy=\"EUR\">200.00</InstdAmt>")
	require.Contains(t, xml, "<EndToEndId>SAL-EMP001-1</EndToEndId>")
	require.Contains(t, xml, "<Ustrd>Salary 2025-11</Ustrd>")
	require.Contains(t, xml, "<ReqdExctnDt>2025-11-25</ReqdExctnDt>")
}

func TestBuildExportExcludesUnpayableEmployees(t *testing.T) {
	records := &stubRecords{records: []workrecords.WorkRecord{
		approvedRecord("EMP001", "Alice", "2025-11-03", "10"),
		approvedRecord("EMP002", "Bob", "2025-11-03", "8"),
		approvedRecord("EMP003", "Carol", "2025-11-03", "8"),
	}}
	emps := &stubEmployees{list: []employees.Employee{
		employee("EMP001", "Alice", "FI2112345600000785", "20"),
		employee("EMP002", "Bob", "", "20"),
		employee("EMP003", "Carol", "FI0000000000000000", "20"),
	}}
	service := newTestService(t, records, emps)

	result, err := service.BuildExport(context.Background(), "2025-11", time.Time{})
	require.NoError(t, err)

	require.Len(t, result.Excluded, 2)
	require.Equal(t, "EMP002", result.Excluded[0].EmployeeID)
	require.Equal(t, "no IBAN on file", result.Excluded[0].Reason)
	require.Equal(t, "EMP003", result.Excluded[1].EmployeeID)
	require.Equal(t, "IBAN failed mod-97 check", result.Excluded[1].Reason)

	xml := string(result.XML)
	require.Contains(t, xml, "<NbOfTxs>1</NbOfTxs>")
	require.NotContains(t, xml, "EMP002")
	require.NotContains(t, xml, "EMP003")
}

func TestBuildExportEmptyMonthFails(t *testing.T) {
	service := newTestService(t, &stubRecords{}, &stubEmployees{})
	_, err := service.BuildExport(context.Background(), "2025-11", time.Time{})
	require.ErrorIs(t, err, sepa.ErrEmptyBatch)
}

func TestRecordAndUpdatePayment(t *testing.T) {
	payments := newStubPayments()
	clock := fixedClock{at: time.Date(2025, 12, 1, 8, 0, 0, 0, time.UTC)}
	service, err := NewService(&stubRecords{}, &stubEmployees{}, payments, testDebtor(), WithClock(clock))
	require.NoError(t, err)

	payment, err := service.RecordPayment(context.Background(), RecordPaymentRequest{
		EmployeeID:   "EMP001",
		EmployeeName: "Alice",
		Month:        "2025-11",
		TotalHours:   decimal.NewFromInt(10),
		TotalPay:     decimal.NewFromInt(200),
		RatePerHour:  decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	require.Equal(t, payroll.PaymentPaid, payment.Status)
	require.NotNil(t, payment.DatePaid)

	updated, err := service.UpdatePaymentStatus(context.Background(), payment.ID, payroll.PaymentUnpaid)
	require.NoError(t, err)
	require.Equal(t, payroll.PaymentUnpaid, updated.Status)
	require.Nil(t, updated.DatePaid)
}

func TestUpdatePaymentStatusNotFound(t *testing.T) {
	service := newTestService(t, &stubRecords{}, &stubEmployees{})
	_, err := service.UpdatePaymentStatus(context.Background(), "missing", payroll.PaymentPaid)
	require.ErrorIs(t, err, payroll.ErrPaymentNotFound)
}
