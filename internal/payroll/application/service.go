package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	employees "payroll-cloud/internal/employees/domain"
	"payroll-cloud/internal/observability/metrics"
	payroll "payroll-cloud/internal/payroll/domain"
	"payroll-cloud/internal/sepa"
	workrecords "payroll-cloud/internal/workrecords/domain"
)

// RecordSource supplies work records for aggregation.
type RecordSource interface {
	List(ctx context.Context, filter workrecords.Filter) ([]workrecords.WorkRecord, error)
}

// EmployeeSource supplies employee master data.
type EmployeeSource interface {
	List(ctx context.Context) ([]employees.Employee, error)
}

// ExcludedEmployee names an employee left out of a SEPA export and why.
type ExcludedEmployee struct {
	EmployeeID   string `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
	Reason       string `json:"reason"`
}

// ExportResult is a generated SEPA file plus its export metadata.
type ExportResult struct {
	XML       []byte
	Filename  string
	MessageID string
	Excluded  []ExcludedEmployee
}

// Service aggregates approved hours into payroll lines and SEPA
// payment files.
type Service struct {
	records     RecordSource
	employees   EmployeeSource
	payments    payroll.PaymentRepository
	encoder     *sepa.Encoder
	clock       sepa.Clock
	debtor      sepa.DebtorProfile
	defaultRate decimal.Decimal
}

// Option configures the service.
type Option func(*Service)

// WithDefaultRate overrides the fallback hourly rate used when an
// employee has none on file.
func WithDefaultRate(rate decimal.Decimal) Option {
	return func(s *Service) {
		if rate.IsPositive() {
			s.defaultRate = rate
		}
	}
}

// WithClock overrides the clock, for deterministic exports in tests.
func WithClock(clock sepa.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs a payroll service.
func NewService(records RecordSource, emps EmployeeSource, payments payroll.PaymentRepository, debtor sepa.DebtorProfile, opts ...Option) (*Service, error) {
	if records == nil {
		return nil, errors.New("payroll: nil record source")
	}
	if emps == nil {
		return nil, errors.New("payroll: nil employee source")
	}
	if payments == nil {
		return nil, errors.New("payroll: nil payment repo")
	}
	service := &Service{
		records:     records,
		employees:   emps,
		payments:    payments,
		clock:       sepa.SystemClock{},
		debtor:      debtor,
		defaultRate: decimal.NewFromInt(15),
	}
	for _, opt := range opts {
		opt(service)
	}
	encoder, err := sepa.NewEncoder(service.clock)
	if err != nil {
		return nil, err
	}
	service.encoder = encoder
	return service, nil
}

// MonthlySummary aggregates approved hours for a month into one line
// per employee, hours times hourly rate, sorted by employee id.
func (s *Service) MonthlySummary(ctx context.Context, month string) ([]payroll.PayrollLine, error) {
	start := time.Now()
	lines, err := s.monthlySummary(ctx, month)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObservePayrollSummary(result, time.Since(start))
	return lines, err
}

func (s *Service) monthlySummary(ctx context.Context, month string) ([]payroll.PayrollLine, error) {
	if !payroll.ValidMonth(month) {
		return nil, fmt.Errorf("%w, got %q", payroll.ErrBadMonth, month)
	}

	records, err := s.records.List(ctx, workrecords.Filter{
		Month:  month,
		Status: workrecords.StatusApproved,
	})
	if err != nil {
		return nil, err
	}
	staff, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]employees.Employee, len(staff))
	for _, emp := range staff {
		byID[emp.ID] = emp
	}

	totals := make(map[string]*payroll.PayrollLine)
	for _, record := range records {
		line, ok := totals[record.EmployeeID]
		if !ok {
			line = &payroll.PayrollLine{
				EmployeeID:   record.EmployeeID,
				EmployeeName: record.EmployeeName,
				Month:        month,
			}
			totals[record.EmployeeID] = line
		}
		line.TotalHours = line.TotalHours.Add(record.Hours)
	}

	lines := make([]payroll.PayrollLine, 0, len(totals))
	for _, line := range totals {
		emp, known := byID[line.EmployeeID]
		rate := s.defaultRate
		if known && emp.Employment.HourlyRate.IsPositive() {
			rate = emp.Employment.HourlyRate
		}
		if line.EmployeeName == "" && known {
			line.EmployeeName = emp.Name
		}
		if line.EmployeeName == "" {
			line.EmployeeName = "Unknown"
		}
		line.HourlyRate = rate
		line.TotalPay = line.TotalHours.Mul(rate)
		if known {
			line.IBAN = sepa.NormalizeIBAN(emp.Bank.IBAN)
			line.Payable = emp.Payable()
		}
		lines = append(lines, *line)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].EmployeeID < lines[j].EmployeeID })
	return lines, nil
}

// BuildExport generates a SEPA credit transfer file for the month.
// Employees without a clearing IBAN are excluded and reported, not
// failed. A zero execution date defaults to today.
func (s *Service) BuildExport(ctx context.Context, month string, executionDate time.Time) (*ExportResult, error) {
	start := time.Now()
	result, err := s.buildExport(ctx, month, executionDate)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObservePayrollExport("sepa", outcome, time.Since(start))
	if result != nil {
		metrics.AddExportExcluded(len(result.Excluded))
	}
	return result, err
}

func (s *Service) buildExport(ctx context.Context, month string, executionDate time.Time) (*ExportResult, error) {
	lines, err := s.monthlySummary(ctx, month)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if executionDate.IsZero() {
		executionDate = now
	}

	var (
		instructions []sepa.PaymentInstruction
		excluded     []ExcludedEmployee
	)
	for _, line := range lines {
		if !line.TotalPay.IsPositive() {
			continue
		}
		if line.IBAN == "" {
			excluded = append(excluded, ExcludedEmployee{
				EmployeeID:   line.EmployeeID,
				EmployeeName: line.EmployeeName,
				Reason:       "no IBAN on file",
			})
			continue
		}
		if !line.Payable {
			excluded = append(excluded, ExcludedEmployee{
				EmployeeID:   line.EmployeeID,
				EmployeeName: line.EmployeeName,
				Reason:       "IBAN failed mod-97 check",
			})
			continue
		}
		instructions = append(instructions, sepa.PaymentInstruction{
			EmployeeID: line.EmployeeID,
			Name:       line.EmployeeName,
			IBAN:       line.IBAN,
			Amount:     line.TotalPay.Round(2),
			Remittance: "Salary " + month,
		})
	}

	messageID := "SAL-" + month + "-" + strconv.FormatInt(now.Unix(), 10)
	batch := sepa.PaymentBatch{
		MessageID:     messageID,
		ExecutionDate: executionDate,
		Payments:      instructions,
	}
	xmlBytes, err := s.encoder.Encode(batch, s.debtor)
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		XML:       xmlBytes,
		Filename:  "sepa_" + month + ".xml",
		MessageID: messageID,
		Excluded:  excluded,
	}, nil
}

// RecordPaymentRequest marks a month as paid out for one employee.
type RecordPaymentRequest struct {
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	Month        string          `json:"month"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	TotalPay     decimal.Decimal `json:"totalPay"`
	RatePerHour  decimal.Decimal `json:"ratePerHour"`
}

// RecordPayment stores a paid payment with the payout timestamp.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*payroll.Payment, error) {
	now := time.Now().UTC()
	payment := payroll.Payment{
		ID:           "pay-" + uuid.NewString(),
		EmployeeID:   req.EmployeeID,
		EmployeeName: req.EmployeeName,
		Month:        req.Month,
		TotalHours:   req.TotalHours,
		TotalPay:     req.TotalPay,
		RatePerHour:  req.RatePerHour,
		Status:       payroll.PaymentPaid,
		DatePaid:     &now,
		CreatedAt:    now,
	}
	if err := payment.Validate(); err != nil {
		metrics.IncPaymentRecord(metrics.ResultError)
		return nil, err
	}
	if err := s.payments.Save(ctx, &payment); err != nil {
		metrics.IncPaymentRecord(metrics.ResultError)
		return nil, err
	}
	metrics.IncPaymentRecord(metrics.ResultSuccess)
	return &payment, nil
}

// ListPayments returns payments, optionally filtered by month.
func (s *Service) ListPayments(ctx context.Context, month string) ([]payroll.Payment, error) {
	if month != "" && !payroll.ValidMonth(month) {
		return nil, fmt.Errorf("%w, got %q", payroll.ErrBadMonth, month)
	}
	return s.payments.List(ctx, month)
}

// UpdatePaymentStatus flips a payment between paid and unpaid. Moving
// to paid stamps the payout time; moving away clears it.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id, status string) (*payroll.Payment, error) {
	if status != payroll.PaymentPaid && status != payroll.PaymentUnpaid {
		return nil, fmt.Errorf("payment: unknown status %q", status)
	}
	payment, err := s.payments.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, payroll.ErrPaymentNotFound
	}
	payment.Status = status
	if status == payroll.PaymentPaid {
		now := time.Now().UTC()
		payment.DatePaid = &now
	} else {
		payment.DatePaid = nil
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}
