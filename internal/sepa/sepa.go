// Package sepa builds ISO 20022 pain.001.001.03 customer credit transfer
// initiation files for salary batches. The encoder is a pure transformation:
// it validates its inputs, assembles a typed document and serializes it in
// one pass. It performs no I/O and keeps no state between calls.
package sepa

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the only currency the SEPA credit transfer scheme carries.
const Currency = "EUR"

// DebtorProfile identifies the paying organization. One profile covers the
// whole batch; the generated file contains a single PmtInf block.
type DebtorProfile struct {
	Name string
	IBAN string
	BIC  string
}

// PaymentInstruction is one salary transfer to a beneficiary.
type PaymentInstruction struct {
	EmployeeID string
	Name       string
	IBAN       string
	Amount     decimal.Decimal
	// Remittance is the free-text reference shown to the beneficiary.
	// Empty means the default "Salary payment".
	Remittance string
	// EndToEndID correlates the transfer through the whole processing
	// chain. When empty it is derived as SAL-<employeeId>-<ordinal>,
	// unique within the message.
	EndToEndID string
}

// PaymentBatch is one encode request. Payments keep their order in the
// output, one CdtTrfTxInf per instruction.
type PaymentBatch struct {
	// MessageID must be unique across all messages ever sent to the
	// bank; that uniqueness is the caller's responsibility.
	MessageID string
	// ExecutionDate is the calendar date the bank should execute the
	// transfers. The encoder does not compare it against today.
	ExecutionDate time.Time
	Payments      []PaymentInstruction
}

// Clock abstracts time for deterministic encoding in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the current UTC time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
