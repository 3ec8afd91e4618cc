package sepa

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	namespace         = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"
	paymentMethod     = "TRF"
	serviceLevel      = "SEPA"
	chargeBearer      = "SLEV"
	paymentInfoPrefix = "PMT-"
	defaultRemittance = "Salary payment"

	creationTimeLayout  = "2006-01-02T15:04:05"
	executionDateLayout = "2006-01-02"
)

// Encoder turns a validated payment batch into a pain.001.001.03 document.
// Safe for concurrent use; the clock is read once per Encode call.
type Encoder struct {
	clock Clock
}

// NewEncoder constructs an Encoder.
func NewEncoder(clock Clock) (*Encoder, error) {
	if clock == nil {
		return nil, errors.New("sepa encoder: nil clock")
	}
	return &Encoder{clock: clock}, nil
}

// Encode validates the batch and debtor profile and renders the XML
// document. Any precondition violation aborts the whole encode with no
// partial output; instructions are never silently skipped.
func (e *Encoder) Encode(batch PaymentBatch, debtor DebtorProfile) ([]byte, error) {
	if e == nil || e.clock == nil {
		return nil, errors.New("sepa encoder: not initialized")
	}

	debtorName := strings.TrimSpace(debtor.Name)
	if debtorName == "" {
		return nil, validationErr("debtor.name", debtor.Name, "name required")
	}
	debtorIBAN := NormalizeIBAN(debtor.IBAN)
	if !ibanPattern.MatchString(debtorIBAN) {
		return nil, validationErr("debtor.iban", debtor.IBAN, "not a structurally valid IBAN")
	}
	debtorBIC := NormalizeBIC(debtor.BIC)
	if !bicPattern.MatchString(debtorBIC) {
		return nil, validationErr("debtor.bic", debtor.BIC, "not a valid 8 or 11 character BIC")
	}

	messageID := strings.TrimSpace(batch.MessageID)
	if messageID == "" {
		return nil, validationErr("batch.messageId", batch.MessageID, "message id required")
	}
	// Over-long ids are rejected outright, never truncated: the id is the
	// bank's duplicate detection key and must round-trip unchanged.
	if len(messageID) > maxIdentifierLen {
		return nil, validationErr("batch.messageId", messageID, "longer than 35 characters")
	}
	if !identifierPattern.MatchString(messageID) {
		return nil, validationErr("batch.messageId", messageID, "contains characters outside the ISO 20022 identifier set")
	}
	if batch.ExecutionDate.IsZero() {
		return nil, validationErr("batch.executionDate", "", "execution date required")
	}
	if len(batch.Payments) == 0 {
		return nil, ErrEmptyBatch
	}

	controlSum := decimal.Zero
	transactions := make([]creditTransferTx, 0, len(batch.Payments))
	for i, p := range batch.Payments {
		field := func(name string) string { return fmt.Sprintf("payments[%d].%s", i, name) }

		name := strings.TrimSpace(p.Name)
		if name == "" {
			return nil, validationErr(field("name"), p.Name, "beneficiary name required")
		}
		iban := NormalizeIBAN(p.IBAN)
		if !ibanPattern.MatchString(iban) {
			return nil, validationErr(field("iban"), p.IBAN, "not a structurally valid IBAN")
		}
		if !p.Amount.IsPositive() {
			return nil, validationErr(field("amount"), p.Amount.String(), "amount must be strictly positive")
		}
		if !p.Amount.Equal(p.Amount.Truncate(2)) {
			return nil, &PrecisionError{Field: field("amount"), Value: p.Amount.String()}
		}

		endToEndID := strings.TrimSpace(p.EndToEndID)
		if endToEndID == "" {
			endToEndID = "SAL-" + strings.TrimSpace(p.EmployeeID) + "-" + strconv.Itoa(i+1)
		}
		if !identifierPattern.MatchString(endToEndID) {
			return nil, validationErr(field("endToEndId"), endToEndID, "not a valid 35 character identifier")
		}

		remittance := strings.TrimSpace(p.Remittance)
		if remittance == "" {
			remittance = defaultRemittance
		}

		// Control sum accumulates at full precision; only the rendered
		// strings are fixed to two decimals.
		controlSum = controlSum.Add(p.Amount)

		transactions = append(transactions, creditTransferTx{
			PmtID: paymentID{EndToEndID: endToEndID},
			Amt:   txAmount{InstdAmt: instructedAmount{Ccy: Currency, Value: p.Amount.StringFixed(2)}},
			Cdtr:  party{Nm: name},
			CdtrAcct: cashAccount{
				ID: accountID{IBAN: iban},
			},
			RmtInf: remittanceInfo{Ustrd: remittance},
		})
	}

	nbOfTxs := strconv.Itoa(len(transactions))
	ctrlSum := controlSum.StringFixed(2)
	createdAt := e.clock.Now().UTC().Format(creationTimeLayout)

	doc := document{
		Xmlns: namespace,
		CstmrCdtTrfInitn: creditTransferInitiation{
			GrpHdr: groupHeader{
				MsgID:    messageID,
				CreDtTm:  createdAt,
				NbOfTxs:  nbOfTxs,
				CtrlSum:  ctrlSum,
				InitgPty: party{Nm: debtorName},
			},
			PmtInf: paymentInfo{
				PmtInfID:    paymentInfoPrefix + messageID,
				PmtMtd:      paymentMethod,
				BtchBookg:   "true",
				NbOfTxs:     nbOfTxs,
				CtrlSum:     ctrlSum,
				PmtTpInf:    paymentTypeInfo{SvcLvl: serviceLevelCode{Cd: serviceLevel}},
				ReqdExctnDt: batch.ExecutionDate.Format(executionDateLayout),
				Dbtr:        party{Nm: debtorName},
				DbtrAcct:    cashAccount{ID: accountID{IBAN: debtorIBAN}},
				DbtrAgt:     financialAgent{FinInstnID: institutionID{BIC: debtorBIC}},
				ChrgBr:      chargeBearer,
				CdtTrfTxInf: transactions,
			},
		},
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("sepa encoder: marshal: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// XML document shape (internal). The element names follow the
// pain.001.001.03 schema.

type document struct {
	XMLName          xml.Name                 `xml:"Document"`
	Xmlns            string                   `xml:"xmlns,attr"`
	CstmrCdtTrfInitn creditTransferInitiation `xml:"CstmrCdtTrfInitn"`
}

type creditTransferInitiation struct {
	GrpHdr groupHeader `xml:"GrpHdr"`
	PmtInf paymentInfo `xml:"PmtInf"`
}

type groupHeader struct {
	MsgID    string `xml:"MsgId"`
	CreDtTm  string `xml:"CreDtTm"`
	NbOfTxs  string `xml:"NbOfTxs"`
	CtrlSum  string `xml:"CtrlSum"`
	InitgPty party  `xml:"InitgPty"`
}

type paymentInfo struct {
	PmtInfID    string             `xml:"PmtInfId"`
	PmtMtd      string             `xml:"PmtMtd"`
	BtchBookg   string             `xml:"BtchBookg"`
	NbOfTxs     string             `xml:"NbOfTxs"`
	CtrlSum     string             `xml:"CtrlSum"`
	PmtTpInf    paymentTypeInfo    `xml:"PmtTpInf"`
	ReqdExctnDt string             `xml:"ReqdExctnDt"`
	Dbtr        party              `xml:"Dbtr"`
	DbtrAcct    cashAccount        `xml:"DbtrAcct"`
	DbtrAgt     financialAgent     `xml:"DbtrAgt"`
	ChrgBr      string             `xml:"ChrgBr"`
	CdtTrfTxInf []creditTransferTx `xml:"CdtTrfTxInf"`
}

type paymentTypeInfo struct {
	SvcLvl serviceLevelCode `xml:"SvcLvl"`
}

type serviceLevelCode struct {
	Cd string `xml:"Cd"`
}

type party struct {
	Nm string `xml:"Nm"`
}

type cashAccount struct {
	ID accountID `xml:"Id"`
}

type accountID struct {
	IBAN string `xml:"IBAN"`
}

type financialAgent struct {
	FinInstnID institutionID `xml:"FinInstnId"`
}

type institutionID struct {
	BIC string `xml:"BIC"`
}

type creditTransferTx struct {
	PmtID    paymentID      `xml:"PmtId"`
	Amt      txAmount       `xml:"Amt"`
	Cdtr     party          `xml:"Cdtr"`
	CdtrAcct cashAccount    `xml:"CdtrAcct"`
	RmtInf   remittanceInfo `xml:"RmtInf"`
}

type paymentID struct {
	EndToEndID string `xml:"EndToEndId"`
}

type txAmount struct {
	InstdAmt instructedAmount `xml:"InstdAmt"`
}

type instructedAmount struct {
	Ccy   string `xml:"Ccy,attr"`
	Value string `xml:",chardata"`
}

type remittanceInfo struct {
	Ustrd string `xml:"Ustrd"`
}
