package sepa

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testClock() fixedClock {
	return fixedClock{now: time.Date(2025, 11, 20, 9, 30, 15, 987654321, time.UTC)}
}

func demoDebtor() DebtorProfile {
	return DebtorProfile{
		Name: "Demo Company Oy",
		IBAN: "FI0000000000000000",
		BIC:  "NDEAFIHH",
	}
}

func singlePaymentBatch() PaymentBatch {
	return PaymentBatch{
		MessageID:     "SAL-2025-11-999",
		ExecutionDate: time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC),
		Payments: []PaymentInstruction{
			{
				EmployeeID: "EMP001",
				Name:       "Alice",
				IBAN:       "FI1111111111111111",
				Amount:     decimal.NewFromFloat(1234.5),
				Remittance: "Salary 2025-11",
			},
		},
	}
}

func mustEncode(t *testing.T, batch PaymentBatch, debtor DebtorProfile) document {
	t.Helper()
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)
	out, err := enc.Encode(batch, debtor)
	require.NoError(t, err)

	var doc document
	require.NoError(t, xml.Unmarshal(out, &doc))
	return doc
}

func TestEncodeSingleInstruction(t *testing.T) {
	doc := mustEncode(t, singlePaymentBatch(), demoDebtor())

	hdr := doc.CstmrCdtTrfInitn.GrpHdr
	assert.Equal(t, "SAL-2025-11-999", hdr.MsgID)
	assert.Equal(t, "2025-11-20T09:30:15", hdr.CreDtTm)
	assert.Equal(t, "1", hdr.NbOfTxs)
	assert.Equal(t, "1234.50", hdr.CtrlSum)
	assert.Equal(t, "Demo Company Oy", hdr.InitgPty.Nm)

	info := doc.CstmrCdtTrfInitn.PmtInf
	assert.Equal(t, "PMT-SAL-2025-11-999", info.PmtInfID)
	assert.Equal(t, "TRF", info.PmtMtd)
	assert.Equal(t, "true", info.BtchBookg)
	assert.Equal(t, "1", info.NbOfTxs)
	assert.Equal(t, "1234.50", info.CtrlSum)
	assert.Equal(t, "SEPA", info.PmtTpInf.SvcLvl.Cd)
	assert.Equal(t, "2025-11-25", info.ReqdExctnDt)
	assert.Equal(t, "Demo Company Oy", info.Dbtr.Nm)
	assert.Equal(t, "FI0000000000000000", info.DbtrAcct.ID.IBAN)
	assert.Equal(t, "NDEAFIHH", info.DbtrAgt.FinInstnID.BIC)
	assert.Equal(t, "SLEV", info.ChrgBr)

	require.Len(t, info.CdtTrfTxInf, 1)
	tx := info.CdtTrfTxInf[0]
	assert.Equal(t, "SAL-EMP001-1", tx.PmtID.EndToEndID)
	assert.Equal(t, "EUR", tx.Amt.InstdAmt.Ccy)
	assert.Equal(t, "1234.50", tx.Amt.InstdAmt.Value)
	assert.Equal(t, "Alice", tx.Cdtr.Nm)
	assert.Equal(t, "FI1111111111111111", tx.CdtrAcct.ID.IBAN)
	assert.Equal(t, "Salary 2025-11", tx.RmtInf.Ustrd)
}

func TestEncodeControlSumNoFloatDrift(t *testing.T) {
	batch := PaymentBatch{
		MessageID:     "SAL-2025-11-7",
		ExecutionDate: time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC),
		Payments: []PaymentInstruction{
			{EmployeeID: "E1", Name: "A", IBAN: "FI1111111111111111", Amount: decimal.RequireFromString("100.10")},
			{EmployeeID: "E2", Name: "B", IBAN: "FI2222222222222222", Amount: decimal.RequireFromString("200.20")},
			{EmployeeID: "E3", Name: "C", IBAN: "FI3333333333333333", Amount: decimal.RequireFromString("50.00")},
		},
	}
	doc := mustEncode(t, batch, demoDebtor())

	assert.Equal(t, "350.30", doc.CstmrCdtTrfInitn.GrpHdr.CtrlSum)
	assert.Equal(t, "350.30", doc.CstmrCdtTrfInitn.PmtInf.CtrlSum)
	assert.Equal(t, "3", doc.CstmrCdtTrfInitn.GrpHdr.NbOfTxs)
	assert.Equal(t, "3", doc.CstmrCdtTrfInitn.PmtInf.NbOfTxs)

	// Control sum equals the sum of the rendered instruction amounts.
	sum := decimal.Zero
	for _, tx := range doc.CstmrCdtTrfInitn.PmtInf.CdtTrfTxInf {
		sum = sum.Add(decimal.RequireFromString(tx.Amt.InstdAmt.Value))
	}
	assert.Equal(t, "350.30", sum.StringFixed(2))
}

func TestEncodePreservesInstructionOrder(t *testing.T) {
	batch := PaymentBatch{
		MessageID:     "SAL-2025-11-8",
		ExecutionDate: time.Date(2025, 11, 25, 0, 0, 0, 0, time.UTC),
		Payments: []PaymentInstruction{
			{EmployeeID: "Z9", Name: "Zed", IBAN: "FI1111111111111111", Amount: decimal.RequireFromString("10.00")},
			{EmployeeID: "A1", Name: "Ann", IBAN: "FI2222222222222222", Amount: decimal.RequireFromString("20.00")},
			{EmployeeID: "M5", Name: "Mia", IBAN: "FI3333333333333333", Amount: decimal.RequireFromString("30.00")},
		},
	}
	doc := mustEncode(t, batch, demoDebtor())

	txs := doc.CstmrCdtTrfInitn.PmtInf.CdtTrfTxInf
	require.Len(t, txs, 3)
	assert.Equal(t, "SAL-Z9-1", txs[0].PmtID.EndToEndID)
	assert.Equal(t, "SAL-A1-2", txs[1].PmtID.EndToEndID)
	assert.Equal(t, "SAL-M5-3", txs[2].PmtID.EndToEndID)
}

func TestEncodeDeterministic(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	first, err := enc.Encode(singlePaymentBatch(), demoDebtor())
	require.NoError(t, err)
	second, err := enc.Encode(singlePaymentBatch(), demoDebtor())
	require.NoError(t, err)

	assert.True(t, bytes.Equal(first, second))
}

func TestEncodeSuppliedEndToEndIDWins(t *testing.T) {
	batch := singlePaymentBatch()
	batch.Payments[0].EndToEndID = "REF-CUSTOM-42"
	doc := mustEncode(t, batch, demoDebtor())
	assert.Equal(t, "REF-CUSTOM-42", doc.CstmrCdtTrfInitn.PmtInf.CdtTrfTxInf[0].PmtID.EndToEndID)
}

func TestEncodeDefaultRemittance(t *testing.T) {
	batch := singlePaymentBatch()
	batch.Payments[0].Remittance = ""
	doc := mustEncode(t, batch, demoDebtor())
	assert.Equal(t, "Salary payment", doc.CstmrCdtTrfInitn.PmtInf.CdtTrfTxInf[0].RmtInf.Ustrd)
}

func TestEncodeNormalizesAccounts(t *testing.T) {
	debtor := demoDebtor()
	debtor.IBAN = "fi00 0000 0000 0000 00"
	debtor.BIC = "ndeafihh"
	batch := singlePaymentBatch()
	batch.Payments[0].IBAN = "fi11 1111 1111 1111 11"

	doc := mustEncode(t, batch, debtor)
	assert.Equal(t, "FI0000000000000000", doc.CstmrCdtTrfInitn.PmtInf.DbtrAcct.ID.IBAN)
	assert.Equal(t, "NDEAFIHH", doc.CstmrCdtTrfInitn.PmtInf.DbtrAgt.FinInstnID.BIC)
	assert.Equal(t, "FI1111111111111111", doc.CstmrCdtTrfInitn.PmtInf.CdtTrfTxInf[0].CdtrAcct.ID.IBAN)
}

func TestEncodeRejectsEmptyBatch(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	batch := singlePaymentBatch()
	batch.Payments = nil
	out, err := enc.Encode(batch, demoDebtor())
	assert.Nil(t, out)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestEncodeRejectsMalformedIBAN(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	debtor := demoDebtor()
	debtor.IBAN = "00123456"
	out, err := enc.Encode(singlePaymentBatch(), debtor)
	assert.Nil(t, out)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "debtor.iban", verr.Field)
	assert.Equal(t, "00123456", verr.Value)

	batch := singlePaymentBatch()
	batch.Payments[0].IBAN = "00123456"
	out, err = enc.Encode(batch, demoDebtor())
	assert.Nil(t, out)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payments[0].iban", verr.Field)
}

func TestEncodeRejectsBadBIC(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	debtor := demoDebtor()
	debtor.BIC = "NDEA"
	_, err = enc.Encode(singlePaymentBatch(), debtor)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "debtor.bic", verr.Field)
}

func TestEncodeRejectsNonPositiveAmount(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	for _, amount := range []string{"0", "-12.50"} {
		batch := singlePaymentBatch()
		batch.Payments[0].Amount = decimal.RequireFromString(amount)
		_, err = enc.Encode(batch, demoDebtor())

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "amount %s", amount)
		assert.Equal(t, "payments[0].amount", verr.Field)
	}
}

func TestEncodeRejectsSubCentAmount(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	batch := singlePaymentBatch()
	batch.Payments[0].Amount = decimal.RequireFromString("10.005")
	_, err = enc.Encode(batch, demoDebtor())

	var perr *PrecisionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "payments[0].amount", perr.Field)
}

func TestEncodeRejectsBadMessageID(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	cases := map[string]string{
		"empty":     "",
		"too long":  "SAL-2025-11-0123456789012345678901234567890",
		"bad chars": "SAL\x002025",
	}
	for name, id := range cases {
		batch := singlePaymentBatch()
		batch.MessageID = id
		out, err := enc.Encode(batch, demoDebtor())
		assert.Nil(t, out, name)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr, name)
		assert.Equal(t, "batch.messageId", verr.Field, name)
	}
}

func TestEncodeRejectsMissingExecutionDate(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)

	batch := singlePaymentBatch()
	batch.ExecutionDate = time.Time{}
	_, err = enc.Encode(batch, demoDebtor())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "batch.executionDate", verr.Field)
}

func TestEncodeOutputHasDeclarationAndNamespace(t *testing.T) {
	enc, err := NewEncoder(testClock())
	require.NoError(t, err)
	out, err := enc.Encode(singlePaymentBatch(), demoDebtor())
	require.NoError(t, err)

	text := string(out)
	assert.True(t, bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)))
	assert.Contains(t, text, `xmlns="urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"`)
	assert.Contains(t, text, "<CstmrCdtTrfInitn>")
}

func TestNewEncoderRequiresClock(t *testing.T) {
	_, err := NewEncoder(nil)
	if err == nil {
		t.Fatal("expected error for nil clock")
	}
}
