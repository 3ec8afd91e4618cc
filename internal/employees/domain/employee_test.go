package employees

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validEmployee() Employee {
	return Employee{
		ID:    "EMP001",
		Name:  "Alice Virtanen",
		Email: "alice@example.com",
		Role:  "employee",
		Bank: BankInfo{
			BankName: "Nordea",
			IBAN:     "FI21 1234 5600 0007 85",
			BIC:      "NDEAFIHH",
		},
		Employment: EmploymentInfo{
			JobTitle:   "Technician",
			HourlyRate: decimal.RequireFromString("18.50"),
		},
		Active: true,
	}
}

func TestEmployeeValidate(t *testing.T) {
	require.NoError(t, validEmployee().Validate())
}

func TestEmployeeValidateRejectsBadBankDetails(t *testing.T) {
	emp := validEmployee()
	emp.Bank.IBAN = "FI2112345600000786"
	require.Error(t, emp.Validate(), "checksum failure must be rejected")

	emp = validEmployee()
	emp.Bank.IBAN = "NOT-AN-IBAN"
	require.Error(t, emp.Validate())

	emp = validEmployee()
	emp.Bank.BIC = "TOOLONGBICCODE99"
	require.Error(t, emp.Validate())
}

func TestEmployeeValidateAllowsMissingBankDetails(t *testing.T) {
	emp := validEmployee()
	emp.Bank = BankInfo{}
	require.NoError(t, emp.Validate())
	require.False(t, emp.Payable())
}

func TestEmployeeValidateRequiredFields(t *testing.T) {
	for name, mutate := range map[string]func(*Employee){
		"empty id":      func(e *Employee) { e.ID = "" },
		"empty name":    func(e *Employee) { e.Name = "" },
		"empty email":   func(e *Employee) { e.Email = "" },
		"bad email":     func(e *Employee) { e.Email = "nobody" },
		"unknown role":  func(e *Employee) { e.Role = "owner" },
		"negative rate": func(e *Employee) { e.Employment.HourlyRate = decimal.RequireFromString("-1") },
	} {
		t.Run(name, func(t *testing.T) {
			emp := validEmployee()
			mutate(&emp)
			require.Error(t, emp.Validate())
		})
	}
}

func TestEmployeePayable(t *testing.T) {
	require.True(t, validEmployee().Payable())

	emp := validEmployee()
	emp.Bank.IBAN = "FI0000000000000000"
	require.False(t, emp.Payable(), "structurally valid IBAN failing mod-97 is not payable")
}
