package workrecords

import (
	"testing"

	"github.com/shopspring/decimal"
)

func validRecord() WorkRecord {
	return WorkRecord{
		ID:         "wr-1",
		EmployeeID: "EMP001",
		Date:       "2025-11-03",
		StartTime:  "08:00",
		EndTime:    "16:30",
		Hours:      decimal.RequireFromString("7.5"),
		Status:     StatusPending,
	}
}

func TestWorkRecordValidate(t *testing.T) {
	if err := validRecord().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWorkRecordValidateRejects(t *testing.T) {
	cases := map[string]func(*WorkRecord){
		"empty employee": func(w *WorkRecord) { w.EmployeeID = "" },
		"bad date":       func(w *WorkRecord) { w.Date = "03.11.2025" },
		"zero hours":     func(w *WorkRecord) { w.Hours = decimal.Zero },
		"negative hours": func(w *WorkRecord) { w.Hours = decimal.RequireFromString("-2") },
		"over 24 hours":  func(w *WorkRecord) { w.Hours = decimal.RequireFromString("25") },
		"bad status":     func(w *WorkRecord) { w.Status = "maybe" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			record := validRecord()
			mutate(&record)
			if err := record.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestWorkRecordMonth(t *testing.T) {
	if got := validRecord().Month(); got != "2025-11" {
		t.Fatalf("expected 2025-11, got %q", got)
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusPending, StatusPending, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}
