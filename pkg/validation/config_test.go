package validation

import (
	"strings"
	"testing"

	"github.com/iwvelando/loan-schedule/pkg/calendar"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/shopspring/decimal"
)

func termsWith(t *testing.T, mutate func(*loans.TermsInput)) loans.LoanTerms {
	t.Helper()
	in := loans.TermsInput{
		StartDate:              datetime.MustParseTime(datetime.DateLayout, "2026-01-05"),
		Principal:              decimal.NewFromInt(5000),
		TermMonths:             6,
		AnnualRate:             decimal.RequireFromString("0.12"),
		Frequency:              loans.Weekly,
		AdditionalFeeTreatment: loans.Distributed,
		InterestMethod:         loans.Simple,
	}
	if mutate != nil {
		mutate(&in)
	}
	terms, err := loans.NewLoanTerms(in)
	if err != nil {
		t.Fatalf("NewLoanTerms() error = %v", err)
	}
	return terms
}

func TestValidateAll(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*loans.TermsInput)
		count    int
		contains []string
	}{
		{
			name:     "Clean loan",
			mutate:   nil,
			contains: nil,
		},
		{
			name: "Saturday start with bank days only",
			mutate: func(in *loans.TermsInput) {
				in.StartDate = datetime.MustParseTime(datetime.DateLayout, "2026-01-10")
				in.BankDaysOnly = true
			},
			count:    1,
			contains: []string{"2026-01-10 is not a bank day", "falls on 2026-01-19"},
		},
		{
			name: "Saturday start without bank days",
			mutate: func(in *loans.TermsInput) {
				in.StartDate = datetime.MustParseTime(datetime.DateLayout, "2026-01-10")
			},
			contains: nil,
		},
		{
			name:     "Long interest-only phase",
			mutate:   func(in *loans.TermsInput) { in.InterestOnlyPeriods = 20 },
			count:    1,
			contains: []string{"Interest-only periods (20)"},
		},
		{
			name:     "Zero rate",
			mutate:   func(in *loans.TermsInput) { in.AnnualRate = decimal.Zero },
			count:    1,
			contains: []string{"Annual rate is zero"},
		},
		{
			name:     "Separate payment without fee",
			mutate:   func(in *loans.TermsInput) { in.AdditionalFeeTreatment = loans.SeparatePayment },
			count:    1,
			contains: []string{"separate_payment has no effect"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := ValidateAll(termsWith(t, tt.mutate), calendar.Weekends{})
			if len(warnings) != tt.count {
				t.Fatalf("ValidateAll() returned %d warnings, expected %d: %v", len(warnings), tt.count, warnings)
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("ValidateAll() warnings %q missing %q", joined, want)
				}
			}
		})
	}
}
