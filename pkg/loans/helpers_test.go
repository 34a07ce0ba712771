package loans

import (
	"testing"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/calendar"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	return datetime.MustParseTime(datetime.DateLayout, s)
}

// baseInput is a Monday start, 10000 at 15% for six months of daily payments.
func baseInput() TermsInput {
	return TermsInput{
		StartDate:              day("2026-01-05"),
		Principal:              dec("10000"),
		TermMonths:             6,
		AnnualRate:             dec("0.15"),
		Frequency:              Daily,
		OriginationFee:         decimal.Zero,
		AdditionalFee:          decimal.Zero,
		AdditionalFeeTreatment: Distributed,
		InterestMethod:         Simple,
	}
}

func mustTerms(t *testing.T, mutate func(*TermsInput)) LoanTerms {
	t.Helper()
	in := baseInput()
	if mutate != nil {
		mutate(&in)
	}
	terms, err := NewLoanTerms(in)
	require.NoError(t, err)
	return terms
}

func generate(t *testing.T, cal calendar.Calendar, mutate func(*TermsInput)) *Schedule {
	t.Helper()
	schedule, err := NewScheduleGenerator(zap.NewNop(), cal).Generate(mustTerms(t, mutate))
	require.NoError(t, err)
	require.NotNil(t, schedule)
	return schedule
}
