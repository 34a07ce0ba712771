// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"github.com/shopspring/decimal"
)

// FindRecord finds the first record dated date (YYYY-MM-DD) in the schedule.
// Returns a pointer to the record if found, nil otherwise.
func FindRecord(schedule *loans.Schedule, date string) *loans.PaymentRecord {
	for i := range schedule.Records {
		if datetime.Format(schedule.Records[i].Date) == date {
			return &schedule.Records[i]
		}
	}
	return nil
}

// RecordsOfType returns the records with the given payment type, in order.
func RecordsOfType(schedule *loans.Schedule, paymentType loans.PaymentType) []loans.PaymentRecord {
	var out []loans.PaymentRecord
	for _, r := range schedule.Records {
		if r.PaymentType == paymentType {
			out = append(out, r)
		}
	}
	return out
}

// SumPrincipal adds up the principal paid across records.
func SumPrincipal(records []loans.PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.PrincipalPayment)
	}
	return total
}
