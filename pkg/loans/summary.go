package loans

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates the totals of a schedule.
type Summary struct {
	Payments       int             `json:"payments"`
	PayoffDate     time.Time       `json:"payoffDate"`
	TotalPrincipal decimal.Decimal `json:"totalPrincipal"`
	TotalInterest  decimal.Decimal `json:"totalInterest"`
	TotalFees      decimal.Decimal `json:"totalFees"`
	TotalPaid      decimal.Decimal `json:"totalPaid"`
	FinalBalance   decimal.Decimal `json:"finalBalance"`
	// FinanceCharge is everything paid beyond the borrowed principal:
	// interest, fees and the origination fee.
	FinanceCharge decimal.Decimal `json:"financeCharge"`
}

// Summary totals the schedule rows.
func (s *Schedule) Summary() Summary {
	sum := Summary{
		TotalPrincipal: decimal.Zero,
		TotalInterest:  decimal.Zero,
		TotalFees:      decimal.Zero,
		TotalPaid:      decimal.Zero,
		FinalBalance:   s.FinalBalance(),
	}
	for _, r := range s.Records {
		sum.TotalPrincipal = sum.TotalPrincipal.Add(r.PrincipalPayment)
		sum.TotalInterest = sum.TotalInterest.Add(r.InterestPayment)
		sum.TotalFees = sum.TotalFees.Add(r.AdditionalFeePayment)
		sum.TotalPaid = sum.TotalPaid.Add(r.TotalPayment)
		if r.PaymentType == InterestOnly || r.PaymentType == Regular {
			sum.Payments++
		}
		sum.PayoffDate = r.Date
	}
	sum.FinanceCharge = sum.TotalPaid.Sub(s.Terms.Principal())
	return sum
}
