package loans

import (
	"math"

	"github.com/iwvelando/loan-schedule/pkg/constants"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var daysPerYear = decimal.NewFromInt(constants.DaysPerYear)

// Principal holds the amounts that make up the financed principal.
type Principal struct {
	WithOrigination decimal.Decimal
	GraceInterest   decimal.Decimal
	Effective       decimal.Decimal
}

// ResolvePrincipal adds the origination fee, the capitalized grace-period
// interest and, when the fee is rolled in, the additional fee.
func ResolvePrincipal(terms LoanTerms) Principal {
	withOrigination := terms.Principal().Add(terms.OriginationFee())
	graceInterest := CalculateGraceInterest(withOrigination, terms.AnnualRate(), terms.GracePeriodDays())

	effective := withOrigination.Add(graceInterest)
	if terms.AdditionalFeeTreatment() == AddToPrincipal {
		effective = effective.Add(terms.AdditionalFee())
	}

	return Principal{
		WithOrigination: withOrigination,
		GraceInterest:   graceInterest,
		Effective:       effective,
	}
}

// CalculateGraceInterest accrues simple daily interest over the grace window.
func CalculateGraceInterest(principal, annualRate decimal.Decimal, graceDays int) decimal.Decimal {
	if graceDays <= 0 {
		return decimal.Zero
	}
	return CalculateDailyInterest(principal, annualRate, graceDays)
}

// CalculateDailyInterest is balance * (annualRate / 365) * days.
func CalculateDailyInterest(balance, annualRate decimal.Decimal, days int) decimal.Decimal {
	return mathutil.Guard(balance.Mul(annualRate).Mul(decimal.NewFromInt(int64(days))).Div(daysPerYear))
}

// Payment holds the level payment and its fixed components.
type Payment struct {
	// Level is the constant amount due each amortizing period, fee share
	// included.
	Level decimal.Decimal
	// FeeShare is the distributed additional fee carried by every payment.
	FeeShare decimal.Decimal
	// PrecomputedInterest is the flat per-payment interest under the
	// precomputed method and zero under simple interest.
	PrecomputedInterest decimal.Decimal
	// PeriodRate is the estimated per-period rate under simple interest.
	PeriodRate decimal.Decimal
}

// CalculatePayment computes the level payment for the selected interest
// method. avgDays is the estimated calendar length of one period.
func CalculatePayment(terms LoanTerms, effective, avgDays decimal.Decimal) Payment {
	total := decimal.NewFromInt(int64(terms.TotalPayments()))
	amortizing := terms.AmortizingPayments()

	var p Payment
	if terms.AdditionalFeeTreatment() == Distributed && terms.AdditionalFee().IsPositive() {
		p.FeeShare = mathutil.Guard(terms.AdditionalFee().Div(total))
	}

	switch terms.InterestMethod() {
	case Precomputed:
		totalInterest := CalculatePrecomputedInterest(effective, terms.AnnualRate(), total.Mul(avgDays))
		p.PrecomputedInterest = mathutil.Guard(totalInterest.Div(total))
		principalPerPayment := mathutil.Guard(effective.Div(decimal.NewFromInt(int64(amortizing))))
		p.Level = principalPerPayment.Add(p.PrecomputedInterest).Add(p.FeeShare)
	default:
		p.PeriodRate = mathutil.Guard(terms.AnnualRate().Mul(avgDays).Div(daysPerYear))
		p.Level = CalculateLevelPayment(effective, p.PeriodRate, amortizing).Add(p.FeeShare)
	}
	return p
}

// CalculatePrecomputedInterest fixes the total interest for the loan from the
// estimated duration in days.
func CalculatePrecomputedInterest(effective, annualRate, estimatedDays decimal.Decimal) decimal.Decimal {
	return mathutil.Guard(effective.Mul(annualRate).Mul(estimatedDays).Div(daysPerYear))
}

// CalculateLevelPayment applies the standard amortization formula
// P * r(1+r)^n / ((1+r)^n - 1), falling back to P/n at a zero rate.
func CalculateLevelPayment(principal, periodRate decimal.Decimal, periods int) decimal.Decimal {
	if periods <= 0 {
		return principal
	}
	if periodRate.IsZero() {
		return mathutil.Guard(principal.Div(decimal.NewFromInt(int64(periods))))
	}

	rate := periodRate.InexactFloat64()
	power := math.Pow(1.00+rate, float64(periods))
	discountFactor := (power - 1.00) / power
	return mathutil.Guard(decimal.NewFromFloat(principal.InexactFloat64() * rate / discountFactor))
}
