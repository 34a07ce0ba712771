package loans

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-schedule/pkg/calendar"
	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PaymentRecord holds the values for one row of a schedule.
type PaymentRecord struct {
	// Sequence numbers loop payments from 1; grace and fee rows carry zero.
	Sequence             int             `json:"sequence,omitempty"`
	Date                 time.Time       `json:"date"`
	DaysInPeriod         int             `json:"daysInPeriod"`
	PrincipalPayment     decimal.Decimal `json:"principalPayment"`
	InterestPayment      decimal.Decimal `json:"interestPayment"`
	AdditionalFeePayment decimal.Decimal `json:"additionalFeePayment"`
	TotalPayment         decimal.Decimal `json:"totalPayment"`
	PrincipalBalance     decimal.Decimal `json:"principalBalance"`
	// PeriodInterest is the interest attributed to this period only; it is
	// settled with the row and never accumulates across periods.
	PeriodInterest           decimal.Decimal     `json:"periodInterest"`
	TotalBalance             decimal.Decimal     `json:"totalBalance"`
	PaymentType              PaymentType         `json:"paymentType"`
	GraceInterestCapitalized decimal.NullDecimal `json:"graceInterestCapitalized"`
}

// Schedule is the complete result of one generation.
type Schedule struct {
	Terms                    LoanTerms       `json:"-"`
	TotalPayments            int             `json:"totalPayments"`
	FirstPaymentDate         time.Time       `json:"firstPaymentDate"`
	AverageDaysPerPeriod     decimal.Decimal `json:"averageDaysPerPeriod"`
	PrincipalWithOrigination decimal.Decimal `json:"principalWithOrigination"`
	GraceInterest            decimal.Decimal `json:"graceInterest"`
	EffectivePrincipal       decimal.Decimal `json:"effectivePrincipal"`
	LevelPayment             decimal.Decimal `json:"levelPayment"`
	DistributedFeeShare      decimal.Decimal `json:"distributedFeeShare"`
	// PrecomputedInterestPerPayment is zero under the simple method.
	PrecomputedInterestPerPayment decimal.Decimal `json:"precomputedInterestPerPayment"`
	Records                       []PaymentRecord `json:"records"`
}

// ScheduleGenerator produces amortization schedules. It keeps no state between
// calls, so a single generator may be shared by concurrent callers.
type ScheduleGenerator struct {
	logger *zap.Logger
	cal    calendar.Calendar
}

// NewScheduleGenerator creates a new generator instance. A nil calendar
// treats every weekday as a bank day.
func NewScheduleGenerator(logger *zap.Logger, cal calendar.Calendar) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cal == nil {
		cal = calendar.Weekends{}
	}
	return &ScheduleGenerator{logger: logger, cal: cal}
}

// Generate creates the complete payment schedule for the loan terms.
func (g *ScheduleGenerator) Generate(terms LoanTerms) (*Schedule, error) {
	if !terms.Valid() {
		return nil, ErrTermsNotValidated
	}

	stepper := NewDateStepper(terms.Frequency(), terms.BankDaysOnly(), g.cal)
	firstPaymentDate := stepper.FirstPaymentDate(terms.StartDate(), terms.GracePeriodDays())
	avgDays := stepper.AverageDaysPerPeriod(firstPaymentDate, terms.TotalPayments())
	principal := ResolvePrincipal(terms)
	payment := CalculatePayment(terms, principal.Effective, avgDays)

	schedule := &Schedule{
		Terms:                         terms,
		TotalPayments:                 terms.TotalPayments(),
		FirstPaymentDate:              firstPaymentDate,
		AverageDaysPerPeriod:          avgDays,
		PrincipalWithOrigination:      principal.WithOrigination,
		GraceInterest:                 principal.GraceInterest,
		EffectivePrincipal:            principal.Effective,
		LevelPayment:                  payment.Level,
		DistributedFeeShare:           payment.FeeShare,
		PrecomputedInterestPerPayment: payment.PrecomputedInterest,
		Records:                       make([]PaymentRecord, 0, terms.TotalPayments()+2),
	}

	previousDate := firstPaymentDate

	if terms.GracePeriodDays() > 0 {
		g.logger.Debug(fmt.Sprintf("%s: capitalizing %s grace interest over %d days",
			datetime.Format(firstPaymentDate), principal.GraceInterest.StringFixed(2), terms.GracePeriodDays()),
			zap.String("op", "loans.Generate"),
		)
		schedule.Records = append(schedule.Records, PaymentRecord{
			Date:                     firstPaymentDate,
			DaysInPeriod:             terms.GracePeriodDays(),
			PrincipalPayment:         decimal.Zero,
			InterestPayment:          decimal.Zero,
			AdditionalFeePayment:     decimal.Zero,
			TotalPayment:             decimal.Zero,
			PrincipalBalance:         principal.Effective,
			PeriodInterest:           decimal.Zero,
			TotalBalance:             principal.Effective,
			PaymentType:              GracePeriod,
			GraceInterestCapitalized: decimal.NewNullDecimal(principal.GraceInterest),
		})
	}

	if terms.AdditionalFeeTreatment() == SeparatePayment && terms.AdditionalFee().IsPositive() {
		feeDate := stepper.Next(previousDate)
		g.logger.Debug(fmt.Sprintf("%s: charging additional fee %s as a separate payment",
			datetime.Format(feeDate), terms.AdditionalFee().StringFixed(2)),
			zap.String("op", "loans.Generate"),
		)
		schedule.Records = append(schedule.Records, PaymentRecord{
			Date:                 feeDate,
			DaysInPeriod:         datetime.DaysBetween(previousDate, feeDate),
			PrincipalPayment:     decimal.Zero,
			InterestPayment:      decimal.Zero,
			AdditionalFeePayment: terms.AdditionalFee(),
			TotalPayment:         terms.AdditionalFee(),
			PrincipalBalance:     principal.Effective,
			PeriodInterest:       decimal.Zero,
			TotalBalance:         principal.Effective,
			PaymentType:          AdditionalFeePayment,
		})
		previousDate = feeDate
	}

	balance := principal.Effective
	paymentNumber := 0
	accruedInterest := decimal.Zero

	for paymentNumber < terms.TotalPayments() && mathutil.AboveEpsilon(balance) {
		paymentNumber++
		date := stepper.Next(previousDate)
		days := datetime.DaysBetween(previousDate, date)

		var interest decimal.Decimal
		if terms.InterestMethod() == Precomputed {
			interest = payment.PrecomputedInterest
		} else {
			interest = CalculateDailyInterest(balance, terms.AnnualRate(), days)
		}
		accruedInterest = accruedInterest.Add(interest)

		record := PaymentRecord{
			Sequence:             paymentNumber,
			Date:                 date,
			DaysInPeriod:         days,
			InterestPayment:      interest,
			AdditionalFeePayment: payment.FeeShare,
		}

		if paymentNumber <= terms.InterestOnlyPeriods() {
			record.PrincipalPayment = decimal.Zero
			record.PaymentType = InterestOnly
			if paymentNumber == terms.InterestOnlyPeriods() {
				g.logger.Debug(fmt.Sprintf("%s: interest-only phase ends after payment %d",
					datetime.Format(date), paymentNumber),
					zap.String("op", "loans.Generate"),
				)
			}
		} else {
			principalPayment := payment.Level.Sub(interest).Sub(payment.FeeShare)
			principalPayment = mathutil.Min(mathutil.NonNegative(principalPayment), balance)
			if paymentNumber == terms.TotalPayments() {
				principalPayment = balance
			}
			record.PrincipalPayment = principalPayment
			record.PaymentType = Regular
		}

		record.TotalPayment = record.PrincipalPayment.Add(record.InterestPayment).Add(record.AdditionalFeePayment)
		balance = mathutil.ClampBalance(balance.Sub(record.PrincipalPayment))

		record.PrincipalBalance = balance
		record.PeriodInterest = accruedInterest
		// Interest is settled with each payment, so nothing accrued remains.
		accruedInterest = decimal.Zero
		record.TotalBalance = balance.Add(accruedInterest)

		schedule.Records = append(schedule.Records, record)
		previousDate = date
	}

	if paymentNumber < terms.TotalPayments() {
		g.logger.Debug(fmt.Sprintf("loan retired after %d of %d payments", paymentNumber, terms.TotalPayments()),
			zap.String("op", "loans.Generate"),
		)
	}

	g.logger.Debug("schedule generated",
		zap.String("op", "loans.Generate"),
		zap.String("method", terms.InterestMethod().String()),
		zap.String("frequency", terms.Frequency().String()),
		zap.Int("records", len(schedule.Records)),
		zap.String("effectivePrincipal", principal.Effective.StringFixed(2)),
		zap.String("levelPayment", payment.Level.StringFixed(2)),
	)

	return schedule, nil
}

// RegularRecords returns the rows produced by the payment loop, i.e. the
// interest-only and regular payments.
func (s *Schedule) RegularRecords() []PaymentRecord {
	var out []PaymentRecord
	for _, r := range s.Records {
		if r.PaymentType == InterestOnly || r.PaymentType == Regular {
			out = append(out, r)
		}
	}
	return out
}

// FinalBalance is the principal balance after the last row.
func (s *Schedule) FinalBalance() decimal.Decimal {
	if len(s.Records) == 0 {
		return s.EffectivePrincipal
	}
	return s.Records[len(s.Records)-1].PrincipalBalance
}
