// Package output provides utilities for formatting and displaying payment schedules.
package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/loan-schedule/pkg/datetime"
	"github.com/iwvelando/loan-schedule/pkg/format"
	"github.com/iwvelando/loan-schedule/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CsvHeader is the column order of CsvFormat.
var CsvHeader = []string{
	"sequence",
	"date",
	"days_in_period",
	"payment_type",
	"principal_payment",
	"interest_payment",
	"additional_fee_payment",
	"total_payment",
	"principal_balance",
	"period_interest",
	"total_balance",
	"grace_interest_capitalized",
}

// PrettyFormat writes a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, schedule *loans.Schedule) {
	p := message.NewPrinter(language.English)
	terms := schedule.Terms

	_, _ = fmt.Fprintf(w, "--- Schedule for %s at %s%% over %d months (%s, %s interest) ---\n",
		format.Currency(terms.Principal()), terms.AnnualRate().Shift(2).StringFixed(2),
		terms.TermMonths(), terms.Frequency(), terms.InterestMethod())
	_, _ = fmt.Fprintf(w, "#    | Date       | Days | Type                   | Principal  | Interest   | Fee        | Total      | Balance\n")
	_, _ = fmt.Fprintf(w, "_    | ____       | ____ | ____                   | _________  | ________   | ___        | _____      | _______\n")

	for _, r := range schedule.Records {
		_, _ = p.Fprintf(w, "%-4s | %s | %4d | %-22s | $%9.2f | $%9.2f | $%9.2f | $%9.2f | $%.2f\n",
			sequenceLabel(r), datetime.Format(r.Date), r.DaysInPeriod, r.PaymentType,
			r.PrincipalPayment.InexactFloat64(), r.InterestPayment.InexactFloat64(),
			r.AdditionalFeePayment.InexactFloat64(), r.TotalPayment.InexactFloat64(),
			r.PrincipalBalance.InexactFloat64())
	}

	summary := schedule.Summary()
	_, _ = fmt.Fprintf(w, "\n")
	_, _ = fmt.Fprintf(w, "Effective principal: %s\n", format.Currency(schedule.EffectivePrincipal))
	if schedule.GraceInterest.IsPositive() {
		_, _ = fmt.Fprintf(w, "Grace interest capitalized: %s\n", format.Currency(schedule.GraceInterest))
	}
	_, _ = fmt.Fprintf(w, "Level payment: %s\n", format.Currency(schedule.LevelPayment))
	_, _ = fmt.Fprintf(w, "Payments: %d of %d scheduled, final payment %s\n",
		summary.Payments, schedule.TotalPayments, datetime.Format(summary.PayoffDate))
	_, _ = fmt.Fprintf(w, "Total principal: %s\n", format.Currency(summary.TotalPrincipal))
	_, _ = fmt.Fprintf(w, "Total interest: %s\n", format.Currency(summary.TotalInterest))
	_, _ = fmt.Fprintf(w, "Total fees: %s\n", format.Currency(summary.TotalFees))
	_, _ = fmt.Fprintf(w, "Total paid: %s\n", format.Currency(summary.TotalPaid))
}

// CsvFormat writes the schedule in comma-separated value format.
func CsvFormat(w io.Writer, schedule *loans.Schedule) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CsvHeader); err != nil {
		return err
	}
	for _, r := range schedule.Records {
		grace := ""
		if r.GraceInterestCapitalized.Valid {
			grace = format.Plain(r.GraceInterestCapitalized.Decimal)
		}
		sequence := ""
		if r.Sequence > 0 {
			sequence = strconv.Itoa(r.Sequence)
		}
		row := []string{
			sequence,
			datetime.Format(r.Date),
			strconv.Itoa(r.DaysInPeriod),
			r.PaymentType.String(),
			format.Plain(r.PrincipalPayment),
			format.Plain(r.InterestPayment),
			format.Plain(r.AdditionalFeePayment),
			format.Plain(r.TotalPayment),
			format.Plain(r.PrincipalBalance),
			format.Plain(r.PeriodInterest),
			format.Plain(r.TotalBalance),
			grace,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// CsvString renders CsvFormat into a string.
func CsvString(schedule *loans.Schedule) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, schedule); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Document is the JSON shape of a rendered schedule.
type Document struct {
	Summary  loans.Summary   `json:"summary"`
	Schedule *loans.Schedule `json:"schedule"`
}

// JSONFormat writes the schedule and its summary as indented JSON.
func JSONFormat(w io.Writer, schedule *loans.Schedule) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(Document{Summary: schedule.Summary(), Schedule: schedule})
}

func sequenceLabel(r loans.PaymentRecord) string {
	switch r.PaymentType {
	case loans.GracePeriod:
		return "G"
	case loans.AdditionalFeePayment:
		return "F"
	}
	return strconv.Itoa(r.Sequence)
}
