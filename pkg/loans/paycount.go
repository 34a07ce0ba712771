package loans

import "sort"

type termKey struct {
	termMonths int
	frequency  Frequency
}

// paymentCounts is a fixed convention rather than a formula: the number of
// bank days in a run of months is irregular, so daily counts assume about
// 20.67 payments per month and weekly counts one payment per week plus a
// closing payment.
var paymentCounts = map[termKey]int{
	{6, Daily}:   124,
	{9, Daily}:   186,
	{12, Daily}:  248,
	{15, Daily}:  310,
	{18, Daily}:  372,
	{6, Weekly}:  27,
	{9, Weekly}:  40,
	{12, Weekly}: 53,
	{15, Weekly}: 66,
	{18, Weekly}: 79,
}

// TotalPayments looks up the number of scheduled payments for a term and
// frequency.
func TotalPayments(termMonths int, freq Frequency) (int, error) {
	count, ok := paymentCounts[termKey{termMonths, freq}]
	if !ok {
		return 0, &ConfigurationError{TermMonths: termMonths, Frequency: freq}
	}
	return count, nil
}

// SupportedTerms lists the term lengths, in months, that loans may use.
func SupportedTerms() []int {
	seen := make(map[int]struct{})
	var terms []int
	for key := range paymentCounts {
		if _, ok := seen[key.termMonths]; ok {
			continue
		}
		seen[key.termMonths] = struct{}{}
		terms = append(terms, key.termMonths)
	}
	sort.Ints(terms)
	return terms
}

func supportedTerm(termMonths int) bool {
	for _, t := range SupportedTerms() {
		if t == termMonths {
			return true
		}
	}
	return false
}
