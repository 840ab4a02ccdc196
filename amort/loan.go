// Package amort projects the periodic cash flows of a purchased consumer
// loan: the scheduled level-payment plan, the default and prepayment
// adjustments layered on top of it, and the side flows (recoveries,
// servicing, earnout) that feed the investor IRR.
package amort

import (
	"fmt"
	"time"

	"github.com/meenmo/loancast/tables"
)

// Frequency is a payment frequency code.
type Frequency string

const (
	Daily      Frequency = "D"
	Monthly    Frequency = "M"
	Quarterly  Frequency = "3M"
	SemiAnnual Frequency = "6M"
	Annual     Frequency = "Y"
)

// FreqPeriods maps a frequency to payment periods per year, actual/365 for
// daily.
var FreqPeriods = map[Frequency]int{
	Daily:      365,
	Monthly:    12,
	Quarterly:  4,
	SemiAnnual: 2,
	Annual:     1,
}

// freqMonths is the calendar step per period for month-based frequencies.
var freqMonths = map[Frequency]int{
	Monthly:    1,
	Quarterly:  3,
	SemiAnnual: 6,
	Annual:     12,
}

// PeriodsPerYear returns the payment periods per year and whether f is a
// known frequency.
func (f Frequency) PeriodsPerYear() (int, bool) {
	n, ok := FreqPeriods[f]
	return n, ok
}

// Valid reports whether f is a known frequency code.
func (f Frequency) Valid() bool {
	_, ok := FreqPeriods[f]
	return ok
}

// Loan describes a purchased loan position. Rates are annual decimals
// (0.28 is a 28% coupon). ServicingFee accrues on outstanding balance;
// EarnoutFee is a one-off rate on the invested amount, split across the
// two seasoning checkpoints.
type Loan struct {
	Grade              string
	IssueDate          time.Time
	Term               int
	Coupon             float64
	Invested           float64
	OutstandingBalance float64
	RecoveryRate       float64
	Premium            float64
	ServicingFee       float64
	EarnoutFee         float64
	AmortFreq          Frequency

	// ChargeOffColumn overrides the charge-off curve selection. When unset
	// the curve is looked up by ChargeOffKey.
	ChargeOffColumn tables.ColumnSelector
}

// ChargeOffKey is the conventional charge-off column header for the loan,
// "<term>-<grade>", e.g. "36-C4".
func (ln Loan) ChargeOffKey() string {
	return fmt.Sprintf("%d-%s", ln.Term, ln.Grade)
}

// Frequency returns AmortFreq, defaulting to Monthly when unset.
func (ln Loan) Frequency() Frequency {
	if ln.AmortFreq == "" {
		return Monthly
	}
	return ln.AmortFreq
}

// Validate checks the descriptor before projection.
func (ln Loan) Validate() error {
	if ln.Term < 1 {
		return fmt.Errorf("amort: term %d, want at least 1", ln.Term)
	}
	if ln.Invested <= 0 {
		return fmt.Errorf("amort: invested %v, want positive", ln.Invested)
	}
	if f := ln.Frequency(); !f.Valid() {
		return fmt.Errorf("amort: unknown frequency %q", f)
	}
	return nil
}
