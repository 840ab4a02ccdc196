package amort

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/loancast/tables"
	"github.com/meenmo/loancast/utils"
)

var (
	// ErrNoSchedule reports the adjustment recurrence running before the
	// series it consumes are populated.
	ErrNoSchedule = errors.New("amort: scheduled cashflow not computed")
	// ErrSeriesLength reports a lookup curve too short for the loan term.
	ErrSeriesLength = errors.New("amort: series length mismatch")
)

// earnout posts at these period indices (months 12 and 18 for monthly
// loans); an index past the loan term never arrives and is skipped.
var earnoutPeriods = [...]int{12, 18}

// Amortization carries one loan projection. Construct with NewAmortization
// and call CalcCashflows, or drive the steps individually in order. All
// series are indexed 0..Term with index 0 at issue.
type Amortization struct {
	PmtCnt             []int
	PmtDate            []time.Time
	ScheduledPrincipal []float64
	ScheduledInterest  []float64
	ScheduledBalance   []float64
	PrepaySpeed        []float64
	// DefaultRate is the charge-off column as looked up, untrimmed; it may
	// be longer than Term+1. The recurrence consumes the first Term entries.
	DefaultRate []float64
	Recovery    []float64
	ServicingCF []float64
	EarnoutCF   []float64
	Balance     []float64
	Principal   []float64
	Default     []float64
	Prepay      []float64
	Interest    []float64
	TotalCF     []float64

	// Stress multipliers scale the looked-up curves inside the recurrence.
	DefaultMultiplier float64
	PrepayMultiplier  float64

	chargeOff *tables.ChargeOffTable
	prepay    *tables.PrepayTable
}

// NewAmortization binds a projection to its lookup tables with both
// multipliers at 1.
func NewAmortization(chargeOff *tables.ChargeOffTable, prepay *tables.PrepayTable) *Amortization {
	return &Amortization{
		DefaultMultiplier: 1.0,
		PrepayMultiplier:  1.0,
		chargeOff:         chargeOff,
		prepay:            prepay,
	}
}

// FetchPrepaySpeed loads the prepayment speed curve for a term count.
// Index 0 (the issue row) is always zero; the table column fills 1..nper
// and must hold exactly nper speeds.
func (a *Amortization) FetchPrepaySpeed(nper int) error {
	col, err := a.prepay.Column(nper)
	if err != nil {
		return err
	}
	if len(col) != nper {
		return fmt.Errorf("%w: prepay term %d has %d speeds", ErrSeriesLength, nper, len(col))
	}
	a.PrepaySpeed = append(make([]float64, 1, nper+1), col...)
	return nil
}

// FetchDefaultRate loads the charge-off curve named by sel. The column is
// stored whole and untrimmed.
func (a *Amortization) FetchDefaultRate(sel tables.ColumnSelector) error {
	col, err := a.chargeOff.Select(sel)
	if err != nil {
		return err
	}
	a.DefaultRate = col
	return nil
}

// BuildPaymentDates fills the payment counter and dates: nper+1 entries
// starting at the issue date, stepped by the frequency with the issue
// day-of-month preserved (clamped to month end where needed).
func (a *Amortization) BuildPaymentDates(start time.Time, nper int, freq Frequency) error {
	step, monthBased := freqMonths[freq]
	if !monthBased && freq != Daily {
		return fmt.Errorf("amort: unknown frequency %q", freq)
	}

	a.PmtCnt = make([]int, nper+1)
	a.PmtDate = make([]time.Time, nper+1)
	for i := 0; i <= nper; i++ {
		a.PmtCnt[i] = i
		if freq == Daily {
			a.PmtDate[i] = start.AddDate(0, 0, i)
		} else {
			a.PmtDate[i] = utils.AddMonth(start, i*step)
		}
	}
	return nil
}

// CalcScheduledCashflow builds the level-payment plan the borrower signed
// up for: interest on the running balance first, the payment remainder to
// principal, balance by successive subtraction from the invested amount.
func (a *Amortization) CalcScheduledCashflow(ln Loan) error {
	perYear, ok := ln.Frequency().PeriodsPerYear()
	if !ok {
		return fmt.Errorf("amort: unknown frequency %q", ln.Frequency())
	}
	n := ln.Term
	rate := ln.Coupon / float64(perYear)

	a.ScheduledPrincipal = make([]float64, n+1)
	a.ScheduledInterest = make([]float64, n+1)
	a.ScheduledBalance = make([]float64, n+1)
	a.ScheduledBalance[0] = ln.Invested

	// A zero periodic rate degenerates the annuity formula to straight-line.
	pmt := ln.Invested / float64(n)
	if rate != 0 {
		pmt = ln.Invested * rate / (1 - math.Pow(1+rate, -float64(n)))
	}

	bal := ln.Invested
	for i := 1; i <= n; i++ {
		a.ScheduledInterest[i] = bal * rate
		a.ScheduledPrincipal[i] = pmt - a.ScheduledInterest[i]
		bal -= a.ScheduledPrincipal[i]
		a.ScheduledBalance[i] = bal
	}
	return nil
}

// CalcDefaultPrepayAdjust layers charge-offs and prepayments over the
// scheduled plan. A period's default takes the PRIOR period's charge-off
// rate (a balance must season a period before it can charge off), while
// its prepayment applies the CURRENT period's speed to the balance left
// after the scheduled payment. Interest accrues on the prior balance net
// of the period's default.
func (a *Amortization) CalcDefaultPrepayAdjust(ln Loan) error {
	if err := a.adjustReady(ln); err != nil {
		return err
	}
	perYear, _ := ln.Frequency().PeriodsPerYear()
	rate := ln.Coupon / float64(perYear)
	nper := ln.Term + 1

	a.Balance = make([]float64, nper)
	a.Principal = make([]float64, nper)
	a.Default = make([]float64, nper)
	a.Prepay = make([]float64, nper)
	a.Interest = make([]float64, nper)
	a.Balance[0] = a.ScheduledBalance[0]

	for i := 1; i < nper; i++ {
		prior := a.Balance[i-1]
		a.Default[i] = prior * a.DefaultRate[i-1] * a.DefaultMultiplier
		a.Prepay[i] = (prior - (prior-a.ScheduledInterest[i])/a.ScheduledBalance[i-1]*a.ScheduledPrincipal[i]) * a.PrepaySpeed[i] * a.PrepayMultiplier
		a.Principal[i] = (prior-a.Default[i])*a.ScheduledPrincipal[i]/a.ScheduledBalance[i-1] + a.Prepay[i]
		a.Balance[i] = prior - a.Principal[i] - a.Default[i]
		a.Interest[i] = (prior - a.Default[i]) * rate
	}

	a.Recovery = make([]float64, nper)
	a.ServicingCF = make([]float64, nper)
	a.EarnoutCF = make([]float64, nper)
	for i := 1; i < nper; i++ {
		a.Recovery[i] = a.Default[i] * ln.RecoveryRate
		a.ServicingCF[i] = (a.Balance[i-1] - a.Default[i]) * ln.ServicingFee / float64(perYear)
	}
	for _, p := range earnoutPeriods {
		if p < nper {
			a.EarnoutCF[p] = ln.EarnoutFee / 2 * ln.Invested
		}
	}

	a.TotalCF = make([]float64, nper)
	for i := 1; i < nper; i++ {
		a.TotalCF[i] = a.Principal[i] + a.Interest[i] + a.Recovery[i] - a.ServicingCF[i] - a.EarnoutCF[i]
	}
	a.TotalCF[0] = -ln.Invested * (1 + ln.Premium)
	return nil
}

// adjustReady verifies every series the recurrence reads is in place.
func (a *Amortization) adjustReady(ln Loan) error {
	n := ln.Term
	if len(a.ScheduledBalance) != n+1 || len(a.ScheduledPrincipal) != n+1 || len(a.ScheduledInterest) != n+1 {
		return fmt.Errorf("%w: run CalcScheduledCashflow first", ErrNoSchedule)
	}
	if len(a.PmtCnt) != n+1 {
		return fmt.Errorf("%w: run BuildPaymentDates first", ErrNoSchedule)
	}
	if len(a.PrepaySpeed) != n+1 {
		return fmt.Errorf("%w: run FetchPrepaySpeed first", ErrNoSchedule)
	}
	if len(a.DefaultRate) == 0 {
		return fmt.Errorf("%w: run FetchDefaultRate first", ErrNoSchedule)
	}
	if len(a.DefaultRate) < n {
		return fmt.Errorf("%w: charge-off curve has %d rates for a %d-period loan", ErrSeriesLength, len(a.DefaultRate), n)
	}
	return nil
}

// CalcCashflows runs the whole projection: curve lookups, payment dates,
// the scheduled plan, then the adjustment recurrence.
func (a *Amortization) CalcCashflows(ln Loan) error {
	if err := ln.Validate(); err != nil {
		return err
	}
	if err := a.FetchPrepaySpeed(ln.Term); err != nil {
		return err
	}
	sel := ln.ChargeOffColumn
	if sel.IsZero() {
		sel = tables.ByKey(ln.ChargeOffKey())
	}
	if err := a.FetchDefaultRate(sel); err != nil {
		return err
	}
	if err := a.BuildPaymentDates(ln.IssueDate, ln.Term, ln.Frequency()); err != nil {
		return err
	}
	if err := a.CalcScheduledCashflow(ln); err != nil {
		return err
	}
	return a.CalcDefaultPrepayAdjust(ln)
}
