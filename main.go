package main

import (
	"fmt"
	"log"
	"time"

	"github.com/meenmo/loancast/amort"
	"github.com/meenmo/loancast/irr"
	"github.com/meenmo/loancast/tables"
)

// chargeOffC4 holds monthly marginal charge-off rates for the 36-month
// C4 cohort, quoted out to month 40.
var chargeOffC4 = []float64{
	0.00595, 0.007153, 0.008446, 0.009777, 0.011082, 0.012291,
	0.013328, 0.014125, 0.014628, 0.0148, 0.014628, 0.014125,
	0.013328, 0.012291, 0.011082, 0.009777, 0.008446, 0.007153,
	0.00595, 0.004873, 0.003943, 0.003166, 0.002538, 0.002045,
	0.00167, 0.001394, 0.001195, 0.001056, 0.000962, 0.0009,
	0.00086, 0.000836, 0.00082, 0.000811, 0.000806, 0.000803,
	0.000802, 0.000801, 0.0008, 0.0008,
}

// prepaySMM36 is the single-month mortality prepay curve quoted for
// 36-month loans.
var prepaySMM36 = []float64{
	0.007664, 0.009107, 0.010357, 0.011441, 0.012381, 0.013195,
	0.013902, 0.014514, 0.015044, 0.015504, 0.015903, 0.016249,
	0.016549, 0.016808, 0.017034, 0.017229, 0.017398, 0.017545,
	0.017672, 0.017782, 0.017878, 0.017961, 0.018032, 0.018095,
	0.018149, 0.018195, 0.018236, 0.018271, 0.018302, 0.018328,
	0.018351, 0.018371, 0.018388, 0.018403, 0.018416, 0.018427,
}

func main() {
	chargeOff, err := tables.NewChargeOffTable([]string{"36-C4"}, [][]float64{chargeOffC4})
	if err != nil {
		log.Fatal(err)
	}
	prepay := tables.NewPrepayTable(map[int][]float64{36: prepaySMM36})

	loan := amort.Loan{
		Grade:              "C4",
		IssueDate:          mustDate("2015-08-24"),
		Term:               36,
		Coupon:             0.28,
		Invested:           7500,
		OutstandingBalance: 7500,
		RecoveryRate:       0.08,
		Premium:            0.05,
		ServicingFee:       0.025,
		EarnoutFee:         0.025,
		AmortFreq:          amort.Monthly,
	}

	a := amort.NewAmortization(chargeOff, prepay)
	if err := a.CalcCashflows(loan); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%-3s %-12s %12s %12s %10s %10s %12s\n",
		"t", "date", "balance", "principal", "default", "prepay", "total CF")
	rows := a.Rows()
	for _, r := range rows[:4] {
		printRow(r)
	}
	fmt.Println("...")
	printRow(rows[len(rows)-1])

	res := irr.Solve(a.TotalCF, 0)
	fmt.Printf("\nMonthly IRR: %.6f%% (%d iterations)\n", res.Rate*100, res.Iterations)
	fmt.Printf("Annual IRR:  %.6f%%\n", res.Rate*12*100)
}

func printRow(r amort.Row) {
	fmt.Printf("%-3d %-12s %12.2f %12.2f %10.2f %10.2f %12.2f\n",
		r.PaymentCount, r.PaymentDate.Format("2006-01-02"),
		r.Balance, r.Principal, r.Default, r.Prepay, r.TotalCF)
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		log.Fatal(err)
	}
	return d
}
