package irr_test

import (
	"math"
	"testing"

	"github.com/meenmo/loancast/irr"
)

func TestSolveKnownCashflows(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		cashflow []float64
		want     float64
	}{
		{"uneven recovery", []float64{-150000, 15000, 25000, 35000, 45000, 60000}, 0.05243288885941411},
		{"deep discount payoff", []float64{-100, 0, 0, 74}, -0.09549583034897252},
		{"front loaded", []float64{-100, 39, 59, 55, 20}, 0.28094842115995305},
		{"trailing clawback", []float64{-100, 100, 0, -7}, -0.0832996661849326},
		{"trailing bonus", []float64{-100, 100, 0, 7}, 0.06205848562992942},
		{"sign flipping", []float64{-5, 10.5, 1, -8, 1}, 0.08859833852775532},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			res := irr.Solve(tc.cashflow, 0)
			if !res.Converged {
				t.Fatalf("Solve did not converge after %d iterations", res.Iterations)
			}
			if math.Abs(res.Rate-tc.want) > 1e-9 {
				t.Errorf("rate = %.12f, want %.12f", res.Rate, tc.want)
			}
			if npv := irr.NPV(res.Rate, tc.cashflow); math.Abs(npv) > 1e-9 {
				t.Errorf("NPV at solved rate = %g, want ~0", npv)
			}
			if res.Iterations < 1 || res.Iterations > 100 {
				t.Errorf("iterations = %d", res.Iterations)
			}
		})
	}
}

func TestSolveGuessSeeding(t *testing.T) {
	t.Parallel()

	cashflow := []float64{-150000, 15000, 25000, 35000, 45000, 60000}
	from0 := irr.Solve(cashflow, 0)
	fromNear := irr.Solve(cashflow, 0.05)
	if !from0.Converged || !fromNear.Converged {
		t.Fatal("both solves should converge")
	}
	if math.Abs(from0.Rate-fromNear.Rate) > 1e-9 {
		t.Errorf("roots differ: %.12f vs %.12f", from0.Rate, fromNear.Rate)
	}
	if fromNear.Iterations > from0.Iterations {
		t.Logf("seeded solve took %d iterations vs %d from zero", fromNear.Iterations, from0.Iterations)
	}
}

func TestSolveNoRoot(t *testing.T) {
	t.Parallel()

	// All-positive cashflows have no IRR; the solve must come back flagged
	// rather than erroring or looping forever.
	res := irr.Solve([]float64{10, 10}, 0)
	if res.Converged {
		t.Fatalf("converged on a rootless series at %v", res.Rate)
	}
	if res.Iterations < 1 {
		t.Errorf("iterations = %d", res.Iterations)
	}
}

func TestSolveEmptySeries(t *testing.T) {
	t.Parallel()

	// NPV of nothing is zero everywhere, so any guess is already a root.
	res := irr.Solve(nil, 0.123)
	if !res.Converged {
		t.Fatal("empty series should converge trivially")
	}
	if res.Rate != 0.123 {
		t.Errorf("rate = %v, want the guess back", res.Rate)
	}
}

func TestNPV(t *testing.T) {
	t.Parallel()

	cashflow := []float64{-100, 60, 60}
	sum := -100.0 + 60 + 60
	if got := irr.NPV(0, cashflow); math.Abs(got-sum) > 1e-12 {
		t.Errorf("NPV(0) = %v, want plain sum %v", got, sum)
	}

	// Discounting at a positive rate shrinks future inflows.
	if got := irr.NPV(0.1, cashflow); got >= irr.NPV(0, cashflow) {
		t.Errorf("NPV(0.1) = %v, want below NPV(0)", got)
	}

	want := -100 + 60/1.1 + 60/(1.1*1.1)
	if got := irr.NPV(0.1, cashflow); math.Abs(got-want) > 1e-9 {
		t.Errorf("NPV(0.1) = %v, want %v", got, want)
	}
}

func TestRateNonConvergenceStillReturns(t *testing.T) {
	t.Parallel()

	// Rate never panics or errors on a rootless series; it hands back the
	// best estimate after logging.
	got := irr.Rate([]float64{10, 10}, 0)
	if math.IsNaN(got) {
		t.Error("Rate returned NaN")
	}
}
