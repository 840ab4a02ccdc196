package irr

import (
	"math"

	"github.com/meenmo/loancast/logging"
)

const (
	// tolerance is the |NPV| below which the solve counts as converged.
	tolerance = 1e-10
	// maxIterations bounds the Newton loop.
	maxIterations = 100
	// derivativeFloor stops the iteration before a division blows up.
	derivativeFloor = 1e-15
)

// Result is the outcome of an IRR solve. Rate carries the best estimate
// found whether or not the solve converged; callers decide what a
// non-converged estimate is worth.
type Result struct {
	Rate       float64
	Iterations int
	Converged  bool
}

// NPV discounts cashflow at a per-period rate: sum of cashflow[t]/(1+rate)^t.
func NPV(rate float64, cashflow []float64) float64 {
	var total float64
	for t, cf := range cashflow {
		total += cf / math.Pow(1+rate, float64(t))
	}
	return total
}

// Solve finds the rate with NPV(rate, cashflow) = 0 by Newton-Raphson with
// the analytic derivative, starting from guess. Iterates are kept inside
// the domain rate > -1. Solve never fails: a solve that runs out of
// iterations or hits a flat derivative comes back with Converged false.
func Solve(cashflow []float64, guess float64) Result {
	r := guess
	for iter := 0; iter < maxIterations; iter++ {
		f, deriv := npvAndDeriv(r, cashflow)
		if math.Abs(f) < tolerance {
			return Result{Rate: r, Iterations: iter + 1, Converged: true}
		}
		if math.Abs(deriv) < derivativeFloor {
			return Result{Rate: r, Iterations: iter + 1, Converged: false}
		}

		next := r - f/deriv
		if next <= -1 {
			// Step overshot the -100% pole; move halfway toward it instead.
			next = (r - 1) / 2
		}
		r = next
	}
	return Result{Rate: r, Iterations: maxIterations, Converged: false}
}

// npvAndDeriv returns (NPV, dNPV/drate) in one pass:
//
//	NPV   = Σ cf_t / (1+r)^t
//	dNPV  = Σ −t · cf_t / (1+r)^(t+1)
func npvAndDeriv(r float64, cashflow []float64) (float64, float64) {
	var f, deriv float64
	for t, cf := range cashflow {
		ft := float64(t)
		f += cf / math.Pow(1+r, ft)
		deriv += -ft * cf / math.Pow(1+r, ft+1)
	}
	return f, deriv
}

// Rate returns Solve's estimate, logging a warning instead of failing when
// the solve does not converge: projection batches prefer a flagged
// best-effort number over an aborted run.
func Rate(cashflow []float64, guess float64) float64 {
	res := Solve(cashflow, guess)
	if !res.Converged {
		logging.Get().Warnw("irr solve did not converge, returning best estimate",
			"rate", res.Rate, "iterations", res.Iterations)
	}
	return res.Rate
}
