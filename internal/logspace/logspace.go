// Package logspace provides a non-negative real number stored by its natural
// logarithm, for accumulating probability density weights across long
// trajectories without underflow.
package logspace

import (
	"fmt"
	"math"
)

// Float represents exp(log). The zero value is NOT zero, use Zero().
type Float struct {
	log float64
}

func FromLog(l float64) Float { return Float{log: l} }

// FromValue panics for negative or NaN v.
func FromValue(v float64) Float {
	if v < 0 || math.IsNaN(v) {
		panic(fmt.Sprintf("logspace: cannot represent %v", v))
	}
	return Float{log: math.Log(v)}
}

func Zero() Float { return Float{log: math.Inf(-1)} }

func One() Float { return Float{} }

func (a Float) Log() float64 { return a.log }

func (a Float) Value() float64 { return math.Exp(a.log) }

func (a Float) IsZero() bool { return math.IsInf(a.log, -1) }

// Add returns a + b, log(exp(x) + exp(y)) = max + log1p(exp(min - max)).
func (a Float) Add(b Float) Float {
	if b.IsZero() {
		return a
	}
	if a.IsZero() {
		return b
	}
	hi, lo := a.log, b.log
	if lo > hi {
		hi, lo = lo, hi
	}
	if math.IsInf(hi, 1) {
		return Float{log: hi}
	}
	return Float{log: hi + math.Log1p(math.Exp(lo-hi))}
}

func (a Float) Mul(b Float) Float { return Float{log: a.log + b.log} }

func (a Float) Div(b Float) Float { return Float{log: a.log - b.log} }

// Ratio returns a / b as a float64.
func (a Float) Ratio(b Float) float64 { return a.Div(b).Value() }

func (a Float) Less(b Float) bool { return a.log < b.log }

func (a Float) String() string {
	return fmt.Sprintf("exp(%g)", a.log)
}
