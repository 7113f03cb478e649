package ac

import (
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/fumin/arithcode/trace"
)

// Encode narrows [0,1) symbol by symbol and returns the final interval.
// For each symbol s with partition interval [a,b), the running interval [low,high) becomes
// [low+(high-low)*a, low+(high-low)*b).
//
// ErrUnknownSymbol is returned if a symbol is not in p, and ErrPrecisionInsufficient if the
// interval collapses to zero width at cfg.Precision.
func Encode[S constraints.Ordered](seq []S, p *Partition[S], cfg Config, obs trace.Observer) (Interval, error) {
	if err := cfg.Validate(); err != nil {
		return Interval{}, err
	}
	if len(seq) == 0 {
		return Interval{}, ErrEmptyInput
	}

	low := cfg.newFloat()
	high := cfg.newFloat().SetInt64(1)
	rng := cfg.newFloat()
	for i, s := range seq {
		iv, ok := p.lookup(s)
		if !ok {
			return Interval{}, errors.Wrapf(ErrUnknownSymbol, "symbol %v at %d", s, i)
		}

		rng.Sub(high, low)
		newHigh := cfg.newFloat().Mul(rng, iv.High)
		newHigh.Add(low, newHigh)
		newLow := cfg.newFloat().Mul(rng, iv.Low)
		newLow.Add(low, newLow)
		if newHigh.Cmp(newLow) <= 0 {
			return Interval{}, errors.Wrapf(ErrPrecisionInsufficient, "interval collapsed at symbol %d with %d bits", i, cfg.Precision)
		}

		trace.Emit(obs, trace.Step{Stage: trace.StageEncode, Index: i, Symbol: s, Low: newLow, High: newHigh, Range: cfg.newFloat().Set(rng), Message: "narrow"})
		low, high = newLow, newHigh
	}
	return Interval{Low: low, High: high}, nil
}
