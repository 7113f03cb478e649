package ac

import (
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/fumin/arithcode/trace"
)

// Decode recovers n symbols from a code point inside the interval produced by Encode.
//
// At each step the partition is scanned in canonical order for the first interval [a,b) with
// value >= a and value < b, where a value within cfg.Epsilon of a bound counts as lying on it.
// The symbol is emitted and value is rescaled to (value-a)/(b-a), clamped to [0, 1-epsilon].
//
// If no interval matches, Decode stops and returns the symbols decoded so far together with an
// error wrapping ErrDecodeStall. A negative n is rejected with ErrEmptyInput.
func Decode[S constraints.Ordered](value *big.Float, n int, p *Partition[S], cfg Config, obs trace.Observer) ([]S, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if p == nil || p.Len() == 0 {
		return nil, ErrEmptyInput
	}
	if n < 0 {
		return nil, errors.Wrapf(ErrEmptyInput, "length %d", n)
	}

	zero := cfg.newFloat()
	one := cfg.newFloat().SetInt64(1)
	ceiling := cfg.newFloat().Sub(one, cfg.Epsilon)

	v := cfg.newFloat().Set(value)
	width := cfg.newFloat()
	decoded := make([]S, 0, n)
	for i := 0; i < n; i++ {
		e, ok := p.find(v, cfg)
		if !ok {
			trace.Emit(obs, trace.Step{Stage: trace.StageDecode, Index: i, Value: cfg.newFloat().Set(v), Message: "no matching interval"})
			return decoded, errors.Wrapf(ErrDecodeStall, "step %d of %d, value %s", i, n, v.Text('g', 20))
		}
		decoded = append(decoded, e.symbol)

		width.Sub(e.iv.High, e.iv.Low)
		v.Sub(v, e.iv.Low)
		v.Quo(v, width)
		if cfg.geq(v, one) {
			v.Set(ceiling)
		}
		if v.Cmp(zero) < 0 {
			v.Set(zero)
		}
		trace.Emit(obs, trace.Step{Stage: trace.StageDecode, Index: i, Symbol: e.symbol, Low: e.iv.Low, High: e.iv.High, Value: cfg.newFloat().Set(v), Message: "found"})
	}
	return decoded, nil
}

// DecodeCodeword decodes n symbols from the point cw.P/2^cw.Q.
func DecodeCodeword[S constraints.Ordered](cw Codeword, n int, p *Partition[S], cfg Config, obs trace.Observer) ([]S, error) {
	if cw.P == nil || cw.Q <= 0 {
		return nil, ErrEmptyInput
	}
	return Decode(cw.Value(), n, p, cfg, obs)
}

// Midpoint returns (Low+High)/2 at the precision of cfg.
func Midpoint(iv Interval, cfg Config) *big.Float {
	mid := cfg.newFloat().Add(iv.Low, iv.High)
	return mid.SetMantExp(mid, -1)
}

func (p *Partition[S]) find(v *big.Float, cfg Config) (entry[S], bool) {
	for _, e := range p.entries {
		if cfg.geq(v, e.iv.Low) && cfg.less(v, e.iv.High) {
			return e, true
		}
	}
	return entry[S]{}, false
}
