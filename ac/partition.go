package ac

import (
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/fumin/arithcode/trace"
)

// An Interval is the half-open range [Low, High) of [0,1).
type Interval struct {
	Low  *big.Float
	High *big.Float
}

// Width returns High-Low at the precision of Low.
func (iv Interval) Width() *big.Float {
	return new(big.Float).SetPrec(iv.Low.Prec()).Sub(iv.High, iv.Low)
}

// Contains reports whether Low <= x < High, without tolerance.
func (iv Interval) Contains(x *big.Float) bool {
	return x.Cmp(iv.Low) >= 0 && x.Cmp(iv.High) < 0
}

func (iv Interval) copy() Interval {
	return Interval{Low: new(big.Float).Copy(iv.Low), High: new(big.Float).Copy(iv.High)}
}

type entry[S constraints.Ordered] struct {
	symbol S
	iv     Interval
}

// A Partition assigns every symbol of a Table a sub-interval of [0,1) whose width is the
// symbol's probability.
// The sub-intervals are contiguous, ordered as the symbols, and cover [0,1) exactly.
type Partition[S constraints.Ordered] struct {
	entries []entry[S]
	index   map[S]int
}

// NewPartition lays the probabilities of t end to end in canonical symbol order.
// It returns ErrPartitionInvariant if the probabilities do not reach 1 within cfg.Epsilon.
func NewPartition[S constraints.Ordered](t *Table[S], cfg Config, obs trace.Observer) (*Partition[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if t == nil || t.Len() == 0 {
		return nil, ErrEmptyInput
	}

	p := &Partition[S]{
		entries: make([]entry[S], 0, t.Len()),
		index:   make(map[S]int, t.Len()),
	}
	low := cfg.newFloat()
	for i, s := range t.symbols {
		high := cfg.newFloat().Add(low, t.probs[s])
		iv := Interval{Low: low, High: high}
		p.entries = append(p.entries, entry[S]{symbol: s, iv: iv})
		p.index[s] = i
		trace.Emit(obs, trace.Step{Stage: trace.StagePartition, Index: i, Symbol: s, Low: iv.Low, High: iv.High, Message: "interval"})
		low = high
	}

	one := cfg.newFloat().SetInt64(1)
	if !cfg.within(low, one) {
		return nil, errors.Wrapf(ErrPartitionInvariant, "cumulative probability %s", low.Text('g', 20))
	}
	// Absorb rounding so that the union is exactly [0,1).
	p.entries[len(p.entries)-1].iv.High = one
	return p, nil
}

// Symbols returns the partitioned symbols in canonical order.
func (p *Partition[S]) Symbols() []S {
	syms := make([]S, len(p.entries))
	for i, e := range p.entries {
		syms[i] = e.symbol
	}
	return syms
}

// Len returns the number of symbols in the partition.
func (p *Partition[S]) Len() int {
	return len(p.entries)
}

// Interval returns a copy of the interval assigned to s.
func (p *Partition[S]) Interval(s S) (Interval, bool) {
	i, ok := p.index[s]
	if !ok {
		return Interval{}, false
	}
	return p.entries[i].iv.copy(), true
}

func (p *Partition[S]) lookup(s S) (Interval, bool) {
	i, ok := p.index[s]
	if !ok {
		return Interval{}, false
	}
	return p.entries[i].iv, true
}
