package ac

import (
	"math"
	"math/big"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/fumin/arithcode/trace"
)

// A Table is a static order-0 probability model.
// It holds the count of every symbol present in the input and its probability count/total.
// Symbols that never occur are absent.
// A Table is immutable once built.
type Table[S constraints.Ordered] struct {
	symbols []S // ascending
	counts  map[S]int64
	probs   map[S]*big.Float
	total   int64
	prec    uint
}

// NewTable counts the symbols of seq and divides each count by len(seq).
func NewTable[S constraints.Ordered](seq []S, cfg Config) (*Table[S], error) {
	return NewTableObserved(seq, cfg, nil)
}

// NewTableObserved is NewTable reporting each symbol probability to obs.
func NewTableObserved[S constraints.Ordered](seq []S, cfg Config, obs trace.Observer) (*Table[S], error) {
	if len(seq) == 0 {
		return nil, ErrEmptyInput
	}
	counts := make(map[S]int64)
	for _, s := range seq {
		counts[s]++
	}
	return newTable(counts, cfg, obs)
}

// NewTableFromCounts builds a Table from explicit symbol counts.
// Symbols with a zero count are dropped.
func NewTableFromCounts[S constraints.Ordered](counts map[S]int64, cfg Config) (*Table[S], error) {
	cp := make(map[S]int64, len(counts))
	for s, c := range counts {
		if c < 0 {
			return nil, errors.Wrapf(ErrEmptyInput, "negative count %d for symbol %v", c, s)
		}
		if c > 0 {
			cp[s] = c
		}
	}
	if len(cp) == 0 {
		return nil, ErrEmptyInput
	}
	return newTable(cp, cfg, nil)
}

func newTable[S constraints.Ordered](counts map[S]int64, cfg Config, obs trace.Observer) (*Table[S], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table[S]{
		symbols: make([]S, 0, len(counts)),
		counts:  counts,
		probs:   make(map[S]*big.Float, len(counts)),
		prec:    cfg.Precision,
	}
	for s, c := range counts {
		t.symbols = append(t.symbols, s)
		t.total += c
	}
	sort.Slice(t.symbols, func(i, j int) bool { return t.symbols[i] < t.symbols[j] })

	total := cfg.newFloat().SetInt64(t.total)
	for i, s := range t.symbols {
		p := cfg.newFloat().SetInt64(counts[s])
		p.Quo(p, total)
		t.probs[s] = p
		trace.Emit(obs, trace.Step{Stage: trace.StageModel, Index: i, Symbol: s, Value: p, Message: "probability"})
	}
	return t, nil
}

// Symbols returns the symbols of the table in canonical (ascending) order.
func (t *Table[S]) Symbols() []S {
	cp := make([]S, len(t.symbols))
	copy(cp, t.symbols)
	return cp
}

// Len returns the number of distinct symbols.
func (t *Table[S]) Len() int {
	return len(t.symbols)
}

// Total returns the sum of all counts, which is the length of the modeled sequence.
func (t *Table[S]) Total() int64 {
	return t.total
}

// Count returns the number of occurrences of s.
func (t *Table[S]) Count(s S) int64 {
	return t.counts[s]
}

// Prob returns a copy of the probability of s.
// The second result is false when s is not in the table.
func (t *Table[S]) Prob(s S) (*big.Float, bool) {
	p, ok := t.probs[s]
	if !ok {
		return nil, false
	}
	return new(big.Float).Copy(p), true
}

// InformationBits estimates the self-information of the modeled sequence in bits,
// that is the sum over symbols of -count*log2(count/total).
// The estimate is computed in float64 and is meant for sizing precision only.
func (t *Table[S]) InformationBits() float64 {
	bits := 0.0
	total := float64(t.total)
	for _, s := range t.symbols {
		c := float64(t.counts[s])
		bits -= c * math.Log2(c/total)
	}
	return bits
}
