package ac

import (
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/arithcode/trace"
)

// A Codeword is the binary fraction P/2^Q, written with exactly Q bits.
type Codeword struct {
	P *big.Int
	Q int
}

// String renders P as Q binary digits, left-padded with zeros.
func (c Codeword) String() string {
	s := c.P.Text(2)
	if len(s) < c.Q {
		s = strings.Repeat("0", c.Q-len(s)) + s
	}
	return s
}

// Bits returns the Q digits of the codeword, most significant first.
func (c Codeword) Bits() []int {
	bits := make([]int, c.Q)
	for i := 0; i < c.Q; i++ {
		bits[i] = int(c.P.Bit(c.Q - 1 - i))
	}
	return bits
}

// Value returns P/2^Q exactly.
func (c Codeword) Value() *big.Float {
	return dyadic(c.P, c.Q)
}

// NewCodeword builds a Codeword from bits, most significant first.
func NewCodeword(bits []int) (Codeword, error) {
	if len(bits) == 0 {
		return Codeword{}, ErrEmptyInput
	}
	p := new(big.Int)
	for i, b := range bits {
		if b != 0 && b != 1 {
			return Codeword{}, errors.Wrapf(ErrInvalidBit, "%d at %d", b, i)
		}
		p.Lsh(p, 1)
		if b == 1 {
			p.SetBit(p, 0, 1)
		}
	}
	return Codeword{P: p, Q: len(bits)}, nil
}

// ParseCodeword parses a string of '0' and '1' characters.
func ParseCodeword(s string) (Codeword, error) {
	bits := make([]int, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		default:
			return Codeword{}, errors.Wrapf(ErrInvalidBit, "%q at %d", r, i)
		}
	}
	return NewCodeword(bits)
}

func dyadic(p *big.Int, q int) *big.Float {
	f := new(big.Float).SetInt(p)
	return f.SetMantExp(f, -q)
}

// CeilBits returns ceil(-log2(iv.High-iv.Low)), the smallest q for which an interval of this
// width is guaranteed to contain a point k/2^q.
// It returns -1 for an empty interval.
func CeilBits(iv Interval) int {
	w := iv.Width()
	if w.Sign() <= 0 {
		return -1
	}
	// w = mant * 2^exp with mant in [0.5, 1), so -log2(w) lies in (-exp, 1-exp].
	return 1 - w.MantExp(nil)
}

// Quantize returns the shortest codeword obtained by truncating the midpoint of iv to q bits
// that still lies in iv, that is iv.Low <= P/2^Q < iv.High.
//
// The truncated midpoint is always below iv.High. It is at or above iv.Low once 2^-q is at most
// half the width, so Q never exceeds CeilBits(iv)+1, and once truncation works for q it works for
// every larger q. Q is found by binary search and is at least 1.
//
// ErrPrecisionInsufficient is returned if Q exceeds cfg.Capacity(), or if the interval is empty.
func Quantize(iv Interval, cfg Config, obs trace.Observer) (Codeword, error) {
	if err := cfg.Validate(); err != nil {
		return Codeword{}, err
	}
	w := cfg.newFloat().Sub(iv.High, iv.Low)
	if w.Sign() <= 0 {
		return Codeword{}, errors.Wrap(ErrPrecisionInsufficient, "empty interval")
	}
	mid := Midpoint(iv, cfg)

	truncate := func(q int) *big.Int {
		p, _ := new(big.Float).SetMantExp(mid, q).Int(nil)
		return p
	}

	bound := CeilBits(iv) + 2
	if bound < 1 {
		bound = 1
	}
	q := 1 + sort.Search(bound, func(i int) bool {
		return dyadic(truncate(i+1), i+1).Cmp(iv.Low) >= 0
	})
	if capacity := cfg.Capacity(); q > capacity {
		return Codeword{}, errors.Wrapf(ErrPrecisionInsufficient, "code needs %d bits, config carries %d", q, capacity)
	}

	p := truncate(q)
	if !iv.Contains(dyadic(p, q)) {
		return Codeword{}, errors.Wrapf(ErrPrecisionInsufficient, "no %d bit code inside interval", q)
	}

	cw := Codeword{P: p, Q: q}
	trace.Emit(obs, trace.Step{Stage: trace.StageQuantize, Low: iv.Low, High: iv.High, Range: w, Value: mid, Message: fmt.Sprintf("q=%d p=%s code=%s", q, p.String(), cw.String())})
	return cw, nil
}
