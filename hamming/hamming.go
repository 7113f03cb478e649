// Package hamming implements the systematic Hamming encoder.
//
// Positions of a codeword are numbered from 1. Parity bits occupy the positions that are powers
// of two and data bits fill the remaining positions in their original order. The parity bit at
// position 2^i is the XOR of every position j with j&2^i != 0, its own position included, so a
// single flipped bit at position j makes exactly the checks of the set bits of j fail.
package hamming

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/fumin/arithcode/trace"
)

var (
	// ErrEmptyData is returned when Encode is given no data bits.
	ErrEmptyData = errors.New("empty data")

	// ErrInvalidBit is returned when a bit is neither 0 nor 1.
	ErrInvalidBit = errors.New("invalid bit")
)

// A Codeword is a Hamming codeword of N() = M + R bits.
type Codeword struct {
	Bits []int

	// M is the number of data bits and R the number of parity bits.
	M int
	R int
}

// N returns the codeword length.
func (c Codeword) N() int {
	return len(c.Bits)
}

func (c Codeword) String() string {
	return FormatBits(c.Bits)
}

// Data returns the data bits of the codeword, in order.
func (c Codeword) Data() []int {
	data := make([]int, 0, c.M)
	for j := 1; j <= len(c.Bits); j++ {
		if !isPowerOfTwo(j) {
			data = append(data, c.Bits[j-1])
		}
	}
	return data
}

// ParityBits returns the smallest r with 2^r >= m+r+1.
func ParityBits(m int) int {
	r := 0
	for (1 << r) < m+r+1 {
		r++
	}
	return r
}

// Encode interleaves parity bits into data.
func Encode(data []int, obs trace.Observer) (Codeword, error) {
	m := len(data)
	if m == 0 {
		return Codeword{}, ErrEmptyData
	}
	for i, b := range data {
		if b != 0 && b != 1 {
			return Codeword{}, errors.Wrapf(ErrInvalidBit, "bit %d at %d", b, i)
		}
	}

	r := ParityBits(m)
	n := m + r
	code := make([]int, n)
	k := 0
	for j := 1; j <= n; j++ {
		if !isPowerOfTwo(j) {
			code[j-1] = data[k]
			k++
		}
	}
	trace.Emit(obs, trace.Step{Stage: trace.StageHamming, Message: "data placed " + FormatBits(code)})

	for i := 0; i < r; i++ {
		pos := 1 << i
		parity := 0
		checked := []int{}
		for j := pos; j <= n; j++ {
			if j&pos != 0 {
				parity ^= code[j-1]
				checked = append(checked, j)
			}
		}
		code[pos-1] = parity
		trace.Emit(obs, trace.Step{Stage: trace.StageHamming, Index: i, Position: pos, Checked: checked, Bit: parity, Message: "parity"})
	}
	trace.Emit(obs, trace.Step{Stage: trace.StageHamming, Message: "codeword " + FormatBits(code)})

	return Codeword{Bits: code, M: m, R: r}, nil
}

// Syndrome returns the XOR of the positions of all set bits of code.
// It is 0 for a valid codeword, and equals the position of the flipped bit when exactly one bit
// was flipped. Syndrome only checks; it does not correct.
func Syndrome(code []int) int {
	s := 0
	for j := 1; j <= len(code); j++ {
		if code[j-1] == 1 {
			s ^= j
		}
	}
	return s
}

// ParseBits parses a string of '0' and '1' characters.
func ParseBits(s string) ([]int, error) {
	bits := make([]int, 0, len(s))
	for i, r := range s {
		switch r {
		case '0':
			bits = append(bits, 0)
		case '1':
			bits = append(bits, 1)
		default:
			return nil, errors.Wrapf(ErrInvalidBit, "character %q at %d", r, i)
		}
	}
	return bits, nil
}

// FormatBits renders bits as a string of '0' and '1' characters.
func FormatBits(bits []int) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		if b == 0 {
			sb.WriteByte('0')
		} else {
			sb.WriteByte('1')
		}
	}
	return sb.String()
}

func isPowerOfTwo(j int) bool {
	return j&(j-1) == 0
}
