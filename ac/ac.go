// Package ac implements order-0 static arithmetic coding over an arbitrary ordered alphabet.
//
// A Table of symbol probabilities is turned into a Partition of [0,1), Encode narrows
// [0,1) over a symbol sequence, Quantize picks the shortest binary codeword inside the
// final interval, and Decode walks the narrowing back from a code point.
// All arithmetic is done in math/big at the precision given by a Config, and every
// boundary comparison uses the Config's epsilon.
//
// The canonical symbol order is ascending order of the symbol type.
// Partition and Decode both rely on it, so the type parameter is restricted to constraints.Ordered.
package ac

import (
	"encoding/json"
	"math/big"

	"github.com/pkg/errors"
)

var (
	// ErrEmptyInput is returned when a model or encoder is given no symbols.
	ErrEmptyInput = errors.New("empty input")

	// ErrUnknownSymbol is returned when a symbol has no interval in the partition.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrPartitionInvariant is returned when the probabilities do not add up to one.
	ErrPartitionInvariant = errors.New("probabilities do not sum to one")

	// ErrDecodeStall is returned when no interval contains the value at some decode step.
	// The symbols decoded before the stall are returned together with it.
	ErrDecodeStall = errors.New("no interval matches the code value")

	// ErrPrecisionInsufficient is returned when the configured precision cannot represent the code.
	ErrPrecisionInsufficient = errors.New("insufficient precision")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrInvalidBit is returned when a codeword holds something other than 0 and 1.
	ErrInvalidBit = errors.New("invalid bit")
)

const (
	// DefaultPrecision is the mantissa width in bits used by DefaultConfig.
	DefaultPrecision uint = 512

	// DefaultEpsilon is the boundary tolerance used by DefaultConfig.
	DefaultEpsilon = "1e-50"

	// DefaultMaxCodeBits bounds the length of a quantized codeword.
	DefaultMaxCodeBits = 1 << 20

	// guardBits is the precision kept on top of the code length by Scale.
	guardBits = 128
)

// A Config carries the numeric settings shared by every stage.
// The same Config must be used to build the partition, encode, quantize and decode.
type Config struct {
	// Precision is the mantissa width in bits of every big.Float the stages create.
	Precision uint

	// Epsilon is the tolerance of boundary comparisons.
	// Values closer than Epsilon to an interval bound count as lying on it.
	Epsilon *big.Float

	// MaxCodeBits is the largest codeword length Quantize accepts.
	MaxCodeBits int
}

// DefaultConfig returns a 512 bit configuration with an epsilon of 1e-50.
// It is good for codewords up to about 160 bits; use Scale for longer messages.
func DefaultConfig() Config {
	eps, _, err := big.ParseFloat(DefaultEpsilon, 10, DefaultPrecision, big.ToNearestEven)
	if err != nil {
		panic(err)
	}
	return Config{
		Precision:   DefaultPrecision,
		Epsilon:     eps,
		MaxCodeBits: DefaultMaxCodeBits,
	}
}

// Validate reports whether the Config is usable.
func (c Config) Validate() error {
	if c.Precision < 64 {
		return errors.Wrapf(ErrInvalidConfig, "precision %d is below 64 bits", c.Precision)
	}
	if c.Epsilon == nil || c.Epsilon.Sign() <= 0 {
		return errors.Wrap(ErrInvalidConfig, "epsilon must be positive")
	}
	if c.Epsilon.Cmp(big.NewFloat(0.5)) >= 0 {
		return errors.Wrapf(ErrInvalidConfig, "epsilon %s is too large", c.Epsilon.Text('g', 10))
	}
	if c.MaxCodeBits < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max code bits %d", c.MaxCodeBits)
	}
	return nil
}

// Capacity returns the longest codeword, in bits, that the Config can quantize and decode reliably.
func (c Config) Capacity() int {
	byPrec := int(c.Precision) / 2
	byEps := 0
	if c.Epsilon != nil && c.Epsilon.Sign() > 0 {
		byEps = -c.Epsilon.MantExp(nil) - 2
	}
	capacity := byPrec
	if byEps < capacity {
		capacity = byEps
	}
	if c.MaxCodeBits < capacity {
		capacity = c.MaxCodeBits
	}
	if capacity < 0 {
		return 0
	}
	return capacity
}

// Scale returns a Config able to carry codewords of at least bits bits.
// If c already has the capacity, c is returned unchanged.
// Otherwise both the precision and the epsilon are widened together, so that
// stages using the returned Config stay consistent with each other.
func (c Config) Scale(bits int) Config {
	if bits <= c.Capacity() {
		return c
	}
	scaled := c
	scaled.Precision = uint(4*bits + 2*guardBits)
	scaled.Epsilon = new(big.Float).SetPrec(scaled.Precision).SetMantExp(big.NewFloat(1), -(2*bits + guardBits/2))
	if scaled.MaxCodeBits < bits {
		scaled.MaxCodeBits = bits
	}
	return scaled
}

// newFloat returns a zero big.Float at the configured precision.
func (c Config) newFloat() *big.Float {
	return new(big.Float).SetPrec(c.Precision)
}

// within reports whether |a-b| < epsilon.
func (c Config) within(a, b *big.Float) bool {
	d := c.newFloat().Sub(a, b)
	d.Abs(d)
	return d.Cmp(c.Epsilon) < 0
}

// geq reports whether a >= b, counting values within epsilon of b as equal.
func (c Config) geq(a, b *big.Float) bool {
	return a.Cmp(b) > 0 || c.within(a, b)
}

// less reports whether a < b by at least epsilon.
func (c Config) less(a, b *big.Float) bool {
	return a.Cmp(b) < 0 && !c.within(a, b)
}

type jsonConfig struct {
	Precision   uint
	Epsilon     string
	MaxCodeBits int
}

// ParseConfig reads a JSON object such as
//
//	{"Precision": 1024, "Epsilon": "1e-80", "MaxCodeBits": 4096}
//
// Fields that are absent keep the values of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	def := DefaultConfig()
	jc := jsonConfig{Precision: def.Precision, Epsilon: DefaultEpsilon, MaxCodeBits: def.MaxCodeBits}
	if err := json.Unmarshal(data, &jc); err != nil {
		return Config{}, errors.Wrap(err, "")
	}
	eps, _, err := big.ParseFloat(jc.Epsilon, 10, jc.Precision, big.ToNearestEven)
	if err != nil {
		return Config{}, errors.Wrapf(ErrInvalidConfig, "epsilon %q: %v", jc.Epsilon, err)
	}
	c := Config{Precision: jc.Precision, Epsilon: eps, MaxCodeBits: jc.MaxCodeBits}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// MarshalJSON encodes the Config in the form read by ParseConfig.
func (c Config) MarshalJSON() ([]byte, error) {
	jc := jsonConfig{Precision: c.Precision, MaxCodeBits: c.MaxCodeBits}
	if c.Epsilon != nil {
		jc.Epsilon = c.Epsilon.Text('g', 20)
	}
	b, err := json.Marshal(jc)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return b, nil
}
