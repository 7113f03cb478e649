// Package arithcode chains a static arithmetic coder with a systematic Hamming encoder.
//
// A sequence is modeled by its own symbol frequencies, arithmetic coded into the shortest binary
// codeword inside its final interval, and the codeword is protected with Hamming parity bits.
// The data bits are then read back out of the Hamming codeword and decoded, so that every Run
// checks the bits that would actually be transmitted.
//
// Below is an example of using the compress utility on a short text:
//
//	go run compress/main.go -s AAAB
//	go run decompress/main.go -counts A=3,B=1 -n 4 01011
//
// The coding stages themselves live in package ac and package hamming.
package arithcode

import (
	"math"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"

	"github.com/fumin/arithcode/ac"
	"github.com/fumin/arithcode/hamming"
	"github.com/fumin/arithcode/trace"
)

// ErrRoundTrip is returned when the decoded sequence differs from the input.
var ErrRoundTrip = errors.New("decoded sequence differs from input")

// Options configure Run.
type Options struct {
	// Config is the numeric configuration of all stages.
	// The zero Config means ac.DefaultConfig().
	Config ac.Config

	// AutoScale widens Config when the input needs a longer code than it can carry.
	AutoScale bool

	// Observer, if not nil, receives every intermediate step.
	Observer trace.Observer
}

// DefaultOptions returns the default configuration with automatic scaling.
func DefaultOptions() Options {
	return Options{Config: ac.DefaultConfig(), AutoScale: true}
}

// A Result holds every output of a Run.
type Result[S constraints.Ordered] struct {
	Input []S

	// Config is the configuration actually used, after scaling.
	Config ac.Config

	Table     *ac.Table[S]
	Partition *ac.Partition[S]
	Interval  ac.Interval
	Codeword  ac.Codeword
	Hamming   hamming.Codeword

	// Decoded is the sequence decoded from the data bits of Hamming.
	Decoded []S
}

// CompressionRate returns q/n, the arithmetic code bits per transmitted Hamming bit.
func (r *Result[S]) CompressionRate() float64 {
	if r.Hamming.N() == 0 {
		return 0
	}
	return float64(r.Codeword.Q) / float64(r.Hamming.N())
}

// BitsPerSymbol returns q divided by the input length.
func (r *Result[S]) BitsPerSymbol() float64 {
	if len(r.Input) == 0 {
		return 0
	}
	return float64(r.Codeword.Q) / float64(len(r.Input))
}

// Run codes seq end to end.
//
// When decoding stalls or does not reproduce seq, Run returns the Result so far, with the partial
// Decoded sequence, together with the error.
func Run[S constraints.Ordered](seq []S, opts Options) (*Result[S], error) {
	cfg := opts.Config
	if cfg.Epsilon == nil {
		cfg = ac.DefaultConfig()
	}
	obs := opts.Observer

	if opts.AutoScale {
		probe, err := ac.NewTable(seq, cfg)
		if err != nil {
			return nil, errors.Wrap(err, "model")
		}
		cfg = ScaleConfig(cfg, probe)
	}

	res := &Result[S]{Input: seq, Config: cfg}
	var err error
	res.Table, err = ac.NewTableObserved(seq, cfg, obs)
	if err != nil {
		return nil, errors.Wrap(err, "model")
	}
	res.Partition, err = ac.NewPartition(res.Table, cfg, obs)
	if err != nil {
		return nil, errors.Wrap(err, "partition")
	}
	res.Interval, err = ac.Encode(seq, res.Partition, cfg, obs)
	if err != nil {
		return nil, errors.Wrap(err, "encode")
	}
	res.Codeword, err = ac.Quantize(res.Interval, cfg, obs)
	if err != nil {
		return nil, errors.Wrap(err, "quantize")
	}
	res.Hamming, err = hamming.Encode(res.Codeword.Bits(), obs)
	if err != nil {
		return nil, errors.Wrap(err, "hamming")
	}

	received, err := ac.NewCodeword(res.Hamming.Data())
	if err != nil {
		return res, errors.Wrap(err, "hamming data")
	}
	res.Decoded, err = ac.DecodeCodeword(received, len(seq), res.Partition, cfg, obs)
	if err != nil {
		return res, errors.Wrap(err, "decode")
	}
	if !equal(res.Decoded, seq) {
		return res, errors.Wrapf(ErrRoundTrip, "%v != %v", res.Decoded, seq)
	}
	return res, nil
}

// ScaleConfig returns cfg widened, if needed, to carry the code of the sequence modeled by t.
// Compressor and decompressor must scale from the same model to use the same Config.
func ScaleConfig[S constraints.Ordered](cfg ac.Config, t *ac.Table[S]) ac.Config {
	return cfg.Scale(codeBitsEstimate(t.InformationBits()))
}

// codeBitsEstimate bounds the codeword length of a message carrying info bits of self-information.
// The final interval is about 2^-info wide and Quantize needs at most two bits more than
// ceil(-log2(width)).
func codeBitsEstimate(info float64) int {
	return int(math.Ceil(info)) + 4
}

func equal[S constraints.Ordered](a, b []S) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
