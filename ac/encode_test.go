package ac

import (
	"math/big"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/arithcode/trace"
)

func TestEncodeAAAB(t *testing.T) {
	cfg := DefaultConfig()
	part := newTestPartition(t, []rune("AAAB"), cfg)

	rec := &trace.Recorder{}
	iv, err := Encode([]rune("AAAB"), part, cfg, rec)
	require.NoError(t, err)

	// 0.75^3 * 0.25
	assert.Equal(t, 0, iv.Width().Cmp(big.NewFloat(0.10546875)), "%s", iv.Width().Text('g', 20))
	assert.Equal(t, 0, iv.Low.Cmp(big.NewFloat(0.31640625)))
	assert.Equal(t, 0, iv.High.Cmp(big.NewFloat(0.421875)))

	// Range is the width before each symbol narrows it.
	steps := rec.Stage(trace.StageEncode)
	require.Len(t, steps, 4)
	for i, expected := range []struct{ rng, low, high float64 }{
		{1, 0, 0.75},
		{0.75, 0, 0.5625},
		{0.5625, 0, 0.421875},
		{0.421875, 0.31640625, 0.421875},
	} {
		st := steps[i]
		assert.Equal(t, i, st.Index)
		assert.Equal(t, 0, st.Range.Cmp(big.NewFloat(expected.rng)), "step %d range %s", i, st.Range.Text('g', 20))
		assert.Equal(t, 0, st.Low.Cmp(big.NewFloat(expected.low)), "step %d low %s", i, st.Low.Text('g', 20))
		assert.Equal(t, 0, st.High.Cmp(big.NewFloat(expected.high)), "step %d high %s", i, st.High.Text('g', 20))
	}
	assert.Equal(t, 'B', steps[3].Symbol)
}

func TestEncodeNarrowsMonotonically(t *testing.T) {
	cfg := DefaultConfig()
	input := []rune("KURBATOVMAKSIMANDREEVIC")
	part := newTestPartition(t, input, cfg)

	widths := []*big.Float{}
	obs := trace.ObserverFunc(func(st trace.Step) {
		widths = append(widths, cfg.newFloat().Sub(st.High, st.Low))
	})
	_, err := Encode(input, part, cfg, obs)
	require.NoError(t, err)
	require.Len(t, widths, len(input))

	prev := big.NewFloat(1)
	for i, w := range widths {
		assert.Equal(t, -1, w.Cmp(prev), "width did not shrink at %d", i)
		prev = w
	}
}

func TestEncodeErrors(t *testing.T) {
	cfg := DefaultConfig()
	part := newTestPartition(t, []rune("AAAB"), cfg)

	_, err := Encode([]rune("AACB"), part, cfg, nil)
	assert.Equal(t, ErrUnknownSymbol, errors.Cause(err))
	assert.Contains(t, err.Error(), "at 2")

	_, err = Encode([]rune{}, part, cfg, nil)
	assert.Equal(t, ErrEmptyInput, errors.Cause(err))
}

func TestEncodeCollapse(t *testing.T) {
	cfg := Config{Precision: 64, Epsilon: big.NewFloat(1e-9), MaxCodeBits: 1000}
	input := []rune(strings.Repeat("AB", 100))
	part := newTestPartition(t, input, cfg)

	_, err := Encode(input, part, cfg, nil)
	assert.Equal(t, ErrPrecisionInsufficient, errors.Cause(err))

	scaled := cfg.Scale(len(input) + 4)
	part = newTestPartition(t, input, scaled)
	iv, err := Encode(input, part, scaled, nil)
	require.NoError(t, err)
	assert.Equal(t, 1-len(input), iv.Width().MantExp(nil), "width is exactly 2^-%d", len(input))
}
