package ac

import (
	"math"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/arithcode/trace"
)

func TestNewTable(t *testing.T) {
	rec := &trace.Recorder{}
	table, err := NewTableObserved([]rune("AAAB"), DefaultConfig(), rec)
	require.NoError(t, err)

	assert.Equal(t, []rune{'A', 'B'}, table.Symbols())
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, int64(4), table.Total())
	assert.Equal(t, int64(3), table.Count('A'))
	assert.Equal(t, int64(0), table.Count('Z'))

	pa, ok := table.Prob('A')
	require.True(t, ok)
	assert.Equal(t, 0, pa.Cmp(big.NewFloat(0.75)))
	pb, ok := table.Prob('B')
	require.True(t, ok)
	assert.Equal(t, 0, pb.Cmp(big.NewFloat(0.25)))
	_, ok = table.Prob('Z')
	assert.False(t, ok)

	steps := rec.Stage(trace.StageModel)
	require.Len(t, steps, 2)
	assert.Equal(t, 'A', steps[0].Symbol)
	assert.Equal(t, 'B', steps[1].Symbol)
}

func TestTableIsImmutable(t *testing.T) {
	table, err := NewTable([]byte("hello"), DefaultConfig())
	require.NoError(t, err)

	p, _ := table.Prob('l')
	p.SetInt64(7)
	again, _ := table.Prob('l')
	f, _ := again.Float64()
	assert.Equal(t, 0.4, f)

	syms := table.Symbols()
	syms[0] = 'z'
	assert.Equal(t, []byte("ehlo"), table.Symbols())
}

func TestNewTableCanonicalOrder(t *testing.T) {
	table, err := NewTable([]int{5, -3, 9, 5, 0, -3, 5}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []int{-3, 0, 5, 9}, table.Symbols())
}

func TestNewTableEmpty(t *testing.T) {
	_, err := NewTable([]rune{}, DefaultConfig())
	assert.Equal(t, ErrEmptyInput, errors.Cause(err))

	_, err = NewTable[rune](nil, DefaultConfig())
	assert.Equal(t, ErrEmptyInput, errors.Cause(err))
}

func TestNewTableFromCounts(t *testing.T) {
	table, err := NewTableFromCounts(map[rune]int64{'B': 1, 'A': 3, 'C': 0}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []rune{'A', 'B'}, table.Symbols(), "zero counts are dropped")
	assert.Equal(t, int64(4), table.Total())

	for _, counts := range []map[rune]int64{
		{},
		{'A': 0},
		{'A': 2, 'B': -1},
	} {
		_, err := NewTableFromCounts(counts, DefaultConfig())
		assert.Equal(t, ErrEmptyInput, errors.Cause(err), "%v", counts)
	}
}

func TestInformationBits(t *testing.T) {
	table, err := NewTable([]rune("AAAB"), DefaultConfig())
	require.NoError(t, err)
	// -3*log2(3/4) - log2(1/4)
	want := -3*math.Log2(0.75) + 2
	assert.InDelta(t, want, table.InformationBits(), 1e-12)

	single, err := NewTable([]rune("AAAA"), DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.0, single.InformationBits())
}
