package trace

import (
	"math/big"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitNil(t *testing.T) {
	// A nil observer must be a no-op.
	Emit(nil, Step{Stage: StageEncode})
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	Emit(rec, Step{Stage: StageModel, Index: 0})
	Emit(rec, Step{Stage: StageEncode, Index: 0})
	Emit(rec, Step{Stage: StageEncode, Index: 1})

	assert.Len(t, rec.Steps, 3)
	enc := rec.Stage(StageEncode)
	require.Len(t, enc, 2)
	assert.Equal(t, 1, enc[1].Index)
	assert.Empty(t, rec.Stage(StageHamming))
}

func TestRecorderCopies(t *testing.T) {
	rec := &Recorder{}
	x := big.NewFloat(1)
	checked := []int{1, 3}
	for i := 0; i < 3; i++ {
		Emit(rec, Step{Stage: StageEncode, Index: i, Range: x, Value: x, Checked: checked})
		x.Quo(x, big.NewFloat(2))
		checked[0]++
	}

	require.Len(t, rec.Steps, 3)
	for i, expected := range []float64{1, 0.5, 0.25} {
		st := rec.Steps[i]
		assert.Equal(t, 0, st.Range.Cmp(big.NewFloat(expected)), "step %d range %s", i, st.Range.Text('g', 10))
		assert.Equal(t, 0, st.Value.Cmp(big.NewFloat(expected)), "step %d value %s", i, st.Value.Text('g', 10))
		assert.Equal(t, []int{i + 1, 3}, st.Checked)
		assert.Nil(t, st.Low)
	}
}

func TestStageString(t *testing.T) {
	for _, tc := range []struct {
		stage    Stage
		expected string
	}{
		{StageModel, "model"},
		{StagePartition, "partition"},
		{StageEncode, "encode"},
		{StageQuantize, "quantize"},
		{StageDecode, "decode"},
		{StageHamming, "hamming"},
		{Stage(42), "unknown"},
	} {
		assert.Equal(t, tc.expected, tc.stage.String())
	}
}

func TestLogObserver(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	obs := NewLogObserver(logger).WithDigits(5)

	obs.Observe(Step{
		Stage:   StageEncode,
		Index:   3,
		Symbol:  'B',
		Low:     big.NewFloat(0.31640625),
		High:    big.NewFloat(0.421875),
		Range:   big.NewFloat(0.421875),
		Message: "narrow",
	})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.DebugLevel, entry.Level)
	assert.Equal(t, "narrow", entry.Message)
	assert.Equal(t, "encode", entry.Data["stage"])
	assert.Equal(t, 3, entry.Data["index"])
	assert.Equal(t, "'B'", entry.Data["symbol"])
	assert.Equal(t, "0.31641", entry.Data["low"])
	assert.NotContains(t, entry.Data, "value")

	obs.Observe(Step{Stage: StageHamming, Index: 1, Position: 2, Checked: []int{2, 3, 6, 7}, Bit: 1, Message: "parity"})
	entry = hook.LastEntry()
	assert.Equal(t, 2, entry.Data["position"])
	assert.Equal(t, "[2 3 6 7]", entry.Data["checked"])
	assert.Equal(t, 1, entry.Data["bit"])
	assert.Len(t, hook.AllEntries(), 2)
}

func TestLogObserverSilentAboveDebug(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.InfoLevel)
	NewLogObserver(logger).Observe(Step{Stage: StageDecode, Message: "found"})
	assert.Empty(t, hook.AllEntries())
}
