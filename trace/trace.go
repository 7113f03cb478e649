// Package trace defines the step records that the coding stages report while they run.
// The stages never write to an output stream themselves; a caller that wants narration
// passes an Observer, and a nil Observer keeps the stages silent.
package trace

import (
	"math/big"
)

// A Stage identifies the component that produced a Step.
type Stage int

const (
	StageModel Stage = iota
	StagePartition
	StageEncode
	StageQuantize
	StageDecode
	StageHamming
)

func (s Stage) String() string {
	switch s {
	case StageModel:
		return "model"
	case StagePartition:
		return "partition"
	case StageEncode:
		return "encode"
	case StageQuantize:
		return "quantize"
	case StageDecode:
		return "decode"
	case StageHamming:
		return "hamming"
	default:
		return "unknown"
	}
}

// A Step is a structured record of one intermediate result.
// Only the fields meaningful for the Stage are set.
type Step struct {
	Stage Stage
	Index int

	// Symbol is the symbol consumed or produced, if any.
	Symbol interface{}

	Low   *big.Float
	High  *big.Float
	Range *big.Float
	Value *big.Float

	// Hamming parity steps.
	Position int
	Checked  []int
	Bit      int

	Message string
}

// An Observer receives Steps from the coding stages.
// The big.Float values of a Step are owned by the caller; an Observer that keeps them must copy.
type Observer interface {
	Observe(step Step)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(step Step)

func (f ObserverFunc) Observe(step Step) {
	f(step)
}

// Emit forwards step to obs, doing nothing when obs is nil.
func Emit(obs Observer, step Step) {
	if obs == nil {
		return
	}
	obs.Observe(step)
}

// A Recorder keeps a copy of every Step it observes.
type Recorder struct {
	Steps []Step
}

func (r *Recorder) Observe(step Step) {
	step.Low = clone(step.Low)
	step.High = clone(step.High)
	step.Range = clone(step.Range)
	step.Value = clone(step.Value)
	if step.Checked != nil {
		step.Checked = append([]int{}, step.Checked...)
	}
	r.Steps = append(r.Steps, step)
}

func clone(x *big.Float) *big.Float {
	if x == nil {
		return nil
	}
	return new(big.Float).Copy(x)
}

// Stage returns the recorded steps of stage s, in order.
func (r *Recorder) Stage(s Stage) []Step {
	steps := []Step{}
	for _, st := range r.Steps {
		if st.Stage == s {
			steps = append(steps, st)
		}
	}
	return steps
}
