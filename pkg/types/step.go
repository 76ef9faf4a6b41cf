package types

import "github.com/arthur-debert/partforge/pkg/errors"

// Step is one stage of the fixed part lifecycle pipeline.
type Step string

// The pipeline steps, in execution order.
const (
	StepPull  Step = "pull"
	StepBuild Step = "build"
	StepStage Step = "stage"
	StepStrip Step = "strip"
)

// StepOrder is the fixed execution order of the pipeline. Completing a
// step invalidates every later step.
var StepOrder = []Step{StepPull, StepBuild, StepStage, StepStrip}

// Index returns the step's position in the pipeline order, or -1 for an
// unknown step.
func (s Step) Index() int {
	for i, step := range StepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known pipeline step.
func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Before reports whether s comes strictly before other in pipeline order.
func (s Step) Before(other Step) bool {
	return s.Index() < other.Index()
}

// ParseStep converts a user-supplied step name into a Step.
func ParseStep(name string) (Step, error) {
	s := Step(name)
	if !s.Valid() {
		return "", errors.Newf(errors.ErrInvalidStep, "%q is not a valid step", name)
	}
	return s, nil
}
