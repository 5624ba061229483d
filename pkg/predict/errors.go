package predict

import (
	"errors"
	"fmt"
)

// Stages of a prediction reported by Error.
const (
	StageImpute      = "impute"
	StageClassify    = "classify"
	StageProbability = "probability"
	StageDecode      = "decode"
)

// ErrPrediction is matched by every *Error.
var ErrPrediction = errors.New("prediction failed")

// Error reports a failure while running the loaded pipeline on one input.
// It is scoped to a single submission; the caller may retry with other input.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("prediction failed during %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrPrediction
}

func stageError(stage string, err error) error {
	return &Error{Stage: stage, Err: err}
}
