package materialize

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentSource matches any InconsistentSourceError.
	ErrInconsistentSource = errors.New("source is logically inconsistent")
	// ErrChannelNotFound marks an annotation channel the source does not declare. It is only
	// logged; absence of a channel never fails a pass.
	ErrChannelNotFound = errors.New("annotation channel not found")
	// ErrInvalidChannels is returned for a channel configuration that cannot be resolved.
	ErrInvalidChannels = errors.New("invalid channel configuration")
)

// InconsistentSourceError reports that the oracle found the source inconsistent. No writes happen.
type InconsistentSourceError struct {
	Source string
}

func (e *InconsistentSourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, ErrInconsistentSource)
}

// Is makes errors.Is(err, ErrInconsistentSource) hold.
func (e *InconsistentSourceError) Is(target error) bool {
	return target == ErrInconsistentSource
}

// StorageError wraps a store failure during a pass.
type StorageError struct {
	Op    string
	Key   string
	Cause error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// Step names the stage of a pass.
type Step string

const (
	StepConsistency Step = "consistency"
	StepBegin       Step = "begin"
	StepChannels    Step = "channels"
	StepRoot        Step = "root"
	StepClass       Step = "class"
	StepCommit      Step = "commit"
)

// MaterializationError is the error of a failed pass: which source, which step, and for class
// work which class.
type MaterializationError struct {
	Source string
	Step   Step
	Class  string
	Cause  error
}

func (e *MaterializationError) Error() string {
	if e.Class != "" {
		return fmt.Sprintf("materialize %s: %s %s: %v", e.Source, e.Step, e.Class, e.Cause)
	}
	return fmt.Sprintf("materialize %s: %s: %v", e.Source, e.Step, e.Cause)
}

func (e *MaterializationError) Unwrap() error {
	return e.Cause
}

// FailedStep returns the step of a MaterializationError in err's chain, or "".
func FailedStep(err error) Step {
	var me *MaterializationError
	if errors.As(err, &me) {
		return me.Step
	}
	return ""
}

// PassStatus names the outcome of a pass: committed, inconsistent or failed.
func PassStatus(err error) string {
	switch {
	case err == nil:
		return "committed"
	case errors.Is(err, ErrInconsistentSource):
		return "inconsistent"
	default:
		return "failed"
	}
}
