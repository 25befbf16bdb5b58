package mastering

import (
	"errors"
	"fmt"
)

// State is the lifecycle state of a Job.
type State int32

const (
	StatePending State = iota
	StateValidating
	StateBuilding
	StateRendering
	StateAnalyzing
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	"pending", "validating", "building", "rendering", "analyzing", "completed", "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}

	return stateNames[s]
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

var (
	// ErrInvalidInput is returned for empty buffers, non-finite samples and
	// unsupported channel layouts.
	ErrInvalidInput = errors.New("mastering: invalid input")
	// ErrRender is returned when rendering fails on validated input.
	ErrRender = errors.New("mastering: render failed")
	// ErrJobReused is returned when Run is called on a job that already ran.
	ErrJobReused = errors.New("mastering: job already started")
	// ErrNoCatalog is returned by New for a nil catalog.
	ErrNoCatalog = errors.New("mastering: nil preset catalog")
)

// JobError records the state in which a job failed.
type JobError struct {
	State State
	Err   error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("mastering job failed while %s: %v", e.State, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}
