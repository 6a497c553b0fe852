// Package common holds small helpers shared across pipeline stages.
package common

import (
	"fmt"
	"time"
)

// StageTimer measures the wall-clock duration of one pipeline stage.
type StageTimer struct {
	stage   string
	start   time.Time
	elapsed time.Duration
}

// NewStageTimer starts timing the named stage.
func NewStageTimer(stage string) *StageTimer {
	return &StageTimer{stage: stage, start: time.Now()}
}

// Stop records and returns the elapsed duration.
func (t *StageTimer) Stop() time.Duration {
	t.elapsed = time.Since(t.start)
	return t.elapsed
}

// Elapsed returns the recorded duration (only valid after Stop).
func (t *StageTimer) Elapsed() time.Duration {
	return t.elapsed
}

// Stage returns the stage name.
func (t *StageTimer) Stage() string {
	return t.stage
}

// String returns "stage: duration".
func (t *StageTimer) String() string {
	return fmt.Sprintf("%s: %v", t.stage, t.elapsed)
}
