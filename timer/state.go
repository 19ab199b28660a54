// Package timer implements the focus timer state machine and its poll driver.
package timer

import (
	"math"
	"time"

	"github.com/benjamonnguyen/pomotimer"
)

// Unbounded is the Total of a phase with no target duration.
const Unbounded time.Duration = math.MaxInt64

// RunState is the mutable state of one timer. The zero value is not idle, use
// idleState.
type RunState struct {
	Phase        pomotimer.Phase
	SectionIndex int
	Cycle        int
	Total        time.Duration
	Elapsed      time.Duration
	Running      bool
	Started      bool

	// AccumulatedWork holds whole seconds of credited work in the current run.
	// In flowmodoro it is the work banked for the break in progress.
	AccumulatedWork       time.Duration
	CompletedWorkSessions int

	// Elapsed = now - Anchor while running. Anchor is zero while paused or idle.
	Anchor       time.Time
	PausedOffset time.Duration

	// phaseDone latches once the current phase has been completed
	phaseDone bool
}

func idleState() RunState {
	return RunState{
		Phase: pomotimer.WorkPhase,
		Cycle: 1,
	}
}

func (s RunState) Remaining() time.Duration {
	if s.Total == Unbounded {
		return Unbounded
	}
	return max(0, s.Total-s.Elapsed)
}

func (s RunState) Paused() bool {
	return s.Started && !s.Running
}

func wholeSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
