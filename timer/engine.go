package timer

import (
	"time"

	"github.com/benjamonnguyen/pomotimer"
)

// minCredit is the least work time reported to the sink.
const minCredit = time.Minute

// Engine is a single timer. It is not safe for concurrent use; Runner serialises
// access for hosts that drive it from several goroutines.
type Engine struct {
	config pomotimer.TimerConfig // applied on the next Start
	run    pomotimer.TimerConfig // settings of the active run
	state  RunState
	clock  Clock
	sink   Sink
}

func NewEngine(config pomotimer.TimerConfig, sink Sink, clock Clock) *Engine {
	if sink == nil {
		sink = SinkFuncs{}
	}
	if clock == nil {
		clock = SystemClock
	}
	return &Engine{
		config: config.Clone(),
		run:    config.Clone(),
		state:  idleState(),
		clock:  clock,
		sink:   sink,
	}
}

// Configure replaces the settings used by the next run. An active run keeps the
// settings it started with.
func (e *Engine) Configure(config pomotimer.TimerConfig) {
	e.config = config.Clone()
}

// Config returns the settings of the active run, or the configured settings when
// idle.
func (e *Engine) Config() pomotimer.TimerConfig {
	if e.state.Started {
		return e.run.Clone()
	}
	return e.config.Clone()
}

func (e *Engine) State() RunState {
	return e.state
}

func (e *Engine) Display() string {
	return DisplayValue(e.Config(), e.state)
}

func (e *Engine) Progress() float64 {
	return ProgressPercent(e.Config(), e.state)
}

// Start begins a run with the configured settings. It reports false without
// changing state when a run is already started or the settings cannot produce a
// bounded first phase.
func (e *Engine) Start() bool {
	if e.state.Started {
		return false
	}

	cfg := e.config.Clone()
	s := idleState()
	switch cfg.DisplayMode {
	case pomotimer.CountUpMode, pomotimer.FlowmodoroMode:
		s.Total = Unbounded
	case pomotimer.CountdownMode:
		if cfg.Countdown <= 0 {
			return false
		}
		s.Total = cfg.Countdown
	case pomotimer.IntervalMode:
		if len(cfg.Sections) == 0 || cfg.Sections[0].Work <= 0 {
			return false
		}
		s.Total = cfg.Sections[0].Work
	default:
		return false
	}
	if cfg.TotalCycles < 1 {
		cfg.TotalCycles = 1
	}

	s.Started = true
	s.Running = true
	s.Anchor = e.clock.Now()
	e.run = cfg
	e.state = s
	return true
}

// TogglePause flips between running and paused. Pausing never flushes work.
func (e *Engine) TogglePause() {
	s := &e.state
	if !s.Started {
		return
	}

	now := e.clock.Now()
	if s.Running {
		e.sample(now)
		s.PausedOffset = s.Elapsed
		s.Anchor = time.Time{}
		s.Running = false
		return
	}
	s.Running = true
	s.Anchor = now.Add(-s.PausedOffset)
}

// Tick recomputes elapsed time from the phase anchor and completes the phase once
// its target is reached. Late or missed ticks only delay the completion.
func (e *Engine) Tick(now time.Time) {
	s := &e.state
	if !s.Started || !s.Running {
		return
	}
	e.sample(now)
	if s.phaseDone || s.Total == Unbounded || s.Elapsed < s.Total {
		return
	}
	s.phaseDone = true

	switch e.run.DisplayMode {
	case pomotimer.IntervalMode:
		e.transition(now, s.Total, true)
	case pomotimer.CountdownMode:
		e.finishCountdown(s.Elapsed, true)
	case pomotimer.FlowmodoroMode:
		if s.Phase == pomotimer.BreakPhase {
			e.finishFlowBreak(now, true)
		}
	case pomotimer.CountUpMode:
	}
}

// Skip ends the current phase early. A skipped work phase is credited with the
// time actually worked, a skipped break with nothing.
func (e *Engine) Skip() {
	s := &e.state
	if !s.Started {
		return
	}
	now := e.clock.Now()
	e.sample(now)
	s.phaseDone = true

	switch e.run.DisplayMode {
	case pomotimer.IntervalMode:
		var credit time.Duration
		if s.Phase == pomotimer.WorkPhase {
			credit = min(s.Elapsed, s.Total)
		}
		e.transition(now, credit, false)
	case pomotimer.CountdownMode:
		e.finishCountdown(min(s.Elapsed, s.Total), false)
	case pomotimer.FlowmodoroMode:
		if s.Phase == pomotimer.WorkPhase {
			e.completeFlowWork(now, false)
		} else {
			e.finishFlowBreak(now, false)
		}
	case pomotimer.CountUpMode:
		e.Stop()
	}
}

// Stop ends the run, reporting the finished work time when it is at least a
// minute. State is idle before the sink is called.
func (e *Engine) Stop() {
	s := &e.state
	if !s.Started {
		e.state = idleState()
		return
	}
	e.sample(e.clock.Now())

	var final time.Duration
	switch e.run.DisplayMode {
	case pomotimer.IntervalMode:
		final = s.AccumulatedWork
		if s.Phase == pomotimer.WorkPhase {
			final += min(s.Elapsed, s.Total).Truncate(time.Second)
		}
	case pomotimer.CountUpMode, pomotimer.CountdownMode:
		final = s.Elapsed
	case pomotimer.FlowmodoroMode:
		if s.Phase == pomotimer.WorkPhase {
			final = s.Elapsed
		} else {
			final = s.AccumulatedWork
		}
	}

	e.state = idleState()
	e.finalize(final)
}

// CompleteFlowWork ends a flowmodoro work phase and starts a break of a fifth of
// the whole minutes worked, at least one minute.
func (e *Engine) CompleteFlowWork() {
	s := &e.state
	if e.run.DisplayMode != pomotimer.FlowmodoroMode || !s.Started || !s.Running || s.Phase != pomotimer.WorkPhase {
		return
	}
	now := e.clock.Now()
	e.sample(now)
	e.completeFlowWork(now, true)
}

func (e *Engine) sample(now time.Time) {
	s := &e.state
	if !s.Running {
		return
	}
	if s.Anchor.IsZero() {
		s.Anchor = now.Add(-s.PausedOffset)
	}
	// a wall clock stepping backwards must not move elapsed time backwards
	if elapsed := now.Sub(s.Anchor); elapsed > s.Elapsed {
		s.Elapsed = elapsed
	}
}

func (e *Engine) beginPhase(now time.Time, phase pomotimer.Phase, total time.Duration) {
	s := &e.state
	s.Phase = phase
	s.Total = total
	s.Elapsed = 0
	s.PausedOffset = 0
	s.phaseDone = false
	if s.Running {
		s.Anchor = now
	} else {
		s.Anchor = time.Time{}
	}
}

// transition leaves the current interval phase, crediting work time when leaving
// a work phase.
func (e *Engine) transition(now time.Time, credit time.Duration, natural bool) {
	s := &e.state
	if s.Phase == pomotimer.WorkPhase {
		e.creditWork(credit, natural)
		if brk := e.run.Sections[s.SectionIndex].Break; brk > 0 {
			e.beginPhase(now, pomotimer.BreakPhase, brk)
			if natural {
				e.alarm(BreakAlarm)
			}
			return
		}
	}
	e.advanceSection(now, natural)
}

func (e *Engine) advanceSection(now time.Time, natural bool) {
	s := &e.state
	next := (s.SectionIndex + 1) % len(e.run.Sections)
	if next == 0 {
		s.Cycle++
		if s.Cycle > e.run.TotalCycles {
			final := s.AccumulatedWork
			e.state = idleState()
			if natural {
				e.alarm(FinishedAlarm)
			}
			e.finalize(final)
			return
		}
	}
	s.SectionIndex = next
	e.beginPhase(now, pomotimer.WorkPhase, e.run.Sections[next].Work)
	if natural {
		e.alarm(WorkAlarm)
	}
}

func (e *Engine) creditWork(credit time.Duration, natural bool) {
	s := &e.state
	credit = credit.Truncate(time.Second)
	s.AccumulatedWork += credit
	if natural {
		s.CompletedWorkSessions++
	}
	if credit >= minCredit {
		e.sink.SessionRecorded(wholeSeconds(credit))
	}
}

func (e *Engine) finishCountdown(credit time.Duration, natural bool) {
	e.state = idleState()
	if natural {
		e.alarm(FinishedAlarm)
	}
	e.finalize(credit)
}

func (e *Engine) completeFlowWork(now time.Time, natural bool) {
	s := &e.state
	workMinutes := int(s.Elapsed / time.Minute)
	breakMinutes := max(1, workMinutes/5)
	e.creditWork(s.Elapsed, natural)
	e.beginPhase(now, pomotimer.BreakPhase, time.Duration(breakMinutes)*time.Minute)
}

func (e *Engine) finishFlowBreak(now time.Time, natural bool) {
	s := &e.state
	banked := s.AccumulatedWork
	s.AccumulatedWork = 0
	e.beginPhase(now, pomotimer.WorkPhase, Unbounded)
	if natural {
		e.alarm(WorkAlarm)
	}
	e.finalize(banked)
}

func (e *Engine) finalize(work time.Duration) {
	if work < minCredit {
		return
	}
	secs := wholeSeconds(work)
	e.sink.WorkTimeFinalized(secs)
	e.sink.NotifyUser(secs)
}

func (e *Engine) alarm(a Alarm) {
	e.sink.PlayAlarm(a, e.run.AlarmVolume)
}
