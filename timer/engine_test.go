package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benjamonnguyen/pomotimer"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

type recordingSink struct {
	mu        sync.Mutex
	finalized []int
	sessions  []int
	notified  []int
	alarms    []Alarm
}

func (s *recordingSink) WorkTimeFinalized(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.finalized = append(s.finalized, seconds)
}

func (s *recordingSink) SessionRecorded(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, seconds)
}

func (s *recordingSink) NotifyUser(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notified = append(s.notified, seconds)
}

func (s *recordingSink) PlayAlarm(a Alarm, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alarms = append(s.alarms, a)
}

func (s *recordingSink) Finalized() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.finalized...)
}

func intervalConfig(sections ...pomotimer.Section) pomotimer.TimerConfig {
	cfg := pomotimer.DefaultTimerConfig()
	cfg.DisplayMode = pomotimer.IntervalMode
	cfg.Sections = sections
	return cfg
}

func modeConfig(mode pomotimer.DisplayMode) pomotimer.TimerConfig {
	cfg := pomotimer.DefaultTimerConfig()
	cfg.DisplayMode = mode
	return cfg
}

func newTestEngine(cfg pomotimer.TimerConfig) (*Engine, *fakeClock, *recordingSink) {
	clock := newFakeClock()
	sink := &recordingSink{}
	return NewEngine(cfg, sink, clock), clock, sink
}

func TestStart_Initialization(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		mode          pomotimer.DisplayMode
		expectedTotal time.Duration
	}{
		{name: "count up", mode: pomotimer.CountUpMode, expectedTotal: Unbounded},
		{name: "countdown", mode: pomotimer.CountdownMode, expectedTotal: 25 * time.Minute},
		{name: "interval", mode: pomotimer.IntervalMode, expectedTotal: 25 * time.Minute},
		{name: "flowmodoro", mode: pomotimer.FlowmodoroMode, expectedTotal: Unbounded},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e, clock, _ := newTestEngine(modeConfig(tc.mode))

			require.True(t, e.Start())
			s := e.State()
			assert.True(t, s.Started)
			assert.True(t, s.Running)
			assert.Equal(t, pomotimer.WorkPhase, s.Phase)
			assert.Equal(t, 0, s.SectionIndex)
			assert.Equal(t, 1, s.Cycle)
			assert.Equal(t, tc.expectedTotal, s.Total)
			assert.Equal(t, clock.Now(), s.Anchor)
			assert.Zero(t, s.AccumulatedWork)
		})
	}
}

func TestStart_Preconditions(t *testing.T) {
	t.Parallel()

	t.Run("already started", func(t *testing.T) {
		t.Parallel()
		e, clock, _ := newTestEngine(modeConfig(pomotimer.CountUpMode))
		require.True(t, e.Start())
		clock.Advance(5 * time.Second)
		e.Tick(clock.Now())

		assert.False(t, e.Start())
		assert.Equal(t, 5*time.Second, e.State().Elapsed)
	})

	t.Run("interval with zero first work", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newTestEngine(intervalConfig(pomotimer.Section{Work: 0, Break: 5 * time.Minute}))

		assert.False(t, e.Start())
		assert.False(t, e.State().Started)
		assert.False(t, e.State().Running)
	})

	t.Run("interval without sections", func(t *testing.T) {
		t.Parallel()
		e, _, _ := newTestEngine(intervalConfig())

		assert.False(t, e.Start())
	})
}

func TestTick_WallClockAnchoring(t *testing.T) {
	t.Parallel()
	e, clock, _ := newTestEngine(modeConfig(pomotimer.CountUpMode))
	require.True(t, e.Start())

	// a single late tick after a long gap recovers the full elapsed time
	clock.Advance(10 * time.Minute)
	e.Tick(clock.Now())
	assert.Equal(t, 10*time.Minute, e.State().Elapsed)

	// repeated ticks at the same instant do not add time
	e.Tick(clock.Now())
	e.Tick(clock.Now())
	assert.Equal(t, 10*time.Minute, e.State().Elapsed)
}

func TestTogglePause_ElapsedIsSumOfRunningIntervals(t *testing.T) {
	t.Parallel()
	e, clock, _ := newTestEngine(modeConfig(pomotimer.CountUpMode))
	require.True(t, e.Start())

	clock.Advance(7 * time.Second) // running, no ticks delivered
	e.TogglePause()
	s := e.State()
	assert.False(t, s.Running)
	assert.True(t, s.Started)
	assert.True(t, s.Anchor.IsZero())
	assert.Equal(t, 7*time.Second, s.PausedOffset)

	clock.Advance(time.Hour) // paused
	e.Tick(clock.Now())
	assert.Equal(t, 7*time.Second, e.State().Elapsed)

	e.TogglePause()
	assert.Equal(t, 7*time.Second, e.State().Elapsed)
	assert.Equal(t, clock.Now().Add(-7*time.Second), e.State().Anchor)

	clock.Advance(3 * time.Second)
	e.Tick(clock.Now())
	clock.Advance(20 * time.Minute) // backgrounded, ticks throttled
	e.TogglePause()
	assert.Equal(t, 20*time.Minute+10*time.Second, e.State().Elapsed)

	e.TogglePause()
	clock.Advance(time.Second)
	e.Tick(clock.Now())
	assert.Equal(t, 20*time.Minute+11*time.Second, e.State().Elapsed)
}

func TestTogglePause_DoesNotFlushWork(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(modeConfig(pomotimer.CountUpMode))
	require.True(t, e.Start())

	clock.Advance(5 * time.Minute)
	e.TogglePause()
	e.TogglePause()

	assert.Empty(t, sink.finalized)
	assert.Empty(t, sink.notified)
}

func TestTick_BackwardsClockDoesNotReduceElapsed(t *testing.T) {
	t.Parallel()
	e, clock, _ := newTestEngine(modeConfig(pomotimer.CountUpMode))
	require.True(t, e.Start())

	clock.Advance(2 * time.Minute)
	e.Tick(clock.Now())
	clock.Advance(-time.Minute)
	e.Tick(clock.Now())

	assert.Equal(t, 2*time.Minute, e.State().Elapsed)
}

func TestTick_IntervalFullCycleRoundTrip(t *testing.T) {
	t.Parallel()
	cfg := intervalConfig(
		pomotimer.Section{ID: 1, Work: time.Minute, Break: time.Minute},
		pomotimer.Section{ID: 2, Work: 2 * time.Minute, Break: 0},
	)
	cfg.TotalCycles = 2
	e, clock, sink := newTestEngine(cfg)
	require.True(t, e.Start())

	type step struct {
		phase   pomotimer.Phase
		section int
		cycle   int
		total   time.Duration
	}
	expected := []step{
		{pomotimer.WorkPhase, 0, 1, time.Minute},
		{pomotimer.BreakPhase, 0, 1, time.Minute},
		{pomotimer.WorkPhase, 1, 1, 2 * time.Minute},
		{pomotimer.WorkPhase, 0, 2, time.Minute},
		{pomotimer.BreakPhase, 0, 2, time.Minute},
		{pomotimer.WorkPhase, 1, 2, 2 * time.Minute},
	}

	for i, want := range expected {
		s := e.State()
		require.True(t, s.Started, "step %d", i)
		assert.Equal(t, want.phase, s.Phase, "step %d", i)
		assert.Equal(t, want.section, s.SectionIndex, "step %d", i)
		assert.Equal(t, want.cycle, s.Cycle, "step %d", i)
		assert.Equal(t, want.total, s.Total, "step %d", i)

		clock.Advance(want.total)
		e.Tick(clock.Now())
	}

	s := e.State()
	assert.False(t, s.Started)
	assert.False(t, s.Running)
	assert.Equal(t, 1, s.Cycle)
	assert.Equal(t, []int{360}, sink.finalized)
	assert.Equal(t, []int{360}, sink.notified)
	assert.Equal(t, []int{60, 120, 60, 120}, sink.sessions)
	assert.Equal(t, []Alarm{BreakAlarm, WorkAlarm, WorkAlarm, BreakAlarm, WorkAlarm, FinishedAlarm}, sink.alarms)
}

func TestTick_IdempotentPhaseCompletion(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(intervalConfig(
		pomotimer.Section{Work: time.Minute, Break: 5 * time.Minute},
	))
	require.True(t, e.Start())

	clock.Advance(61 * time.Second)
	now := clock.Now()
	e.Tick(now)
	e.Tick(now)
	e.Tick(now)

	s := e.State()
	assert.Equal(t, pomotimer.BreakPhase, s.Phase)
	assert.Equal(t, time.Minute, s.AccumulatedWork)
	assert.Equal(t, 1, s.CompletedWorkSessions)
	assert.Equal(t, []int{60}, sink.sessions)
}

func TestTick_IntervalCreditsConfiguredDuration(t *testing.T) {
	t.Parallel()
	e, clock, _ := newTestEngine(intervalConfig(
		pomotimer.Section{Work: time.Minute, Break: time.Minute},
	))
	require.True(t, e.Start())

	// tick arrives late, the overshoot is not credited
	clock.Advance(90 * time.Second)
	e.Tick(clock.Now())

	assert.Equal(t, time.Minute, e.State().AccumulatedWork)
	assert.Equal(t, time.Duration(0), e.State().Elapsed)
}

func TestSkip_CreditsActualWork(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(intervalConfig(
		pomotimer.Section{Work: 25 * time.Minute, Break: 5 * time.Minute},
		pomotimer.Section{Work: 25 * time.Minute, Break: 5 * time.Minute},
	))
	require.True(t, e.Start())

	clock.Advance(10 * time.Second)
	e.Skip()
	s := e.State()
	assert.Equal(t, 10*time.Second, s.AccumulatedWork)
	assert.Equal(t, pomotimer.BreakPhase, s.Phase)
	assert.Equal(t, 0, s.CompletedWorkSessions)

	clock.Advance(2 * time.Minute)
	e.Skip()
	s = e.State()
	assert.Equal(t, 10*time.Second, s.AccumulatedWork)
	assert.Equal(t, pomotimer.WorkPhase, s.Phase)
	assert.Equal(t, 1, s.SectionIndex)

	assert.Empty(t, sink.sessions)
	assert.Empty(t, sink.alarms)
}

func TestSkip_LastPhaseCompletesRun(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(intervalConfig(
		pomotimer.Section{Work: 25 * time.Minute},
	))
	require.True(t, e.Start())

	clock.Advance(3 * time.Minute)
	e.Skip()

	assert.False(t, e.State().Started)
	assert.Equal(t, []int{180}, sink.finalized)
	assert.Equal(t, []int{180}, sink.sessions)
}

func TestSkip_WhilePausedKeepsPaused(t *testing.T) {
	t.Parallel()
	e, clock, _ := newTestEngine(intervalConfig(
		pomotimer.Section{Work: 25 * time.Minute, Break: 5 * time.Minute},
	))
	require.True(t, e.Start())
	clock.Advance(time.Minute)
	e.TogglePause()

	e.Skip()
	s := e.State()
	assert.Equal(t, pomotimer.BreakPhase, s.Phase)
	assert.False(t, s.Running)
	assert.True(t, s.Anchor.IsZero())
	assert.Zero(t, s.PausedOffset)

	clock.Advance(time.Minute)
	e.TogglePause()
	clock.Advance(30 * time.Second)
	e.Tick(clock.Now())
	assert.Equal(t, 30*time.Second, e.State().Elapsed)
}

func TestSkip_PerMode(t *testing.T) {
	t.Parallel()

	t.Run("countdown credits actual elapsed", func(t *testing.T) {
		t.Parallel()
		cfg := modeConfig(pomotimer.CountdownMode)
		cfg.Countdown = 5 * time.Minute
		e, clock, sink := newTestEngine(cfg)
		require.True(t, e.Start())
		clock.Advance(90 * time.Second)

		e.Skip()
		assert.False(t, e.State().Started)
		assert.Equal(t, []int{90}, sink.finalized)
		assert.Equal(t, []int{90}, sink.notified)
		assert.Empty(t, sink.alarms)
	})

	t.Run("countdown skip past its total is clamped", func(t *testing.T) {
		t.Parallel()
		cfg := modeConfig(pomotimer.CountdownMode)
		cfg.Countdown = 5 * time.Minute
		e, clock, sink := newTestEngine(cfg)
		require.True(t, e.Start())
		clock.Advance(6 * time.Minute)

		e.Skip()
		assert.Equal(t, []int{300}, sink.finalized)
		assert.Empty(t, sink.alarms)
	})

	t.Run("count up acts as stop", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.CountUpMode))
		require.True(t, e.Start())
		clock.Advance(2*time.Minute + 400*time.Millisecond)

		e.Skip()
		assert.Equal(t, idleState(), e.State())
		assert.Equal(t, []int{120}, sink.finalized)
		assert.Equal(t, []int{120}, sink.notified)
		assert.Empty(t, sink.alarms)
	})

	t.Run("flowmodoro work starts the break", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
		require.True(t, e.Start())
		clock.Advance(10 * time.Minute)

		e.Skip()
		s := e.State()
		assert.True(t, s.Running)
		assert.Equal(t, pomotimer.BreakPhase, s.Phase)
		assert.Equal(t, 2*time.Minute, s.Total)
		assert.Equal(t, 10*time.Minute, s.AccumulatedWork)
		assert.Zero(t, s.CompletedWorkSessions)
		assert.Equal(t, []int{600}, sink.sessions)
		assert.Empty(t, sink.finalized)
		assert.Empty(t, sink.alarms)
	})

	t.Run("flowmodoro work while paused", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
		require.True(t, e.Start())
		clock.Advance(5 * time.Minute)
		e.TogglePause()
		clock.Advance(time.Hour)

		e.Skip()
		s := e.State()
		assert.False(t, s.Running)
		assert.Equal(t, pomotimer.BreakPhase, s.Phase)
		assert.Equal(t, time.Minute, s.Total)
		assert.Zero(t, s.CompletedWorkSessions)
		assert.Equal(t, []int{300}, sink.sessions)
	})

	t.Run("flowmodoro break finalizes banked work", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
		require.True(t, e.Start())
		clock.Advance(10 * time.Minute)
		e.CompleteFlowWork()
		assert.Equal(t, 1, e.State().CompletedWorkSessions)
		clock.Advance(30 * time.Second)

		e.Skip()
		s := e.State()
		assert.True(t, s.Started)
		assert.Equal(t, pomotimer.WorkPhase, s.Phase)
		assert.Equal(t, Unbounded, s.Total)
		assert.Zero(t, s.AccumulatedWork)
		assert.Zero(t, s.Elapsed)
		assert.Equal(t, []int{600}, sink.finalized)
		assert.Equal(t, []int{600}, sink.notified)
		assert.Empty(t, sink.alarms)
	})

	t.Run("idle skip does nothing", func(t *testing.T) {
		t.Parallel()
		e, _, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))

		e.Skip()
		assert.Equal(t, idleState(), e.State())
		assert.Empty(t, sink.finalized)
	})
}

func TestStop_FinalWorkSeconds(t *testing.T) {
	t.Parallel()

	t.Run("interval adds current work phase", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(intervalConfig(
			pomotimer.Section{Work: time.Minute, Break: time.Minute},
			pomotimer.Section{Work: 10 * time.Minute, Break: time.Minute},
		))
		require.True(t, e.Start())
		clock.Advance(time.Minute)
		e.Tick(clock.Now())
		clock.Advance(time.Minute)
		e.Tick(clock.Now())
		clock.Advance(90*time.Second + 500*time.Millisecond)

		e.Stop()
		assert.Equal(t, []int{150}, sink.finalized)
		assert.Equal(t, []int{150}, sink.notified)
		assert.False(t, e.State().Started)
	})

	t.Run("interval during break ignores break time", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(intervalConfig(
			pomotimer.Section{Work: 2 * time.Minute, Break: 5 * time.Minute},
		))
		require.True(t, e.Start())
		clock.Advance(2 * time.Minute)
		e.Tick(clock.Now())
		clock.Advance(4 * time.Minute)

		e.Stop()
		assert.Equal(t, []int{120}, sink.finalized)
	})

	t.Run("count up floors elapsed", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.CountUpMode))
		require.True(t, e.Start())
		clock.Advance(61*time.Second + 900*time.Millisecond)

		e.Stop()
		assert.Equal(t, []int{61}, sink.finalized)
	})

	t.Run("countdown floors elapsed", func(t *testing.T) {
		t.Parallel()
		cfg := modeConfig(pomotimer.CountdownMode)
		cfg.Countdown = 5 * time.Minute
		e, clock, sink := newTestEngine(cfg)
		require.True(t, e.Start())
		clock.Advance(3*time.Minute + 30*time.Second + 500*time.Millisecond)

		e.Stop()
		assert.Equal(t, []int{210}, sink.finalized)
		assert.Equal(t, []int{210}, sink.notified)
		assert.Empty(t, sink.alarms)
		assert.False(t, e.State().Started)
	})

	t.Run("countdown past its total before a tick", func(t *testing.T) {
		t.Parallel()
		cfg := modeConfig(pomotimer.CountdownMode)
		cfg.Countdown = 5 * time.Minute
		e, clock, sink := newTestEngine(cfg)
		require.True(t, e.Start())
		clock.Advance(7 * time.Minute)

		e.Stop()
		assert.Equal(t, []int{420}, sink.finalized)
	})

	t.Run("flowmodoro work floors elapsed", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
		require.True(t, e.Start())
		clock.Advance(12*time.Minute + 30*time.Second + 999*time.Millisecond)

		e.Stop()
		assert.Equal(t, []int{750}, sink.finalized)
		assert.Empty(t, sink.sessions)
		assert.False(t, e.State().Started)
	})

	t.Run("sub minute is suppressed", func(t *testing.T) {
		t.Parallel()
		e, clock, sink := newTestEngine(modeConfig(pomotimer.CountUpMode))
		require.True(t, e.Start())
		clock.Advance(59*time.Second + 999*time.Millisecond)

		e.Stop()
		assert.Empty(t, sink.finalized)
		assert.Empty(t, sink.notified)
		assert.False(t, e.State().Started)
		assert.Equal(t, 1, e.State().Cycle)
	})

	t.Run("idle stop is a reset", func(t *testing.T) {
		t.Parallel()
		e, _, sink := newTestEngine(modeConfig(pomotimer.CountUpMode))

		e.Stop()
		assert.Empty(t, sink.finalized)
		assert.Equal(t, idleState(), e.State())
	})
}

func TestTick_CountdownExpiry(t *testing.T) {
	t.Parallel()
	cfg := modeConfig(pomotimer.CountdownMode)
	cfg.Countdown = 2 * time.Minute
	e, clock, sink := newTestEngine(cfg)
	require.True(t, e.Start())

	clock.Advance(119 * time.Second)
	e.Tick(clock.Now())
	assert.True(t, e.State().Started)
	assert.Empty(t, sink.finalized)

	clock.Advance(5 * time.Second)
	e.Tick(clock.Now())
	e.Tick(clock.Now())
	assert.False(t, e.State().Started)
	assert.Equal(t, []int{124}, sink.finalized)
	assert.Equal(t, []Alarm{FinishedAlarm}, sink.alarms)
	assert.Empty(t, sink.sessions)
}

func TestTick_LateCountdownTickCreditsElapsed(t *testing.T) {
	t.Parallel()
	cfg := modeConfig(pomotimer.CountdownMode)
	cfg.Countdown = 2 * time.Minute
	e, clock, sink := newTestEngine(cfg)
	require.True(t, e.Start())

	// the process was suspended past the end of the countdown
	clock.Advance(10 * time.Minute)
	e.Tick(clock.Now())

	assert.False(t, e.State().Started)
	assert.Equal(t, []int{600}, sink.finalized)
	assert.Equal(t, []int{600}, sink.notified)
	assert.Equal(t, []Alarm{FinishedAlarm}, sink.alarms)
}

func TestTick_CountUpNeverCompletes(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(modeConfig(pomotimer.CountUpMode))
	require.True(t, e.Start())

	clock.Advance(48 * time.Hour)
	e.Tick(clock.Now())

	assert.True(t, e.State().Running)
	assert.Empty(t, sink.finalized)
	assert.Equal(t, "2880:00", e.Display())
}

func TestCompleteFlowWork_DerivesBreak(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		worked        time.Duration
		expectedBreak time.Duration
	}{
		{name: "5m1s", worked: 301 * time.Second, expectedBreak: time.Minute},
		{name: "under a minute", worked: 30 * time.Second, expectedBreak: time.Minute},
		{name: "50m", worked: 50 * time.Minute, expectedBreak: 10 * time.Minute},
		{name: "14m59s", worked: 14*time.Minute + 59*time.Second, expectedBreak: 2 * time.Minute},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			e, clock, _ := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
			require.True(t, e.Start())
			clock.Advance(tc.worked)

			e.CompleteFlowWork()
			s := e.State()
			assert.Equal(t, pomotimer.BreakPhase, s.Phase)
			assert.Equal(t, tc.expectedBreak, s.Total)
			assert.Zero(t, s.Elapsed)
			assert.Equal(t, clock.Now(), s.Anchor)
		})
	}
}

func TestFlowmodoro_BreakExpiryFinalizesBankedWork(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
	require.True(t, e.Start())

	clock.Advance(12 * time.Minute)
	e.Tick(clock.Now())
	assert.Equal(t, "12:00", e.Display())
	assert.Zero(t, e.Progress())

	e.CompleteFlowWork()
	assert.Equal(t, []int{720}, sink.sessions)
	assert.Empty(t, sink.finalized)
	assert.Equal(t, "02:00", e.Display())

	clock.Advance(2 * time.Minute)
	e.Tick(clock.Now())

	s := e.State()
	assert.True(t, s.Running)
	assert.Equal(t, pomotimer.WorkPhase, s.Phase)
	assert.Equal(t, Unbounded, s.Total)
	assert.Zero(t, s.AccumulatedWork)
	assert.Equal(t, []int{720}, sink.finalized)
	assert.Equal(t, []Alarm{WorkAlarm}, sink.alarms)
}

func TestFlowmodoro_StopDuringBreakFinalizesBankedWork(t *testing.T) {
	t.Parallel()
	e, clock, sink := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
	require.True(t, e.Start())
	clock.Advance(10 * time.Minute)
	e.CompleteFlowWork()
	clock.Advance(30 * time.Second)

	e.Stop()
	assert.Equal(t, []int{600}, sink.finalized)
	assert.False(t, e.State().Started)
}

func TestCompleteFlowWork_Preconditions(t *testing.T) {
	t.Parallel()

	t.Run("wrong mode", func(t *testing.T) {
		t.Parallel()
		e, clock, _ := newTestEngine(modeConfig(pomotimer.CountUpMode))
		require.True(t, e.Start())
		clock.Advance(10 * time.Minute)

		e.CompleteFlowWork()
		assert.Equal(t, pomotimer.WorkPhase, e.State().Phase)
	})

	t.Run("paused", func(t *testing.T) {
		t.Parallel()
		e, clock, _ := newTestEngine(modeConfig(pomotimer.FlowmodoroMode))
		require.True(t, e.Start())
		clock.Advance(10 * time.Minute)
		e.TogglePause()

		e.CompleteFlowWork()
		assert.Equal(t, pomotimer.WorkPhase, e.State().Phase)
	})
}

func TestConfigure_AppliesToNextRun(t *testing.T) {
	t.Parallel()
	e, clock, _ := newTestEngine(intervalConfig(pomotimer.Section{Work: time.Minute, Break: time.Minute}))
	require.True(t, e.Start())

	e.Configure(intervalConfig(pomotimer.Section{Work: 50 * time.Minute}))
	assert.Equal(t, time.Minute, e.State().Total)
	assert.Equal(t, time.Minute, e.Config().Sections[0].Work)

	clock.Advance(time.Minute)
	e.Tick(clock.Now())
	assert.Equal(t, pomotimer.BreakPhase, e.State().Phase)

	e.Stop()
	assert.Equal(t, "50:00", e.Display())
	require.True(t, e.Start())
	assert.Equal(t, 50*time.Minute, e.State().Total)
}
