package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/timer"
)

var defaultRenderEvery = 15 * time.Second

type startTimerRequest struct {
	guildID   string
	textCID   pomotimer.TextChannelID
	voiceCID  pomotimer.VoiceChannelID
	messageID string
	userID    pomotimer.UserID
	config    pomotimer.TimerConfig
}

// Timer is a snapshot of a channel timer.
type Timer struct {
	GuildID   string
	TextCID   pomotimer.TextChannelID
	VoiceCID  pomotimer.VoiceChannelID
	MessageID string
	UserID    pomotimer.UserID
	View      timer.View
	// Ended is set once a started run has finished or been stopped
	Ended bool
}

type TimerManager interface {
	HasTimer(pomotimer.TextChannelID) bool
	GuildTimerCnt(guildID string) int
	StartTimer(context.Context, startTimerRequest) (Timer, error)
	TogglePause(pomotimer.TextChannelID) (Timer, error)
	Skip(pomotimer.TextChannelID) (Timer, error)
	FinishWork(pomotimer.TextChannelID) (Timer, error)
	StopTimer(pomotimer.TextChannelID) (Timer, error)

	// OnTimerUpdate registers the render hook. Calls are throttled per timer and
	// never overlap for the same timer.
	OnTimerUpdate(func(context.Context, Timer))
	Shutdown() error
}

type TimerManagerConfig struct {
	RenderEvery time.Duration
	Runner      timer.RunnerConfig
}

type timerManager struct {
	cache       *timerCache
	newSink     func(Timer) timer.Sink
	runnerCfg   timer.RunnerConfig
	renderEvery time.Duration
	clock       timer.Clock
	wg          sync.WaitGroup
	parentCtx   context.Context

	onTimerUpdate func(context.Context, Timer)
}

// NewTimerManager returns a manager whose timers report to the sink built by newSink.
func NewTimerManager(ctx context.Context, newSink func(Timer) timer.Sink, cfg TimerManagerConfig) TimerManager {
	if cfg.RenderEvery <= 0 {
		cfg.RenderEvery = defaultRenderEvery
	}
	if cfg.Runner.Clock == nil {
		cfg.Runner.Clock = timer.SystemClock
	}
	return &timerManager{
		cache: &timerCache{
			timers: make(map[pomotimer.TextChannelID]*channelTimer),
		},
		newSink:     newSink,
		runnerCfg:   cfg.Runner,
		renderEvery: cfg.RenderEvery,
		clock:       cfg.Runner.Clock,
		parentCtx:   ctx,
	}
}

func (m *timerManager) HasTimer(cid pomotimer.TextChannelID) bool {
	return m.cache.Has(cid)
}

func (m *timerManager) GuildTimerCnt(guildID string) int {
	return m.cache.GuildCnt(guildID)
}

func (m *timerManager) OnTimerUpdate(handler func(context.Context, Timer)) {
	m.onTimerUpdate = handler
}

func (m *timerManager) StartTimer(ctx context.Context, req startTimerRequest) (Timer, error) {
	if req.guildID == "" || req.textCID == "" {
		return Timer{}, fmt.Errorf("startTimerRequest requires guild and channel IDs")
	}
	if err := req.config.Validate(); err != nil {
		return Timer{}, fmt.Errorf("invalid timer settings: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Timer{}, err
	}

	t := &channelTimer{
		guildID:   req.guildID,
		textCID:   req.textCID,
		voiceCID:  req.voiceCID,
		messageID: req.messageID,
		userID:    req.userID,
	}
	var sink timer.Sink
	if m.newSink != nil {
		sink = m.newSink(t.snapshot(timer.Preview(req.config)))
	}
	t.runner = timer.NewRunner(req.config, sink, m.runnerCfg)

	if err := m.cache.Add(t); err != nil {
		return Timer{}, err
	}
	t.runner.OnUpdate(func(v timer.View) {
		m.handleUpdate(t, v)
	})
	if !t.runner.Start(m.parentCtx) {
		m.cache.Remove(t)
		return Timer{}, fmt.Errorf("timer settings have nothing to count down for mode %s", req.config.DisplayMode)
	}
	log.Debug("started timer", "cid", req.textCID, "mode", req.config.DisplayMode)
	return t.snapshot(t.runner.View()), nil
}

func (m *timerManager) TogglePause(cid pomotimer.TextChannelID) (Timer, error) {
	return m.do(cid, (*timer.Runner).TogglePause)
}

func (m *timerManager) Skip(cid pomotimer.TextChannelID) (Timer, error) {
	return m.do(cid, (*timer.Runner).Skip)
}

func (m *timerManager) FinishWork(cid pomotimer.TextChannelID) (Timer, error) {
	return m.do(cid, (*timer.Runner).CompleteFlowWork)
}

func (m *timerManager) StopTimer(cid pomotimer.TextChannelID) (Timer, error) {
	return m.do(cid, (*timer.Runner).Stop)
}

// Shutdown stops every timer so finished work reaches the sink, then waits for
// pending renders.
func (m *timerManager) Shutdown() error {
	for _, t := range m.cache.All() {
		t.runner.Stop()
		t.runner.Close()
	}
	m.wg.Wait()
	return nil
}

func (m *timerManager) do(cid pomotimer.TextChannelID, op func(*timer.Runner) timer.View) (Timer, error) {
	t := m.cache.Get(cid)
	if t == nil {
		return Timer{}, fmt.Errorf("timer not found for channel: %s", cid)
	}
	v := op(t.runner)
	return t.snapshot(v), nil
}

// handleUpdate is called serially per timer from its runner.
func (m *timerManager) handleUpdate(t *channelTimer, v timer.View) {
	// a poll view can be published after the stop view that ended the timer
	if t.ended.Load() {
		return
	}
	if v.State.Started {
		t.started.Store(true)
	}
	snapshot := t.snapshot(v)
	if snapshot.Ended {
		if !t.ended.CompareAndSwap(false, true) {
			return
		}
		m.cache.Remove(t)
		log.Debug("timer ended", "cid", t.textCID)
	}
	if m.onTimerUpdate == nil || !t.throttle.shouldRender(v, snapshot.Ended, m.clock.Now(), m.renderEvery) {
		return
	}

	seq := t.seq.Add(1)
	m.wg.Go(func() {
		// renders may be slow; drop intermediate ones but never the final one
		if snapshot.Ended {
			t.renderMu.Lock()
		} else if !t.renderMu.TryLock() {
			return
		}
		defer t.renderMu.Unlock()
		if seq < t.rendered {
			return
		}
		t.rendered = seq
		m.onTimerUpdate(m.parentCtx, snapshot)
	})
}

type channelTimer struct {
	guildID   string
	textCID   pomotimer.TextChannelID
	voiceCID  pomotimer.VoiceChannelID
	messageID string
	userID    pomotimer.UserID
	runner    *timer.Runner

	started  atomic.Bool
	ended    atomic.Bool
	throttle renderThrottle
	seq      atomic.Uint64
	renderMu sync.Mutex
	rendered uint64
}

func (t *channelTimer) snapshot(v timer.View) Timer {
	return Timer{
		GuildID:   t.guildID,
		TextCID:   t.textCID,
		VoiceCID:  t.voiceCID,
		MessageID: t.messageID,
		UserID:    t.userID,
		View:      v,
		Ended:     !v.State.Started && t.started.Load(),
	}
}

type renderSignature struct {
	phase   pomotimer.Phase
	section int
	cycle   int
	running bool
	started bool
}

// renderThrottle passes state changes through and limits the rest to one
// render per interval. Only used from the serialised update path.
type renderThrottle struct {
	last   renderSignature
	lastAt time.Time
}

func (rt *renderThrottle) shouldRender(v timer.View, ended bool, now time.Time, every time.Duration) bool {
	sig := renderSignature{
		phase:   v.State.Phase,
		section: v.State.SectionIndex,
		cycle:   v.State.Cycle,
		running: v.State.Running,
		started: v.State.Started,
	}
	if !ended && sig == rt.last && now.Sub(rt.lastAt) < every {
		return false
	}
	rt.last = sig
	rt.lastAt = now
	return true
}

// Cache

type timerCache struct {
	mu     sync.RWMutex
	timers map[pomotimer.TextChannelID]*channelTimer
}

func (c *timerCache) Add(t *channelTimer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.timers[t.textCID]; exists {
		return fmt.Errorf("timer already exists for channel %s", t.textCID)
	}
	c.timers[t.textCID] = t
	return nil
}

// Remove deletes t if it is still the cached timer for its channel.
func (c *timerCache) Remove(t *channelTimer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timers[t.textCID] == t {
		delete(c.timers, t.textCID)
	}
}

func (c *timerCache) Get(cid pomotimer.TextChannelID) *channelTimer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timers[cid]
}

func (c *timerCache) Has(cid pomotimer.TextChannelID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.timers[cid]
	return exists
}

func (c *timerCache) GuildCnt(guildID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var cnt int
	for _, t := range c.timers {
		if t.guildID == guildID {
			cnt++
		}
	}
	return cnt
}

func (c *timerCache) All() []*channelTimer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]*channelTimer, 0, len(c.timers))
	for _, t := range c.timers {
		all = append(all, t)
	}
	return all
}
