package timer

import (
	"context"
	"sync"
	"time"

	"github.com/benjamonnguyen/pomotimer"
)

var defaultPollInterval = 100 * time.Millisecond

type RunnerConfig struct {
	PollInterval time.Duration
	Clock        Clock
}

// View is a render snapshot of a timer.
type View struct {
	Config   pomotimer.TimerConfig
	State    RunState
	Display  string
	Progress float64

	// seq orders views built by one runner; zero for views built elsewhere
	seq uint64
}

// Runner drives an Engine with a fixed-rate poll on its own goroutine. All engine
// access goes through the runner's lock; sink calls and update handlers run after
// the lock is released, in the order the engine produced them.
type Runner struct {
	mu      sync.Mutex
	engine  *Engine
	clock   Clock
	poll    time.Duration
	pending []func()
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	seq uint64

	publishMu sync.Mutex
	onUpdate  func(View)
	published uint64
}

func NewRunner(config pomotimer.TimerConfig, sink Sink, opts RunnerConfig) *Runner {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if sink == nil {
		sink = SinkFuncs{}
	}
	r := &Runner{
		clock: opts.Clock,
		poll:  opts.PollInterval,
	}
	r.engine = NewEngine(config, deferredSink{r: r, sink: sink}, opts.Clock)
	return r
}

// OnUpdate registers the handler called with a fresh View after every poll and
// operation. Calls are serialised.
func (r *Runner) OnUpdate(handler func(View)) {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()
	r.onUpdate = handler
}

// Start begins a run and its poll loop. The first poll runs immediately.
func (r *Runner) Start(ctx context.Context) bool {
	var started bool
	view := r.do(func(time.Time) {
		started = r.engine.Start()
		if !started {
			return
		}
		if r.cancel != nil {
			r.cancel()
		}
		var loopCtx context.Context
		loopCtx, r.cancel = context.WithCancel(ctx)
		r.wg.Add(1)
		go r.pollLoop(loopCtx)
	})
	if started {
		r.publish(view)
	}
	return started
}

func (r *Runner) TogglePause() View {
	return r.publish(r.do(func(time.Time) { r.engine.TogglePause() }))
}

func (r *Runner) Skip() View {
	return r.publish(r.do(func(time.Time) { r.engine.Skip() }))
}

func (r *Runner) CompleteFlowWork() View {
	return r.publish(r.do(func(time.Time) { r.engine.CompleteFlowWork() }))
}

// Stop ends the run, flushing finished work to the sink, and halts the poll loop.
func (r *Runner) Stop() View {
	return r.publish(r.do(func(time.Time) {
		r.engine.Stop()
		r.stopLoopLocked()
	}))
}

// Poll ticks the engine now, outside the regular poll schedule.
func (r *Runner) Poll() View {
	return r.publish(r.do(func(now time.Time) { r.engine.Tick(now) }))
}

func (r *Runner) Configure(config pomotimer.TimerConfig) View {
	return r.publish(r.do(func(time.Time) { r.engine.Configure(config) }))
}

func (r *Runner) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.viewLocked()
}

// Close halts the poll loop and waits for it to exit. An unfinished run is
// discarded without reaching the sink.
func (r *Runner) Close() {
	r.mu.Lock()
	r.stopLoopLocked()
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Runner) pollLoop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.poll)
	defer ticker.Stop()

	for {
		view := r.publish(r.do(func(now time.Time) { r.engine.Tick(now) }))
		if !view.State.Started {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (r *Runner) do(op func(now time.Time)) View {
	r.mu.Lock()
	op(r.clock.Now())
	r.seq++
	view := r.viewLocked()
	view.seq = r.seq
	calls := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, call := range calls {
		call()
	}
	return view
}

// publish hands view to the update handler unless a newer view was already
// published. A poll view built before an operation can reach here after it.
func (r *Runner) publish(view View) View {
	r.publishMu.Lock()
	defer r.publishMu.Unlock()
	if view.seq != 0 {
		if view.seq <= r.published {
			return view
		}
		r.published = view.seq
	}
	if r.onUpdate != nil {
		r.onUpdate(view)
	}
	return view
}

func (r *Runner) viewLocked() View {
	return viewOf(r.engine)
}

// Preview returns the View of an idle timer with config.
func Preview(config pomotimer.TimerConfig) View {
	return viewOf(NewEngine(config, nil, nil))
}

func viewOf(e *Engine) View {
	return View{
		Config:   e.Config(),
		State:    e.State(),
		Display:  e.Display(),
		Progress: e.Progress(),
	}
}

func (r *Runner) stopLoopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// deferredSink queues engine signals while the runner's lock is held.
type deferredSink struct {
	r    *Runner
	sink Sink
}

func (d deferredSink) WorkTimeFinalized(seconds int) {
	d.r.pending = append(d.r.pending, func() { d.sink.WorkTimeFinalized(seconds) })
}

func (d deferredSink) SessionRecorded(seconds int) {
	d.r.pending = append(d.r.pending, func() { d.sink.SessionRecorded(seconds) })
}

func (d deferredSink) NotifyUser(seconds int) {
	d.r.pending = append(d.r.pending, func() { d.sink.NotifyUser(seconds) })
}

func (d deferredSink) PlayAlarm(a Alarm, volume float64) {
	d.r.pending = append(d.r.pending, func() { d.sink.PlayAlarm(a, volume) })
}
