package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/timer"
)

const (
	tickInterval = 100 * time.Millisecond
	dbTimeout    = 5 * time.Second
	localUser    = pomotimer.UserID("local")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA"))
	workStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	breakStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3498DB"))
	pausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BCC0C0"))
	currentStyle = lipgloss.NewStyle().Underline(true)
	noticeStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#F1C40F"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

type tickMsg time.Time

// noticeMsg replaces the status line.
type noticeMsg string

type sinkEventKind uint8

const (
	workFinalizedEvent sinkEventKind = iota + 1
	sessionRecordedEvent
	notifyUserEvent
	playAlarmEvent
)

type sinkEvent struct {
	kind    sinkEventKind
	seconds int
	alarm   timer.Alarm
	volume  float64
}

// eventSink queues engine signals. The engine is driven from Update only, so
// the queue is drained on the same goroutine that fills it.
type eventSink struct {
	events []sinkEvent
}

func (s *eventSink) WorkTimeFinalized(seconds int) {
	s.events = append(s.events, sinkEvent{kind: workFinalizedEvent, seconds: seconds})
}

func (s *eventSink) SessionRecorded(seconds int) {
	s.events = append(s.events, sinkEvent{kind: sessionRecordedEvent, seconds: seconds})
}

func (s *eventSink) NotifyUser(seconds int) {
	s.events = append(s.events, sinkEvent{kind: notifyUserEvent, seconds: seconds})
}

func (s *eventSink) PlayAlarm(a timer.Alarm, volume float64) {
	s.events = append(s.events, sinkEvent{kind: playAlarmEvent, alarm: a, volume: volume})
}

func (s *eventSink) drain() []sinkEvent {
	events := s.events
	s.events = nil
	return events
}

type modelDeps struct {
	// repo and tx are nil when no database is configured
	repo  pomotimer.WorkLogRepo
	tx    transactor.Transactor
	clock timer.Clock
	bell  io.Writer
}

type model struct {
	engine   *timer.Engine
	sink     *eventSink
	deps     modelDeps
	progress progress.Model
	notice   string
	width    int
	quitting bool
}

func newModel(cfg pomotimer.TimerConfig, deps modelDeps) model {
	if deps.clock == nil {
		deps.clock = timer.SystemClock
	}
	if deps.bell == nil {
		deps.bell = io.Discard
	}
	sink := &eventSink{}
	return model{
		engine:   timer.NewEngine(cfg, sink, deps.clock),
		sink:     sink,
		deps:     deps,
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)

	case tickMsg:
		m.engine.Tick(time.Time(msg))
		return m, tea.Batch(append(m.sinkCmds(), tickCmd())...)

	case noticeMsg:
		m.notice = string(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "s":
		if !m.engine.Start() {
			if !m.engine.State().Started {
				m.notice = "Nothing to count with these settings."
			}
			return m, nil
		}
		m.notice = ""
	case " ":
		m.engine.TogglePause()
	case "n":
		m.engine.Skip()
	case "f":
		m.engine.CompleteFlowWork()
	case "x":
		m.engine.Stop()
	case "q", "ctrl+c":
		m.engine.Stop()
		m.quitting = true
		// flush pending writes before the program exits
		return m, tea.Sequence(append(m.sinkCmds(), tea.Quit)...)
	default:
		return m, nil
	}
	return m, tea.Batch(m.sinkCmds()...)
}

// sinkCmds turns queued engine signals into commands.
func (m model) sinkCmds() []tea.Cmd {
	var cmds []tea.Cmd
	for _, e := range m.sink.drain() {
		switch e.kind {
		case workFinalizedEvent:
			if m.deps.repo != nil {
				cmds = append(cmds, m.recordWorkCmd(e.seconds))
			}
		case sessionRecordedEvent:
			if m.deps.repo != nil {
				cmds = append(cmds, m.recordSessionCmd())
			}
		case notifyUserEvent:
			cmds = append(cmds, notice(fmt.Sprintf("Logged %d min of focus time.", e.seconds/60)))
		case playAlarmEvent:
			if e.volume > 0 {
				cmds = append(cmds, m.bellCmd(e.alarm))
			}
		}
	}
	return cmds
}

func notice(s string) tea.Cmd {
	return func() tea.Msg {
		return noticeMsg(s)
	}
}

func (m model) recordWorkCmd(seconds int) tea.Cmd {
	mode := m.engine.Config().DisplayMode
	finishedAt := m.deps.clock.Now()
	repo, tx := m.deps.repo, m.deps.tx
	return func() tea.Msg {
		record, err := pomotimer.NewWorkLogRecord(localUser, mode, seconds, finishedAt)
		if err != nil {
			log.Error("failed to build work log", "err", err)
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := repo.InsertWorkLog(ctx, record)
			return err
		})
		if err != nil {
			log.Error("failed to insert work log", "minutes", record.Minutes, "err", err)
			return noticeMsg("Failed to save work log.")
		}
		log.Debug("logged work", "minutes", record.Minutes)
		return nil
	}
}

func (m model) recordSessionCmd() tea.Cmd {
	at := m.deps.clock.Now()
	repo, tx := m.deps.repo, m.deps.tx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			_, err := repo.IncrementSessions(ctx, localUser, at)
			return err
		})
		if err != nil {
			log.Error("failed to increment completed sessions", "err", err)
		}
		return nil
	}
}

func (m model) bellCmd(a timer.Alarm) tea.Cmd {
	bell := m.deps.bell
	return func() tea.Msg {
		log.Debug("alarm", "alarm", a)
		if _, err := io.WriteString(bell, "\a"); err != nil {
			log.Error("failed to ring bell", "err", err)
		}
		return nil
	}
}

func (m model) View() string {
	if m.quitting {
		return "Good stuff!\n"
	}
	cfg := m.engine.Config()
	state := m.engine.State()

	var b strings.Builder
	title := fmt.Sprintf("Pomotimer · %s", cfg.DisplayMode)
	switch cfg.DisplayMode {
	case pomotimer.IntervalMode, pomotimer.FlowmodoroMode:
		title = fmt.Sprintf("%s · %s", title, state.Phase)
	case pomotimer.CountUpMode, pomotimer.CountdownMode:
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	display := m.engine.Display()
	switch {
	case state.Paused():
		display = pausedStyle.Render(display + " (paused)")
	case state.Phase == pomotimer.BreakPhase:
		display = breakStyle.Render(display)
	default:
		display = workStyle.Render(display)
	}
	b.WriteString(display + "\n")

	if state.Started && state.Total != timer.Unbounded {
		b.WriteString(m.progress.ViewAs(m.engine.Progress()/100) + "\n")
	}

	if cfg.DisplayMode == pomotimer.IntervalMode {
		b.WriteString("\n")
		for i, s := range cfg.Sections {
			line := fmt.Sprintf("%d. %d min work | %d min break", i+1, int(s.Work.Minutes()), int(s.Break.Minutes()))
			if state.Started && i == state.SectionIndex {
				line = currentStyle.Render(line)
			}
			b.WriteString(line + "\n")
		}
		fmt.Fprintf(&b, "Cycle: %d | %d\n", state.Cycle, cfg.TotalCycles)
	}
	if state.CompletedWorkSessions > 0 {
		fmt.Fprintf(&b, "Completed sessions: %d\n", state.CompletedWorkSessions)
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render(m.help(cfg, state)) + "\n")
	return b.String()
}

func (m model) help(cfg pomotimer.TimerConfig, state timer.RunState) string {
	if !state.Started {
		return "s start • q quit"
	}
	keys := []string{"space pause"}
	if state.Paused() {
		keys[0] = "space resume"
	}
	switch cfg.DisplayMode {
	case pomotimer.IntervalMode:
		keys = append(keys, "n skip")
	case pomotimer.FlowmodoroMode:
		if state.Phase == pomotimer.WorkPhase {
			keys = append(keys, "f finish work")
		} else {
			keys = append(keys, "n skip")
		}
	case pomotimer.CountUpMode, pomotimer.CountdownMode:
	}
	return strings.Join(append(keys, "x stop", "q quit"), " • ")
}
