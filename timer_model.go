package pomotimer

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type DisplayMode uint8

const (
	_ DisplayMode = iota
	CountUpMode
	CountdownMode
	IntervalMode
	FlowmodoroMode
)

func (m DisplayMode) String() string {
	switch m {
	case CountUpMode:
		return "Count Up"
	case CountdownMode:
		return "Countdown"
	case IntervalMode:
		return "Interval"
	case FlowmodoroMode:
		return "Flowmodoro"
	default:
		return "Unknown"
	}
}

// Key is the stable name used in commands, flags and settings files.
func (m DisplayMode) Key() string {
	switch m {
	case CountUpMode:
		return "countup"
	case CountdownMode:
		return "countdown"
	case IntervalMode:
		return "interval"
	case FlowmodoroMode:
		return "flowmodoro"
	default:
		return ""
	}
}

func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "countup", "count_up", "stopwatch":
		return CountUpMode, nil
	case "countdown":
		return CountdownMode, nil
	case "interval", "pomodoro":
		return IntervalMode, nil
	case "flowmodoro", "flow":
		return FlowmodoroMode, nil
	default:
		return 0, fmt.Errorf("unknown display mode %q", s)
	}
}

type Phase uint8

const (
	WorkPhase Phase = iota
	BreakPhase
)

func (p Phase) String() string {
	switch p {
	case WorkPhase:
		return "Work"
	case BreakPhase:
		return "Break"
	default:
		panic("no matching enum for Phase: " + strconv.Itoa(int(p)))
	}
}

// Section is one work+break pair. An ordered list of sections forms a cycle.
type Section struct {
	ID    int
	Work  time.Duration
	Break time.Duration
}

type TimerConfig struct {
	DisplayMode DisplayMode
	Sections    []Section
	TotalCycles int
	Countdown   time.Duration
	AlarmVolume float64
}

func DefaultTimerConfig() TimerConfig {
	return TimerConfig{
		DisplayMode: IntervalMode,
		Sections: []Section{
			{ID: 1, Work: 25 * time.Minute, Break: 5 * time.Minute},
			{ID: 2, Work: 25 * time.Minute, Break: 5 * time.Minute},
			{ID: 3, Work: 25 * time.Minute, Break: 5 * time.Minute},
			{ID: 4, Work: 25 * time.Minute, Break: 15 * time.Minute},
		},
		TotalCycles: 1,
		Countdown:   25 * time.Minute,
		AlarmVolume: 0.5,
	}
}

func (c TimerConfig) Validate() error {
	switch c.DisplayMode {
	case CountUpMode, CountdownMode, IntervalMode, FlowmodoroMode:
	default:
		return fmt.Errorf("invalid display mode: %d", c.DisplayMode)
	}
	if c.TotalCycles < 1 {
		return fmt.Errorf("total cycles must be at least 1, got %d", c.TotalCycles)
	}
	if c.Countdown < time.Minute {
		return fmt.Errorf("countdown must be at least 1 minute, got %s", c.Countdown)
	}
	if c.AlarmVolume < 0 || c.AlarmVolume > 1 {
		return fmt.Errorf("alarm volume must be within [0, 1], got %v", c.AlarmVolume)
	}
	if len(c.Sections) == 0 {
		return fmt.Errorf("provide at least one section")
	}
	for i, s := range c.Sections {
		if s.Work < 0 || s.Break < 0 {
			return fmt.Errorf("section %d has negative duration", i+1)
		}
	}
	return nil
}

// Clone returns a copy that does not share the section slice.
func (c TimerConfig) Clone() TimerConfig {
	c.Sections = append([]Section(nil), c.Sections...)
	return c
}

// ParseSections parses the "work/break" minute pairs form, e.g. "25/5,50/10".
// A bare number is a section without a break.
func ParseSections(s string) ([]Section, error) {
	var sections []Section
	for i, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		workStr, breakStr, hasBreak := strings.Cut(part, "/")
		work, err := strconv.Atoi(strings.TrimSpace(workStr))
		if err != nil || work < 0 {
			return nil, fmt.Errorf("invalid work minutes in section %q", part)
		}
		var brk int
		if hasBreak {
			brk, err = strconv.Atoi(strings.TrimSpace(breakStr))
			if err != nil || brk < 0 {
				return nil, fmt.Errorf("invalid break minutes in section %q", part)
			}
		}
		sections = append(sections, Section{
			ID:    i + 1,
			Work:  time.Duration(work) * time.Minute,
			Break: time.Duration(brk) * time.Minute,
		})
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("provide at least one section")
	}
	return sections, nil
}

func FormatSections(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, fmt.Sprintf("%d/%d", int(s.Work.Minutes()), int(s.Break.Minutes())))
	}
	return strings.Join(parts, ",")
}
