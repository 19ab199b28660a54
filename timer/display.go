package timer

import (
	"fmt"
	"time"

	"github.com/benjamonnguyen/pomotimer"
)

// FormatClock renders whole seconds as MM:SS. Minutes are not rolled into hours.
func FormatClock(d time.Duration) string {
	secs := wholeSeconds(d)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// DisplayValue is the clock text for the given settings and state. cfg is the
// run's settings once started, the configured settings otherwise.
func DisplayValue(cfg pomotimer.TimerConfig, s RunState) string {
	switch cfg.DisplayMode {
	case pomotimer.CountUpMode:
		return FormatClock(s.Elapsed)
	case pomotimer.CountdownMode:
		if !s.Started {
			return FormatClock(cfg.Countdown)
		}
		return FormatClock(s.Remaining())
	case pomotimer.IntervalMode:
		if !s.Started {
			if len(cfg.Sections) == 0 {
				return FormatClock(0)
			}
			return FormatClock(cfg.Sections[0].Work)
		}
		return FormatClock(s.Remaining())
	case pomotimer.FlowmodoroMode:
		if s.Phase == pomotimer.WorkPhase {
			return FormatClock(s.Elapsed)
		}
		return FormatClock(s.Remaining())
	default:
		return FormatClock(0)
	}
}

// ProgressPercent is the 0-100 fill of a progress indicator.
func ProgressPercent(cfg pomotimer.TimerConfig, s RunState) float64 {
	switch cfg.DisplayMode {
	case pomotimer.CountUpMode:
		return 0
	case pomotimer.FlowmodoroMode:
		if s.Phase == pomotimer.WorkPhase {
			return 0
		}
	case pomotimer.CountdownMode, pomotimer.IntervalMode:
	}
	if s.Total == Unbounded || s.Total <= 0 {
		return 0
	}
	ratio := float64(s.Elapsed) / float64(s.Total)
	return min(max(ratio, 0), 1) * 100
}
