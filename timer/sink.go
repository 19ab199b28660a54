package timer

type Alarm uint8

const (
	_ Alarm = iota
	WorkAlarm
	BreakAlarm
	FinishedAlarm
)

func (a Alarm) String() string {
	switch a {
	case WorkAlarm:
		return "work"
	case BreakAlarm:
		return "break"
	case FinishedAlarm:
		return "finished"
	default:
		return "unknown"
	}
}

// Sink receives the engine's outbound signals. Calls are made synchronously from
// inside engine operations and must not call back into the engine.
type Sink interface {
	// WorkTimeFinalized receives whole seconds of finished work, always >= 60.
	WorkTimeFinalized(seconds int)
	// SessionRecorded fires once per work phase credited with at least a minute.
	SessionRecorded(seconds int)
	// NotifyUser is paired 1:1 with WorkTimeFinalized.
	NotifyUser(seconds int)
	PlayAlarm(a Alarm, volume float64)
}

// SinkFuncs adapts optional funcs to Sink. Nil funcs are skipped.
type SinkFuncs struct {
	OnWorkTimeFinalized func(seconds int)
	OnSessionRecorded   func(seconds int)
	OnNotifyUser        func(seconds int)
	OnPlayAlarm         func(a Alarm, volume float64)
}

func (f SinkFuncs) WorkTimeFinalized(seconds int) {
	if f.OnWorkTimeFinalized != nil {
		f.OnWorkTimeFinalized(seconds)
	}
}

func (f SinkFuncs) SessionRecorded(seconds int) {
	if f.OnSessionRecorded != nil {
		f.OnSessionRecorded(seconds)
	}
}

func (f SinkFuncs) NotifyUser(seconds int) {
	if f.OnNotifyUser != nil {
		f.OnNotifyUser(seconds)
	}
}

func (f SinkFuncs) PlayAlarm(a Alarm, volume float64) {
	if f.OnPlayAlarm != nil {
		f.OnPlayAlarm(a, volume)
	}
}
