package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Thiht/transactor"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
	"github.com/benjamonnguyen/pomotimer/timer"
)

var defaultSinkTimeout = 10 * time.Second

type botSinkDeps struct {
	repo          pomotimer.WorkLogRepo
	tx            transactor.Transactor
	notify        func(cID pomotimer.TextChannelID, content string) error
	loadOpusAudio func(timer.Alarm) [][]byte
	sendOpusAudio func(context.Context, [][]byte, string, pomotimer.VoiceChannelID) error
	now           func() time.Time
	timeout       time.Duration
}

// botSink fans timer signals out to persistence, channel messages and voice
// alarms. Every call runs on its own goroutine so timers never wait on I/O.
type botSink struct {
	deps botSinkDeps
	ctx  context.Context
	wg   sync.WaitGroup
}

func newBotSink(ctx context.Context, deps botSinkDeps) *botSink {
	if deps.now == nil {
		deps.now = time.Now
	}
	if deps.timeout <= 0 {
		deps.timeout = defaultSinkTimeout
	}
	return &botSink{
		deps: deps,
		ctx:  context.WithoutCancel(ctx),
	}
}

// ForTimer returns the sink for one channel timer.
func (b *botSink) ForTimer(t Timer) timer.Sink {
	return timerSink{b: b, t: t, mode: t.View.Config.DisplayMode}
}

// Wait blocks until in-flight sink calls are done.
func (b *botSink) Wait() {
	b.wg.Wait()
}

func (b *botSink) recordWork(t Timer, mode pomotimer.DisplayMode, seconds int) {
	finishedAt := b.deps.now()
	b.wg.Go(func() {
		record, err := pomotimer.NewWorkLogRecord(t.UserID, mode, seconds, finishedAt)
		if err != nil {
			log.Error("failed to build work log", "uid", t.UserID, "cid", t.TextCID, "err", err)
			return
		}
		timeout, cancel := context.WithTimeout(b.ctx, b.deps.timeout)
		defer cancel()
		err = b.deps.tx.WithinTransaction(timeout, func(ctx context.Context) error {
			_, err := b.deps.repo.InsertWorkLog(ctx, record)
			return err
		})
		if err != nil {
			log.Error("failed to insert work log", "uid", t.UserID, "cid", t.TextCID, "minutes", record.Minutes, "err", err)
			return
		}
		log.Debug("logged work", "uid", t.UserID, "minutes", record.Minutes)
	})
}

func (b *botSink) recordSession(t Timer) {
	at := b.deps.now()
	b.wg.Go(func() {
		timeout, cancel := context.WithTimeout(b.ctx, b.deps.timeout)
		defer cancel()
		err := b.deps.tx.WithinTransaction(timeout, func(ctx context.Context) error {
			_, err := b.deps.repo.IncrementSessions(ctx, t.UserID, at)
			return err
		})
		if err != nil {
			log.Error("failed to increment completed sessions", "uid", t.UserID, "cid", t.TextCID, "err", err)
		}
	})
}

func (b *botSink) notifyUser(t Timer, seconds int) {
	if b.deps.notify == nil {
		return
	}
	content := fmt.Sprintf("<@%s> logged %d min of focus time.", t.UserID, seconds/60)
	b.wg.Go(func() {
		if err := b.deps.notify(t.TextCID, content); err != nil {
			log.Error("failed to notify user", "uid", t.UserID, "cid", t.TextCID, "err", err)
		}
	})
}

func (b *botSink) playAlarm(t Timer, a timer.Alarm, volume float64) {
	if volume <= 0 || t.VoiceCID == "" || b.deps.loadOpusAudio == nil || b.deps.sendOpusAudio == nil {
		return
	}
	data := b.deps.loadOpusAudio(a)
	if data == nil {
		log.Debug("no audio for alarm", "alarm", a)
		return
	}
	b.wg.Go(func() {
		timeout, cancel := context.WithTimeout(b.ctx, b.deps.timeout)
		defer cancel()
		if err := b.deps.sendOpusAudio(timeout, data, t.GuildID, t.VoiceCID); err != nil {
			log.Error("failed to play alarm", "alarm", a, "guildID", t.GuildID, "channelID", t.VoiceCID, "err", err)
		}
	})
}

type timerSink struct {
	b    *botSink
	t    Timer
	mode pomotimer.DisplayMode
}

func (s timerSink) WorkTimeFinalized(seconds int) {
	s.b.recordWork(s.t, s.mode, seconds)
}

func (s timerSink) SessionRecorded(int) {
	s.b.recordSession(s.t)
}

func (s timerSink) NotifyUser(seconds int) {
	s.b.notifyUser(s.t, seconds)
}

func (s timerSink) PlayAlarm(a timer.Alarm, volume float64) {
	s.b.playAlarm(s.t, a, volume)
}
