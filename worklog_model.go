package pomotimer

import (
	"context"
	"fmt"
	"time"
)

type (
	WorkLogID string
	UserID    string
)

type WorkLogRecord struct {
	UserID     UserID
	Mode       DisplayMode
	Minutes    int
	FinishedAt time.Time
}

type ExistingWorkLogRecord struct {
	ExistingRecord[WorkLogID]
	WorkLogRecord
}

// NewWorkLogRecord truncates finalized work seconds to whole minutes.
func NewWorkLogRecord(userID UserID, mode DisplayMode, seconds int, finishedAt time.Time) (WorkLogRecord, error) {
	minutes := seconds / 60
	if minutes < 1 {
		return WorkLogRecord{}, fmt.Errorf("work time under a minute: %ds", seconds)
	}
	return WorkLogRecord{
		UserID:     userID,
		Mode:       mode,
		Minutes:    minutes,
		FinishedAt: finishedAt,
	}, nil
}

type SessionStatsRecord struct {
	UserID            UserID
	CompletedSessions int
	LastSessionAt     time.Time
}

type ExistingSessionStatsRecord struct {
	ExistingRecord[UserID]
	SessionStatsRecord
}

type TimerSettingsRecord struct {
	UserID UserID
	TimerConfig
}

type ExistingTimerSettingsRecord struct {
	ExistingRecord[UserID]
	TimerSettingsRecord
}

type WorkLogRepo interface {
	InsertWorkLog(context.Context, WorkLogRecord) (ExistingWorkLogRecord, error)
	GetWorkLogs(ctx context.Context, userID UserID, since time.Time) ([]ExistingWorkLogRecord, error)
	TotalMinutes(ctx context.Context, userID UserID, since time.Time) (int, error)

	IncrementSessions(ctx context.Context, userID UserID, at time.Time) (ExistingSessionStatsRecord, error)
	GetSessionStats(ctx context.Context, userID UserID) (ExistingSessionStatsRecord, error)
}

type SettingsRepo interface {
	UpsertSettings(context.Context, TimerSettingsRecord) (ExistingTimerSettingsRecord, error)
	GetSettings(ctx context.Context, userID UserID) (ExistingTimerSettingsRecord, error)
}
