package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"

	"github.com/benjamonnguyen/pomotimer"
)

const SelectAllSettings = "SELECT user_id, display_mode, sections, total_cycles, countdown_seconds, alarm_volume, created_at, updated_at FROM timer_settings"

type timerSettingsEntity struct {
	UserID           string
	DisplayMode      uint8
	Sections         string
	TotalCycles      int
	CountdownSeconds int
	AlarmVolume      float64
	CreatedAt        int64
	UpdatedAt        int64
}

type settingsRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewSettingsRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *settingsRepo {
	return &settingsRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *settingsRepo) UpsertSettings(ctx context.Context, settings pomotimer.TimerSettingsRecord) (pomotimer.ExistingTimerSettingsRecord, error) {
	if settings.UserID == "" {
		return pomotimer.ExistingTimerSettingsRecord{}, fmt.Errorf("provide required field 'UserID'")
	}
	if err := settings.Validate(); err != nil {
		return pomotimer.ExistingTimerSettingsRecord{}, fmt.Errorf("invalid settings: %w", err)
	}

	db := r.dbGetter(ctx)
	existingRecord := pomotimer.ExistingTimerSettingsRecord{
		TimerSettingsRecord: settings,
		ExistingRecord:      pomotimer.NewExistingRecord(settings.UserID, time.Now()),
	}
	if existing, err := r.GetSettings(ctx, settings.UserID); err == nil {
		existingRecord.ExistingRecord = existing.Touch(time.Now())
	} else if !errors.Is(err, ErrNotFound) {
		return pomotimer.ExistingTimerSettingsRecord{}, err
	}
	e := mapToTimerSettingsEntity(existingRecord)

	args := []any{
		e.UserID,
		e.DisplayMode,
		e.Sections,
		e.TotalCycles,
		e.CountdownSeconds,
		e.AlarmVolume,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT OR REPLACE INTO timer_settings (user_id, display_mode, sections, total_cycles, countdown_seconds, alarm_volume, created_at, updated_at) VALUES " + GenerateParameters(len(args))
	r.l.Debug("upserting timer settings", "query", query, "args", args)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return pomotimer.ExistingTimerSettingsRecord{}, err
	}

	return existingRecord, nil
}

func (r *settingsRepo) GetSettings(ctx context.Context, userID pomotimer.UserID) (pomotimer.ExistingTimerSettingsRecord, error) {
	if userID == "" {
		return pomotimer.ExistingTimerSettingsRecord{}, fmt.Errorf("provide userID")
	}

	db := r.dbGetter(ctx)
	row := db.QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE user_id=?", SelectAllSettings), string(userID),
	)

	return extractTimerSettings(row)
}

func extractTimerSettings(s Scannable) (pomotimer.ExistingTimerSettingsRecord, error) {
	var e timerSettingsEntity
	if err := s.Scan(&e.UserID, &e.DisplayMode, &e.Sections, &e.TotalCycles, &e.CountdownSeconds, &e.AlarmVolume, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomotimer.ExistingTimerSettingsRecord{}, ErrNotFound
		}
		return pomotimer.ExistingTimerSettingsRecord{}, err
	}

	return mapToExistingTimerSettingsRecord(e)
}

func mapToTimerSettingsEntity(settings pomotimer.ExistingTimerSettingsRecord) timerSettingsEntity {
	return timerSettingsEntity{
		UserID:           string(settings.UserID),
		DisplayMode:      uint8(settings.DisplayMode),
		Sections:         pomotimer.FormatSections(settings.Sections),
		TotalCycles:      settings.TotalCycles,
		CountdownSeconds: int(settings.Countdown.Seconds()),
		AlarmVolume:      settings.AlarmVolume,
		CreatedAt:        settings.CreatedAt.Unix(),
		UpdatedAt:        settings.UpdatedAt.Unix(),
	}
}

func mapToExistingTimerSettingsRecord(e timerSettingsEntity) (pomotimer.ExistingTimerSettingsRecord, error) {
	sections, err := pomotimer.ParseSections(e.Sections)
	if err != nil {
		return pomotimer.ExistingTimerSettingsRecord{}, fmt.Errorf("failed to parse stored sections: %w", err)
	}
	return pomotimer.ExistingTimerSettingsRecord{
		ExistingRecord: pomotimer.ExistingRecord[pomotimer.UserID]{
			ID:        pomotimer.UserID(e.UserID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		TimerSettingsRecord: pomotimer.TimerSettingsRecord{
			UserID: pomotimer.UserID(e.UserID),
			TimerConfig: pomotimer.TimerConfig{
				DisplayMode: pomotimer.DisplayMode(e.DisplayMode),
				Sections:    sections,
				TotalCycles: e.TotalCycles,
				Countdown:   time.Duration(e.CountdownSeconds) * time.Second,
				AlarmVolume: e.AlarmVolume,
			},
		},
	}, nil
}
