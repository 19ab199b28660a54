package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	txStdLib "github.com/Thiht/transactor/stdlib"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/benjamonnguyen/pomotimer"
)

const (
	SelectAllWorkLogs     = "SELECT id, user_id, mode, minutes, finished_at, created_at, updated_at FROM work_logs"
	SelectAllSessionStats = "SELECT user_id, completed_sessions, last_session_at, created_at, updated_at FROM session_stats"
)

type workLogEntity struct {
	ID         string
	UserID     string
	Mode       uint8
	Minutes    int
	FinishedAt int64
	CreatedAt  int64
	UpdatedAt  int64
}

type sessionStatsEntity struct {
	UserID            string
	CompletedSessions int
	LastSessionAt     int64
	CreatedAt         int64
	UpdatedAt         int64
}

// workLogRepo
type workLogRepo struct {
	dbGetter txStdLib.DBGetter
	l        log.Logger
}

func NewWorkLogRepo(dbGetter txStdLib.DBGetter, logger log.Logger) *workLogRepo {
	return &workLogRepo{
		dbGetter: dbGetter,
		l:        logger,
	}
}

func (r *workLogRepo) InsertWorkLog(ctx context.Context, record pomotimer.WorkLogRecord) (pomotimer.ExistingWorkLogRecord, error) {
	if record.UserID == "" {
		return pomotimer.ExistingWorkLogRecord{}, fmt.Errorf("provide required field 'UserID'")
	}
	if record.Minutes < 1 {
		return pomotimer.ExistingWorkLogRecord{}, fmt.Errorf("provide at least one minute of work")
	}

	db := r.dbGetter(ctx)
	existingRecord := pomotimer.ExistingWorkLogRecord{
		WorkLogRecord:  record,
		ExistingRecord: pomotimer.NewExistingRecord(pomotimer.WorkLogID(uuid.NewString()), time.Now()),
	}
	e := mapToWorkLogEntity(existingRecord)

	args := []any{
		e.ID,
		e.UserID,
		e.Mode,
		e.Minutes,
		e.FinishedAt,
		e.CreatedAt,
		e.UpdatedAt,
	}
	query := "INSERT INTO work_logs (id, user_id, mode, minutes, finished_at, created_at, updated_at) VALUES " + GenerateParameters(len(args))
	r.l.Debug("creating work log", "query", query, "args", args)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return pomotimer.ExistingWorkLogRecord{}, err
	}

	return existingRecord, nil
}

func (r *workLogRepo) GetWorkLogs(ctx context.Context, userID pomotimer.UserID, since time.Time) ([]pomotimer.ExistingWorkLogRecord, error) {
	if userID == "" {
		return nil, fmt.Errorf("provide userID")
	}

	db := r.dbGetter(ctx)
	query := fmt.Sprintf("%s WHERE user_id = ? AND finished_at >= ? ORDER BY finished_at DESC", SelectAllWorkLogs)
	r.l.Debug("getting work logs", "query", query, "userID", userID, "since", since)
	rows, err := db.QueryContext(ctx, query, string(userID), since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint

	var logs []pomotimer.ExistingWorkLogRecord
	for rows.Next() {
		record, err := extractWorkLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *workLogRepo) TotalMinutes(ctx context.Context, userID pomotimer.UserID, since time.Time) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("provide userID")
	}

	db := r.dbGetter(ctx)
	var total int
	err := db.QueryRowContext(
		ctx,
		"SELECT COALESCE(SUM(minutes), 0) FROM work_logs WHERE user_id = ? AND finished_at >= ?",
		string(userID), since.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *workLogRepo) IncrementSessions(ctx context.Context, userID pomotimer.UserID, at time.Time) (pomotimer.ExistingSessionStatsRecord, error) {
	if userID == "" {
		return pomotimer.ExistingSessionStatsRecord{}, fmt.Errorf("provide userID")
	}

	db := r.dbGetter(ctx)
	now := time.Now().Unix()
	query := `INSERT INTO session_stats (user_id, completed_sessions, last_session_at, created_at, updated_at) VALUES (?, 1, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET completed_sessions = completed_sessions + 1, last_session_at = excluded.last_session_at, updated_at = excluded.updated_at`
	args := []any{string(userID), at.Unix(), now, now}
	r.l.Debug("incrementing completed sessions", "query", query, "args", args)
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return pomotimer.ExistingSessionStatsRecord{}, err
	}

	return r.GetSessionStats(ctx, userID)
}

func (r *workLogRepo) GetSessionStats(ctx context.Context, userID pomotimer.UserID) (pomotimer.ExistingSessionStatsRecord, error) {
	if userID == "" {
		return pomotimer.ExistingSessionStatsRecord{}, fmt.Errorf("provide userID")
	}

	db := r.dbGetter(ctx)
	row := db.QueryRowContext(
		ctx,
		fmt.Sprintf("%s WHERE user_id=?", SelectAllSessionStats), string(userID),
	)

	var e sessionStatsEntity
	if err := row.Scan(&e.UserID, &e.CompletedSessions, &e.LastSessionAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomotimer.ExistingSessionStatsRecord{}, ErrNotFound
		}
		return pomotimer.ExistingSessionStatsRecord{}, err
	}
	return mapToExistingSessionStatsRecord(e), nil
}

func extractWorkLog(s Scannable) (pomotimer.ExistingWorkLogRecord, error) {
	var e workLogEntity
	if err := s.Scan(&e.ID, &e.UserID, &e.Mode, &e.Minutes, &e.FinishedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pomotimer.ExistingWorkLogRecord{}, ErrNotFound
		}
		return pomotimer.ExistingWorkLogRecord{}, err
	}

	return mapToExistingWorkLogRecord(e), nil
}

func mapToWorkLogEntity(record pomotimer.ExistingWorkLogRecord) workLogEntity {
	return workLogEntity{
		ID:         string(record.ID),
		UserID:     string(record.UserID),
		Mode:       uint8(record.Mode),
		Minutes:    record.Minutes,
		FinishedAt: record.FinishedAt.Unix(),
		CreatedAt:  record.CreatedAt.Unix(),
		UpdatedAt:  record.UpdatedAt.Unix(),
	}
}

func mapToExistingWorkLogRecord(e workLogEntity) pomotimer.ExistingWorkLogRecord {
	return pomotimer.ExistingWorkLogRecord{
		ExistingRecord: pomotimer.ExistingRecord[pomotimer.WorkLogID]{
			ID:        pomotimer.WorkLogID(e.ID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		WorkLogRecord: pomotimer.WorkLogRecord{
			UserID:     pomotimer.UserID(e.UserID),
			Mode:       pomotimer.DisplayMode(e.Mode),
			Minutes:    e.Minutes,
			FinishedAt: time.Unix(e.FinishedAt, 0),
		},
	}
}

func mapToExistingSessionStatsRecord(e sessionStatsEntity) pomotimer.ExistingSessionStatsRecord {
	return pomotimer.ExistingSessionStatsRecord{
		ExistingRecord: pomotimer.ExistingRecord[pomotimer.UserID]{
			ID:        pomotimer.UserID(e.UserID),
			CreatedAt: time.Unix(e.CreatedAt, 0),
			UpdatedAt: time.Unix(e.UpdatedAt, 0),
		},
		SessionStatsRecord: pomotimer.SessionStatsRecord{
			UserID:            pomotimer.UserID(e.UserID),
			CompletedSessions: e.CompletedSessions,
			LastSessionAt:     time.Unix(e.LastSessionAt, 0),
		},
	}
}
