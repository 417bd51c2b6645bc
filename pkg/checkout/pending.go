package checkout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// PendingRepository persists the calendar hand-off in the database so it
// survives the OAuth redirect round trip.
type PendingRepository struct {
	db *sql.DB
}

func NewPendingRepository(db *sql.DB) *PendingRepository {
	return &PendingRepository{db: db}
}

func (r *PendingRepository) Set(ctx context.Context, userId int, eventId int) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM pending_calendar_event WHERE user_id = $1", userId)
	if err != nil {
		log.Error(err)
		return fmt.Errorf("clearing previous pending calendar event: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO pending_calendar_event (user_id, event_id, created_at) VALUES ($1, $2, $3)",
		userId, eventId, time.Now().Unix())
	if err != nil {
		log.Error(err)
		return fmt.Errorf("storing pending calendar event: %w", err)
	}
	return nil
}

func (r *PendingRepository) Get(ctx context.Context, userId int) (int, bool, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT event_id FROM pending_calendar_event WHERE user_id = $1", userId)
	var eventId int
	err := row.Scan(&eventId)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		log.Error(err)
		return 0, false, fmt.Errorf("reading pending calendar event: %w", err)
	}
	return eventId, true, nil
}

func (r *PendingRepository) Clear(ctx context.Context, userId int) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM pending_calendar_event WHERE user_id = $1", userId)
	if err != nil {
		log.Error(err)
		return fmt.Errorf("clearing pending calendar event: %w", err)
	}
	return nil
}

// DeleteOlderThan removes hand-offs that were never consumed, e.g. when the
// user abandoned the OAuth flow. Returns the number of removed rows.
func (r *PendingRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM pending_calendar_event WHERE created_at < $1", cutoff.Unix())
	if err != nil {
		log.Error(err)
		return 0, fmt.Errorf("pruning pending calendar events: %w", err)
	}
	return result.RowsAffected()
}
