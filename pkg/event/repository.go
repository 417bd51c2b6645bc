package event

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int) (*Event, error)
	ListEvents(ctx context.Context) ([]Event, error)
	UpdateEvent(ctx context.Context, event Event) error
	DeleteEvent(ctx context.Context, id int) error
	RefreshAttendeeCount(ctx context.Context, id int) error
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO event
		(title, description, location, start_time, end_time, is_paid, price, currency, pay_what_you_feel, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int
	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Location,
		event.StartTime.Unix(), event.EndTime.Unix(),
		event.IsPaid, event.Price, event.Currency, event.PayWhatYouFeel, event.CreatedBy).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	event.Id = id

	return event, nil
}

func (r *RepositoryImpl) GetEvent(ctx context.Context, id int) (*Event, error) {
	query := `SELECT id, title, description, location, start_time, end_time,
		is_paid, price, currency, pay_what_you_feel, created_by, attendees
		FROM event WHERE id = $1`

	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to get event %d: %w", id, err)
		log.Error(err)
		return nil, err
	}
	return event, nil
}

func (r *RepositoryImpl) ListEvents(ctx context.Context) ([]Event, error) {
	query := `SELECT id, title, description, location, start_time, end_time,
		is_paid, price, currency, pay_what_you_feel, created_by, attendees
		FROM event ORDER BY start_time`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		err := fmt.Errorf("failed to list events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("failed to scan event row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

func (r *RepositoryImpl) UpdateEvent(ctx context.Context, event Event) error {
	query := `UPDATE event SET title = $1, description = $2, location = $3,
		start_time = $4, end_time = $5, is_paid = $6, price = $7, currency = $8, pay_what_you_feel = $9
		WHERE id = $10`

	_, err := r.db.ExecContext(ctx, query,
		event.Title, event.Description, event.Location,
		event.StartTime.Unix(), event.EndTime.Unix(),
		event.IsPaid, event.Price, event.Currency, event.PayWhatYouFeel, event.Id)
	if err != nil {
		err := fmt.Errorf("could not update event %d: %w", event.Id, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) DeleteEvent(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM event WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not delete event %d: %w", id, err)
		log.Error(err)
		return err
	}
	return nil
}

// RefreshAttendeeCount recounts confirmed signups for the event.
func (r *RepositoryImpl) RefreshAttendeeCount(ctx context.Context, id int) error {
	query := "UPDATE event SET attendees = (SELECT COUNT(*) FROM signup WHERE event_id = $1) WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		err := fmt.Errorf("could not refresh attendee count for event %d: %w", id, err)
		log.Error(err)
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*Event, error) {
	var event Event
	var startTimeUnix, endTimeUnix int64
	var price sql.NullFloat64
	err := row.Scan(&event.Id, &event.Title, &event.Description, &event.Location,
		&startTimeUnix, &endTimeUnix, &event.IsPaid, &price, &event.Currency,
		&event.PayWhatYouFeel, &event.CreatedBy, &event.Attendees)
	if err != nil {
		return nil, err
	}
	event.StartTime = time.Unix(startTimeUnix, 0)
	event.EndTime = time.Unix(endTimeUnix, 0)
	if price.Valid {
		event.Price = &price.Float64
	}
	return &event, nil
}
