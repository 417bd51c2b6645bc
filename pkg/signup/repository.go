package signup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	Store(ctx context.Context, signup Signup) (Signup, error)
	FindByEventAndUser(ctx context.Context, eventId int, userId int) (*Signup, error)
	ListByUser(ctx context.Context, userId int) ([]Signup, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) Store(ctx context.Context, signup Signup) (Signup, error) {
	query := "INSERT INTO signup (event_id, user_id, reference, amount_cents, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id"

	var id int
	err := r.db.QueryRowContext(ctx, query,
		signup.EventId, signup.UserId, signup.Reference, signup.AmountCents, signup.CreatedAt.Unix()).Scan(&id)
	if err != nil {
		// The unique constraint on (event_id, user_id) can fire when two
		// submissions race; the winner's row is the answer for both.
		existing, findErr := r.FindByEventAndUser(ctx, signup.EventId, signup.UserId)
		if findErr == nil && existing != nil {
			log.Debugf("signup for event %d by user %d already recorded", signup.EventId, signup.UserId)
			return *existing, nil
		}
		err := fmt.Errorf("could not store signup: %w", err)
		log.Error(err)
		return Signup{}, err
	}
	signup.Id = id
	return signup, nil
}

func (r *RepositoryImpl) FindByEventAndUser(ctx context.Context, eventId int, userId int) (*Signup, error) {
	query := "SELECT id, event_id, user_id, reference, amount_cents, created_at FROM signup WHERE event_id = $1 AND user_id = $2"

	signup, err := scanSignup(r.db.QueryRowContext(ctx, query, eventId, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to find signup: %w", err)
		log.Error(err)
		return nil, err
	}
	return signup, nil
}

func (r *RepositoryImpl) ListByUser(ctx context.Context, userId int) ([]Signup, error) {
	query := "SELECT id, event_id, user_id, reference, amount_cents, created_at FROM signup WHERE user_id = $1 ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("failed to list signups for user %d: %w", userId, err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var signups []Signup
	for rows.Next() {
		signup, err := scanSignup(rows)
		if err != nil {
			err := fmt.Errorf("failed to scan signup row: %w", err)
			log.Error(err)
			return nil, err
		}
		signups = append(signups, *signup)
	}
	return signups, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSignup(row rowScanner) (*Signup, error) {
	var signup Signup
	var createdAtUnix int64
	err := row.Scan(&signup.Id, &signup.EventId, &signup.UserId, &signup.Reference, &signup.AmountCents, &createdAtUnix)
	if err != nil {
		return nil, err
	}
	signup.CreatedAt = time.Unix(createdAtUnix, 0)
	return &signup, nil
}
