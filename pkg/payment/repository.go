package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

type Repository interface {
	StoreIntent(ctx context.Context, intent Intent) (Intent, error)
	FindByIntentId(ctx context.Context, intentId string) (*Intent, error)
}

type RepositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreIntent(ctx context.Context, intent Intent) (Intent, error) {
	query := "INSERT INTO payment_intent (intent_id, event_id, user_id, amount_cents, currency, created_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id"

	var id int
	err := r.db.QueryRowContext(ctx, query,
		intent.IntentId, intent.EventId, intent.UserId, intent.AmountCents, intent.Currency, intent.CreatedAt.Unix()).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store payment intent: %w", err)
		log.Error(err)
		return Intent{}, err
	}
	intent.Id = id
	return intent, nil
}

func (r *RepositoryImpl) FindByIntentId(ctx context.Context, intentId string) (*Intent, error) {
	query := "SELECT id, intent_id, event_id, user_id, amount_cents, currency, created_at FROM payment_intent WHERE intent_id = $1"

	var intent Intent
	var createdAtUnix int64
	err := r.db.QueryRowContext(ctx, query, intentId).
		Scan(&intent.Id, &intent.IntentId, &intent.EventId, &intent.UserId, &intent.AmountCents, &intent.Currency, &createdAtUnix)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to find payment intent: %w", err)
		log.Error(err)
		return nil, err
	}
	intent.CreatedAt = time.Unix(createdAtUnix, 0)
	return &intent, nil
}
