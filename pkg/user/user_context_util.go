package user

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const UserKey contextKey = "user"

// ErrNoUser signals that the request carries no authenticated user.
var ErrNoUser = errors.New("no user in context")

// CurrentId returns the id of the user attached to the context, or ErrNoUser
// for anonymous requests.
func CurrentId(ctx context.Context) (int, error) {
	current, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("no user attached to request context")
		return 0, ErrNoUser
	}
	return current.Id, nil
}

// CurrentUser returns the full user attached to the context.
func CurrentUser(ctx context.Context) (User, error) {
	current, ok := ctx.Value(UserKey).(User)
	if !ok {
		log.Trace("no user attached to request context")
		return User{}, ErrNoUser
	}
	return current, nil
}

// WithUser attaches the authenticated user to the request context.
func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}
