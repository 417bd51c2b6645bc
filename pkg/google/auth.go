package google

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// ErrCalendarNotLinked signals that the user has not connected a Google
// Calendar account yet. The join flow routes this to its connect step.
var ErrCalendarNotLinked = errors.New("google calendar account is not linked")

// Auth manages per-user Google OAuth tokens.
type Auth struct {
	db          *sql.DB
	oauthConfig *oauth2.Config
}

func NewAuth(db *sql.DB, cfg config.Application) *Auth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/auth/google/callback",
		Scopes:       []string{calendar.CalendarEventsScope},
	}

	return &Auth{db: db, oauthConfig: oauthConfig}
}

// AuthURL prepares a fresh authorization URL for the current user. The state
// carries the URL to return the browser to plus a stored nonce that ties the
// callback to this user.
func (a *Auth) AuthURL(ctx context.Context, finalUrl string) (string, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current user: %w", err)
	}

	if _, err := a.db.ExecContext(ctx, "DELETE FROM google_calendar_auth WHERE user_id = $1", userId); err != nil {
		err := fmt.Errorf("failed to delete old Google auth row for user %d: %w", userId, err)
		log.Error(err)
		return "", err
	}

	stateNonce := uuid.New().String()
	_, err = a.db.ExecContext(ctx, "INSERT INTO google_calendar_auth (user_id, nonce) VALUES ($1, $2)", userId, stateNonce)
	if err != nil {
		err := fmt.Errorf("failed to store Google auth nonce for user %d: %w", userId, err)
		log.Error(err)
		return "", err
	}

	log.Tracef("Prepared Google auth URL with nonce: %s", stateNonce)
	return a.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// StoreToken exchanges an authorization code and persists the token for the
// user identified by the state nonce.
func (a *Auth) StoreToken(ctx context.Context, code string, nonce string) error {
	token, err := a.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("unable to exchange code for token: %w", err)
	}

	result, err := a.db.ExecContext(ctx, "UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4",
		token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		return fmt.Errorf("unable to store Google auth token for nonce: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no pending Google auth for nonce")
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	return nil
}

// Unlink removes the user's stored Google token.
func (a *Auth) Unlink(ctx context.Context) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := a.db.ExecContext(ctx, "DELETE FROM google_calendar_auth WHERE user_id = $1", userId); err != nil {
		err := fmt.Errorf("failed to delete Google auth row for user %d: %w", userId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (a *Auth) getToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	var token oauth2.Token
	var accessToken, refreshToken sql.NullString
	var expiryTimestamp sql.NullInt64
	err := a.db.QueryRowContext(ctx, "SELECT access_token, refresh_token, expiry FROM google_calendar_auth WHERE user_id = $1", userId).
		Scan(&accessToken, &refreshToken, &expiryTimestamp)
	if err != nil && errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}

	if !accessToken.Valid || accessToken.String == "" {
		// A nonce row without a token means the OAuth round trip never finished.
		return nil, nil
	}
	token.AccessToken = accessToken.String
	token.RefreshToken = refreshToken.String
	token.Expiry = time.Unix(expiryTimestamp.Int64, 0)
	return &token, nil
}

// getClient returns an authenticated HTTP client for the user, or nil when no
// calendar account is linked.
func (a *Auth) getClient(ctx context.Context, userId int) (*http.Client, error) {
	token, err := a.getToken(ctx, userId)
	if err != nil {
		log.Error(err)
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return a.oauthConfig.Client(context.Background(), token), nil
}
