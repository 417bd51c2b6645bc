package app

import (
	"net/http"
	"strings"

	"github.com/gatherly/gatherly/internal/config"
	"github.com/gatherly/gatherly/pkg/user"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Resolve the bearer token into a user and put it on the context.
	// Requests without a token pass through anonymously; handlers that need
	// a user reject them individually.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			authorization := req.Header.Get("Authorization")
			ctx := req.Context()

			if token, found := strings.CutPrefix(authorization, "Bearer "); found {
				claims, err := deps.AuthTokenValidator.Validate(token)
				if err != nil {
					log.Debugf("rejected bearer token: %v", err)
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				u, err := deps.UserService.EnsureUser(ctx, claims.Subject, claims.Name, claims.Email)
				if err != nil {
					log.Errorf("failed to resolve user %s: %v", claims.Subject, err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				ctx = user.WithUser(ctx, u)
			}

			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}
