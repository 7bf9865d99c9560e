package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/quickquack/internal/api/apierr"
	"github.com/mcoot/quickquack/internal/model"
	"github.com/mcoot/quickquack/internal/services/auth"
)

// SessionCookie is the cookie that may carry the session token
const SessionCookie = "qq_session"

type contextKey string

const sessionContextKey contextKey = "session"

// Auth rejects requests without a valid session
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches the session if one is presented but never rejects.
// Used on the public roster streams to tag connections with a player.
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token := extractToken(r); token != "" {
				if session, err := authService.ValidateSession(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken reads the session token from the Authorization header,
// the session cookie, or the token query parameter (browsers cannot set
// headers on EventSource or WebSocket connections)
func extractToken(r *http.Request) string {
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return token
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return r.URL.Query().Get("token")
}

// GetSession returns the session from the request context, or nil
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// GetPlayer returns the authenticated player from the request context, or nil
func GetPlayer(ctx context.Context) *model.Player {
	if session := GetSession(ctx); session != nil {
		return &session.Player
	}
	return nil
}

// GetPlayerID returns the authenticated player's id, or ""
func GetPlayerID(ctx context.Context) model.PlayerID {
	if session := GetSession(ctx); session != nil {
		return session.PlayerID
	}
	return ""
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
