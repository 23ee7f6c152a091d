package userstack

import (
	"log/slog"
	"net/http"

	"github.com/userstack/userstack-go/pkg/api"
	"github.com/userstack/userstack-go/pkg/session"
)

// SessionHeader carries the session id a client presents to a trusted
// backend for verification.
const SessionHeader = "X-Userstack-Session"

// VerifyMiddleware validates client-presented sessions against the
// privileged /verify endpoint and injects the verified record into the
// request context. Requires a client configured with an API key;
// requests without a valid session are rejected with 401.
//
//	r := chi.NewRouter()
//	r.Use(userstack.VerifyMiddleware(client, log))
func VerifyMiddleware(client *api.Client, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get(SessionHeader)
			if sessionID == "" {
				http.Error(w, "missing session", http.StatusUnauthorized)
				return
			}

			rec, err := client.Verify(r.Context(), sessionID)
			if err != nil {
				log.WarnContext(r.Context(), "session verification failed",
					"session_id", sessionID, "error", err)
				http.Error(w, "invalid session", http.StatusUnauthorized)
				return
			}

			ctx := session.WithRecord(r.Context(), rec)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTier builds on VerifyMiddleware: it rejects verified sessions
// whose tier is not in the allowed set with 403. Mount after
// VerifyMiddleware.
func RequireTier(tiers ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(tiers))
	for _, tier := range tiers {
		allowed[tier] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec, ok := session.RecordFromContext(r.Context())
			if !ok {
				http.Error(w, "missing session", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[rec.Tier]; !ok {
				http.Error(w, "insufficient plan", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
