package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/rbarroso/acolyte-scheduler/internal/auth"
)

// AdminGuard returns a middleware enforcing Basic Auth against the
// configured Argon2id password hash. Only the password matters — the
// admin role is gated by a single shared secret. An empty hash disables
// the gate entirely, for local development only; the caller is expected
// to have logged a warning.
func AdminGuard(passwordHash string, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if passwordHash == "" {
				next.ServeHTTP(w, r)
				return
			}

			_, pass, ok := r.BasicAuth()
			match := false
			if ok {
				var err error
				match, err = auth.VerifyPassword(pass, passwordHash)
				if err != nil {
					log.Error("verify admin password", zap.Error(err))
					match = false
				}
			}

			if !match {
				log.Warn("failed admin auth attempt", zap.String("remote", r.RemoteAddr))
				w.Header().Set("WWW-Authenticate", `Basic realm="Acolyte Scheduler Admin"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
