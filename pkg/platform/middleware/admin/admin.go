// Package admin authenticates admin API callers by bearer token.
package admin

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "caregate/pkg/domain-errors"
	"caregate/pkg/platform/httputil"
	"caregate/pkg/platform/middleware/metadata"
	"caregate/pkg/requestcontext"
)

// ActorValidator validates a raw token and returns the admin identity in it.
type ActorValidator interface {
	ActorID(token string) (string, error)
}

// RequireAdmin rejects requests without a valid admin bearer token and puts
// the admin identity on the context as the acting actor.
func RequireAdmin(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "admin request without bearer token",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", metadata.ClientIPFromRequest(r),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "admin token required"))
				return
			}

			actor, err := validator.ActorID(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", metadata.ClientIPFromRequest(r),
					"error", err,
				)
				if !dErrors.HasCode(err, dErrors.CodeForbidden) {
					err = dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
				}
				httputil.WriteError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActorID(ctx, actor)))
		})
	}
}
