package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/response"
)

// RequireSubscription пропускает только пользователей с активной платной
// подпиской. Ставится после JWTMiddleware.
func RequireSubscription(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Err(response.CodeUnauthorized, "missing or invalid authorization header"))
				return
			}
			if !user.IsSubscribed {
				log.Info("subscription required", slog.String("user_uid", user.UID))
				render.Status(r, http.StatusPaymentRequired)
				render.JSON(w, r, response.Err(response.CodeSubscriptionRequired, "active subscription required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
