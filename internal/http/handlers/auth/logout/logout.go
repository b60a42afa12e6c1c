package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/middlewarectx"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/response"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Выход пользователя
// @Description Отзывает текущий токен сессии. Всегда отвечает успехом,
// @Description даже если токен отсутствует или уже недействителен.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response "Сессия завершена"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := middlewarectx.BearerToken(r)
	if token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil {
			// Выход не должен падать из-за хранилища отозванных токенов,
			// токен все равно истечет по TTL.
			log.Error("failed to revoke token", sl.Err(err))
		}
	}

	log.Info("session closed")
	render.JSON(w, r, response.OK())
}
