package checkoutcreate

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/middlewarectx"
	"github.com/magabrotheeeer/briefe-einfach/internal/http/response"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	checkoutservice "github.com/magabrotheeeer/briefe-einfach/internal/services/checkout"
)

// Response — адрес страницы оплаты у платежного провайдера
type Response struct {
	OK  bool   `json:"ok"`
	URL string `json:"url"`
}

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
// @Summary Создание сессии оплаты подписки
// @Description Создает сессию оплаты у платежного провайдера и возвращает
// @Description URL для перенаправления пользователя.
// @Tags Checkout
// @Produce  json
// @Success 200 {object} Response "Ссылка на оплату"
// @Failure 401 {object} response.Response "Требуется авторизация"
// @Failure 500 {object} response.Response "Провайдер не настроен"
// @Failure 502 {object} response.Response "Ошибка платежного провайдера"
// @Security BearerAuth
// @Router /create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("no user in request context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Err(response.CodeUnauthorized, "authentication required"))
		return
	}

	url, err := h.service.CreateCheckoutSession(r.Context(), user.UID)
	if err != nil {
		switch {
		case errors.Is(err, checkoutservice.ErrNotConfigured):
			log.Error("payment provider is not configured")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Err(response.CodeConfig, "payment provider is not configured"))
		case errors.Is(err, checkoutservice.ErrProvider):
			log.Error("payment provider request failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Err(response.CodeUpstream, "payment provider unavailable"))
		default:
			log.Error("failed to create checkout session", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Err(response.CodeInternal, "failed to create checkout session"))
		}
		return
	}

	log.Info("checkout session created", slog.String("user_uid", user.UID))
	render.JSON(w, r, Response{OK: true, URL: url})
}
