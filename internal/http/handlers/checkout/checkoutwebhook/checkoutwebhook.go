package checkoutwebhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/response"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	"github.com/magabrotheeeer/briefe-einfach/internal/metrics"
	"github.com/magabrotheeeer/briefe-einfach/internal/paymentprovider"
)

// maxPayloadBytes ограничивает размер тела webhook-уведомления.
const maxPayloadBytes = 1 << 20

// Response — подтверждение приема webhook-события
type Response struct {
	Received bool `json:"received"`
}

type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Webhook платежного провайдера
// @Description Принимает подписанные уведомления провайдера. Только
// @Description проверенные события меняют состояние подписки.
// @Tags Checkout
// @Accept  json
// @Produce  json
// @Success 200 {object} Response "Событие принято"
// @Failure 400 {object} response.Response "Неверная подпись или тело"
// @Failure 500 {object} response.Response "Секрет webhook не настроен"
// @Router /stripe/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.checkout.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if h.webhookSecret == "" {
		log.Error("webhook secret is not configured")
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Err(response.CodeConfig, "webhook secret is not configured"))
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadBytes))
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Err(response.CodeValidation, "failed to read request body"))
		return
	}

	event, err := paymentprovider.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		if errors.Is(err, paymentprovider.ErrInvalidSignature) {
			log.Error("webhook signature verification failed")
			metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Err(response.CodeValidation, "invalid signature"))
			return
		}
		log.Error("failed to parse webhook event", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Err(response.CodeValidation, "invalid payload"))
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), event); err != nil {
		log.Error("failed to process webhook event",
			slog.String("event_type", event.Type), sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Err(response.CodeInternal, "failed to process event"))
		return
	}

	log.Info("webhook event processed", slog.String("event_type", event.Type))
	render.JSON(w, r, Response{Received: true})
}
