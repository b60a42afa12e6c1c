package translate

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/response"
	"github.com/magabrotheeeer/briefe-einfach/internal/lib/sl"
	explainservice "github.com/magabrotheeeer/briefe-einfach/internal/services/explain"
)

// Request — текст и целевой язык перевода
type Request struct {
	Text   string `json:"text" validate:"required"`
	Target string `json:"target" validate:"required,min=2,max=32"`
}

// Response — результат перевода
type Response struct {
	OK     bool   `json:"ok"`
	Result string `json:"result"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Перевод объяснения
// @Description Переводит упрощенное объяснение на выбранный язык.
// @Description Доступно только пользователям с активной подпиской.
// @Tags Explain
// @Accept  json
// @Produce  json
// @Param request body Request true "Текст и целевой язык"
// @Success 200 {object} Response "Перевод"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 401 {object} response.Response "Требуется авторизация"
// @Failure 402 {object} response.Response "Требуется подписка"
// @Failure 502 {object} response.Response "Внешний провайдер недоступен"
// @Security BearerAuth
// @Router /api/translate [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.translate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Err(response.CodeValidation, "invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Translate(r.Context(), req.Text, req.Target)
	if err != nil {
		switch {
		case errors.Is(err, explainservice.ErrEmptyText):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Err(response.CodeValidation, "no text provided"))
		case errors.Is(err, explainservice.ErrNotConfigured):
			log.Error("translation requested without configured provider")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Err(response.CodeConfig, "translation provider is not configured"))
		case errors.Is(err, explainservice.ErrUpstream):
			log.Error("translation provider failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Err(response.CodeUpstream, "translation provider unavailable"))
		default:
			log.Error("failed to translate text", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Err(response.CodeInternal, "failed to translate text"))
		}
		return
	}

	render.JSON(w, r, Response{OK: true, Result: result})
}
