package explain

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

// Request — текст письма для объяснения
type Request struct {
	Text string `json:"text" validate:"required"`
}

// Response — результат объяснения
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
// @Summary Объяснение текста письма
// @Description Принимает текст немецкого официального письма и возвращает
// @Description упрощенное объяснение.
// @Tags Explain
// @Accept  json
// @Produce  json
// @Param request body Request true "Текст письма"
// @Success 200 {object} Response "Объяснение"
// @Failure 400 {object} response.Response "Пустой текст или некорректный JSON"
// @Failure 502 {object} response.Response "Внешний провайдер недоступен"
// @Router /erklaeren [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.explain"

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

	result, err := h.service.Explain(r.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, explainservice.ErrEmptyText):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Err(response.CodeValidation, "no text provided"))
		case errors.Is(err, explainservice.ErrUpstream):
			log.Error("explanation provider failed", sl.Err(err))
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, response.Err(response.CodeUpstream, "explanation provider unavailable"))
		default:
			log.Error("failed to explain text", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Err(response.CodeInternal, "failed to explain text"))
		}
		return
	}

	render.JSON(w, r, Response{OK: true, Result: result})
}
