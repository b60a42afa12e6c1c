package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/briefe-einfach/internal/http/middlewarectx"
	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

// Response — текущее состояние сессии. Эндпоинт никогда не возвращает
// ошибку: отсутствие сессии — это обычный ответ с loggedIn=false.
type Response struct {
	OK       bool               `json:"ok"`
	LoggedIn bool               `json:"loggedIn"`
	User     *models.PublicUser `json:"user,omitempty"`
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
// @Summary Текущая сессия
// @Description Возвращает пользователя текущей сессии или loggedIn=false.
// @Tags Auth
// @Produce  json
// @Success 200 {object} Response "Состояние сессии"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := middlewarectx.BearerToken(r)
	if token == "" {
		render.JSON(w, r, Response{OK: true, LoggedIn: false})
		return
	}

	user, err := h.service.Identify(r.Context(), token)
	if err != nil {
		log.Info("token rejected", slog.String("reason", err.Error()))
		render.JSON(w, r, Response{OK: true, LoggedIn: false})
		return
	}

	public := user.Public()
	render.JSON(w, r, Response{OK: true, LoggedIn: true, User: &public})
}
