package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

// Service описывает интерфейс сервиса для проверки токена сессии.
type Service interface {
	Identify(ctx context.Context, token string) (*models.User, error)
}
