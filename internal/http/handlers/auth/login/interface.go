package login

import (
	"context"

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

type Service interface {
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}
