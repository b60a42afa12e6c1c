package register

import (
	"context"

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

type Service interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
}
