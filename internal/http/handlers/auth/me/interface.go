package me

import (
	"context"

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

type Service interface {
	Identify(ctx context.Context, token string) (*models.User, error)
}
