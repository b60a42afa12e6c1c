package checkoutwebhook

import (
	"context"

	"github.com/magabrotheeeer/briefe-einfach/internal/paymentprovider"
)

type Service interface {
	ProcessWebhookEvent(ctx context.Context, event *paymentprovider.Event) error
}
