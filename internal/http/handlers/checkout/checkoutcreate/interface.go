package checkoutcreate

import "context"

type Service interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, userUID string) (string, error)
}
