package explain

import "context"

type Service interface {
	Explain(ctx context.Context, text string) (string, error)
}
