package translate

import "context"

type Service interface {
	Translate(ctx context.Context, text, target string) (string, error)
}
