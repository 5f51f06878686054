package ports

import (
	"context"

	"github.com/bnema/mmwall/internal/domain"
)

// StateRepository persists the slideshow snapshot between runs. Load returns
// domain.ErrStateNotFound before the first Save.
type StateRepository interface {
	Load(ctx context.Context) (domain.SlideshowState, error)
	Save(ctx context.Context, state domain.SlideshowState) error
}
