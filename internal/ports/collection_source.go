package ports

import (
	"context"

	"github.com/bnema/mmwall/internal/domain"
)

type CollectionSource interface {
	Load(ctx context.Context) ([]domain.ImageDescriptor, error)
}
