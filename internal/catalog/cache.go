package catalog

import (
	"context"
	"errors"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
)

// Cache keeps the product list of one owner between sessions.
type Cache interface {
	Get(ctx context.Context, owner string) ([]domain.Product, error)
	Set(ctx context.Context, owner string, products []domain.Product) error
	Delete(ctx context.Context, owner string) error
}

var ErrCacheMiss = errors.New("cache miss")
