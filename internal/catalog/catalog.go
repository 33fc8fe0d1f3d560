package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const cacheWriteTimeout = 5 * time.Second

// Source is the backend, already bound to the session's credential.
type Source interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCustomers(ctx context.Context) ([]domain.Customer, error)
}

// Catalog is the session-local snapshot of products and customers. The cart engine reads it
// through Product; only Load and Refresh replace it.
type Catalog struct {
	source Source
	cache  Cache
	owner  string
	logger *zap.Logger

	mu        sync.RWMutex
	products  []domain.Product
	index     map[int64]int
	customers []domain.Customer

	sfg singleflight.Group // one refresh at a time
	wg  sync.WaitGroup     // pending cache writes
}

type Option func(*Catalog)

func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) { c.logger = l }
}

// New builds an empty catalog. A nil cache disables caching.
func New(source Source, cache Cache, owner string, opts ...Option) *Catalog {
	c := &Catalog{
		source: source,
		cache:  cache,
		owner:  owner,
		logger: zap.NewNop(),
		index:  map[int64]int{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches products and customers concurrently. Products are served from the cache when
// it has them. Both lists must load for the catalog to be usable.
func (c *Catalog) Load(ctx context.Context) error {
	var (
		products  []domain.Product
		customers []domain.Customer
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = c.loadProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if customers, err = c.source.ListCustomers(gctx); err != nil {
			return fmt.Errorf("load customers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.setProductsLocked(products)
	c.customers = customers
	c.mu.Unlock()
	return nil
}

// Refresh reloads products from the backend, bypassing and invalidating the cache. Concurrent
// calls share one backend request. On failure the previous snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	_, err, _ := c.sfg.Do("refresh", func() (interface{}, error) {
		if c.cache != nil {
			if err := c.cache.Delete(ctx, c.owner); err != nil {
				c.logger.Warn("catalog cache invalidate failed", zap.Error(err))
			}
		}

		products, err := c.source.ListProducts(ctx)
		if err != nil {
			return nil, fmt.Errorf("refresh products: %w", err)
		}
		c.storeAsync(products)

		c.mu.Lock()
		c.setProductsLocked(products)
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Catalog) loadProducts(ctx context.Context) ([]domain.Product, error) {
	if c.cache != nil {
		products, err := c.cache.Get(ctx, c.owner)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			c.logger.Warn("catalog cache get failed", zap.Error(err))
		}
	}

	products, err := c.source.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	c.storeAsync(products)
	return products, nil
}

func (c *Catalog) storeAsync(products []domain.Product) {
	if c.cache == nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
		defer cancel()
		if err := c.cache.Set(ctx, c.owner, products); err != nil {
			c.logger.Warn("catalog cache set failed", zap.Error(err))
		}
	}()
}

// Wait blocks until pending cache writes have finished.
func (c *Catalog) Wait() {
	c.wg.Wait()
}

func (c *Catalog) setProductsLocked(products []domain.Product) {
	index := make(map[int64]int, len(products))
	for i, p := range products {
		index[p.ID] = i
	}
	c.products = products
	c.index = index
}

// Product implements cart.ProductLookup.
func (c *Catalog) Product(id int64) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Customers() []domain.Customer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Customer, len(c.customers))
	copy(out, c.customers)
	return out
}

// Search matches query case-insensitively against product name and SKU. A blank query
// returns every product.
func (c *Catalog) Search(query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.Products()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.SKU), q) {
			out = append(out, p)
		}
	}
	return out
}
