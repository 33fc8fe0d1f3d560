package backend

import (
	"context"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/domain"
)

// TokenClient is a Client bound to one bearer credential. It serves as the catalog source and
// the order submitter of a single POS session.
type TokenClient struct {
	client *Client
	token  string
}

func (c *Client) WithToken(token string) *TokenClient {
	return &TokenClient{client: c, token: token}
}

func (t *TokenClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return t.client.ListProducts(ctx, t.token)
}

func (t *TokenClient) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return t.client.ListCustomers(ctx, t.token)
}

func (t *TokenClient) SubmitOrder(ctx context.Context, order domain.Order) (domain.OrderConfirmation, error) {
	return t.client.CreateTransaction(ctx, t.token, order)
}
