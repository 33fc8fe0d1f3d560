package session

import (
	"errors"
	"time"

	"github.com/danishyusrah/Project-Go-Bisnis/internal/cart"
	"github.com/danishyusrah/Project-Go-Bisnis/internal/catalog"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one open POS screen: a cart engine and the catalog it reads from.
type Session struct {
	ID        string
	Owner     string
	Engine    *cart.Engine
	Catalog   *catalog.Catalog
	CreatedAt time.Time

	lastSeen time.Time
}

// Store holds open sessions.
type Store interface {
	// Create registers a new session for owner and returns it
	Create(owner string, engine *cart.Engine, catalog *catalog.Catalog) *Session

	// Get returns the session if it exists, belongs to owner and has not expired.
	// A successful Get counts as activity.
	Get(id, owner string) (*Session, error)

	// Delete removes the session. Only its owner may delete it.
	Delete(id, owner string) error

	// Close shuts down the store and any background processes
	Close() error
}
