package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Storage defines the interface for session persistence and catalog
// retrieval. Sessions live in Redis; catalogs are static files.
type Storage interface {
	HealthChecker
	Closer

	// WaitForConnection waits for storage to be available with retries
	WaitForConnection(ctx context.Context) error

	// SaveGameState saves a session's game state under its ID
	SaveGameState(ctx context.Context, id uuid.UUID, gs *sim.GameState) error

	// LoadGameState retrieves a game state by session ID.
	// Returns nil if the session doesn't exist
	LoadGameState(ctx context.Context, id uuid.UUID) (*sim.GameState, error)

	// DeleteGameState removes a session by ID
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// ListCatalogs returns catalog names mapped to file names
	ListCatalogs(ctx context.Context) (map[string]string, error)

	// GetCatalog loads a content catalog by file name
	GetCatalog(ctx context.Context, filename string) (*catalog.Catalog, error)
}
