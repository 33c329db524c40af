package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	gamestates map[uuid.UUID]*sim.GameState
	catalogs   map[string]*catalog.Catalog
	pingError  error
	saveError  error
	loadError  error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		gamestates: make(map[uuid.UUID]*sim.GameState),
		catalogs:   make(map[string]*catalog.Catalog),
	}
}

// AddCatalog registers a catalog under its file name
func (m *MockStorage) AddCatalog(c *catalog.Catalog) {
	m.catalogs[c.FileName] = c
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.pingError = err
}

// SetSaveError configures the mock to fail on save with the given error
func (m *MockStorage) SetSaveError(err error) {
	m.saveError = err
}

// SetLoadError configures the mock to fail on load with the given error
func (m *MockStorage) SetLoadError(err error) {
	m.loadError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) WaitForConnection(ctx context.Context) error {
	return m.pingError
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *sim.GameState) error {
	if m.saveError != nil {
		return m.saveError
	}
	if gs == nil {
		return errors.New("game state cannot be nil")
	}
	m.gamestates[id] = gs
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*sim.GameState, error) {
	if m.loadError != nil {
		return nil, m.loadError
	}
	gs, exists := m.gamestates[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	return gs, nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	delete(m.gamestates, id)
	return nil
}

func (m *MockStorage) ListCatalogs(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.catalogs))
	for filename, c := range m.catalogs {
		out[c.Name] = filename
	}
	return out, nil
}

func (m *MockStorage) GetCatalog(ctx context.Context, filename string) (*catalog.Catalog, error) {
	c, exists := m.catalogs[filename]
	if !exists {
		return nil, fmt.Errorf("catalog not found: %s", filename)
	}
	return c, nil
}
