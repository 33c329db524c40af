package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

// sessionTTL bounds how long an idle session survives in Redis. Every
// save refreshes it.
const sessionTTL = 24 * time.Hour

// RedisStorage implements the Storage interface using Redis for game
// state and the filesystem for static content catalogs.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance
func NewRedisStorage(redisURL string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: redisURL,
	})

	if dataDir == "" {
		dataDir = "./data"
	}

	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	cmd := r.client.Ping(ctx)
	if err := cmd.Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// GameState operations (Redis-backed)

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *sim.GameState) error {
	gs.UpdatedAt = time.Now()

	data, err := json.Marshal(gs)
	if err != nil {
		r.logger.Error("Failed to marshal game state", "session_id", id, "error", err)
		return fmt.Errorf("failed to marshal game state: %w", err)
	}

	cmd := r.client.Set(ctx, sessionKey(id), string(data), sessionTTL)
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to save game state", "session_id", id, "error", err)
		return fmt.Errorf("failed to save game state: %w", err)
	}

	return nil
}

func (r *RedisStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*sim.GameState, error) {
	cmd := r.client.Get(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Game state not found", "session_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load game state", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}

	data := cmd.Val()
	if data == "" {
		r.logger.Warn("Game state not found", "session_id", id)
		return nil, nil
	}

	var gs sim.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		r.logger.Error("Failed to unmarshal game state", "session_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}

	return &gs, nil
}

func (r *RedisStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	cmd := r.client.Del(ctx, sessionKey(id))
	if err := cmd.Err(); err != nil {
		r.logger.Error("Failed to delete game state", "session_id", id, "error", err)
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}

// Catalog operations (filesystem-backed)

func (r *RedisStorage) ListCatalogs(ctx context.Context) (map[string]string, error) {
	catalogsDir := filepath.Join(r.dataDir, "catalogs")
	catalogs := make(map[string]string)

	err := filepath.WalkDir(catalogsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !isCatalogFile(path) {
			return nil
		}

		c, err := catalog.Load(path)
		if err != nil {
			r.logger.Warn("Skipping unreadable catalog file", "path", path, "error", err)
			return nil
		}

		catalogs[c.Name] = filepath.Base(path)
		return nil
	})

	if err != nil {
		r.logger.Error("Failed to walk catalogs directory", "error", err)
		return nil, fmt.Errorf("failed to list catalogs: %w", err)
	}

	return catalogs, nil
}

func (r *RedisStorage) GetCatalog(ctx context.Context, filename string) (*catalog.Catalog, error) {
	// Refuse path traversal outside the catalogs directory.
	if filepath.Base(filename) != filename {
		return nil, fmt.Errorf("invalid catalog file name: %s", filename)
	}

	path := filepath.Join(r.dataDir, "catalogs", filename)
	c, err := catalog.Load(path)
	if err != nil {
		if os.IsNotExist(errors.Unwrap(err)) {
			return nil, fmt.Errorf("catalog not found: %s", filename)
		}
		return nil, err
	}
	return c, nil
}

func isCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
