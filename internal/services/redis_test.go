package services

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

func setupTestStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	storage := NewRedisStorage(mr.Addr(), t.TempDir(), logger)
	t.Cleanup(func() {
		if err := storage.Close(); err != nil {
			t.Errorf("Failed to close storage: %v", err)
		}
	})

	return storage, mr
}

func testGameState() *sim.GameState {
	cat := &catalog.Catalog{
		Name:     "RT Test",
		FileName: "rt_test.json",
		Decisions: []catalog.Decision{
			{
				ID:    "d1",
				Title: "D1",
				Options: []catalog.DecisionOption{
					{ID: "o1", Text: "O1"},
				},
			},
		},
	}
	return sim.NewGameState(cat)
}

func TestRedisStorage_GameStateRoundTrip(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	if err := storage.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	gs := testGameState()
	gs.Indicators.NetworkHealth = 42
	gs.Phase = sim.PhaseEra2
	gs.CompletedLessons = []string{"lesson_one"}

	if err := storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	loaded, err := storage.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected game state, got nil")
	}
	if loaded.ID != gs.ID {
		t.Errorf("id = %s, expected %s", loaded.ID, gs.ID)
	}
	if loaded.Indicators.NetworkHealth != 42 {
		t.Errorf("network health = %d, expected 42", loaded.Indicators.NetworkHealth)
	}
	if loaded.Phase != sim.PhaseEra2 {
		t.Errorf("phase = %q, expected era2", loaded.Phase)
	}
	if len(loaded.CompletedLessons) != 1 || loaded.CompletedLessons[0] != "lesson_one" {
		t.Errorf("completed lessons = %v", loaded.CompletedLessons)
	}
}

func TestRedisStorage_LoadMissingGameState(t *testing.T) {
	storage, _ := setupTestStorage(t)

	gs, err := storage.LoadGameState(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("missing game state must not error: %v", err)
	}
	if gs != nil {
		t.Errorf("expected nil for missing game state, got %+v", gs)
	}
}

func TestRedisStorage_DeleteGameState(t *testing.T) {
	storage, _ := setupTestStorage(t)
	ctx := context.Background()

	gs := testGameState()
	if err := storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatal(err)
	}
	if err := storage.DeleteGameState(ctx, gs.ID); err != nil {
		t.Fatalf("DeleteGameState failed: %v", err)
	}

	loaded, err := storage.LoadGameState(ctx, gs.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Error("game state still present after delete")
	}
}

func TestRedisStorage_SaveRefreshesTTL(t *testing.T) {
	storage, mr := setupTestStorage(t)
	ctx := context.Background()

	gs := testGameState()
	if err := storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		t.Fatal(err)
	}

	if ttl := mr.TTL("session:" + gs.ID.String()); ttl != sessionTTL {
		t.Errorf("ttl = %v, expected %v", ttl, sessionTTL)
	}
}

func TestRedisStorage_Catalogs(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	dataDir := t.TempDir()
	catalogsDir := filepath.Join(dataDir, "catalogs")
	if err := os.MkdirAll(catalogsDir, 0o755); err != nil {
		t.Fatal(err)
	}

	content := `{
		"name": "Fixture Protocol",
		"decisions": [
			{"id": "d1", "title": "D1", "options": [{"id": "o1", "text": "O1"}]}
		]
	}`
	if err := os.WriteFile(filepath.Join(catalogsDir, "fixture.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// A broken file is skipped, not fatal.
	if err := os.WriteFile(filepath.Join(catalogsDir, "broken.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	storage := NewRedisStorage(mr.Addr(), dataDir, logger)
	t.Cleanup(func() { _ = storage.Close() })

	ctx := context.Background()

	catalogs, err := storage.ListCatalogs(ctx)
	if err != nil {
		t.Fatalf("ListCatalogs failed: %v", err)
	}
	if len(catalogs) != 1 || catalogs["Fixture Protocol"] != "fixture.json" {
		t.Errorf("catalogs = %v", catalogs)
	}

	c, err := storage.GetCatalog(ctx, "fixture.json")
	if err != nil {
		t.Fatalf("GetCatalog failed: %v", err)
	}
	if c.Name != "Fixture Protocol" || len(c.Decisions) != 1 {
		t.Errorf("catalog = %+v", c)
	}

	if _, err := storage.GetCatalog(ctx, "../escape.json"); err == nil {
		t.Error("path traversal must be rejected")
	}
	if _, err := storage.GetCatalog(ctx, "absent.json"); err == nil {
		t.Error("missing catalog must error")
	}
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	storage, _ := setupTestStorage(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := storage.WaitForConnection(ctx); err != nil {
		t.Errorf("WaitForConnection failed: %v", err)
	}
}
