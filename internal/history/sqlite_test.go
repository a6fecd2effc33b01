package history

import (
	"context"
	"testing"
	"time"

	_ "github.com/nerrad567/gruenbeck-collector/migrations" // Registers the watermark schema
)

func openTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := OpenSQLiteStore(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSQLiteStore_SaveLoad(t *testing.T) {
	store := openTestSQLiteStore(t)
	ctx := context.Background()

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on empty store error = %v", err)
	}
	if !got.Equal(Epoch) {
		t.Errorf("Load() on empty store = %v, want Epoch", got)
	}

	first := time.Unix(1773183600, 0)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	second := first.Add(day)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save() second error = %v", err)
	}

	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(second) {
		t.Errorf("Load() = %v, want %v", got, second)
	}
}

func TestSQLiteStore_Check(t *testing.T) {
	store := openTestSQLiteStore(t)

	if err := store.Check(context.Background()); err != nil {
		t.Errorf("Check() error = %v", err)
	}
}

func TestSQLiteStore_ReopenKeepsWatermark(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	ts := time.Unix(1773183600, 0)

	store, err := OpenSQLiteStore(ctx, dir)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	if err := store.Save(ctx, ts); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := OpenSQLiteStore(ctx, dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close() //nolint:errcheck // Test cleanup

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.Equal(ts) {
		t.Errorf("Load() = %v, want %v", got, ts)
	}
}
