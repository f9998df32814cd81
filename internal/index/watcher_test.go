package index

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/ehwaz/internal/corpus"
	"github.com/starford/ehwaz/internal/storage"
)

// watcherTestEnv sets up a corpus dir, storage, processor, and DB.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *corpus.Processor, *DB) {
	t.Helper()
	corpusDir := t.TempDir()
	store, err := storage.NewFS(corpusDir)
	if err != nil {
		t.Fatal(err)
	}
	dbFile, err := os.CreateTemp("", "ehwaz-watcher-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })
	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	proc := corpus.NewProcessor(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return corpusDir, store, proc, db
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	corpusDir, store, proc, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, store, proc, corpusDir, logger, func(kind, articleSlug string) {
		mu.Lock()
		events = append(events, kind+":"+articleSlug)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(corpusDir, "New Article.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("new-article")
		return cs != ""
	}, "new file not indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new-article" {
				return true
			}
		}
		return false
	}, "expected created:new-article callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	corpusDir, store, proc, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, proc, corpusDir, logger, nil)

	time.Sleep(100 * time.Millisecond)

	subDir := filepath.Join(corpusDir, "subdir")
	_ = os.MkdirAll(subDir, 0o755)

	time.Sleep(200 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("deep")
		return cs != ""
	}, "file in new subdir not indexed by watcher")
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	corpusDir, store, proc, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = os.WriteFile(filepath.Join(corpusDir, "del.md"), []byte("# Delete Me"), 0o644)
	Sync(db, store, proc, logger)

	cs, _ := db.GetChecksum("del")
	if cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, proc, corpusDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(corpusDir, "del.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		cs, _ := db.GetChecksum("del")
		return cs == ""
	}, "deleted file still in index")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	corpusDir, store, proc, db := watcherTestEnv(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	_ = os.WriteFile(filepath.Join(corpusDir, "old.md"), []byte("# Rename"), 0o644)
	Sync(db, store, proc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go Watch(ctx, db, store, proc, corpusDir, logger, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(corpusDir, "old.md"), filepath.Join(corpusDir, "renamed.md"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		oldCS, _ := db.GetChecksum("old")
		newCS, _ := db.GetChecksum("renamed")
		return oldCS == "" && newCS != ""
	}, "rename reconciliation failed: old slug should be removed and new slug indexed")
}

func TestSyncRemovesStale(t *testing.T) {
	corpusDir, store, proc, db := watcherTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := filepath.Join(corpusDir, "gone.md")
	_ = os.WriteFile(path, []byte("# Gone"), 0o644)
	if err := Sync(db, store, proc, logger); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("gone"); cs == "" {
		t.Fatal("precondition: file should be indexed")
	}

	_ = os.Remove(path)
	if err := Sync(db, store, proc, logger); err != nil {
		t.Fatalf("Sync after remove: %v", err)
	}
	if cs, _ := db.GetChecksum("gone"); cs != "" {
		t.Error("stale entry not removed")
	}
}
