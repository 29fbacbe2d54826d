package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/slug"
)

// Fixture is one seed file: a draft plus the kind it belongs to. A missing
// slug is derived from the title.
type Fixture struct {
	Kind models.Kind `json:"kind"`
	models.Draft
}

// Seed loads every *.json fixture in dir into the store, inserting new
// slugs and overwriting records whose slug already exists. Files that fail
// to parse are skipped with a warning so one bad fixture never blocks the
// rest.
func Seed(db *DB, dir string, logger *slog.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("devserver: read seed dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := seedFile(db, path); err != nil {
			logger.Warn("seed fixture skipped",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

func seedFile(db *DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if fixture.Kind == "" {
		fixture.Kind = models.KindPost
	}
	if fixture.Slug == "" {
		fixture.Slug = slug.Generate(fixture.Title)
	}
	if fixture.Status == "" {
		fixture.Status = models.StatusDraft
	}
	if err := fixture.Draft.Validate(fixture.Kind); err != nil {
		return err
	}

	existing, err := db.GetRecordBySlug(fixture.Kind, fixture.Slug, "")
	if err == nil {
		_, err = db.UpdateRecord(fixture.Kind, existing.ID, fixture.Draft)
		return err
	}
	_, err = db.CreateRecord(fixture.Kind, fixture.Draft)
	return err
}

// WatchSeeds watches the fixture directory and re-seeds after changes,
// debounced so editor write bursts collapse into one pass. Runs until ctx
// is cancelled.
func WatchSeeds(ctx context.Context, db *DB, dir string, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("devserver: create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("devserver: watch %s: %w", dir, err)
	}
	logger.Info("seed watcher started", slog.String("dir", dir))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(200 * time.Millisecond)
			timerCh = timer.C
		} else {
			timer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("seed watcher stopped")
			return nil

		case <-timerCh:
			if err := Seed(db, dir, logger); err != nil {
				logger.Warn("re-seed failed", slog.String("error", err.Error()))
			} else {
				logger.Info("re-seeded fixtures", slog.String("dir", dir))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("seed watcher error", slog.String("error", err.Error()))
		}
	}
}
