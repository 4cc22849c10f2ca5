package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/opnlaas/v2vlens/config"
	"github.com/z46-dev/go-logger"
)

var watchLog *logger.Logger = logger.NewLogger().SetPrefix("[WATCH]", logger.BoldYellow).IncludeTimestamp()

// IngestFunc is called with the absolute path of a settled log file.
type IngestFunc func(path string)

// Watcher monitors the configured log directory and hands finished files to
// the ingest callback. Writes are debounced so a file being appended to is
// only ingested after it has gone quiet.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	patterns []string
	debounce time.Duration
	ingest   IngestFunc

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(ingest IngestFunc) (w *Watcher, err error) {
	w = &Watcher{
		dir:      config.Config.Logs.WatchDir,
		patterns: config.Config.Logs.Patterns,
		debounce: time.Duration(config.Config.Logs.Debounce) * time.Millisecond,
		ingest:   ingest,
		pending:  make(map[string]*time.Timer),
	}

	if w.dir, err = filepath.Abs(w.dir); err != nil {
		return nil, err
	}

	if err = os.MkdirAll(w.dir, 0755); err != nil {
		return nil, err
	}

	if w.fsw, err = fsnotify.NewWatcher(); err != nil {
		return nil, err
	}

	// Watch the directory tree, not individual files, so new logs are seen
	if err = w.addTree(w.dir); err != nil {
		w.fsw.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addTree(root string) (err error) {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() {
			return w.fsw.Add(path)
		}

		return nil
	})
}

// ScanExisting ingests every file already in the watch directory that
// matches the configured patterns. Run once at startup before Start.
func (w *Watcher) ScanExisting() {
	for _, pattern := range w.patterns {
		var matches, err = doublestar.FilepathGlob(filepath.Join(w.dir, pattern), doublestar.WithFilesOnly())
		if err != nil {
			watchLog.Warningf("Failed to expand pattern %q: %v\n", pattern, err)
			continue
		}

		for _, match := range matches {
			w.ingest(match)
		}
	}
}

// Start blocks until the context is cancelled, forwarding settled files to
// the ingest callback.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()

	watchLog.Statusf("Watching %s for conversion logs\n", w.dir)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}

			w.handleEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}

			watchLog.Errorf("Watcher error: %v\n", err)
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
		if ev.Op&fsnotify.Create != 0 {
			if err = w.addTree(ev.Name); err != nil {
				watchLog.Warningf("Cannot watch new directory %s: %v\n", ev.Name, err)
			}
		}

		return
	}

	if !w.matches(ev.Name) {
		return
	}

	w.schedule(ev.Name)
}

func (w *Watcher) matches(path string) bool {
	var rel, err = filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}

	rel = filepath.ToSlash(rel)

	for _, pattern := range w.patterns {
		if ok, matchErr := doublestar.Match(pattern, rel); matchErr == nil && ok {
			return true
		}
	}

	return false
}

// schedule (re)arms the debounce timer for a file. The file is ingested
// only after no further writes arrive within the debounce window.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.debounce)
		return
	}

	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		w.ingest(path)
	})
}
