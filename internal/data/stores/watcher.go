package stores

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/hay-kot/worklist/internal/data/db"
)

const watchDebounce = 50 * time.Millisecond

// DBWatcher signals when the SQLite database in a data directory is written,
// including writes made by other processes. Bursts of filesystem events are
// collapsed into a single signal.
type DBWatcher struct {
	watcher *fsnotify.Watcher
	changes chan struct{}

	mu    sync.Mutex
	timer *time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewDBWatcher watches dataDir for changes to the database and its WAL.
// The directory is created if it doesn't exist.
func NewDBWatcher(dataDir string) (*DBWatcher, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := watcher.Add(dataDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &DBWatcher{
		watcher: watcher,
		changes: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w, nil
}

// Changes returns a channel that receives a value after the database changes.
// Signals that arrive while one is pending are merged.
func (w *DBWatcher) Changes() <-chan struct{} {
	return w.changes
}

// Close stops watching.
func (w *DBWatcher) Close() error {
	close(w.done)

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *DBWatcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Debug().Err(err).Msg("database watcher error")
		}
	}
}

func (w *DBWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}

	if !strings.HasPrefix(filepath.Base(event.Name), db.FileName) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, w.notify)
}

func (w *DBWatcher) notify() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
