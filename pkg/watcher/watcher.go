// Package watcher signals when documents in an asset directory change.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/anams/page-server/pkg/logger"
	"github.com/anams/page-server/pkg/metrics"
)

// Watcher monitors an asset directory and sends debounced notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dir       string
	suffix    string
	debounce  time.Duration
	log       *logger.Logger
	onChange  chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

// Config holds watcher configuration options.
type Config struct {
	Dir         string
	Suffix      string
	DebounceDur time.Duration
}

// DefaultConfig returns defaults for watching dir.
func DefaultConfig(dir, suffix string) Config {
	return Config{
		Dir:         dir,
		Suffix:      suffix,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a new asset watcher.
func New(cfg Config, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if log == nil {
		log = logger.Discard(logger.ComponentWatcher)
	}

	return &Watcher{
		fsWatcher: fsw,
		dir:       cfg.Dir,
		suffix:    cfg.Suffix,
		debounce:  cfg.DebounceDur,
		log:       log,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the directory.
// Returns a channel that receives a signal when matching files change.
func (w *Watcher) Start() (<-chan struct{}, error) {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", w.dir, err)
	}

	w.wg.Add(1)
	go w.loop()

	return w.onChange, nil
}

// Stop terminates the watcher, waits for its goroutine and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
		w.wg.Wait()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		var fire <-chan time.Time
		if timer != nil {
			fire = timer.C
		}

		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.isRelevantEvent(event) {
				continue
			}
			w.log.Debug("Asset event", "op", event.Op.String(), "file", filepath.Base(event.Name))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-fire:
			timer = nil
			metrics.AssetChanges.Inc()
			// Non-blocking send - drop if a notification is already pending
			select {
			case w.onChange <- struct{}{}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// isRelevantEvent checks if the event changes the set or content of documents.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.suffix == "" || strings.HasSuffix(filepath.Base(event.Name), w.suffix)
}
