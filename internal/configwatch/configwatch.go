// Package configwatch reloads the batchclock config file when it changes.
package configwatch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/batchclock/internal/cliconfig"
	"github.com/bft-labs/batchclock/pkg/log"
)

// Watcher monitors a TOML config file via fsnotify and hands every parsed
// revision to OnChange.
type Watcher struct {
	path     string
	delay    time.Duration
	logger   log.Logger
	onChange func(cliconfig.FileConfig)

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a Watcher for path. Bursts of events within delay are collapsed
// into one reload.
func New(path string, delay time.Duration, logger log.Logger, onChange func(cliconfig.FileConfig)) *Watcher {
	return &Watcher{
		path:     path,
		delay:    delay,
		logger:   logger,
		onChange: onChange,
	}
}

// Run watches the directory of the config file until ctx is cancelled.
// The directory is watched rather than the file so that editors replacing the
// file by rename are noticed.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	w.logger.Debug("watching config", log.String("path", w.path))

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) reload() {
	fc, err := cliconfig.LoadFileConfig(w.path)
	if err != nil {
		// A rename leaves the file briefly missing; the next event retries.
		w.logger.Warn("failed to reload config", log.String("path", w.path), log.Err(err))
		return
	}
	w.logger.Info("config reloaded", log.String("path", w.path))
	w.onChange(fc)
}
