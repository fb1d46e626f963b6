package dictionary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleDelay is how long the file must stay quiet before a reload.
const DefaultSettleDelay = 500 * time.Millisecond

// Watch reloads the dictionary whenever its file changes, until ctx is done.
// Editors often replace files by rename, so the parent directory is watched
// and events are filtered by name. Bursts of writes are collapsed by waiting
// settleDelay after the last event.
func (d *FileDictionary) Watch(ctx context.Context, settleDelay time.Duration) error {
	if d.path == "" {
		return errors.New("dictionary has no backing file")
	}
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(d.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch dictionary dir: %w", err)
	}
	d.logger.Info("watching dictionary file", "path", target)

	var (
		mu    sync.Mutex
		timer *time.Timer
		wg    sync.WaitGroup
	)
	defer func() {
		mu.Lock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		mu.Unlock()
		wg.Wait()
	}()

	schedule := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil && timer.Stop() {
			wg.Done()
		}
		wg.Add(1)
		timer = time.AfterFunc(settleDelay, func() {
			defer wg.Done()
			if err := d.Reload(); err != nil {
				d.logger.Warn("dictionary reload failed, keeping previous entries",
					"path", target,
					"error", err,
				)
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.logger.Warn("dictionary watcher error", "error", err)
		}
	}
}
