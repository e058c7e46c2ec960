package touchpad

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WaitForNode blocks until path exists again. The i2c-hid touchpads drop
// their event node across suspend and firmware resets; the daemon waits
// for the node to come back instead of dying.
//
// The watch is installed before the existence check so a node appearing in
// between is not missed.
func WaitForNode(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("touchpad: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("touchpad: watch %s: %w", filepath.Dir(path), err)
	}

	if _, err := os.Stat(path); err == nil {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("touchpad: watcher closed")
			}
			if ev.Name == path && ev.Op.Has(fsnotify.Create) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("touchpad: watcher closed")
			}
			return fmt.Errorf("touchpad: watch error: %w", err)
		}
	}
}
