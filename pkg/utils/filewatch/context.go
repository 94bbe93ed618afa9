package filewatch

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// UntilModifyContext derives a context from ctx that is canceled as
// soon as the file at path changes on disk (written, removed, or
// renamed).
//
// The gateway watches its config file with this: a change cancels the
// context and main shuts the server down, so a restart picks the new
// config up.
//
// The returned stop function releases the watch without canceling
// for a modification. On error, both context and stop are nil.
func UntilModifyContext(ctx context.Context, path string) (context.Context, func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	cctx, cancel := context.WithCancelCause(ctx)

	// one event is enough. The watch ends with the first change.
	go func() {
		defer watcher.Close()
		select {
		case <-cctx.Done():
		case event, ok := <-watcher.Events:
			if ok {
				cancel(fmt.Errorf("%s is modified (%s)", event.Name, event.Op))
			}
		case err, ok := <-watcher.Errors:
			if ok {
				cancel(fmt.Errorf("watching %s failed: %w", path, err))
			}
		}
	}()

	return cctx, func() { cancel(nil) }, nil
}
