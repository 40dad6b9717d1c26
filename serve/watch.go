package serve

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	nt "shgrid/entity"
)

// Watch calls reload whenever the file at path is written or replaced, until ctx is done.
// Bursts of events within settle are coalesced into one reload.
func Watch(ctx context.Context, path string, settle time.Duration, reload func(ctx context.Context) error, lgr nt.Logger) (err error) {

	if lgr == nil {
		lgr = nt.NopLogger{}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		err = errors.Wrapf(err, "failed to create watcher")
		return
	}
	defer watcher.Close()

	// watch the directory, editors often replace files rather than write them
	target := filepath.Clean(path)
	err = watcher.Add(filepath.Dir(target))
	if err != nil {
		err = errors.Wrapf(err, "failed to watch %s", path)
		return
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(settle, func() {
				lgr.Info(ctx, "data file changed, reloading", "path", path)
				if err := reload(ctx); err != nil {
					lgr.Error(ctx, "failed to reload", err, "path", path)
				}
			})

		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			lgr.Error(ctx, "watcher error", werr)
		}
	}
}
