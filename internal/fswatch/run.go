package fswatch

import (
	"context"
	"time"

	. "github.com/black-desk/lib/go/errwrap"
)

const watchRestartInterval = 100 * time.Millisecond

// Run drives the backend read loop until ctx is cancelled, then stops
// every remaining descriptor.
//
// The backend's Watch returns whenever no descriptor is running. That
// is a regular state here: the daemon may start with nothing watchable,
// and every reload passes through it while generations swap. The read
// loop is therefore supervised and re-entered until shutdown; events
// arriving in the gap stay queued on the inotify descriptor. The final
// read may stay blocked, the process is exiting at that point.
func (w *Watcher) Run(ctx context.Context) (err error) {
	defer Wrap(&err, "running the filesystem watcher")

	go func() {
		for {
			w.Watch()

			select {
			case <-ctx.Done():
				return
			case <-time.After(watchRestartInterval):
			}
		}
	}()

	<-ctx.Done()

	err = w.StopAll()
	if err != nil {
		w.log.Errorw("Failed to stop watch descriptors.",
			"error", err,
		)
		err = nil
	}

	err = ctx.Err()
	return
}
