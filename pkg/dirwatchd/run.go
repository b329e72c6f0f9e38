package dirwatchd

import (
	"context"

	. "github.com/black-desk/lib/go/errwrap"
	"github.com/sourcegraph/conc/pool"
)

// Run executes startup actions once, then consumes filesystem events
// until ctx is cancelled. Event processing is strictly sequential: one
// goroutine blocks for the next raw event, runs its dispatch to
// completion and only then looks at pending reload requests. No
// locking protects the generation state because nothing else touches
// it.
func (d *Daemon) Run(ctx context.Context) (err error) {
	defer Wrap(&err, "running dirwatchd core")

	d.runStartupActions()

	p := pool.New().
		WithContext(ctx).
		WithCancelOnError()

	p.Go(d.watcher.Run)
	p.Go(d.runLoop)

	return p.Wait()
}

// TriggerReload records a reload request. Safe to call from any
// goroutine, including the signal-delivery one; requests collapse into
// a single pending flag.
func (d *Daemon) TriggerReload() {
	select {
	case d.reloadCh <- struct{}{}:
	default:
	}
}

// WatchedPaths lists the paths of the active generation, sorted.
func (d *Daemon) WatchedPaths() []string {
	return d.gen.tree.Paths()
}

func (d *Daemon) runLoop(ctx context.Context) (err error) {
	defer d.log.Debugw("Event loop exited.")

	d.log.Debugw("Start event loop.")

	events := d.watcher.Events
	errs := d.watcher.Errors

	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return

		case <-d.reloadCh:
			d.handleReloadRequest()

		case ev, ok := <-events:
			if !ok {
				d.log.Debugw("Watcher event channel closed.")
				return
			}

			d.handleEvent(ev)

		case watchErr, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}

			d.log.Errorw("Watcher backend error.",
				"error", watchErr,
			)
		}
	}
}
