package dispatch

import (
	"path/filepath"
	"time"

	"dirwatchd/internal/actions"
	"dirwatchd/internal/classify"
	"dirwatchd/pkg/types"
	"dirwatchd/pkg/watchtree"

	"golang.org/x/sys/unix"
)

// Dispatch runs one raw event through the pipeline. name is the path
// component the kernel attached to the event, empty for
// self-referential notifications.
//
// Order matters: the tree is extended for new subdirectories before
// the action-mask and filter gates run, so a directory that would
// never trigger an action is still watched.
func (d *Dispatcher) Dispatch(entry *watchtree.Entry, name string, mask uint32) {
	if name == "" {
		// Self-referential events carry no name; expected, not an
		// error.
		d.log.Debugw("Discard event without a name.",
			"path", entry.Path,
			"mask", mask,
		)
		return
	}

	fullPath := filepath.Join(entry.Path, name)

	if entry.Spec.Recursive &&
		mask&unix.IN_CREATE != 0 &&
		mask&unix.IN_ISDIR != 0 {
		_, err := d.tree.ExtendOnCreate(entry, fullPath)
		if err != nil {
			d.log.Errorw("Failed to extend watch tree.",
				"path", fullPath,
				"error", err,
			)
		}
	}

	if mask&entry.ActionMask == 0 {
		return
	}

	rs := d.specs[entry.Spec]
	if rs == nil {
		// Every installed entry has a registered spec; defensive.
		d.log.Warnw("Event for an unregistered watch spec.",
			"path", fullPath,
		)
		return
	}

	if !rs.chain.MatchesFullPath(fullPath) {
		d.log.Debugw("Event filtered out.",
			"path", fullPath,
		)
		return
	}

	ectx := &types.EventContext{
		Event:     classify.Label(mask),
		File:      name,
		Dir:       entry.Path,
		FullPath:  fullPath,
		Time:      time.Now(),
		Watchlist: entry.Watchlist,
		PID:       d.pid,
		Hostname:  d.hostname,
	}

	d.log.Infow("Dispatching event.",
		"event", ectx.Event,
		"path", fullPath,
		"watchlist", entry.Watchlist,
		"actions", len(rs.acts),
	)

	for i := range rs.acts {
		actions.Invoke(d.log, rs.acts[i], ectx)
	}
}
