// Package watchtree owns the mapping from filesystem path to active
// inotify watch for one generation of configuration.
package watchtree

import (
	"sync/atomic"

	"dirwatchd/internal/fswatch"
	"dirwatchd/pkg/dirwatchd/config"

	. "github.com/black-desk/lib/go/errwrap"
	fsevents "github.com/tywkeene/go-fsevents"
	"go.uber.org/zap"
)

// Entry is one installed watch. Entries of a recursive spec share the
// spec, the masks and the watchlist name; only the path and descriptor
// differ.
type Entry struct {
	Path       string
	Desc       *fsevents.WatchDescriptor
	Watchlist  string
	Generation uint64

	// RawMask is the mask registered with the kernel. For recursive
	// specs it always carries IN_CREATE so new subdirectories can be
	// discovered, regardless of the configured events.
	RawMask uint32
	// ActionMask is strictly the user-configured events; dispatch is
	// gated on it and recursion never broadens it.
	ActionMask uint32

	Spec *config.WatchSpec
}

type Tree struct {
	watcher    *fswatch.Watcher
	generation uint64
	entries    map[string]*Entry
	log        *zap.SugaredLogger
}

var generationCounter atomic.Uint64

func New(opts ...Opt) (ret *Tree, err error) {
	defer Wrap(&err, "create a watch tree")

	t := &Tree{
		entries: map[string]*Entry{},
	}

	for i := range opts {
		t, err = opts[i](t)
		if err != nil {
			return
		}
	}

	if t.log == nil {
		t.log = zap.NewNop().Sugar()
	}

	if t.watcher == nil {
		err = ErrWatcherMissing
		return
	}

	t.generation = generationCounter.Add(1)

	ret = t

	t.log.Debugw("Create a new watch tree.",
		"generation", t.generation,
	)

	return
}

type Opt func(t *Tree) (ret *Tree, err error)

func WithWatcher(w *fswatch.Watcher) Opt {
	return func(t *Tree) (ret *Tree, err error) {
		if w == nil {
			err = ErrWatcherMissing
			return
		}

		t.watcher = w
		ret = t
		return
	}
}

func WithLogger(log *zap.SugaredLogger) Opt {
	return func(t *Tree) (ret *Tree, err error) {
		t.log = log
		ret = t
		return
	}
}
