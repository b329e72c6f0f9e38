// Package fswatch wraps the inotify watcher backend shared by every
// watch-tree generation. One kernel watcher instance lives for the
// whole process; generations come and go on top of it.
package fswatch

import (
	. "github.com/black-desk/lib/go/errwrap"
	fsevents "github.com/tywkeene/go-fsevents"
	"go.uber.org/zap"
)

type Watcher struct {
	*fsevents.Watcher
	log *zap.SugaredLogger
}

func New(opts ...Opt) (ret *Watcher, err error) {
	defer Wrap(&err, "create the filesystem watcher")

	w := &Watcher{}

	var impl *fsevents.Watcher
	impl, err = fsevents.NewWatcher()
	if err != nil {
		return
	}

	w.Watcher = impl

	for i := range opts {
		w, err = opts[i](w)
		if err != nil {
			return
		}
	}

	if w.log == nil {
		w.log = zap.NewNop().Sugar()
	}

	ret = w

	w.log.Debugw("Create a new filesystem watcher.")

	return
}

type Opt func(w *Watcher) (ret *Watcher, err error)

func WithLogger(log *zap.SugaredLogger) Opt {
	return func(w *Watcher) (ret *Watcher, err error) {
		if log == nil {
			err = ErrLoggerMissing
			return
		}

		w.log = log
		ret = w
		return
	}
}
