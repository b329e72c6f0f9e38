// Package dirwatchd is the daemon core: it owns the active watch-tree
// generation, consumes raw filesystem events on a single goroutine and
// swaps generations on reload without interrupting consumption.
package dirwatchd

import (
	"dirwatchd/internal/actions"
	"dirwatchd/internal/fswatch"
	"dirwatchd/pkg/dirwatchd/config"

	. "github.com/black-desk/lib/go/errwrap"
	"go.uber.org/zap"
)

// ConfigSource supplies a freshly loaded configuration for a reload
// request. Loading and validating the file is the caller's business;
// the core only consumes the result.
type ConfigSource func() (*config.Config, error)

type Daemon struct {
	cfg     *config.Config
	watcher *fswatch.Watcher
	log     *zap.SugaredLogger

	source  ConfigSource
	startup []actions.Action

	// reloadCh carries at most one pending reload request; the signal
	// side only ever performs this non-blocking send, all real work
	// happens on the event loop.
	reloadCh chan struct{}

	// gen is replaced between dispatch calls only, never during one.
	gen *generation
}

func New(opts ...Opt) (ret *Daemon, err error) {
	defer Wrap(&err, "create dirwatchd core")

	d := &Daemon{
		reloadCh: make(chan struct{}, 1),
	}

	for i := range opts {
		d, err = opts[i](d)
		if err != nil {
			return
		}
	}

	if d.log == nil {
		d.log = zap.NewNop().Sugar()
	}

	if d.cfg == nil {
		err = ErrConfigMissing
		return
	}

	if d.watcher == nil {
		d.watcher, err = fswatch.New(fswatch.WithLogger(d.log))
		if err != nil {
			return
		}
	}

	d.startup, err = actions.Build(d.cfg.StartupActions, actions.Env{
		Defaults: d.cfg.Defaults,
		Log:      d.log,
	})
	if err != nil {
		return
	}

	// Configuration errors are fatal here, at initial startup, and
	// nowhere else.
	d.gen, err = d.buildGeneration(d.cfg)
	if err != nil {
		return
	}

	d.gen.install(d.log)

	ret = d

	d.log.Debugw("Create dirwatchd core.",
		"watched", d.gen.tree.Len(),
	)

	return
}

type Opt func(d *Daemon) (ret *Daemon, err error)

func WithConfig(cfg *config.Config) Opt {
	return func(d *Daemon) (ret *Daemon, err error) {
		if cfg == nil {
			err = ErrConfigMissing
			return
		}

		d.cfg = cfg
		ret = d
		return
	}
}

func WithLogger(log *zap.SugaredLogger) Opt {
	return func(d *Daemon) (ret *Daemon, err error) {
		d.log = log
		ret = d
		return
	}
}

// WithConfigSource enables SIGHUP-style reloads; without a source a
// reload request is logged and ignored.
func WithConfigSource(source ConfigSource) Opt {
	return func(d *Daemon) (ret *Daemon, err error) {
		d.source = source
		ret = d
		return
	}
}
