package dirwatchd

import (
	"path/filepath"

	"dirwatchd/internal/actions"
	"dirwatchd/internal/dispatch"
	"dirwatchd/internal/filter"
	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"
	"dirwatchd/pkg/watchtree"

	. "github.com/black-desk/lib/go/errwrap"
	fsevents "github.com/tywkeene/go-fsevents"
	"go.uber.org/zap"
)

type pendingInstall struct {
	watchlist string
	spec      *config.WatchSpec
}

// generation bundles one watch tree with the dispatch state built from
// the same configuration. Construction is split from installation so a
// reload can fail before the previous generation is touched.
type generation struct {
	tree       *watchtree.Tree
	dispatcher *dispatch.Dispatcher
	pending    []pendingInstall
}

// buildGeneration runs every fallible piece of generation
// construction: filter compilation and action construction. No kernel
// watch is registered yet.
func (d *Daemon) buildGeneration(cfg *config.Config) (ret *generation, err error) {
	defer Wrap(&err, "build watch generation")

	var tree *watchtree.Tree
	tree, err = watchtree.New(
		watchtree.WithWatcher(d.watcher),
		watchtree.WithLogger(d.log),
	)
	if err != nil {
		return
	}

	var disp *dispatch.Dispatcher
	disp, err = dispatch.New(
		dispatch.WithExtender(tree),
		dispatch.WithLogger(d.log),
	)
	if err != nil {
		return
	}

	g := &generation{
		tree:       tree,
		dispatcher: disp,
	}

	for _, list := range cfg.Watchlists {
		if !list.IsEnabled() {
			continue
		}

		for _, spec := range list.Watches {
			var chain *filter.Chain
			chain, err = filter.New(spec.Filter.Include, spec.Filter.Exclude)
			if err != nil {
				Wrap(&err, "watchlist %q watch %q", list.Name, spec.Path)
				return
			}

			var acts []actions.Action
			acts, err = actions.Build(spec.Actions, actions.Env{
				Watchlist: list.Name,
				Contacts:  list.Contacts,
				Defaults:  cfg.Defaults,
				Log:       d.log,
			})
			if err != nil {
				Wrap(&err, "watchlist %q watch %q", list.Name, spec.Path)
				return
			}

			disp.Register(list.Name, spec, chain, acts)

			g.pending = append(g.pending, pendingInstall{
				watchlist: list.Name,
				spec:      spec,
			})
		}
	}

	ret = g
	return
}

// install registers the kernel watches of every pending spec. A spec
// whose root cannot be watched is logged and skipped; per-subdirectory
// failures are already handled inside Install.
func (g *generation) install(log *zap.SugaredLogger) {
	for i := range g.pending {
		p := &g.pending[i]

		_, err := g.tree.Install(p.watchlist, p.spec)
		if err != nil {
			log.Errorw("Failed to install watch, skipping.",
				"watchlist", p.watchlist,
				"path", p.spec.Path,
				"error", err,
			)
		}
	}
}

func (d *Daemon) handleEvent(ev *fsevents.FsEvent) {
	entry, ok := d.gen.tree.Resolve(ev)
	if !ok {
		// Queue overflow or an event left over from a superseded
		// generation.
		d.log.Debugw("Discard unresolvable event.",
			"event", ev,
		)
		return
	}

	var name string
	if ev.Path != entry.Path {
		name = filepath.Base(ev.Path)
	}

	d.gen.dispatcher.Dispatch(entry, name, ev.RawEvent.Mask)
}

func (d *Daemon) runStartupActions() {
	if len(d.startup) == 0 {
		return
	}

	ectx := types.StartupContext()

	d.log.Infow("Running startup actions.",
		"actions", len(d.startup),
	)

	for i := range d.startup {
		actions.Invoke(d.log, d.startup[i], ectx)
	}
}
