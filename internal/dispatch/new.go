// Package dispatch implements the per-event pipeline from one raw
// notification to zero or more action invocations.
package dispatch

import (
	"os"

	"dirwatchd/internal/actions"
	"dirwatchd/internal/filter"
	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/watchtree"

	. "github.com/black-desk/lib/go/errwrap"
	"go.uber.org/zap"
)

// Extender is the one watch-tree operation the pipeline needs.
type Extender interface {
	ExtendOnCreate(parent *watchtree.Entry, dir string) (*watchtree.Entry, error)
}

type runtimeSpec struct {
	watchlist string
	chain     *filter.Chain
	acts      []actions.Action
}

type Dispatcher struct {
	tree  Extender
	specs map[*config.WatchSpec]*runtimeSpec

	pid      int
	hostname string

	log *zap.SugaredLogger
}

func New(opts ...Opt) (ret *Dispatcher, err error) {
	defer Wrap(&err, "create a dispatcher")

	d := &Dispatcher{
		specs: map[*config.WatchSpec]*runtimeSpec{},
		pid:   os.Getpid(),
	}

	d.hostname, _ = os.Hostname()

	for i := range opts {
		d, err = opts[i](d)
		if err != nil {
			return
		}
	}

	if d.log == nil {
		d.log = zap.NewNop().Sugar()
	}

	if d.tree == nil {
		err = ErrExtenderMissing
		return
	}

	ret = d
	return
}

type Opt func(d *Dispatcher) (ret *Dispatcher, err error)

func WithExtender(t Extender) Opt {
	return func(d *Dispatcher) (ret *Dispatcher, err error) {
		if t == nil {
			err = ErrExtenderMissing
			return
		}

		d.tree = t
		ret = d
		return
	}
}

func WithLogger(log *zap.SugaredLogger) Opt {
	return func(d *Dispatcher) (ret *Dispatcher, err error) {
		d.log = log
		ret = d
		return
	}
}

// Register binds the runtime state of one watch spec: its compiled
// filter chain and its constructed action list.
func (d *Dispatcher) Register(
	watchlist string,
	spec *config.WatchSpec,
	chain *filter.Chain,
	acts []actions.Action,
) {
	d.specs[spec] = &runtimeSpec{
		watchlist: watchlist,
		chain:     chain,
		acts:      acts,
	}
}
