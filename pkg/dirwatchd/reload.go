package dirwatchd

import (
	"dirwatchd/pkg/dirwatchd/config"

	. "github.com/black-desk/lib/go/errwrap"
)

// Reload replaces the active generation with one built from cfg.
//
// All-or-nothing from the perspective of the running system: every
// fallible piece of the new generation (filters, actions) is built
// before the old generation is touched, and a construction failure
// returns with the old generation fully active and unchanged. Only
// after construction succeeds are the old watches cancelled and the
// new ones installed; failures past that point are per-path install
// errors, which are logged and skipped just as at startup.
func (d *Daemon) Reload(cfg *config.Config) (err error) {
	defer Wrap(&err, "reload configuration")

	if cfg == nil {
		err = ErrConfigMissing
		return
	}

	var next *generation
	next, err = d.buildGeneration(cfg)
	if err != nil {
		return
	}

	old := d.gen

	old.tree.ClearAll()
	next.install(d.log)

	d.gen = next
	d.cfg = cfg

	d.log.Infow("Configuration reloaded.",
		"generation", next.tree.Generation(),
		"watched", next.tree.Len(),
	)

	return
}

// handleReloadRequest services one pending reload on the event loop.
func (d *Daemon) handleReloadRequest() {
	if d.source == nil {
		d.log.Warnw("Reload requested but no configuration source is set.")
		return
	}

	cfg, err := d.source()
	if err != nil {
		d.log.Errorw("Failed to load new configuration, keeping the current one.",
			"error", err,
		)
		return
	}

	err = d.Reload(cfg)
	if err != nil {
		d.log.Errorw("Reload failed, the previous generation stays active.",
			"error", err,
		)
	}
}
