package config

import (
	"time"

	"dirwatchd/pkg/types"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Version string `yaml:"version" validate:"required,eq=1"`

	// Defaults are consumed by action implementations only; the
	// dispatch core never reads them.
	Defaults Defaults `yaml:"defaults"`

	// StartupActions run once at process start with a synthetic
	// STARTUP context.
	StartupActions []*ActionSpec `yaml:"startup-actions" validate:"dive"`

	Watchlists []*Watchlist `yaml:"watchlists" validate:"required,dive"`

	log *zap.SugaredLogger `yaml:"-"`
}

type Defaults struct {
	EmailFrom  string `yaml:"email-from" validate:"omitempty,email"`
	Contact    string `yaml:"contact" validate:"omitempty,email"`
	SMTPServer string `yaml:"smtp-server" validate:"omitempty,hostname_port"`
}

type Watchlist struct {
	Name string `yaml:"name" validate:"required"`

	// Enabled defaults to true when absent. Disabled watchlists are
	// still validated, but no watches are installed for them.
	Enabled *bool `yaml:"enabled"`

	Contacts []string `yaml:"contacts" validate:"dive,email"`

	Watches []*WatchSpec `yaml:"watches" validate:"required,dive"`
}

func (w *Watchlist) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// WatchSpec describes one watch target. It is immutable once loaded;
// the watch tree and dispatcher only ever read it.
type WatchSpec struct {
	Path      string `yaml:"path" validate:"required"`
	Recursive bool   `yaml:"recursive"`

	Events []types.EventKind `yaml:"events" validate:"required,dive,oneof=create modify delete move move_from move_to close_write attrib open close access"`

	Filter Filter `yaml:"filter"`

	Actions []*ActionSpec `yaml:"actions" validate:"required,dive"`
}

// EventMask is the mask of the user-configured events. Action dispatch
// is gated on exactly this mask; the mask actually registered with the
// kernel may be broader for recursive watches.
func (w *WatchSpec) EventMask() uint32 {
	return types.Mask(w.Events)
}

// Filter holds optional include/exclude regular expressions.
type Filter struct {
	Include string `yaml:"include"`
	Exclude string `yaml:"exclude"`
}

type ActionSpec struct {
	Type string `yaml:"type" validate:"required,oneof=console syslog email command"`

	// Format is the message template for console and syslog actions.
	Format  string `yaml:"format"`
	NoColor bool   `yaml:"no-color"`

	// Tag overrides the syslog tag.
	Tag string `yaml:"tag"`

	// Subject and Recipients apply to email actions. Empty Recipients
	// fall back to the watchlist contacts, then to the default contact.
	Subject    string   `yaml:"subject"`
	Recipients []string `yaml:"recipients" validate:"dive,email"`

	// Command is the command line template for command actions.
	Command string   `yaml:"command" validate:"required_if=Type command"`
	Async   bool     `yaml:"async"`
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration with yaml decoding of strings like "30s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	err := node.Decode(&s)
	if err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(v)
	return nil
}
