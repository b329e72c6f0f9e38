package config

import (
	"fmt"
	"regexp"

	. "github.com/black-desk/lib/go/errwrap"
	"github.com/go-playground/validator/v10"
)

func (c *Config) check() (err error) {
	defer Wrap(&err, "check configuration")

	err = validator.New().Struct(c)
	if err != nil {
		err = fmt.Errorf("validator: %w", err)
		return
	}

	for i := range c.StartupActions {
		err = c.checkAction(c.StartupActions[i], nil)
		if err != nil {
			return
		}
	}

	for _, list := range c.Watchlists {
		if !list.IsEnabled() {
			c.log.Infow("Watchlist disabled.",
				"watchlist", list.Name,
			)
		}

		for _, watch := range list.Watches {
			err = watch.Filter.check()
			if err != nil {
				Wrap(&err,
					"watchlist %q watch %q",
					list.Name, watch.Path,
				)
				return
			}

			for i := range watch.Actions {
				err = c.checkAction(watch.Actions[i], list)
				if err != nil {
					Wrap(&err,
						"watchlist %q watch %q",
						list.Name, watch.Path,
					)
					return
				}
			}
		}
	}

	return
}

// check compiles both patterns once to reject invalid ones at load
// time. The compiled form used at dispatch time is built again by the
// filter chain; compilation is cheap and keeping the config layer free
// of runtime state is worth the duplication.
func (f *Filter) check() (err error) {
	defer Wrap(&err, "check filter patterns")

	if f.Include != "" {
		_, err = regexp.Compile(f.Include)
		if err != nil {
			return
		}
	}

	if f.Exclude != "" {
		_, err = regexp.Compile(f.Exclude)
		if err != nil {
			return
		}
	}

	return
}

// checkAction verifies the parts of an action spec that the validator
// tags cannot express. list is nil for startup actions.
func (c *Config) checkAction(spec *ActionSpec, list *Watchlist) (err error) {
	if spec.Type != "email" {
		return
	}

	if len(spec.Recipients) != 0 {
		return
	}

	if list != nil && len(list.Contacts) != 0 {
		return
	}

	if c.Defaults.Contact != "" {
		return
	}

	err = ErrNoEmailRecipients
	return
}
