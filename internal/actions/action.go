// Package actions provides the closed set of action implementations
// behind the uniform execute-with-context contract. Action types are
// resolved through a fixed registry; there is no dynamic loading.
package actions

import (
	"io"

	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"

	. "github.com/black-desk/lib/go/errwrap"
	"go.uber.org/zap"
)

// Action is the contract every action satisfies. Execute must never
// terminate the process; failures come back as errors and stay local
// to the one invocation.
type Action interface {
	Execute(ectx *types.EventContext) error
}

// Env carries the watchlist-level context an action constructor may
// need beyond its own spec.
type Env struct {
	Watchlist string
	Contacts  []string
	Defaults  config.Defaults

	// Out overrides the console action destination; nil means stdout.
	Out io.Writer

	Log *zap.SugaredLogger
}

type constructor func(spec *config.ActionSpec, env Env) (Action, error)

var registry = map[string]constructor{
	"console": newConsole,
	"syslog":  newSyslog,
	"email":   newEmail,
	"command": newCommand,
}

// New builds one action from its spec. Unknown types cannot pass
// configuration validation; the branch stays as a defensive check.
func New(spec *config.ActionSpec, env Env) (ret Action, err error) {
	defer Wrap(&err, "construct %s action", spec.Type)

	if env.Log == nil {
		env.Log = zap.NewNop().Sugar()
	}

	ctor := registry[spec.Type]
	if ctor == nil {
		err = ErrUnknownActionType
		return
	}

	ret, err = ctor(spec, env)
	return
}

// Build constructs the whole ordered action list of a watch spec.
func Build(specs []*config.ActionSpec, env Env) (ret []Action, err error) {
	defer Wrap(&err, "construct action list")

	acts := make([]Action, 0, len(specs))
	for i := range specs {
		var a Action
		a, err = New(specs[i], env)
		if err != nil {
			return
		}

		acts = append(acts, a)
	}

	ret = acts
	return
}

// Invoke runs one action with the isolation the dispatch contract
// demands: an error return or a panic is logged and goes no further.
func Invoke(log *zap.SugaredLogger, a Action, ectx *types.EventContext) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		log.Errorw("Action panicked.",
			"event", ectx.Event,
			"path", ectx.FullPath,
			"panic", r,
		)
	}()

	err := a.Execute(ectx)
	if err == nil {
		return
	}

	log.Errorw("Action failed.",
		"event", ectx.Event,
		"path", ectx.FullPath,
		"error", err,
	)
}
