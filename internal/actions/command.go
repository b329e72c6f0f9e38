package actions

import (
	"context"
	"os/exec"
	"time"

	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"

	. "github.com/black-desk/lib/go/errwrap"
	"github.com/kballard/go-shellquote"
	"go.uber.org/zap"
)

const defaultCommandTimeout = 10 * time.Second

type commandAction struct {
	command string
	async   bool
	timeout time.Duration
	log     *zap.SugaredLogger
}

func newCommand(spec *config.ActionSpec, env Env) (Action, error) {
	a := &commandAction{
		command: spec.Command,
		async:   spec.Async,
		timeout: time.Duration(spec.Timeout),
		log:     env.Log,
	}

	if a.timeout == 0 {
		a.timeout = defaultCommandTimeout
	}

	return a, nil
}

// Execute expands the command template, splits it into argv and runs
// it. Synchronous runs block the whole monitoring loop for up to the
// timeout; that is the documented trade-off of synchronous commands,
// not an accident. Asynchronous runs start the process and reap its
// exit status from a background goroutine.
func (a *commandAction) Execute(ectx *types.EventContext) (err error) {
	defer Wrap(&err, "run command for %s", ectx.Event)

	line := ectx.Expand(a.command)

	var argv []string
	argv, err = shellquote.Split(line)
	if err != nil {
		Wrap(&err, "split command line %q", line)
		return
	}

	if len(argv) == 0 {
		err = ErrEmptyCommand
		return
	}

	if a.async {
		err = a.startAsync(argv)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	err = exec.CommandContext(ctx, argv[0], argv[1:]...).Run()
	return
}

func (a *commandAction) startAsync(argv []string) (err error) {
	cmd := exec.Command(argv[0], argv[1:]...)

	err = cmd.Start()
	if err != nil {
		return
	}

	go func() {
		waitErr := cmd.Wait()
		if waitErr != nil {
			a.log.Errorw("Asynchronous command failed.",
				"command", argv[0],
				"error", waitErr,
			)
			return
		}

		a.log.Debugw("Asynchronous command finished.",
			"command", argv[0],
		)
	}()

	return
}
