package actions

import (
	"fmt"
	"io"
	"os"

	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"

	"github.com/fatih/color"
)

const defaultConsoleFormat = "[%timestamp%] %watchlist%: %event% %fullpath%"

type consoleAction struct {
	format  string
	colored bool
	out     io.Writer
	paint   *color.Color
}

func newConsole(spec *config.ActionSpec, env Env) (Action, error) {
	a := &consoleAction{
		format:  spec.Format,
		colored: !spec.NoColor,
		out:     env.Out,
		paint:   color.New(color.FgCyan),
	}

	if a.format == "" {
		a.format = defaultConsoleFormat
	}

	if a.out == nil {
		a.out = os.Stdout
	}

	return a, nil
}

func (a *consoleAction) Execute(ectx *types.EventContext) error {
	line := ectx.Expand(a.format)

	if a.colored {
		_, err := a.paint.Fprintln(a.out, line)
		return err
	}

	_, err := fmt.Fprintln(a.out, line)
	return err
}
