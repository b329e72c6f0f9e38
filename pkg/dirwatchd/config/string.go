package config

import (
	"fmt"
	"strings"
)

func (w *WatchSpec) String() string {
	kinds := make([]string, len(w.Events))
	for i := range w.Events {
		kinds[i] = string(w.Events[i])
	}

	mode := "watch"
	if w.Recursive {
		mode = "recursive watch"
	}

	return fmt.Sprintf("%s [ %s | %s | %d action(s) ]",
		mode, w.Path, strings.Join(kinds, ","), len(w.Actions))
}

func (a *ActionSpec) String() string {
	switch a.Type {
	case "command":
		return fmt.Sprintf("action [ command | %s ]", a.Command)
	default:
		return fmt.Sprintf("action [ %s ]", a.Type)
	}
}
