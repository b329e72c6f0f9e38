package types

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// StartupLabel is the synthetic event label passed to startup actions.
const StartupLabel = "STARTUP"

// EventContext carries everything an action may want to know about one
// dispatched event. It is constructed once per dispatch and shared by
// every action in the dispatch; actions must treat it as read only.
type EventContext struct {
	Event     string
	File      string
	Dir       string
	FullPath  string
	Time      time.Time
	Watchlist string
	PID       int
	Hostname  string
}

// NewEventContext fills in the process-level fields.
func NewEventContext(label, file, dir, fullPath, watchlist string) *EventContext {
	hostname, _ := os.Hostname()

	return &EventContext{
		Event:     label,
		File:      file,
		Dir:       dir,
		FullPath:  fullPath,
		Time:      time.Now(),
		Watchlist: watchlist,
		PID:       os.Getpid(),
		Hostname:  hostname,
	}
}

// StartupContext returns the synthetic context used for startup
// actions. The file and path fields stay empty.
func StartupContext() *EventContext {
	return NewEventContext(StartupLabel, "", "", "", "")
}

// Expand substitutes the placeholder variables of tpl.
func (c *EventContext) Expand(tpl string) string {
	r := strings.NewReplacer(
		"%file%", c.File,
		"%path%", c.Dir,
		"%fullpath%", c.FullPath,
		"%event%", c.Event,
		"%timestamp%", c.Time.Format(time.RFC3339),
		"%watchlist%", c.Watchlist,
		"%pid%", strconv.Itoa(c.PID),
		"%hostname%", c.Hostname,
	)

	return r.Replace(tpl)
}
