package actions

import (
	"log/syslog"

	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"

	. "github.com/black-desk/lib/go/errwrap"
)

const defaultSyslogTag = "dirwatchd"

type syslogAction struct {
	w      *syslog.Writer
	format string
}

func newSyslog(spec *config.ActionSpec, env Env) (ret Action, err error) {
	defer Wrap(&err, "open syslog")

	tag := spec.Tag
	if tag == "" {
		tag = defaultSyslogTag
	}

	var w *syslog.Writer
	w, err = syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, tag)
	if err != nil {
		return
	}

	a := &syslogAction{
		w:      w,
		format: spec.Format,
	}

	if a.format == "" {
		a.format = "%watchlist%: %event% %fullpath%"
	}

	ret = a
	return
}

func (a *syslogAction) Execute(ectx *types.EventContext) error {
	return a.w.Info(ectx.Expand(a.format))
}
