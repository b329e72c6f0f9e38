package actions

import (
	"fmt"
	"net/smtp"
	"strings"

	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"

	. "github.com/black-desk/lib/go/errwrap"
)

const (
	defaultSMTPServer   = "localhost:25"
	defaultEmailFrom    = "dirwatchd@localhost"
	defaultEmailSubject = "[%watchlist%] %event% %fullpath%"
)

type emailAction struct {
	server  string
	from    string
	to      []string
	subject string
}

func newEmail(spec *config.ActionSpec, env Env) (ret Action, err error) {
	a := &emailAction{
		server:  env.Defaults.SMTPServer,
		from:    env.Defaults.EmailFrom,
		to:      spec.Recipients,
		subject: spec.Subject,
	}

	if len(a.to) == 0 {
		a.to = env.Contacts
	}
	if len(a.to) == 0 && env.Defaults.Contact != "" {
		a.to = []string{env.Defaults.Contact}
	}
	if len(a.to) == 0 {
		err = ErrNoRecipients
		return
	}

	if a.server == "" {
		a.server = defaultSMTPServer
	}
	if a.from == "" {
		a.from = defaultEmailFrom
	}
	if a.subject == "" {
		a.subject = defaultEmailSubject
	}

	ret = a
	return
}

func (a *emailAction) Execute(ectx *types.EventContext) (err error) {
	defer Wrap(&err, "send notification mail")

	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", a.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(a.to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", ectx.Expand(a.subject))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Event:     %s\r\n", ectx.Event)
	fmt.Fprintf(&b, "Path:      %s\r\n", ectx.FullPath)
	fmt.Fprintf(&b, "Watchlist: %s\r\n", ectx.Watchlist)
	fmt.Fprintf(&b, "Host:      %s (pid %d)\r\n", ectx.Hostname, ectx.PID)
	fmt.Fprintf(&b, "Time:      %s\r\n", ectx.Expand("%timestamp%"))

	err = smtp.SendMail(a.server, nil, a.from, a.to, []byte(b.String()))
	return
}
