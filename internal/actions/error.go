package actions

import "errors"

var (
	ErrUnknownActionType = errors.New("unknown action type")
	ErrNoRecipients      = errors.New("no recipients for email action")
	ErrEmptyCommand      = errors.New("command line expanded to nothing")
)
