package dispatch

import "errors"

var (
	ErrExtenderMissing = errors.New("watch tree extender is missing")
)
