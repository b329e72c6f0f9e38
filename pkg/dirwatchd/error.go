package dirwatchd

import "errors"

var (
	ErrConfigMissing = errors.New("config is missing")
)
