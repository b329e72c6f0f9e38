package fswatch

import "errors"

var (
	ErrLoggerMissing = errors.New("logger is missing")
)
