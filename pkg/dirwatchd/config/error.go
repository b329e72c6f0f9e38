package config

import (
	"errors"
)

var (
	ErrContentMissing    = errors.New("configuration content is missing")
	ErrLoggerMissing     = errors.New("logger is missing")
	ErrNoEmailRecipients = errors.New("email action has no recipients, no watchlist contacts and no default contact")
)
