package watchtree

import "errors"

var (
	ErrWatcherMissing = errors.New("filesystem watcher is missing")
	ErrAlreadyWatched = errors.New("path is already watched in this generation")
)
