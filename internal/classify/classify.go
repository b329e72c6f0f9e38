// Package classify decodes raw inotify bitmasks into the semantic
// event labels exposed to actions through %event%.
package classify

import (
	"strings"

	"golang.org/x/sys/unix"
)

// UnknownLabel is produced when no known bit is set in the mask.
const UnknownLabel = "UNKNOWN"

// labelBits is ordered; the output label preserves this order no
// matter how the kernel happened to combine the bits.
var labelBits = []struct {
	mask  uint32
	label string
}{
	{unix.IN_CREATE, "CREATE"},
	{unix.IN_MODIFY, "MODIFY"},
	{unix.IN_DELETE, "DELETE"},
	{unix.IN_DELETE_SELF, "DELETE_SELF"},
	{unix.IN_MOVED_FROM, "MOVED_FROM"},
	{unix.IN_MOVED_TO, "MOVED_TO"},
	{unix.IN_MOVE_SELF, "MOVE_SELF"},
	{unix.IN_ATTRIB, "ATTRIB"},
	{unix.IN_OPEN, "OPEN"},
	{unix.IN_ACCESS, "ACCESS"},
}

// Label renders mask as a deterministic "|"-joined label string.
func Label(mask uint32) string {
	var labels []string

	for i := range labelBits {
		if mask&labelBits[i].mask == 0 {
			continue
		}

		labels = append(labels, labelBits[i].label)
	}

	// The two specific close bits are mutually exclusive; the bare
	// CLOSE branch stays anyway in case a kernel ever reports the
	// aggregate without either specific bit.
	if mask&unix.IN_CLOSE_WRITE != 0 {
		labels = append(labels, "CLOSE_WRITE")
	} else if mask&unix.IN_CLOSE_NOWRITE != 0 {
		labels = append(labels, "CLOSE_NOWRITE")
	} else if mask&unix.IN_CLOSE != 0 {
		labels = append(labels, "CLOSE")
	}

	if len(labels) == 0 {
		return UnknownLabel
	}

	return strings.Join(labels, "|")
}
