package types

import "golang.org/x/sys/unix"

// EventKind is one watch event kind as it appears in configuration.
type EventKind string

const (
	KindCreate     EventKind = "create"
	KindModify     EventKind = "modify"
	KindDelete     EventKind = "delete"
	KindMove       EventKind = "move"
	KindMoveFrom   EventKind = "move_from"
	KindMoveTo     EventKind = "move_to"
	KindCloseWrite EventKind = "close_write"
	KindAttrib     EventKind = "attrib"
	KindOpen       EventKind = "open"
	KindClose      EventKind = "close"
	KindAccess     EventKind = "access"
)

// The compound kinds cover the self-referential inotify bits as well,
// so that watching a directory for `delete` also reports the removal
// of the watched directory itself.
var kindMasks = map[EventKind]uint32{
	KindCreate:     unix.IN_CREATE,
	KindModify:     unix.IN_MODIFY,
	KindDelete:     unix.IN_DELETE | unix.IN_DELETE_SELF,
	KindMove:       unix.IN_MOVED_FROM | unix.IN_MOVED_TO | unix.IN_MOVE_SELF,
	KindMoveFrom:   unix.IN_MOVED_FROM,
	KindMoveTo:     unix.IN_MOVED_TO,
	KindCloseWrite: unix.IN_CLOSE_WRITE,
	KindAttrib:     unix.IN_ATTRIB,
	KindOpen:       unix.IN_OPEN,
	KindClose:      unix.IN_CLOSE,
	KindAccess:     unix.IN_ACCESS,
}

func (k EventKind) Valid() bool {
	_, ok := kindMasks[k]
	return ok
}

func (k EventKind) Mask() uint32 {
	return kindMasks[k]
}

// Mask returns the inotify mask covering every kind in kinds.
// Unknown kinds contribute nothing; configuration validation rejects
// them long before this point.
func Mask(kinds []EventKind) uint32 {
	var mask uint32
	for i := range kinds {
		mask |= kinds[i].Mask()
	}
	return mask
}
