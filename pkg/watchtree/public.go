package watchtree

import (
	"sort"

	"dirwatchd/pkg/dirwatchd/config"

	. "github.com/black-desk/lib/go/errwrap"
	fsevents "github.com/tywkeene/go-fsevents"
	"golang.org/x/sys/unix"
)

func (t *Tree) Generation() uint64 {
	return t.generation
}

// Install registers spec.Path and, for recursive specs, every
// directory currently under it. A subdirectory that cannot be watched
// is logged and skipped; only a failure on the root itself is returned
// to the caller.
//
// Known race, accepted by design: a file written into a brand-new
// subdirectory before its watch is installed is missed.
func (t *Tree) Install(watchlist string, spec *config.WatchSpec) (ret []*Entry, err error) {
	defer Wrap(&err, "install watch on %s", spec.Path)

	actionMask := spec.EventMask()
	rawMask := actionMask
	if spec.Recursive {
		rawMask |= unix.IN_CREATE
	}

	var root *Entry
	root, err = t.addWatch(spec.Path, watchlist, rawMask, actionMask, spec)
	if err != nil {
		return
	}

	entries := []*Entry{root}

	if spec.Recursive {
		entries = append(entries,
			t.installSubdirs(spec.Path, watchlist, rawMask, actionMask, spec)...)
	}

	ret = entries

	t.log.Infow("Watch installed.",
		"watchlist", watchlist,
		"path", spec.Path,
		"recursive", spec.Recursive,
		"entries", len(entries),
	)

	return
}

// ExtendOnCreate installs exactly one additional watch for a directory
// that appeared under an active recursive watch, inheriting the masks
// of the originating entry.
func (t *Tree) ExtendOnCreate(parent *Entry, dir string) (ret *Entry, err error) {
	defer Wrap(&err, "extend watch onto %s", dir)

	var entry *Entry
	entry, err = t.addWatch(dir, parent.Watchlist,
		parent.RawMask, parent.ActionMask, parent.Spec)
	if err != nil {
		return
	}

	ret = entry

	t.log.Debugw("Watch tree extended.",
		"watchlist", parent.Watchlist,
		"path", dir,
	)

	return
}

// Cancel releases the low-level watch of entry and drops it from the
// tree.
func (t *Tree) Cancel(entry *Entry) {
	if t.entries[entry.Path] != entry {
		return
	}

	t.release(entry)

	delete(t.entries, entry.Path)
}

// ClearAll cancels every entry. Used before a reload swap and at
// shutdown.
func (t *Tree) ClearAll() {
	for _, entry := range t.entries {
		t.release(entry)
	}

	t.entries = map[string]*Entry{}

	t.log.Debugw("Watch tree cleared.",
		"generation", t.generation,
	)
}

// Resolve maps a raw event back to the entry owning its descriptor.
// Events whose descriptor is not the very one this generation
// installed are rejected; a superseded generation may still have
// events queued when the swap happens.
func (t *Tree) Resolve(ev *fsevents.FsEvent) (*Entry, bool) {
	if ev == nil || ev.Descriptor == nil {
		return nil, false
	}

	entry := t.entries[ev.Descriptor.Path]
	if entry == nil || entry.Desc != ev.Descriptor {
		return nil, false
	}

	return entry, true
}

func (t *Tree) Len() int {
	return len(t.entries)
}

func (t *Tree) Paths() []string {
	paths := make([]string, 0, len(t.entries))
	for path := range t.entries {
		paths = append(paths, path)
	}

	sort.Strings(paths)
	return paths
}
