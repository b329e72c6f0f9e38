package watchtree

import (
	"errors"
	"io/fs"
	"path/filepath"

	"dirwatchd/pkg/dirwatchd/config"

	. "github.com/black-desk/lib/go/errwrap"
	fsevents "github.com/tywkeene/go-fsevents"
)

func (t *Tree) addWatch(
	path string, watchlist string,
	rawMask, actionMask uint32,
	spec *config.WatchSpec,
) (ret *Entry, err error) {
	defer Wrap(&err, "add watch for %s", path)

	if _, dup := t.entries[path]; dup {
		err = ErrAlreadyWatched
		return
	}

	desc, err := t.watcher.AddDescriptor(path, rawMask)
	if err != nil {
		return
	}

	// Each descriptor is started individually. The backend's StartAll
	// aborts at the first descriptor that is already running, so it
	// cannot start descriptors added after the first install.
	err = desc.Start()
	if err != nil {
		removeErr := t.watcher.RemoveDescriptor(path)
		if removeErr != nil {
			t.log.Debugw("Failed to drop unstarted watch descriptor.",
				"path", path,
				"error", removeErr,
			)
		}
		return
	}

	entry := &Entry{
		Path:       path,
		Desc:       desc,
		Watchlist:  watchlist,
		Generation: t.generation,
		RawMask:    rawMask,
		ActionMask: actionMask,
		Spec:       spec,
	}

	t.entries[path] = entry
	ret = entry
	return
}

// installSubdirs walks the subtree below root synchronously and adds
// one watch per directory. Very large trees delay startup and reload
// proportionally; the walk stays synchronous on purpose.
func (t *Tree) installSubdirs(
	root string, watchlist string,
	rawMask, actionMask uint32,
	spec *config.WatchSpec,
) []*Entry {
	var entries []*Entry

	walkErr := filepath.WalkDir(root,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				t.log.Errorw("Failed to enumerate directory, skipping.",
					"path", path,
					"error", err,
				)
				return nil
			}

			if !d.IsDir() || path == root {
				return nil
			}

			entry, err := t.addWatch(
				path, watchlist, rawMask, actionMask, spec)
			if err != nil {
				t.log.Errorw("Failed to watch subdirectory, skipping.",
					"path", path,
					"error", err,
				)
				return nil
			}

			entries = append(entries, entry)
			return nil
		})
	if walkErr != nil {
		t.log.Errorw("Failed to walk watch subtree.",
			"path", root,
			"error", walkErr,
		)
	}

	return entries
}

// release stops the kernel watch of entry, then unregisters its
// descriptor. The backend's RemoveDescriptor does not reliably stop a
// running descriptor on its own, so the watch must be stopped
// explicitly or it stays registered in the kernel.
func (t *Tree) release(entry *Entry) {
	err := entry.Desc.Stop()
	if err != nil && !errors.Is(err, fsevents.ErrDescNotRunning) {
		t.log.Debugw("Failed to stop watch descriptor.",
			"path", entry.Path,
			"error", err,
		)
	}

	err = t.watcher.RemoveDescriptor(entry.Path)
	if err != nil {
		t.log.Debugw("Failed to remove watch descriptor.",
			"path", entry.Path,
			"error", err,
		)
	}
}
