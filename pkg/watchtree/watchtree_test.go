package watchtree_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dirwatchd/internal/fswatch"
	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"
	"dirwatchd/pkg/watchtree"

	. "github.com/black-desk/lib/go/gomega-helper"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	fsevents "github.com/tywkeene/go-fsevents"
)

var _ = Describe("Watch tree", func() {
	var (
		watcher *fswatch.Watcher
		tree    *watchtree.Tree
		root    string
	)

	BeforeEach(func() {
		var err error
		watcher, err = fswatch.New()
		Expect(err).To(BeNil())

		tree, err = watchtree.New(watchtree.WithWatcher(watcher))
		Expect(err).To(BeNil())

		root = GinkgoT().TempDir()
	})

	AfterEach(func() {
		tree.ClearAll()
	})

	newSpec := func(recursive bool) *config.WatchSpec {
		return &config.WatchSpec{
			Path:      root,
			Recursive: recursive,
			Events:    []types.EventKind{types.KindCreate, types.KindDelete},
		}
	}

	It("should require a watcher at construction.", func() {
		_, err := watchtree.New()
		Expect(err).To(MatchErr(watchtree.ErrWatcherMissing))
	})

	It("should assign increasing generation numbers.", func() {
		next, err := watchtree.New(watchtree.WithWatcher(watcher))
		Expect(err).To(BeNil())
		Expect(next.Generation()).To(BeNumerically(">", tree.Generation()))
	})

	Context("with a non-recursive spec", func() {
		It("should install exactly one entry.", func() {
			Expect(os.MkdirAll(filepath.Join(root, "sub"), 0o755)).To(Succeed())

			entries, err := tree.Install("wl", newSpec(false))
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(1))
			Expect(tree.Len()).To(Equal(1))
			Expect(tree.Paths()).To(Equal([]string{root}))
		})
	})

	Context("with a recursive spec", func() {
		BeforeEach(func() {
			for _, dir := range []string{"a", "b", filepath.Join("b", "c")} {
				Expect(os.MkdirAll(filepath.Join(root, dir), 0o755)).To(Succeed())
			}
		})

		It("should install one entry per directory.", func() {
			entries, err := tree.Install("wl", newSpec(true))
			Expect(err).To(BeNil())
			Expect(entries).To(HaveLen(4))
			Expect(tree.Paths()).To(Equal([]string{
				root,
				filepath.Join(root, "a"),
				filepath.Join(root, "b"),
				filepath.Join(root, "b", "c"),
			}))
		})

		It("should share spec and masks across its entries.", func() {
			spec := newSpec(true)

			entries, err := tree.Install("wl", spec)
			Expect(err).To(BeNil())

			for _, entry := range entries {
				Expect(entry.Spec).To(BeIdenticalTo(spec))
				Expect(entry.Watchlist).To(Equal("wl"))
				Expect(entry.RawMask).To(Equal(entries[0].RawMask))
				Expect(entry.ActionMask).To(Equal(spec.EventMask()))
				Expect(entry.Generation).To(Equal(tree.Generation()))
			}
		})
	})

	It("should start every descriptor it installs.", func() {
		Expect(os.MkdirAll(filepath.Join(root, "a"), 0o755)).To(Succeed())

		entries, err := tree.Install("wl", newSpec(true))
		Expect(err).To(BeNil())

		for _, entry := range entries {
			Expect(entry.Desc.Running).To(BeTrue())
		}
	})

	It("should start the descriptors of a second install as well.", func() {
		_, err := tree.Install("wl", newSpec(false))
		Expect(err).To(BeNil())

		other := GinkgoT().TempDir()
		second := newSpec(false)
		second.Path = other

		entries, err := tree.Install("wl", second)
		Expect(err).To(BeNil())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Desc.Running).To(BeTrue())
	})

	It("should fail installing over an existing watch.", func() {
		_, err := tree.Install("wl", newSpec(false))
		Expect(err).To(BeNil())

		_, err = tree.Install("wl", newSpec(false))
		Expect(err).To(MatchErr(watchtree.ErrAlreadyWatched))
	})

	It("should fail installing a missing root.", func() {
		spec := newSpec(false)
		spec.Path = filepath.Join(root, "does-not-exist")

		_, err := tree.Install("wl", spec)
		Expect(err).NotTo(BeNil())
		Expect(tree.Len()).To(BeZero())
	})

	It("should extend onto a new subdirectory with inherited masks.", func() {
		entries, err := tree.Install("wl", newSpec(true))
		Expect(err).To(BeNil())
		parent := entries[0]

		sub := filepath.Join(root, "fresh")
		Expect(os.Mkdir(sub, 0o755)).To(Succeed())

		entry, err := tree.ExtendOnCreate(parent, sub)
		Expect(err).To(BeNil())
		Expect(entry.Path).To(Equal(sub))
		Expect(entry.RawMask).To(Equal(parent.RawMask))
		Expect(entry.ActionMask).To(Equal(parent.ActionMask))
		Expect(entry.Spec).To(BeIdenticalTo(parent.Spec))
		Expect(entry.Desc.Running).To(BeTrue())
		Expect(tree.Len()).To(Equal(2))
	})

	It("should start every dynamically extended descriptor.", func() {
		entries, err := tree.Install("wl", newSpec(true))
		Expect(err).To(BeNil())
		parent := entries[0]

		for i := range 20 {
			sub := filepath.Join(root, fmt.Sprintf("sub%02d", i))
			Expect(os.Mkdir(sub, 0o755)).To(Succeed())

			entry, err := tree.ExtendOnCreate(parent, sub)
			Expect(err).To(BeNil())
			Expect(entry.Desc.Running).To(BeTrue())
		}
	})

	It("should cancel a single entry.", func() {
		entries, err := tree.Install("wl", newSpec(false))
		Expect(err).To(BeNil())

		tree.Cancel(entries[0])
		Expect(tree.Len()).To(BeZero())
		Expect(entries[0].Desc.Running).To(BeFalse())

		// Cancelling twice is harmless.
		tree.Cancel(entries[0])
		Expect(tree.Len()).To(BeZero())
	})

	It("should clear every entry at once.", func() {
		Expect(os.MkdirAll(filepath.Join(root, "a"), 0o755)).To(Succeed())

		_, err := tree.Install("wl", newSpec(true))
		Expect(err).To(BeNil())
		Expect(tree.Len()).To(BeNumerically(">", 1))

		tree.ClearAll()
		Expect(tree.Len()).To(BeZero())
		Expect(tree.Paths()).To(BeEmpty())
	})

	It("should release the kernel watches it cancels.", func() {
		Expect(os.MkdirAll(filepath.Join(root, "a"), 0o755)).To(Succeed())

		before := kernelInotifyWatches()

		entries, err := tree.Install("wl", newSpec(true))
		Expect(err).To(BeNil())
		Expect(kernelInotifyWatches()).To(Equal(before + len(entries)))

		tree.ClearAll()
		Expect(kernelInotifyWatches()).To(Equal(before))
	})

	It("should resolve events back to the owning entry.", func() {
		entries, err := tree.Install("wl", newSpec(false))
		Expect(err).To(BeNil())

		ev := &fsevents.FsEvent{Path: root, Descriptor: entries[0].Desc}

		entry, ok := tree.Resolve(ev)
		Expect(ok).To(BeTrue())
		Expect(entry).To(BeIdenticalTo(entries[0]))
	})

	It("should reject nil and descriptor-less events.", func() {
		_, ok := tree.Resolve(nil)
		Expect(ok).To(BeFalse())

		_, ok = tree.Resolve(&fsevents.FsEvent{Path: root})
		Expect(ok).To(BeFalse())
	})

	It("should not resolve events from a superseded generation.", func() {
		entries, err := tree.Install("wl", newSpec(false))
		Expect(err).To(BeNil())

		tree.ClearAll()

		next, err := watchtree.New(watchtree.WithWatcher(watcher))
		Expect(err).To(BeNil())

		_, err = next.Install("wl", newSpec(false))
		Expect(err).To(BeNil())
		defer next.ClearAll()

		stale := &fsevents.FsEvent{Path: root, Descriptor: entries[0].Desc}

		_, ok := next.Resolve(stale)
		Expect(ok).To(BeFalse())
	})
})

// kernelInotifyWatches counts the inotify watches registered by this
// process, across all its inotify descriptors.
func kernelInotifyWatches() int {
	GinkgoHelper()

	fds, err := os.ReadDir("/proc/self/fdinfo")
	Expect(err).To(BeNil())

	count := 0
	for _, fd := range fds {
		data, err := os.ReadFile(
			filepath.Join("/proc/self/fdinfo", fd.Name()))
		if err != nil {
			// The descriptor may have vanished between ReadDir and
			// ReadFile.
			continue
		}

		count += strings.Count(string(data), "inotify wd:")
	}

	return count
}

func TestWatchTree(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Watch Tree Suite")
}
