package dirwatchd_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"dirwatchd/pkg/dirwatchd"
	"dirwatchd/pkg/dirwatchd/config"
	"dirwatchd/pkg/types"

	. "github.com/black-desk/lib/go/gomega-helper"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func loadConfig(content string) *config.Config {
	GinkgoHelper()

	cfg, err := config.New(config.WithContent([]byte(content)))
	Expect(err).To(BeNil())
	return cfg
}

func simpleConfig(path string) *config.Config {
	return loadConfig(fmt.Sprintf(`
version: 1
watchlists:
  - name: wl
    watches:
      - path: %s
        events: [create, delete]
        actions:
          - type: console
`, path))
}

var _ = Describe("Daemon core", func() {
	var root string

	BeforeEach(func() {
		root = GinkgoT().TempDir()
	})

	It("should require a configuration.", func() {
		_, err := dirwatchd.New()
		Expect(err).To(MatchErr(dirwatchd.ErrConfigMissing))
	})

	It("should install the configured watches at construction.", func() {
		d, err := dirwatchd.New(dirwatchd.WithConfig(simpleConfig(root)))
		Expect(err).To(BeNil())
		Expect(d.WatchedPaths()).To(Equal([]string{root}))
	})

	It("should install the whole subtree for recursive watches.", func() {
		for _, dir := range []string{"a", "b"} {
			Expect(os.Mkdir(filepath.Join(root, dir), 0o755)).To(Succeed())
		}

		cfg := loadConfig(fmt.Sprintf(`
version: 1
watchlists:
  - name: wl
    watches:
      - path: %s
        recursive: true
        events: [create]
        actions:
          - type: console
`, root))

		d, err := dirwatchd.New(dirwatchd.WithConfig(cfg))
		Expect(err).To(BeNil())
		Expect(d.WatchedPaths()).To(Equal([]string{
			root,
			filepath.Join(root, "a"),
			filepath.Join(root, "b"),
		}))
	})

	It("should skip disabled watchlists.", func() {
		cfg := loadConfig(fmt.Sprintf(`
version: 1
watchlists:
  - name: off
    enabled: false
    watches:
      - path: %s
        events: [create]
        actions:
          - type: console
`, root))

		d, err := dirwatchd.New(dirwatchd.WithConfig(cfg))
		Expect(err).To(BeNil())
		Expect(d.WatchedPaths()).To(BeEmpty())
	})

	It("should skip unwatchable paths instead of failing startup.", func() {
		d, err := dirwatchd.New(dirwatchd.WithConfig(
			simpleConfig(filepath.Join(root, "does-not-exist"))))
		Expect(err).To(BeNil())
		Expect(d.WatchedPaths()).To(BeEmpty())
	})

	Context("reloading", func() {
		var d *dirwatchd.Daemon

		BeforeEach(func() {
			var err error
			d, err = dirwatchd.New(dirwatchd.WithConfig(simpleConfig(root)))
			Expect(err).To(BeNil())
		})

		It("should swap to the new watch set.", func() {
			other := GinkgoT().TempDir()

			Expect(d.Reload(simpleConfig(other))).To(BeNil())
			Expect(d.WatchedPaths()).To(Equal([]string{other}))
		})

		It("should allow reloading the same path set.", func() {
			Expect(d.Reload(simpleConfig(root))).To(BeNil())
			Expect(d.WatchedPaths()).To(Equal([]string{root}))
		})

		It("should reject a nil configuration and keep watching.", func() {
			Expect(d.Reload(nil)).To(MatchErr(dirwatchd.ErrConfigMissing))
			Expect(d.WatchedPaths()).To(Equal([]string{root}))
		})

		It("should keep the old generation when construction fails.", func() {
			// Built by hand so the broken filter slips past load-time
			// validation and fails during generation construction.
			broken := &config.Config{
				Version: "1",
				Watchlists: []*config.Watchlist{{
					Name: "wl",
					Watches: []*config.WatchSpec{{
						Path:   root,
						Events: []types.EventKind{types.KindCreate},
						Filter: config.Filter{Include: "([unclosed"},
						Actions: []*config.ActionSpec{
							{Type: "console"},
						},
					}},
				}},
			}

			Expect(d.Reload(broken)).NotTo(BeNil())
			Expect(d.WatchedPaths()).To(Equal([]string{root}))
		})

		It("should coalesce queued reload requests without blocking.", func() {
			for range 8 {
				d.TriggerReload()
			}
		})
	})
})

// liveConfig runs a command action that drops one marker per event
// into an unwatched directory, so actions never feed back into the
// watched tree.
func liveConfig(watch, markers string) *config.Config {
	return loadConfig(fmt.Sprintf(`
version: 1
watchlists:
  - name: live
    watches:
      - path: %s
        recursive: true
        events: [create]
        actions:
          - type: command
            command: "touch %s/%%file%%.seen"
`, watch, markers))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var _ = Describe("Daemon core against live filesystem activity", func() {
	var (
		root    string
		markers string
		cancel  context.CancelFunc
		done    chan error
	)

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		markers = GinkgoT().TempDir()
	})

	AfterEach(func() {
		cancel()
		Eventually(done, "5s").Should(Receive())
	})

	startDaemon := func(d *dirwatchd.Daemon) {
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())

		done = make(chan error, 1)
		go func() {
			done <- d.Run(ctx)
		}()
	}

	It("should run actions for created files.", func() {
		d, err := dirwatchd.New(
			dirwatchd.WithConfig(liveConfig(root, markers)))
		Expect(err).To(BeNil())

		startDaemon(d)

		Expect(os.WriteFile(
			filepath.Join(root, "a.txt"), nil, 0o644)).To(Succeed())

		Eventually(func() bool {
			return fileExists(filepath.Join(markers, "a.txt.seen"))
		}, "5s", "50ms").Should(BeTrue())
	})

	It("should see files in directories created while running.", func() {
		d, err := dirwatchd.New(
			dirwatchd.WithConfig(liveConfig(root, markers)))
		Expect(err).To(BeNil())

		startDaemon(d)

		sub := filepath.Join(root, "sub")
		Expect(os.Mkdir(sub, 0o755)).To(Succeed())

		// A file written before the new watch lands is legitimately
		// missed, so keep producing fresh files until one is seen.
		n := 0
		Eventually(func() bool {
			name := fmt.Sprintf("f%d.txt", n)
			n++

			err := os.WriteFile(filepath.Join(sub, name), nil, 0o644)
			Expect(err).To(BeNil())

			for i := range n {
				if fileExists(filepath.Join(
					markers, fmt.Sprintf("f%d.txt.seen", i))) {
					return true
				}
			}
			return false
		}, "5s", "100ms").Should(BeTrue())
	})

	It("should deliver events after a reload revives an empty daemon.", func() {
		var next *config.Config

		d, err := dirwatchd.New(
			dirwatchd.WithConfig(
				simpleConfig(filepath.Join(root, "missing"))),
			dirwatchd.WithConfigSource(func() (*config.Config, error) {
				return next, nil
			}),
		)
		Expect(err).To(BeNil())
		Expect(d.WatchedPaths()).To(BeEmpty())

		startDaemon(d)

		next = liveConfig(root, markers)
		d.TriggerReload()

		// The reload lands asynchronously; keep producing fresh files
		// until one makes it through the pipeline.
		n := 0
		Eventually(func() bool {
			name := fmt.Sprintf("r%d.txt", n)
			n++

			err := os.WriteFile(filepath.Join(root, name), nil, 0o644)
			Expect(err).To(BeNil())

			for i := range n {
				if fileExists(filepath.Join(
					markers, fmt.Sprintf("r%d.txt.seen", i))) {
					return true
				}
			}
			return false
		}, "5s", "100ms").Should(BeTrue())
	})
})

func TestDirwatchd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Daemon Core Suite")
}
