package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dirwatchd/pkg/dirwatchd"
	"dirwatchd/pkg/dirwatchd/config"

	"github.com/black-desk/lib/go/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flags struct {
	CfgPath string
}

var rootCmd = &cobra.Command{
	Use:   "dirwatchd",
	Short: "Watch directory trees and dispatch filesystem events to actions",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if err == nil {
				return
			}

			err = fmt.Errorf(
				"\n\n%w\n"+CheckDocumentString,
				err,
			)

			return
		}()
		err = rootCmdRun()
		return
	},
}

func loadConfig(log *zap.SugaredLogger) (cfg *config.Config, err error) {
	content, err := os.ReadFile(flags.CfgPath)
	if errors.Is(err, os.ErrNotExist) && flags.CfgPath == DirwatchdCfgPath {
		log.Errorw("Configuration file missing, fallback to default config.")

		content = []byte(config.DefaultConfig)
		err = nil
	} else if err != nil {
		log.Errorw("Failed to read configuration from file.",
			"file", flags.CfgPath,
			"error", err,
		)

		return
	}

	cfg, err = config.New(
		config.WithContent(content),
		config.WithLogger(log),
	)
	return
}

func rootCmdRun() (err error) {
	log := logger.Get("dirwatchd")

	cfg, err := loadConfig(log)
	if err != nil {
		return
	}

	d, err := dirwatchd.New(
		dirwatchd.WithConfig(cfg),
		dirwatchd.WithLogger(log),
		dirwatchd.WithConfigSource(func() (*config.Config, error) {
			return loadConfig(log)
		}),
	)
	if err != nil {
		return
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	// The signal-delivery side does nothing beyond recording what
	// arrived; reloads and shutdown both happen on the daemon's own
	// loop.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP)

		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				d.TriggerReload()
				continue
			}

			cancel(&ErrCancelBySignal{Signal: sig})
			return
		}
	}()

	err = d.Run(ctx)
	if err == nil {
		return
	}

	log.Debugw("Core exited with error.",
		"error", err,
	)

	var cancelBySignal *ErrCancelBySignal
	if errors.As(context.Cause(ctx), &cancelBySignal) {
		log.Infow("Signal received, exiting...",
			"signal", cancelBySignal.Signal,
		)
		err = nil
		return
	}

	return
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cfgPath := os.Getenv("CONFIGURATION_DIRECTORY")
	if cfgPath == "" {
		cfgPath = DirwatchdCfgPath
	} else {
		cfgPath += "/config.yaml"
	}

	rootCmd.PersistentFlags().StringVarP(
		&flags.CfgPath,
		"config", "c", cfgPath,
		"the configuration file to use",
	)
}
