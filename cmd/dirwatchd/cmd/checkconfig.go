package cmd

import (
	"fmt"
	"os"

	"dirwatchd/pkg/dirwatchd/config"

	. "github.com/black-desk/lib/go/errwrap"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// checkConfigCmd validates a configuration file and prints the watch
// set it would install.
var checkConfigCmd = &cobra.Command{
	Use:   "checkconfig",
	Short: "Check configuration",
	Long:  `Validate the configuration file and print the parsed watch set.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			if err == nil {
				return
			}

			err = fmt.Errorf("\n%w\n"+CheckDocumentString, err)

			return
		}()

		err = checkConfigCmdRun()
		return
	},
}

func checkConfigCmdRun() (err error) {
	defer Wrap(&err, "check configuration %s", flags.CfgPath)

	var content []byte
	content, err = os.ReadFile(flags.CfgPath)
	if err != nil {
		return
	}

	var cfg *config.Config
	cfg, err = config.New(
		config.WithContent(content),
		config.WithLogger(zap.NewNop().Sugar()),
	)
	if err != nil {
		return
	}

	for _, list := range cfg.Watchlists {
		state := "enabled"
		if !list.IsEnabled() {
			state = "disabled"
		}

		fmt.Printf("watchlist %q (%s)\n", list.Name, state)

		for _, watch := range list.Watches {
			fmt.Printf("  %s\n", watch)

			for _, action := range watch.Actions {
				fmt.Printf("    %s\n", action)
			}
		}
	}

	fmt.Println("configuration OK")

	return
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)
}
