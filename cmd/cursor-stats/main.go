package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

var log = logrus.New()

func main() {
	var verbose bool

	root := &cobra.Command{
		Use:     "cursor-stats",
		Short:   "Track Cursor premium requests and usage-based billing from the terminal",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetLevel(logrus.InfoLevel)
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newStatsCmd(),
		newWatchCmd(),
		newHistoryCmd(),
		newCacheCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
