package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "chateduca",
		Short:        "ChatEduca API gateway",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCommand(), newMigrateCommand(), newSeedCommand(), newTurnStatsCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
