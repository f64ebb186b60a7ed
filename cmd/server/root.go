package main

import "github.com/spf13/cobra"

// cfgFile is the --config flag shared by every subcommand.
var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "MelodySnap API: photos in, songs out",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")

	root.AddCommand(newServeCmd(), newRenderCmd(), newVersionCmd())
	return root
}
