package main

import (
	"fmt"

	"github.com/phrazzld/melodysnap-api/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "melodysnap-api %s\n", version.Version)
			fmt.Fprintf(out, "  commit:     %s\n", version.GitCommit)
			fmt.Fprintf(out, "  built:      %s\n", version.BuildTime)
			fmt.Fprintf(out, "  go version: %s\n", version.GoVersion())
		},
	}
}
