package main

import (
	"fmt"

	"github.com/CTAG07/crsexplorer/pkg/proj"
	"github.com/spf13/cobra"
)

func newVersionCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and PROJ versions",
		Args:  cobra.NoArgs,
		// Printing the version needs no configuration file.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "crsexplorer %s (commit %s, built %s)\n", Version, Commit, BuildDate)
			info := proj.Info()
			if info.Version == "" {
				_, _ = fmt.Fprintln(out, "PROJ: not found")
				return nil
			}
			_, _ = fmt.Fprintf(out, "PROJ %s\n", info.Version)
			if info.Searchpath != "" {
				_, _ = fmt.Fprintf(out, "search path: %s\n", info.Searchpath)
			}
			return nil
		},
	}
}
