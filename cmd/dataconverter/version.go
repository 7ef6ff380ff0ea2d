package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zeusync/dataconverter/internal/datafix"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the program and data versions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dataconverter %s (data version %s)\n", version, datafix.Current)
		},
	}
}
