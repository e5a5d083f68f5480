package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/procur/internal/datasource"
)

func newCollectionsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections and their fixture record counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := root.source()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "COLLECTION\tRECORDS")
			for _, c := range datasource.Collections {
				recs, err := src.Fetch(cmd.Context(), c)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\n", c, len(recs))
			}
			return w.Flush()
		},
	}
}
