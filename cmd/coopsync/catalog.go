package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/coopsync-dev/coopsync/pkg/protocol"
)

func catalogCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List every message variant and its wire tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TAG\tNAME")
			n := 0
			for _, r := range protocol.Registrations() {
				if filter != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter)) {
					continue
				}
				fmt.Fprintf(tw, "%d\t%s\n", r.Tag, r.Name)
				n++
			}
			fmt.Fprintf(tw, "\n%d variants\n", n)
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "only list variants whose name contains this text")

	return cmd
}
