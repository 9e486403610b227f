package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List document types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, _, err := c.registry()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tFORMAT\tREFERENCE\tTITLE")
			for _, def := range reg.List() {
				ref := "-"
				if def.Reference != nil {
					ref = def.Reference.Prefix
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", def.Type, def.Format, ref, def.Title)
			}
			return w.Flush()
		},
	}
}
