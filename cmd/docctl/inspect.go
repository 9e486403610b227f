package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docforms-backend/internal/extract"
)

func (c *cli) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the text of a PDF or DOCX document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text, err := extract.FromBytes(cmd.Context(), data, "", filepath.Base(args[0]))
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
