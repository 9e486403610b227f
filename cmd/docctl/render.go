package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docforms-backend/internal/exports"
)

func (c *cli) renderCmd() *cobra.Command {
	var docType, input, out string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Export a document from a JSON field set",
		Long: `Export a document from a JSON file shaped like the API request body:

  {"fields": {...}, "lineItems": [...], "tables": {...},
   "signatures": {"slot": {"dataUrl": "data:image/png;base64,..."}}}

--out may name a file or an existing directory; a directory receives the
document under its generated file name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, input)
			if err != nil {
				return err
			}
			var req exports.Request
			if err := json.Unmarshal(raw, &req); err != nil {
				return fmt.Errorf("parse %s: %w", input, err)
			}
			req.SessionID = ""

			svc, _, err := c.exporter()
			if err != nil {
				return err
			}
			res, err := svc.Export(cmd.Context(), cliUser, docType, req)
			if err != nil {
				return err
			}

			path := out
			if info, err := os.Stat(out); err == nil && info.IsDir() {
				path = filepath.Join(out, res.Artifact.FileName)
			}
			if err := writeArtifact(path, res.Artifact); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(res.Artifact.Bytes))
			if res.Export.ReferenceNo != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "reference %s\n", res.Export.ReferenceNo)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", "", "document type (see docctl types)")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "JSON field set file, - for stdin")
	cmd.Flags().StringVarP(&out, "out", "o", ".", "output file or directory")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
