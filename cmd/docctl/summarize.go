package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"docforms-backend/internal/bootstrap"
	"docforms-backend/internal/extract"
	"docforms-backend/internal/summarize"
)

func (c *cli) summarizeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize text, PDF or DOCX content with the configured model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			content := string(raw)
			if text, err := extract.FromBytes(cmd.Context(), raw, "", filepath.Base(file)); err == nil {
				content = text
			} else if !errors.Is(err, extract.ErrUnsupported) {
				return err
			}

			cfg, err := c.loadCfg()
			if err != nil {
				return err
			}
			model, closeFn, err := bootstrap.BuildSummarizer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if closeFn != nil {
				defer closeFn()
			}

			res, err := summarize.NewService(model).Summarize(cmd.Context(), content)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Summary)
			fmt.Fprintln(cmd.ErrOrStderr(), res.Progress)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "input file, - for stdin")
	return cmd
}
