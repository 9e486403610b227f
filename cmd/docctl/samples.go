package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"docforms-backend/internal/exports"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/signature"
)

// sampleStroke is a short flourish used for every signature slot.
var sampleStroke = []signature.Stroke{{
	{X: 12, Y: 90}, {X: 40, Y: 40}, {X: 70, Y: 100}, {X: 110, Y: 35}, {X: 150, Y: 80}, {X: 210, Y: 60},
}}

func (c *cli) samplesCmd() *cobra.Command {
	var out string
	var parallel int
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Render a sample of every document type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, reg, err := c.exporter()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}

			var mu sync.Mutex
			written := map[string]string{}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(parallel, 1))
			for _, def := range reg.List() {
				g.Go(func() error {
					req, err := sampleRequest(def)
					if err != nil {
						return err
					}
					res, err := svc.Export(ctx, cliUser, def.Type, req)
					if err != nil {
						return fmt.Errorf("%s: %w", def.Type, err)
					}
					path := filepath.Join(out, res.Artifact.FileName)
					if err := writeArtifact(path, res.Artifact); err != nil {
						return err
					}
					mu.Lock()
					written[def.Type] = path
					mu.Unlock()
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for _, def := range reg.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", def.Type, written[def.Type])
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "samples", "output directory")
	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "documents rendered at once")
	return cmd
}

func sampleRequest(def *forms.Definition) (exports.Request, error) {
	fs, ok := forms.Sample(def.Type)
	if !ok {
		return exports.Request{}, fmt.Errorf("no sample for %s", def.Type)
	}
	req := exports.Request{FieldSet: fs, Signatures: map[string]exports.SignatureInput{}}
	for _, slot := range def.Signatures {
		req.Signatures[slot.Key] = exports.SignatureInput{Strokes: sampleStroke}
	}
	return req, nil
}
