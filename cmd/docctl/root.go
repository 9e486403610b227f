package main

import (
	"github.com/spf13/cobra"

	"docforms-backend/internal/bootstrap"
	"docforms-backend/internal/document"
	"docforms-backend/internal/exports"
	"docforms-backend/internal/forms"
	"docforms-backend/internal/shared/config"
	"docforms-backend/internal/shared/telemetry"
)

// cliUser owns every export made from the command line.
const cliUser = "cli:local"

type cli struct {
	logLevel string
	loadCfg  func() (config.Config, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(config.Load)
}

func newRootCmdWith(loadCfg func() (config.Config, error)) *cobra.Command {
	c := &cli{loadCfg: loadCfg}

	root := &cobra.Command{
		Use:           "docctl",
		Short:         "Render and inspect business documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.SetLevel(c.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		c.typesCmd(),
		c.renderCmd(),
		c.samplesCmd(),
		c.inspectCmd(),
		c.summarizeCmd(),
	)
	return root
}

func (c *cli) registry() (*forms.Registry, config.Config, error) {
	cfg, err := c.loadCfg()
	if err != nil {
		return nil, cfg, err
	}
	reg, err := bootstrap.BuildRegistry(cfg)
	return reg, cfg, err
}

// exporter builds an export service that never archives.
func (c *cli) exporter() (*exports.Service, *forms.Registry, error) {
	reg, cfg, err := c.registry()
	if err != nil {
		return nil, nil, err
	}
	return &exports.Service{
		Registry:  reg,
		Assembler: bootstrap.BuildAssembler(cfg),
	}, reg, nil
}

func writeArtifact(path string, artifact document.ExportArtifact) error {
	return writeFile(path, artifact.Bytes)
}
