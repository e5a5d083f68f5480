package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/stwalsh4118/procur/internal/datasource"
	"github.com/stwalsh4118/procur/internal/logger"
)

type rootOptions struct {
	fixturesDir string
	verbose     bool
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "viewctl",
		Short:         "Render Procur dashboard views from fixture data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&opts.fixturesDir, "fixtures", "", "directory of YAML fixtures (embedded set when empty)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log engine activity to stderr")

	root.AddCommand(
		newRenderCmd(opts),
		newCollectionsCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// newLogger returns a stderr logger so stdout stays machine-readable.
func (o *rootOptions) newLogger(cmd *cobra.Command) *logger.Logger {
	if !o.verbose {
		return logger.Nop()
	}
	return logger.NewWithWriter(cmd.ErrOrStderr(), "development")
}

func (o *rootOptions) source() (*datasource.FixtureSource, error) {
	return datasource.NewFixtureSource(o.fixturesDir)
}
