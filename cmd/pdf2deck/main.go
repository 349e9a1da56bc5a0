package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "pdf2deck",
		Short:         "Turn a lecture handout PDF into a PowerPoint courseware deck",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "YAML config file (defaults plus PDF2DECK_* env when empty)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug|info|warn|error (overrides log.level)")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", "", "log format: console|json (overrides log.format)")

	root.AddCommand(
		convertCmd(flags),
		extractCmd(flags),
		buildCmd(flags),
		layoutsCmd(),
		pyramidCmd(flags),
	)
	return root
}
