// Command editdiff shows word level differences between revisions of chat messages.
package main

import (
	"log"
	"os"

	"chat.znkr.io/editdiff/config"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "editdiff [command]",
		Short:        "Word level diffs of edited chat messages",
		SilenceUsage: true,
	}
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPackCmd())
	return rootCmd
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
