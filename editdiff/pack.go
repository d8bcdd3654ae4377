package main

import (
	"fmt"

	"chat.znkr.io/editdiff/config"
	"chat.znkr.io/editdiff/pack"
	"chat.znkr.io/editdiff/store"
	"github.com/spf13/cobra"
)

func newPackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pack OUT.tar",
		Short: "Packs the messages of a transcript file into a .tar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			st, err := store.Load(cfg.Store)
			if err != nil {
				return fmt.Errorf("loading store: %v", err)
			}
			baseURL := cfg.BaseURL
			if baseURL == "" {
				baseURL = "http://" + cfg.Addr
			}
			return pack.Pack(args[0], st, baseURL)
		},
	}
}
