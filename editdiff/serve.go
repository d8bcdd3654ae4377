package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"chat.znkr.io/editdiff/config"
	"chat.znkr.io/editdiff/server"
	"chat.znkr.io/editdiff/store"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serves the messages of a transcript file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			path, err := filepath.Abs(cfg.Store)
			if err != nil {
				return fmt.Errorf("determining store path: %v", err)
			}
			st, err := store.Load(path)
			if err != nil {
				return fmt.Errorf("loading store: %v", err)
			}

			// Start serving. Every change is written back to the transcript file.
			tr := &transcript{path: path}
			srv, err := server.Run(cfg.Addr, st, server.Options{
				MaxTokens: cfg.MaxTokens,
				BaseURL:   cfg.BaseURL,
				OnChange: func(st *store.Store) {
					if err := tr.save(st); err != nil {
						log.Printf("failed to save store: %v", err)
					}
				},
			})
			if err != nil {
				return err
			}
			defer srv.Shutdown(context.Background())
			log.Printf("Now serving %s at %s, press Ctrl-C to shut down", cfg.Store, srv.URL())

			// Setup file watcher to reload the store should the transcript change on disk. The
			// directory is watched because saving replaces the file.
			var (
				events <-chan fsnotify.Event
				errs   <-chan error
			)
			if cfg.Watch {
				watcher, err := fsnotify.NewWatcher()
				if err != nil {
					return fmt.Errorf("starting watcher: %v", err)
				}
				defer watcher.Close()
				if err := watcher.Add(filepath.Dir(path)); err != nil {
					return fmt.Errorf("starting watch: %v", err)
				}
				events, errs = watcher.Events, watcher.Errors
				log.Printf("Watching %s", cfg.Store)
			}

			// Setup signals to react to Ctrl-C.
			sigint := make(chan os.Signal, 1)
			signal.Notify(sigint, os.Interrupt)

			for {
				select {
				case event := <-events:
					if event.Name != path || event.Has(fsnotify.Chmod) {
						continue
					}
					start := time.Now()
					reloaded, err := tr.reload()
					switch {
					case os.IsNotExist(err):
						continue
					case err != nil:
						log.Printf("failed to reload store: %v", err)
						continue
					case reloaded == nil:
						continue // our own write
					}
					srv.ReplaceStore(reloaded)
					log.Printf("Store reloaded (%v)", time.Since(start))
				case err := <-errs:
					return fmt.Errorf("watching: %v", err)
				case err := <-srv.Error():
					return fmt.Errorf("serving: %v", err)
				case <-sigint:
					fmt.Print("\r") // remove Ctrl-C output characters
					log.Printf("Received Ctrl-C, shutting down")
					return nil
				}
			}
		},
	}
}

// transcript is the file a served store is persisted to.
type transcript struct {
	path string

	mu   sync.Mutex
	last []byte // content written by the most recent save
}

// save writes all messages of st to the transcript file.
func (t *transcript) save(st *store.Store) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var buf bytes.Buffer
	if err := store.Write(&buf, st.List()); err != nil {
		return err
	}
	if err := store.WriteFile(t.path, buf.Bytes()); err != nil {
		return err
	}
	t.last = buf.Bytes()
	return nil
}

// reload reads the transcript file. It returns nil if the file holds what the most recent save
// wrote.
func (t *transcript) reload() (*store.Store, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	b, err := os.ReadFile(t.path)
	if err != nil {
		return nil, err
	}
	if t.last != nil && bytes.Equal(b, t.last) {
		return nil, nil
	}
	msgs, err := store.Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", t.path, err)
	}
	return store.New(msgs...)
}
