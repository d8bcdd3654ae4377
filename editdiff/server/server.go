package server

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"chat.znkr.io/editdiff/store"
)

// Options configure a [Server].
type Options struct {
	// MaxTokens limits the number of tokens of every text that is compared. Larger texts are
	// rejected. Zero means no limit.
	MaxTokens int

	// BaseURL is used for absolute links, e.g. in the Atom feed.
	BaseURL string

	// OnChange is called after every successful change to the store.
	OnChange func(*store.Store)
}

// Server serves a message store via HTTP.
type Server struct {
	http    *http.Server
	handler *handler
	errc    chan error
}

// Run creates a new server and runs it in a new goroutine.
func Run(addr string, st *store.Store, opts Options) (*Server, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting HTTP server: %v", err)
	}

	if opts.BaseURL == "" {
		opts.BaseURL = "http://" + l.Addr().String()
	}
	h := newHandler(st, opts)

	s := &Server{
		http: &http.Server{
			Handler: h,
		},
		handler: h,
		errc:    make(chan error, 1),
	}

	go func() {
		if err := s.http.Serve(l); err != nil && err != http.ErrServerClosed {
			s.errc <- err
		}
	}()

	return s, nil
}

// URL returns the base URL of the server.
func (s *Server) URL() string { return s.handler.opts.BaseURL }

// ReplaceStore replaces the store to serve with the one provided.
func (s *Server) ReplaceStore(st *store.Store) {
	s.handler.store.Store(st)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.handler.hub.close()
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %v", err)
	}
	return nil
}

// Error returns a channel to listen to errors while serving.
func (s *Server) Error() <-chan error {
	return s.errc
}
