package server

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"chat.znkr.io/editdiff/diff"
	"chat.znkr.io/editdiff/feed"
	"chat.znkr.io/editdiff/store"
	"github.com/fatih/color"
)

var errTooLarge = errors.New("text too large")

type handler struct {
	store atomic.Pointer[store.Store]
	opts  Options
	hub   *hub
	pages Pages
	mux   *http.ServeMux
}

func newHandler(st *store.Store, opts Options) *handler {
	h := &handler{
		opts:  opts,
		hub:   newHub(),
		pages: Pages{Live: true},
		mux:   http.NewServeMux(),
	}
	h.store.Store(st)

	h.mux.HandleFunc("GET /{$}", h.index)
	h.mux.HandleFunc("POST /messages", h.post)
	h.mux.HandleFunc("GET /messages/{id}", h.message)
	h.mux.HandleFunc("GET /messages/{id}/edit", h.editForm)
	h.mux.HandleFunc("POST /messages/{id}/edit", h.edit)
	h.mux.HandleFunc("POST /api/diff", h.apiDiff)
	h.mux.HandleFunc("GET /feed.atom", h.feed)
	h.mux.HandleFunc("GET /ws", h.hub.serve)
	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h.mux.ServeHTTP(w, req)
}

func (h *handler) index(w http.ResponseWriter, req *http.Request) {
	var buf bytes.Buffer
	if err := h.pages.Index(&buf, h.store.Load().List()); err != nil {
		h.error(w, req, http.StatusInternalServerError, err)
		return
	}
	h.write(w, req, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) post(w http.ResponseWriter, req *http.Request) {
	text := req.PostFormValue("text")
	if err := h.checkSize(text); err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	m, err := h.store.Load().Post(req.PostFormValue("author"), text)
	if err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	h.changed("post", m)
	http.Redirect(w, req, "/", http.StatusSeeOther)
}

func (h *handler) message(w http.ResponseWriter, req *http.Request) {
	m, err := h.store.Load().Get(req.PathValue("id"))
	if err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}

	rev := len(m.Revisions) - 1
	if s := req.FormValue("rev"); s != "" {
		if rev, err = strconv.Atoi(s); err != nil {
			h.error(w, req, http.StatusBadRequest, fmt.Errorf("invalid revision %q", s))
			return
		}
	}

	var buf bytes.Buffer
	if err := h.pages.Message(&buf, m, rev); err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	h.write(w, req, http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) editForm(w http.ResponseWriter, req *http.Request) {
	st := h.store.Load()
	d, err := st.Draft(req.PathValue("id"))
	if err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	m, err := st.Get(d.ID())
	if err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	h.renderEdit(w, req, http.StatusOK, editPage{
		Message: m,
		Base:    d.Base(),
		Text:    d.Text,
	})
}

func (h *handler) edit(w http.ResponseWriter, req *http.Request) {
	id := req.PathValue("id")
	base, text := req.PostFormValue("base"), req.PostFormValue("text")
	if err := h.checkSize(base, text); err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}

	st := h.store.Load()
	d, err := st.Resume(id, base, text)
	if err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	m, err := st.Get(id)
	if err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}

	switch action := req.PostFormValue("action"); action {
	case "preview":
		h.renderEdit(w, req, http.StatusOK, editPage{
			Message: m,
			Base:    d.Base(),
			Text:    d.Text,
			Preview: compare(d.Compare()),
		})
	case "revert":
		d.Revert()
		h.renderEdit(w, req, http.StatusOK, editPage{
			Message: m,
			Base:    d.Base(),
			Text:    d.Text,
		})
	case "commit":
		committed, err := d.Commit()
		switch {
		case err == nil:
			h.changed("edit", committed)
			http.Redirect(w, req, "/messages/"+id, http.StatusSeeOther)
		case errors.Is(err, store.ErrConflict):
			// Rebase the draft onto the current text, so that the next commit can succeed.
			m, d, err := rebase(st, id, text)
			if err != nil {
				h.error(w, req, statusOf(err), err)
				return
			}
			h.renderEdit(w, req, http.StatusConflict, editPage{
				Message: m,
				Base:    d.Base(),
				Text:    d.Text,
				Error:   "The message was changed in the meantime. Compare your edit with the current text and commit again.",
				Preview: compare(d.Compare()),
			})
		case errors.Is(err, store.ErrEmpty), errors.Is(err, store.ErrUnchanged):
			h.renderEdit(w, req, statusOf(err), editPage{
				Message: m,
				Base:    d.Base(),
				Text:    d.Text,
				Error:   err.Error(),
			})
		default:
			h.error(w, req, statusOf(err), err)
		}
	default:
		h.error(w, req, http.StatusBadRequest, fmt.Errorf("unknown action %q", action))
	}
}

// rebase restarts an edit of the message with the given id from its current text.
func rebase(st *store.Store, id, text string) (store.Message, *store.Draft, error) {
	m, err := st.Get(id)
	if err != nil {
		return store.Message{}, nil, err
	}
	d, err := st.Resume(id, m.Current(), text)
	if err != nil {
		return store.Message{}, nil, err
	}
	return m, d, nil
}

func (h *handler) renderEdit(w http.ResponseWriter, req *http.Request, code int, page editPage) {
	var buf bytes.Buffer
	if err := h.pages.edit(&buf, page); err != nil {
		h.error(w, req, http.StatusInternalServerError, err)
		return
	}
	h.write(w, req, code, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handler) feed(w http.ResponseWriter, req *http.Request) {
	b, err := feed.Render(h.store.Load().List(), h.opts.BaseURL)
	if err != nil {
		h.error(w, req, http.StatusInternalServerError, err)
		return
	}
	h.write(w, req, http.StatusOK, "application/atom+xml; charset=utf-8", b)
}

// changed reports a successful change of the store.
func (h *handler) changed(typ string, m store.Message) {
	t := time.Now().Format(time.TimeOnly)
	switch typ {
	case "post":
		color.Green("%s >> %s posted %s", t, m.Author, m.ID)
	case "edit":
		color.Yellow("%s >> %s edited %s (revision %d)", t, m.Author, m.ID, len(m.Revisions)-1)
	}

	h.hub.broadcast(Event{Type: typ, Message: m})
	if h.opts.OnChange != nil {
		h.opts.OnChange(h.store.Load())
	}
}

// checkSize rejects texts with more tokens than allowed.
func (h *handler) checkSize(texts ...string) error {
	if h.opts.MaxTokens <= 0 {
		return nil
	}
	for _, text := range texts {
		if n := len(diff.Tokenize(text)); n > h.opts.MaxTokens {
			return fmt.Errorf("%d tokens, at most %d are allowed: %w", n, h.opts.MaxTokens, errTooLarge)
		}
	}
	return nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNoRevision):
		return http.StatusNotFound
	case errors.Is(err, store.ErrEmpty), errors.Is(err, store.ErrUnchanged):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) error(w http.ResponseWriter, req *http.Request, code int, err error) {
	if code == http.StatusInternalServerError {
		log.Printf("failed to serve %v: %v", req.URL.EscapedPath(), err)
	}
	h.write(w, req, code, "text/plain; charset=utf-8", []byte(err.Error()))
}

func (h *handler) write(w http.ResponseWriter, req *http.Request, code int, contentType string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if req.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(b); err != nil {
		log.Printf("writing response: %v", err)
	}
}
