package server

import (
	"encoding/json"
	"log"
	"net/http"

	"chat.znkr.io/editdiff/diff"
	"chat.znkr.io/editdiff/markup"
)

type diffRequest struct {
	Original string `json:"original"`
	Edited   string `json:"edited"`
	Markup   string `json:"markup"` // defaults to "html"
}

type diffResponse struct {
	Original string     `json:"original"`
	Edited   string     `json:"edited"`
	Changed  bool       `json:"changed"`
	Edits    []diffEdit `json:"edits"`
}

type diffEdit struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

const maxRequestBytes = 1 << 20

func (h *handler) apiDiff(w http.ResponseWriter, req *http.Request) {
	var in diffRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxRequestBytes))
	if err := dec.Decode(&in); err != nil {
		h.error(w, req, http.StatusBadRequest, err)
		return
	}
	if in.Markup == "" {
		in.Markup = "html"
	}
	m, err := markup.ByName(in.Markup)
	if err != nil {
		h.error(w, req, http.StatusBadRequest, err)
		return
	}

	if err := h.checkSize(in.Original, in.Edited); err != nil {
		h.error(w, req, statusOf(err), err)
		return
	}
	r := diff.Compare(in.Original, in.Edited)

	out := diffResponse{
		Original: r.Render(diff.Original, m),
		Edited:   r.Render(diff.Edited, m),
		Changed:  r.Changed(),
		Edits:    []diffEdit{},
	}
	for _, e := range r.Edits() {
		out.Edits = append(out.Edits, diffEdit{Op: e.Op.String(), Text: e.String})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Printf("writing response: %v", err)
	}
}
