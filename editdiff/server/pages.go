package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"chat.znkr.io/editdiff/diff"
	"chat.znkr.io/editdiff/goldmark"
	"chat.znkr.io/editdiff/highlight"
	"chat.znkr.io/editdiff/markup"
	"chat.znkr.io/editdiff/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Pages renders the HTML pages of a message store.
type Pages struct {
	// Live enables forms and links that only work with a running server.
	Live bool
}

type indexPage struct {
	Live     bool
	Messages []indexItem
}

type indexItem struct {
	ID     string
	Author string
	Posted time.Time
	Edited bool
	Body   template.HTML
}

type comparison struct {
	Original template.HTML
	Edited   template.HTML
	Unified  template.HTML
}

func compare(r *diff.Result) *comparison {
	return &comparison{
		Original: template.HTML(markup.Escape(r, diff.Original)),
		Edited:   template.HTML(markup.Escape(r, diff.Edited)),
		Unified:  highlight.Spans(r.Edits()),
	}
}

type messagePage struct {
	*comparison
	Live    bool
	Message store.Message
	Rev     int
	Changed bool
}

type editPage struct {
	Message store.Message
	Base    string
	Text    string
	Error   string
	Preview *comparison
}

// Index renders the list of all messages.
func (p Pages) Index(w io.Writer, msgs []store.Message) error {
	page := indexPage{Live: p.Live}
	for _, m := range msgs {
		body, err := goldmark.Render(m.Current())
		if err != nil {
			return fmt.Errorf("rendering message %s: %v", m.ID, err)
		}
		page.Messages = append(page.Messages, indexItem{
			ID:     m.ID,
			Author: m.Author,
			Posted: m.Posted(),
			Edited: m.Edited(),
			Body:   body,
		})
	}
	return execute(w, "index.html", page)
}

// Message renders the comparison of the original text of m with revision rev.
func (p Pages) Message(w io.Writer, m store.Message, rev int) error {
	r, err := m.Compare(rev)
	if err != nil {
		return err
	}
	return execute(w, "message.html", messagePage{
		comparison: compare(r),
		Live:       p.Live,
		Message:    m,
		Rev:        rev,
		Changed:    r.Changed(),
	})
}

func (p Pages) edit(w io.Writer, page editPage) error {
	return execute(w, "edit.html", page)
}

func execute(w io.Writer, name string, data any) error {
	if err := templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("executing template %s: %v", name, err)
	}
	return nil
}
