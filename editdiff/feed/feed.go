// Package feed renders an Atom feed of message edits.
package feed

import (
	"encoding/xml"
	"fmt"
	"slices"
	"strings"
	"time"

	"chat.znkr.io/editdiff/diff"
	"chat.znkr.io/editdiff/markup"
	"chat.znkr.io/editdiff/store"
	"golang.org/x/tools/blog/atom"
)

// Render renders a feed with one entry per edited message, most recently edited first. Links
// are relative to baseURL.
func Render(msgs []store.Message, baseURL string) ([]byte, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")

	var edited []store.Message
	for _, m := range msgs {
		if m.Edited() {
			edited = append(edited, m)
		}
	}
	slices.SortStableFunc(edited, func(a, b store.Message) int {
		return b.Updated().Compare(a.Updated())
	})

	var updated time.Time
	if len(edited) > 0 {
		updated = edited[0].Updated()
	}

	feed := atom.Feed{
		Title:   "Message edits",
		ID:      baseURL + "/feed.atom",
		Updated: atom.Time(updated),
		Link: []atom.Link{{
			Rel:  "self",
			Href: baseURL + "/feed.atom",
		}},
	}

	for _, m := range edited {
		r, err := m.Compare(len(m.Revisions) - 1)
		if err != nil {
			return nil, err
		}

		e := &atom.Entry{
			Title: fmt.Sprintf("%s edited a message", m.Author),
			ID:    fmt.Sprintf("%s/messages/%s#%d", baseURL, m.ID, len(m.Revisions)-1),
			Link: []atom.Link{{
				Rel:  "alternate",
				Href: baseURL + "/messages/" + m.ID,
			}},
			Published: atom.Time(m.Posted()),
			Updated:   atom.Time(m.Updated()),
			Content: &atom.Text{
				Type: "html",
				Body: "<p>" + markup.Escape(r, diff.Original) + "</p>\n<p>" + markup.Escape(r, diff.Edited) + "</p>",
			},
			Author: &atom.Person{
				Name: m.Author,
			},
		}
		feed.Entry = append(feed.Entry, e)
	}

	b, err := xml.Marshal(feed)
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %v", err)
	}
	return b, nil
}
