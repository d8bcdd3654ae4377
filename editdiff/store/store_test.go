package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"chat.znkr.io/editdiff/diff"
	"github.com/google/go-cmp/cmp"
)

var t0 = time.Date(2024, time.September, 12, 10, 0, 0, 0, time.UTC)

// newTestStore returns a store with a deterministic clock and deterministic ids.
func newTestStore(t *testing.T, msgs ...Message) *Store {
	t.Helper()
	s, err := New(msgs...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	now := t0
	s.now = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprint(n)
	}
	return s
}

func TestPost(t *testing.T) {
	s := newTestStore(t)

	m, err := s.Post("  alice\n ", "I like cats.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Message{
		ID:     "1",
		Author: "alice",
		Revisions: []Revision{
			{Text: "I like cats.", Time: t0.Add(time.Minute)},
		},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Post result is different (-want, +got):\n%s", diff)
	}

	got, err := s.Get("1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get result is different (-want, +got):\n%s", diff)
	}

	m, err = s.Post("", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Author != "anonymous" {
		t.Errorf("Author = %q, want %q", m.Author, "anonymous")
	}

	if _, err := s.Post("bob", " \n\t"); !errors.Is(err, ErrEmpty) {
		t.Errorf("Post of blank text returned %v, want %v", err, ErrEmpty)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get returned %v, want %v", err, ErrNotFound)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		msgs []Message
	}{
		{
			name: "missing-id",
			msgs: []Message{{Author: "alice", Revisions: []Revision{{Text: "hi"}}}},
		},
		{
			name: "no-revisions",
			msgs: []Message{{ID: "1", Author: "alice"}},
		},
		{
			name: "duplicate-id",
			msgs: []Message{
				{ID: "1", Author: "alice", Revisions: []Revision{{Text: "hi"}}},
				{ID: "1", Author: "bob", Revisions: []Revision{{Text: "hey"}}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.msgs...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCommit(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Post("alice", "I like cats.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		base    string
		text    string
		wantErr error
	}{
		{
			name:    "not-found",
			id:      "nope",
			base:    "I like cats.",
			text:    "I like dogs.",
			wantErr: ErrNotFound,
		},
		{
			name:    "unchanged",
			id:      m.ID,
			base:    "I like cats.",
			text:    "I like cats.",
			wantErr: ErrUnchanged,
		},
		{
			name:    "empty",
			id:      m.ID,
			base:    "I like cats.",
			text:    "",
			wantErr: ErrEmpty,
		},
		{
			name: "ok",
			id:   m.ID,
			base: "I like cats.",
			text: "I like dogs.",
		},
		{
			name:    "stale-base",
			id:      m.ID,
			base:    "I like cats.",
			text:    "I like birds.",
			wantErr: ErrConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Commit(tt.id, tt.base, tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Commit returned %v, want %v", err, tt.wantErr)
			}
		})
	}

	got, err := s.Get(m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Original() != "I like cats." || got.Current() != "I like dogs." || !got.Edited() {
		t.Errorf("unexpected message after commits: %+v", got)
	}
	if !got.Updated().After(got.Posted()) {
		t.Errorf("Updated() = %v is not after Posted() = %v", got.Updated(), got.Posted())
	}
}

func TestDraft(t *testing.T) {
	s := newTestStore(t)
	m, err := s.Post("alice", "I like cats.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := s.Draft(m.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID() != m.ID || d.Base() != "I like cats." {
		t.Errorf("unexpected draft: %+v", d)
	}

	// Keep editing until the comparison looks right.
	d.Text = "I like birds."
	d.Text = "I like dogs."
	r := d.Compare()
	if got, want := r.Render(diff.Edited, diff.HTML), "I like <b>dogs</b>."; got != want {
		t.Errorf("Compare().Render(Edited) = %q, want %q", got, want)
	}

	d.Revert()
	if d.Text != "I like cats." {
		t.Errorf("Text after Revert() = %q, want %q", d.Text, "I like cats.")
	}
	if _, err := d.Commit(); !errors.Is(err, ErrUnchanged) {
		t.Errorf("Commit of reverted draft returned %v, want %v", err, ErrUnchanged)
	}

	d.Text = "I like dogs."
	if _, err := d.Commit(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Text = "I like dogs and cats."
	got, err := d.Commit()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Revisions) != 3 {
		t.Errorf("message has %d revisions, want 3", len(got.Revisions))
	}

	// A second draft started from an outdated text conflicts.
	stale, err := s.Resume(m.ID, "I like dogs.", "I like fish.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := stale.Commit(); !errors.Is(err, ErrConflict) {
		t.Errorf("Commit of stale draft returned %v, want %v", err, ErrConflict)
	}
}

func TestResume_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Resume("missing", "a", "b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Resume returned %v, want %v", err, ErrNotFound)
	}
}

func TestMessage_Compare(t *testing.T) {
	m := Message{
		ID:     "1",
		Author: "alice",
		Revisions: []Revision{
			{Text: "I like cats."},
			{Text: "I like dogs."},
			{Text: "I like dogs!"},
		},
	}

	r, err := m.Compare(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := r.Render(diff.Original, diff.HTML), "I like <s>cats</s><s>.</s>"; got != want {
		t.Errorf("original = %q, want %q", got, want)
	}
	if got, want := r.Render(diff.Edited, diff.HTML), "I like <b>dogs</b><b>!</b>"; got != want {
		t.Errorf("edited = %q, want %q", got, want)
	}

	for _, rev := range []int{-1, 3} {
		if _, err := m.Compare(rev); !errors.Is(err, ErrNoRevision) {
			t.Errorf("Compare(%d) returned %v, want %v", rev, err, ErrNoRevision)
		}
	}
}

func TestList_ReturnsCopies(t *testing.T) {
	s := newTestStore(t)
	for _, text := range []string{"one", "two", "three"} {
		if _, err := s.Post("alice", text); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	msgs := s.List()
	var got []string
	for _, m := range msgs {
		got = append(got, m.Current())
	}
	if diff := cmp.Diff([]string{"one", "two", "three"}, got); diff != "" {
		t.Errorf("List result is different (-want, +got):\n%s", diff)
	}

	msgs[0].Revisions[0].Text = "changed"
	m, _ := s.Get(msgs[0].ID)
	if m.Current() != "one" {
		t.Errorf("modifying a listed message changed the store: %q", m.Current())
	}
}

func TestStore_Concurrent(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := s.Post("alice", fmt.Sprint("message ", i))
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if _, err := s.Commit(m.ID, m.Current(), m.Current()+" (edited)"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			s.List()
		}()
	}
	wg.Wait()
	if got := len(s.List()); got != 20 {
		t.Errorf("store has %d messages, want 20", got)
	}
}
