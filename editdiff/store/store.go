// Package store keeps posted messages together with all of their revisions.
package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"chat.znkr.io/editdiff/diff"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmpty      = errors.New("empty message")
	ErrConflict   = errors.New("message was edited concurrently")
	ErrUnchanged  = errors.New("message is unchanged")
	ErrNoRevision = errors.New("no such revision")
)

// Message is a posted message. The first revision is the text as originally posted.
type Message struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Revisions []Revision `json:"revisions"`
}

type Revision struct {
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

func (m *Message) Original() string  { return m.Revisions[0].Text }
func (m *Message) Current() string   { return m.Revisions[len(m.Revisions)-1].Text }
func (m *Message) Posted() time.Time { return m.Revisions[0].Time }
func (m *Message) Updated() time.Time {
	return m.Revisions[len(m.Revisions)-1].Time
}

// Edited reports whether the message has been changed after posting.
func (m *Message) Edited() bool { return len(m.Revisions) > 1 }

// Compare compares the original text to revision rev.
func (m *Message) Compare(rev int) (*diff.Result, error) {
	if rev < 0 || rev >= len(m.Revisions) {
		return nil, fmt.Errorf("message %s has %d revisions, can't compare revision %d: %w", m.ID, len(m.Revisions), rev, ErrNoRevision)
	}
	return diff.Compare(m.Original(), m.Revisions[rev].Text), nil
}

func (m *Message) clone() Message {
	c := *m
	c.Revisions = slices.Clone(m.Revisions)
	return c
}

// Store is an in-memory message store. It's safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages map[string]*Message
	order    []string

	now   func() time.Time
	newID func() string
}

// New creates a store holding msgs.
func New(msgs ...Message) (*Store, error) {
	s := &Store{
		messages: make(map[string]*Message, len(msgs)),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, m := range msgs {
		if m.ID == "" {
			return nil, fmt.Errorf("message by %s has no id", m.Author)
		}
		if len(m.Revisions) == 0 {
			return nil, fmt.Errorf("message %s: %w", m.ID, ErrEmpty)
		}
		if _, ok := s.messages[m.ID]; ok {
			return nil, fmt.Errorf("duplicate message id %s", m.ID)
		}
		c := m.clone()
		s.messages[m.ID] = &c
		s.order = append(s.order, m.ID)
	}
	return s, nil
}

// Post adds a new message.
func (s *Store) Post(author, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmpty
	}
	// Authors are stored on a single line.
	author = strings.Join(strings.Fields(author), " ")
	if author == "" {
		author = "anonymous"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m := &Message{
		ID:        s.newID(),
		Author:    author,
		Revisions: []Revision{{Text: text, Time: s.now()}},
	}
	s.messages[m.ID] = m
	s.order = append(s.order, m.ID)
	return m.clone(), nil
}

// Get returns the message with the given id.
func (s *Store) Get(id string) (Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.messages[id]
	if !ok {
		return Message{}, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	return m.clone(), nil
}

// List returns all messages in the order they were posted.
func (s *Store) List() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]Message, 0, len(s.order))
	for _, id := range s.order {
		ret = append(ret, s.messages[id].clone())
	}
	return ret
}

// Commit adds text as a new revision to the message with the given id. base must be the current
// text of the message, otherwise the message was changed in the meantime and Commit fails with
// [ErrConflict].
func (s *Store) Commit(id, base, text string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.messages[id]
	if !ok {
		return Message{}, fmt.Errorf("message %s: %w", id, ErrNotFound)
	}
	if m.Current() != base {
		return Message{}, fmt.Errorf("message %s: %w", id, ErrConflict)
	}
	if text == base {
		return Message{}, fmt.Errorf("message %s: %w", id, ErrUnchanged)
	}
	m.Revisions = append(m.Revisions, Revision{Text: text, Time: s.now()})
	return m.clone(), nil
}

// Draft starts editing the message with the given id.
func (s *Store) Draft(id string) (*Draft, error) {
	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	return &Draft{
		store: s,
		id:    id,
		base:  m.Current(),
		Text:  m.Current(),
	}, nil
}

// Resume continues a draft of the message with the given id that started from base and has
// been changed to text since.
func (s *Store) Resume(id, base, text string) (*Draft, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	return &Draft{
		store: s,
		id:    id,
		base:  base,
		Text:  text,
	}, nil
}

// Draft is a pending edit of a message. Text can be changed freely until the draft is
// committed.
type Draft struct {
	store *Store
	id    string
	base  string

	Text string
}

// ID returns the id of the message being edited.
func (d *Draft) ID() string { return d.id }

// Base returns the text the draft started from.
func (d *Draft) Base() string { return d.base }

// Compare compares the text the draft started from with the current draft text.
func (d *Draft) Compare() *diff.Result {
	return diff.Compare(d.base, d.Text)
}

// Revert discards all changes of the draft.
func (d *Draft) Revert() { d.Text = d.base }

// Commit stores the draft as a new revision. After a successful commit, the draft can be used to
// continue editing.
func (d *Draft) Commit() (Message, error) {
	m, err := d.store.Commit(d.id, d.base, d.Text)
	if err != nil {
		return Message{}, err
	}
	d.base = m.Current()
	return m, nil
}
