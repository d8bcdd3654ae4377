package store

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// SyntaxError is returned by [Parse] for malformed transcripts.
type SyntaxError struct {
	Msg  string
	Line int
}

func (err *SyntaxError) Error() string {
	return fmt.Sprintf("%s [line %d]", err.Msg, err.Line)
}

// Parse parses a transcript. A transcript is a sequence of messages, each message has the
// following format
//
//	# <author>
//	:id: <id>
//	:posted: <time>
//	:text: <text>
//	:edited: <time>
//	:text: <text>
//
// Every :text: line adds a revision, its time is given by the :posted: or :edited: line before
// it. Times use RFC 3339. A backslash at the end of a line continues the value on the next line,
// a literal backslash is written as two backslashes.
func Parse(in []byte) ([]Message, error) {
	p := parser{in: in}
	var msgs []Message
	for {
		m, ok, err := p.parseMessage()
		if err != nil {
			return nil, err
		}
		if !ok {
			return msgs, nil
		}
		msgs = append(msgs, m)
	}
}

type parser struct {
	in   []byte
	line int // number of the line most recently read
}

// nextLine returns the next line without line terminator.
func (p *parser) nextLine() ([]byte, bool) {
	if len(p.in) == 0 {
		return nil, false
	}
	p.line++
	var ln []byte
	if eol := slices.Index(p.in, '\n'); eol < 0 {
		ln, p.in = p.in, nil
	} else {
		ln, p.in = p.in[:eol], p.in[eol+1:]
	}
	return ln, true
}

func (p *parser) peek() byte {
	if len(p.in) == 0 {
		return 0
	}
	return p.in[0]
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{
		Msg:  fmt.Sprintf(format, args...),
		Line: p.line,
	}
}

func (p *parser) parseMessage() (Message, bool, error) {
	// Strip blank lines.
	for p.peek() == '\n' {
		p.nextLine()
	}

	ln, ok := p.nextLine()
	if !ok {
		return Message{}, false, nil
	}
	if !bytes.HasPrefix(ln, []byte("# ")) {
		return Message{}, false, p.errorf("expected \"# <author>\", got %q", ln)
	}

	m := Message{Author: strings.TrimSpace(string(ln[2:]))}
	start := p.line
	var t time.Time
	for p.peek() == ':' {
		ln, _ := p.nextLine()
		end := 1 + slices.Index(ln[1:], ':')
		if end < 1 {
			return Message{}, false, p.errorf("expected \":<key>: <value>\", got %q", ln)
		}
		key := string(ln[1:end])

		val, err := p.parseValue(ln[end+1:])
		if err != nil {
			return Message{}, false, err
		}

		switch key {
		case "id":
			m.ID = strings.TrimSpace(val)
		case "posted", "edited":
			t, err = time.Parse(time.RFC3339, strings.TrimSpace(val))
			if err != nil {
				return Message{}, false, p.errorf("parsing %s: %v", key, err)
			}
		case "text":
			m.Revisions = append(m.Revisions, Revision{Text: val, Time: t})
			t = time.Time{}
		default:
			return Message{}, false, p.errorf("unknown key %q", key)
		}
	}

	if m.ID == "" {
		return Message{}, false, &SyntaxError{Msg: "message without id", Line: start}
	}
	if len(m.Revisions) == 0 {
		return Message{}, false, &SyntaxError{Msg: "message without text", Line: start}
	}
	if c := p.peek(); c != 0 && c != '\n' && c != '#' {
		p.nextLine()
		return Message{}, false, p.errorf("unexpected line in message %s", m.ID)
	}
	return m, true, nil
}

// parseValue parses a value starting at the remainder of the current line, reading continuation
// lines as necessary.
func (p *parser) parseValue(ln []byte) (string, error) {
	ln = bytes.TrimPrefix(ln, []byte(" "))
	var val strings.Builder
	for {
		cont := false
		for i := 0; i < len(ln); i++ {
			if ln[i] != '\\' {
				val.WriteByte(ln[i])
				continue
			}
			switch {
			case i+1 < len(ln) && ln[i+1] == '\\':
				val.WriteByte('\\')
				i++
			case i+1 == len(ln):
				cont = true
			default:
				val.WriteByte('\\')
			}
		}
		if !cont {
			return val.String(), nil
		}
		val.WriteByte('\n')
		var ok bool
		if ln, ok = p.nextLine(); !ok {
			return "", p.errorf("unterminated value")
		}
	}
}

var escaper = strings.NewReplacer(`\`, `\\`, "\n", "\\\n")

// Write writes msgs as a transcript that can be read by [Parse].
func Write(w io.Writer, msgs []Message) error {
	bw := bufio.NewWriter(w)
	for i, m := range msgs {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "# %s\n", m.Author)
		fmt.Fprintf(bw, ":id: %s\n", m.ID)
		for j, rev := range m.Revisions {
			key := "edited"
			if j == 0 {
				key = "posted"
			}
			if !rev.Time.IsZero() {
				fmt.Fprintf(bw, ":%s: %s\n", key, rev.Time.Format(time.RFC3339))
			}
			fmt.Fprintf(bw, ":text: %s\n", escaper.Replace(rev.Text))
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing transcript: %v", err)
	}
	return nil
}

// Load reads a store from the transcript file at path. A missing file results in an empty store.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return New()
	case err != nil:
		return nil, fmt.Errorf("reading transcript: %v", err)
	}
	msgs, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return New(msgs...)
}

// Save writes all messages of s to the transcript file at path. The file is replaced atomically.
func (s *Store) Save(path string) error {
	var buf bytes.Buffer
	if err := Write(&buf, s.List()); err != nil {
		return err
	}
	return WriteFile(path, buf.Bytes())
}

// WriteFile replaces the transcript file at path with b atomically.
func WriteFile(path string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating transcript: %v", err)
	}
	defer os.Remove(f.Name()) // no-op after a successful rename

	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("writing transcript: %v", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing transcript: %v", err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("replacing transcript: %v", err)
	}
	return nil
}
