// Package pack exports a message store as a static site.
package pack

import (
	"archive/tar"
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/xml"

	"chat.znkr.io/editdiff/feed"
	"chat.znkr.io/editdiff/server"
	"chat.znkr.io/editdiff/store"
)

type doc struct {
	path     string
	mimeType string
	body     []byte
}

// Pack writes a tar file with the message list, one comparison page per message and the feed
// of edits. baseURL is the URL the site will be served from.
func Pack(filename string, st *store.Store, baseURL string) error {
	docs, err := render(st, baseURL)
	if err != nil {
		return err
	}

	minifier := minify.New()
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/html", html.Minify)
	minifier.AddFuncRegexp(regexp.MustCompile("[/+]xml$"), xml.Minify)

	file, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %v", err)
	}
	defer file.Close()

	tw := tar.NewWriter(file)

	dirs := make(map[string]bool)

	for _, d := range docs {
		mt, _, err := mime.ParseMediaType(d.mimeType)
		if err != nil {
			return fmt.Errorf("invalid mime type: %v", err)
		}

		b := d.body
		switch mt {
		case "text/html", "application/atom+xml":
			b, err = minifier.Bytes(mt, b)
			if err != nil {
				return fmt.Errorf("minification failed for %s: %v", d.path, err)
			}
		}

		path := d.path
		if path == "/" {
			path = "index.html"
		} else if mt == "text/html" && filepath.Ext(path) == "" {
			path += "/index.html"
		}
		path = strings.TrimPrefix(path, "/")

		if dir := filepath.Dir(path); !dirs[dir] {
			name := "./" + dir + "/"
			if dir == "." {
				name = "./"
			}
			hdr := &tar.Header{
				Typeflag: tar.TypeDir,
				Name:     name,
				Mode:     int64(0755),
			}
			if err := tw.WriteHeader(hdr); err != nil {
				return fmt.Errorf("writing header: %v", err)
			}
			dirs[dir] = true
		}

		hdr := &tar.Header{
			Typeflag: tar.TypeReg,
			Name:     "./" + path,
			Mode:     int64(0644),
			Size:     int64(len(b)),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("writing header: %v", err)
		}
		if _, err := tw.Write(b); err != nil {
			return fmt.Errorf("writing body: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar file: %v", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing file: %v", err)
	}
	return nil
}

func render(st *store.Store, baseURL string) ([]doc, error) {
	pages := server.Pages{Live: false}
	msgs := st.List()

	var buf bytes.Buffer
	if err := pages.Index(&buf, msgs); err != nil {
		return nil, err
	}
	docs := []doc{{"/", "text/html; charset=utf-8", bytes.Clone(buf.Bytes())}}

	for _, m := range msgs {
		buf.Reset()
		if err := pages.Message(&buf, m, len(m.Revisions)-1); err != nil {
			return nil, err
		}
		docs = append(docs, doc{"/messages/" + m.ID, "text/html; charset=utf-8", bytes.Clone(buf.Bytes())})
	}

	b, err := feed.Render(msgs, baseURL)
	if err != nil {
		return nil, err
	}
	docs = append(docs, doc{"/feed.atom", "application/atom+xml; charset=utf-8", b})
	return docs, nil
}
