// Package document loads markdown sources for conversion.
package document

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Document is markdown text ready for figure conversion.
type Document struct {
	// Name identifies document in logs and output names, usually source path.
	Name string
	// Text is document body without front matter, with LF line endings.
	Text string
	// Globals are attribute declarations taken from front matter, applied
	// after configured ones.
	Globals []string
}

// Load reads document from r. UTF-8 and UTF-16 (with BOM) sources are
// accepted. If frontMatterKey is not empty front matter is parsed and
// removed, its frontMatterKey value becomes document globals. Value may be a
// single string or list of strings.
func Load(r io.Reader, name, frontMatterKey string) (*Document, error) {
	data, err := io.ReadAll(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", name, err)
	}
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	doc := &Document{Name: name, Text: string(data)}
	if frontMatterKey == "" {
		return doc, nil
	}

	var meta map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("unable to parse front matter of %s: %w", name, err)
	}
	if globals, err := globalsFrom(meta[frontMatterKey]); err != nil {
		return nil, fmt.Errorf("front matter of %s, key %q: %w", name, frontMatterKey, err)
	} else {
		doc.Globals = globals
	}
	doc.Text = string(body)
	return doc, nil
}

func globalsFrom(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return []string{val}, nil
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected list item type %T", item)
			}
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected value type %T", v)
	}
}

// Collate joins documents into single master document, so figures are
// numbered continuously. Globals of every document are turned into global
// declarations at the top of its text and take effect from there on, the
// master document itself carries none.
func Collate(name string, docs ...*Document) *Document {
	out := &Document{Name: name}
	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		var b strings.Builder
		for _, g := range d.Globals {
			if g = declarationCleaner.Replace(g); strings.TrimSpace(g) != "" {
				b.WriteString("{figure " + g + "}\n")
			}
		}
		b.WriteString(strings.TrimRight(d.Text, "\n"))
		texts = append(texts, b.String())
	}
	out.Text = strings.Join(texts, "\n\n")
	if len(texts) > 0 {
		out.Text += "\n"
	}
	return out
}

// declaration must stay on a single line and could not be closed early
var declarationCleaner = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "}", "")
