package convert

import (
	"bytes"
	"fmt"
	"html"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	ghtml "github.com/yuin/goldmark/renderer/html"

	"figuremark/config"
)

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

// newMarkdown builds goldmark engine according to configuration. Names are
// validated when configuration is loaded, unknown ones are skipped here.
func newMarkdown(conf *config.HTMLConfig) goldmark.Markdown {
	var extenders []goldmark.Extender
	seen := make(map[string]struct{}, len(conf.Extensions))
	for _, name := range conf.Extensions {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}

	var rendererOptions []renderer.Option
	if conf.HardWraps {
		rendererOptions = append(rendererOptions, ghtml.WithHardWraps())
	}
	if conf.Unsafe {
		rendererOptions = append(rendererOptions, ghtml.WithUnsafe())
	}

	return goldmark.New(
		goldmark.WithExtensions(extenders...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

const htmlPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
%s</body>
</html>
`

// renderHTML converts markdown text into standalone HTML page.
func renderHTML(md goldmark.Markdown, name, text string) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(text), &body); err != nil {
		return nil, fmt.Errorf("unable to render html: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Appendf(nil, htmlPage, html.EscapeString(title), body.String()), nil
}
