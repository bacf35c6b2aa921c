package figure

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
)

// Opening fence with tag, optional title and attributes on one line, body,
// and closing line repeating the opening fence exactly. Fences right after
// "<!--\n" belong to retained source and are skipped.
var blockPattern = regexp2.MustCompile(
	`(?<!<!--\n)^(`+"`{3,}"+`|~{3,})[ \t]*figure(?:mark)?([ \t]+[^\{\n]+?)?[ \t]*(?:\{([^\}\n]*?)\})?[ \t]*$\n`+
		`([\s\S]*?)\n\1[ \t]*$`,
	regexp2.Multiline|regexp2.IgnoreCase)

// Global declaration alone on a line.
var globalsPattern = regexp.MustCompile(`(?mi)^\{figure(?:mark)?(?:[ \t]+([^\}\n]*))?\}[ \t]*$`)

// Any figure element, ours or not.
var foreignPattern = regexp.MustCompile(`(?s)<figure[^>]*>.+?</figure>`)

// Backslash escapes of brackets, braces and backslash itself, unless the
// backslash is escaped.
var escapePattern = regexp2.MustCompile(`(?<!\\)\\([\[\]\{\}\\])`, regexp2.None)

// block is a figure block found in the buffer. Offsets are in bytes.
type block struct {
	start, end int
	source     string
	fence      string
	title      string
	attrs      string
	body       string
}

// findBlock locates the first block at or after byte offset from, which
// must be on a rune boundary.
func findBlock(buf string, from int) *block {
	offs := byteOffsets(buf)
	rm, err := blockPattern.FindRunesMatchStartingAt([]rune(buf), sort.SearchInts(offs, from))
	if err != nil || rm == nil {
		return nil
	}
	m := match{Match: rm, src: buf, offs: offs}
	b := &block{
		start: m.start(),
		end:   m.end(),
	}
	b.source = buf[b.start:b.end]
	b.fence, _ = m.group(1)
	b.title, _ = m.group(2)
	b.title = strings.TrimSpace(b.title)
	b.attrs, _ = m.group(3)
	b.body, _ = m.group(4)
	return b
}

// countForeign returns number of figure elements in text.
func countForeign(text string) int {
	return len(foreignPattern.FindAllStringIndex(text, -1))
}

// unescape strips backslashes protecting brackets and braces from span and
// global parsing.
func unescape(text string) string {
	return replaceMatches(escapePattern, text, func(m match) string {
		s, _ := m.group(1)
		return s
	})
}

// extractGlobals removes global declarations from text, returning what is
// left and the declarations' attribute strings in document order.
func extractGlobals(text string) (string, []string) {
	locs := globalsPattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return text, nil
	}

	var (
		b     strings.Builder
		decls = make([]string, 0, len(locs))
		last  int
	)
	for _, loc := range locs {
		b.WriteString(text[last:loc[0]])
		last = loc[1]
		if loc[2] >= 0 {
			decls = append(decls, text[loc[2]:loc[3]])
		} else {
			decls = append(decls, "")
		}
	}
	b.WriteString(text[last:])
	return b.String(), decls
}
