package figure

import (
	"github.com/dlclark/regexp2"
)

// [text]{modifier} with unescaped brackets, or bare {N} reference.
var spanPattern = regexp2.MustCompile(`(?<!\\)\[(.+?)(?<!\\)\]\{([^\}]+?)\}|\{([\d.-]+)\}`, regexp2.None)

// marks maps shorthand modifiers to semantic classes.
var marks = map[string]string{
	"+": "insert",
	"-": "remove",
	"/": "comment",
	">": "result",
	"!": "highlight",
}

// processSpans rewrites inline annotations in body. It is a single forward
// pass: text produced for one span is never scanned again.
func processSpans(body string) string {
	return replaceMatches(spanPattern, body, renderSpan)
}

func renderSpan(m match) string {
	if ref, ok := m.group(3); ok {
		return `<span class="` + SharedClass + ` reference reference-` + ref + `">` + ref + `</span>`
	}

	text, _ := m.group(1)
	modifier, _ := m.group(2)
	if class, ok := marks[modifier]; ok {
		return `<span class="` + SharedClass + ` ` + class + `">` + text + `</span>`
	}
	return `<span` + ParseAttributes(modifier).String() + `>` + text + `</span>`
}
