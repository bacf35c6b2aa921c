package figure

import (
	"strconv"
	"strings"
)

// Directive names, used without DirectivePrefix.
const (
	DirectiveFigNumFormat = "fig-num-format"
	DirectiveEmptyCaption = "empty-captions"
	DirectiveCaptionFirst = "caption-before"
	DirectiveLinkCaption  = "link-caption"
	DirectiveRetainBlock  = "retain-block"
)

// Caption parts wrapped in a link to the figure.
const (
	LinkNumber = "num"
	LinkTitle  = "title"
	LinkAll    = "all"
	LinkNone   = "none"
)

// Block source retention modes.
const (
	RetainNone    = "none"
	RetainComment = "comment"
	RetainIndent  = "indent"
)

const defaultNumFormat = "Fig. #"

// directives are rendering controls resolved for one figure.
type directives struct {
	numFormat    string
	emptyCaption bool
	captionFirst bool
	link         string
	retain       string
}

func readDirectives(a *Attributes) directives {
	get := func(name, def string) string {
		if v, ok := a.Directive(name); ok {
			return v
		}
		return def
	}
	d := directives{
		numFormat:    get(DirectiveFigNumFormat, defaultNumFormat),
		emptyCaption: get(DirectiveEmptyCaption, "true") == "true",
		captionFirst: get(DirectiveCaptionFirst, "true") == "true",
		link:         get(DirectiveLinkCaption, LinkNumber),
		retain:       get(DirectiveRetainBlock, RetainNone),
	}
	return d
}

// caption builds figcaption element for figure number and title.
func (d directives) caption(id string, number int, title string) string {
	num := strings.ReplaceAll(d.numFormat, "#", strconv.Itoa(number))
	linkOpen, linkClose := `<a href="#`+id+`">`, `</a>`

	var b strings.Builder
	b.WriteString("<figcaption>")
	switch d.link {
	case LinkTitle:
		b.WriteString(`<span class="figure-number">` + num + `</span>`)
		b.WriteString(`<span class="figure-title">` + linkOpen + title + linkClose + `</span>`)
	case LinkAll:
		b.WriteString(linkOpen)
		b.WriteString(`<span class="figure-number">` + num + `</span>`)
		b.WriteString(`<span class="figure-title">` + title + `</span>`)
		b.WriteString(linkClose)
	case LinkNone:
		b.WriteString(`<span class="figure-number">` + num + `</span>`)
		b.WriteString(`<span class="figure-title">` + title + `</span>`)
	default:
		b.WriteString(`<span class="figure-number">` + linkOpen + num + linkClose + `</span>`)
		b.WriteString(`<span class="figure-title">` + title + `</span>`)
	}
	b.WriteString("</figcaption>")
	return b.String()
}

// render assembles final markup replacing blk.
func (d directives) render(blk *block, attrs *Attributes, number int, body string) string {
	content := `<div class="figure-content">` + body + `</div>`
	if blk.title != "" || d.emptyCaption {
		caption := d.caption(attrs.ID(), number, blk.title)
		if d.captionFirst {
			content = caption + "\n" + content
		} else {
			content = content + "\n" + caption
		}
	}
	out := "<figure" + attrs.String() + ">" + content + "</figure>"

	switch d.retain {
	case RetainComment:
		out = "<!--\n" + blk.source + "\n-->\n\n" + out
	case RetainIndent:
		out = indent(strings.TrimLeft(blk.source, " \t\r\n")) + "\n\n" + out
	}
	return out
}

// indent prefixes every line of text with a tab.
func indent(text string) string {
	lines := strings.SplitAfter(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return "\t" + strings.Join(lines, "\t")
}
