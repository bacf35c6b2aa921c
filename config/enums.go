package config

//go:generate go tool go-enum --marshal --names --nocase --mustparse

// Specification of requested output type.
// ENUM(markdown, html)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtMarkdown:
		return ".md"
	case OutputFmtHtml:
		return ".html"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
