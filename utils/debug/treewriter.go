// Package debug formats human readable dumps for debug report.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

const indentUnit = "  "

// TreeWriter builds indented text, one item per line.
type TreeWriter struct {
	b *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{b: &strings.Builder{}}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

func (tw *TreeWriter) indent(depth int) {
	tw.b.WriteString(strings.Repeat(indentUnit, max(depth, 0)))
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Field writes "label: value" line, non empty value is quoted so
// whitespace and control characters are visible.
func (tw *TreeWriter) Field(depth int, label, value string) {
	tw.indent(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	if value != "" {
		tw.b.WriteString(strconv.Quote(value))
	}
	tw.b.WriteByte('\n')
}

// List writes "label: [a b c]" line, values are not quoted.
func (tw *TreeWriter) List(depth int, label string, values []string) {
	tw.Line(depth, "%s: [%s]", label, strings.Join(values, " "))
}
