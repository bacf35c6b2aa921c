// Package figure rewrites FigureMark blocks and inline annotations in a text
// document into HTML figures.
package figure

import (
	"strconv"

	"go.uber.org/zap"
)

// Result describes single conversion.
type Result struct {
	Text string
	// Figures is number of blocks rewritten.
	Figures int
	// Foreign is number of figure elements found in the document which were
	// not produced by conversion.
	Foreign int
	// Index lists rewritten figures in document order.
	Index []Entry
}

// Entry describes single rewritten figure.
type Entry struct {
	Number  int
	ID      string
	Title   string
	Classes []string
}

// Converter holds settings shared by conversions. It keeps no per-document
// state and may be used concurrently.
type Converter struct {
	log     *zap.Logger
	globals []string
}

type Option func(*Converter)

// WithLogger sets logger for per-figure debug output.
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// WithGlobals adds global declarations (attribute strings) applied before
// any declaration found in the document itself. Empty strings are ignored.
func WithGlobals(decls ...string) Option {
	return func(c *Converter) {
		for _, d := range decls {
			if d != "" {
				c.globals = append(c.globals, d)
			}
		}
	}
}

func New(opts ...Option) *Converter {
	c := &Converter{log: zap.NewNop()}
	for _, setOpt := range opts {
		setOpt(c)
	}
	return c
}

// Convert rewrites all FigureMark blocks in text. Text without blocks is
// returned unchanged.
func Convert(text string) (string, int) {
	res := New().Convert(text)
	return res.Text, res.Figures
}

// run is state of a single conversion.
type run struct {
	log     *zap.Logger
	globals *Attributes
	number  int
	res     Result
}

func (c *Converter) Convert(text string) Result {
	r := &run{log: c.log, globals: newAttributes()}
	for _, d := range c.globals {
		r.globals.Override(ParseAttributes(d))
	}
	return r.convert(text)
}

func (r *run) convert(text string) Result {
	buf, cursor := text, 0

	for blk := findBlock(buf, cursor); blk != nil; blk = findBlock(buf, cursor) {
		// text before cursor was handled already, declarations there are
		// either consumed or are part of rendered figures
		between := buf[cursor:blk.start]
		foreign := countForeign(between)
		r.res.Foreign += foreign
		r.number += foreign + 1

		head := buf[:cursor] + r.consumeGlobals(between)

		body := unescape(processSpans(blk.body))

		attrs := ParseAttributes(blk.attrs)
		if attrs.ID() == "" {
			attrs.SetID("figure-" + strconv.Itoa(r.number))
		}
		attrs.SetAttr("data-fignum", strconv.Itoa(r.number))
		attrs.Fill(r.globals.Clone())

		out := readDirectives(attrs).render(blk, attrs, r.number, body)

		buf = head + out + buf[blk.end:]
		cursor = len(head) + len(out)
		r.res.Figures++
		r.res.Index = append(r.res.Index, Entry{Number: r.number, ID: attrs.ID(), Title: blk.title, Classes: attrs.Classes()})

		r.log.Debug("Figure rewritten",
			zap.Int("number", r.number), zap.String("id", attrs.ID()), zap.String("title", blk.title), zap.Int("foreign", foreign))
	}

	r.res.Text = buf
	return r.res
}

// consumeGlobals applies global declarations found in text, in order, and
// returns text without them.
func (r *run) consumeGlobals(text string) string {
	rest, decls := extractGlobals(text)
	if len(decls) == 0 {
		return text
	}
	for _, d := range decls {
		r.globals.Override(ParseAttributes(d))
	}
	r.log.Debug("Global attributes updated", zap.Int("declarations", len(decls)), zap.Stringer("globals", r.globals))
	return rest
}
