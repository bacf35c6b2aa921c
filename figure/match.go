package figure

import (
	"strings"

	"github.com/dlclark/regexp2"
)

// regexp2 reports positions in runes. Every invalid UTF-8 byte counts as a
// single rune there, exactly as in conversion to []rune, so positions could
// be mapped back to byte offsets and source bytes sliced untouched.

// byteOffsets returns byte offset of every rune of s followed by len(s).
func byteOffsets(s string) []int {
	offs := make([]int, 0, len(s)+1)
	for i := range s {
		offs = append(offs, i)
	}
	return append(offs, len(s))
}

// match is regexp2 match with byte exact access to the text it came from.
type match struct {
	*regexp2.Match
	src  string
	offs []int
}

func (m match) start() int {
	return m.offs[m.Index]
}

func (m match) end() int {
	return m.offs[m.Index+m.Length]
}

// group returns text captured by group n and whether group participated in
// the match.
func (m match) group(n int) (string, bool) {
	g := m.GroupByNumber(n)
	if g == nil || len(g.Captures) == 0 {
		return "", false
	}
	return m.src[m.offs[g.Index]:m.offs[g.Index+g.Length]], true
}

// replaceMatches replaces every match of re in s with repl result. Matches
// are found in a single left to right pass, replacement text is never
// scanned again.
func replaceMatches(re *regexp2.Regexp, s string, repl func(match) string) string {
	rm, _ := re.FindRunesMatch([]rune(s))
	if rm == nil {
		return s
	}

	var (
		b    strings.Builder
		offs = byteOffsets(s)
		last int
	)
	for ; rm != nil; rm, _ = re.FindNextMatch(rm) {
		m := match{Match: rm, src: s, offs: offs}
		b.WriteString(s[last:m.start()])
		b.WriteString(repl(m))
		last = m.end()
	}
	b.WriteString(s[last:])
	return b.String()
}
