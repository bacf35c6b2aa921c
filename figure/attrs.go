package figure

import (
	"regexp"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/emirpasic/gods/sets/linkedhashset"
)

const (
	// SharedClass is present on every element produced by the converter.
	SharedClass = "figuremark"
	// DirectivePrefix marks attribute keys which control rendering instead
	// of being emitted.
	DirectivePrefix = ":"
	// RemoveToken deletes values during override-merge.
	RemoveToken = "-" + DirectivePrefix
)

// NOTE: \w is spelled out so non-ASCII class names and ids survive.
var attrTokenPattern = regexp.MustCompile(
	`([.#][\p{L}\p{N}_:-]+|[\p{L}\p{N}_:-]+=(?:"[^"]*"|'[^']*'|\S*)|[\p{L}\p{N}_.-]+)`)

// Attributes is a parsed attribute list: `.class #id key=val :directive=val`.
// Classes, attributes and directives keep insertion order.
type Attributes struct {
	id         string
	classes    *linkedhashset.Set
	attrs      *linkedhashmap.Map
	directives *linkedhashmap.Map
}

func newAttributes() *Attributes {
	return &Attributes{
		classes:    linkedhashset.New(SharedClass),
		attrs:      linkedhashmap.New(),
		directives: linkedhashmap.New(),
	}
}

// ParseAttributes tokenizes raw. Anything not recognized is skipped, parsing
// never fails.
func ParseAttributes(raw string) *Attributes {
	a := newAttributes()
	for _, item := range attrTokenPattern.FindAllString(raw, -1) {
		switch {
		case strings.HasPrefix(item, "."):
			a.classes.Add(item[1:])
		case strings.HasPrefix(item, "#"):
			a.id = item[1:]
		case strings.Contains(item, "="):
			key, val, _ := strings.Cut(item, "=")
			val = strings.Trim(val, `"'`)
			if name, ok := strings.CutPrefix(key, DirectivePrefix); ok {
				a.directives.Put(name, val)
				continue
			}
			a.attrs.Put(key, val)
		default:
			for _, name := range strings.Split(item, ".") {
				if name != "" {
					a.classes.Add(name)
				}
			}
		}
	}
	return a
}

// ID returns element identifier, empty if none.
func (a *Attributes) ID() string {
	return a.id
}

func (a *Attributes) SetID(id string) {
	a.id = id
}

// Classes returns class names in order.
func (a *Attributes) Classes() []string {
	return toStrings(a.classes.Values())
}

func (a *Attributes) HasClass(name string) bool {
	return a.classes.Contains(name)
}

// Attr returns value of ordinary attribute.
func (a *Attributes) Attr(key string) (string, bool) {
	return lookup(a.attrs, key)
}

func (a *Attributes) SetAttr(key, val string) {
	a.attrs.Put(key, val)
}

// AttrKeys returns ordinary attribute names in render order.
func (a *Attributes) AttrKeys() []string {
	return toStrings(a.attrs.Keys())
}

// Directive returns value of directive name (without prefix).
func (a *Attributes) Directive(name string) (string, bool) {
	return lookup(a.directives, name)
}

func (a *Attributes) SetDirective(name, val string) {
	a.directives.Put(name, val)
}

// Clone returns deep copy of a.
func (a *Attributes) Clone() *Attributes {
	c := &Attributes{
		id:         a.id,
		classes:    linkedhashset.New(a.classes.Values()...),
		attrs:      linkedhashmap.New(),
		directives: linkedhashmap.New(),
	}
	copyInto(c.attrs, a.attrs)
	copyInto(c.directives, a.directives)
	return c
}

// Override merges other into a, values from other win. RemoveToken deletes:
//
//	#-:        drop id            #-:name   drop id if it is "name"
//	.-:        drop all classes   .-:name   drop class "name"
//	key=-:     drop attribute     -:=any    drop all attributes
//
// Directives follow the attribute rules.
func (a *Attributes) Override(other *Attributes) {
	switch {
	case other.id == RemoveToken:
		a.id = ""
	case strings.HasPrefix(other.id, RemoveToken):
		if a.id == other.id[len(RemoveToken):] {
			a.id = ""
		}
	case other.id != "":
		a.id = other.id
	}

	for _, name := range other.Classes() {
		switch {
		case name == RemoveToken:
			a.classes.Clear()
		case strings.HasPrefix(name, RemoveToken):
			a.classes.Remove(name[len(RemoveToken):])
		default:
			a.classes.Add(name)
		}
	}

	overrideMap(a.attrs, other.attrs)
	overrideMap(a.directives, other.directives)
}

// Fill merges other into a, values already present in a win. Removal tokens
// have no special meaning here.
func (a *Attributes) Fill(other *Attributes) {
	if a.id == "" {
		a.id = other.id
	}
	a.classes.Add(other.classes.Values()...)
	a.attrs = fillMap(a.attrs, other.attrs)
	a.directives = fillMap(a.directives, other.directives)
}

// Override returns new set with patch override-merged on top of base. Neither
// argument is modified.
func Override(base, patch *Attributes) *Attributes {
	res := base.Clone()
	res.Override(patch)
	return res
}

// Fill returns new set with base filled from patch. Neither argument is
// modified.
func Fill(base, patch *Attributes) *Attributes {
	res := base.Clone()
	res.Fill(patch)
	return res
}

// String renders attributes as HTML attribute fragment with leading space:
// id first, then class, then ordinary attributes. Directives are not
// rendered.
func (a *Attributes) String() string {
	var b strings.Builder
	if a.id != "" {
		writeAttr(&b, "id", a.id)
	}
	if a.classes.Size() > 0 {
		writeAttr(&b, "class", strings.Join(a.Classes(), " "))
	}
	it := a.attrs.Iterator()
	for it.Next() {
		writeAttr(&b, it.Key().(string), it.Value().(string))
	}
	return b.String()
}

func writeAttr(b *strings.Builder, key, val string) {
	b.WriteByte(' ')
	b.WriteString(key)
	b.WriteString(`="`)
	b.WriteString(strings.ReplaceAll(val, `"`, "&quot;"))
	b.WriteByte('"')
}

func overrideMap(dst, src *linkedhashmap.Map) {
	it := src.Iterator()
	for it.Next() {
		key, val := it.Key().(string), it.Value().(string)
		switch {
		case val == RemoveToken:
			dst.Remove(key)
		case key == RemoveToken:
			dst.Clear()
		default:
			dst.Put(key, val)
		}
	}
}

// fillMap keeps positions of src keys first, same as updating a copy of src
// with dst.
func fillMap(dst, src *linkedhashmap.Map) *linkedhashmap.Map {
	res := linkedhashmap.New()
	copyInto(res, src)
	copyInto(res, dst)
	return res
}

func copyInto(dst, src *linkedhashmap.Map) {
	it := src.Iterator()
	for it.Next() {
		dst.Put(it.Key(), it.Value())
	}
}

func lookup(m *linkedhashmap.Map, key string) (string, bool) {
	if v, found := m.Get(key); found {
		return v.(string), true
	}
	return "", false
}

func toStrings(values []any) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		res = append(res, v.(string))
	}
	return res
}
