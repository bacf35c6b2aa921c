package figure

import (
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestConvert_NoBlocks(t *testing.T) {
	inputs := []string{
		"",
		"plain text\n",
		"```go\nfmt.Println()\n```\n",
		"{figure .global}\nno blocks follow\n",
		"inline [x]{+} outside of figure\n",
		"<figure><img src=\"a.png\"></figure>\n",
		"```figure\nmismatched fences\n~~~\n",
		"````figure\nshort closing fence\n```\n",
		"```figure\nlong closing fence\n````\n",
		"```figures\nnot our tag\n```\n",
	}
	for _, in := range inputs {
		out, n := Convert(in)
		if out != in {
			t.Errorf("Convert(%q) changed text to %q", in, out)
		}
		if n != 0 {
			t.Errorf("Convert(%q) reported %d figures, want 0", in, n)
		}
	}
}

func TestConvert_Example(t *testing.T) {
	in := "```figure My Title {#pic1 .wide}\nSee [result]{>} here.\n```\n"
	want := `<figure id="pic1" class="figuremark wide" data-fignum="1">` +
		`<figcaption><span class="figure-number"><a href="#pic1">Fig. 1</a></span><span class="figure-title">My Title</span></figcaption>` + "\n" +
		`<div class="figure-content">See <span class="figuremark result">result</span> here.</div></figure>` + "\n"

	out, n := Convert(in)
	if n != 1 {
		t.Errorf("figures = %d, want 1", n)
	}
	if out != want {
		t.Errorf("Convert() =\n%s\nwant\n%s", out, want)
	}
}

func TestConvert_TildeFenceAndTag(t *testing.T) {
	in := "before\n\n~~~~FigureMark {.code}\nline one\nline two\n~~~~\n\nafter\n"
	out, n := Convert(in)
	if n != 1 {
		t.Fatalf("figures = %d, want 1", n)
	}
	for _, want := range []string{
		"before\n\n<figure id=\"figure-1\" class=\"figuremark code\" data-fignum=\"1\">",
		"<div class=\"figure-content\">line one\nline two</div></figure>\n\nafter\n",
		`<span class="figure-title"></span>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestConvert_Numbering(t *testing.T) {
	in := "```figure A\none\n```\n\n```figure B\ntwo\n```\n\n```figure C {#c}\nthree\n```\n"
	out, n := Convert(in)
	if n != 3 {
		t.Fatalf("figures = %d, want 3", n)
	}
	for _, want := range []string{
		`<figure id="figure-1" class="figuremark" data-fignum="1">`,
		`<figure id="figure-2" class="figuremark" data-fignum="2">`,
		`<figure id="c" class="figuremark" data-fignum="3">`,
		`<a href="#c">Fig. 3</a>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestConvert_ForeignFigures(t *testing.T) {
	in := "<figure><img src=\"a.png\"></figure>\n\n```figure\nbody\n```\n\n" +
		"<figure class=\"x\">\n<img src=\"b.png\">\n</figure>\n<figure><p>c</p></figure>\n\n```figure\nbody\n```\n"

	res := New().Convert(in)
	if res.Figures != 2 {
		t.Errorf("Figures = %d, want 2", res.Figures)
	}
	if res.Foreign != 3 {
		t.Errorf("Foreign = %d, want 3", res.Foreign)
	}
	for _, want := range []string{
		`<figure id="figure-2" class="figuremark" data-fignum="2">`,
		`<figure id="figure-5" class="figuremark" data-fignum="5">`,
		`<a href="#figure-5">Fig. 5</a>`,
	} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("output does not contain %q:\n%s", want, res.Text)
		}
	}
}

func TestConvert_Globals(t *testing.T) {
	in := "{figure :link-caption=all}\n\n```figure A\none\n```\n\n```figure B {:link-caption=none}\ntwo\n```\n"
	want := "\n\n" +
		`<figure id="figure-1" class="figuremark" data-fignum="1"><figcaption><a href="#figure-1">` +
		`<span class="figure-number">Fig. 1</span><span class="figure-title">A</span></a></figcaption>` + "\n" +
		`<div class="figure-content">one</div></figure>` + "\n\n" +
		`<figure id="figure-2" class="figuremark" data-fignum="2"><figcaption>` +
		`<span class="figure-number">Fig. 2</span><span class="figure-title">B</span></figcaption>` + "\n" +
		`<div class="figure-content">two</div></figure>` + "\n"

	out, n := Convert(in)
	if n != 2 {
		t.Errorf("figures = %d, want 2", n)
	}
	if out != want {
		t.Errorf("Convert() =\n%s\nwant\n%s", out, want)
	}
}

func TestConvert_GlobalsAccumulate(t *testing.T) {
	in := "{figure .dark #shared}\n```figure\none\n```\n" +
		"{figuremark :fig-num-format=Abb.# .-:dark}\n```figure\ntwo\n```\n" +
		"{figure}\n```figure {.-:}\nthree\n```\n"

	out, n := Convert(in)
	if n != 3 {
		t.Fatalf("figures = %d, want 3", n)
	}
	if strings.Contains(out, "{figure") {
		t.Errorf("global declarations left in output:\n%s", out)
	}
	for _, want := range []string{
		// default id is assigned before globals are filled in
		`<figure id="figure-1" class="figuremark dark" data-fignum="1">`,
		`<figure id="figure-2" class="figuremark" data-fignum="2">`,
		`>Abb.2<`,
		// block attributes are parsed, not override-merged
		`<figure id="figure-3" class="figuremark -:" data-fignum="3">`,
		`>Abb.3<`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestConvert_Directives(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name: "number format",
			in:   "```figure T {:fig-num-format=\"Figure #:\"}\nx\n```",
			want: []string{`<a href="#figure-1">Figure 1:</a>`},
		},
		{
			name:    "no empty captions",
			in:      "```figure {:empty-captions=false}\nx\n```",
			notWant: []string{"<figcaption>"},
			want:    []string{`data-fignum="1"><div class="figure-content">x</div></figure>`},
		},
		{
			name:    "whitespace title is no title",
			in:      "```figure    {:empty-captions=false}\nx\n```",
			notWant: []string{"<figcaption>"},
		},
		{
			name: "title keeps caption",
			in:   "```figure T {:empty-captions=false}\nx\n```",
			want: []string{`<span class="figure-title">T</span>`},
		},
		{
			name: "caption after",
			in:   "```figure T {:caption-before=false}\nx\n```",
			want: []string{`<div class="figure-content">x</div>` + "\n<figcaption>"},
		},
		{
			name: "non boolean is false",
			in:   "```figure T {:caption-before=yes}\nx\n```",
			want: []string{"</div>\n<figcaption>"},
		},
		{
			name: "link title",
			in:   "```figure T {:link-caption=title}\nx\n```",
			want: []string{`<span class="figure-number">Fig. 1</span><span class="figure-title"><a href="#figure-1">T</a></span>`},
		},
		{
			name:    "link none",
			in:      "```figure T {:link-caption=none}\nx\n```",
			notWant: []string{"<a href"},
		},
		{
			name: "unknown link defaults to number",
			in:   "```figure T {:link-caption=bogus}\nx\n```",
			want: []string{`<span class="figure-number"><a href="#figure-1">Fig. 1</a></span>`},
		},
		{
			name: "retain as comment",
			in:   "```figure T {:retain-block=comment}\nx\n```",
			want: []string{"<!--\n```figure T {:retain-block=comment}\nx\n```\n-->\n\n<figure "},
		},
		{
			name: "retain indented",
			in:   "```figure T {:retain-block=indent}\nx\n```",
			want: []string{"\t```figure T {:retain-block=indent}\n\tx\n\t```\n\n<figure "},
		},
		{
			name:    "directives never rendered",
			in:      "```figure T {:retain-block=none data-k=v}\nx\n```",
			want:    []string{`data-k="v" data-fignum="1">`},
			notWant: []string{"retain-block="},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, n := Convert(tt.in)
			if n != 1 {
				t.Fatalf("figures = %d, want 1\n%s", n, out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output does not contain %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestConvert_EscapedSpans(t *testing.T) {
	in := "```figure\n\\[x\\]{+} and \\{1\\}\n```"
	out, _ := Convert(in)
	if !strings.Contains(out, `<div class="figure-content">[x]{+} and {1}</div>`) {
		t.Errorf("escapes not handled:\n%s", out)
	}
	if strings.Contains(out, "insert") || strings.Contains(out, "reference") {
		t.Errorf("escaped text turned into span:\n%s", out)
	}
}

func TestConvert_Idempotent(t *testing.T) {
	inputs := []string{
		"{figure .g}\n```figure A {#a}\n[x]{+} {1}\n```\n\ntext\n",
		"```figure T {:retain-block=comment}\nx [y]{!}\n```\n",
		"```figure T {:retain-block=indent}\nx\n```\n",
	}
	for _, in := range inputs {
		once, n := Convert(in)
		if n != 1 {
			t.Fatalf("first pass figures = %d, want 1", n)
		}
		twice, n := Convert(once)
		if n != 0 {
			t.Errorf("second pass figures = %d, want 0", n)
		}
		if twice != once {
			t.Errorf("second pass changed output:\n%s\n---\n%s", once, twice)
		}
	}
}

func TestConverter_WithGlobals(t *testing.T) {
	c := New(
		WithLogger(zaptest.NewLogger(t)),
		WithGlobals(":fig-num-format=Abb.# .book", ""),
	)

	in := "```figure A\none\n```\n{figure :fig-num-format=Fig.#}\n```figure B\ntwo\n```\n"
	res := c.Convert(in)
	if res.Figures != 2 {
		t.Fatalf("Figures = %d, want 2", res.Figures)
	}
	for _, want := range []string{`>Abb.1<`, `>Fig.2<`, `class="figuremark book"`} {
		if !strings.Contains(res.Text, want) {
			t.Errorf("output does not contain %q:\n%s", want, res.Text)
		}
	}

	// state does not leak between conversions
	again := c.Convert("```figure A\none\n```\n")
	if !strings.Contains(again.Text, `data-fignum="1"`) || !strings.Contains(again.Text, `>Abb.1<`) {
		t.Errorf("second conversion did not start fresh:\n%s", again.Text)
	}
}

func TestConverter_Concurrent(t *testing.T) {
	c := New()
	in := "```figure A\none\n```\n\n```figure B\ntwo\n```\n"
	want, _ := Convert(in)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.Convert(in).Text; got != want {
				t.Errorf("concurrent conversion differs:\n%s", got)
			}
		}()
	}
	wg.Wait()
}

func TestExtractGlobals(t *testing.T) {
	rest, decls := extractGlobals("{figure .a}\ntext\n{FigureMark :x=1}\n  {figure .indented}\n{figures}\n{figure}\n")
	if want := "\ntext\n\n  {figure .indented}\n{figures}\n\n"; rest != want {
		t.Errorf("rest = %q, want %q", rest, want)
	}
	if len(decls) != 3 || decls[0] != ".a" || decls[1] != ":x=1" || decls[2] != "" {
		t.Errorf("decls = %q", decls)
	}
}

func TestConverter_Index(t *testing.T) {
	in := "<figure>x</figure>\n```figure First {#one .wide}\na\n```\n```figure\nb\n```\n"
	res := New().Convert(in)
	if len(res.Index) != 2 {
		t.Fatalf("Index has %d entries, want 2", len(res.Index))
	}
	first, second := res.Index[0], res.Index[1]
	if first.Number != 2 || first.ID != "one" || first.Title != "First" || strings.Join(first.Classes, " ") != "figuremark wide" {
		t.Errorf("first entry = %+v", first)
	}
	if second.Number != 3 || second.ID != "figure-3" || second.Title != "" {
		t.Errorf("second entry = %+v", second)
	}

	if empty := New().Convert("no figures"); empty.Index != nil {
		t.Errorf("Index of document without figures = %+v", empty.Index)
	}
}

func TestConvert_EscapedDeclarationInBody(t *testing.T) {
	in := "```figure A\nliteral:\n\\{figure :fig-num-format=X#\\}\nend\n```\n\n```figure B\ntwo\n```\n"
	out, n := Convert(in)
	if n != 2 {
		t.Fatalf("figures = %d, want 2", n)
	}
	if want := "<div class=\"figure-content\">literal:\n{figure :fig-num-format=X#}\nend</div>"; !strings.Contains(out, want) {
		t.Errorf("body of first figure lost literal declaration:\n%s", out)
	}
	if !strings.Contains(out, `<a href="#figure-2">Fig. 2</a>`) {
		t.Errorf("literal declaration was applied to second figure:\n%s", out)
	}
	if strings.Contains(out, "X2") {
		t.Errorf("unexpected number format in output:\n%s", out)
	}
}

func TestConvert_KeepsInvalidUTF8(t *testing.T) {
	in := "\xff\xfe bytes\n```figure\n[a\xffb]{+}\n```\ntail \xc3\n"
	out, n := Convert(in)
	if n != 1 {
		t.Fatalf("figures = %d, want 1", n)
	}
	if !strings.HasPrefix(out, "\xff\xfe bytes\n<figure ") {
		t.Errorf("text before figure changed: %q", out)
	}
	if !strings.HasSuffix(out, "</figure>\ntail \xc3\n") {
		t.Errorf("text after figure changed: %q", out)
	}
	if !strings.Contains(out, `<span class="figuremark insert">a`+"\xff"+`b</span>`) {
		t.Errorf("span text changed: %q", out)
	}
}

func TestExtractGlobals_RequiresSeparator(t *testing.T) {
	in := "{figure.wide}\n{figure:link-caption=all}\n{figuremark.x}\n"
	rest, decls := extractGlobals(in)
	if rest != in || len(decls) != 0 {
		t.Errorf("compact forms taken as declarations: rest = %q, decls = %q", rest, decls)
	}
}
