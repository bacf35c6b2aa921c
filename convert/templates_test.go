package convert

import (
	"strings"
	"testing"

	"figuremark/config"
)

func TestExpandTemplate(t *testing.T) {
	values := newValues(config.OutputNameTemplateFieldName, "book/part 1/intro.md", config.OutputFmtHtml, 4)

	tests := []struct {
		name    string
		field   string
		want    string
		wantErr bool
	}{
		{name: "simple text", field: "simple-text", want: "simple-text"},
		{name: "context", field: "{{ .Context }}", want: "output_name_template"},
		{name: "name", field: "{{ .Name }}", want: "book/part 1/intro.md"},
		{name: "dir", field: "{{ .Dir }}", want: "book/part 1"},
		{name: "source file", field: "{{ .SourceFile }}", want: "intro"},
		{name: "format", field: "{{ .Format }}", want: "html"},
		{name: "figures", field: "{{ printf \"%03d\" .Figures }}", want: "004"},
		{name: "sprig", field: "{{ .Dir | base | replace \" \" \"_\" }}", want: "part_1"},
		{name: "parse error", field: "{{ .Name", wantErr: true},
		{name: "exec error", field: "{{ .Missing }}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandTemplate(config.OutputNameTemplateFieldName, tt.field, values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("expandTemplate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("expandTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewValues_TopLevel(t *testing.T) {
	v := newValues(config.OutputNameTemplateFieldName, "intro.md", config.OutputFmtMarkdown, 0)
	if v.Dir != "." || v.SourceFile != "intro" || v.Format != "markdown" {
		t.Errorf("newValues() = %+v", v)
	}
	if strings.Contains(v.Name, "\\") {
		t.Errorf("Name is not slash separated: %q", v.Name)
	}
}
