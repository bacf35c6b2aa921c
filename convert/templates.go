package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"figuremark/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name is document name: source path relative to processed directory,
	// or collated document name.
	Name string
	// Dir is directory part of Name, "." when there is none.
	Dir        string
	SourceFile string
	Format     string
	Figures    int
}

func newValues(name config.TemplateFieldName, src string, format config.OutputFmt, figures int) Values {
	return Values{
		Context:    string(name),
		Name:       filepath.ToSlash(src),
		Dir:        filepath.ToSlash(filepath.Dir(src)),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Format:     format.String(),
		Figures:    figures,
	}
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
