package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/pthm/blockfield"
	"github.com/pthm/blockfield/lib/schema"
)

// generateSchema generates the *_blocks.go file for a schema file.
func (g *Generator) generateSchema(pkgPath, pkgName, source string, f *schema.File) error {
	base := schemaBase(filepath.Base(source))
	outputFile := filepath.Join(pkgPath, strings.ReplaceAll(base, ".", "_")+generatedSuffix)

	fmt.Printf("generating %s\n", outputFile)

	if g.opts.DryRun {
		return nil
	}

	code, err := g.render(pkgName, source, f)
	if err != nil {
		return err
	}
	return os.WriteFile(outputFile, code, 0644)
}

// render produces the formatted Go source for one schema.
func (g *Generator) render(pkgName, source string, f *schema.File) ([]byte, error) {
	code, err := g.renderTemplate(pkgName, source, f)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	formatted, err := format.Source(code)
	if err != nil {
		return code, fmt.Errorf("format source: %w", err)
	}
	return formatted, nil
}

// renderTemplate renders the generated code template.
func (g *Generator) renderTemplate(pkgName, source string, f *schema.File) ([]byte, error) {
	tmpl, err := template.New("blocks").Funcs(template.FuncMap{
		"block": blockExpr,
		"quote": func(s string) string { return fmt.Sprintf("%q", s) },
	}).Parse(blocksTemplate)
	if err != nil {
		return nil, err
	}

	base := schemaBase(filepath.Base(source))
	data := struct {
		Package string
		Source  string
		Func    string
		Fields  []schema.FieldConfig
	}{
		Package: pkgName,
		Source:  filepath.ToSlash(filepath.Base(source)),
		Func:    "New" + identifier(base, true) + "Fields",
		Fields:  f.Fields,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// blockExpr returns the Go expression constructing cfg.
func blockExpr(cfg schema.BlockConfig) string {
	var opts []string
	if cfg.Label != "" {
		opts = append(opts, fmt.Sprintf("blockfield.WithLabel(%q)", cfg.Label))
	}
	if cfg.Default != nil {
		opts = append(opts, fmt.Sprintf("blockfield.WithDefault(%s)", literal(cfg.Default)))
	}

	switch cfg.Kind {
	case schema.KindText:
		return call("blockfield.NewTextInput", fmt.Sprintf("%q", cfg.Label), opts)
	case schema.KindRichText:
		return call("blockfield.NewRichText", fmt.Sprintf("%q", cfg.Label), opts)
	case schema.KindChooser:
		if cfg.Picker != "" {
			opts = append(opts, fmt.Sprintf("blockfield.WithPicker(pickers[%q])", cfg.Picker))
		}
		return call("blockfield.NewChooser", fmt.Sprintf("%q", cfg.Label), opts)
	case schema.KindStruct:
		var b strings.Builder
		b.WriteString("[]blockfield.StructField{\n")
		for _, fc := range cfg.Fields {
			fmt.Fprintf(&b, "{Name: %q, Block: %s},\n", fc.Name, blockExpr(fc.Block))
		}
		b.WriteString("}")
		return call("blockfield.NewStructBlock", b.String(), opts)
	case schema.KindList:
		item := schema.BlockConfig{Kind: schema.KindText}
		if cfg.Item != nil {
			item = *cfg.Item
		}
		return call("blockfield.NewListBlock", blockExpr(item), opts)
	case schema.KindStream:
		if policy, err := schema.ParsePolicy(cfg.InsertPolicy); err == nil && policy == blockfield.InsertAppendOnly {
			opts = append(opts, "blockfield.WithInsertPolicy(blockfield.InsertAppendOnly)")
		}
		var b strings.Builder
		b.WriteString("[]blockfield.StreamChild{\n")
		for _, fc := range cfg.Children {
			fmt.Fprintf(&b, "{Name: %q, Label: %q, Block: %s},\n", fc.Name, fc.Label, blockExpr(fc.Block))
		}
		b.WriteString("}")
		return call("blockfield.NewStreamBlock", b.String(), opts)
	}
	return "nil"
}

func call(fn, first string, opts []string) string {
	args := append([]string{first}, opts...)
	return fn + "(" + strings.Join(args, ", ") + ")"
}

// literal renders a decoded YAML value as a Go expression.
func literal(v any) string {
	switch t := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("%q", t)
	case bool, int, int64, float64:
		return fmt.Sprintf("%#v", t)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = literal(e)
		}
		return "[]any{" + strings.Join(parts, ", ") + "}"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%q: %s", k, literal(t[k]))
		}
		return "map[string]any{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprintf("%q", fmt.Sprint(v))
}

// identifier converts a file or directory name into a Go identifier,
// exported when upper is set: "home-page" becomes "HomePage" or "homepage".
func identifier(name string, upper bool) string {
	var b strings.Builder
	nextUpper := upper
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			nextUpper = upper
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			if upper {
				b.WriteByte('X')
			} else {
				b.WriteByte('x')
			}
		}
		if nextUpper {
			b.WriteRune(unicode.ToUpper(r))
			nextUpper = false
		} else if upper {
			b.WriteRune(r)
		} else {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	if b.Len() == 0 {
		return "blocks"
	}
	return b.String()
}

const blocksTemplate = `// Code generated by blockfield. DO NOT EDIT.
// Source: {{.Source}}

package {{.Package}}

import "github.com/pthm/blockfield"

// {{.Func}} builds the fields declared in {{.Source}}. Choosers resolve
// their pickers by name from pickers; a missing picker leaves the chooser
// inert.
func {{.Func}}(pickers map[string]blockfield.Picker) []*blockfield.Field {
	return []*blockfield.Field{
	{{- range .Fields}}
		blockfield.NewField({{quote .Name}}, {{block .Block}}),
	{{- end}}
	}
}
`
