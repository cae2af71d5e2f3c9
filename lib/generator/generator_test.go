package generator

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm/blockfield/lib/schema"
)

const pageSchema = `
fields:
  - name: title
    block: {kind: text, label: Title, default: Untitled}
  - name: body
    block:
      kind: stream
      insert_policy: append
      children:
        - name: heading
          block: {kind: text}
        - name: gallery
          block:
            kind: list
            item: {kind: chooser, picker: images}
        - name: quote
          block:
            kind: struct
            fields:
              - name: text
                block: {kind: richtext}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestGenerate_WritesFormattedSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "doc.go"), "package pages\n")
	writeFile(t, filepath.Join(dir, "home-page.blocks.yaml"), pageSchema)

	if err := New(Options{}).Generate(dir); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	out := filepath.Join(dir, "home-page_blocks.go")
	code, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("generated file missing: %v", err)
	}

	file, err := parser.ParseFile(token.NewFileSet(), out, code, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, code)
	}
	if file.Name.Name != "pages" {
		t.Errorf("package = %s, want pages", file.Name.Name)
	}

	src := string(code)
	for _, want := range []string{
		"// Code generated by blockfield. DO NOT EDIT.",
		"func NewHomePageFields(pickers map[string]blockfield.Picker) []*blockfield.Field",
		`blockfield.NewField("title", blockfield.NewTextInput("Title", blockfield.WithLabel("Title"), blockfield.WithDefault("Untitled")))`,
		`blockfield.WithPicker(pickers["images"])`,
		"blockfield.WithInsertPolicy(blockfield.InsertAppendOnly)",
		`{Name: "text", Block: blockfield.NewRichText("")}`,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated code missing %q:\n%s", want, src)
		}
	}
}

func TestGenerate_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page.blocks.yaml"), pageSchema)

	if err := New(Options{DryRun: true}).Generate(dir); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "page_blocks.go")); !os.IsNotExist(err) {
		t.Errorf("dry run wrote output: %v", err)
	}
}

func TestGenerate_InvalidSchema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "bad.blocks.yaml"), "fields: [{name: a, block: {kind: video}}]")

	if err := New(Options{}).Generate(dir); err == nil {
		t.Fatal("Generate() expected error for invalid schema")
	}
}

func TestFindPackages_Recursive(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"a", "b/c", ".hidden", "testdata"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(root, "a", "x.blocks.yml"), pageSchema)
	writeFile(t, filepath.Join(root, "b/c", "y.blocks.json"), `{"fields": [{"name": "t", "block": {"kind": "text"}}]}`)
	writeFile(t, filepath.Join(root, ".hidden", "z.blocks.yaml"), pageSchema)
	writeFile(t, filepath.Join(root, "testdata", "z.blocks.yaml"), pageSchema)

	pkgs, err := New(Options{}).findPackages([]string{root + "/..."})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{filepath.Join(root, "a"): true, filepath.Join(root, "b/c"): true}
	if len(pkgs) != len(want) {
		t.Fatalf("findPackages() = %v, want %d packages", pkgs, len(want))
	}
	for _, p := range pkgs {
		if !want[p] {
			t.Errorf("unexpected package %s", p)
		}
	}
}

func TestClean(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "page.blocks.yaml"), pageSchema)
	writeFile(t, filepath.Join(dir, "page_blocks.go"), "// Code generated by blockfield. DO NOT EDIT.\n\npackage x\n")
	writeFile(t, filepath.Join(dir, "notes_blocks.go"), "// Package x keeps notes on blocks.\npackage x\n")
	writeFile(t, filepath.Join(dir, "keep.go"), "package x\n")

	if err := New(Options{}).Clean(dir); err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "page_blocks.go")); !os.IsNotExist(err) {
		t.Error("generated file not removed")
	}
	for _, name := range []string{"keep.go", "notes_blocks.go"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("hand-written file %s removed", name)
		}
	}
}

func TestIdentifier(t *testing.T) {
	tests := []struct {
		in    string
		upper bool
		want  string
	}{
		{"home-page", true, "HomePage"},
		{"home_page.v2", true, "HomePageV2"},
		{"Home-Page", false, "homepage"},
		{"2col", true, "X2col"},
		{"---", true, "blocks"},
	}
	for _, tt := range tests {
		if got := identifier(tt.in, tt.upper); got != tt.want {
			t.Errorf("identifier(%q, %v) = %q, want %q", tt.in, tt.upper, got, tt.want)
		}
	}
}

func TestBlockExpr_Literal(t *testing.T) {
	got := blockExpr(schema.BlockConfig{
		Kind:    schema.KindStruct,
		Default: map[string]any{"b": []any{1, true}, "a": "x"},
		Fields:  []schema.FieldConfig{{Name: "a", Block: schema.BlockConfig{Kind: schema.KindText}}},
	})
	want := `blockfield.NewStructBlock([]blockfield.StructField{
{Name: "a", Block: blockfield.NewTextInput("")},
}, blockfield.WithDefault(map[string]any{"a": "x", "b": []any{1, true}}))`
	if got != want {
		t.Errorf("blockExpr() =\n%s\nwant\n%s", got, want)
	}
}
