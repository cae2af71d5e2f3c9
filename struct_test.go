package blockfield

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// failingBlock is a text input whose initializer always fails.
type failingBlock struct {
	*TextInput
	err error
}

func (b failingBlock) Initializer(Prefix) Initializer {
	return func(*Page, any, Prefix) error { return b.err }
}

func TestStructBlock_RoutesFieldValues(t *testing.T) {
	var calls []activation
	block := NewStructBlock([]StructField{
		{Name: "title", Block: newRecordingBlock(&calls)},
		{Name: "body", Block: NewRichText("Body")},
		{Name: "tags", Block: NewListBlock(newRecordingBlock(&calls))},
	})

	tp := mustTestRender(t, "card", block, map[string]any{
		"title": "Hello",
		"tags":  []any{"go"},
	})

	want := []activation{
		{def: "def-card-title", prefix: "card-title", value: "Hello"},
		{def: "def-card-tags-item", prefix: "card-tags-0-value", value: "go"},
	}
	if diff := cmp.Diff(want, calls, cmp.AllowUnexported(activation{})); diff != "" {
		t.Errorf("activations mismatch (-want +got):\n%s", diff)
	}

	mustClick(t, tp, "card-tags-add")
	if got := tp.Count("card-tags"); got != 2 {
		t.Errorf("Count() = %d, want 2", got)
	}

	got, err := tp.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	wantValue := map[string]any{
		"card": map[string]any{
			"title": "Hello",
			"body":  "",
			"tags":  []any{"go", ""},
		},
	}
	if diff := cmp.Diff(wantValue, got); diff != "" {
		t.Errorf("Submit() mismatch (-want +got):\n%s", diff)
	}
}

func TestStructBlock_NoInitializerForStaticFields(t *testing.T) {
	block := NewStructBlock([]StructField{
		{Name: "a", Block: NewTextInput("A")},
		{Name: "b", Block: NewRichText("B")},
	})
	if block.Initializer("def") != nil {
		t.Error("struct of static fields should need no initializer")
	}
}

func TestStructBlock_FieldFailureDoesNotStopSiblings(t *testing.T) {
	var calls []activation
	boom := errors.New("boom")
	block := NewStructBlock([]StructField{
		{Name: "first", Block: failingBlock{TextInput: NewTextInput("First"), err: boom}},
		{Name: "second", Block: newRecordingBlock(&calls)},
	})

	err := block.Initializer("def-s")(nil, nil, "s")
	if !errors.Is(err, boom) {
		t.Errorf("initializer error = %v, want boom", err)
	}
	if diff := cmp.Diff([]Prefix{"s-second"}, activatedPrefixes(calls)); diff != "" {
		t.Errorf("sibling not activated (-want +got):\n%s", diff)
	}
}

func TestStructBlock_Default(t *testing.T) {
	block := NewStructBlock([]StructField{
		{Name: "a", Block: NewTextInput("A", WithDefault("x"))},
		{Name: "l", Block: NewListBlock(NewTextInput("L"))},
	})
	want := map[string]any{"a": "x", "l": []any{}}
	if diff := cmp.Diff(want, block.Default()); diff != "" {
		t.Errorf("Default() mismatch (-want +got):\n%s", diff)
	}
}

func TestStructBlock_ValueFromForm(t *testing.T) {
	block := NewStructBlock([]StructField{
		{Name: "a", Block: NewTextInput("A")},
		{Name: "b", Block: NewChooser("B")},
	})
	got, err := block.ValueFromForm(url.Values{"s-a": {"one"}, "s-b": {"two"}}, "s")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[string]any{"a": "one", "b": "two"}, got); diff != "" {
		t.Errorf("ValueFromForm() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewStructBlock_PanicsOnInvalidName(t *testing.T) {
	for _, name := range []string{"", "has space", "dup", "data", "field", "img-button"} {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("NewStructBlock() did not panic for %q", name)
				}
			}()
			fields := []StructField{{Name: name, Block: NewTextInput("x")}}
			if name == "dup" {
				fields = append(fields, StructField{Name: "dup", Block: NewTextInput("y")})
			}
			NewStructBlock(fields)
		})
	}
}
