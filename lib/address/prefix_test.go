package address

import (
	"errors"
	"testing"
)

func TestPrefix_Child(t *testing.T) {
	tests := []struct {
		name   string
		prefix Prefix
		got    Prefix
		want   Prefix
	}{
		{"field", "page", Prefix("page").Child("title"), "page-title"},
		{"index", "page-content", Prefix("page-content").Index(3), "page-content-3"},
		{"join", "page", Prefix("page").Join("content", "0", Value), "page-content-0-value"},
		{"empty join", "page", Prefix("page").Join(), "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		prefix  Prefix
		wantErr bool
	}{
		{"page-content-0", false},
		{"page_content-12-value", false},
		{"", true},
		{"page-" + Placeholder, true},
		{"page content", true},
		{"page.content", true},
		{"page-$1", true},
	}
	for _, tt := range tests {
		err := Validate(tt.prefix)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.prefix, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidPrefix) {
			t.Errorf("Validate(%q) error = %v, want ErrInvalidPrefix", tt.prefix, err)
		}
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"title", false},
		{"hero_image", false},
		{"Data", false},
		{"img-button", true},
		{"data", true},
		{"field", true},
		{"button", true},
		{"menu", true},
		{"count", true},
		{"def", true},
		{"a b", true},
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidPrefix) {
			t.Errorf("ValidateName(%q) error = %v, want ErrInvalidPrefix", tt.name, err)
		}
	}
}

func TestExpand_ReplacesEveryOccurrence(t *testing.T) {
	tmpl := `<li id="__PREFIX__-container"><input id="__PREFIX__-order" name="__PREFIX__-order"></li>`
	got := Expand(tmpl, "s-4")
	want := `<li id="s-4-container"><input id="s-4-order" name="s-4-order"></li>`
	if got != want {
		t.Errorf("Expand() = %s, want %s", got, want)
	}
}

func TestTemplateID(t *testing.T) {
	if got := TemplateID("def-list", ""); got != "def-list-template" {
		t.Errorf("TemplateID() = %q", got)
	}
	if got := TemplateID("def-stream", "heading"); got != "def-stream-template-heading" {
		t.Errorf("TemplateID() = %q", got)
	}
}
