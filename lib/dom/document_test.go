package dom

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm/blockfield/lib/address"
)

const page = `<!DOCTYPE html><html><body>
<form>
  <input type="hidden" id="s-count" name="s-count" value="1">
  <ul id="s-list">
    <li id="s-0-container"><input type="hidden" id="s-0-order" name="s-0-order" value="0"><button type="button" id="s-0-delete">x</button></li>
  </ul>
  <textarea id="notes" name="notes">hello</textarea>
  <select id="size" name="size"><option value="s">S</option><option value="m" selected>M</option></select>
  <input type="checkbox" name="agree" id="agree">
  <button type="button" id="s-add">Add</button>
</form>
<script type="text/template" id="def-template"><li id="__PREFIX__-container"></li></script>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	d, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return d
}

func TestDocument_ValueAndSetValue(t *testing.T) {
	d := mustParse(t, page)

	tests := []struct {
		id   address.Prefix
		want string
	}{
		{"s-count", "1"},
		{"notes", "hello"},
		{"size", "m"},
	}
	for _, tt := range tests {
		got, err := d.Value(tt.id)
		if err != nil {
			t.Fatalf("Value(%s) error = %v", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("Value(%s) = %q, want %q", tt.id, got, tt.want)
		}
	}

	if err := d.SetValue("s-count", "2"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if err := d.SetValue("notes", "bye"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if v, _ := d.Value("s-count"); v != "2" {
		t.Errorf("Value(s-count) = %q, want 2", v)
	}
	if v, _ := d.Value("notes"); v != "bye" {
		t.Errorf("Value(notes) = %q, want bye", v)
	}
}

func TestDocument_MissingElement(t *testing.T) {
	d := mustParse(t, page)
	if _, err := d.Value("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Value() error = %v, want ErrNotFound", err)
	}
	if err := d.Click("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Click() error = %v, want ErrNotFound", err)
	}
}

func TestDocument_TemplateTextIsVerbatim(t *testing.T) {
	d := mustParse(t, page)
	got, err := d.Text("def-template")
	if err != nil {
		t.Fatalf("Text() error = %v", err)
	}
	if got != `<li id="__PREFIX__-container"></li>` {
		t.Errorf("Text() = %q", got)
	}
	if d.Has("__PREFIX__-container") {
		t.Error("template body must not be indexed")
	}
}

func TestDocument_InsertModes(t *testing.T) {
	d := mustParse(t, page)

	steps := []struct {
		target address.Prefix
		mode   SwapMode
		id     string
	}{
		{"s-list", SwapBeforeEnd, "s-1"},
		{"s-list", SwapAfterBegin, "s-2"},
		{"s-1-container", SwapBeforeBegin, "s-3"},
		{"s-0-container", SwapAfterEnd, "s-4"},
	}
	for _, step := range steps {
		markup := `<li id="` + step.id + `-container"></li>`
		if err := d.Insert(step.target, step.mode, markup); err != nil {
			t.Fatalf("Insert(%s, %s) error = %v", step.target, step.mode, err)
		}
	}

	got, err := d.ChildIDs("s-list")
	if err != nil {
		t.Fatalf("ChildIDs() error = %v", err)
	}
	want := []address.Prefix{"s-2-container", "s-0-container", "s-4-container", "s-3-container", "s-1-container"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("child order mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_InsertRejectsDuplicateIDs(t *testing.T) {
	d := mustParse(t, page)
	err := d.Insert("s-list", SwapBeforeEnd, `<li id="s-0-container"></li>`)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("Insert() error = %v, want ErrDuplicateID", err)
	}
	ids, _ := d.ChildIDs("s-list")
	if len(ids) != 1 {
		t.Errorf("document mutated on failed insert: %v", ids)
	}
}

func TestDocument_InsertUnsupportedMode(t *testing.T) {
	d := mustParse(t, page)
	if err := d.Insert("s-list", SwapMode("outerHTML"), "<li></li>"); !errors.Is(err, ErrUnsupportedSwap) {
		t.Errorf("Insert() error = %v, want ErrUnsupportedSwap", err)
	}
}

func TestDocument_DispatchRunsHandlersInOrder(t *testing.T) {
	d := mustParse(t, page)
	var calls []string
	_ = d.On("s-add", EventClick, func() error { calls = append(calls, "first"); return nil })
	_ = d.On("s-add", EventClick, func() error { calls = append(calls, "second"); return nil })

	if err := d.Click("s-add"); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, calls); diff != "" {
		t.Errorf("handler order mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_NestedDispatchIsQueued(t *testing.T) {
	d := mustParse(t, page)
	var calls []string
	_ = d.On("s-add", EventClick, func() error {
		calls = append(calls, "add:start")
		if err := d.Click("s-0-delete"); err != nil {
			return err
		}
		calls = append(calls, "add:end")
		return nil
	})
	_ = d.On("s-0-delete", EventClick, func() error {
		calls = append(calls, "delete")
		return nil
	})

	if err := d.Click("s-add"); err != nil {
		t.Fatalf("Click() error = %v", err)
	}
	want := []string{"add:start", "add:end", "delete"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("dispatch order mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument_HiddenElementsAreInert(t *testing.T) {
	d := mustParse(t, page)
	fired := false
	_ = d.On("s-0-delete", EventClick, func() error { fired = true; return nil })

	if err := d.Hide("s-0-container"); err != nil {
		t.Fatalf("Hide() error = %v", err)
	}
	hidden, err := d.Hidden("s-0-delete")
	if err != nil || !hidden {
		t.Fatalf("Hidden() = %v, %v; want true", hidden, err)
	}
	if err := d.Click("s-0-delete"); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("Click() error = %v, want ErrNotInteractive", err)
	}
	if fired {
		t.Error("handler fired on hidden element")
	}
}

func TestDocument_HandlerErrorStopsEvent(t *testing.T) {
	d := mustParse(t, page)
	boom := errors.New("boom")
	second := false
	_ = d.On("s-add", EventClick, func() error { return boom })
	_ = d.On("s-add", EventClick, func() error { second = true; return nil })

	if err := d.Click("s-add"); !errors.Is(err, boom) {
		t.Errorf("Click() error = %v, want boom", err)
	}
	if second {
		t.Error("second handler ran after failure")
	}
}

func TestDocument_FormValues(t *testing.T) {
	d := mustParse(t, page)
	_ = d.Hide("s-0-container")

	got := d.FormValues()
	if got.Get("s-count") != "1" || got.Get("s-0-order") != "0" {
		t.Errorf("hidden inputs missing: %v", got)
	}
	if got.Get("notes") != "hello" || got.Get("size") != "m" {
		t.Errorf("controls missing: %v", got)
	}
	if _, ok := got["agree"]; ok {
		t.Error("unchecked checkbox must not be submitted")
	}

	_ = d.SetAttr("agree", "checked", "")
	if v := d.FormValues().Get("agree"); v != "on" {
		t.Errorf("checked checkbox = %q, want on", v)
	}
}

func TestParse_RejectsDuplicateIDs(t *testing.T) {
	_, err := ParseString(`<div id="a"></div><div id="a"></div>`)
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("ParseString() error = %v, want ErrDuplicateID", err)
	}
}

func TestDocument_RenderRoundTrip(t *testing.T) {
	d := mustParse(t, page)
	if err := d.Insert("s-list", SwapBeforeEnd, `<li id="s-1-container"></li>`); err != nil {
		t.Fatal(err)
	}
	out := d.String()
	if !strings.Contains(out, `id="s-1-container"`) {
		t.Errorf("rendered output missing inserted node: %s", out)
	}
}
