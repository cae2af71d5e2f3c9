package blockfield

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type ctxKey struct{}

func TestTestRender_Success(t *testing.T) {
	tp, err := TestRender(newTestForm(), map[string]any{"title": "Hello"})
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}

	if !tp.HTMLContains(`value="Hello"`) {
		t.Errorf("HTMLContains() = false, HTML: %s", tp.Doc.String())
	}
	if tp.Value("title") != "Hello" {
		t.Errorf("Value(title) = %q, want Hello", tp.Value("title"))
	}
	if tp.Value("nope") != "" {
		t.Error("Value() of a missing element should be empty")
	}
	if tp.Count("body") != 0 || len(tp.LiveOrder("body")) != 0 {
		t.Error("empty stream should have no members")
	}
}

func TestTestRender_BootError(t *testing.T) {
	boom := errors.New("boom")
	form := NewForm(testKey)
	form.Add(NewField("f", failingBlock{TextInput: NewTextInput("F"), err: boom}))

	_, err := TestRender(form, nil)
	if !errors.Is(err, boom) {
		t.Errorf("TestRender() error = %v, want boom", err)
	}
}

func TestTestRenderWithContext(t *testing.T) {
	var seen any
	form := NewForm(testKey)
	form.Add(NewField("f", contextBlock{TextInput: NewTextInput("F"), seen: &seen}))

	ctx := context.WithValue(context.Background(), ctxKey{}, "request-1")
	tp, err := TestRenderWithContext(ctx, form, nil)
	if err != nil {
		t.Fatalf("TestRenderWithContext() error = %v", err)
	}
	if seen != "request-1" {
		t.Errorf("render context value = %v, want request-1", seen)
	}
	if !tp.Has("f") {
		t.Error("rendered field missing")
	}
}

func TestTestPage_OrderHelpers(t *testing.T) {
	tp := mustTestRender(t, "l", NewListBlock(NewTextInput("T")), []any{"a", "b", "c"})

	mustClick(t, tp, "l-1-delete")

	if diff := cmp.Diff([]Prefix{"l-0", "l-2"}, tp.LiveOrder("l")); diff != "" {
		t.Errorf("LiveOrder() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Prefix{"l-0", "l-2"}, tp.DOMOrder("l")); diff != "" {
		t.Errorf("DOMOrder() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1}, tp.Orders("l")); diff != "" {
		t.Errorf("Orders() mismatch (-want +got):\n%s", diff)
	}
	if !tp.Hidden("l-1-container") || tp.Hidden("l-0-container") {
		t.Error("Hidden() reports wrong state")
	}
	if got := tp.Values().Get("l-count"); got != "3" {
		t.Errorf("Values()[l-count] = %q, want 3", got)
	}
}
