package blockfield

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// Markup is written straight to the writer inside templ.ComponentFunc, the
// same way lazy placeholders are produced. Every interpolated value is
// escaped with esc first.

func esc(s string) string {
	return html.EscapeString(s)
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func hiddenInput(w io.Writer, p Prefix, value string) error {
	return writef(w, `<input type="hidden" name="%s" id="%s" value="%s">`, esc(p.String()), esc(p.String()), esc(value))
}

func button(w io.Writer, p Prefix, label string) error {
	return writef(w, `<button type="button" id="%s">%s</button>`, esc(p.String()), esc(label))
}

// templateScript wraps body in a text/template script declared at id.
func templateScript(ctx context.Context, w io.Writer, id Prefix, body func(context.Context, io.Writer) error) error {
	if err := writef(w, `<script type="text/template" id="%s">`, esc(id.String())); err != nil {
		return err
	}
	if err := body(ctx, w); err != nil {
		return err
	}
	_, err := io.WriteString(w, `</script>`)
	return err
}

// RenderString renders c to a string.
func RenderString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
