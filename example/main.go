// Command example renders a block form and drives it headlessly: it adds,
// reorders and deletes stream members the way an editor would, then prints
// the resulting submission.
package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pthm/blockfield"
	"github.com/pthm/blockfield/lib/schema"
)

//go:embed page.blocks.yaml
var pageSchema []byte

var gallery = []string{"img-harbour", "img-team", "img-office"}

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Fatal("example failed", zap.Error(err))
	}
}

func run(log *zap.Logger) error {
	f, err := schema.Parse(pageSchema, "page.blocks.yaml")
	if err != nil {
		return err
	}

	next := 0
	pickers := map[string]blockfield.Picker{
		"images": func(current string) (string, bool, error) {
			chosen := gallery[next%len(gallery)]
			next++
			return chosen, true, nil
		},
	}

	form, err := f.Form([]byte("example-key"), schema.Options{Pickers: pickers, Logger: log})
	if err != nil {
		return err
	}

	if len(os.Args) > 1 && os.Args[1] == "html" {
		html, err := blockfield.RenderString(context.Background(), form.Document("About us", f.Values))
		if err != nil {
			return err
		}
		fmt.Println(html)
		return nil
	}

	tp, err := blockfield.TestRender(form, f.Values, blockfield.WithLogger(log))
	if err != nil {
		return err
	}

	steps := []blockfield.Prefix{
		"body-add-image",        // body-2
		"body-2-value-button",   // pick an image
		"body-0-after-links",    // body-3, right after the heading
		"body-3-value-add",      // first link
		"body-1-delete",         // drop the paragraph
		"body-2-before-heading", // body-4, before the image
	}
	for _, id := range steps {
		if err := tp.Click(id); err != nil {
			return fmt.Errorf("click %s: %w", id, err)
		}
	}
	if err := tp.Doc.SetValue("body-3-value-0-value-url", "https://example.com"); err != nil {
		return err
	}
	if err := tp.Doc.SetValue("body-4-value", "Gallery"); err != nil {
		return err
	}

	log.Info("stream state",
		zap.Int("count", tp.Count("body")),
		zap.Any("order", tp.LiveOrder("body")))

	values, err := tp.Submit()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(values); err != nil {
		return err
	}
	return enc.Close()
}
