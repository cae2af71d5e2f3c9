package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/pthm/blockfield"
	"github.com/pthm/blockfield/lib/generator"
	"github.com/pthm/blockfield/lib/schema"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "generate":
		err = runGenerate(args)
	case "clean":
		err = runClean(args)
	case "render":
		err = runRender(args)
	case "run":
		err = runRun(args)
	case "version":
		fmt.Printf("blockfield version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`blockfield - Block-based form fields for Go

Usage:
  blockfield <command> [arguments]

Commands:
  generate [packages]       Generate Go constructors for *.blocks.yaml schemas
  clean [packages]          Remove generated files (*_blocks.go)
  render <schema>           Render a schema's form as a standalone HTML page
  run <schema> [clicks...]  Render, activate and click through a form headlessly,
                            then print the submitted values as YAML
  version                   Print version
  help                      Show this help

Options:
  --dry-run                 (generate, clean) Show what would change without writing
  -o <file>                 (render) Write the page to file instead of stdout
  -v                        (render, run) Log runtime activity to stderr

Environment:
  BLOCKFIELD_KEY            Key used to sign embedded values (default: a dev key)

Examples:
  blockfield generate ./...
  blockfield render page.blocks.yaml -o page.html
  blockfield run page.blocks.yaml body-add-heading body-0-delete`)
}

func runGenerate(args []string) error {
	var dryRun bool
	var patterns []string

	for _, arg := range args {
		if arg == "--dry-run" {
			dryRun = true
		} else {
			patterns = append(patterns, arg)
		}
	}

	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	gen := generator.New(generator.Options{
		DryRun: dryRun,
	})

	return gen.Generate(patterns...)
}

func runClean(args []string) error {
	var dryRun bool
	var patterns []string

	for _, arg := range args {
		if arg == "--dry-run" {
			dryRun = true
		} else {
			patterns = append(patterns, arg)
		}
	}

	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	gen := generator.New(generator.Options{DryRun: dryRun})
	return gen.Clean(patterns...)
}

type commonFlags struct {
	schema  string
	output  string
	verbose bool
	rest    []string
}

func parseCommon(args []string) (commonFlags, error) {
	var f commonFlags
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-v", "--verbose":
			f.verbose = true
		case "-o":
			if i+1 >= len(args) {
				return f, fmt.Errorf("-o requires a file name")
			}
			i++
			f.output = args[i]
		default:
			if f.schema == "" {
				f.schema = arg
			} else {
				f.rest = append(f.rest, arg)
			}
		}
	}
	if f.schema == "" {
		return f, fmt.Errorf("missing schema file")
	}
	return f, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

func key() []byte {
	if k := os.Getenv("BLOCKFIELD_KEY"); k != "" {
		return []byte(k)
	}
	return []byte("blockfield-dev-key")
}

// pickers returns a picker for every name used in the schema. Each one
// reports a fixed value derived from its name, which is enough to exercise
// choosers from the command line.
func pickers(f *schema.File) map[string]blockfield.Picker {
	out := make(map[string]blockfield.Picker)
	var visit func(b schema.BlockConfig)
	visit = func(b schema.BlockConfig) {
		if b.Picker != "" {
			name := b.Picker
			out[name] = func(string) (string, bool, error) {
				return name + "-1", true, nil
			}
		}
		for _, fc := range b.Fields {
			visit(fc.Block)
		}
		for _, fc := range b.Children {
			visit(fc.Block)
		}
		if b.Item != nil {
			visit(*b.Item)
		}
	}
	for _, fc := range f.Fields {
		visit(fc.Block)
	}
	return out
}

func loadForm(flags commonFlags, log *zap.Logger) (*schema.File, *blockfield.Form, error) {
	f, err := schema.LoadFile(flags.schema)
	if err != nil {
		return nil, nil, err
	}
	form, err := f.Form(key(), schema.Options{Pickers: pickers(f), Logger: log})
	if err != nil {
		return nil, nil, err
	}
	return f, form, nil
}

func runRender(args []string) error {
	flags, err := parseCommon(args)
	if err != nil {
		return err
	}
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	f, form, err := loadForm(flags, log)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(flags.schema, ".blocks.yaml")
	html, err := blockfield.RenderString(context.Background(), form.Document(title, f.Values))
	if err != nil {
		return err
	}

	if flags.output == "" {
		_, err = fmt.Print(html)
		return err
	}
	return os.WriteFile(flags.output, []byte(html), 0644)
}

func runRun(args []string) error {
	flags, err := parseCommon(args)
	if err != nil {
		return err
	}
	log, err := newLogger(flags.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	f, form, err := loadForm(flags, log)
	if err != nil {
		return err
	}

	tp, err := blockfield.TestRender(form, f.Values, blockfield.WithLogger(log))
	if err != nil {
		return err
	}
	for _, id := range flags.rest {
		if err := tp.Click(blockfield.Prefix(id)); err != nil {
			return fmt.Errorf("click %s: %w", id, err)
		}
	}

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
