// Package generator turns block schema files into Go source.
//
// For every schema file named NAME.blocks.yaml (or .yml / .json) the
// generator writes NAME_blocks.go next to it, declaring a constructor that
// builds the schema's fields without loading YAML at runtime.
package generator

import (
	"bufio"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pthm/blockfield/lib/schema"
)

// Options configures the generator.
type Options struct {
	DryRun bool
}

// Generator generates blockfield code.
type Generator struct {
	opts Options
	fset *token.FileSet
}

// New creates a new generator.
func New(opts Options) *Generator {
	return &Generator{
		opts: opts,
		fset: token.NewFileSet(),
	}
}

// Generate generates code for the schema files in the given package
// patterns.
func (g *Generator) Generate(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.generatePackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// Clean removes generated files for the given package patterns.
func (g *Generator) Clean(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.cleanPackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// findPackages resolves package patterns to directory paths.
func (g *Generator) findPackages(patterns []string) ([]string, error) {
	var packages []string

	for _, pattern := range patterns {
		// Handle ./... pattern
		if strings.HasSuffix(pattern, "/...") {
			root := strings.TrimSuffix(pattern, "/...")
			if root == "" {
				root = "."
			}

			err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() {
					return nil
				}
				// Skip hidden directories and vendor
				base := filepath.Base(path)
				if path != root && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor" || base == "testdata") {
					return filepath.SkipDir
				}

				files, err := schemaFiles(path)
				if err != nil {
					return nil
				}
				if len(files) > 0 || hasGenerated(path) {
					packages = append(packages, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else {
			// Direct path
			packages = append(packages, pattern)
		}
	}

	return packages, nil
}

// generatePackage generates code for every schema file in one directory.
func (g *Generator) generatePackage(pkgPath string) error {
	files, err := schemaFiles(pkgPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return nil
	}

	pkgName, err := g.packageName(pkgPath)
	if err != nil {
		return err
	}

	for _, path := range files {
		f, err := schema.LoadFile(path)
		if err != nil {
			return err
		}
		if err := g.generateSchema(pkgPath, pkgName, path, f); err != nil {
			return err
		}
	}
	return nil
}

// packageName reads the package clause of the directory's Go files. A
// directory without Go files is named after itself.
func (g *Generator) packageName(pkgPath string) (string, error) {
	pkgs, err := parser.ParseDir(g.fset, pkgPath, func(info os.FileInfo) bool {
		name := info.Name()
		// Skip test files and generated files
		return !strings.HasSuffix(name, "_test.go") && !strings.HasSuffix(name, generatedSuffix)
	}, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	for name := range pkgs {
		return name, nil
	}

	abs, err := filepath.Abs(pkgPath)
	if err != nil {
		return "", err
	}
	return identifier(filepath.Base(abs), false), nil
}

// cleanPackage removes generated files from a package.
func (g *Generator) cleanPackage(pkgPath string) error {
	entries, err := os.ReadDir(pkgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), generatedSuffix) {
			path := filepath.Join(pkgPath, entry.Name())
			generated, err := isGenerated(path)
			if err != nil {
				return err
			}
			if !generated {
				fmt.Printf("skipping %s: no generated code header\n", path)
				continue
			}
			fmt.Printf("removing %s\n", path)
			if !g.opts.DryRun {
				if err := os.Remove(path); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

const generatedSuffix = "_blocks.go"

var generatedHeader = regexp.MustCompile(`^// Code generated .* DO NOT EDIT\.$`)

// isGenerated reports whether the file carries the standard generated code
// header before its package clause.
func isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if generatedHeader.MatchString(line) {
			return true, nil
		}
		if strings.HasPrefix(line, "package ") {
			return false, nil
		}
	}
	return false, sc.Err()
}

var schemaSuffixes = []string{".blocks.yaml", ".blocks.yml", ".blocks.json"}

// schemaBase returns the file name without its schema suffix, or "" if name
// is not a schema file.
func schemaBase(name string) string {
	for _, suffix := range schemaSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return ""
}

func schemaFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() && schemaBase(entry.Name()) != "" {
			out = append(out, filepath.Join(dir, entry.Name()))
		}
	}
	return out, nil
}

func hasGenerated(dir string) bool {
	matches, _ := filepath.Glob(filepath.Join(dir, "*"+generatedSuffix))
	return len(matches) > 0
}
