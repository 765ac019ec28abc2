//go:build mage

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mesh-intelligence/pustaka/internal/paths"
	"github.com/mesh-intelligence/pustaka/internal/sqlite"
	"github.com/mesh-intelligence/pustaka/pkg/types"
)

// pkgStats counts one Go package directory.
type pkgStats struct {
	Prod  int `json:"prod"`
	Test  int `json:"test"`
	Tests int `json:"tests"`
}

// Stats prints per-package Go line counts, the number of test functions,
// web template lines, and the number of books in the local catalog
// ($(CWD)/.pustaka-db) when one exists.
func Stats() error {
	pkgs := map[string]*pkgStats{}
	templateLines := 0

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == ".git" || path == binaryDir || path == "magefiles" || strings.HasPrefix(path, "_") {
				return filepath.SkipDir
			}
			return nil
		}

		switch {
		case strings.HasSuffix(path, ".html") && strings.Contains(path, "templates"):
			n, _, err := countLines(path)
			if err == nil {
				templateLines += n
			}
		case strings.HasSuffix(path, ".go"):
			n, tests, err := countLines(path)
			if err != nil {
				return nil
			}
			dir := filepath.Dir(path)
			ps, ok := pkgs[dir]
			if !ok {
				ps = &pkgStats{}
				pkgs[dir] = ps
			}
			if strings.HasSuffix(path, "_test.go") {
				ps.Test += n
				ps.Tests += tests
			} else {
				ps.Prod += n
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(pkgs))
	for dir := range pkgs {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	var total pkgStats
	for _, dir := range dirs {
		ps := pkgs[dir]
		fmt.Printf("%-20s prod %5d  test %5d  tests %3d\n", dir, ps.Prod, ps.Test, ps.Tests)
		total.Prod += ps.Prod
		total.Test += ps.Test
		total.Tests += ps.Tests
	}

	record := map[string]any{
		"go_loc_prod":    total.Prod,
		"go_loc_test":    total.Test,
		"test_functions": total.Tests,
		"template_lines": templateLines,
		"packages":       len(dirs),
	}
	if books, ok := catalogSize(); ok {
		record["catalog_books"] = books
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countLines returns the number of lines in path and how many of them
// declare a Go test function.
func countLines(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	lines, tests := 0, 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
		if strings.HasPrefix(scanner.Text(), "func Test") {
			tests++
		}
	}
	return lines, tests, scanner.Err()
}

// catalogSize counts the books in the default data directory. It reports
// false when there is no catalog there.
func catalogSize() (int, bool) {
	dataDir, err := paths.ResolveDataDir("", "")
	if err != nil {
		return 0, false
	}
	if _, err := os.Stat(filepath.Join(dataDir, sqlite.DatabaseFileName)); err != nil {
		return 0, false
	}

	backend := sqlite.NewBackend(nil)
	if err := backend.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}); err != nil {
		return 0, false
	}
	defer backend.Detach()

	books, err := backend.List("")
	if err != nil {
		return 0, false
	}
	return len(books), true
}
