// Package testutil loads fixture directories under testdata/fixtures and
// compares results against the golden files stored next to them.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"
)

// Fixture is one case directory: testdata/fixtures/<group>/<name>.
type Fixture struct {
	Name string
	// Root is the absolute path to the case directory.
	Root string
	// ExpectedDir holds the golden files.
	ExpectedDir string
}

// Path returns the path of a file inside the fixture.
func (f *Fixture) Path(name string) string {
	return filepath.Join(f.Root, name)
}

// Read returns the content of a fixture file, failing the test on error.
func (f *Fixture) Read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(f.Path(name))
	if err != nil {
		t.Fatalf("Failed to read fixture file: %v", err)
	}
	return string(data)
}

// ExpectedPath returns the path to a golden file within the fixture.
func (f *Fixture) ExpectedPath(name string) string {
	return filepath.Join(f.ExpectedDir, name)
}

// LoadFixtures returns every case directory of group in name order.
func LoadFixtures(t *testing.T, group string) []*Fixture {
	t.Helper()

	dir := filepath.Join(fixturesRoot(t), group)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read fixture group %s: %v", group, err)
	}

	var fixtures []*Fixture
	for _, entry := range entries {
		if !entry.IsDir() || isHiddenDir(entry.Name()) {
			continue
		}
		root := filepath.Join(dir, entry.Name())
		fixtures = append(fixtures, &Fixture{
			Name:        entry.Name(),
			Root:        root,
			ExpectedDir: filepath.Join(root, "expected"),
		})
	}
	sort.Slice(fixtures, func(i, j int) bool { return fixtures[i].Name < fixtures[j].Name })
	return fixtures
}

// ForEachFixture runs fn as a subtest for every case in group.
func ForEachFixture(t *testing.T, group string, fn func(t *testing.T, f *Fixture)) {
	t.Helper()

	fixtures := LoadFixtures(t, group)
	if len(fixtures) == 0 {
		t.Skipf("No fixtures in %s", group)
	}
	for _, f := range fixtures {
		f := f
		t.Run(f.Name, func(t *testing.T) {
			fn(t, f)
		})
	}
}

// fixturesRoot returns the absolute path to testdata/fixtures/.
func fixturesRoot(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get caller information")
	}
	// internal/testutil -> project root
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	root := filepath.Join(projectRoot, "testdata", "fixtures")
	if _, err := os.Stat(root); os.IsNotExist(err) {
		t.Fatalf("Fixtures root not found: %s", root)
	}
	return root
}

func isHiddenDir(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
