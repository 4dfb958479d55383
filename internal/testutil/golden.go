package testutil

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
	"testing"
)

// updateGolden rewrites golden files instead of comparing.
// Use: go test ./internal/host -run TestSortFixtures -update
var updateGolden = flag.Bool("update", false, "update golden files")

// ShouldUpdate returns true if golden files should be updated.
func ShouldUpdate() bool {
	return *updateGolden
}

// CompareGolden compares got against the golden file name of the fixture.
// Line endings are normalized before comparing.
func CompareGolden(t *testing.T, f *Fixture, name string, got []byte) {
	t.Helper()

	got = normalizeNewlines(got)
	goldenPath := f.ExpectedPath(name)

	if *updateGolden {
		UpdateGolden(t, f, name, got)
		t.Logf("Updated golden: %s", goldenPath)
		return
	}

	expected, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("Golden file missing: %s\n\nGot:\n%s\n\nRun with -update to create it", goldenPath, got)
		}
		t.Fatalf("Failed to read golden file: %v", err)
	}
	expected = normalizeNewlines(expected)

	if !bytes.Equal(got, expected) {
		t.Fatalf("Golden mismatch for %s:\n%s\nRun with -update to refresh", name, lineDiff(string(expected), string(got), goldenPath))
	}
}

// UpdateGolden writes data to the golden file, creating expected/.
func UpdateGolden(t *testing.T, f *Fixture, name string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(f.ExpectedDir, 0o755); err != nil {
		t.Fatalf("Failed to create expected directory: %v", err)
	}
	if err := os.WriteFile(f.ExpectedPath(name), data, 0o644); err != nil {
		t.Fatalf("Failed to write golden file: %v", err)
	}
}

func normalizeNewlines(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
}

// lineDiff lists the lines that differ, with line numbers. Whitespace-only
// lines are shown quoted so blank-line differences stay visible.
func lineDiff(expected, got, path string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s (expected)\n+++ got\n", path)

	exp := strings.Split(expected, "\n")
	act := strings.Split(got, "\n")
	n := len(exp)
	if len(act) > n {
		n = len(act)
	}
	for i := 0; i < n; i++ {
		e, eok := at(exp, i)
		a, aok := at(act, i)
		if eok && aok && e == a {
			continue
		}
		if eok {
			fmt.Fprintf(&buf, "%4d - %q\n", i+1, e)
		}
		if aok {
			fmt.Fprintf(&buf, "%4d + %q\n", i+1, a)
		}
	}
	return buf.String()
}

func at(lines []string, i int) (string, bool) {
	if i < len(lines) {
		return lines[i], true
	}
	return "", false
}
