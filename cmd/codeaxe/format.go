package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeaxe/internal/history"
	"codeaxe/internal/symbols"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatEditHuman renders the messages of an edit command and what it did.
func formatEditHuman(out editOutput) string {
	if out.Result == nil {
		return ""
	}
	var b strings.Builder
	for _, msg := range out.Messages {
		b.WriteString(msg + "\n")
	}
	if out.Range != nil {
		fmt.Fprintf(&b, "Range: %s\n", out.Range)
	}
	if out.EditCount > 0 {
		verb := "Applied"
		if out.Preview != "" {
			verb = "Would apply"
		}
		fmt.Fprintf(&b, "%s %d edit(s)\n", verb, out.EditCount)
	}
	return b.String()
}

// formatSymbolsHuman prints the forest as an indented outline with 1-based
// positions.
func formatSymbolsHuman(forest []symbols.Symbol) string {
	var b strings.Builder
	symbols.Walk(forest, func(s *symbols.Symbol, depth int) bool {
		fmt.Fprintf(&b, "%s%s %s [%s]\n", strings.Repeat("  ", depth), s.Kind, s.Name, s.Range)
		return true
	})
	if b.Len() == 0 {
		return "No symbols found\n"
	}
	return b.String()
}

func formatHistoryHuman(groups []history.Group) string {
	if len(groups) == 0 {
		return "No recorded edits\n"
	}
	var b strings.Builder
	for _, g := range groups {
		state := ""
		if g.Undone {
			state = " (undone)"
		}
		fmt.Fprintf(&b, "%s  %-6s %-30s %3d edit(s)  %s%s\n",
			g.CreatedAt.Local().Format("2006-01-02 15:04:05"), g.Command, g.DocPath, g.EditCount, shortID(g.ID), state)
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
