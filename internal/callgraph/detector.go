// Package callgraph builds a name-keyed call graph between sibling methods
// by scanning their text, and orders methods by walking that graph.
package callgraph

import (
	"regexp"
	"sort"

	"codeaxe/internal/profile"
)

// Call is the earliest call site of a candidate name inside a body.
type Call struct {
	Name   string
	Offset int
}

// CallDetector finds which candidate names a method body calls. Calls are
// returned ordered by their earliest offset.
type CallDetector interface {
	Detect(body string, candidates []string) []Call
}

// RegexDetector is a lexical heuristic: it blanks out comments and string
// literals, then looks for `name(`, `self.name(` and `base.name(` shapes.
type RegexDetector struct {
	profile  profile.Profile
	cleaners []*regexp.Regexp
	cache    map[string]*namePatterns
}

type namePatterns struct {
	bare      *regexp.Regexp
	qualified *regexp.Regexp
}

var (
	blockComment = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	doubleQuoted = regexp.MustCompile(`"(?:\\"|[^"])*"`)
	singleQuoted = regexp.MustCompile(`'(?:\\'|[^'])*'`)
	backtickLit  = regexp.MustCompile("`(?:\\\\`|[^`])*`")
)

var _ CallDetector = (*RegexDetector)(nil)

// NewRegexDetector creates a detector for the given language profile.
func NewRegexDetector(p profile.Profile) *RegexDetector {
	d := &RegexDetector{profile: p, cache: make(map[string]*namePatterns)}
	if p.LineComment != "" {
		d.cleaners = append(d.cleaners, regexp.MustCompile(`(?m)`+regexp.QuoteMeta(p.LineComment)+`.*$`))
	}
	d.cleaners = append(d.cleaners, blockComment, doubleQuoted, singleQuoted, backtickLit)
	return d
}

// Clean removes line comments, block comments and quoted literals in that
// order. Removal is textual, so a comment marker inside a string literal
// still truncates the line.
func (d *RegexDetector) Clean(text string) string {
	for _, re := range d.cleaners {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

// Detect implements CallDetector. body is cleaned before matching.
func (d *RegexDetector) Detect(body string, candidates []string) []Call {
	cleaned := d.Clean(body)

	var calls []Call
	seen := make(map[string]bool, len(candidates))
	for _, name := range candidates {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		if off, ok := d.earliest(cleaned, name); ok {
			calls = append(calls, Call{Name: name, Offset: off})
		}
	}

	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Offset < calls[j].Offset
	})
	return calls
}

// earliest returns the smallest offset at which any call shape for name
// matches.
func (d *RegexDetector) earliest(text, name string) (int, bool) {
	pats := d.patterns(name)
	best, found := -1, false

	for _, loc := range pats.bare.FindAllStringIndex(text, -1) {
		if precededByDot(text, loc[0]) {
			continue
		}
		best, found = loc[0], true
		break
	}

	if pats.qualified != nil {
		if loc := pats.qualified.FindStringIndex(text); loc != nil {
			if !found || loc[0] < best {
				best, found = loc[0], true
			}
		}
	}
	return best, found
}

func (d *RegexDetector) patterns(name string) *namePatterns {
	if p, ok := d.cache[name]; ok {
		return p
	}
	quoted := regexp.QuoteMeta(name)
	p := &namePatterns{
		bare: regexp.MustCompile(`\b` + quoted + `\s*\(`),
	}

	var alts []string
	for _, kw := range d.profile.Self {
		alts = append(alts, regexp.QuoteMeta(kw))
	}
	for _, kw := range d.profile.Base {
		alts = append(alts, regexp.QuoteMeta(kw))
	}
	if d.profile.ReceiverCalls {
		alts = append(alts, `\b[A-Za-z_][A-Za-z0-9_]*`)
	}
	if len(alts) > 0 {
		expr := `(?:`
		for i, a := range alts {
			if i > 0 {
				expr += `|`
			}
			expr += a
		}
		expr += `)\.` + quoted + `\s*\(`
		p.qualified = regexp.MustCompile(expr)
	}

	d.cache[name] = p
	return p
}

// precededByDot reports whether the text before offset, ignoring
// whitespace, ends in a member-access dot.
func precededByDot(text string, offset int) bool {
	i := offset - 1
	for i >= 0 && isSpace(text[i]) {
		i--
	}
	return i >= 0 && text[i] == '.'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
