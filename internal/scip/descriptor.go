package scip

import "strings"

type descriptorKind int

const (
	descriptorOther descriptorKind = iota
	descriptorMethod
	descriptorType
)

// descriptor is the last descriptor of a SCIP symbol string such as
// "scip-go gomod example v1 `example/pkg`/Widget#Render().".
type descriptor struct {
	name   string
	kind   descriptorKind
	inType bool
}

// parseDescriptor extracts the trailing descriptor. Local symbols and
// symbols without descriptors report ok=false.
func parseDescriptor(symbol string) (descriptor, bool) {
	if strings.HasPrefix(symbol, "local ") {
		return descriptor{}, false
	}
	parts := strings.SplitN(symbol, " ", 5)
	if len(parts) < 5 || parts[4] == "" {
		return descriptor{}, false
	}
	desc := parts[4]

	switch {
	case strings.HasSuffix(desc, ")."):
		open := strings.LastIndex(desc, "(")
		if open < 0 {
			return descriptor{}, false
		}
		name, prefix := trailingName(desc[:open])
		return descriptor{name: name, kind: descriptorMethod, inType: strings.Contains(prefix, "#")}, name != ""
	case strings.HasSuffix(desc, "#"):
		name, prefix := trailingName(desc[:len(desc)-1])
		return descriptor{name: name, kind: descriptorType, inType: strings.Contains(prefix, "#")}, name != ""
	default:
		name, _ := trailingName(strings.TrimRight(desc, "./:!"))
		return descriptor{name: name, kind: descriptorOther}, name != ""
	}
}

// trailingName splits s into its last (possibly backtick-escaped) name and
// everything before it.
func trailingName(s string) (name, prefix string) {
	if strings.HasSuffix(s, "`") {
		if open := strings.LastIndex(s[:len(s)-1], "`"); open >= 0 {
			return strings.ReplaceAll(s[open+1:len(s)-1], "``", "`"), s[:open]
		}
	}
	i := strings.LastIndexAny(s, "/#.:!")
	return s[i+1:], s[:i+1]
}
