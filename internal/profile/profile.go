// Package profile holds per-language settings for call detection and
// comment absorption.
package profile

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"
)

//go:embed profiles.toml
var defaultProfiles string

// Profile describes the lexical conventions used when scanning method text.
type Profile struct {
	// LineComment starts a single-line comment.
	LineComment string `toml:"line_comment"`
	// Self lists receiver keywords for self-qualified calls (this.name()).
	Self []string `toml:"self"`
	// Base lists keywords for parent-qualified calls (super.name()).
	Base []string `toml:"base"`
	// ConstructorSentinel is the name providers give constructors.
	ConstructorSentinel string `toml:"constructor_sentinel"`
	// ReceiverCalls counts `anyIdent.name(` as a call, for languages whose
	// receivers have arbitrary names.
	ReceiverCalls bool `toml:"receiver_calls"`
}

// Set is a default profile plus per-language overrides.
type Set struct {
	Default   Profile                `toml:"default"`
	Languages map[string]rawOverride `toml:"languages"`
}

// rawOverride uses pointers so that an explicitly empty list can be told
// apart from a missing key.
type rawOverride struct {
	LineComment         *string   `toml:"line_comment"`
	Self                *[]string `toml:"self"`
	Base                *[]string `toml:"base"`
	ConstructorSentinel *string   `toml:"constructor_sentinel"`
	ReceiverCalls       *bool     `toml:"receiver_calls"`
}

// Default returns the built-in profile set.
func Default() *Set {
	set, err := Parse(defaultProfiles)
	if err != nil {
		panic(fmt.Sprintf("embedded profiles: %v", err))
	}
	return set
}

// Parse decodes a profile set from TOML.
func Parse(data string) (*Set, error) {
	var set Set
	if _, err := toml.Decode(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	if set.Languages == nil {
		set.Languages = make(map[string]rawOverride)
	}
	return &set, nil
}

// LoadFile returns the built-in set with the file at path layered on top.
func LoadFile(path string) (*Set, error) {
	base := Default()
	var user Set
	if _, err := toml.DecodeFile(path, &user); err != nil {
		return nil, fmt.Errorf("failed to load profiles from %s: %w", path, err)
	}
	base.merge(&user)
	return base, nil
}

func (s *Set) merge(o *Set) {
	if o.Default.LineComment != "" {
		s.Default.LineComment = o.Default.LineComment
	}
	if o.Default.Self != nil {
		s.Default.Self = o.Default.Self
	}
	if o.Default.Base != nil {
		s.Default.Base = o.Default.Base
	}
	if o.Default.ConstructorSentinel != "" {
		s.Default.ConstructorSentinel = o.Default.ConstructorSentinel
	}
	if o.Default.ReceiverCalls {
		s.Default.ReceiverCalls = true
	}
	for lang, ov := range o.Languages {
		cur := s.Languages[lang]
		if ov.LineComment != nil {
			cur.LineComment = ov.LineComment
		}
		if ov.Self != nil {
			cur.Self = ov.Self
		}
		if ov.Base != nil {
			cur.Base = ov.Base
		}
		if ov.ConstructorSentinel != nil {
			cur.ConstructorSentinel = ov.ConstructorSentinel
		}
		if ov.ReceiverCalls != nil {
			cur.ReceiverCalls = ov.ReceiverCalls
		}
		s.Languages[lang] = cur
	}
}

// For returns the effective profile for a language identifier. Unknown
// languages get the default profile.
func (s *Set) For(lang string) Profile {
	p := s.Default
	p.Self = append([]string(nil), p.Self...)
	p.Base = append([]string(nil), p.Base...)

	ov, ok := s.Languages[lang]
	if !ok {
		return p
	}
	if ov.LineComment != nil {
		p.LineComment = *ov.LineComment
	}
	if ov.Self != nil {
		p.Self = append([]string(nil), (*ov.Self)...)
	}
	if ov.Base != nil {
		p.Base = append([]string(nil), (*ov.Base)...)
	}
	if ov.ConstructorSentinel != nil {
		p.ConstructorSentinel = *ov.ConstructorSentinel
	}
	if ov.ReceiverCalls != nil {
		p.ReceiverCalls = *ov.ReceiverCalls
	}
	return p
}
