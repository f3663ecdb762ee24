package stripper

import (
	"fmt"
	"slices"
	"strings"
)

// Directive selects one category of comment to remove.
type Directive string

const (
	SingleLine Directive = "single-line"
	MultiLine  Directive = "multi-line"
	HTML       Directive = "html"
	// JSDoc extends MultiLine to documentation blocks (/** ... */). On its own it
	// removes nothing.
	JSDoc Directive = "jsdoc"
)

// AllDirectives lists the directive vocabulary in pipeline order.
var AllDirectives = []Directive{SingleLine, MultiLine, HTML, JSDoc}

// ParseDirective converts a directive name into a Directive.
func ParseDirective(s string) (Directive, error) {
	d := Directive(strings.ToLower(strings.TrimSpace(s)))
	if d.IsValid() {
		return d, nil
	}
	return "", fmt.Errorf("unknown directive %q (valid: %s)", s, joinDirectives(AllDirectives))
}

// IsValid reports whether d belongs to the directive vocabulary.
func (d Directive) IsValid() bool {
	return slices.Contains(AllDirectives, d)
}

func (d Directive) String() string {
	return string(d)
}

// DirectiveSet is an unordered set of directives. The zero value is empty.
type DirectiveSet struct {
	bits uint8
}

func (d Directive) bit() uint8 {
	switch d {
	case SingleLine:
		return 1 << 0
	case MultiLine:
		return 1 << 1
	case HTML:
		return 1 << 2
	case JSDoc:
		return 1 << 3
	default:
		return 0
	}
}

// NewDirectiveSet builds a set from the given directives. Unknown values are ignored.
func NewDirectiveSet(directives ...Directive) DirectiveSet {
	var set DirectiveSet
	for _, d := range directives {
		set.bits |= d.bit()
	}
	return set
}

// ParseDirectiveSet parses directive names, failing on the first unknown one.
func ParseDirectiveSet(names []string) (DirectiveSet, error) {
	var set DirectiveSet
	for _, name := range names {
		d, err := ParseDirective(name)
		if err != nil {
			return DirectiveSet{}, err
		}
		set = set.With(d)
	}
	return set, nil
}

// DefaultDirectives is the set used when nothing is configured: every comment
// category except documentation blocks.
func DefaultDirectives() DirectiveSet {
	return NewDirectiveSet(SingleLine, MultiLine, HTML)
}

// DirectivesFromLegacy converts the boolean "preserve documentation comments"
// flag into a directive set.
func DirectivesFromLegacy(preserveDocs bool) DirectiveSet {
	if preserveDocs {
		return DefaultDirectives()
	}
	return NewDirectiveSet(SingleLine, MultiLine, HTML, JSDoc)
}

// Has reports whether d is in the set.
func (s DirectiveSet) Has(d Directive) bool {
	b := d.bit()
	return b != 0 && s.bits&b != 0
}

// With returns a copy of s that also contains d.
func (s DirectiveSet) With(d Directive) DirectiveSet {
	s.bits |= d.bit()
	return s
}

// IsEmpty reports whether no directive is set.
func (s DirectiveSet) IsEmpty() bool {
	return s.bits == 0
}

// RemovesDocs reports whether documentation blocks are removed.
func (s DirectiveSet) RemovesDocs() bool {
	return s.Has(MultiLine) && s.Has(JSDoc)
}

// Directives returns the members of s in pipeline order.
func (s DirectiveSet) Directives() []Directive {
	out := make([]Directive, 0, len(AllDirectives))
	for _, d := range AllDirectives {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Strings returns the member names of s in pipeline order.
func (s DirectiveSet) Strings() []string {
	ds := s.Directives()
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.String()
	}
	return out
}

func (s DirectiveSet) String() string {
	return joinDirectives(s.Directives())
}

func joinDirectives(ds []Directive) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = string(d)
	}
	return strings.Join(parts, ", ")
}
