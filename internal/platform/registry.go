// Package platform provides the platform registry: the expected, deprecated and
// special platform tables a pipeline test matrix is reconciled against.
package platform

import (
	"fmt"
	"sort"
	"strings"

	oerrors "github.com/azp-tools/matrix/internal/errors"
)

// ID is a normalized platform identifier. Container targets use a bare name
// (e.g. "fedora37"), VM targets use "family/version" (e.g. "rhel/9.1").
type ID string

// Kind returns whether the platform is a container or a VM target.
func (id ID) Kind() Kind {
	if strings.Contains(string(id), "/") {
		return KindVM
	}
	return KindContainer
}

// Group is the platform group tag (e.g. "fedora", "rhel"). Platforms sharing a
// group are versions of the same platform family.
type Group string

// Kind distinguishes container targets from VM targets.
type Kind string

const (
	KindContainer Kind = "container"
	KindVM        Kind = "vm"
)

// Membership identifies which registry table a platform belongs to.
type Membership int

const (
	// Untracked means the platform is in none of the tables.
	Untracked Membership = iota
	// Expected platforms are current and recommended for all projects.
	Expected
	// Deprecated platforms are slated for removal.
	Deprecated
	// Special platforms are tracked but never recommended.
	Special
)

func (m Membership) String() string {
	switch m {
	case Expected:
		return "expected"
	case Deprecated:
		return "deprecated"
	case Special:
		return "special"
	default:
		return "untracked"
	}
}

// Entry is a registry row.
type Entry struct {
	ID    ID    `json:"id" yaml:"id"`
	Group Group `json:"group" yaml:"group"`
}

// DeprecatedEntry is a deprecated registry row with an optional replacement.
type DeprecatedEntry struct {
	ID          ID    `json:"id" yaml:"id"`
	Group       Group `json:"group" yaml:"group"`
	Replacement ID    `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

// Spec is the raw, unvalidated registry content.
type Spec struct {
	Expected   []Entry           `json:"expected" yaml:"expected"`
	Deprecated []DeprecatedEntry `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Special    []Entry           `json:"special,omitempty" yaml:"special,omitempty"`
}

// DeprecationConfigError reports a registry that violates the table invariants:
// an id present in more than one table, a deprecated id claimed by two
// different replacements, or a replacement that is not an expected platform.
type DeprecationConfigError struct {
	ID     ID
	Reason string
}

func (e *DeprecationConfigError) Error() string {
	return fmt.Sprintf("platform registry: %q %s", e.ID, e.Reason)
}

// Unwrap lets callers match registry errors with errors.Is(err, ErrValidation).
func (e *DeprecationConfigError) Unwrap() error {
	return oerrors.ErrValidation
}

type deprecation struct {
	group       Group
	replacement ID
}

// Registry is the validated, read-only platform registry.
type Registry struct {
	expected   map[ID]Group
	deprecated map[ID]deprecation
	special    map[ID]Group
}

// NewRegistry validates spec and builds a Registry.
func NewRegistry(spec Spec) (*Registry, error) {
	r := &Registry{
		expected:   make(map[ID]Group, len(spec.Expected)),
		deprecated: make(map[ID]deprecation, len(spec.Deprecated)),
		special:    make(map[ID]Group, len(spec.Special)),
	}

	claimed := make(map[ID]Membership)
	claim := func(id ID, group Group, m Membership) error {
		if id == "" {
			return &DeprecationConfigError{ID: id, Reason: fmt.Sprintf("has an empty id in the %s table", m)}
		}
		if group == "" {
			return &DeprecationConfigError{ID: id, Reason: fmt.Sprintf("has no group in the %s table", m)}
		}
		if prev, ok := claimed[id]; ok && prev != m {
			return &DeprecationConfigError{ID: id, Reason: fmt.Sprintf("is listed as both %s and %s", prev, m)}
		}
		claimed[id] = m
		return nil
	}

	for _, e := range spec.Expected {
		if err := claim(e.ID, e.Group, Expected); err != nil {
			return nil, err
		}
		if _, dup := r.expected[e.ID]; dup {
			return nil, &DeprecationConfigError{ID: e.ID, Reason: "is listed twice as expected"}
		}
		r.expected[e.ID] = e.Group
	}

	for _, e := range spec.Special {
		if err := claim(e.ID, e.Group, Special); err != nil {
			return nil, err
		}
		if _, dup := r.special[e.ID]; dup {
			return nil, &DeprecationConfigError{ID: e.ID, Reason: "is listed twice as special"}
		}
		r.special[e.ID] = e.Group
	}

	for _, e := range spec.Deprecated {
		if err := claim(e.ID, e.Group, Deprecated); err != nil {
			return nil, err
		}
		if prev, dup := r.deprecated[e.ID]; dup {
			if prev.replacement != e.Replacement {
				return nil, &DeprecationConfigError{
					ID:     e.ID,
					Reason: fmt.Sprintf("is claimed by two different replacements (%q and %q)", prev.replacement, e.Replacement),
				}
			}
			return nil, &DeprecationConfigError{ID: e.ID, Reason: "is listed twice as deprecated"}
		}
		if e.Replacement != "" {
			if _, ok := r.expected[e.Replacement]; !ok {
				return nil, &DeprecationConfigError{
					ID:     e.ID,
					Reason: fmt.Sprintf("names replacement %q which is not an expected platform", e.Replacement),
				}
			}
		}
		r.deprecated[e.ID] = deprecation{group: e.Group, replacement: e.Replacement}
	}

	return r, nil
}

// Lookup returns the group and table of id. Tables are disjoint, so at most
// one can match.
func (r *Registry) Lookup(id ID) (Group, Membership) {
	if g, ok := r.expected[id]; ok {
		return g, Expected
	}
	if d, ok := r.deprecated[id]; ok {
		return d.group, Deprecated
	}
	if g, ok := r.special[id]; ok {
		return g, Special
	}
	return "", Untracked
}

// Replacement returns the replacement of a deprecated platform, if it has one.
func (r *Registry) Replacement(id ID) (ID, bool) {
	d, ok := r.deprecated[id]
	if !ok || d.replacement == "" {
		return "", false
	}
	return d.replacement, true
}

// Expected returns the expected platforms and their groups. The returned map
// is a copy.
func (r *Registry) Expected() map[ID]Group {
	out := make(map[ID]Group, len(r.expected))
	for id, g := range r.expected {
		out[id] = g
	}
	return out
}

// Record is a flattened registry row for display.
type Record struct {
	ID          ID         `json:"id" yaml:"id"`
	Group       Group      `json:"group" yaml:"group"`
	Membership  Membership `json:"-" yaml:"-"`
	Table       string     `json:"table" yaml:"table"`
	Kind        Kind       `json:"kind" yaml:"kind"`
	Replacement ID         `json:"replacement,omitempty" yaml:"replacement,omitempty"`
}

// Records returns every registry row ordered by table, group, then id.
func (r *Registry) Records() []Record {
	records := make([]Record, 0, len(r.expected)+len(r.deprecated)+len(r.special))
	for id, g := range r.expected {
		records = append(records, newRecord(id, g, Expected, ""))
	}
	for id, d := range r.deprecated {
		records = append(records, newRecord(id, d.group, Deprecated, d.replacement))
	}
	for id, g := range r.special {
		records = append(records, newRecord(id, g, Special, ""))
	}

	sort.Slice(records, func(i, j int) bool {
		ri, rj := records[i], records[j]
		if ri.Membership != rj.Membership {
			return ri.Membership < rj.Membership
		}
		if ri.Group != rj.Group {
			return ri.Group < rj.Group
		}
		return ri.ID < rj.ID
	})
	return records
}

func newRecord(id ID, g Group, m Membership, replacement ID) Record {
	return Record{
		ID:          id,
		Group:       g,
		Membership:  m,
		Table:       m.String(),
		Kind:        id.Kind(),
		Replacement: replacement,
	}
}

// Len returns the number of registered platforms across all tables.
func (r *Registry) Len() int {
	return len(r.expected) + len(r.deprecated) + len(r.special)
}
