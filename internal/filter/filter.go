// Package filter prunes members that must not be surfaced on generated types.
package filter

import (
	"sort"

	"github.com/toyz/delegen/internal/models"
)

// Policy is an immutable set of excluded member names. Matching is exact
// and case-sensitive.
type Policy struct {
	excluded map[string]struct{}
}

// NewPolicy returns a policy excluding exactly names.
func NewPolicy(names ...string) Policy {
	p := Policy{excluded: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if n != "" {
			p.excluded[n] = struct{}{}
		}
	}
	return p
}

// DefaultPolicy returns the policy used when nothing else is configured. It
// excludes the identity, hashing, string-representation and constructor
// members inherited from a universal base, plus fmt's Stringer and GoStringer.
func DefaultPolicy() Policy {
	return NewPolicy("equals", "hashCode", "toString", "<init>", "String", "GoString")
}

// With returns a copy of p that also excludes names.
func (p Policy) With(names ...string) Policy {
	if len(names) == 0 {
		return p
	}
	return NewPolicy(append(p.Names(), names...)...)
}

// Excludes reports whether name is excluded.
func (p Policy) Excludes(name string) bool {
	_, ok := p.excluded[name]
	return ok
}

// Names returns the excluded names sorted.
func (p Policy) Names() []string {
	names := make([]string, 0, len(p.excluded))
	for n := range p.excluded {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Members returns the members not excluded by policy, in their original order.
// The input slice is not modified.
func Members(policy Policy, members []models.MemberSignature) []models.MemberSignature {
	kept := make([]models.MemberSignature, 0, len(members))
	for _, m := range members {
		if policy.Excludes(m.Name) {
			continue
		}
		kept = append(kept, m)
	}
	return kept
}
