package rule

import (
	"fmt"
	"sort"
	"strings"
)

// Table is an immutable, validated set of rules. It is safe for concurrent use.
type Table struct {
	// byLength is sorted by descending pattern length, so the first prefix
	// hit is the most specific rule.
	byLength []*Rule
}

// NewTable validates rules and builds a table. Patterns must be unique.
func NewTable(rules ...Rule) (*Table, error) {
	seen := make(map[string]struct{}, len(rules))
	t := &Table{byLength: make([]*Rule, 0, len(rules))}
	for i := range rules {
		r := rules[i].Clone()
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[r.Pattern]; dup {
			return nil, fmt.Errorf("rule: duplicate pattern %q", r.Pattern)
		}
		seen[r.Pattern] = struct{}{}
		t.byLength = append(t.byLength, r)
	}
	sort.SliceStable(t.byLength, func(i, j int) bool {
		return len(t.byLength[i].Pattern) > len(t.byLength[j].Pattern)
	})
	return t, nil
}

// MustNewTable is like NewTable but panics on error.
func MustNewTable(rules ...Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Matching returns every rule whose pattern is a prefix of path, most
// specific first.
func (t *Table) Matching(path string) []*Rule {
	if t == nil {
		return nil
	}
	var out []*Rule
	for _, r := range t.byLength {
		if strings.HasPrefix(path, r.Pattern) {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Match returns the rule with the longest pattern that prefixes path.
func (t *Table) Match(path string) (*Rule, bool) {
	if t == nil {
		return nil, false
	}
	for _, r := range t.byLength {
		if strings.HasPrefix(path, r.Pattern) {
			return r.Clone(), true
		}
	}
	return nil, false
}

// Rules returns a copy of every rule, most specific first.
func (t *Table) Rules() []Rule {
	if t == nil {
		return nil
	}
	out := make([]Rule, len(t.byLength))
	for i, r := range t.byLength {
		out[i] = *r.Clone()
	}
	return out
}

// Len returns the number of rules.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byLength)
}
