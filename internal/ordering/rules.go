// Package ordering implements the page-ordering core: the rule set, the
// pairwise classifier, the repair passes and the middle-page checksum.
//
// A rule "X|Y" is stored as Y in the forbidden set of X. When a page P sits at
// position i of a sequence, no page in forbidden(P) may appear at any j < i.
package ordering

import "sort"

// Rule is a single precedence fact parsed from an "X|Y" line.
type Rule struct {
	Page      string // X
	Forbidden string // Y, must not appear before X
}

// RuleSet maps a page to the set of pages forbidden to precede it.
// Build it once with Add, then treat it as read-only.
type RuleSet struct {
	forbidden map[string]map[string]struct{}
}

// NewRuleSet returns an empty rule set.
func NewRuleSet() *RuleSet {
	return &RuleSet{forbidden: make(map[string]map[string]struct{})}
}

// RuleSetFrom builds a rule set from already parsed rules.
func RuleSetFrom(rules []Rule) *RuleSet {
	rs := NewRuleSet()
	for _, r := range rules {
		rs.Add(r.Page, r.Forbidden)
	}
	return rs
}

// Add records that forbidden must not appear before page.
// Duplicate rules collapse.
func (rs *RuleSet) Add(page, forbidden string) {
	set, ok := rs.forbidden[page]
	if !ok {
		set = make(map[string]struct{})
		rs.forbidden[page] = set
	}
	set[forbidden] = struct{}{}
}

// Forbidden returns the forbidden-predecessor set of page. ok is false when
// no rule names page, which callers treat as "no constraint".
func (rs *RuleSet) Forbidden(page string) (set map[string]struct{}, ok bool) {
	if rs == nil {
		return nil, false
	}
	set, ok = rs.forbidden[page]
	return set, ok
}

// Forbids reports whether before is in the forbidden set of page.
func (rs *RuleSet) Forbids(page, before string) bool {
	set, ok := rs.Forbidden(page)
	if !ok {
		return false
	}
	_, hit := set[before]
	return hit
}

// Len returns the number of pages that carry at least one rule.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.forbidden)
}

// Rules returns every stored pair, sorted by page then forbidden page.
func (rs *RuleSet) Rules() []Rule {
	if rs == nil {
		return nil
	}
	var out []Rule
	for page, set := range rs.forbidden {
		for f := range set {
			out = append(out, Rule{Page: page, Forbidden: f})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Forbidden < out[j].Forbidden
	})
	return out
}
