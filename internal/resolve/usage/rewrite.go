package usage

import (
	"fmt"
	"regexp"

	"github.com/vietddude/namecord/internal/core/domain"
)

// RuleSpec is the uncompiled form of a rewrite rule, as read from config.
type RuleSpec struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// DefaultRules widen Germanic sub-usages to "ger" and strip the
// mythology/biblical/medieval qualifiers from a usage code.
var DefaultRules = []RuleSpec{
	{Pattern: `^gmc-.+$`, Replacement: "ger"},
	{Pattern: `^(.+)-(?:myth|bibl|medi)$`, Replacement: "$1"},
}

type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// RewriteTable is an ordered, immutable list of usage code rewrite rules.
type RewriteTable struct {
	rules []rule
}

// NewRewriteTable compiles specs in order. An empty list yields a table that
// never rewrites.
func NewRewriteTable(specs []RuleSpec) (*RewriteTable, error) {
	t := &RewriteTable{rules: make([]rule, 0, len(specs))}
	for i, s := range specs {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rewrite rule %d: %w", i, err)
		}
		t.rules = append(t.rules, rule{pattern: re, replacement: s.Replacement})
	}
	return t, nil
}

// DefaultRewriteTable returns the table compiled from DefaultRules.
func DefaultRewriteTable() *RewriteTable {
	t, err := NewRewriteTable(DefaultRules)
	if err != nil {
		panic(err)
	}
	return t
}

// Rewrite applies the first matching rule to code. Replacements may reference
// capture groups ($1).
func (t *RewriteTable) Rewrite(code domain.UsageCode) (domain.UsageCode, bool) {
	s := string(code)
	for _, r := range t.rules {
		if r.pattern.MatchString(s) {
			return domain.UsageCode(r.pattern.ReplaceAllString(s, r.replacement)), true
		}
	}
	return code, false
}

// Len returns the number of rules.
func (t *RewriteTable) Len() int {
	return len(t.rules)
}
