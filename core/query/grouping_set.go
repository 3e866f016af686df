package query

import (
	"fmt"
	"strings"
)

// DefaultGroupingSetName is the column alias used when no set name is given.
const DefaultGroupingSetName = "custom_group"

// MsgInvalidGroupingSetName is recorded when a set name is not a plain
// identifier of letters, digits and underscores.
const MsgInvalidGroupingSetName = "Invalid grouping set name"

// GroupingSet combines groupings into one labelled output column.
type GroupingSet struct {
	name      string
	hasName   bool
	groupings []*Grouping
	errors    [][]string
}

// NewGroupingSet keeps the valid groupings and records the messages of the
// invalid, non-empty ones. Each grouping's messages stay together as one entry.
func NewGroupingSet(groupings []*Grouping, name string) *GroupingSet {
	s := &GroupingSet{}
	switch {
	case name == "":
		s.name = DefaultGroupingSetName
		s.hasName = true
	case isIdentifier(name):
		s.name = name
		s.hasName = true
	default:
		s.errors = append(s.errors, []string{MsgInvalidGroupingSetName})
	}

	for _, g := range groupings {
		if g == nil {
			continue
		}
		if g.IsValid() {
			s.groupings = append(s.groupings, g)
		} else if !g.IsEmpty() {
			s.errors = append(s.errors, g.ErrorMessages())
		}
	}
	return s
}

// IsValid reports whether the set has a name and every kept grouping is valid.
func (s *GroupingSet) IsValid() bool {
	if !s.hasName {
		return false
	}
	for _, g := range s.groupings {
		if !g.IsValid() {
			return false
		}
	}
	return true
}

// Name returns the resolved set name, or "" if it was rejected.
func (s *GroupingSet) Name() string {
	return s.name
}

func (s *GroupingSet) Groupings() []*Grouping {
	return append([]*Grouping(nil), s.groupings...)
}

// ErrorMessages returns one entry per rejected name or grouping.
func (s *GroupingSet) ErrorMessages() [][]string {
	out := make([][]string, len(s.errors))
	for i, e := range s.errors {
		out[i] = append([]string(nil), e...)
	}
	return out
}

// QuerySyntax renders the set as a column expression, trailing comma
// included, ready to be spliced into a select list. Without groupings it
// renders the constant 'Overall'.
func (s *GroupingSet) QuerySyntax() (string, bool) {
	if !s.IsValid() {
		return "", false
	}

	if len(s.groupings) == 0 {
		return fmt.Sprintf("'Overall' as %s,", s.name), true
	}
	branches := make([]string, 0, len(s.groupings))
	for _, g := range s.groupings {
		b, ok := g.QuerySyntax()
		if !ok {
			return "", false
		}
		branches = append(branches, b)
	}
	return fmt.Sprintf("CASE %s ELSE 'Undefined' END as %s,", strings.Join(branches, " "), s.name), true
}
