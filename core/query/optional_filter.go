package query

import "strings"

// OptionalFilter is a set of predicates ANDed onto a WHERE clause.
type OptionalFilter struct {
	expressions []*PredicateExpression
	errors      []string
}

// NewOptionalFilter keeps valid expressions, records the joined messages of
// invalid non-empty ones and drops empty ones. A valid expression that cannot
// be rendered is recorded as an error rather than kept.
func NewOptionalFilter(expressions []*PredicateExpression) *OptionalFilter {
	f := &OptionalFilter{}
	for _, e := range expressions {
		if e == nil {
			continue
		}
		if e.IsValid() {
			if _, ok := e.QuerySyntax(); !ok {
				f.errors = append(f.errors, unrenderedMessage(e))
				continue
			}
			f.expressions = append(f.expressions, e)
		} else if !e.IsEmpty() {
			f.errors = append(f.errors, strings.Join(e.ErrorMessages(), "\n"))
		}
	}
	return f
}

// IsValid reports whether no expression recorded an error. A filter with no
// expressions is valid.
func (f *OptionalFilter) IsValid() bool {
	return len(f.errors) == 0
}

func (f *OptionalFilter) Expressions() []*PredicateExpression {
	return append([]*PredicateExpression(nil), f.expressions...)
}

func (f *OptionalFilter) ErrorMessages() []string {
	return append([]string(nil), f.errors...)
}

// QuerySyntax renders "AND <p1> AND <p2> ...". It returns false when no
// expression renders.
func (f *OptionalFilter) QuerySyntax() (string, bool) {
	predicates := make([]string, 0, len(f.expressions))
	for _, e := range f.expressions {
		if p, ok := e.QuerySyntax(); ok {
			predicates = append(predicates, p)
		}
	}
	if len(predicates) == 0 {
		return "", false
	}
	return "AND " + strings.Join(predicates, " AND "), true
}
