package query

import (
	"fmt"
	"strings"
)

// MsgInvalidGroupingName is recorded when a grouping name has no word characters.
const MsgInvalidGroupingName = "Invalid or empty grouping name"

// Grouping labels the rows matching one or two ANDed predicates.
type Grouping struct {
	name        string
	hasName     bool
	expressions []*PredicateExpression
	errors      []string
	unrendered  bool
}

// NewGrouping builds a grouping from a name and up to two expressions. The
// name may be empty; otherwise it must contain a word character. Only the
// first expression reports errors. The second is optional, so it is kept
// when valid and ignored otherwise. A valid expression that cannot be
// rendered is reported for either position and makes the grouping invalid.
func NewGrouping(name string, first, second *PredicateExpression) *Grouping {
	g := &Grouping{}
	if name == "" || hasWordChar(name) {
		g.name = name
		g.hasName = true
	} else {
		g.errors = append(g.errors, MsgInvalidGroupingName)
	}

	if first != nil {
		if first.IsValid() {
			g.keep(first)
		} else if !first.IsEmpty() {
			g.errors = append(g.errors, strings.Join(first.ErrorMessages(), "\n"))
		}
	}

	if second != nil && second.IsValid() {
		g.keep(second)
	}
	return g
}

func (g *Grouping) keep(e *PredicateExpression) {
	if _, ok := e.QuerySyntax(); !ok {
		g.errors = append(g.errors, unrenderedMessage(e))
		g.unrendered = true
		return
	}
	g.expressions = append(g.expressions, e)
}

// IsValid reports whether the grouping has a non-empty name, at least one
// valid expression, and no entered condition that failed to render.
func (g *Grouping) IsValid() bool {
	if !g.hasName || g.name == "" || g.unrendered {
		return false
	}
	for _, e := range g.expressions {
		if e.IsValid() {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the grouping has neither a name nor expressions.
func (g *Grouping) IsEmpty() bool {
	return g.name == "" && len(g.expressions) == 0 && !g.unrendered
}

func (g *Grouping) Name() string {
	return g.name
}

func (g *Grouping) Expressions() []*PredicateExpression {
	return append([]*PredicateExpression(nil), g.expressions...)
}

func (g *Grouping) ErrorMessages() []string {
	return append([]string(nil), g.errors...)
}

// QuerySyntax renders the grouping as a CASE branch:
//
//	WHEN <p1> AND <p2> THEN '<name>'
//
// It returns false when there is nothing to render or an entered condition
// could not be rendered.
func (g *Grouping) QuerySyntax() (string, bool) {
	if g.unrendered {
		return "", false
	}
	predicates := make([]string, 0, len(g.expressions))
	for _, e := range g.expressions {
		p, ok := e.QuerySyntax()
		if !ok {
			return "", false
		}
		predicates = append(predicates, p)
	}
	if len(predicates) == 0 {
		return "", false
	}
	return fmt.Sprintf("WHEN %s THEN '%s'", strings.Join(predicates, " AND "), g.name), true
}
