// Package query turns rows of user input into the SQL fragments of a dynamic
// report. Rows become predicate expressions, which are combined into
// groupings, a grouping set and optional filters, and finally spliced into a
// query template by the QueryBuilder.
//
// Malformed input never produces a Go error here. Each component records
// human-readable messages instead, and the QueryBuilder collects them by
// component for display.
package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-adhquery/core/catalog"
)

// Messages recorded for an invalid predicate.
const (
	MsgInvalidFilter     = "Invalid or empty filter"
	MsgInvalidCondition  = "Invalid or empty condition"
	MsgInvalidValue      = "Invalid or empty value"
	MsgContainsNamesOnly = "Contains supports names only"
)

// unrenderedMessage is recorded when a valid expression has no SQL form,
// which happens when a single-value condition is given a list.
func unrenderedMessage(e *PredicateExpression) string {
	return fmt.Sprintf("%s supports a single value", e.condition)
}

// PredicateExpression is one (filter, condition, value) triple resolved
// against a filter catalog. It is immutable once built.
type PredicateExpression struct {
	catalog   *catalog.FilterCatalog
	filter    *catalog.FilterDefinition
	condition catalog.Operator
	value     any
	hasValue  bool
	errors    []string
}

// NewPredicateExpression validates the triple against c. A nil catalog yields
// an expression that is both empty and invalid.
func NewPredicateExpression(filter, condition string, value any, c *catalog.FilterCatalog) *PredicateExpression {
	e := &PredicateExpression{catalog: c}
	if c == nil {
		return e
	}

	if def, ok := c.Lookup(filter); ok {
		e.filter = &def
	} else {
		e.errors = append(e.errors, MsgInvalidFilter)
	}

	if op := catalog.Operator(condition); c.Allows(op) {
		e.condition = op
	} else {
		e.errors = append(e.errors, MsgInvalidCondition)
	}

	if IsBlank(value) || e.filter == nil || e.condition == "" {
		e.errors = append(e.errors, MsgInvalidValue)
		return e
	}
	if e.condition.IsContains() && e.filter.FieldType == catalog.FieldTypeID {
		e.errors = append(e.errors, MsgContainsNamesOnly)
		return e
	}
	e.value = value
	e.hasValue = true
	return e
}

// IsValid reports whether the expression can be rendered.
func (e *PredicateExpression) IsValid() bool {
	return e.hasValue
}

// IsEmpty reports whether nothing in the expression was accepted, which is
// how a row the user left blank looks.
func (e *PredicateExpression) IsEmpty() bool {
	return e.filter == nil && e.condition == "" && !e.hasValue
}

// ErrorMessages returns the validation messages in the order they were found.
func (e *PredicateExpression) ErrorMessages() []string {
	return append([]string(nil), e.errors...)
}

// Filter returns the accepted filter's display name, or "".
func (e *PredicateExpression) Filter() string {
	if e.filter == nil {
		return ""
	}
	return e.filter.DisplayName
}

// Condition returns the accepted operator, or "".
func (e *PredicateExpression) Condition() catalog.Operator {
	return e.condition
}

// Value returns the accepted raw value, or nil.
func (e *PredicateExpression) Value() any {
	return e.value
}

// QuerySyntax renders the expression as a SQL boolean predicate. It returns
// false when the expression is invalid, and when a single-value operator was
// given more than one value.
func (e *PredicateExpression) QuerySyntax() (string, bool) {
	if !e.IsValid() {
		return "", false
	}

	escaped := escapeValue(CellString(e.value))
	coerced := coerceValue(escaped, e.filter.FieldType)
	column := e.filter.Column

	switch e.condition {
	case catalog.OperatorContain:
		return fmt.Sprintf("%s LIKE '%%%s%%'", column, escaped), true
	case catalog.OperatorNotContain:
		return fmt.Sprintf("%s NOT LIKE '%%%s%%'", column, escaped), true
	case catalog.OperatorEqual:
		if strings.Contains(coerced, ",") {
			return "", false
		}
		return fmt.Sprintf("%s = %s", column, coerced), true
	case catalog.OperatorNotEqual:
		if strings.Contains(coerced, ",") {
			return "", false
		}
		return fmt.Sprintf("%s <> %s", column, coerced), true
	case catalog.OperatorIn:
		return fmt.Sprintf("%s IN (%s)", column, coerced), true
	case catalog.OperatorNotIn:
		return fmt.Sprintf("%s NOT IN (%s)", column, coerced), true
	default:
		return "", true
	}
}

// escapeValue backslash-escapes the first apostrophe and trims the result.
func escapeValue(raw string) string {
	return strings.TrimSpace(strings.Replace(raw, "'", `\'`, 1))
}

// coerceValue turns an escaped value into the literal list for a column type:
// quoted strings for names, bare digit runs for identifiers.
func coerceValue(escaped string, fieldType catalog.FieldType) string {
	switch fieldType {
	case catalog.FieldTypeName:
		parts := strings.Split(strings.TrimSpace(escaped), ",")
		for i, p := range parts {
			parts[i] = "'" + strings.TrimSpace(p) + "'"
		}
		return strings.Join(parts, ",")
	case catalog.FieldTypeID:
		digits := strings.TrimSpace(nonDigitsRegex.ReplaceAllString(strings.TrimSpace(escaped), " "))
		return strings.Join(strings.Split(digits, " "), ",")
	default:
		return ""
	}
}
