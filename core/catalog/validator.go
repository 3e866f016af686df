package catalog

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// FilterCatalog is a validated, ordered set of filter definitions together
// with the operators allowed against them.
type FilterCatalog struct {
	maxUserEntries int
	filters        []FilterDefinition
	byName         map[string]FilterDefinition
	operators      []Operator
}

// NewFilterCatalog validates params and builds a catalog from them. Every
// problem found is reported, combined into a single error.
func NewFilterCatalog(params FilterParams) (*FilterCatalog, error) {
	var err error

	if params.MaxUserEntries < 0 {
		err = multierr.Append(err, fmt.Errorf("maxUserEntries must not be negative, got %d", params.MaxUserEntries))
	}

	byName := make(map[string]FilterDefinition, len(params.Filters))
	filters := make([]FilterDefinition, 0, len(params.Filters))
	for i, f := range params.Filters {
		if strings.TrimSpace(f.DisplayName) == "" {
			err = multierr.Append(err, fmt.Errorf("filter %d: display name is required", i))
			continue
		}
		if strings.TrimSpace(f.Column) == "" {
			err = multierr.Append(err, fmt.Errorf("filter %q: column is required", f.DisplayName))
		}
		if f.FieldType != FieldTypeName && f.FieldType != FieldTypeID {
			err = multierr.Append(err, fmt.Errorf("filter %q: unknown field type %q", f.DisplayName, f.FieldType))
		}
		if _, dup := byName[f.DisplayName]; dup {
			err = multierr.Append(err, fmt.Errorf("filter %q: duplicate display name", f.DisplayName))
			continue
		}
		byName[f.DisplayName] = f
		filters = append(filters, f)
	}

	operators := make([]Operator, 0, len(params.Operators))
	for _, op := range params.Operators {
		if !op.known() {
			err = multierr.Append(err, fmt.Errorf("unknown operator %q", op))
			continue
		}
		operators = append(operators, op)
	}

	if err != nil {
		return nil, err
	}

	return &FilterCatalog{
		maxUserEntries: params.MaxUserEntries,
		filters:        filters,
		byName:         byName,
		operators:      operators,
	}, nil
}

// MustFilterCatalog is like NewFilterCatalog but panics on invalid params.
// It is meant for built-in configurations only.
func MustFilterCatalog(params FilterParams) *FilterCatalog {
	c, err := NewFilterCatalog(params)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a display name to its definition.
func (c *FilterCatalog) Lookup(displayName string) (FilterDefinition, bool) {
	if c == nil {
		return FilterDefinition{}, false
	}
	f, ok := c.byName[displayName]
	return f, ok
}

// Allows reports whether op is one of the catalog's operators.
func (c *FilterCatalog) Allows(op Operator) bool {
	if c == nil {
		return false
	}
	for _, o := range c.operators {
		if o == op {
			return true
		}
	}
	return false
}

// Filters returns the definitions in catalog order.
func (c *FilterCatalog) Filters() []FilterDefinition {
	return append([]FilterDefinition(nil), c.filters...)
}

// DisplayNames returns the filter names in catalog order.
func (c *FilterCatalog) DisplayNames() []string {
	names := make([]string, len(c.filters))
	for i, f := range c.filters {
		names[i] = f.DisplayName
	}
	return names
}

func (c *FilterCatalog) Operators() []Operator {
	return append([]Operator(nil), c.operators...)
}

func (c *FilterCatalog) MaxUserEntries() int {
	return c.maxUserEntries
}
