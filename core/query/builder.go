package query

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"go.uber.org/zap"
)

// Error buckets, keyed by the component that produced them.
const (
	ComponentGroupingSet     = "GroupingSet"
	ComponentGrouping        = "Grouping"
	ComponentOptionalFilters = "OptionalFilters"
)

// componentTitles fixes the order and headings of ErrorMessages.
var componentTitles = []struct {
	component string
	title     string
}{
	{ComponentGroupingSet, "Grouping Set Errors"},
	{ComponentGrouping, "Grouping Errors"},
	{ComponentOptionalFilters, "Optional Filters Errors"},
}

// groupingRowWidth is the number of cells in a grouping row:
// name, filter1, condition1, value1, filter2, condition2, value2.
const groupingRowWidth = 7

// BuilderOption configures a QueryBuilder.
type BuilderOption func(*QueryBuilder)

// WithLogger sets the logger used for build diagnostics.
func WithLogger(logger *zap.Logger) BuilderOption {
	return func(b *QueryBuilder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// QueryBuilder parses one request's input tables, renders the grouping set
// and optional filters, and substitutes them into the report's template.
// A builder serves a single request and is not safe for concurrent use.
type QueryBuilder struct {
	input     InputSource
	report    *catalog.ReportConfig
	templates *TemplateRegistry
	kind      catalog.QueryKind
	logger    *zap.Logger

	groupingSet       *GroupingSet
	optionalFilters   *OptionalFilter
	errorsByComponent map[string][]string
}

// NewQueryBuilder returns an error if any required argument is missing or the
// report config has not been resolved.
func NewQueryBuilder(input InputSource, report *catalog.ReportConfig, templates *TemplateRegistry, kind catalog.QueryKind, opts ...BuilderOption) (*QueryBuilder, error) {
	if input == nil {
		return nil, fmt.Errorf("input source is required")
	}
	if report == nil {
		return nil, fmt.Errorf("report config is required")
	}
	if report.Grouping() == nil || report.OptionalFilters() == nil {
		return nil, fmt.Errorf("report config %q is not resolved", report.Name)
	}
	if templates == nil {
		return nil, fmt.Errorf("template registry is required")
	}
	if kind == "" {
		return nil, fmt.Errorf("query kind is required")
	}

	b := &QueryBuilder{
		input:             input,
		report:            report,
		templates:         templates,
		kind:              kind,
		logger:            zap.NewNop(),
		errorsByComponent: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// ADHQuery builds the query text. It returns false only when no template is
// registered for the builder's kind. Otherwise the substituted text is always
// returned, even for invalid input; check IsErrorFree before using it.
func (b *QueryBuilder) ADHQuery() (string, bool) {
	text, ok := b.templates.Get(b.kind)
	if !ok {
		b.logger.Warn("No query template registered", zap.String("kind", string(b.kind)))
		return "", false
	}

	b.errorsByComponent = make(map[string][]string)
	b.collectAndParseInput()

	if !b.groupingSet.IsValid() {
		b.errorsByComponent[ComponentGroupingSet] = flattenNested(b.groupingSet.ErrorMessages())
	}
	if !b.optionalFilters.IsValid() {
		b.errorsByComponent[ComponentOptionalFilters] = b.optionalFilters.ErrorMessages()
	}

	groupingSQL, ok := b.groupingSet.QuerySyntax()
	if !ok {
		groupingSQL, _ = NewGroupingSet(b.groupingSet.Groupings(), b.setName()).QuerySyntax()
	}
	text = strings.ReplaceAll(text, GroupingPlaceholder, groupingSQL)
	text = strings.ReplaceAll(text, SetNamePlaceholder, b.setName())

	filtersSQL, _ := b.optionalFilters.QuerySyntax()
	text = strings.ReplaceAll(text, FiltersPlaceholder, filtersSQL)

	b.logger.Debug("Built dynamic query",
		zap.String("report", b.report.Name),
		zap.String("kind", string(b.kind)),
		zap.Int("groupings", len(b.groupingSet.Groupings())),
		zap.Int("optionalFilters", len(b.optionalFilters.Expressions())),
		zap.Bool("errorFree", b.IsErrorFree()),
		zap.String("sql", text),
	)
	return text, true
}

// setName is the column alias shared by the grouping column and
// SetNamePlaceholder. A rejected name falls back to the default so the
// text stays well formed; the rejection is already recorded.
func (b *QueryBuilder) setName() string {
	if name := b.groupingSet.Name(); name != "" {
		return name
	}
	return DefaultGroupingSetName
}

func (b *QueryBuilder) collectAndParseInput() {
	params := b.input.ReportParams()
	b.logger.Debug("Collected report parameters", zap.Int("rows", len(params)))

	b.groupingSet = b.parseGroupingSet(b.limitRows(ComponentGrouping, b.input.GroupingRows(), b.report.Grouping()))
	b.optionalFilters = b.parseOptionalFilters(b.limitRows(ComponentOptionalFilters, b.input.OptionalFilterRows(), b.report.OptionalFilters()))
}

// limitRows drops rows beyond the catalog's entry limit, if it has one.
func (b *QueryBuilder) limitRows(component string, rows [][]any, c *catalog.FilterCatalog) [][]any {
	limit := c.MaxUserEntries()
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	b.logger.Warn("Ignoring rows beyond the entry limit",
		zap.String("component", component),
		zap.Int("rows", len(rows)),
		zap.Int("limit", limit),
	)
	return rows[:limit]
}

func (b *QueryBuilder) parseGrouping(row []any) *Grouping {
	c := b.report.Grouping()
	first := NewPredicateExpression(CellString(cell(row, 1)), CellString(cell(row, 2)), cell(row, 3), c)
	second := NewPredicateExpression(CellString(cell(row, 4)), CellString(cell(row, 5)), cell(row, 6), c)
	return NewGrouping(CellString(cell(row, 0)), first, second)
}

// parseGroupingSet collects the valid groupings into a set named after the
// entered set name. Messages from invalid groupings go to the Grouping bucket.
func (b *QueryBuilder) parseGroupingSet(rows [][]any) *GroupingSet {
	var groupings []*Grouping
	var errs []string
	for _, row := range rows {
		if len(row) > groupingRowWidth {
			row = row[:groupingRowWidth]
		}
		g := b.parseGrouping(row)
		if g.IsValid() {
			groupings = append(groupings, g)
		} else if !g.IsEmpty() {
			errs = append(errs, g.ErrorMessages()...)
		}
	}
	if len(errs) > 0 {
		b.errorsByComponent[ComponentGrouping] = errs
	}
	return NewGroupingSet(groupings, strings.TrimSpace(b.input.GroupingSetName()))
}

func (b *QueryBuilder) parseOptionalFilters(rows [][]any) *OptionalFilter {
	c := b.report.OptionalFilters()
	expressions := make([]*PredicateExpression, 0, len(rows))
	for _, row := range rows {
		expressions = append(expressions, NewPredicateExpression(CellString(cell(row, 0)), CellString(cell(row, 1)), cell(row, 2), c))
	}
	return NewOptionalFilter(expressions)
}

// IsErrorFree reports whether the last build recorded no errors.
func (b *QueryBuilder) IsErrorFree() bool {
	return len(b.errorsByComponent) == 0
}

// ErrorMessages formats the recorded errors for display. Each non-empty
// bucket contributes a "<Title>:" line followed by its distinct messages.
func (b *QueryBuilder) ErrorMessages() string {
	var lines []string
	for _, ct := range componentTitles {
		msgs, ok := b.errorsByComponent[ct.component]
		if !ok {
			continue
		}
		lines = append(lines, ct.title+":")
		lines = append(lines, dedupe(msgs)...)
	}
	return strings.Join(lines, "\n")
}

// Errors returns a copy of the error buckets.
func (b *QueryBuilder) Errors() map[string][]string {
	out := make(map[string][]string, len(b.errorsByComponent))
	for k, v := range b.errorsByComponent {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// GroupingSet returns the set parsed by the last build, or nil.
func (b *QueryBuilder) GroupingSet() *GroupingSet {
	return b.groupingSet
}

// OptionalFilter returns the filter parsed by the last build, or nil.
func (b *QueryBuilder) OptionalFilter() *OptionalFilter {
	return b.optionalFilters
}

// flattenNested joins each grouping's messages with commas so they can share
// a bucket with plain messages.
func flattenNested(nested [][]string) []string {
	out := make([]string, len(nested))
	for i, msgs := range nested {
		out[i] = strings.Join(msgs, ",")
	}
	return out
}
