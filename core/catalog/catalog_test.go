package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestNewFilterCatalog(t *testing.T) {
	c, err := NewFilterCatalog(FilterParams{
		MaxUserEntries: 3,
		Filters: []FilterDefinition{
			{DisplayName: "Placement", Column: "placement", FieldType: FieldTypeName},
			{DisplayName: "Placement ID", Column: "placement_id", FieldType: FieldTypeID},
		},
		Operators: []Operator{OperatorIn, OperatorEqual},
	})
	require.NoError(t, err)

	f, ok := c.Lookup("Placement ID")
	assert.True(t, ok)
	assert.Equal(t, "placement_id", f.Column)
	assert.Equal(t, FieldTypeID, f.FieldType)

	_, ok = c.Lookup("placement")
	assert.False(t, ok, "lookup is by display name and case sensitive")

	assert.True(t, c.Allows(OperatorIn))
	assert.False(t, c.Allows(OperatorContain))
	assert.Equal(t, []string{"Placement", "Placement ID"}, c.DisplayNames())
	assert.Equal(t, []Operator{OperatorIn, OperatorEqual}, c.Operators())
	assert.Equal(t, 3, c.MaxUserEntries())
}

func TestNewFilterCatalog_AggregatesErrors(t *testing.T) {
	_, err := NewFilterCatalog(FilterParams{
		MaxUserEntries: -1,
		Filters: []FilterDefinition{
			{DisplayName: "", Column: "x", FieldType: FieldTypeName},
			{DisplayName: "A", Column: "", FieldType: "date"},
			{DisplayName: "B", Column: "b", FieldType: FieldTypeID},
			{DisplayName: "B", Column: "b2", FieldType: FieldTypeID},
		},
		Operators: []Operator{"LIKE"},
	})
	require.Error(t, err)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 6)
	assert.Contains(t, err.Error(), "maxUserEntries")
	assert.Contains(t, err.Error(), `duplicate display name`)
	assert.Contains(t, err.Error(), `unknown operator "LIKE"`)
}

func TestNilCatalog(t *testing.T) {
	var c *FilterCatalog
	_, ok := c.Lookup("Placement")
	assert.False(t, ok)
	assert.False(t, c.Allows(OperatorIn))
}

func TestBuiltinReports(t *testing.T) {
	reports := BuiltinReports()
	require.Len(t, reports, 4)

	kinds := map[string]QueryKind{}
	for _, r := range reports {
		require.NotNil(t, r.Grouping(), r.Name)
		require.NotNil(t, r.OptionalFilters(), r.Name)
		kinds[r.Name] = r.Kind
	}
	assert.Equal(t, QueryKindFrequencyDistribution, kinds[ReportReachAnalysis])
	assert.Equal(t, QueryKindOptimalFrequency, kinds[ReportOptimalFrequency])
	assert.Equal(t, QueryKindOverlap, kinds[ReportOverlapAnalysis])
	assert.Equal(t, QueryKindPathAnalysis, kinds[ReportPathAnalysis])

	def := DefaultDynamicReport("x", QueryKindOverlap)
	assert.Len(t, def.Grouping().Filters(), 12)
	assert.Len(t, def.OptionalFilters().Filters(), 8)

	f, ok := def.Grouping().Lookup("Browser Platform ID")
	require.True(t, ok)
	assert.Equal(t, FieldTypeName, f.FieldType)

	attr := AttributionDynamicReport("y")
	_, ok = attr.Grouping().Lookup("Placement_ID")
	assert.True(t, ok)
}

const reportYAML = `
name: Custom Reach
kind: frequency_distribution
reportParams:
  - displayParamName: Activity IDs
    paramType: free_text
    valueType: array_of_numbers
    defaultValue: 0,0
    queryParamName: activity_ids
groupingParams:
  maxUserEntries: 2
  groupingFilterTypes:
    - displayParamName: Placement
      adhFieldRepresentation: placement
      valueType: 1
    - displayParamName: Placement ID
      adhFieldRepresentation: placement_id
      valueType: id
  conditionTypes: [Contain, IN]
optionalFiltersParams:
  maxUserEntries: 1
  groupingFilterTypes:
    - displayParamName: Site
      adhFieldRepresentation: site
      valueType: name
  conditionTypes: ["Does not contain"]
`

func TestLoadReportConfig(t *testing.T) {
	cfg, err := LoadReportConfig([]byte(reportYAML))
	require.NoError(t, err)

	assert.Equal(t, "Custom Reach", cfg.Name)
	assert.Equal(t, QueryKindFrequencyDistribution, cfg.Kind)
	require.Len(t, cfg.ReportParams, 1)
	assert.Equal(t, "0,0", cfg.ReportParams[0].DefaultValue)

	f, ok := cfg.Grouping().Lookup("Placement")
	require.True(t, ok)
	assert.Equal(t, FieldTypeName, f.FieldType)
	assert.True(t, cfg.OptionalFilters().Allows(OperatorNotContain))
}

func TestLoadReportConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad field type", "name: x\nkind: k\ngroupingParams:\n  groupingFilterTypes:\n    - displayParamName: a\n      adhFieldRepresentation: a\n      valueType: 7\n", "unknown field type"},
		{"missing name", "kind: k\n", "report name is required"},
		{"bad operator", "name: x\nkind: k\noptionalFiltersParams:\n  conditionTypes: [LIKE]\n", "unknown operator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReportConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{ReportOptimalFrequency, ReportOverlapAnalysis, ReportPathAnalysis, ReportReachAnalysis}, r.Names())

	_, ok := r.Get("Brand Survey Analysis")
	assert.False(t, ok)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte(reportYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte("kind: x\n"), 0o644))

	err := r.LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yml")

	cfg, ok := r.Get("Custom Reach")
	require.True(t, ok)
	assert.Equal(t, QueryKindFrequencyDistribution, cfg.Kind)
}

func TestRegistry_RegisterResolves(t *testing.T) {
	r := NewRegistry()
	require.Error(t, r.Register(nil))

	cfg := &ReportConfig{Name: "Bare", Kind: QueryKindOverlap}
	require.NoError(t, r.Register(cfg))
	require.NotNil(t, cfg.Grouping())
	assert.Empty(t, cfg.Grouping().Filters())
}
