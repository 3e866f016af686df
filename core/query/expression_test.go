package query

import (
	"testing"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func groupingCatalog(t *testing.T) *catalog.FilterCatalog {
	t.Helper()
	c, err := catalog.NewFilterCatalog(catalog.FilterParams{
		MaxUserEntries: 5,
		Filters: []catalog.FilterDefinition{
			{DisplayName: "Placement", Column: "placement", FieldType: catalog.FieldTypeName},
			{DisplayName: "Placement ID", Column: "placement_id", FieldType: catalog.FieldTypeID},
			{DisplayName: "Campaign", Column: "campaign", FieldType: catalog.FieldTypeName},
			{DisplayName: "Campaign ID", Column: "campaign_id", FieldType: catalog.FieldTypeID},
			{DisplayName: "Paid Search Campaign", Column: "paid_search_campaign", FieldType: catalog.FieldTypeName},
			{DisplayName: "Paid Search Campaign ID", Column: "paid_search_campaign_id", FieldType: catalog.FieldTypeID},
		},
		Operators: catalog.AllOperators(),
	})
	require.NoError(t, err)
	return c
}

func optionalFiltersCatalog(t *testing.T) *catalog.FilterCatalog {
	t.Helper()
	c, err := catalog.NewFilterCatalog(catalog.FilterParams{
		MaxUserEntries: 5,
		Filters: []catalog.FilterDefinition{
			{DisplayName: "Advertiser ID", Column: "advertiser_id", FieldType: catalog.FieldTypeID},
			{DisplayName: "Advertiser Name", Column: "advertiser", FieldType: catalog.FieldTypeName},
			{DisplayName: "Placement", Column: "placement", FieldType: catalog.FieldTypeName},
			{DisplayName: "Placement ID", Column: "placement_id", FieldType: catalog.FieldTypeID},
		},
		Operators: catalog.AllOperators(),
	})
	require.NoError(t, err)
	return c
}

func TestPredicateExpression_QuerySyntax(t *testing.T) {
	c := groupingCatalog(t)

	tests := []struct {
		name      string
		filter    string
		condition catalog.Operator
		value     any
		expected  string
		ok        bool
	}{
		{"contain on id is rejected", "Placement ID", catalog.OperatorContain, 333, "", false},
		{"not contain on id is rejected", "Campaign ID", catalog.OperatorNotContain, "1", "", false},
		{"contain on name", "Placement", catalog.OperatorContain, 333, "placement LIKE '%333%'", true},
		{"not contain on name", "Campaign", catalog.OperatorNotContain, "Brand", "campaign NOT LIKE '%Brand%'", true},
		{"contain keeps raw list", "Placement", catalog.OperatorContain, "a, b", "placement LIKE '%a, b%'", true},
		{"contain escapes apostrophe", "Placement", catalog.OperatorContain, "GP,--,',`", "placement LIKE '%GP,--,\\',`%'", true},
		{"only first apostrophe escaped", "Placement", catalog.OperatorEqual, "O'Brien's", "placement = 'O\\'Brien's'", true},
		{"in on id list", "Placement ID", catalog.OperatorIn, []int{333, 111}, "placement_id IN (333,111)", true},
		{"in on id longer list", "Placement ID", catalog.OperatorIn, []int{123, 1234, 12345}, "placement_id IN (123,1234,12345)", true},
		{"in on id single string", "Placement ID", catalog.OperatorIn, "666", "placement_id IN (666)", true},
		{"not in strips non digits", "Placement ID", catalog.OperatorNotIn, "12, abc 34", "placement_id NOT IN (12,34)", true},
		{"in on names", "Campaign", catalog.OperatorIn, []string{"Brand", "Test"}, "campaign IN ('Brand','Test')", true},
		{"in on names from text", "Campaign", catalog.OperatorIn, " Brand ,Test ", "campaign IN ('Brand','Test')", true},
		{"equal on id", "Placement ID", catalog.OperatorEqual, 111, "placement_id = 111", true},
		{"equal on large id", "Placement ID", catalog.OperatorEqual, int64(9007199254740993), "placement_id = 9007199254740993", true},
		{"equal on id string", "Placement ID", catalog.OperatorEqual, "111", "placement_id = 111", true},
		{"equal on id list rejected", "Placement ID", catalog.OperatorEqual, []int{111, 1234}, "", false},
		{"equal on name", "Placement", catalog.OperatorEqual, "placementName", "placement = 'placementName'", true},
		{"equal on name list rejected", "Placement", catalog.OperatorEqual, "111, 1234", "", false},
		{"equal trims", "Placement", catalog.OperatorEqual, "  abc  ", "placement = 'abc'", true},
		{"not equal on id", "Placement ID", catalog.OperatorNotEqual, "5", "placement_id <> 5", true},
		{"not equal on list rejected", "Campaign", catalog.OperatorNotEqual, "a,b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewPredicateExpression(tt.filter, string(tt.condition), tt.value, c)
			got, ok := e.QuerySyntax()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestPredicateExpression_Validation(t *testing.T) {
	c := groupingCatalog(t)

	tests := []struct {
		name      string
		filter    string
		condition string
		value     any
		valid     bool
		empty     bool
		errors    []string
	}{
		{
			name: "valid", filter: "Placement", condition: "Contain", value: "x",
			valid: true, empty: false, errors: nil,
		},
		{
			name: "contains on id", filter: "Placement ID", condition: "Contain", value: 333,
			valid: false, empty: false, errors: []string{MsgContainsNamesOnly},
		},
		{
			name: "unknown filter", filter: "Unknown", condition: "Equals", value: "x",
			valid: false, empty: false, errors: []string{MsgInvalidFilter, MsgInvalidValue},
		},
		{
			name: "unknown condition", filter: "Placement", condition: "LIKE", value: "x",
			valid: false, empty: false, errors: []string{MsgInvalidCondition, MsgInvalidValue},
		},
		{
			name: "missing value", filter: "Placement", condition: "IN", value: "",
			valid: false, empty: false, errors: []string{MsgInvalidValue},
		},
		{
			name: "zero counts as missing", filter: "Placement ID", condition: "Equals", value: 0,
			valid: false, empty: false, errors: []string{MsgInvalidValue},
		},
		{
			name: "blank row", filter: "", condition: "", value: nil,
			valid: false, empty: true, errors: []string{MsgInvalidFilter, MsgInvalidCondition, MsgInvalidValue},
		},
		{
			name: "garbage only", filter: "Nope", condition: "Nope", value: "x",
			valid: false, empty: true, errors: []string{MsgInvalidFilter, MsgInvalidCondition, MsgInvalidValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewPredicateExpression(tt.filter, tt.condition, tt.value, c)
			assert.Equal(t, tt.valid, e.IsValid())
			assert.Equal(t, tt.empty, e.IsEmpty())
			assert.Equal(t, tt.errors, e.ErrorMessages())
		})
	}
}

func TestPredicateExpression_Accessors(t *testing.T) {
	e := NewPredicateExpression("Placement", "IN", []int{1, 2}, groupingCatalog(t))
	assert.Equal(t, "Placement", e.Filter())
	assert.Equal(t, catalog.OperatorIn, e.Condition())
	assert.Equal(t, []int{1, 2}, e.Value())

	bad := NewPredicateExpression("Unknown", "Contain", "x", groupingCatalog(t))
	assert.Equal(t, "", bad.Filter())
	assert.Equal(t, catalog.OperatorContain, bad.Condition())
	assert.Nil(t, bad.Value())
}

func TestPredicateExpression_NilCatalog(t *testing.T) {
	e := NewPredicateExpression("Placement", "Contain", "x", nil)
	assert.False(t, e.IsValid())
	assert.True(t, e.IsEmpty())
	assert.Empty(t, e.ErrorMessages())

	_, ok := e.QuerySyntax()
	assert.False(t, ok)
}

func TestPredicateExpression_DisallowedOperator(t *testing.T) {
	c, err := catalog.NewFilterCatalog(catalog.FilterParams{
		Filters:   []catalog.FilterDefinition{{DisplayName: "Site", Column: "site", FieldType: catalog.FieldTypeName}},
		Operators: []catalog.Operator{catalog.OperatorIn},
	})
	require.NoError(t, err)

	e := NewPredicateExpression("Site", "Equals", "x", c)
	assert.False(t, e.IsValid())
	assert.Equal(t, []string{MsgInvalidCondition, MsgInvalidValue}, e.ErrorMessages())
}
