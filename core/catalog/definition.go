// Package catalog defines the closed vocabularies and per-report configuration
// that dynamic report input is validated against: field types, operators,
// filter catalogs and report parameters.
package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// FieldType classifies the column a filter resolves to.
type FieldType string

const (
	FieldTypeName FieldType = "name" // Free-text column, values are quoted
	FieldTypeID   FieldType = "id"   // Numeric identifier column, values are digit lists
)

// UnmarshalYAML accepts both the symbolic form ("name", "id") and the numeric
// codes used by older report definitions (1 = name, 2 = id).
func (f *FieldType) UnmarshalYAML(node *yaml.Node) error {
	switch strings.ToLower(strings.TrimSpace(node.Value)) {
	case "name", "1":
		*f = FieldTypeName
	case "id", "2":
		*f = FieldTypeID
	default:
		return fmt.Errorf("line %d: unknown field type %q", node.Line, node.Value)
	}
	return nil
}

// Operator is a condition a user can pick for a filter. The values are the
// labels shown in the report input table.
type Operator string

const (
	OperatorContain    Operator = "Contain"
	OperatorNotContain Operator = "Does not contain"
	OperatorEqual      Operator = "Equals"
	OperatorNotEqual   Operator = "Does not equal"
	OperatorIn         Operator = "IN"
	OperatorNotIn      Operator = "Not IN"
)

// AllOperators returns every supported operator in display order.
func AllOperators() []Operator {
	return []Operator{
		OperatorContain,
		OperatorNotContain,
		OperatorEqual,
		OperatorNotEqual,
		OperatorIn,
		OperatorNotIn,
	}
}

// IsContains reports whether the operator performs a substring match.
func (o Operator) IsContains() bool {
	return o == OperatorContain || o == OperatorNotContain
}

func (o Operator) known() bool {
	for _, op := range AllOperators() {
		if op == o {
			return true
		}
	}
	return false
}

// ValueType describes how a report parameter value is typed when it is
// handed to the parameterized query.
type ValueType string

const (
	ValueTypeDate           ValueType = "date"
	ValueTypeNumber         ValueType = "number"
	ValueTypePositiveNumber ValueType = "positive_number"
	ValueTypeString         ValueType = "string"
	ValueTypeArrayOfNumbers ValueType = "array_of_numbers"
	ValueTypeArrayOfStrings ValueType = "array_of_strings"
)

func (v ValueType) known() bool {
	switch v {
	case ValueTypeDate, ValueTypeNumber, ValueTypePositiveNumber,
		ValueTypeString, ValueTypeArrayOfNumbers, ValueTypeArrayOfStrings:
		return true
	}
	return false
}

// ParamType is the input widget a report parameter is collected with.
type ParamType string

const (
	ParamTypeFreeText ParamType = "free_text"
	ParamTypeDropdown ParamType = "dropdown"
)

// QueryKind selects the query template a dynamic report is built from.
type QueryKind string

const (
	QueryKindFrequencyDistribution QueryKind = "frequency_distribution"
	QueryKindOptimalFrequency      QueryKind = "optimal_frequency"
	QueryKindOverlap               QueryKind = "overlap_with_google_media"
	QueryKindPathAnalysis          QueryKind = "path_analysis"
)

// Input table identifiers. They double as the sheet metadata keys that locate
// each table.
const (
	ReportParamsTable    = "Report_Param_Table"
	GroupingTable        = "RnfAdvanced_Grouping_Table"
	OptionalFiltersTable = "RnfAdvanced_Optional_Filters_Table"
	GroupingSetNameKey   = "RnfAdvanced_Grouping_Set_Name"
	ReportTypeKey        = "reportType"
)

// FilterDefinition maps a user-facing filter name to the column it queries.
type FilterDefinition struct {
	DisplayName string    `yaml:"displayParamName"`
	Column      string    `yaml:"adhFieldRepresentation"`
	FieldType   FieldType `yaml:"valueType"`
}

// FilterParams is the raw shape of a grouping or optional-filter section in
// a report configuration.
type FilterParams struct {
	MaxUserEntries int                `yaml:"maxUserEntries"`
	Filters        []FilterDefinition `yaml:"groupingFilterTypes"`
	Operators      []Operator         `yaml:"conditionTypes"`
}

// ReportParam is a parameter collected from the user and passed to the
// parameterized query.
type ReportParam struct {
	DisplayName    string    `yaml:"displayParamName"`
	ParamType      ParamType `yaml:"paramType"`
	ValueType      ValueType `yaml:"valueType"`
	DefaultValue   string    `yaml:"defaultValue"`
	QueryParamName string    `yaml:"queryParamName"`
}
