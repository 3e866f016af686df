package reporting

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/asaidimu/go-adhquery/core/query"
	"go.uber.org/multierr"
)

var numberListPattern = regexp.MustCompile(`^\s*(\d+\s*,\s*)*\d+\s*$`)

// JobParam binds a row of the report parameter table to a query parameter.
type JobParam struct {
	ReportParamLoc int               `json:"reportParamLoc" yaml:"reportParamLoc"`
	QueryParamName string            `json:"queryParamName" yaml:"queryParamName"`
	ValueType      catalog.ValueType `json:"valueType" yaml:"valueType"`
	Value          any               `json:"value,omitempty" yaml:"value,omitempty"`
}

// AdvancedQueryJob is the definition handed to the query runner.
type AdvancedQueryJob struct {
	QueryName    string     `json:"queryName" yaml:"queryName"`
	QueryVersion int        `json:"queryVersion" yaml:"queryVersion"`
	ReportParams []JobParam `json:"reportParams" yaml:"reportParams"`
	MergeParams  []string   `json:"mergeParams" yaml:"mergeParams"`
	QueryText    string     `json:"queryTxt" yaml:"queryTxt"`
}

// NewAdvancedQueryJob returns a job for sql with the standard parameter
// bindings: activity IDs from the first parameter row and path length from
// the second.
func NewAdvancedQueryJob(name, sql string) *AdvancedQueryJob {
	return &AdvancedQueryJob{
		QueryName:    name,
		QueryVersion: 1,
		ReportParams: []JobParam{
			{ReportParamLoc: 0, QueryParamName: catalog.ParamActivityIDs, ValueType: catalog.ValueTypeArrayOfNumbers},
			{ReportParamLoc: 1, QueryParamName: catalog.ParamPathLength, ValueType: catalog.ValueTypeNumber},
		},
		MergeParams: []string{},
		QueryText:   sql,
	}
}

// ResolveParams fills in each parameter's value from the first cell of its
// row. Blank cells take the report's default for that row. All invalid
// values are reported together.
func (j *AdvancedQueryJob) ResolveParams(report *catalog.ReportConfig, rows [][]any) error {
	var errs error
	for i := range j.ReportParams {
		p := &j.ReportParams[i]

		var raw any
		if p.ReportParamLoc < len(rows) && len(rows[p.ReportParamLoc]) > 0 {
			raw = rows[p.ReportParamLoc][0]
		}
		if query.IsBlank(raw) && report != nil && p.ReportParamLoc < len(report.ReportParams) {
			raw = report.ReportParams[p.ReportParamLoc].DefaultValue
		}

		value, err := parseParam(p.ValueType, query.CellString(raw))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", p.QueryParamName, err))
			continue
		}
		p.Value = value
	}
	return errs
}

func parseParam(vt catalog.ValueType, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch vt {
	case catalog.ValueTypeArrayOfNumbers:
		if !numberListPattern.MatchString(raw) {
			return nil, fmt.Errorf("%q is not a comma separated list of numbers", raw)
		}
		parts := strings.Split(raw, ",")
		out := make([]int64, 0, len(parts))
		for _, part := range parts {
			n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%q is out of range", part)
			}
			out = append(out, n)
		}
		return out, nil

	case catalog.ValueTypeArrayOfStrings:
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil

	case catalog.ValueTypeNumber, catalog.ValueTypePositiveNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", raw)
		}
		if vt == catalog.ValueTypePositiveNumber && f < 0 {
			return nil, fmt.Errorf("%q is not a positive number", raw)
		}
		if f == float64(int64(f)) {
			return int64(f), nil
		}
		return f, nil
	}
	return raw, nil
}
