package query

// TableInput is an in-memory InputSource.
type TableInput struct {
	Params          [][]any `yaml:"reportParams"`
	Groupings       [][]any `yaml:"groupings"`
	OptionalFilters [][]any `yaml:"optionalFilters"`
	SetName         string  `yaml:"groupingSetName"`
}

var _ InputSource = (*TableInput)(nil)

func (t *TableInput) ReportParams() [][]any       { return t.Params }
func (t *TableInput) GroupingRows() [][]any       { return t.Groupings }
func (t *TableInput) OptionalFilterRows() [][]any { return t.OptionalFilters }
func (t *TableInput) GroupingSetName() string     { return t.SetName }
