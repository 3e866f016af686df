package query

// InputSource supplies the raw tables a dynamic report is built from. Rows
// are slices of primitive cell values (string, numbers, or lists of them).
// A nil table means the table is absent, which is treated as empty input.
type InputSource interface {
	// ReportParams returns the report-parameter table, one parameter per row
	// with the value in the first cell.
	ReportParams() [][]any

	// GroupingRows returns rows of (name, filter1, condition1, value1,
	// filter2, condition2, value2). Short rows are padded with blanks.
	GroupingRows() [][]any

	// OptionalFilterRows returns rows of (filter, condition, value).
	OptionalFilterRows() [][]any

	// GroupingSetName returns the set name the user entered, or "".
	GroupingSetName() string
}
