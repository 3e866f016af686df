package query

import (
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	wordPattern       = regexp.MustCompile(`\w`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	nonDigitsRegex    = regexp.MustCompile(`\D+`)
)

// hasWordChar reports whether s contains at least one letter, digit or underscore.
func hasWordChar(s string) bool {
	return wordPattern.MatchString(s)
}

// isIdentifier reports whether s can be used unquoted as a column alias.
func isIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// ToFloat64 converts a value of any numeric kind to a float64. Strings are
// not parsed; the caller decides whether a numeric-looking string counts.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	default:
		return 0, false
	}
}

// IsBlank reports whether a cell value counts as "not entered": nil, the
// empty string, false, zero, NaN or an empty list.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	switch val := v.(type) {
	case string:
		return val == ""
	case bool:
		return !val
	}
	if f, ok := ToFloat64(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsBlank(rv.Elem().Interface())
	}
	return false
}

// CellString renders a cell value the way a spreadsheet displays it: numbers
// in their shortest form and lists joined with commas. Integers are formatted
// exactly, without a round trip through float64.
func CellString(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = CellString(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return CellString(rv.Elem().Interface())
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// cell returns row[i], or nil when the row is too short.
func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}

// dedupe returns msgs without repeats, keeping the first occurrence of each.
func dedupe(msgs []string) []string {
	seen := make(map[string]struct{}, len(msgs))
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
