package sqlite

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/asaidimu/go-adhquery/core/query"
)

// StoreOptions controls how the store creates its tables.
type StoreOptions struct {
	// TablePrefix is prepended to every table the store creates.
	TablePrefix string

	// IfNotExists adds IF NOT EXISTS to CREATE TABLE statements.
	IfNotExists bool

	// DropIfExists drops the tables before creating them. Existing sheets
	// are lost.
	DropIfExists bool

	// CreateIndexes creates the lookup index on cells.
	CreateIndexes bool
}

// DefaultStoreOptions returns a set of sensible default options for the
// sheet store.
func DefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		IfNotExists:   true,
		CreateIndexes: true,
	}
}

// Logical table names, before the prefix is applied.
const (
	sheetsTable   = "sheets"
	cellsTable    = "cells"
	metadataTable = "metadata"
)

type columnDef struct {
	name string
	decl string
}

type tableDef struct {
	name        string
	columns     []columnDef
	primaryKeys []string
}

var storeTables = []tableDef{
	{
		name: sheetsTable,
		columns: []columnDef{
			{"name", "TEXT NOT NULL"},
			{"created_at", "INTEGER NOT NULL"},
		},
		primaryKeys: []string{"name"},
	},
	{
		name: cellsTable,
		columns: []columnDef{
			{"sheet", "TEXT NOT NULL"},
			{"tbl", "TEXT NOT NULL"},
			{"row", "INTEGER NOT NULL"},
			{"col", "INTEGER NOT NULL"},
			{"value", "TEXT NOT NULL"},
			{"kind", "TEXT NOT NULL"},
		},
		primaryKeys: []string{"sheet", "tbl", "row", "col"},
	},
	{
		name: metadataTable,
		columns: []columnDef{
			{"sheet", "TEXT NOT NULL"},
			{"key", "TEXT NOT NULL"},
			{"value", "TEXT NOT NULL"},
		},
		primaryKeys: []string{"sheet", "key"},
	},
}

// quoteIdentifier safely quotes an identifier, such as a table or column name,
// to handle names that might be keywords or contain special characters.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableName applies the configured prefix and quotes the result.
func (s *SheetStore) tableName(base string) string {
	return quoteIdentifier(s.options.TablePrefix + base)
}

// createTableSQL generates the DDL for one table.
func (s *SheetStore) createTableSQL(t tableDef) string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if s.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(s.tableName(t.name) + " (\n")

	columns := make([]string, len(t.columns))
	for i, c := range t.columns {
		columns[i] = "    " + quoteIdentifier(c.name) + " " + c.decl
	}
	sb.WriteString(strings.Join(columns, ",\n"))

	if len(t.primaryKeys) > 0 {
		quoted := make([]string, len(t.primaryKeys))
		for i, pk := range t.primaryKeys {
			quoted[i] = quoteIdentifier(pk)
		}
		sb.WriteString(",\n    PRIMARY KEY (" + strings.Join(quoted, ", ") + ")")
	}

	sb.WriteString("\n);")
	return sb.String()
}

func (s *SheetStore) createIndexSQL() string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s);",
		quoteIdentifier(s.options.TablePrefix+"idx_cells_sheet_tbl"),
		s.tableName(cellsTable),
		quoteIdentifier("sheet"),
		quoteIdentifier("tbl"),
	)
}

// Cell kinds recorded alongside each stored value.
const (
	kindString = "string"
	kindNumber = "number"
	kindBool   = "bool"
	kindJSON   = "json"
)

// encodeValue converts a cell into its stored text and kind. Nil cells are
// not stored and report ok as false.
func encodeValue(v any) (text string, kind string, ok bool, err error) {
	if v == nil {
		return "", "", false, nil
	}
	switch val := v.(type) {
	case string:
		return val, kindString, true, nil
	case bool:
		return strconv.FormatBool(val), kindBool, true, nil
	}
	if _, isNumber := query.ToFloat64(v); isNumber {
		return query.CellString(v), kindNumber, true, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to encode cell value: %w", err)
	}
	return string(b), kindJSON, true, nil
}

// decodeValue reverses encodeValue. Whole numbers come back as int64 (uint64
// above its range) and other numbers as float64. JSON arrays come back as
// []any with json.Number elements so large IDs keep every digit.
func decodeValue(text, kind string) (any, error) {
	switch kind {
	case kindString:
		return text, nil
	case kindBool:
		return strconv.ParseBool(text)
	case kindNumber:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		if n, err := strconv.ParseUint(text, 10, 64); err == nil {
			return n, nil
		}
		return strconv.ParseFloat(text, 64)
	case kindJSON:
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var decoded any
		if err := dec.Decode(&decoded); err != nil {
			return nil, fmt.Errorf("failed to decode cell value: %w", err)
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("unknown cell kind %q", kind)
}
