// Package sqlite stores report input sheets in a SQLite database. A sheet
// holds the input tables of one report request as individual cells, plus
// named metadata such as the grouping set name and report type.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-adhquery/core/catalog"
	"github.com/asaidimu/go-adhquery/core/query"
	"go.uber.org/zap"
)

// dbRunner is an interface that abstracts the common methods of *sql.DB and *sql.Tx,
// allowing for the same code to be used for both transactional and non-transactional
// database operations.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SheetStore persists input sheets. It can operate in both transactional and
// non-transactional modes.
type SheetStore struct {
	db      *sql.DB
	tx      *sql.Tx
	logger  *zap.Logger
	options *StoreOptions
}

// NewSheetStore creates a store over db. Call Init before first use.
func NewSheetStore(db *sql.DB, logger *zap.Logger, options *StoreOptions) *SheetStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultStoreOptions()
	}
	return &SheetStore{db: db, logger: logger, options: options}
}

// runner returns the active transaction, or the connection pool outside one.
func (s *SheetStore) runner() dbRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// Init creates the store's tables and index.
func (s *SheetStore) Init(ctx context.Context) error {
	if s.options.DropIfExists {
		for _, t := range storeTables {
			if _, err := s.runner().ExecContext(ctx, s.dropTableSQL(t.name)); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", t.name, err)
			}
		}
	}

	for _, t := range storeTables {
		exists, err := s.tableExists(ctx, t.name)
		if err != nil {
			return err
		}
		if exists && s.options.IfNotExists {
			s.logger.Debug("Table already exists", zap.String("table", t.name))
			continue
		}
		stmt := s.createTableSQL(t)
		if _, err := s.runner().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
		}
	}

	if s.options.CreateIndexes {
		if _, err := s.runner().ExecContext(ctx, s.createIndexSQL()); err != nil {
			return fmt.Errorf("failed to create cells index: %w", err)
		}
	}
	return nil
}

func (s *SheetStore) tableExists(ctx context.Context, base string) (bool, error) {
	var count int
	err := s.runner().QueryRowContext(ctx, tableExistsSQL, s.options.TablePrefix+base).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check for table %s: %w", base, err)
	}
	return count > 0, nil
}

// startTransaction begins a new database transaction and returns a store
// bound to it.
func (s *SheetStore) startTransaction(ctx context.Context) (*SheetStore, error) {
	if s.tx != nil {
		return nil, fmt.Errorf("cannot start a new transaction from an existing transactional store")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.logger.Debug("Transaction initiated")
	return &SheetStore{db: s.db, tx: tx, logger: s.logger, options: s.options}, nil
}

// transact runs fn in a transaction, committing if it succeeds and rolling
// back otherwise.
func (s *SheetStore) transact(ctx context.Context, fn func(tx *SheetStore) error) error {
	txStore, err := s.startTransaction(ctx)
	if err != nil {
		return err
	}
	if err := fn(txStore); err != nil {
		s.logger.Debug("Rolling back transaction", zap.Error(err))
		if rbErr := txStore.tx.Rollback(); rbErr != nil {
			s.logger.Error("Rollback failed", zap.Error(rbErr))
		}
		return err
	}
	s.logger.Debug("Committing transaction")
	return txStore.tx.Commit()
}

func validName(kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	return nil
}

func (s *SheetStore) ensureSheet(ctx context.Context, sheet string) error {
	if _, err := s.runner().ExecContext(ctx, s.insertSheetSQL(), sheet, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return nil
}

// Metadatum is a named value saved alongside an input.
type Metadatum struct {
	Key   string
	Value string
}

// SaveTable replaces the contents of one table on a sheet, creating the
// sheet if needed. Nil cells are not stored.
func (s *SheetStore) SaveTable(ctx context.Context, sheet, table string, rows [][]any) error {
	if err := validName("sheet", sheet); err != nil {
		return err
	}
	if err := validName("table", table); err != nil {
		return err
	}

	return s.transact(ctx, func(tx *SheetStore) error {
		return tx.saveTable(ctx, sheet, table, rows)
	})
}

// saveTable does the work of SaveTable on the store's current runner.
func (s *SheetStore) saveTable(ctx context.Context, sheet, table string, rows [][]any) error {
	if err := s.ensureSheet(ctx, sheet); err != nil {
		return err
	}
	if _, err := s.runner().ExecContext(ctx, s.deleteTableCellsSQL(), sheet, table); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", table, err)
	}

	stored := 0
	insert := s.insertCellSQL()
	for r, row := range rows {
		for c, v := range row {
			text, kind, ok, err := encodeValue(v)
			if err != nil {
				return fmt.Errorf("%s[%d][%d]: %w", table, r, c, err)
			}
			if !ok {
				continue
			}
			if _, err := s.runner().ExecContext(ctx, insert, sheet, table, r, c, text, kind); err != nil {
				return fmt.Errorf("failed to insert cell %s[%d][%d]: %w", table, r, c, err)
			}
			stored++
		}
	}

	s.logger.Debug("Saved table",
		zap.String("sheet", sheet),
		zap.String("table", table),
		zap.Int("rows", len(rows)),
		zap.Int("cells", stored),
	)
	return nil
}

// LoadTable reads a table back as rows of cells. Rows keep their positions:
// a row with no stored cells comes back empty, and missing cells within a
// row come back nil. A table that was never saved has no rows.
func (s *SheetStore) LoadTable(ctx context.Context, sheet, table string) ([][]any, error) {
	rows, err := s.runner().QueryContext(ctx, s.selectCellsSQL(), sheet, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		var (
			r, c       int
			text, kind string
		)
		if err := rows.Scan(&r, &c, &text, &kind); err != nil {
			return nil, fmt.Errorf("failed to scan cell: %w", err)
		}
		v, err := decodeValue(text, kind)
		if err != nil {
			return nil, fmt.Errorf("%s[%d][%d]: %w", table, r, c, err)
		}
		for len(out) <= r {
			out = append(out, []any{})
		}
		for len(out[r]) <= c {
			out[r] = append(out[r], nil)
		}
		out[r][c] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning cells: %w", err)
	}
	return out, nil
}

// SetMetadata stores a named value on a sheet, creating the sheet if needed.
func (s *SheetStore) SetMetadata(ctx context.Context, sheet, key, value string) error {
	if err := validName("sheet", sheet); err != nil {
		return err
	}
	if err := validName("metadata key", key); err != nil {
		return err
	}
	return s.transact(ctx, func(tx *SheetStore) error {
		return tx.setMetadata(ctx, sheet, key, value)
	})
}

func (s *SheetStore) setMetadata(ctx context.Context, sheet, key, value string) error {
	if err := s.ensureSheet(ctx, sheet); err != nil {
		return err
	}
	if _, err := s.runner().ExecContext(ctx, s.upsertMetadataSQL(), sheet, key, value); err != nil {
		return fmt.Errorf("failed to set metadata %s: %w", key, err)
	}
	return nil
}

// Metadata returns all named values stored on a sheet.
func (s *SheetStore) Metadata(ctx context.Context, sheet string) (map[string]string, error) {
	rows, err := s.runner().QueryContext(ctx, s.selectMetadataSQL(), sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning metadata: %w", err)
	}
	return out, nil
}

// SaveInput stores every table of input on a sheet, along with its grouping
// set name and any extra metadata, in one transaction. Either all of it is
// replaced or none of it is.
func (s *SheetStore) SaveInput(ctx context.Context, sheet string, input query.InputSource, metadata ...Metadatum) error {
	if input == nil {
		return fmt.Errorf("input source is required")
	}
	if err := validName("sheet", sheet); err != nil {
		return err
	}
	for _, m := range metadata {
		if err := validName("metadata key", m.Key); err != nil {
			return err
		}
	}
	tables := []struct {
		name string
		rows [][]any
	}{
		{catalog.ReportParamsTable, input.ReportParams()},
		{catalog.GroupingTable, input.GroupingRows()},
		{catalog.OptionalFiltersTable, input.OptionalFilterRows()},
	}

	return s.transact(ctx, func(tx *SheetStore) error {
		for _, t := range tables {
			if err := tx.saveTable(ctx, sheet, t.name, t.rows); err != nil {
				return err
			}
		}
		if err := tx.setMetadata(ctx, sheet, catalog.GroupingSetNameKey, input.GroupingSetName()); err != nil {
			return err
		}
		for _, m := range metadata {
			if err := tx.setMetadata(ctx, sheet, m.Key, m.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadInput assembles the input tables stored on a sheet.
func (s *SheetStore) LoadInput(ctx context.Context, sheet string) (*query.TableInput, error) {
	exists, err := s.SheetExists(ctx, sheet)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("sheet %s not found", sheet)
	}

	input := &query.TableInput{}
	if input.Params, err = s.LoadTable(ctx, sheet, catalog.ReportParamsTable); err != nil {
		return nil, err
	}
	if input.Groupings, err = s.LoadTable(ctx, sheet, catalog.GroupingTable); err != nil {
		return nil, err
	}
	if input.OptionalFilters, err = s.LoadTable(ctx, sheet, catalog.OptionalFiltersTable); err != nil {
		return nil, err
	}

	meta, err := s.Metadata(ctx, sheet)
	if err != nil {
		return nil, err
	}
	input.SetName = meta[catalog.GroupingSetNameKey]
	return input, nil
}

// ReportType returns the report recorded on a sheet, if any.
func (s *SheetStore) ReportType(ctx context.Context, sheet string) (string, bool, error) {
	meta, err := s.Metadata(ctx, sheet)
	if err != nil {
		return "", false, err
	}
	report, ok := meta[catalog.ReportTypeKey]
	return report, ok, nil
}

// SheetExists reports whether a sheet has been created.
func (s *SheetStore) SheetExists(ctx context.Context, sheet string) (bool, error) {
	var count int
	if err := s.runner().QueryRowContext(ctx, s.sheetExistsSQL(), sheet).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to look up sheet %s: %w", sheet, err)
	}
	return count > 0, nil
}

// Sheets returns the names of all stored sheets, sorted.
func (s *SheetStore) Sheets(ctx context.Context) ([]string, error) {
	rows, err := s.runner().QueryContext(ctx, s.selectSheetsSQL())
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan sheet name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning sheets: %w", err)
	}
	return names, nil
}

// DeleteSheet removes a sheet with all its cells and metadata. Deleting a
// sheet that does not exist is not an error.
func (s *SheetStore) DeleteSheet(ctx context.Context, sheet string) error {
	return s.transact(ctx, func(tx *SheetStore) error {
		for _, stmt := range []string{tx.deleteSheetCellsSQL(), tx.deleteSheetMetadataSQL(), tx.deleteSheetSQL()} {
			if _, err := tx.runner().ExecContext(ctx, stmt, sheet); err != nil {
				return fmt.Errorf("failed to delete sheet %s: %w", sheet, err)
			}
		}
		s.logger.Debug("Deleted sheet", zap.String("sheet", sheet))
		return nil
	})
}
