package sqlite

import "fmt"

// Statement builders. Every table name passes through tableName, so the
// prefix and quoting are applied in one place.

func (s *SheetStore) insertSheetSQL() string {
	return fmt.Sprintf(`INSERT OR IGNORE INTO %s ("name", "created_at") VALUES (?, ?);`, s.tableName(sheetsTable))
}

func (s *SheetStore) selectSheetsSQL() string {
	return fmt.Sprintf(`SELECT "name" FROM %s ORDER BY "name";`, s.tableName(sheetsTable))
}

func (s *SheetStore) sheetExistsSQL() string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE "name" = ?;`, s.tableName(sheetsTable))
}

func (s *SheetStore) deleteSheetSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE "name" = ?;`, s.tableName(sheetsTable))
}

func (s *SheetStore) insertCellSQL() string {
	return fmt.Sprintf(`INSERT INTO %s ("sheet", "tbl", "row", "col", "value", "kind") VALUES (?, ?, ?, ?, ?, ?);`, s.tableName(cellsTable))
}

func (s *SheetStore) selectCellsSQL() string {
	return fmt.Sprintf(`SELECT "row", "col", "value", "kind" FROM %s WHERE "sheet" = ? AND "tbl" = ? ORDER BY "row", "col";`, s.tableName(cellsTable))
}

func (s *SheetStore) deleteTableCellsSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE "sheet" = ? AND "tbl" = ?;`, s.tableName(cellsTable))
}

func (s *SheetStore) deleteSheetCellsSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE "sheet" = ?;`, s.tableName(cellsTable))
}

func (s *SheetStore) upsertMetadataSQL() string {
	return fmt.Sprintf(`INSERT INTO %s ("sheet", "key", "value") VALUES (?, ?, ?) ON CONFLICT ("sheet", "key") DO UPDATE SET "value" = excluded."value";`, s.tableName(metadataTable))
}

func (s *SheetStore) selectMetadataSQL() string {
	return fmt.Sprintf(`SELECT "key", "value" FROM %s WHERE "sheet" = ? ORDER BY "key";`, s.tableName(metadataTable))
}

func (s *SheetStore) deleteSheetMetadataSQL() string {
	return fmt.Sprintf(`DELETE FROM %s WHERE "sheet" = ?;`, s.tableName(metadataTable))
}

func (s *SheetStore) dropTableSQL(base string) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, s.tableName(base))
}

const tableExistsSQL = `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?;`
