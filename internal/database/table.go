// Package database is the role-scoped access layer. It runs parameterized
// queries and statements against the pool matching the caller's role,
// normalizes results into tables and converts store failures into a
// uniform (success, message) contract. Business invariants live in the
// store's triggers and constraints, not here.
package database

import (
	"github.com/jackc/pgx/v5"
)

// Table is a row-oriented result set with column names preserved in
// select order. A failed or empty query yields an empty table, never nil;
// the failure reason, if any, is kept in Message.
type Table struct {
	Columns []string
	Rows    [][]interface{}
	Message string
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Value returns the raw value at (row, column name), or nil when out of
// range.
func (t *Table) Value(row int, column string) interface{} {
	col := t.ColumnIndex(column)
	if col < 0 || row < 0 || row >= len(t.Rows) {
		return nil
	}
	return t.Rows[row][col]
}

// Int returns the value at (row, column) coerced to int64. Identifier
// columns come back from the store in assorted integer widths.
func (t *Table) Int(row int, column string) int64 {
	n, _ := asInt64(t.Value(row, column))
	return n
}

// String returns the value at (row, column) as a string, or "" for NULL
// and non-string values.
func (t *Table) String(row int, column string) string {
	s, _ := t.Value(row, column).(string)
	return s
}

// materializeRows drains a pgx result set into a Table.
func materializeRows(rows pgx.Rows) (*Table, error) {
	defer rows.Close()

	table := &Table{}
	for _, field := range rows.FieldDescriptions() {
		table.Columns = append(table.Columns, field.Name)
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table, nil
}
