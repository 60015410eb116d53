package backend

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Query executes a parameterized query and returns every row as a map of
// column name to string value. Returns an empty slice (not nil) when the
// query matches nothing.
//
// All app_config columns are declared TEXT NOT NULL, so a string scan is
// always valid.
func (b *DB) Query(ctx context.Context, query string, args ...any) ([]map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	result := []map[string]string{}
	for rows.Next() {
		values := make([]string, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return result, nil
}

// Insert adds a single row to the table. Column names and the table name
// come from trusted in-process callers; only values are parameterized.
func (b *DB) Insert(ctx context.Context, table string, values map[string]string) error {
	if len(values) == 0 {
		return fmt.Errorf("insert %s: no columns given", table)
	}

	cols := sortedColumns(values)
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = "?"
		args[i] = values[col]
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "),
	)
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// Update rewrites the given columns on every row matching the exact-equality
// predicates in where. Updating zero rows is not an error.
func (b *DB) Update(ctx context.Context, table string, values, where map[string]string) error {
	if len(values) == 0 {
		return fmt.Errorf("update %s: no columns given", table)
	}
	if len(where) == 0 {
		return fmt.Errorf("update %s: refusing empty predicate", table)
	}

	setCols := sortedColumns(values)
	assignments := make([]string, len(setCols))
	args := make([]any, 0, len(values)+len(where))
	for i, col := range setCols {
		assignments[i] = col + " = ?"
		args = append(args, values[col])
	}

	predicate, predicateArgs := buildPredicate(where)
	args = append(args, predicateArgs...)

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s",
		table, strings.Join(assignments, ", "), predicate,
	)
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// Delete removes every row matching the exact-equality predicates in where.
// Deleting zero rows is not an error. An empty predicate set is rejected to
// rule out an accidental full-table delete.
func (b *DB) Delete(ctx context.Context, table string, where map[string]string) error {
	if len(where) == 0 {
		return fmt.Errorf("delete %s: refusing empty predicate", table)
	}

	predicate, args := buildPredicate(where)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", table, predicate)
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

// buildPredicate renders an AND-joined equality predicate with deterministic
// column order and returns the matching argument list.
func buildPredicate(where map[string]string) (string, []any) {
	cols := sortedColumns(where)
	clauses := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		clauses[i] = col + " = ?"
		args[i] = where[col]
	}
	return strings.Join(clauses, " AND "), args
}

// sortedColumns returns the map's keys sorted ascending so generated SQL is
// deterministic.
func sortedColumns(m map[string]string) []string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}
