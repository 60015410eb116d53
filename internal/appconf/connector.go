package appconf

import "context"

// Table is the backing table for configuration entries.
// Schema: namespace TEXT, key TEXT, value TEXT, unique on (namespace, key).
const Table = "app_config"

// Row is a single result row from a Connector query, keyed by column name.
// All configuration columns are strings.
type Row = map[string]string

// Connector executes parameterized SQL against the configuration table.
// Implementations own connection management, dialect, and transactions;
// the store only issues exact-equality row operations and plain selects.
//
// Update and Delete affecting zero rows is success, not an error.
// Connectivity and constraint failures are returned unchanged to callers.
type Connector interface {
	// Query runs a parameterized select and returns zero or more rows of
	// named string columns.
	Query(ctx context.Context, query string, args ...any) ([]Row, error)

	// Insert adds one row with the given column values.
	Insert(ctx context.Context, table string, values map[string]string) error

	// Update rewrites the given columns on rows matching the where columns.
	Update(ctx context.Context, table string, values, where map[string]string) error

	// Delete removes rows matching the where columns.
	Delete(ctx context.Context, table string, where map[string]string) error
}
