package appconf

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory Connector that understands exactly the
// statements the store issues. It counts calls per operation so tests can
// assert how often the backend was actually touched, and can be forced to
// fail every call via failWith.
type fakeConn struct {
	rows []fakeRow

	failWith error

	loadQueries int // full-namespace loads (SELECT key, value ...)
	appQueries  int // distinct-namespace listings
	keyQueries  int // cross-namespace key lookups
	inserts     int
	updates     int
	deletes     int
}

type fakeRow struct {
	namespace, key, value string
}

func (f *fakeConn) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}

	switch {
	case strings.HasPrefix(query, "SELECT DISTINCT namespace"):
		f.appQueries++
		seen := map[string]bool{}
		apps := []string{}
		for _, r := range f.rows {
			if !seen[r.namespace] {
				seen[r.namespace] = true
				apps = append(apps, r.namespace)
			}
		}
		sort.Strings(apps)
		result := []Row{}
		for _, app := range apps {
			result = append(result, Row{"namespace": app})
		}
		return result, nil

	case strings.HasPrefix(query, "SELECT key, value"):
		f.loadQueries++
		namespace := args[0].(string)
		result := []Row{}
		for _, r := range f.rows {
			if r.namespace == namespace {
				result = append(result, Row{"key": r.key, "value": r.value})
			}
		}
		return result, nil

	case strings.HasPrefix(query, "SELECT namespace, value"):
		f.keyQueries++
		key := args[0].(string)
		result := []Row{}
		for _, r := range f.rows {
			if r.key == key {
				result = append(result, Row{"namespace": r.namespace, "value": r.value})
			}
		}
		return result, nil
	}

	return nil, fmt.Errorf("fakeConn: unexpected query %q", query)
}

func (f *fakeConn) Insert(ctx context.Context, table string, values map[string]string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.inserts++
	for _, r := range f.rows {
		if r.namespace == values["namespace"] && r.key == values["key"] {
			return fmt.Errorf("fakeConn: UNIQUE constraint failed: %s.namespace, %s.key", table, table)
		}
	}
	f.rows = append(f.rows, fakeRow{values["namespace"], values["key"], values["value"]})
	return nil
}

func (f *fakeConn) Update(ctx context.Context, table string, values, where map[string]string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.updates++
	for i, r := range f.rows {
		if r.namespace == where["namespace"] && r.key == where["key"] {
			f.rows[i].value = values["value"]
		}
	}
	return nil
}

func (f *fakeConn) Delete(ctx context.Context, table string, where map[string]string) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.deletes++
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.namespace != where["namespace"] {
			kept = append(kept, r)
			continue
		}
		if key, ok := where["key"]; ok && r.key != key {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

func seededConn(rows ...fakeRow) *fakeConn {
	return &fakeConn{rows: rows}
}

func TestSetValueThenGetValue(t *testing.T) {
	ctx := context.Background()
	store := New(seededConn())

	require.NoError(t, store.SetValue(ctx, "mail", "smtp_host", "a.example.com"))

	got, err := store.GetValue(ctx, "mail", "smtp_host", "unused-default")
	require.NoError(t, err)
	assert.Equal(t, "a.example.com", got)
}

func TestGetValueMissingKeyReturnsDefault(t *testing.T) {
	ctx := context.Background()
	store := New(seededConn())

	got, err := store.GetValue(ctx, "unknown_app", "missing_key", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
}

func TestNamespaceLoadsAtMostOnce(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(
		fakeRow{"mail", "smtp_host", "a.example.com"},
		fakeRow{"mail", "smtp_port", "25"},
	)
	store := New(conn)

	for i := 0; i < 5; i++ {
		_, err := store.GetValue(ctx, "mail", "smtp_host", "")
		require.NoError(t, err)
	}
	_, err := store.ListKeys(ctx, "mail")
	require.NoError(t, err)
	_, err = store.HasKey(ctx, "mail", "smtp_port")
	require.NoError(t, err)

	assert.Equal(t, 1, conn.loadQueries, "repeated reads must be served from cache")
}

func TestLoadOverwritesWithBackendValues(t *testing.T) {
	// A namespace seeded in the backend is read back on first touch even
	// when the first touch is a write to a different key.
	ctx := context.Background()
	conn := seededConn(fakeRow{"mail", "smtp_host", "a.example.com"})
	store := New(conn)

	require.NoError(t, store.SetValue(ctx, "mail", "smtp_port", "25"))

	got, err := store.GetValue(ctx, "mail", "smtp_host", "")
	require.NoError(t, err)
	assert.Equal(t, "a.example.com", got)
	assert.Equal(t, 1, conn.loadQueries, "the SetValue already loaded the namespace")
}

func TestSetValueInsertsNewAndUpdatesExisting(t *testing.T) {
	ctx := context.Background()
	conn := seededConn()
	store := New(conn)

	require.NoError(t, store.SetValue(ctx, "mail", "smtp_port", "25"))
	assert.Equal(t, 1, conn.inserts)
	assert.Equal(t, 0, conn.updates)

	require.NoError(t, store.SetValue(ctx, "mail", "smtp_port", "587"))
	assert.Equal(t, 1, conn.inserts)
	assert.Equal(t, 1, conn.updates)

	got, err := store.GetValue(ctx, "mail", "smtp_port", "")
	require.NoError(t, err)
	assert.Equal(t, "587", got)
}

func TestSetValueBackendFailureLeavesCacheUntouched(t *testing.T) {
	ctx := context.Background()
	conn := seededConn()
	store := New(conn)

	// Load the namespace first so the failure hits the write, not the load.
	_, err := store.GetValue(ctx, "mail", "smtp_host", "")
	require.NoError(t, err)

	backendErr := errors.New("disk I/O error")
	conn.failWith = backendErr

	err = store.SetValue(ctx, "mail", "smtp_host", "b.example.com")
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)

	conn.failWith = nil
	ok, err := store.HasKey(ctx, "mail", "smtp_host")
	require.NoError(t, err)
	assert.False(t, ok, "failed write must not appear in the cache")
}

func TestDeleteKeyRemovesFromCache(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(fakeRow{"mail", "smtp_host", "a.example.com"})
	store := New(conn)

	require.NoError(t, store.DeleteKey(ctx, "mail", "smtp_host"))

	ok, err := store.HasKey(ctx, "mail", "smtp_host")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, conn.rows)
}

func TestDeleteKeyMissingIsNoop(t *testing.T) {
	ctx := context.Background()
	store := New(seededConn())

	assert.NoError(t, store.DeleteKey(ctx, "mail", "never_set"))
}

func TestDeleteKeyBackendFailureLeavesCache(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(fakeRow{"mail", "smtp_host", "a.example.com"})
	store := New(conn)

	_, err := store.GetValue(ctx, "mail", "smtp_host", "")
	require.NoError(t, err)

	backendErr := errors.New("database is locked")
	conn.failWith = backendErr

	err = store.DeleteKey(ctx, "mail", "smtp_host")
	assert.ErrorIs(t, err, backendErr)

	conn.failWith = nil
	ok, err := store.HasKey(ctx, "mail", "smtp_host")
	require.NoError(t, err)
	assert.True(t, ok, "failed delete must not evict the cached entry")
}

func TestDeleteAppClearsEverything(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(
		fakeRow{"mail", "smtp_host", "a.example.com"},
		fakeRow{"mail", "smtp_port", "25"},
		fakeRow{"web", "theme", "dark"},
	)
	store := New(conn)

	// Warm the cache so the delete has something to clear.
	_, err := store.ListKeys(ctx, "mail")
	require.NoError(t, err)

	require.NoError(t, store.DeleteApp(ctx, "mail"))

	keys, err := store.ListKeys(ctx, "mail")
	require.NoError(t, err)
	assert.Empty(t, keys)

	apps, err := store.ListApps(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, apps)
}

func TestDeleteAppForcesFreshLoad(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(fakeRow{"mail", "smtp_host", "a.example.com"})
	store := New(conn)

	_, err := store.ListKeys(ctx, "mail")
	require.NoError(t, err)
	require.NoError(t, store.DeleteApp(ctx, "mail"))

	// The loaded flag was cleared, so the next read loads again.
	_, err = store.ListKeys(ctx, "mail")
	require.NoError(t, err)
	assert.Equal(t, 2, conn.loadQueries)
}

func TestListAppsAlwaysHitsBackend(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(
		fakeRow{"web", "theme", "dark"},
		fakeRow{"mail", "smtp_host", "a.example.com"},
	)
	store := New(conn)

	for i := 0; i < 3; i++ {
		apps, err := store.ListApps(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"mail", "web"}, apps, "ascending order")
	}
	assert.Equal(t, 3, conn.appQueries)
}

func TestListKeysSortedAscending(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(
		fakeRow{"mail", "smtp_port", "25"},
		fakeRow{"mail", "smtp_host", "a.example.com"},
		fakeRow{"mail", "from_address", "noreply@example.com"},
	)
	store := New(conn)

	keys, err := store.ListKeys(ctx, "mail")
	require.NoError(t, err)
	assert.Equal(t, []string{"from_address", "smtp_host", "smtp_port"}, keys)
}

func TestGetValuesByApp(t *testing.T) {
	ctx := context.Background()
	store := New(seededConn())

	require.NoError(t, store.SetValue(ctx, "mail", "smtp_host", "a.example.com"))
	require.NoError(t, store.SetValue(ctx, "mail", "smtp_port", "25"))

	values, err := store.GetValues(ctx, ByApp("mail"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"smtp_host": "a.example.com",
		"smtp_port": "25",
	}, values)
}

func TestGetValuesByKey(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(
		fakeRow{"mail", "timeout", "30"},
		fakeRow{"web", "timeout", "5"},
		fakeRow{"web", "theme", "dark"},
	)
	store := New(conn)

	values, err := store.GetValues(ctx, ByKey("timeout"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"mail": "30", "web": "5"}, values)
}

func TestGetValuesZeroFilterFailsWithoutBackendCall(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(fakeRow{"mail", "timeout", "30"})
	store := New(conn)

	_, err := store.GetValues(ctx, Filter{})
	assert.ErrorIs(t, err, ErrNoFilter)
	assert.Zero(t, conn.loadQueries)
	assert.Zero(t, conn.appQueries)
	assert.Zero(t, conn.keyQueries)
}

func TestGetValuesBypassesCache(t *testing.T) {
	ctx := context.Background()
	conn := seededConn(fakeRow{"mail", "smtp_host", "a.example.com"})
	store := New(conn)

	_, err := store.GetValues(ctx, ByApp("mail"))
	require.NoError(t, err)

	// The bulk query must not count as a load: the first regular read
	// still loads the namespace.
	_, err = store.GetValue(ctx, "mail", "smtp_host", "")
	require.NoError(t, err)
	assert.Equal(t, 2, conn.loadQueries, "one bulk query plus one real load")
}

func TestBackendErrorPropagatesFromLoad(t *testing.T) {
	ctx := context.Background()
	backendErr := errors.New("connection refused")
	store := New(&fakeConn{failWith: backendErr})

	_, err := store.GetValue(ctx, "mail", "smtp_host", "")
	assert.ErrorIs(t, err, backendErr)
}
