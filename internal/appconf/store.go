package appconf

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Store mediates all configuration reads and writes between callers and
// the backing table. Each namespace is loaded from the backend in full on
// first touch and served from cache afterwards; every mutation hits the
// backend first and updates the cache only after the backend confirmed it.
//
// A Store is safe for concurrent use within one process: an internal mutex
// serializes the check-loaded/query/populate/mark-loaded sequence and all
// cache mutation. Separate Store instances mutating the same table do not
// see each other's writes; each instance's cache reflects the backend as
// of its own loads and writes. That divergence is an accepted limitation.
//
// Namespaces and keys are opaque strings - the store never validates or
// empty-checks them; that is the caller's responsibility.
type Store struct {
	mu    sync.Mutex
	conn  Connector
	cache *namespaceCache
}

// New creates a Store over the given backend connector with an empty cache.
// The cache lives as long as the Store.
func New(conn Connector) *Store {
	return &Store{
		conn:  conn,
		cache: newNamespaceCache(),
	}
}

// ListApps returns every namespace holding at least one entry, sorted
// ascending. This aggregate is never cached; each call queries the backend.
func (s *Store) ListApps(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx,
		"SELECT DISTINCT namespace FROM "+Table+" ORDER BY namespace ASC")
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}

	apps := make([]string, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row["namespace"])
	}
	return apps, nil
}

// ListKeys returns the namespace's keys sorted ascending, loading the
// namespace from the backend if this is its first touch. A namespace with
// no entries yields an empty slice.
func (s *Store) ListKeys(ctx context.Context, namespace string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, namespace); err != nil {
		return nil, err
	}

	entries := s.cache.get(namespace)
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// GetValue returns the value stored under (namespace, key), or def
// unchanged if the key does not exist. A missing key is not an error; the
// only error source is the initial namespace load.
func (s *Store) GetValue(ctx context.Context, namespace, key, def string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, namespace); err != nil {
		return "", err
	}

	if value, ok := s.cache.get(namespace)[key]; ok {
		return value, nil
	}
	return def, nil
}

// HasKey reports whether (namespace, key) currently holds a value.
func (s *Store) HasKey(ctx context.Context, namespace, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx, namespace); err != nil {
		return false, err
	}
	return s.hasKeyLocked(namespace, key), nil
}

// SetValue stores value under (namespace, key), inserting a new row or
// updating the existing one. The backend write happens first; the cache is
// updated only on success and left untouched when the backend fails.
func (s *Store) SetValue(ctx context.Context, namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Insert vs update is decided by key presence, which needs the
	// namespace loaded.
	if err := s.ensureLoaded(ctx, namespace); err != nil {
		return err
	}

	if s.hasKeyLocked(namespace, key) {
		err := s.conn.Update(ctx, Table,
			map[string]string{"value": value},
			map[string]string{"namespace": namespace, "key": key})
		if err != nil {
			return fmt.Errorf("set value: %w", err)
		}
	} else {
		err := s.conn.Insert(ctx, Table, map[string]string{
			"namespace": namespace,
			"key":       key,
			"value":     value,
		})
		if err != nil {
			return fmt.Errorf("set value: %w", err)
		}
	}

	s.cache.put(namespace, key, value)
	return nil
}

// DeleteKey removes the (namespace, key) row from the backend and, on
// success, from the cache. Deleting a key that does not exist succeeds as
// a no-op.
func (s *Store) DeleteKey(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.conn.Delete(ctx, Table,
		map[string]string{"namespace": namespace, "key": key})
	if err != nil {
		return fmt.Errorf("delete key: %w", err)
	}

	s.cache.remove(namespace, key)
	return nil
}

// DeleteApp removes every row of the namespace from the backend and, on
// success, drops the namespace from the cache entirely - mapping and
// loaded flag - so a later access loads fresh.
func (s *Store) DeleteApp(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.conn.Delete(ctx, Table, map[string]string{"namespace": namespace})
	if err != nil {
		return fmt.Errorf("delete app: %w", err)
	}

	s.cache.removeNamespace(namespace)
	return nil
}

// GetValues answers a bulk wildcard query straight from the backend,
// bypassing the cache in both directions (it neither reads nor populates
// it). With ByApp the result maps key to value within that namespace; with
// ByKey it maps namespace to value across all namespaces. The zero Filter
// fails with ErrNoFilter before any backend call.
func (s *Store) GetValues(ctx context.Context, filter Filter) (map[string]string, error) {
	var rows []Row
	var err error
	var resultCol string

	switch filter.kind {
	case filterByApp:
		rows, err = s.conn.Query(ctx,
			"SELECT key, value FROM "+Table+" WHERE namespace = ?", filter.value)
		resultCol = "key"
	case filterByKey:
		rows, err = s.conn.Query(ctx,
			"SELECT namespace, value FROM "+Table+" WHERE key = ?", filter.value)
		resultCol = "namespace"
	default:
		return nil, ErrNoFilter
	}
	if err != nil {
		return nil, fmt.Errorf("bulk values: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row[resultCol]] = row["value"]
	}
	return values, nil
}

// ensureLoaded performs the at-most-once full load of a namespace: query
// all of its rows, populate the cache, mark it loaded. Entries already in
// the cache from an earlier SetValue are overwritten with the value read
// back from the backend; writes are backend-first, so the backend value is
// authoritative. Callers must hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context, namespace string) error {
	if s.cache.isLoaded(namespace) {
		return nil
	}

	rows, err := s.conn.Query(ctx,
		"SELECT key, value FROM "+Table+" WHERE namespace = ?", namespace)
	if err != nil {
		return fmt.Errorf("load namespace %q: %w", namespace, err)
	}

	for _, row := range rows {
		s.cache.put(namespace, row["key"], row["value"])
	}
	s.cache.markLoaded(namespace)
	return nil
}

// hasKeyLocked reports key presence in the cache. Callers must hold s.mu
// and have loaded the namespace.
func (s *Store) hasKeyLocked(namespace, key string) bool {
	_, ok := s.cache.get(namespace)[key]
	return ok
}
