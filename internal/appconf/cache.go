package appconf

// namespaceCache is the in-memory read path of the store: per namespace it
// holds the key-value entries known so far plus a flag recording whether
// the backend has been asked for that namespace's complete entry set.
//
// It is a pure data structure - no backend access happens here, and it is
// mutated only by the Store after a backend operation has succeeded.
// Synchronization is the Store's job.
type namespaceCache struct {
	entries map[string]map[string]string
	loaded  map[string]bool
}

func newNamespaceCache() *namespaceCache {
	return &namespaceCache{
		entries: make(map[string]map[string]string),
		loaded:  make(map[string]bool),
	}
}

// get returns the current mapping for a namespace. The map is the cache's
// own storage, never nil; callers must copy before handing it out.
func (c *namespaceCache) get(namespace string) map[string]string {
	if m, ok := c.entries[namespace]; ok {
		return m
	}
	m := make(map[string]string)
	c.entries[namespace] = m
	return m
}

// isLoaded reports whether a full load has been recorded for the namespace.
func (c *namespaceCache) isLoaded(namespace string) bool {
	return c.loaded[namespace]
}

// markLoaded records that a full load has occurred. Idempotent.
func (c *namespaceCache) markLoaded(namespace string) {
	c.loaded[namespace] = true
}

// put stores one entry, creating the namespace's mapping if needed.
// It never touches the loaded flag: a namespace first seen through a write
// still owes the backend a full load before reads can trust the mapping.
func (c *namespaceCache) put(namespace, key, value string) {
	c.get(namespace)[key] = value
}

// remove drops one key from a namespace's mapping if present.
func (c *namespaceCache) remove(namespace, key string) {
	if m, ok := c.entries[namespace]; ok {
		delete(m, key)
	}
}

// removeNamespace drops a namespace's mapping and its loaded flag, so the
// next access triggers a fresh load.
func (c *namespaceCache) removeNamespace(namespace string) {
	delete(c.entries, namespace)
	delete(c.loaded, namespace)
}
