package appconf

import "errors"

// ErrNoFilter is returned by GetValues when the Filter was not built by
// ByApp or ByKey. No backend call is made in that case.
var ErrNoFilter = errors.New("bulk values query requires a filter built by ByApp or ByKey")

// Filter selects exactly one dimension of a bulk values query: either one
// namespace across all of its keys, or one key across all namespaces.
// Supplying both dimensions is unrepresentable; the zero Filter selects
// nothing and is rejected with ErrNoFilter.
type Filter struct {
	kind  filterKind
	value string
}

type filterKind int

const (
	filterNone filterKind = iota
	filterByApp
	filterByKey
)

// ByApp selects every entry of one namespace; GetValues then maps key to
// value.
func ByApp(namespace string) Filter {
	return Filter{kind: filterByApp, value: namespace}
}

// ByKey selects the entries holding one key across all namespaces;
// GetValues then maps namespace to value.
func ByKey(key string) Filter {
	return Filter{kind: filterByKey, value: key}
}
