// Package appconf implements the caching configuration store.
//
// Independent applications share one backing table, each owning a private
// namespace of string key-value pairs. The Store mediates every read and
// write: the first touch of a namespace loads its complete entry set from
// the backend into an in-memory cache, later reads are served from that
// cache, and every mutation goes to the backend first so the cache never
// returns a value the backend does not hold.
//
// The backend is consumed through the Connector interface; package backend
// provides the SQLite implementation.
package appconf
