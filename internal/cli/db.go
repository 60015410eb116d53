package cli

import (
	"github.com/confkit/appconf/internal/appconf"
	"github.com/confkit/appconf/internal/backend"
)

// openStore opens the SQLite backend at path and wraps it in a config
// store. The caller owns closing the returned backend and rendering any
// open failure through its formatter.
func openStore(path string) (*appconf.Store, *backend.DB, error) {
	db, err := backend.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return appconf.New(db), db, nil
}
