// Package storage selects the durable key-value store backing the session.
package storage

import (
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/session"
	"github.com/trezcool/staffdesk/storage/database"
	inmemdb "github.com/trezcool/staffdesk/storage/database/inmem"
	sqlxrepos "github.com/trezcool/staffdesk/storage/database/sqlx"
	filestore "github.com/trezcool/staffdesk/storage/file"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open returns the KVStore of the configured driver and a closer releasing its resources.
func Open(conf *core.Config) (session.KVStore, io.Closer, error) {
	switch strings.ToLower(conf.Storage.Driver) {
	case DriverMemory, "":
		db, err := inmemdb.Open()
		if err != nil {
			return nil, nil, err
		}
		return inmemdb.NewKVStore(db), nopCloser{}, nil
	case DriverFile:
		kv, err := filestore.Open(conf.Storage.Path)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening file store")
		}
		return kv, nopCloser{}, nil
	case DriverPostgres:
		db, err := database.Open(conf.Database)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening postgres store")
		}
		return sqlxrepos.NewKVStore(db), db, nil
	}
	return nil, nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
}
