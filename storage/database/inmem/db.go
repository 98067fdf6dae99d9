package inmemdb

import "sync"

type (
	DB struct {
		kv *kvTable
	}

	kvTable struct {
		sync.RWMutex
		table map[string]string
	}
)

func Open() (*DB, error) {
	db := &DB{
		kv: &kvTable{table: make(map[string]string)},
	}
	return db, nil
}
