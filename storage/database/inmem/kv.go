package inmemdb

// kvStore keeps the session values in process memory; they are lost on restart.
type kvStore struct {
	db *kvTable
}

func NewKVStore(db *DB) *kvStore {
	return &kvStore{db: db.kv}
}

func (repo *kvStore) Get(key string) (string, bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	val, ok := repo.db.table[key]
	return val, ok, nil
}

func (repo *kvStore) Set(key, value string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[key] = value
	return nil
}

func (repo *kvStore) Delete(key string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, key)
	return nil
}
