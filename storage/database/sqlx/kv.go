package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// kvStore keeps the session values in the `kv` table.
type kvStore struct {
	db *sqlx.DB
}

func NewKVStore(db *sqlx.DB) *kvStore {
	return &kvStore{db: db}
}

func (repo *kvStore) Get(key string) (string, bool, error) {
	var val string
	err := repo.db.Get(&val, `SELECT value FROM kv WHERE key = $1`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "getting %s", key)
	}
	return val, true, nil
}

func (repo *kvStore) Set(key, value string) error {
	const q = `
		INSERT INTO kv (key, value, updated_at) VALUES (:key, :value, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	if _, err := repo.db.NamedExec(q, map[string]interface{}{"key": key, "value": value}); err != nil {
		return errors.Wrapf(err, "setting %s", key)
	}
	return nil
}

func (repo *kvStore) Delete(key string) error {
	if _, err := repo.db.Exec(`DELETE FROM kv WHERE key = $1`, key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}
	return nil
}
