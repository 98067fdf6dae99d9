// Package filestore keeps the session values in a single JSON file on disk.
// Paths ending in ".xz" are stored xz-compressed.
package filestore

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

type kvStore struct {
	mu    sync.RWMutex
	path  string
	table map[string]string
}

// Open loads the file at path, if any. A missing file is an empty store.
func Open(path string) (*kvStore, error) {
	repo := &kvStore{path: path, table: make(map[string]string)}
	if err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

func (repo *kvStore) compressed() bool {
	return strings.HasSuffix(strings.ToLower(repo.path), ".xz")
}

func (repo *kvStore) load() error {
	f, err := os.Open(repo.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "opening store")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if repo.compressed() {
		if r, err = xz.NewReader(f); err != nil {
			return errors.Wrapf(err, "reading %s", repo.path)
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrapf(err, "reading %s", repo.path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &repo.table); err != nil {
		return errors.Wrapf(err, "decoding %s", repo.path)
	}
	return nil
}

// flush writes the whole table to a temp file then renames it over the store.
// Callers hold the write lock.
func (repo *kvStore) flush() error {
	data, err := json.Marshal(repo.table)
	if err != nil {
		return errors.Wrap(err, "encoding store")
	}

	dir := filepath.Dir(repo.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating store dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(repo.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := repo.write(tmp, data); err != nil {
		_ = tmp.Close()
		return errors.Wrapf(err, "writing %s", repo.path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "writing %s", repo.path)
	}
	if err := os.Rename(tmp.Name(), repo.path); err != nil {
		return errors.Wrapf(err, "replacing %s", repo.path)
	}
	return nil
}

func (repo *kvStore) write(w io.Writer, data []byte) error {
	if !repo.compressed() {
		_, err := w.Write(data)
		return err
	}
	xw, err := xz.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := xw.Write(data); err != nil {
		return err
	}
	return xw.Close()
}

func (repo *kvStore) Get(key string) (string, bool, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()
	val, ok := repo.table[key]
	return val, ok, nil
}

func (repo *kvStore) Set(key, value string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	prev, existed := repo.table[key]
	repo.table[key] = value
	if err := repo.flush(); err != nil {
		if existed {
			repo.table[key] = prev
		} else {
			delete(repo.table, key)
		}
		return err
	}
	return nil
}

func (repo *kvStore) Delete(key string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	prev, existed := repo.table[key]
	if !existed {
		return nil
	}
	delete(repo.table, key)
	if err := repo.flush(); err != nil {
		repo.table[key] = prev
		return err
	}
	return nil
}
