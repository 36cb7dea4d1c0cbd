package shared

import (
	"context"
	"sync"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	memdbTable = "shared"
	memdbIndex = "id"
)

type memdbEntry struct {
	Name string
	Data []byte
}

// MemDBStorage keeps values in an in-process go-memdb database and reports changes
// through memdb watch channels.
type MemDBStorage struct {
	db *memdb.MemDB
}

func NewMemDBStorage() (*MemDBStorage, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			memdbTable: {
				Name: memdbTable,
				Indexes: map[string]*memdb.IndexSchema{
					memdbIndex: {
						Name:    memdbIndex,
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Name"},
					},
				},
			},
		},
	}
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	return &MemDBStorage{db: db}, nil
}

func (m *MemDBStorage) Load(ctx context.Context, key string) ([]byte, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(memdbTable, memdbIndex, key)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw.(*memdbEntry).Data...), nil
}

func (m *MemDBStorage) Save(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := m.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert(memdbTable, &memdbEntry{Name: key, Data: append([]byte(nil), data...)}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (m *MemDBStorage) Subscribe(key string, fn func()) func() {
	stop := make(chan struct{})
	go func() {
		for {
			txn := m.db.Txn(false)
			watchCh, _, err := txn.FirstWatch(memdbTable, memdbIndex, key)
			txn.Abort()
			if err != nil {
				return
			}
			select {
			case <-watchCh:
				fn()
			case <-stop:
				return
			}
		}
	}()
	var once sync.Once
	return func() { once.Do(func() { close(stop) }) }
}
