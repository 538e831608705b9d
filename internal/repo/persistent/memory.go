package persistent

import (
	"encoding/json"
	"sync"

	"impact-ledger/internal/entity"
)

// MemoryRepository is an in-process LedgerRepository used by tests and local
// runs without Redis. It stores the same serialized blobs a Redis deployment
// would, so serialization round-trips are exercised for real.
type MemoryRepository struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{blobs: make(map[string][]byte)}
}

func (r *MemoryRepository) LoadSnapshot(accountID string) (*entity.Snapshot, error) {
	r.mu.Lock()
	data, ok := r.blobs[snapshotKey(accountID)]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var snapshot entity.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, nil
	}
	return &snapshot, nil
}

func (r *MemoryRepository) SaveSnapshot(accountID string, snapshot *entity.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.blobs[snapshotKey(accountID)] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) LoadLog(accountID string) ([]entity.Transaction, error) {
	r.mu.Lock()
	data, ok := r.blobs[logKey(accountID)]
	r.mu.Unlock()
	if !ok {
		return nil, nil
	}

	var transactions []entity.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, nil
	}
	return transactions, nil
}

func (r *MemoryRepository) SaveLog(accountID string, transactions []entity.Transaction) error {
	data, err := json.Marshal(transactions)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.blobs[logKey(accountID)] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Reset(accountID string) error {
	r.mu.Lock()
	delete(r.blobs, snapshotKey(accountID))
	delete(r.blobs, logKey(accountID))
	r.mu.Unlock()
	return nil
}
