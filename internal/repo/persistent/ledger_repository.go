package persistent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"impact-ledger/internal/entity"
	"impact-ledger/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// LedgerRepository persists two independent blobs per account: the ledger
// snapshot and the ordered transaction log. Loads tolerate missing or corrupt
// data by returning nil; the caller falls back to a default state.
type LedgerRepository interface {
	LoadSnapshot(accountID string) (*entity.Snapshot, error)
	SaveSnapshot(accountID string, snapshot *entity.Snapshot) error
	LoadLog(accountID string) ([]entity.Transaction, error)
	SaveLog(accountID string, transactions []entity.Transaction) error
	Reset(accountID string) error
}

type ledgerRepository struct {
	client *redis.Client
	logger *logger.Logger
}

func NewLedgerRepository(client *redis.Client, logger *logger.Logger) LedgerRepository {
	return &ledgerRepository{client: client, logger: logger}
}

func snapshotKey(accountID string) string {
	return fmt.Sprintf("ledger:snapshot:%s", accountID)
}

func logKey(accountID string) string {
	return fmt.Sprintf("ledger:log:%s", accountID)
}

func (r *ledgerRepository) LoadSnapshot(accountID string) (*entity.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := r.client.Get(ctx, snapshotKey(accountID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snapshot entity.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Warn("Corrupt ledger snapshot for account %s, falling back to defaults: %v", accountID, err)
		return nil, nil
	}
	return &snapshot, nil
}

func (r *ledgerRepository) SaveSnapshot(accountID string, snapshot *entity.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, snapshotKey(accountID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *ledgerRepository) LoadLog(accountID string) ([]entity.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := r.client.Get(ctx, logKey(accountID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction log: %w", err)
	}

	var transactions []entity.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		r.logger.Warn("Corrupt transaction log for account %s, falling back to empty log: %v", accountID, err)
		return nil, nil
	}
	return transactions, nil
}

func (r *ledgerRepository) SaveLog(accountID string, transactions []entity.Transaction) error {
	data, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction log: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, logKey(accountID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save transaction log: %w", err)
	}
	return nil
}

func (r *ledgerRepository) Reset(accountID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Del(ctx, snapshotKey(accountID), logKey(accountID)).Err(); err != nil {
		return fmt.Errorf("failed to reset ledger persistence: %w", err)
	}
	return nil
}
