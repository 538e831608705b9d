package persistent

import (
	"fmt"

	"impact-ledger/internal/entity"
	"impact-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ArchiveRepository keeps a durable copy of committed transactions in
// Postgres. Archive writes are best-effort; the Redis log stays authoritative.
type ArchiveRepository interface {
	AppendTransaction(accountID string, transaction *entity.Transaction) error
	ListTransactions(accountID string, limit, offset int) ([]*entity.Transaction, error)
}

type archiveRepository struct {
	db *gorm.DB
}

func NewArchiveRepository(db *gorm.DB) ArchiveRepository {
	return &archiveRepository{db: db}
}

func (r *archiveRepository) AppendTransaction(accountID string, transaction *entity.Transaction) error {
	archiveModel := ToTransactionArchiveModel(accountID, transaction)
	if archiveModel.ID == "" {
		archiveModel.ID = uuid.New().String()
	}
	if err := r.db.Create(archiveModel).Error; err != nil {
		return fmt.Errorf("failed to archive transaction: %w", err)
	}
	return nil
}

func (r *archiveRepository) ListTransactions(accountID string, limit, offset int) ([]*entity.Transaction, error) {
	var archiveModels []model.TransactionArchiveModel
	query := r.db.Where("account_id = ?", accountID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}
	if err := query.Find(&archiveModels).Error; err != nil {
		return nil, fmt.Errorf("failed to list archived transactions: %w", err)
	}

	transactions := make([]*entity.Transaction, len(archiveModels))
	for i := range archiveModels {
		transactions[i] = ToTransactionEntity(&archiveModels[i])
	}
	return transactions, nil
}
