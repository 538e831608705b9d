package persistent

import (
	"encoding/json"

	"impact-ledger/internal/entity"
	"impact-ledger/internal/model"
)

func ToTransactionArchiveModel(accountID string, e *entity.Transaction) *model.TransactionArchiveModel {
	if e == nil {
		return nil
	}

	metadata := ""
	if len(e.Metadata) > 0 {
		if data, err := json.Marshal(e.Metadata); err == nil {
			metadata = string(data)
		}
	}

	return &model.TransactionArchiveModel{
		ID:          e.ID,
		AccountID:   accountID,
		Kind:        string(e.Kind),
		Amount:      e.Amount,
		Status:      string(e.Status),
		TxHash:      e.TxHash,
		Counterpart: e.Counterpart,
		Metadata:    metadata,
		CreatedAt:   e.CreatedAt,
	}
}

func ToTransactionEntity(m *model.TransactionArchiveModel) *entity.Transaction {
	if m == nil {
		return nil
	}

	var metadata map[string]string
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &metadata)
	}

	return &entity.Transaction{
		ID:          m.ID,
		Kind:        entity.TransactionKind(m.Kind),
		Amount:      m.Amount,
		Status:      entity.TransactionStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		TxHash:      m.TxHash,
		Counterpart: m.Counterpart,
		Metadata:    metadata,
	}
}
