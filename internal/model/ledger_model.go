package model

import "time"

// TransactionArchiveModel is the durable audit copy of a committed ledger
// transaction. The authoritative log lives in the Redis blob; this table is a
// best-effort archive for reporting and reconciliation.
type TransactionArchiveModel struct {
	ID          string    `gorm:"type:uuid;primary_key" json:"id"`
	AccountID   string    `gorm:"type:varchar(64);not null;index" json:"account_id"`
	Kind        string    `gorm:"type:varchar(32);not null" json:"kind"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Status      string    `gorm:"type:varchar(16);not null" json:"status"`
	TxHash      string    `gorm:"type:varchar(80);not null" json:"tx_hash"`
	Counterpart string    `gorm:"type:varchar(128)" json:"counterpart,omitempty"`
	Metadata    string    `gorm:"type:text" json:"metadata,omitempty"` // JSON-encoded
	CreatedAt   time.Time `json:"created_at"`
}

func (TransactionArchiveModel) TableName() string {
	return "ledger_transactions"
}
