package usecase

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"impact-ledger/internal/entity"
	"impact-ledger/internal/repo/persistent"
	"impact-ledger/pkg/logger"
	"impact-ledger/pkg/queue"
	"impact-ledger/pkg/s3"
)

// LedgerUseCase is the operation surface consumed by the HTTP layer. The
// account id comes from the authenticated request; each account gets its own
// serialized Ledger instance.
type LedgerUseCase interface {
	Initialize(accountID string) (entity.Balance, error)
	GetState(accountID string) (*entity.Snapshot, error)
	GetBalance(accountID string) (entity.Balance, error)
	GetRewards(accountID string, claimableOnly bool) ([]entity.Reward, error)
	UnlockReward(accountID, rewardID string) (bool, error)
	ClaimReward(accountID, rewardID string) (*entity.Transaction, error)
	Contribute(accountID, causeID string, amount float64) (*entity.Transaction, error)
	TransferTokens(accountID, toAddress string, amount float64, note string) (*entity.Transaction, error)
	RecordReceive(accountID, fromAddress string, amount float64, note string) (*entity.Transaction, error)
	StakeTokens(accountID string, amount float64) (*entity.Transaction, error)
	UnstakeTokens(accountID, stakeID string) (*entity.Transaction, error)
	GetTransactions(accountID string, limit, offset int) ([]entity.Transaction, error)
	ExportAuditLog(accountID string) (string, error)
	Reset(accountID string) error
}

type ledgerUseCase struct {
	repo         persistent.LedgerRepository
	archive      persistent.ArchiveRepository
	s3Client     *s3.Client
	queueClient  *queue.Client
	clock        Clock
	logger       *logger.Logger
	confirmDelay time.Duration

	mu      sync.Mutex
	ledgers map[string]*Ledger
}

func NewLedgerUseCase(
	repo persistent.LedgerRepository,
	archive persistent.ArchiveRepository,
	s3Client *s3.Client,
	queueClient *queue.Client,
	clock Clock,
	log *logger.Logger,
	confirmDelay time.Duration,
) LedgerUseCase {
	return &ledgerUseCase{
		repo:         repo,
		archive:      archive,
		s3Client:     s3Client,
		queueClient:  queueClient,
		clock:        clock,
		logger:       log,
		confirmDelay: confirmDelay,
		ledgers:      make(map[string]*Ledger),
	}
}

// ledger returns the account's ledger, loading it from persistence on first
// use.
func (uc *ledgerUseCase) ledger(accountID string) *Ledger {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if l, ok := uc.ledgers[accountID]; ok {
		return l
	}
	l := NewLedger(accountID, uc.repo, uc.archive, uc.queueClient, NewNotifier(uc.logger), uc.clock, uc.logger, uc.confirmDelay)
	uc.ledgers[accountID] = l
	return l
}

func (uc *ledgerUseCase) Initialize(accountID string) (entity.Balance, error) {
	return uc.ledger(accountID).Initialize()
}

func (uc *ledgerUseCase) GetState(accountID string) (*entity.Snapshot, error) {
	return uc.ledger(accountID).State(), nil
}

func (uc *ledgerUseCase) GetBalance(accountID string) (entity.Balance, error) {
	return uc.ledger(accountID).GetBalance(), nil
}

func (uc *ledgerUseCase) GetRewards(accountID string, claimableOnly bool) ([]entity.Reward, error) {
	l := uc.ledger(accountID)
	if claimableOnly {
		return l.ClaimableRewards(), nil
	}
	return l.AllRewards(), nil
}

func (uc *ledgerUseCase) UnlockReward(accountID, rewardID string) (bool, error) {
	return uc.ledger(accountID).UnlockReward(rewardID)
}

func (uc *ledgerUseCase) ClaimReward(accountID, rewardID string) (*entity.Transaction, error) {
	return uc.ledger(accountID).ClaimReward(rewardID)
}

func (uc *ledgerUseCase) Contribute(accountID, causeID string, amount float64) (*entity.Transaction, error) {
	return uc.ledger(accountID).Contribute(causeID, amount)
}

func (uc *ledgerUseCase) TransferTokens(accountID, toAddress string, amount float64, note string) (*entity.Transaction, error) {
	return uc.ledger(accountID).TransferTokens(toAddress, amount, note)
}

func (uc *ledgerUseCase) RecordReceive(accountID, fromAddress string, amount float64, note string) (*entity.Transaction, error) {
	return uc.ledger(accountID).RecordReceive(fromAddress, amount, note)
}

func (uc *ledgerUseCase) StakeTokens(accountID string, amount float64) (*entity.Transaction, error) {
	return uc.ledger(accountID).StakeTokens(amount)
}

func (uc *ledgerUseCase) UnstakeTokens(accountID, stakeID string) (*entity.Transaction, error) {
	return uc.ledger(accountID).UnstakeTokens(stakeID)
}

func (uc *ledgerUseCase) GetTransactions(accountID string, limit, offset int) ([]entity.Transaction, error) {
	return uc.ledger(accountID).Transactions(limit, offset), nil
}

// ExportAuditLog uploads the full transaction log to S3 and returns the
// object URL.
func (uc *ledgerUseCase) ExportAuditLog(accountID string) (string, error) {
	if uc.s3Client == nil {
		return "", fmt.Errorf("audit export is not configured")
	}

	txlog := uc.ledger(accountID).Log()
	data, err := json.MarshalIndent(txlog, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal audit log: %w", err)
	}

	key := fmt.Sprintf("exports/%s/audit_%d.json", accountID, uc.clock.Now().Unix())
	url, err := uc.s3Client.UploadJSON(key, data)
	if err != nil {
		uc.logger.Error("Failed to upload audit export for account %s: %v", accountID, err)
		return "", fmt.Errorf("failed to upload audit export: %w", err)
	}

	uc.logger.Info("Exported audit log for account %s to %s", accountID, url)
	return url, nil
}

func (uc *ledgerUseCase) Reset(accountID string) error {
	return uc.ledger(accountID).Reset()
}
