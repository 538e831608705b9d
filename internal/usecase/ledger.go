package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"impact-ledger/internal/entity"
	"impact-ledger/internal/repo/persistent"
	"impact-ledger/pkg/logger"
	"impact-ledger/pkg/queue"

	"github.com/google/uuid"
)

const (
	startingTokens = 100.0
	startingGas    = 0.5

	stakingAnnualRate = 0.05
	minAddressLength  = 8
)

func defaultRewardCatalog() []entity.Reward {
	return []entity.Reward{
		{ID: "welcome_bonus", Category: entity.RewardCategoryBonus, Amount: 25, Description: "Welcome aboard bonus", Status: entity.RewardStatusLocked},
		{ID: "day_1_milestone", Category: entity.RewardCategoryMilestone, Amount: 10, Description: "Completed your first day", Status: entity.RewardStatusLocked},
		{ID: "day_7_milestone", Category: entity.RewardCategoryMilestone, Amount: 50, Description: "Seven day streak", Status: entity.RewardStatusLocked},
		{ID: "day_30_milestone", Category: entity.RewardCategoryMilestone, Amount: 200, Description: "Thirty day streak", Status: entity.RewardStatusLocked},
		{ID: "daily_checkin", Category: entity.RewardCategoryDaily, Amount: 5, Description: "Daily check-in", Status: entity.RewardStatusLocked},
		{ID: "first_contribution", Category: entity.RewardCategoryBonus, Amount: 15, Description: "Made your first contribution", Status: entity.RewardStatusLocked},
	}
}

func defaultSnapshot(accountID string) *entity.Snapshot {
	return &entity.Snapshot{
		AccountID: accountID,
		Rewards:   defaultRewardCatalog(),
	}
}

// Ledger is the single source of truth for one account's balances, rewards,
// stakes, contributions and transaction log.
//
// Mutating operations are serialized by opMu, held across the whole
// validate -> simulated confirmation delay -> commit sequence, so two
// in-flight operations can never both validate against pre-mutation state.
// stateMu guards the state itself so reads never wait out a delay.
type Ledger struct {
	accountID    string
	repo         persistent.LedgerRepository
	archive      persistent.ArchiveRepository
	queueClient  *queue.Client
	notifier     *Notifier
	clock        Clock
	logger       *logger.Logger
	confirmDelay time.Duration

	opMu    sync.Mutex
	stateMu sync.RWMutex
	state   *entity.Snapshot
	txlog   []entity.Transaction
}

func NewLedger(
	accountID string,
	repo persistent.LedgerRepository,
	archive persistent.ArchiveRepository,
	queueClient *queue.Client,
	notifier *Notifier,
	clock Clock,
	log *logger.Logger,
	confirmDelay time.Duration,
) *Ledger {
	l := &Ledger{
		accountID:    accountID,
		repo:         repo,
		archive:      archive,
		queueClient:  queueClient,
		notifier:     notifier,
		clock:        clock,
		logger:       log,
		confirmDelay: confirmDelay,
	}

	snapshot, err := repo.LoadSnapshot(accountID)
	if err != nil {
		log.Warn("Failed to load ledger snapshot for account %s, using defaults: %v", accountID, err)
		snapshot = nil
	}
	if snapshot == nil {
		snapshot = defaultSnapshot(accountID)
	}
	if len(snapshot.Rewards) == 0 {
		snapshot.Rewards = defaultRewardCatalog()
	}
	l.state = snapshot

	txlog, err := repo.LoadLog(accountID)
	if err != nil {
		log.Warn("Failed to load transaction log for account %s, using empty log: %v", accountID, err)
		txlog = nil
	}
	l.txlog = txlog

	return l
}

// ─── Reads ──────────────────────────────────────────────────────────────────

// State returns a deep copy of the ledger state. Callers may mutate the
// returned snapshot freely.
func (l *Ledger) State() *entity.Snapshot {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return cloneSnapshot(l.state)
}

func (l *Ledger) GetBalance() entity.Balance {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return l.state.Balance
}

func (l *Ledger) AllRewards() []entity.Reward {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	rewards := make([]entity.Reward, len(l.state.Rewards))
	copy(rewards, l.state.Rewards)
	return rewards
}

// ClaimableRewards returns rewards that are unlocked but not yet claimed.
func (l *Ledger) ClaimableRewards() []entity.Reward {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	var rewards []entity.Reward
	for _, r := range l.state.Rewards {
		if r.Claimable() {
			rewards = append(rewards, r)
		}
	}
	return rewards
}

// Log returns the full transaction log in append order.
func (l *Ledger) Log() []entity.Transaction {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()
	return cloneLog(l.txlog)
}

// Transactions returns log entries newest-first with pagination.
func (l *Ledger) Transactions(limit, offset int) []entity.Transaction {
	l.stateMu.RLock()
	defer l.stateMu.RUnlock()

	transactions := make([]entity.Transaction, 0, len(l.txlog))
	for i := len(l.txlog) - 1; i >= 0; i-- {
		transactions = append(transactions, cloneTransaction(l.txlog[i]))
	}
	if offset >= len(transactions) {
		return []entity.Transaction{}
	}
	transactions = transactions[offset:]
	if limit > 0 && limit < len(transactions) {
		transactions = transactions[:limit]
	}
	return transactions
}

func (l *Ledger) Subscribe(channel string, handler Handler) *Subscription {
	return l.notifier.Subscribe(channel, handler)
}

func (l *Ledger) Unsubscribe(sub *Subscription) {
	l.notifier.Unsubscribe(sub)
}

// ─── Initialize / Reset ─────────────────────────────────────────────────────

// Initialize seeds the starting balance on first call. Subsequent calls are
// no-ops that still succeed.
func (l *Ledger) Initialize() (entity.Balance, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.stateMu.RLock()
	initialized := l.state.Initialized
	balance := l.state.Balance
	l.stateMu.RUnlock()
	if initialized {
		return balance, nil
	}

	l.clock.Sleep(l.confirmDelay)

	tx := l.newTransaction(entity.TxInitialize, startingTokens, "", map[string]string{
		"gas": fmt.Sprintf("%v", startingGas),
	})

	l.stateMu.Lock()
	l.state.Initialized = true
	l.state.Balance = entity.Balance{Tokens: startingTokens, Gas: startingGas}
	l.txlog = append(l.txlog, tx)
	balance = l.state.Balance
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return balance, nil
}

// Reset clears persisted state and restores the default ledger: zero
// balance, default locked reward catalogue, empty transaction log.
func (l *Ledger) Reset() error {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if err := l.repo.Reset(l.accountID); err != nil {
		l.logger.Warn("Failed to clear persisted ledger for account %s: %v", l.accountID, err)
	}

	l.stateMu.Lock()
	l.state = defaultSnapshot(l.accountID)
	l.txlog = nil
	snapCopy := cloneSnapshot(l.state)
	l.stateMu.Unlock()

	l.notifier.Publish(Event{Channel: ChannelStateChanged, AccountID: l.accountID, State: snapCopy})
	l.mirror(Event{Channel: ChannelStateChanged, AccountID: l.accountID, State: snapCopy})
	return nil
}

// ─── Commit plumbing ────────────────────────────────────────────────────────

func (l *Ledger) newTransaction(kind entity.TransactionKind, amount float64, counterpart string, metadata map[string]string) entity.Transaction {
	id := uuid.New().String()
	now := l.clock.Now()
	return entity.Transaction{
		ID:          id,
		Kind:        kind,
		Amount:      amount,
		Status:      entity.TxStatusConfirmed,
		CreatedAt:   now,
		TxHash:      referenceHash(id, now),
		Counterpart: counterpart,
		Metadata:    metadata,
	}
}

// referenceHash produces the mock on-chain reference for a committed
// operation.
func referenceHash(id string, at time.Time) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d", id, at.UnixNano())))
	return "0x" + hex.EncodeToString(sum[:])
}

// cloneLocked snapshots state and log for persistence and events. Caller must
// hold stateMu.
func (l *Ledger) cloneLocked() (*entity.Snapshot, []entity.Transaction) {
	return cloneSnapshot(l.state), cloneLog(l.txlog)
}

// commit persists the new state and publishes events. Persistence and the
// archive/mirror are best-effort: a failure is logged and the in-memory state
// remains authoritative for the session.
func (l *Ledger) commit(snapshot *entity.Snapshot, txlog []entity.Transaction, tx *entity.Transaction, events ...Event) {
	if err := l.repo.SaveSnapshot(l.accountID, snapshot); err != nil {
		l.logger.Warn("Failed to persist ledger snapshot for account %s: %v", l.accountID, err)
	}
	if err := l.repo.SaveLog(l.accountID, txlog); err != nil {
		l.logger.Warn("Failed to persist transaction log for account %s: %v", l.accountID, err)
	}
	if tx != nil && l.archive != nil {
		if err := l.archive.AppendTransaction(l.accountID, tx); err != nil {
			l.logger.Warn("Failed to archive transaction %s: %v", tx.ID, err)
		}
	}
	for _, event := range events {
		l.notifier.Publish(event)
		l.mirror(event)
	}
}

func (l *Ledger) mirror(event Event) {
	if l.queueClient == nil {
		return
	}
	if err := l.queueClient.PublishLedgerEvent(event.Channel, event); err != nil {
		l.logger.Warn("Failed to mirror %s event for account %s: %v", event.Channel, l.accountID, err)
	}
}

func (l *Ledger) balanceEvent(snapshot *entity.Snapshot, tx *entity.Transaction) Event {
	balance := snapshot.Balance
	return Event{
		Channel:     ChannelBalanceUpdated,
		AccountID:   l.accountID,
		Balance:     &balance,
		Transaction: tx,
	}
}

func (l *Ledger) stateEvent(snapshot *entity.Snapshot) Event {
	return Event{
		Channel:   ChannelStateChanged,
		AccountID: l.accountID,
		State:     snapshot,
	}
}

// ─── Copy helpers ───────────────────────────────────────────────────────────

func cloneSnapshot(s *entity.Snapshot) *entity.Snapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Rewards = make([]entity.Reward, len(s.Rewards))
	copy(out.Rewards, s.Rewards)
	out.Stakes = make([]entity.Stake, len(s.Stakes))
	copy(out.Stakes, s.Stakes)
	out.Contributions = make([]entity.Contribution, len(s.Contributions))
	copy(out.Contributions, s.Contributions)
	return &out
}

func cloneLog(txlog []entity.Transaction) []entity.Transaction {
	out := make([]entity.Transaction, len(txlog))
	for i := range txlog {
		out[i] = cloneTransaction(txlog[i])
	}
	return out
}

func cloneTransaction(tx entity.Transaction) entity.Transaction {
	out := tx
	if tx.Metadata != nil {
		out.Metadata = make(map[string]string, len(tx.Metadata))
		for k, v := range tx.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
