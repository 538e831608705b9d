package usecase

import (
	"strings"

	"impact-ledger/internal/entity"

	"github.com/google/uuid"
)

// Contribute donates tokens to a cause and records an immutable contribution.
func (l *Ledger) Contribute(causeID string, amount float64) (*entity.Transaction, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if amount <= 0 {
		return nil, entity.ErrInvalidAmount
	}

	l.stateMu.RLock()
	tokens := l.state.Balance.Tokens
	l.stateMu.RUnlock()
	if amount > tokens {
		return nil, entity.ErrInsufficientBalance
	}

	l.clock.Sleep(l.confirmDelay)

	tx := l.newTransaction(entity.TxContribute, -amount, "", map[string]string{
		"cause_id": causeID,
	})
	contribution := entity.Contribution{
		ID:        uuid.New().String(),
		CauseID:   causeID,
		Amount:    amount,
		CreatedAt: tx.CreatedAt,
		TxHash:    tx.TxHash,
	}

	l.stateMu.Lock()
	l.state.Balance.Tokens -= amount
	l.state.Totals.Contributed += amount
	l.state.Contributions = append(l.state.Contributions, contribution)
	l.txlog = append(l.txlog, tx)
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		Event{Channel: ChannelContributionMade, AccountID: l.accountID, Contribution: &contribution, Transaction: &tx},
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return &tx, nil
}

// TransferTokens sends tokens to an external address.
func (l *Ledger) TransferTokens(toAddress string, amount float64, note string) (*entity.Transaction, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if amount <= 0 {
		return nil, entity.ErrInvalidAmount
	}
	if len(strings.TrimSpace(toAddress)) < minAddressLength {
		return nil, entity.ErrInvalidAddress
	}

	l.stateMu.RLock()
	tokens := l.state.Balance.Tokens
	l.stateMu.RUnlock()
	if amount > tokens {
		return nil, entity.ErrInsufficientBalance
	}

	l.clock.Sleep(l.confirmDelay)

	var metadata map[string]string
	if note != "" {
		metadata = map[string]string{"note": note}
	}
	tx := l.newTransaction(entity.TxTransfer, -amount, toAddress, metadata)

	l.stateMu.Lock()
	l.state.Balance.Tokens -= amount
	l.txlog = append(l.txlog, tx)
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return &tx, nil
}

// RecordReceive reflects an inbound transfer. It credits the balance
// unconditionally for any non-negative amount; there is nothing to validate
// against because the tokens already moved on the sender's side.
func (l *Ledger) RecordReceive(fromAddress string, amount float64, note string) (*entity.Transaction, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	if amount < 0 {
		return nil, entity.ErrInvalidAmount
	}

	var metadata map[string]string
	if note != "" {
		metadata = map[string]string{"note": note}
	}
	tx := l.newTransaction(entity.TxReceive, amount, fromAddress, metadata)

	l.stateMu.Lock()
	l.state.Balance.Tokens += amount
	l.state.Totals.Earned += amount
	l.txlog = append(l.txlog, tx)
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return &tx, nil
}
