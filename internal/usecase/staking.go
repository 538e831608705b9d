package usecase

import (
	"fmt"

	"impact-ledger/internal/entity"

	"github.com/google/uuid"
)

// StakeTokens moves tokens from the balance into a new active stake
// position.
func (l *Ledger) StakeTokens(amount float64) (*entity.Transaction, error) {
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

	stake := entity.Stake{
		ID:       uuid.New().String(),
		Amount:   amount,
		StakedAt: l.clock.Now(),
		IsActive: true,
	}
	tx := l.newTransaction(entity.TxStake, -amount, "", map[string]string{
		"stake_id": stake.ID,
	})
	stake.TxHash = tx.TxHash

	l.stateMu.Lock()
	l.state.Balance.Tokens -= amount
	l.state.Totals.Staked += amount
	l.state.Stakes = append(l.state.Stakes, stake)
	l.txlog = append(l.txlog, tx)
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return &tx, nil
}

// UnstakeTokens closes an active stake, computes the time-prorated reward
// once, and returns principal plus reward to the balance. Closed stakes are
// not found again; unstake is one-shot.
func (l *Ledger) UnstakeTokens(stakeID string) (*entity.Transaction, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.stateMu.RLock()
	idx := -1
	for i := range l.state.Stakes {
		if l.state.Stakes[i].ID == stakeID && l.state.Stakes[i].IsActive {
			idx = i
			break
		}
	}
	var stake entity.Stake
	if idx >= 0 {
		stake = l.state.Stakes[idx]
	}
	l.stateMu.RUnlock()

	if idx < 0 {
		return nil, entity.ErrStakeNotFound
	}

	l.clock.Sleep(l.confirmDelay)

	now := l.clock.Now()
	// Linear 5% APY prorated by elapsed wall-clock time, computed once at
	// close.
	elapsedDays := now.Sub(stake.StakedAt).Hours() / 24
	accrued := stake.Amount * stakingAnnualRate * elapsedDays / 365
	returned := stake.Amount + accrued

	tx := l.newTransaction(entity.TxUnstake, returned, "", map[string]string{
		"stake_id": stake.ID,
		"rewards":  fmt.Sprintf("%v", accrued),
	})

	l.stateMu.Lock()
	l.state.Stakes[idx].IsActive = false
	l.state.Stakes[idx].UnstakedAt = &now
	l.state.Stakes[idx].Rewards = accrued
	l.state.Balance.Tokens += returned
	l.state.Totals.Staked -= stake.Amount
	l.state.Totals.StakingRewards += accrued
	l.state.Totals.Earned += accrued
	l.txlog = append(l.txlog, tx)
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return &tx, nil
}
