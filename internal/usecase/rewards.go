package usecase

import (
	"impact-ledger/internal/entity"
)

// UnlockReward transitions a reward from locked to unlocked. Unlocks are
// driven by external progress signals; the ledger only records the
// transition. Idempotent: an already-unlocked (or claimed) reward returns
// false without mutation, event or transaction.
func (l *Ledger) UnlockReward(rewardID string) (bool, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.stateMu.RLock()
	idx := l.findReward(rewardID)
	var status entity.RewardStatus
	if idx >= 0 {
		status = l.state.Rewards[idx].Status
	}
	l.stateMu.RUnlock()

	if idx < 0 {
		return false, entity.ErrRewardNotFound
	}
	if status != entity.RewardStatusLocked {
		return false, nil
	}

	now := l.clock.Now()

	l.stateMu.Lock()
	l.state.Rewards[idx].Status = entity.RewardStatusUnlocked
	l.state.Rewards[idx].UnlockedAt = &now
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, nil, l.stateEvent(snapCopy))
	return true, nil
}

// ClaimReward credits an unlocked reward to the balance, exactly once. The
// simulated confirmation delay mirrors the latency callers build their
// loading states around.
func (l *Ledger) ClaimReward(rewardID string) (*entity.Transaction, error) {
	l.opMu.Lock()
	defer l.opMu.Unlock()

	l.stateMu.RLock()
	idx := l.findReward(rewardID)
	var reward entity.Reward
	if idx >= 0 {
		reward = l.state.Rewards[idx]
	}
	l.stateMu.RUnlock()

	if idx < 0 {
		return nil, entity.ErrRewardNotFound
	}
	switch reward.Status {
	case entity.RewardStatusLocked:
		return nil, entity.ErrRewardNotUnlocked
	case entity.RewardStatusClaimed:
		return nil, entity.ErrRewardClaimed
	}

	l.clock.Sleep(l.confirmDelay)

	tx := l.newTransaction(entity.TxClaimReward, reward.Amount, "", map[string]string{
		"reward_id": reward.ID,
	})
	now := tx.CreatedAt

	l.stateMu.Lock()
	l.state.Rewards[idx].Status = entity.RewardStatusClaimed
	l.state.Rewards[idx].ClaimedAt = &now
	l.state.Balance.Tokens += reward.Amount
	l.state.Totals.Earned += reward.Amount
	l.txlog = append(l.txlog, tx)
	claimed := l.state.Rewards[idx]
	snapCopy, logCopy := l.cloneLocked()
	l.stateMu.Unlock()

	l.commit(snapCopy, logCopy, &tx,
		Event{Channel: ChannelRewardClaimed, AccountID: l.accountID, Reward: &claimed, Transaction: &tx},
		l.balanceEvent(snapCopy, &tx),
		l.stateEvent(snapCopy),
	)
	return &tx, nil
}

// findReward returns the index of the reward or -1. Caller must hold stateMu.
func (l *Ledger) findReward(rewardID string) int {
	for i := range l.state.Rewards {
		if l.state.Rewards[i].ID == rewardID {
			return i
		}
	}
	return -1
}
