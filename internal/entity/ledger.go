package entity

import "time"

type RewardCategory string

const (
	RewardCategoryMilestone RewardCategory = "milestone"
	RewardCategoryDaily     RewardCategory = "daily"
	RewardCategoryBonus     RewardCategory = "bonus"
)

// RewardStatus is a three-state lifecycle: locked -> unlocked -> claimed.
// Transitions are monotonic; a claimed-but-locked reward is unrepresentable.
type RewardStatus string

const (
	RewardStatusLocked   RewardStatus = "locked"
	RewardStatusUnlocked RewardStatus = "unlocked"
	RewardStatusClaimed  RewardStatus = "claimed"
)

type Reward struct {
	ID          string         `json:"id"`
	Category    RewardCategory `json:"category"`
	Amount      float64        `json:"amount"`
	Description string         `json:"description"`
	Status      RewardStatus   `json:"status"`
	UnlockedAt  *time.Time     `json:"unlocked_at,omitempty"`
	ClaimedAt   *time.Time     `json:"claimed_at,omitempty"`
}

// Claimable reports whether the reward is unlocked but not yet claimed.
func (r *Reward) Claimable() bool {
	return r.Status == RewardStatusUnlocked
}

// Balance holds the spendable token amount and the gas-equivalent amount.
// Neither field is ever negative.
type Balance struct {
	Tokens float64 `json:"tokens"`
	Gas    float64 `json:"gas"`
}

type Stake struct {
	ID         string     `json:"id"`
	Amount     float64    `json:"amount"` // principal
	StakedAt   time.Time  `json:"staked_at"`
	UnstakedAt *time.Time `json:"unstaked_at,omitempty"`
	IsActive   bool       `json:"is_active"`
	Rewards    float64    `json:"rewards"` // 0 until closed, frozen at close
	TxHash     string     `json:"tx_hash"`
}

type Contribution struct {
	ID        string    `json:"id"`
	CauseID   string    `json:"cause_id"`
	Amount    float64   `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	TxHash    string    `json:"tx_hash"`
}

type TransactionKind string

const (
	TxInitialize  TransactionKind = "initialize"
	TxClaimReward TransactionKind = "claim_reward"
	TxContribute  TransactionKind = "contribute"
	TxTransfer    TransactionKind = "transfer"
	TxReceive     TransactionKind = "receive"
	TxStake       TransactionKind = "stake_tokens"
	TxUnstake     TransactionKind = "unstake_tokens"
)

type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusConfirmed TransactionStatus = "confirmed"
	TxStatusFailed    TransactionStatus = "failed"
)

// Transaction is one append-only log entry per committed ledger operation.
// Amount is signed: credits positive, debits negative, so replaying the log
// from zero reproduces the token balance.
type Transaction struct {
	ID          string            `json:"id"`
	Kind        TransactionKind   `json:"kind"`
	Amount      float64           `json:"amount"`
	Status      TransactionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	TxHash      string            `json:"tx_hash"`
	Counterpart string            `json:"counterpart,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Totals struct {
	Earned         float64 `json:"total_earned"`
	Contributed    float64 `json:"total_contributed"`
	Staked         float64 `json:"total_staked"`
	StakingRewards float64 `json:"total_staking_rewards"`
}

// Snapshot is the full persisted ledger state for one account. The
// transaction log is persisted separately.
type Snapshot struct {
	AccountID     string         `json:"account_id"`
	Initialized   bool           `json:"initialized"`
	Balance       Balance        `json:"balance"`
	Rewards       []Reward       `json:"rewards"`
	Stakes        []Stake        `json:"stakes"`
	Contributions []Contribution `json:"contributions"`
	Totals        Totals         `json:"totals"`
}
