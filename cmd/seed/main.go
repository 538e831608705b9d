package main

import (
	"flag"
	"fmt"
	"time"

	"impact-ledger/internal/repo/persistent"
	"impact-ledger/internal/usecase"
	"impact-ledger/pkg/cache"
	"impact-ledger/pkg/config"
	"impact-ledger/pkg/logger"
)

// Seeds a demo account with an initialized balance, a claimed reward, an
// active stake and a contribution so the API has data to show out of the box.
func main() {
	var accountID string
	flag.StringVar(&accountID, "account", "demo-account-001", "Account ID to seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	log := logger.New()
	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("Failed to connect to redis: %v", err)
		panic(err)
	}
	defer redisClient.Close()

	repo := persistent.NewLedgerRepository(redisClient, log)
	uc := usecase.NewLedgerUseCase(repo, nil, nil, nil, usecase.NewSystemClock(), log, 50*time.Millisecond)

	if err := seedAccount(uc, accountID); err != nil {
		log.Error("Failed to seed account %s: %v", accountID, err)
		panic(err)
	}

	log.Info("Account %s seeded successfully!", accountID)
}

func seedAccount(uc usecase.LedgerUseCase, accountID string) error {
	if _, err := uc.Initialize(accountID); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if _, err := uc.UnlockReward(accountID, "welcome_bonus"); err != nil {
		return fmt.Errorf("unlock welcome_bonus: %w", err)
	}
	if _, err := uc.ClaimReward(accountID, "welcome_bonus"); err != nil {
		return fmt.Errorf("claim welcome_bonus: %w", err)
	}

	if _, err := uc.UnlockReward(accountID, "day_1_milestone"); err != nil {
		return fmt.Errorf("unlock day_1_milestone: %w", err)
	}

	if _, err := uc.StakeTokens(accountID, 50); err != nil {
		return fmt.Errorf("stake: %w", err)
	}

	if _, err := uc.Contribute(accountID, "clean-water-initiative", 10); err != nil {
		return fmt.Errorf("contribute: %w", err)
	}

	return nil
}
