package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/agbank/banking-api/internal/repository"
)

// Identifier generation draws from crypto/rand so no mutable generator state
// is shared across requests. Collision checks against the store keep retries
// cheap, but the unique indexes remain the authoritative guard: a concurrent
// creator can still win the same number between check and insert, which the
// onboarding path handles by re-drawing.

// generateAccountNumber returns a 9-digit account number not currently
// present in the store.
func generateAccountNumber(ctx context.Context, repo repository.AccountRepository) (string, error) {
	for {
		n, err := randInt(900000000)
		if err != nil {
			return "", fmt.Errorf("failed to draw account number: %w", err)
		}

		candidate := strconv.FormatInt(100000000+n, 10)
		exists, err := repo.ExistsByAccountNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// generateCardNumber returns a 16-digit card number, leading zeros allowed,
// not currently present in the store.
func generateCardNumber(ctx context.Context, repo repository.AccountRepository) (string, error) {
	for {
		digits := make([]byte, 16)
		for i := range digits {
			d, err := randInt(10)
			if err != nil {
				return "", fmt.Errorf("failed to draw card number: %w", err)
			}
			digits[i] = byte('0' + d)
		}

		candidate := string(digits)
		exists, err := repo.ExistsByCardNumber(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// generateCVV returns a zero-padded 3-digit verification value. CVVs are not
// unique across accounts, so no store check is needed.
func generateCVV() (string, error) {
	n, err := randInt(1000)
	if err != nil {
		return "", fmt.Errorf("failed to draw cvv: %w", err)
	}
	return fmt.Sprintf("%03d", n), nil
}

func randInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
