package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/agbank/banking-api/internal/config"
	"github.com/agbank/banking-api/internal/db"
	"github.com/agbank/banking-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Logger.NewLogger()

	database, err := db.Connect(context.Background(), &cfg.Database, logger)
	if err != nil {
		t.Skipf("test database unreachable, skipping: %v", err)
	}

	runMigrations(t, database)

	return database
}

func runMigrations(t *testing.T, database *db.DB) {
	t.Helper()

	migrationPath := filepath.Join("..", "..", "internal", "db", "migrations", "000001_init.up.sql")
	sqlBytes, err := os.ReadFile(migrationPath) // #nosec G304
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	_, err = database.ExecContext(context.Background(), string(sqlBytes))
	if err != nil {
		t.Logf("migration execution completed (tables may already exist): %v", err)
	}
}

func cleanupTestDB(t *testing.T, database *db.DB) {
	t.Helper()
	if err := database.Close(); err != nil {
		log.Printf("failed to close test database: %v", err)
	}
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	for _, table := range []string{"idempotency_keys", "accounts"} {
		_, err := database.ExecContext(context.Background(), "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
}

var testAccountSeq int64

// insertTestAccount creates an account row with unique contact details and
// identifiers, so tests can seed fixtures without tripping unique constraints
// even against a database holding rows from earlier runs.
func insertTestAccount(t *testing.T, repo AccountRepository, balance, cardBalance int64) *models.Account {
	t.Helper()

	testAccountSeq++
	uniq := time.Now().UnixNano() + testAccountSeq
	now := time.Now().UTC()
	account := &models.Account{
		ID:            uuid.New(),
		FirstName:     "Test",
		LastName:      fmt.Sprintf("Holder%d", testAccountSeq),
		Email:         fmt.Sprintf("holder-%s@example.com", uuid.NewString()[:13]),
		Phone:         fmt.Sprintf("+%014d", uniq%100000000000000),
		AccountNumber: fmt.Sprintf("%09d", 100000000+uniq%900000000),
		CardNumber:    fmt.Sprintf("%016d", uniq),
		CVV:           "123",
		ExpiryMonth:   "07",
		ExpiryYear:    "2031",
		PasswordHash:  "$2a$10$test-hash",
		Balance:       balance,
		CardBalance:   cardBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	require.NoError(t, repo.Create(context.Background(), account), "failed to seed test account")
	return account
}
