//nolint:errcheck // unchecked errors are acceptable in test files
package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestOnboarding_GeneratedIdentifiers(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	holder := ts.RegisterHolder(t, "ada")

	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{8}$`), holder.AccountNumber)
	assert.Regexp(t, regexp.MustCompile(`^\d{16}$`), holder.CardNumber)
	assert.Regexp(t, regexp.MustCompile(`^\d{3}$`), holder.CVV)

	state := ts.GetAccount(t, holder)
	assert.Equal(t, float64(500), state["balance"])
	assert.Equal(t, float64(0), state["card_balance"])
	assert.NotContains(t, state, "password_hash")
}

func TestOnboarding_DuplicateEmail(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	holder := ts.RegisterHolder(t, "ada")

	resp := ts.postJSON(t, "/api/v1/accounts", "", map[string]string{
		"first_name": "Imposter",
		"last_name":  "Holder",
		"email":      holder.Email,
		"phone":      "+447000000001",
		"password":   "open-sesame-2",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email_in_use", decodeBody(t, resp)["error"])
}

func TestFullFlow_WithdrawDepositTransfer(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")
	grace := ts.RegisterHolder(t, "grace")

	// Start: 500 cash, 0 on card.
	withdrawResp := ts.Withdraw(t, ada, 200, "flow-withdraw-1")
	require.Equal(t, http.StatusOK, withdrawResp.StatusCode)
	withdrawn := decodeBody(t, withdrawResp)
	assert.Equal(t, float64(300), withdrawn["balance"])
	assert.Equal(t, float64(200), withdrawn["card_balance"])

	depositResp := ts.Deposit(t, ada, 100, "flow-deposit-1")
	require.Equal(t, http.StatusOK, depositResp.StatusCode)
	deposited := decodeBody(t, depositResp)
	assert.Equal(t, float64(400), deposited["balance"])
	assert.Equal(t, float64(100), deposited["card_balance"])

	transferResp := ts.Transfer(t, ada, grace.AccountNumber, 150, "flow-transfer-1")
	require.Equal(t, http.StatusOK, transferResp.StatusCode)
	transferred := decodeBody(t, transferResp)
	assert.Equal(t, "money sent successfully", transferred["message"])
	assert.Equal(t, float64(150), transferred["amount"])
	assert.Equal(t, grace.AccountNumber, transferred["recipient_account_number"])

	adaState := ts.GetAccount(t, ada)
	assert.Equal(t, float64(250), adaState["balance"])
	assert.Equal(t, float64(100), adaState["card_balance"])

	graceState := ts.GetAccount(t, grace)
	assert.Equal(t, float64(650), graceState["balance"])
}

func TestWithdraw_WrongCardNumber(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	resp := ts.doJSON(t, http.MethodPost, "/api/v1/accounts/"+ada.ID+"/withdraw", ada.Token, "", map[string]any{
		"card_number": "0000000000000000",
		"amount":      100,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "card_mismatch", decodeBody(t, resp)["error"])

	state := ts.GetAccount(t, ada)
	assert.Equal(t, float64(500), state["balance"], "rejected withdrawal must not move money")
}

func TestWithdraw_InsufficientBalance(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	resp := ts.Withdraw(t, ada, 10000, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "insufficient_balance", decodeBody(t, resp)["error"])
}

func TestDeposit_CardDetailMismatch(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	withdrawResp := ts.Withdraw(t, ada, 200, "")
	require.Equal(t, http.StatusOK, withdrawResp.StatusCode)
	withdrawResp.Body.Close()

	resp := ts.doJSON(t, http.MethodPost, "/api/v1/accounts/"+ada.ID+"/deposit", ada.Token, "", map[string]any{
		"card_number":  ada.CardNumber,
		"expiry_month": ada.ExpiryMonth,
		"expiry_year":  ada.ExpiryYear,
		"cvv":          "000",
		"amount":       100,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_card_info", decodeBody(t, resp)["error"])
}

func TestTransfer_SelfTransferRejected(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	resp := ts.Transfer(t, ada, ada.AccountNumber, 50, "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "self_transfer", decodeBody(t, resp)["error"])
}

func TestTransfer_UnknownRecipient(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	resp := ts.Transfer(t, ada, "999999998", 50, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "recipient_not_found", decodeBody(t, resp)["error"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	resp := ts.doJSON(t, http.MethodGet, "/api/v1/accounts/"+ada.ID, "", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = ts.doJSON(t, http.MethodPost, "/api/v1/accounts/"+ada.ID+"/withdraw", "garbage-token", "", map[string]any{
		"card_number": ada.CardNumber,
		"amount":      100,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	resp := ts.postJSON(t, "/api/v1/login", "", map[string]string{
		"email":    ada.Email,
		"password": "not-the-password",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid_credentials", decodeBody(t, resp)["error"])
}

func TestWithdraw_IdempotentReplay(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	first := ts.Withdraw(t, ada, 200, "replay-key-1")
	require.Equal(t, http.StatusOK, first.StatusCode)
	firstBody := decodeBody(t, first)
	assert.Equal(t, float64(300), firstBody["balance"])

	second := ts.Withdraw(t, ada, 200, "replay-key-1")
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "true", second.Header.Get("X-Idempotent-Replayed"))
	secondBody := decodeBody(t, second)
	assert.Equal(t, float64(300), secondBody["balance"], "replay must return the cached response")

	state := ts.GetAccount(t, ada)
	assert.Equal(t, float64(300), state["balance"], "replay must not withdraw twice")
}

func TestIdempotentReplayRequiresToken(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")

	first := ts.Withdraw(t, ada, 200, "stolen-key-1")
	require.Equal(t, http.StatusOK, first.StatusCode)
	first.Body.Close()

	// Same key and path but no bearer token: the cached response holds card
	// details and must stay behind the auth gate.
	resp := ts.doJSON(t, http.MethodPost, "/api/v1/accounts/"+ada.ID+"/withdraw", "", "stolen-key-1", map[string]any{
		"card_number": ada.CardNumber,
		"amount":      200,
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("X-Idempotent-Replayed"))
	body := decodeBody(t, resp)
	assert.Equal(t, "unauthorized", body["error"])
	assert.NotContains(t, body, "card_number")
}

func TestTransfer_ConcurrentConservation(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")
	grace := ts.RegisterHolder(t, "grace")

	// 20 transfers of 50 against a balance of 500: exactly 10 can succeed.
	const attempts = 20
	const amount = 50

	var g errgroup.Group
	results := make([]int, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			resp := ts.Transfer(t, ada, grace.AccountNumber, amount, "")
			results[i] = resp.StatusCode
			resp.Body.Close()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, code := range results {
		switch code {
		case http.StatusOK:
			succeeded++
		case http.StatusBadRequest:
			// Insufficient balance once the 500 is exhausted.
		default:
			t.Fatalf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 10, succeeded, "exactly balance/amount transfers may succeed")

	adaState := ts.GetAccount(t, ada)
	graceState := ts.GetAccount(t, grace)
	assert.Equal(t, float64(0), adaState["balance"])
	assert.Equal(t, float64(1000), graceState["balance"], "money must be conserved across concurrent transfers")
}

func TestBidirectionalTransfersDoNotDeadlock(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")
	grace := ts.RegisterHolder(t, "grace")

	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			resp := ts.Transfer(t, ada, grace.AccountNumber, 10, "")
			resp.Body.Close()
			return nil
		})
		g.Go(func() error {
			resp := ts.Transfer(t, grace, ada.AccountNumber, 10, "")
			resp.Body.Close()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	adaState := ts.GetAccount(t, ada)
	graceState := ts.GetAccount(t, grace)
	total := adaState["balance"].(float64) + graceState["balance"].(float64)
	assert.Equal(t, float64(1000), total, "opposing transfers must conserve the combined balance")
}

func TestOnboarding_ConcurrentCreationsGetUniqueIdentifiers(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	const holders = 8

	var g errgroup.Group
	accountNumbers := make([]string, holders)
	cardNumbers := make([]string, holders)
	for i := 0; i < holders; i++ {
		i := i
		g.Go(func() error {
			h := ts.RegisterHolder(t, "holder")
			accountNumbers[i] = h.AccountNumber
			cardNumbers[i] = h.CardNumber
			return nil
		})
	}
	require.NoError(t, g.Wait())

	seenAccounts := make(map[string]bool, holders)
	seenCards := make(map[string]bool, holders)
	for i := 0; i < holders; i++ {
		assert.False(t, seenAccounts[accountNumbers[i]], "account number %s issued twice", accountNumbers[i])
		assert.False(t, seenCards[cardNumbers[i]], "card number %s issued twice", cardNumbers[i])
		seenAccounts[accountNumbers[i]] = true
		seenCards[cardNumbers[i]] = true
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL("/health"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", decodeBody(t, resp)["status"])
}

func TestDeleteAccount(t *testing.T) {
	ts := SetupTest(t)
	defer ts.Close()

	ada := ts.RegisterHolder(t, "ada")
	grace := ts.RegisterHolder(t, "grace")

	resp := ts.doJSON(t, http.MethodDelete, "/api/v1/accounts/"+grace.ID, ada.Token, "", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.doJSON(t, http.MethodGet, "/api/v1/accounts/"+grace.ID, ada.Token, "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
