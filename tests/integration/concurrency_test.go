package integration

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentDebits_ExactlyOneFails is the canonical double-spend case:
// a wallet holding 100 receives two concurrent debits of 60. The store
// serialises them, the second re-reads the committed balance of 40, and
// exactly one request fails with insufficient balance.
func TestConcurrentDebits_ExactlyOneFails(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createWallet(t, "contended")
	status, _ := app.createTransaction(t, id, "100")
	require.Equal(t, http.StatusCreated, status)

	var wg sync.WaitGroup
	var successCount, insufficientCount atomic.Int64

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, env := app.createTransaction(t, id, "-60")
			switch {
			case status == http.StatusCreated:
				successCount.Add(1)
			case env.ErrorCode == "WLT_003":
				insufficientCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), successCount.Load(), "exactly one debit commits")
	assert.Equal(t, int64(1), insufficientCount.Load(), "the other is rejected")

	_, env := app.do(t, http.MethodGet, "/api/v1/wallets/"+id, "")
	assert.Equal(t, "40", env.Data["balance"])
}

// TestConcurrentDebits_NeverNegative overdraws deliberately: 20 concurrent
// debits of 100 against a balance of 1000. Exactly 10 commit and the final
// balance is 0.
func TestConcurrentDebits_NeverNegative(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createWallet(t, "overspend")
	status, _ := app.createTransaction(t, id, "1000")
	require.Equal(t, http.StatusCreated, status)

	concurrency := 20
	var wg sync.WaitGroup
	var successCount, failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := app.createTransaction(t, id, "-100")
			if status == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}
	wg.Wait()

	t.Logf("concurrent debits: %d committed, %d rejected", successCount.Load(), failCount.Load())

	assert.Equal(t, int64(10), successCount.Load())
	assert.Equal(t, int64(10), failCount.Load())

	_, env := app.do(t, http.MethodGet, "/api/v1/wallets/"+id, "")
	balance, err := decimal.NewFromString(env.Data["balance"].(string))
	require.NoError(t, err)
	assert.True(t, balance.IsZero(), "final balance should be 0, got %s", balance)
	assert.False(t, balance.IsNegative(), "balance must never go negative")
}

// TestConcurrentCredits_UniqueTxids fires 50 concurrent credits and checks
// every committed transaction got a distinct txid.
func TestConcurrentCredits_UniqueTxids(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createWallet(t, "busy")

	concurrency := 50
	txids := make([]string, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			status, env := app.createTransaction(t, id, "10")
			if status == http.StatusCreated {
				txn := env.Data["transaction"].(map[string]interface{})
				txids[idx] = txn["txid"].(string)
			}
		}(i)
	}
	wg.Wait()

	unique := make(map[string]struct{})
	for _, txid := range txids {
		require.NotEmpty(t, txid, "every credit should commit")
		unique[txid] = struct{}{}
	}
	assert.Len(t, unique, concurrency, "txids must be distinct")

	_, env := app.do(t, http.MethodGet, "/api/v1/wallets/"+id, "")
	assert.Equal(t, "500", env.Data["balance"])
}

// TestConcurrentDeactivateAndDebit races a deactivation against a stream of
// debits. Whatever interleaving occurs, the deactivated wallet ends with a
// zero balance and every transaction inactive.
func TestConcurrentDeactivateAndDebit(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	id := app.createWallet(t, "closing")
	status, _ := app.createTransaction(t, id, "500")
	require.Equal(t, http.StatusCreated, status)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.createTransaction(t, id, "-50")
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.do(t, http.MethodDelete, "/api/v1/wallets/"+id, "")
	}()
	wg.Wait()

	_, env := app.do(t, http.MethodGet, "/api/v1/wallets/"+id, "")
	require.Equal(t, false, env.Data["is_active"])
	assert.Equal(t, "0", env.Data["balance"])

	// All surviving transactions were deactivated with the wallet
	resp, err := http.Get(app.server.URL + "/api/v1/transactions?wallet_id=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()

	var listResp struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listResp))
	for _, txn := range listResp.Data {
		assert.Equal(t, false, txn["is_active"], "txid %v still active", txn["txid"])
	}
}
