package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
	"github.com/kitabu/ledger/tests/testutil"
)

func TestConcurrentPosting(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()
	testDB.TruncateAll(ctx)

	srv := newTestServer(t, testDB)

	cash := testDB.CreateTestAccount(ctx, "1000", "Cash", "KES", domain.AccountTypeAsset)
	fees := testDB.CreateTestAccount(ctx, "4100", "Fee income", "KES", domain.AccountTypeIncome)

	t.Run("distinct keys against a shared account", func(t *testing.T) {
		const workers = 20

		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				_, err := srv.TransactionUC.PostTransaction(ctx, usecase.PostTransactionInput{
					IdempotencyKey: fmt.Sprintf("fee-%03d", i),
					Description:    "processing fee",
					Entries: []usecase.EntryInput{
						{AccountID: cash.ID, Currency: "KES", Debit: decimal.NewFromInt(10)},
						{AccountID: fees.ID, Currency: "KES", Credit: decimal.NewFromInt(10)},
					},
				})
				if err != nil {
					errs <- err
				}
			}(i)
		}

		wg.Wait()
		close(errs)

		for err := range errs {
			t.Fatalf("unexpected posting error: %v", err)
		}

		balance, err := srv.TransactionUC.GetAccountBalance(ctx, cash.ID, nil)
		if err != nil {
			t.Fatalf("failed to get balance: %v", err)
		}
		if !balance.Equal(decimal.NewFromInt(200)) {
			t.Fatalf("expected balance 200, got %s", balance)
		}
	})

	t.Run("same key posts exactly once", func(t *testing.T) {
		const workers = 10

		input := usecase.PostTransactionInput{
			IdempotencyKey: "once-only",
			Description:    "duplicate submission",
			Entries: []usecase.EntryInput{
				{AccountID: cash.ID, Currency: "KES", Debit: decimal.NewFromInt(500)},
				{AccountID: fees.ID, Currency: "KES", Credit: decimal.NewFromInt(500)},
			},
		}

		ids := make(chan string, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()

				txn, err := srv.TransactionUC.PostTransaction(ctx, input)
				if err != nil {
					t.Errorf("unexpected posting error: %v", err)
					return
				}
				ids <- txn.ID
			}()
		}

		wg.Wait()
		close(ids)

		seen := make(map[string]bool)
		for id := range ids {
			seen[id] = true
		}
		if len(seen) != 1 {
			t.Fatalf("expected all submissions to converge on one transaction, got %d", len(seen))
		}

		balance, err := srv.TransactionUC.GetAccountBalance(ctx, cash.ID, nil)
		if err != nil {
			t.Fatalf("failed to get balance: %v", err)
		}
		if !balance.Equal(decimal.NewFromInt(700)) {
			t.Fatalf("expected balance 700, got %s", balance)
		}
	})
}
