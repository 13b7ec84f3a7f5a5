package integration

import (
	"net/http"
	"testing"
	"time"

	adaptershttp "github.com/kitabu/ledger/internal/adapter/http"
	"github.com/kitabu/ledger/internal/adapter/http/handler"
	"github.com/kitabu/ledger/internal/adapter/repository/memory"
	"github.com/kitabu/ledger/internal/adapter/repository/postgres"
	"github.com/kitabu/ledger/internal/lock"
	"github.com/kitabu/ledger/internal/usecase"
	"github.com/kitabu/ledger/tests/testutil"
)

// testServer wires the full stack against a real database, with the
// in-process idempotency cache standing in for redis.
type testServer struct {
	Router        http.Handler
	AccountUC     *usecase.AccountUseCase
	TransactionUC *usecase.TransactionUseCase
	LoanUC        *usecase.LoanUseCase
	ReportingUC   *usecase.ReportingUseCase
}

func newTestServer(t *testing.T, db *testutil.TestDB) *testServer {
	t.Helper()

	pool := db.Pool
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	entryRepo := postgres.NewEntryRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	idGen := postgres.NewULIDGenerator()

	transactionUC := usecase.NewTransactionUseCase(
		postgres.NewTxManager(pool),
		transactionRepo,
		entryRepo,
		accountRepo,
		lock.NewManager(5*time.Second),
		memory.NewIdempotencyCache(1000, time.Hour),
		nil,
		postgres.NewRetrier(),
		idGen,
		nil,
	)
	accountUC := usecase.NewAccountUseCase(accountRepo, entryRepo, idGen, nil)
	loanUC := usecase.NewLoanUseCase(loanRepo, accountRepo, transactionUC, idGen, nil)
	reportingUC := usecase.NewReportingUseCase(accountRepo, entryRepo, loanRepo, nil, nil)

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC),
		LoanHandler:        handler.NewLoanHandler(loanUC),
		ReportingHandler:   handler.NewReportingHandler(reportingUC),
		HealthHandler:      handler.NewHealthHandler(pool, nil),
	})

	return &testServer{
		Router:        router,
		AccountUC:     accountUC,
		TransactionUC: transactionUC,
		LoanUC:        loanUC,
		ReportingUC:   reportingUC,
	}
}
