package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kitabu/ledger/internal/adapter/http/dto"
	"github.com/kitabu/ledger/internal/domain"
	"github.com/kitabu/ledger/internal/usecase"
)

type transactionServiceStub struct {
	postFn    func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error)
	reverseFn func(ctx context.Context, transactionID, reason string) (*domain.Transaction, error)
	getFn     func(ctx context.Context, id string) (*domain.Transaction, error)
	listFn    func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error)
}

func (s *transactionServiceStub) PostTransaction(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
	return s.postFn(ctx, input)
}

func (s *transactionServiceStub) ReverseTransaction(ctx context.Context, transactionID, reason string) (*domain.Transaction, error) {
	return s.reverseFn(ctx, transactionID, reason)
}

func (s *transactionServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *transactionServiceStub) ListTransactions(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
	return s.listFn(ctx, input)
}

func postBody(t *testing.T) *bytes.Reader {
	t.Helper()

	body, err := json.Marshal(dto.PostTransactionRequest{
		IdempotencyKey: "key-1",
		Description:    "cash sale",
		Entries: []dto.EntryItem{
			{AccountID: "acc-cash", Currency: "KES", Debit: decimal.NewFromInt(100)},
			{AccountID: "acc-sales", Currency: "KES", Credit: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	return bytes.NewReader(body)
}

func TestTransactionHandler_Post_Success(t *testing.T) {
	var captured usecase.PostTransactionInput
	handler := NewTransactionHandler(&transactionServiceStub{
		postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
			captured = input
			return &domain.Transaction{
				ID:             "txn-1",
				IdempotencyKey: input.IdempotencyKey,
				Status:         domain.TransactionStatusPosted,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", postBody(t))
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.IdempotencyKey != "key-1" || len(captured.Entries) != 2 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if !captured.Entries[0].Debit.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected debit 100, got %s", captured.Entries[0].Debit)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "txn-1" || resp.Status != "POSTED" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestTransactionHandler_Post_InvalidJSON(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
			t.Fatal("PostTransaction should not be called for invalid payload")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()

	handler.Post(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestTransactionHandler_Post_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"unbalanced", domain.ErrUnbalanced, http.StatusBadRequest},
		{"missing key", domain.ErrMissingKey, http.StatusBadRequest},
		{"inactive account", domain.ErrAccountInactive, http.StatusBadRequest},
		{"unknown account", domain.ErrAccountNotFound, http.StatusNotFound},
		{"duplicate key", domain.ErrDuplicateIdempotencyKey, http.StatusConflict},
		{"lock timeout", domain.ErrLockTimeout, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := NewTransactionHandler(&transactionServiceStub{
				postFn: func(ctx context.Context, input usecase.PostTransactionInput) (*domain.Transaction, error) {
					return nil, tt.err
				},
			})

			req := httptest.NewRequest(http.MethodPost, "/transactions", postBody(t))
			rec := httptest.NewRecorder()

			handler.Post(rec, req)

			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestTransactionHandler_Get(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		getFn: func(ctx context.Context, id string) (*domain.Transaction, error) {
			return &domain.Transaction{ID: id}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions/txn-1", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransactionHandler_List_DateRange(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		listFn: func(ctx context.Context, input usecase.ListTransactionsInput) ([]*domain.Transaction, error) {
			if input.From == nil || input.To == nil {
				t.Fatalf("expected date range, got %+v", input)
			}
			if input.Limit != 10 {
				t.Fatalf("expected limit 10, got %d", input.Limit)
			}
			return []*domain.Transaction{{ID: "txn-1"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet,
		"/transactions?from=2025-01-01T00:00:00Z&to=2025-02-01T00:00:00Z&limit=10", nil)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestTransactionHandler_Reverse(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		reverseFn: func(ctx context.Context, transactionID, reason string) (*domain.Transaction, error) {
			if transactionID != "txn-1" || reason != "posted in error" {
				t.Fatalf("unexpected args %s %s", transactionID, reason)
			}
			return &domain.Transaction{ID: "txn-2", ReversalOf: &transactionID}, nil
		},
	})

	body, _ := json.Marshal(dto.ReverseTransactionRequest{Reason: "posted in error"})
	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/reverse", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.Reverse(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestTransactionHandler_Reverse_AlreadyReversed(t *testing.T) {
	handler := NewTransactionHandler(&transactionServiceStub{
		reverseFn: func(ctx context.Context, transactionID, reason string) (*domain.Transaction, error) {
			return nil, domain.ErrAlreadyReversed
		},
	})

	body, _ := json.Marshal(dto.ReverseTransactionRequest{Reason: "duplicate"})
	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/reverse", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	handler.Reverse(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
