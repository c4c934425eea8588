package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flowdash/flowdash/internal/adapter/http/dto"
	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

type ledgerServiceStub struct {
	postEntryFn    func(ctx context.Context, input usecase.PostEntryInput) (*domain.Transaction, error)
	postExitFn     func(ctx context.Context, input usecase.PostExitInput) (*domain.Transaction, error)
	postTransferFn func(ctx context.Context, input usecase.PostTransferInput) (*domain.Transaction, error)
	reverseFn      func(ctx context.Context, transactionID string) (*domain.Transaction, error)
	getFn          func(ctx context.Context, id string) (*domain.Transaction, error)
	listAccountFn  func(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	listDateFn     func(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error)
}

func (s *ledgerServiceStub) PostEntry(ctx context.Context, input usecase.PostEntryInput) (*domain.Transaction, error) {
	return s.postEntryFn(ctx, input)
}

func (s *ledgerServiceStub) PostExit(ctx context.Context, input usecase.PostExitInput) (*domain.Transaction, error) {
	return s.postExitFn(ctx, input)
}

func (s *ledgerServiceStub) PostTransfer(ctx context.Context, input usecase.PostTransferInput) (*domain.Transaction, error) {
	return s.postTransferFn(ctx, input)
}

func (s *ledgerServiceStub) ReverseTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.reverseFn(ctx, transactionID)
}

func (s *ledgerServiceStub) GetTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return s.getFn(ctx, id)
}

func (s *ledgerServiceStub) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error) {
	return s.listAccountFn(ctx, accountID, limit, offset)
}

func (s *ledgerServiceStub) ListTransactionsByBusinessDate(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error) {
	return s.listDateFn(ctx, date, limit, offset)
}

func TestLedgerHandler_PostEntry_Success(t *testing.T) {
	txn := &domain.Transaction{
		ID:        "txn-1",
		Type:      domain.TypeEntry,
		Amount:    decimal.NewFromInt(250),
		NetAmount: decimal.RequireFromString("242.50"),
		Method:    domain.MethodCredit,
		Status:    domain.StatusConfirmed,
	}
	var captured usecase.PostEntryInput

	h := NewLedgerHandler(&ledgerServiceStub{
		postEntryFn: func(ctx context.Context, input usecase.PostEntryInput) (*domain.Transaction, error) {
			captured = input
			return txn, nil
		},
	})

	body, _ := json.Marshal(dto.PostEntryRequest{
		DestinationAccountID: "acc-1",
		Amount:               decimal.NewFromInt(250),
		Method:               "credit",
		CardBrand:            "visa",
		Installments:         3,
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostEntry(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if captured.DestinationAccountID != "acc-1" || captured.Method != domain.MethodCredit || captured.Installments != 3 {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID != "txn-1" || resp.Type != "entry" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLedgerHandler_PostEntry_NoFeeRule(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		postEntryFn: func(ctx context.Context, input usecase.PostEntryInput) (*domain.Transaction, error) {
			return nil, domain.ErrNoMatchingFeeRule
		},
	})

	body, _ := json.Marshal(dto.PostEntryRequest{
		DestinationAccountID: "acc-1",
		Amount:               decimal.NewFromInt(100),
		Method:               "credit",
		CardBrand:            "visa",
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostEntry(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLedgerHandler_PostExit_InsufficientFunds(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		postExitFn: func(ctx context.Context, input usecase.PostExitInput) (*domain.Transaction, error) {
			return nil, domain.ErrInsufficientFunds
		},
	})

	body, _ := json.Marshal(dto.PostExitRequest{
		SourceAccountID: "acc-1",
		Amount:          decimal.NewFromInt(9999),
		Method:          "cash",
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/exits", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostExit(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLedgerHandler_PostTransfer_DayClosed(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		postTransferFn: func(ctx context.Context, input usecase.PostTransferInput) (*domain.Transaction, error) {
			return nil, domain.ErrDayClosed
		},
	})

	body, _ := json.Marshal(dto.PostTransferRequest{
		SourceAccountID:      "acc-1",
		DestinationAccountID: "acc-2",
		Amount:               decimal.NewFromInt(50),
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/transfers", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	h.PostTransfer(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLedgerHandler_Reverse(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		reverseFn: func(ctx context.Context, transactionID string) (*domain.Transaction, error) {
			original := transactionID
			return &domain.Transaction{ID: "rev-1", ReversalOf: &original}, nil
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/reverse", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	h.Reverse(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp dto.TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ReversalOf == nil || *resp.ReversalOf != "txn-1" {
		t.Fatalf("expected reversal_of txn-1, got %+v", resp)
	}
}

func TestLedgerHandler_Reverse_AlreadyReversed(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		reverseFn: func(ctx context.Context, transactionID string) (*domain.Transaction, error) {
			return nil, domain.ErrAlreadyReversed
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/transactions/txn-1/reverse", nil)
	req = setChiURLParam(req, "id", "txn-1")
	rec := httptest.NewRecorder()

	h.Reverse(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLedgerHandler_ListByBusinessDate(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		listDateFn: func(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error) {
			if date.Format(time.DateOnly) != "2026-03-14" {
				t.Fatalf("unexpected date: %v", date)
			}
			return []*domain.Transaction{{ID: "txn-1"}}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions?date=2026-03-14", nil)
	rec := httptest.NewRecorder()

	h.ListByBusinessDate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestLedgerHandler_ListByBusinessDate_MissingDate(t *testing.T) {
	h := NewLedgerHandler(&ledgerServiceStub{
		listDateFn: func(ctx context.Context, date time.Time, limit, offset int) ([]*domain.Transaction, error) {
			t.Fatal("list should not be called without a date")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	rec := httptest.NewRecorder()

	h.ListByBusinessDate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
