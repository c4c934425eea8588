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

type closingServiceStub struct {
	closeFn     func(ctx context.Context, input usecase.CloseBusinessDayInput) (*domain.ClosingRecord, error)
	approveFn   func(ctx context.Context, input usecase.ApproveCorrectionInput) (*domain.ClosingRecord, error)
	statusFn    func(ctx context.Context, accountID string, date time.Time) (*usecase.ClosingStatus, error)
	listFn      func(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error)
	verifyFn    func(ctx context.Context, accountID string) (*usecase.AccountVerification, error)
	verifyAllFn func(ctx context.Context) ([]*usecase.AccountVerification, error)
}

func (s *closingServiceStub) CloseBusinessDay(ctx context.Context, input usecase.CloseBusinessDayInput) (*domain.ClosingRecord, error) {
	return s.closeFn(ctx, input)
}

func (s *closingServiceStub) ApproveCorrection(ctx context.Context, input usecase.ApproveCorrectionInput) (*domain.ClosingRecord, error) {
	return s.approveFn(ctx, input)
}

func (s *closingServiceStub) GetClosingStatus(ctx context.Context, accountID string, date time.Time) (*usecase.ClosingStatus, error) {
	return s.statusFn(ctx, accountID, date)
}

func (s *closingServiceStub) ListClosings(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error) {
	return s.listFn(ctx, accountID, limit, offset)
}

func (s *closingServiceStub) VerifyAccount(ctx context.Context, accountID string) (*usecase.AccountVerification, error) {
	return s.verifyFn(ctx, accountID)
}

func (s *closingServiceStub) VerifyAllAccounts(ctx context.Context) ([]*usecase.AccountVerification, error) {
	return s.verifyAllFn(ctx)
}

func TestClosingHandler_Close_Finalized(t *testing.T) {
	rec := &domain.ClosingRecord{
		ID:              "cls-1",
		AccountID:       "acc-1",
		BusinessDate:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		DeclaredBalance: decimal.NewFromInt(500),
		ExpectedBalance: decimal.NewFromInt(500),
		Status:          domain.ClosingFinalized,
	}

	h := NewClosingHandler(&closingServiceStub{
		closeFn: func(ctx context.Context, input usecase.CloseBusinessDayInput) (*domain.ClosingRecord, error) {
			return rec, nil
		},
	})

	body, _ := json.Marshal(dto.CloseDayRequest{
		AccountID:       "acc-1",
		DeclaredBalance: decimal.NewFromInt(500),
	})

	req := httptest.NewRequest(http.MethodPost, "/closings", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Close(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rr.Code)
	}

	var resp dto.ClosingResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "finalized" || resp.BusinessDate != "2026-03-14" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClosingHandler_Close_PendingReview(t *testing.T) {
	rec := &domain.ClosingRecord{
		ID:          "cls-2",
		AccountID:   "acc-1",
		Discrepancy: decimal.NewFromInt(-30),
		Status:      domain.ClosingPendingReview,
	}

	h := NewClosingHandler(&closingServiceStub{
		closeFn: func(ctx context.Context, input usecase.CloseBusinessDayInput) (*domain.ClosingRecord, error) {
			return rec, domain.ErrToleranceExceeded
		},
	})

	body, _ := json.Marshal(dto.CloseDayRequest{
		AccountID:       "acc-1",
		DeclaredBalance: decimal.NewFromInt(470),
	})

	req := httptest.NewRequest(http.MethodPost, "/closings", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Close(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}

	var resp dto.PendingReviewResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Closing == nil || resp.Closing.Status != "pending_review" {
		t.Fatalf("expected pending closing in response, got %+v", resp)
	}
}

func TestClosingHandler_Close_OutOfOrder(t *testing.T) {
	h := NewClosingHandler(&closingServiceStub{
		closeFn: func(ctx context.Context, input usecase.CloseBusinessDayInput) (*domain.ClosingRecord, error) {
			return nil, domain.ErrOutOfOrderClosing
		},
	})

	body, _ := json.Marshal(dto.CloseDayRequest{AccountID: "acc-1"})
	req := httptest.NewRequest(http.MethodPost, "/closings", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.Close(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestClosingHandler_ApproveCorrection(t *testing.T) {
	var captured usecase.ApproveCorrectionInput
	h := NewClosingHandler(&closingServiceStub{
		approveFn: func(ctx context.Context, input usecase.ApproveCorrectionInput) (*domain.ClosingRecord, error) {
			captured = input
			return &domain.ClosingRecord{ID: input.ClosingID, Status: domain.ClosingFinalized}, nil
		},
	})

	body, _ := json.Marshal(dto.ApproveCorrectionRequest{
		CorrectionAmount: decimal.NewFromInt(-30),
		Justification:    "shortfall confirmed by recount",
	})

	req := httptest.NewRequest(http.MethodPost, "/closings/cls-2/correction", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "cls-2")
	rr := httptest.NewRecorder()

	h.ApproveCorrection(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if captured.ClosingID != "cls-2" || captured.Justification == "" {
		t.Fatalf("unexpected input: %+v", captured)
	}
}

func TestClosingHandler_ApproveCorrection_Mismatch(t *testing.T) {
	h := NewClosingHandler(&closingServiceStub{
		approveFn: func(ctx context.Context, input usecase.ApproveCorrectionInput) (*domain.ClosingRecord, error) {
			return nil, domain.ErrCorrectionMismatch
		},
	})

	body, _ := json.Marshal(dto.ApproveCorrectionRequest{
		CorrectionAmount: decimal.NewFromInt(-10),
		Justification:    "partial",
	})

	req := httptest.NewRequest(http.MethodPost, "/closings/cls-2/correction", bytes.NewReader(body))
	req = setChiURLParam(req, "id", "cls-2")
	rr := httptest.NewRecorder()

	h.ApproveCorrection(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestClosingHandler_Status_Open(t *testing.T) {
	h := NewClosingHandler(&closingServiceStub{
		statusFn: func(ctx context.Context, accountID string, date time.Time) (*usecase.ClosingStatus, error) {
			return &usecase.ClosingStatus{
				AccountID:    accountID,
				BusinessDate: date,
				Status:       domain.ClosingOpen,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/closings/status?date=2026-03-14", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rr := httptest.NewRecorder()

	h.Status(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp dto.ClosingStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "open" || resp.Closing != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestClosingHandler_VerifyAccount(t *testing.T) {
	h := NewClosingHandler(&closingServiceStub{
		verifyFn: func(ctx context.Context, accountID string) (*usecase.AccountVerification, error) {
			return &usecase.AccountVerification{
				AccountID:       accountID,
				RecordedBalance: decimal.NewFromInt(100),
				ComputedBalance: decimal.NewFromInt(100),
				Difference:      decimal.Zero,
				Consistent:      true,
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/accounts/acc-1/verification", nil)
	req = setChiURLParam(req, "id", "acc-1")
	rr := httptest.NewRecorder()

	h.VerifyAccount(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp dto.VerificationResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Consistent {
		t.Fatalf("expected consistent account, got %+v", resp)
	}
}
