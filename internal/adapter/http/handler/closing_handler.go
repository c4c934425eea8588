package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/flowdash/flowdash/internal/adapter/http/dto"
	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

// ClosingService defines the behavior needed by ClosingHandler.
type ClosingService interface {
	CloseBusinessDay(ctx context.Context, input usecase.CloseBusinessDayInput) (*domain.ClosingRecord, error)
	ApproveCorrection(ctx context.Context, input usecase.ApproveCorrectionInput) (*domain.ClosingRecord, error)
	GetClosingStatus(ctx context.Context, accountID string, date time.Time) (*usecase.ClosingStatus, error)
	ListClosings(ctx context.Context, accountID string, limit, offset int) ([]*domain.ClosingRecord, error)
	VerifyAccount(ctx context.Context, accountID string) (*usecase.AccountVerification, error)
	VerifyAllAccounts(ctx context.Context) ([]*usecase.AccountVerification, error)
}

// ClosingHandler handles daily closing and consistency requests.
type ClosingHandler struct {
	closingUC ClosingService
}

// NewClosingHandler creates a new ClosingHandler.
func NewClosingHandler(closingUC ClosingService) *ClosingHandler {
	return &ClosingHandler{closingUC: closingUC}
}

// Close snapshots an account for a business date. A declared balance outside
// tolerance still persists the record; the response then carries the pending
// snapshot so the operator can request a correction.
func (h *ClosingHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req dto.CloseDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rec, err := h.closingUC.CloseBusinessDay(r.Context(), req.ToUseCaseInput())
	if errors.Is(err, domain.ErrToleranceExceeded) {
		writeJSON(w, http.StatusConflict, dto.PendingReviewResponse{
			Closing: dto.ClosingFromDomain(rec),
			Message: err.Error(),
		})
		return
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close business day", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.ClosingFromDomain(rec))
}

// ApproveCorrection resolves a pending closing with a justified correction.
func (h *ClosingHandler) ApproveCorrection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing closing ID", "")
		return
	}

	var req dto.ApproveCorrectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rec, err := h.closingUC.ApproveCorrection(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to approve correction", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosingFromDomain(rec))
}

// Status reports the reconciliation state of one (account, date) pair.
func (h *ClosingHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	if date.IsZero() {
		date = domain.BusinessDate(time.Now().UTC())
	}

	status, err := h.closingUC.GetClosingStatus(r.Context(), id, date)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get closing status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ClosingStatusFromUseCase(status))
}

// ListByAccount lists an account's closing history, newest first.
func (h *ClosingHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	recs, err := h.closingUC.ListClosings(r.Context(), id, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list closings", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListClosingsResponse{
		Closings: dto.ClosingsFromDomain(recs),
		Total:    int64(len(recs)),
	})
}

// VerifyAccount replays one account's audit log against its stored balance.
func (h *ClosingHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.closingUC.VerifyAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.VerificationFromUseCase(result))
}

// VerifyAll checks every account's consistency.
func (h *ClosingHandler) VerifyAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.closingUC.VerifyAllAccounts(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListVerificationsResponse{
		Results: dto.VerificationsFromUseCase(results),
		Total:   int64(len(results)),
	})
}
