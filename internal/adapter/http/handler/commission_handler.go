package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flowdash/flowdash/internal/adapter/http/dto"
	"github.com/flowdash/flowdash/internal/domain"
	"github.com/flowdash/flowdash/internal/usecase"
)

// CommissionService defines the behavior needed by CommissionHandler.
type CommissionService interface {
	ComputeCommission(ctx context.Context, input usecase.ComputeCommissionInput) (*usecase.CommissionReport, error)
	UpsertGoal(ctx context.Context, input usecase.UpsertGoalInput) (*domain.Goal, error)
}

// CommissionHandler handles goal and commission HTTP requests.
type CommissionHandler struct {
	commissionUC CommissionService
}

// NewCommissionHandler creates a new CommissionHandler.
func NewCommissionHandler(commissionUC CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionUC: commissionUC}
}

// Compute evaluates a seller's sales against their goal for the period
// containing the reference instant.
func (h *CommissionHandler) Compute(w http.ResponseWriter, r *http.Request) {
	sellerID := chi.URLParam(r, "sellerID")
	if sellerID == "" {
		writeError(w, http.StatusBadRequest, "missing seller ID", "")
		return
	}

	reference, err := parseDateQuery(r, "reference")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid reference date", err.Error())
		return
	}

	report, err := h.commissionUC.ComputeCommission(r.Context(), usecase.ComputeCommissionInput{
		SellerID:  sellerID,
		Period:    domain.GoalPeriod(r.URL.Query().Get("period")),
		Reference: reference,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute commission", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CommissionReportFromUseCase(report))
}

// UpsertGoal registers or replaces a seller's tiered goal.
func (h *CommissionHandler) UpsertGoal(w http.ResponseWriter, r *http.Request) {
	var req dto.UpsertGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	goal, err := h.commissionUC.UpsertGoal(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to upsert goal", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.GoalFromDomain(goal))
}
