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

// FeeService defines the behavior needed by FeeHandler.
type FeeService interface {
	Resolve(ctx context.Context, method domain.PaymentMethod, cardBrand string, installments int) (*domain.ResolvedFee, error)
	RegisterFeeRule(ctx context.Context, input usecase.RegisterFeeRuleInput) (*domain.FeeRule, error)
	ListFeeRules(ctx context.Context, limit, offset int) ([]*domain.FeeRule, error)
	DeleteFeeRule(ctx context.Context, id string) error
}

// FeeHandler handles fee schedule HTTP requests.
type FeeHandler struct {
	feeUC FeeService
}

// NewFeeHandler creates a new FeeHandler.
func NewFeeHandler(feeUC FeeService) *FeeHandler {
	return &FeeHandler{feeUC: feeUC}
}

// Register adds a rule to the fee schedule.
func (h *FeeHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterFeeRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rule, err := h.feeUC.RegisterFeeRule(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register fee rule", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.FeeRuleFromDomain(rule))
}

// List lists the registered fee schedule.
func (h *FeeHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	rules, err := h.feeUC.ListFeeRules(r.Context(), limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list fee rules", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListFeeRulesResponse{
		FeeRules: dto.FeeRulesFromDomain(rules),
		Total:    int64(len(rules)),
	})
}

// Delete removes a fee rule.
func (h *FeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing fee rule ID", "")
		return
	}

	if err := h.feeUC.DeleteFeeRule(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to delete fee rule", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Resolve probes the fee a posting would carry, without posting anything.
func (h *FeeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	method := domain.PaymentMethod(r.URL.Query().Get("method"))
	cardBrand := r.URL.Query().Get("card_brand")
	installments := parseIntQuery(r, "installments", 1)

	fee, err := h.feeUC.Resolve(r.Context(), method, cardBrand, installments)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve fee", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResolvedFeeFromDomain(fee))
}
