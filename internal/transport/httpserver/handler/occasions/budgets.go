package occasions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	budgetdomain "giftboard/internal/domain/budget"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type upsertEntityBudgetRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type entityBudgetResponse struct {
	ID         string          `json:"id"`
	OccasionID string          `json:"occasion_id"`
	EntityKind string          `json:"entity_kind"`
	EntityID   string          `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type entityBudgetListResponse struct {
	Items []entityBudgetResponse `json:"items"`
}

type entitySummaryResponse struct {
	EntityKind string                `json:"entity_kind"`
	EntityID   string                `json:"entity_id"`
	Summary    budgetSummaryResponse `json:"summary"`
}

type occasionBudgetResponse struct {
	OccasionID string                  `json:"occasion_id"`
	Summary    budgetSummaryResponse   `json:"summary"`
	Entities   []entitySummaryResponse `json:"entities"`
}

func toEntityBudgetResponse(row budgetdomain.EntityBudget) entityBudgetResponse {
	return entityBudgetResponse{
		ID:         row.ID,
		OccasionID: row.OccasionID,
		EntityKind: string(row.EntityKind),
		EntityID:   row.EntityID,
		Amount:     row.Amount,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

func (h *Handlers) GetOccasionBudget(w http.ResponseWriter, r *http.Request) {
	occasionID := strings.TrimSpace(chi.URLParam(r, "id"))
	if occasionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("occasions.budget: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.budget: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	summary, err := h.Budget.OccasionSummary(r.Context(), group.ID, occasionID)
	if err != nil {
		if errors.Is(err, budgetdomain.ErrOccasionNotFound) {
			h.log.BusinessError("occasions.budget: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
			return
		}
		h.log.InternalError("occasions.budget: occasion summary failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	entities := make([]entitySummaryResponse, 0, len(summary.Entities))
	for _, entity := range summary.Entities {
		entities = append(entities, entitySummaryResponse{
			EntityKind: string(entity.Ref.Kind),
			EntityID:   entity.Ref.ID,
			Summary:    toBudgetSummaryResponse(entity.Summary),
		})
	}

	writeJSON(w, http.StatusOK, occasionBudgetResponse{
		OccasionID: summary.OccasionID,
		Summary:    toBudgetSummaryResponse(summary.Summary),
		Entities:   entities,
	})
}

func (h *Handlers) ListEntityBudgets(w http.ResponseWriter, r *http.Request) {
	occasionID := strings.TrimSpace(chi.URLParam(r, "id"))
	if occasionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("occasions.entity_budgets: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.entity_budgets: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	budgets, err := h.Budget.ListEntityBudgets(r.Context(), group.ID, occasionID)
	if err != nil {
		if errors.Is(err, budgetdomain.ErrOccasionNotFound) {
			h.log.BusinessError("occasions.entity_budgets: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
			return
		}
		h.log.InternalError("occasions.entity_budgets: list failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]entityBudgetResponse, 0, len(budgets))
	for _, row := range budgets {
		response = append(response, toEntityBudgetResponse(row))
	}

	writeJSON(w, http.StatusOK, entityBudgetListResponse{Items: response})
}

func (h *Handlers) UpsertEntityBudget(w http.ResponseWriter, r *http.Request) {
	occasionID := strings.TrimSpace(chi.URLParam(r, "id"))
	entityKind := strings.TrimSpace(chi.URLParam(r, "entity_kind"))
	entityID := strings.TrimSpace(chi.URLParam(r, "entity_id"))
	if occasionID == "" || entityKind == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "occasion, entity kind and entity id are required")
		return
	}

	var req upsertEntityBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Amount == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "amount is required")
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "amount cannot be negative")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("occasions.upsert_budget: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.upsert_budget: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	ref := budgetdomain.EntityRef{Kind: budgetdomain.EntityKind(entityKind), ID: entityID}
	stored, err := h.Budget.UpsertEntityBudget(r.Context(), group.ID, user.ID, occasionID, ref, *req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, budgetdomain.ErrOccasionNotFound):
			h.log.BusinessError("occasions.upsert_budget: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
		case errors.Is(err, budgetdomain.ErrInvalidEntityKind):
			h.log.BusinessError("occasions.upsert_budget: invalid entity kind", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID, "entity_kind", entityKind)
			writeError(w, http.StatusBadRequest, "invalid_request", "entity_kind must be gift or list")
		case errors.Is(err, budgetdomain.ErrNegativeAmount):
			h.log.BusinessError("occasions.upsert_budget: negative amount", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusBadRequest, "invalid_request", "amount cannot be negative")
		default:
			h.log.InternalError("occasions.upsert_budget: upsert failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "budget.set",
		EntityKind: entityKind,
		EntityID:   entityID,
		Detail:     map[string]string{"occasion_id": occasionID, "amount": stored.Amount.String()},
	})

	writeJSON(w, http.StatusOK, toEntityBudgetResponse(*stored))
}

func (h *Handlers) DeleteEntityBudget(w http.ResponseWriter, r *http.Request) {
	occasionID := strings.TrimSpace(chi.URLParam(r, "id"))
	entityKind := strings.TrimSpace(chi.URLParam(r, "entity_kind"))
	entityID := strings.TrimSpace(chi.URLParam(r, "entity_id"))
	if occasionID == "" || entityKind == "" || entityID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "occasion, entity kind and entity id are required")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("occasions.delete_budget: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.delete_budget: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	ref := budgetdomain.EntityRef{Kind: budgetdomain.EntityKind(entityKind), ID: entityID}
	if err := h.Budget.DeleteEntityBudget(r.Context(), group.ID, user.ID, occasionID, ref); err != nil {
		switch {
		case errors.Is(err, budgetdomain.ErrOccasionNotFound):
			h.log.BusinessError("occasions.delete_budget: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
		case errors.Is(err, budgetdomain.ErrInvalidEntityKind):
			h.log.BusinessError("occasions.delete_budget: invalid entity kind", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID, "entity_kind", entityKind)
			writeError(w, http.StatusBadRequest, "invalid_request", "entity_kind must be gift or list")
		case errors.Is(err, budgetdomain.ErrBudgetNotFound):
			h.log.BusinessError("occasions.delete_budget: budget not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID, "entity_id", entityID)
			writeError(w, http.StatusNotFound, "budget_not_found", "entity budget not found")
		default:
			h.log.InternalError("occasions.delete_budget: delete failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "budget.removed",
		EntityKind: entityKind,
		EntityID:   entityID,
		Detail:     map[string]string{"occasion_id": occasionID},
	})

	w.WriteHeader(http.StatusNoContent)
}
