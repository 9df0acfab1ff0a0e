package occasions

import (
	"errors"
	"net/http"
	"strings"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	groupsdomain "giftboard/internal/domain/groups"
	occasionsdomain "giftboard/internal/domain/occasions"
	commonhandler "giftboard/internal/transport/httpserver/handler/common"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createOccasionRequest struct {
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	Date        string           `json:"date"`
	BudgetTotal *decimal.Decimal `json:"budget_total"`
}

type updateOccasionRequest struct {
	Name        *string                 `json:"name"`
	Kind        *string                 `json:"kind"`
	Date        *string                 `json:"date"`
	BudgetTotal optionalNullableDecimal `json:"budget_total"`
}

type occasionResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Kind        string           `json:"kind"`
	Date        string           `json:"date"`
	BudgetTotal *decimal.Decimal `json:"budget_total"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type occasionListResponse struct {
	Items []occasionResponse `json:"items"`
	Total int64              `json:"total"`
}

func toOccasionResponse(occasion occasionsdomain.Occasion) occasionResponse {
	return occasionResponse{
		ID:          occasion.ID,
		Name:        occasion.Name,
		Kind:        occasion.Kind,
		Date:        occasion.Date.Format("2006-01-02"),
		BudgetTotal: occasion.BudgetTotal,
		CreatedAt:   occasion.CreatedAt,
		UpdatedAt:   occasion.UpdatedAt,
	}
}

func (h *Handlers) ListOccasions(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("occasions.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	query := r.URL.Query()
	from, err := commonhandler.ParseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid from date")
		return
	}
	to, err := commonhandler.ParseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid to date")
		return
	}
	limit, err := parseIntParam(query.Get("limit"), 100)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	occasions, total, err := h.Occasions.ListOccasions(r.Context(), group.ID, occasionsdomain.OccasionFilter{
		From:   from,
		To:     to,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.InternalError("occasions.list: list occasions failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]occasionResponse, 0, len(occasions))
	for _, occasion := range occasions {
		response = append(response, toOccasionResponse(occasion))
	}

	writeJSON(w, http.StatusOK, occasionListResponse{Items: response, Total: total})
}

func (h *Handlers) GetOccasion(w http.ResponseWriter, r *http.Request) {
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
			h.log.BusinessError("occasions.get: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.get: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	occasion, err := h.Occasions.GetOccasion(r.Context(), group.ID, occasionID)
	if err != nil {
		if errors.Is(err, occasionsdomain.ErrOccasionNotFound) {
			h.log.BusinessError("occasions.get: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
			return
		}
		h.log.InternalError("occasions.get: get occasion failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toOccasionResponse(*occasion))
}

func (h *Handlers) CreateOccasion(w http.ResponseWriter, r *http.Request) {
	var req createOccasionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	date, err := commonhandler.ParseDateRequired(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
		return
	}
	if req.BudgetTotal != nil && req.BudgetTotal.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "budget_total cannot be negative")
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
			h.log.BusinessError("occasions.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	occasion, err := h.Occasions.CreateOccasion(r.Context(), user.ID, occasionsdomain.CreateOccasionInput{
		GroupID:     group.ID,
		Name:        req.Name,
		Kind:        req.Kind,
		Date:        date,
		BudgetTotal: req.BudgetTotal,
	})
	if err != nil {
		if errors.Is(err, occasionsdomain.ErrInvalidKind) {
			h.log.BusinessError("occasions.create: invalid kind", err, "user_id", user.ID, "group_id", group.ID)
			writeError(w, http.StatusBadRequest, "invalid_request", "kind must be birthday, christmas, anniversary, holiday or other")
			return
		}
		h.log.InternalError("occasions.create: create occasion failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "occasion.created",
		EntityKind: "occasion",
		EntityID:   occasion.ID,
		Detail:     map[string]string{"name": occasion.Name},
	})

	writeJSON(w, http.StatusCreated, toOccasionResponse(*occasion))
}

func (h *Handlers) UpdateOccasion(w http.ResponseWriter, r *http.Request) {
	occasionID := strings.TrimSpace(chi.URLParam(r, "id"))
	if occasionID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateOccasionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name cannot be empty")
		return
	}
	var date *time.Time
	if req.Date != nil {
		parsed, err := commonhandler.ParseDateRequired(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid date")
			return
		}
		date = &parsed
	}
	if req.BudgetTotal.Set && req.BudgetTotal.Value != nil && req.BudgetTotal.Value.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "budget_total cannot be negative")
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
			h.log.BusinessError("occasions.update: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.update: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	occasion, err := h.Occasions.UpdateOccasion(r.Context(), user.ID, occasionsdomain.UpdateOccasionInput{
		ID:      occasionID,
		GroupID: group.ID,
		Name:    req.Name,
		Kind:    req.Kind,
		Date:    date,
		BudgetTotal: occasionsdomain.OptionalNullableDecimal{
			Set:   req.BudgetTotal.Set,
			Value: req.BudgetTotal.Value,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, occasionsdomain.ErrOccasionNotFound):
			h.log.BusinessError("occasions.update: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
		case errors.Is(err, occasionsdomain.ErrInvalidKind):
			h.log.BusinessError("occasions.update: invalid kind", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusBadRequest, "invalid_request", "kind must be birthday, christmas, anniversary, holiday or other")
		default:
			h.log.InternalError("occasions.update: update occasion failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "occasion.updated",
		EntityKind: "occasion",
		EntityID:   occasion.ID,
		Detail:     map[string]string{"name": occasion.Name},
	})

	writeJSON(w, http.StatusOK, toOccasionResponse(*occasion))
}

func (h *Handlers) DeleteOccasion(w http.ResponseWriter, r *http.Request) {
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
			h.log.BusinessError("occasions.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("occasions.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Occasions.DeleteOccasion(r.Context(), group.ID, user.ID, occasionID); err != nil {
		if errors.Is(err, occasionsdomain.ErrOccasionNotFound) {
			h.log.BusinessError("occasions.delete: occasion not found", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
			writeError(w, http.StatusNotFound, "occasion_not_found", "occasion not found")
			return
		}
		h.log.InternalError("occasions.delete: delete occasion failed", err, "user_id", user.ID, "group_id", group.ID, "occasion_id", occasionID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "occasion.deleted",
		EntityKind: "occasion",
		EntityID:   occasionID,
	})

	w.WriteHeader(http.StatusNoContent)
}
