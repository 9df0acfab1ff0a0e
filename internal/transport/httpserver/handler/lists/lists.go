package lists

import (
	"errors"
	"net/http"
	"strings"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	groupsdomain "giftboard/internal/domain/groups"
	listsdomain "giftboard/internal/domain/lists"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createListRequest struct {
	Name       string  `json:"name"`
	PersonID   *string `json:"person_id"`
	OccasionID *string `json:"occasion_id"`
}

type updateListRequest struct {
	Name       *string                `json:"name"`
	PersonID   optionalNullableString `json:"person_id"`
	OccasionID optionalNullableString `json:"occasion_id"`
}

type listResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PersonID   *string   `json:"person_id"`
	OccasionID *string   `json:"occasion_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type listOverviewResponse struct {
	listResponse
	ItemCount      int64 `json:"item_count"`
	PurchasedCount int64 `json:"purchased_count"`
}

type listCollectionResponse struct {
	Items []listOverviewResponse `json:"items"`
	Total int64                  `json:"total"`
}

type listDetailResponse struct {
	listResponse
	Items  []itemResponse        `json:"items"`
	Budget budgetSummaryResponse `json:"budget"`
}

func toListResponse(list listsdomain.List) listResponse {
	return listResponse{
		ID:         list.ID,
		Name:       list.Name,
		PersonID:   list.PersonID,
		OccasionID: list.OccasionID,
		CreatedAt:  list.CreatedAt,
		UpdatedAt:  list.UpdatedAt,
	}
}

func (h *Handlers) ListLists(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("lists.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	query := r.URL.Query()
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

	filter := listsdomain.ListFilter{
		PersonID:   optionalQuery(query.Get("person_id")),
		OccasionID: optionalQuery(query.Get("occasion_id")),
		Limit:      limit,
		Offset:     offset,
	}

	overviews, total, err := h.Lists.ListLists(r.Context(), group.ID, filter)
	if err != nil {
		h.log.InternalError("lists.list: list lists failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]listOverviewResponse, 0, len(overviews))
	for _, overview := range overviews {
		response = append(response, listOverviewResponse{
			listResponse:   toListResponse(overview.List),
			ItemCount:      overview.Counts.Total,
			PurchasedCount: overview.Counts.Purchased,
		})
	}

	writeJSON(w, http.StatusOK, listCollectionResponse{Items: response, Total: total})
}

func (h *Handlers) GetList(w http.ResponseWriter, r *http.Request) {
	listID := strings.TrimSpace(chi.URLParam(r, "id"))
	if listID == "" {
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
			h.log.BusinessError("lists.get: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.get: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	detail, err := h.Lists.GetList(r.Context(), group.ID, listID)
	if err != nil {
		if errors.Is(err, listsdomain.ErrListNotFound) {
			h.log.BusinessError("lists.get: list not found", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "list_not_found", "list not found")
			return
		}
		h.log.InternalError("lists.get: get list failed", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	summary, err := h.Budget.ListSummary(r.Context(), group.ID, detail.List.ID, detail.List.OccasionID)
	if err != nil {
		h.log.InternalError("lists.get: list summary failed", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	items := make([]itemResponse, 0, len(detail.Items))
	for _, item := range detail.Items {
		items = append(items, toItemResponse(item))
	}

	writeJSON(w, http.StatusOK, listDetailResponse{
		listResponse: toListResponse(detail.List),
		Items:        items,
		Budget:       toBudgetSummaryResponse(*summary),
	})
}

func (h *Handlers) CreateList(w http.ResponseWriter, r *http.Request) {
	var req createListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
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
			h.log.BusinessError("lists.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	list, err := h.Lists.CreateList(r.Context(), user.ID, listsdomain.CreateListInput{
		GroupID:    group.ID,
		Name:       req.Name,
		PersonID:   req.PersonID,
		OccasionID: req.OccasionID,
	})
	if err != nil {
		h.log.InternalError("lists.create: create list failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "list.created",
		EntityKind: "list",
		EntityID:   list.ID,
		Detail:     map[string]string{"name": list.Name},
	})

	writeJSON(w, http.StatusCreated, toListResponse(*list))
}

func (h *Handlers) UpdateList(w http.ResponseWriter, r *http.Request) {
	listID := strings.TrimSpace(chi.URLParam(r, "id"))
	if listID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name cannot be empty")
		return
	}
	if req.Name == nil && !req.PersonID.Set && !req.OccasionID.Set {
		writeError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
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
			h.log.BusinessError("lists.update: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.update: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	list, err := h.Lists.UpdateList(r.Context(), user.ID, listsdomain.UpdateListInput{
		ID:      listID,
		GroupID: group.ID,
		Name:    req.Name,
		PersonID: listsdomain.OptionalNullableString{
			Set:   req.PersonID.Set,
			Value: req.PersonID.Value,
		},
		OccasionID: listsdomain.OptionalNullableString{
			Set:   req.OccasionID.Set,
			Value: req.OccasionID.Value,
		},
	})
	if err != nil {
		if errors.Is(err, listsdomain.ErrListNotFound) {
			h.log.BusinessError("lists.update: list not found", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "list_not_found", "list not found")
			return
		}
		h.log.InternalError("lists.update: update list failed", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "list.updated",
		EntityKind: "list",
		EntityID:   list.ID,
		Detail:     map[string]string{"name": list.Name},
	})

	writeJSON(w, http.StatusOK, toListResponse(*list))
}

func (h *Handlers) DeleteList(w http.ResponseWriter, r *http.Request) {
	listID := strings.TrimSpace(chi.URLParam(r, "id"))
	if listID == "" {
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
			h.log.BusinessError("lists.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Lists.DeleteList(r.Context(), group.ID, user.ID, listID); err != nil {
		if errors.Is(err, listsdomain.ErrListNotFound) {
			h.log.BusinessError("lists.delete: list not found", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "list_not_found", "list not found")
			return
		}
		h.log.InternalError("lists.delete: delete list failed", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "list.deleted",
		EntityKind: "list",
		EntityID:   listID,
	})

	w.WriteHeader(http.StatusNoContent)
}

func optionalQuery(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
