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
	"github.com/shopspring/decimal"
)

type addItemRequest struct {
	GiftID        string           `json:"gift_id"`
	Notes         string           `json:"notes"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Quantity      int              `json:"quantity"`
}

type updateItemRequest struct {
	Notes         *string                 `json:"notes"`
	Price         optionalNullableDecimal `json:"price"`
	DiscountPrice optionalNullableDecimal `json:"discount_price"`
	Quantity      *int                    `json:"quantity"`
}

type updateItemStatusRequest struct {
	Status string `json:"status"`
}

type assignItemRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

type itemResponse struct {
	ID            string             `json:"id"`
	ListID        string             `json:"list_id"`
	GiftID        string             `json:"gift_id"`
	Status        listsdomain.Status `json:"status"`
	AssignedTo    *string            `json:"assigned_to"`
	Notes         string             `json:"notes"`
	Price         *decimal.Decimal   `json:"price"`
	DiscountPrice *decimal.Decimal   `json:"discount_price"`
	Quantity      int                `json:"quantity"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func toItemResponse(item listsdomain.ListItem) itemResponse {
	return itemResponse{
		ID:            item.ID,
		ListID:        item.ListID,
		GiftID:        item.GiftID,
		Status:        item.Status,
		AssignedTo:    item.AssignedTo,
		Notes:         item.Notes,
		Price:         item.Price,
		DiscountPrice: item.DiscountPrice,
		Quantity:      item.Quantity,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

func (h *Handlers) AddListItem(w http.ResponseWriter, r *http.Request) {
	listID := strings.TrimSpace(chi.URLParam(r, "id"))
	if listID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.GiftID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "gift_id is required")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "quantity must be at least 1")
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "price cannot be negative")
		return
	}
	if req.DiscountPrice != nil && req.DiscountPrice.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "discount_price cannot be negative")
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
			h.log.BusinessError("lists.add_item: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.add_item: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	item, err := h.Lists.AddItem(r.Context(), user.ID, listsdomain.AddItemInput{
		GroupID:       group.ID,
		ListID:        listID,
		GiftID:        req.GiftID,
		Notes:         req.Notes,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Quantity:      req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, listsdomain.ErrListNotFound):
			h.log.BusinessError("lists.add_item: list not found", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "list_not_found", "list not found")
		case errors.Is(err, listsdomain.ErrGiftNotFound):
			h.log.BusinessError("lists.add_item: gift not found", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
			writeError(w, http.StatusNotFound, "gift_not_found", "gift not found")
		case errors.Is(err, listsdomain.ErrDuplicateItem):
			h.log.BusinessError("lists.add_item: duplicate item", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID, "gift_id", req.GiftID)
			writeError(w, http.StatusConflict, "duplicate_item", "gift is already on this list")
		default:
			h.log.InternalError("lists.add_item: add item failed", err, "user_id", user.ID, "group_id", group.ID, "list_id", listID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "item.added",
		EntityKind: "list_item",
		EntityID:   item.ID,
		Detail:     map[string]string{"list_id": item.ListID, "gift_id": item.GiftID},
	})

	writeJSON(w, http.StatusCreated, toItemResponse(*item))
}

func (h *Handlers) UpdateListItem(w http.ResponseWriter, r *http.Request) {
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Notes == nil && !req.Price.Set && !req.DiscountPrice.Set && req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "no fields to update")
		return
	}
	if req.Quantity != nil && *req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "invalid_request", "quantity must be at least 1")
		return
	}
	if req.Price.Set && req.Price.Value != nil && req.Price.Value.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "price cannot be negative")
		return
	}
	if req.DiscountPrice.Set && req.DiscountPrice.Value != nil && req.DiscountPrice.Value.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "discount_price cannot be negative")
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
			h.log.BusinessError("lists.update_item: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.update_item: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	item, err := h.Lists.UpdateItem(r.Context(), user.ID, listsdomain.UpdateItemInput{
		ID:      itemID,
		GroupID: group.ID,
		Notes:   req.Notes,
		Price: listsdomain.OptionalNullableDecimal{
			Set:   req.Price.Set,
			Value: req.Price.Value,
		},
		DiscountPrice: listsdomain.OptionalNullableDecimal{
			Set:   req.DiscountPrice.Set,
			Value: req.DiscountPrice.Value,
		},
		Quantity: req.Quantity,
	})
	if err != nil {
		if errors.Is(err, listsdomain.ErrItemNotFound) {
			h.log.BusinessError("lists.update_item: item not found", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "item_not_found", "list item not found")
			return
		}
		h.log.InternalError("lists.update_item: update item failed", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "item.updated",
		EntityKind: "list_item",
		EntityID:   item.ID,
		Detail:     map[string]string{"list_id": item.ListID, "gift_id": item.GiftID},
	})

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *Handlers) UpdateListItemStatus(w http.ResponseWriter, r *http.Request) {
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateItemStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	requested := listsdomain.Status(strings.TrimSpace(req.Status))
	if !requested.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "status must be one of idea, selected, purchased, received")
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
			h.log.BusinessError("lists.item_status: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.item_status: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	item, changed, err := h.Lists.UpdateItemStatus(r.Context(), group.ID, user.ID, itemID, requested)
	if err != nil {
		var transitionErr *listsdomain.TransitionError
		switch {
		case errors.Is(err, listsdomain.ErrItemNotFound):
			h.log.BusinessError("lists.item_status: item not found", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "item_not_found", "list item not found")
		case errors.As(err, &transitionErr):
			h.log.BusinessError("lists.item_status: invalid transition", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusBadRequest, "invalid_transition", transitionErr.Error())
		default:
			h.log.InternalError("lists.item_status: update status failed", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	if changed {
		h.recordActivity(r.Context(), activitydomain.RecordInput{
			GroupID:    group.ID,
			ActorID:    user.ID,
			Action:     "item.status_changed",
			EntityKind: "list_item",
			EntityID:   item.ID,
			Detail:     map[string]string{"list_id": item.ListID, "gift_id": item.GiftID, "status": string(item.Status)},
		})
	}

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *Handlers) AssignListItem(w http.ResponseWriter, r *http.Request) {
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))
	if itemID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req assignItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
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
			h.log.BusinessError("lists.assign_item: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.assign_item: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	item, changed, err := h.Lists.AssignItem(r.Context(), group.ID, user.ID, itemID, req.AssignedTo)
	if err != nil {
		switch {
		case errors.Is(err, listsdomain.ErrItemNotFound):
			h.log.BusinessError("lists.assign_item: item not found", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "item_not_found", "list item not found")
		case errors.Is(err, listsdomain.ErrAssigneeNotFound):
			h.log.BusinessError("lists.assign_item: assignee not found", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "assignee_not_found", "assignee not found")
		default:
			h.log.InternalError("lists.assign_item: assign item failed", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	if changed {
		h.recordActivity(r.Context(), activitydomain.RecordInput{
			GroupID:    group.ID,
			ActorID:    user.ID,
			Action:     "item.assigned",
			EntityKind: "list_item",
			EntityID:   item.ID,
			Detail:     map[string]string{"list_id": item.ListID, "gift_id": item.GiftID},
		})
	}

	writeJSON(w, http.StatusOK, toItemResponse(*item))
}

func (h *Handlers) DeleteListItem(w http.ResponseWriter, r *http.Request) {
	itemID := strings.TrimSpace(chi.URLParam(r, "id"))
	if itemID == "" {
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
			h.log.BusinessError("lists.delete_item: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("lists.delete_item: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Lists.DeleteItem(r.Context(), group.ID, user.ID, itemID); err != nil {
		if errors.Is(err, listsdomain.ErrItemNotFound) {
			h.log.BusinessError("lists.delete_item: item not found", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
			writeError(w, http.StatusNotFound, "item_not_found", "list item not found")
			return
		}
		h.log.InternalError("lists.delete_item: delete item failed", err, "user_id", user.ID, "group_id", group.ID, "item_id", itemID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "item.removed",
		EntityKind: "list_item",
		EntityID:   itemID,
	})

	w.WriteHeader(http.StatusNoContent)
}
