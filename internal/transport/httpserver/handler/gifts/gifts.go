package gifts

import (
	"errors"
	"net/http"
	"strings"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	giftsdomain "giftboard/internal/domain/gifts"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type createGiftRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	URL          string           `json:"url"`
	Price        *decimal.Decimal `json:"price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	Quantity     int              `json:"quantity"`
	Priority     int              `json:"priority"`
	StoreID      *string          `json:"store_id"`
	TagIDs       []string         `json:"tag_ids"`
	RecipientIDs []string         `json:"recipient_ids"`
}

type updateGiftRequest struct {
	Name         *string                 `json:"name"`
	Description  *string                 `json:"description"`
	URL          *string                 `json:"url"`
	Price        optionalNullableDecimal `json:"price"`
	SalePrice    optionalNullableDecimal `json:"sale_price"`
	Quantity     *int                    `json:"quantity"`
	Status       *string                 `json:"status"`
	Priority     *int                    `json:"priority"`
	StoreID      optionalNullableString  `json:"store_id"`
	TagIDs       optionalStringSlice     `json:"tag_ids"`
	RecipientIDs optionalStringSlice     `json:"recipient_ids"`
}

type setRecipientsRequest struct {
	PersonIDs []string `json:"person_ids"`
}

type giftResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	URL          string           `json:"url"`
	Price        *decimal.Decimal `json:"price"`
	SalePrice    *decimal.Decimal `json:"sale_price"`
	Quantity     int              `json:"quantity"`
	Status       string           `json:"status"`
	Priority     int              `json:"priority"`
	StoreID      *string          `json:"store_id"`
	TagIDs       []string         `json:"tag_ids"`
	RecipientIDs []string         `json:"recipient_ids"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

type giftListResponse struct {
	Items []giftResponse `json:"items"`
	Total int64          `json:"total"`
}

func toGiftResponse(gift giftsdomain.GiftWithLinks) giftResponse {
	tagIDs := gift.TagIDs
	if tagIDs == nil {
		tagIDs = []string{}
	}
	recipientIDs := gift.RecipientIDs
	if recipientIDs == nil {
		recipientIDs = []string{}
	}

	return giftResponse{
		ID:           gift.ID,
		Name:         gift.Name,
		Description:  gift.Description,
		URL:          gift.URL,
		Price:        gift.Price,
		SalePrice:    gift.SalePrice,
		Quantity:     gift.Quantity,
		Status:       gift.Status,
		Priority:     gift.Priority,
		StoreID:      gift.StoreID,
		TagIDs:       tagIDs,
		RecipientIDs: recipientIDs,
		CreatedAt:    gift.CreatedAt,
		UpdatedAt:    gift.UpdatedAt,
	}
}

func (h *Handlers) ListGifts(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("gifts.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("gifts.list: get group failed", err, "user_id", user.ID)
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

	filter := giftsdomain.GiftFilter{
		Status:   optionalQuery(query.Get("status")),
		TagID:    optionalQuery(query.Get("tag_id")),
		PersonID: optionalQuery(query.Get("person_id")),
		StoreID:  optionalQuery(query.Get("store_id")),
		Limit:    limit,
		Offset:   offset,
	}

	items, total, err := h.Gifts.ListGifts(r.Context(), group.ID, filter)
	if err != nil {
		h.log.InternalError("gifts.list: list gifts failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]giftResponse, 0, len(items))
	for _, gift := range items {
		response = append(response, toGiftResponse(gift))
	}

	writeJSON(w, http.StatusOK, giftListResponse{Items: response, Total: total})
}

func (h *Handlers) GetGift(w http.ResponseWriter, r *http.Request) {
	giftID := strings.TrimSpace(chi.URLParam(r, "id"))
	if giftID == "" {
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
			h.log.BusinessError("gifts.get: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("gifts.get: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	gift, err := h.Gifts.GetGift(r.Context(), group.ID, giftID)
	if err != nil {
		if errors.Is(err, giftsdomain.ErrGiftNotFound) {
			h.log.BusinessError("gifts.get: gift not found", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusNotFound, "gift_not_found", "gift not found")
			return
		}
		h.log.InternalError("gifts.get: get gift failed", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toGiftResponse(*gift))
}

func (h *Handlers) CreateGift(w http.ResponseWriter, r *http.Request) {
	var req createGiftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "price cannot be negative")
		return
	}
	if req.SalePrice != nil && req.SalePrice.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "sale_price cannot be negative")
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "quantity must be at least 1")
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
			h.log.BusinessError("gifts.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("gifts.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	created, err := h.Gifts.CreateGift(r.Context(), user.ID, giftsdomain.CreateGiftInput{
		GroupID:      group.ID,
		Name:         req.Name,
		Description:  req.Description,
		URL:          req.URL,
		Price:        req.Price,
		SalePrice:    req.SalePrice,
		Quantity:     req.Quantity,
		Priority:     req.Priority,
		StoreID:      req.StoreID,
		TagIDs:       req.TagIDs,
		RecipientIDs: req.RecipientIDs,
	})
	if err != nil {
		if writeGiftLinkError(w, err) || writeGiftValidationError(w, err) {
			h.log.BusinessError("gifts.create: rejected", err, "user_id", user.ID, "group_id", group.ID)
			return
		}
		h.log.InternalError("gifts.create: create gift failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "gift.created",
		EntityKind: "gift",
		EntityID:   created.ID,
		Detail:     map[string]string{"name": created.Name},
	})

	writeJSON(w, http.StatusCreated, toGiftResponse(*created))
}

func (h *Handlers) UpdateGift(w http.ResponseWriter, r *http.Request) {
	giftID := strings.TrimSpace(chi.URLParam(r, "id"))
	if giftID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateGiftRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name cannot be empty")
		return
	}
	if req.Price.Set && req.Price.Value != nil && req.Price.Value.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "price cannot be negative")
		return
	}
	if req.SalePrice.Set && req.SalePrice.Value != nil && req.SalePrice.Value.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid_request", "sale_price cannot be negative")
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
			h.log.BusinessError("gifts.update: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("gifts.update: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	updated, err := h.Gifts.UpdateGift(r.Context(), user.ID, giftsdomain.UpdateGiftInput{
		ID:          giftID,
		GroupID:     group.ID,
		Name:        req.Name,
		Description: req.Description,
		URL:         req.URL,
		Price: giftsdomain.OptionalNullableDecimal{
			Set:   req.Price.Set,
			Value: req.Price.Value,
		},
		SalePrice: giftsdomain.OptionalNullableDecimal{
			Set:   req.SalePrice.Set,
			Value: req.SalePrice.Value,
		},
		Quantity: req.Quantity,
		Status:   req.Status,
		Priority: req.Priority,
		StoreID: giftsdomain.OptionalNullableString{
			Set:   req.StoreID.Set,
			Value: req.StoreID.Value,
		},
		TagIDs: giftsdomain.OptionalStringSlice{
			Set:    req.TagIDs.Set,
			Values: req.TagIDs.Values,
		},
		RecipientIDs: giftsdomain.OptionalStringSlice{
			Set:    req.RecipientIDs.Set,
			Values: req.RecipientIDs.Values,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, giftsdomain.ErrGiftNotFound):
			h.log.BusinessError("gifts.update: gift not found", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusNotFound, "gift_not_found", "gift not found")
		case writeGiftLinkError(w, err), writeGiftValidationError(w, err):
			h.log.BusinessError("gifts.update: rejected", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
		default:
			h.log.InternalError("gifts.update: update gift failed", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "gift.updated",
		EntityKind: "gift",
		EntityID:   updated.ID,
		Detail:     map[string]string{"name": updated.Name},
	})

	writeJSON(w, http.StatusOK, toGiftResponse(*updated))
}

func (h *Handlers) DeleteGift(w http.ResponseWriter, r *http.Request) {
	giftID := strings.TrimSpace(chi.URLParam(r, "id"))
	if giftID == "" {
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
			h.log.BusinessError("gifts.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("gifts.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Gifts.DeleteGift(r.Context(), group.ID, user.ID, giftID); err != nil {
		if errors.Is(err, giftsdomain.ErrGiftNotFound) {
			h.log.BusinessError("gifts.delete: gift not found", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusNotFound, "gift_not_found", "gift not found")
			return
		}
		h.log.InternalError("gifts.delete: delete gift failed", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "gift.deleted",
		EntityKind: "gift",
		EntityID:   giftID,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) SetGiftRecipients(w http.ResponseWriter, r *http.Request) {
	giftID := strings.TrimSpace(chi.URLParam(r, "id"))
	if giftID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req setRecipientsRequest
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
			h.log.BusinessError("gifts.set_recipients: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("gifts.set_recipients: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	updated, err := h.Gifts.SetRecipients(r.Context(), group.ID, user.ID, giftID, req.PersonIDs)
	if err != nil {
		switch {
		case errors.Is(err, giftsdomain.ErrGiftNotFound):
			h.log.BusinessError("gifts.set_recipients: gift not found", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusNotFound, "gift_not_found", "gift not found")
		case errors.Is(err, giftsdomain.ErrRecipientNotFound):
			h.log.BusinessError("gifts.set_recipients: recipient not found", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusNotFound, "recipient_not_found", "recipient not found")
		default:
			h.log.InternalError("gifts.set_recipients: set recipients failed", err, "user_id", user.ID, "group_id", group.ID, "gift_id", giftID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "gift.recipients_set",
		EntityKind: "gift",
		EntityID:   giftID,
	})

	writeJSON(w, http.StatusOK, toGiftResponse(*updated))
}

func writeGiftLinkError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, giftsdomain.ErrStoreNotFound):
		writeError(w, http.StatusNotFound, "store_not_found", "store not found")
		return true
	case errors.Is(err, giftsdomain.ErrTagNotFound):
		writeError(w, http.StatusNotFound, "tag_not_found", "tag not found")
		return true
	case errors.Is(err, giftsdomain.ErrRecipientNotFound):
		writeError(w, http.StatusNotFound, "recipient_not_found", "recipient not found")
		return true
	default:
		return false
	}
}

func writeGiftValidationError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, giftsdomain.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_request", "status must be active or archived")
		return true
	case errors.Is(err, giftsdomain.ErrInvalidPriority):
		writeError(w, http.StatusBadRequest, "invalid_request", "priority must be between 0 and 5")
		return true
	default:
		return false
	}
}

func optionalQuery(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
