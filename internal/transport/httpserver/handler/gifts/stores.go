package gifts

import (
	"errors"
	"net/http"
	"strings"

	giftsdomain "giftboard/internal/domain/gifts"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createStoreRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type updateStoreRequest struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

type storeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type storeListResponse struct {
	Items []storeResponse `json:"items"`
}

func toStoreResponse(store giftsdomain.Store) storeResponse {
	return storeResponse{ID: store.ID, Name: store.Name, URL: store.URL}
}

func (h *Handlers) ListStores(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("stores.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("stores.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	stores, err := h.Gifts.ListStores(r.Context(), group.ID)
	if err != nil {
		h.log.InternalError("stores.list: list stores failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]storeResponse, 0, len(stores))
	for _, store := range stores {
		response = append(response, toStoreResponse(store))
	}

	writeJSON(w, http.StatusOK, storeListResponse{Items: response})
}

func (h *Handlers) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req createStoreRequest
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
			h.log.BusinessError("stores.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("stores.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	store, err := h.Gifts.CreateStore(r.Context(), giftsdomain.CreateStoreInput{
		GroupID: group.ID,
		Name:    req.Name,
		URL:     req.URL,
	})
	if err != nil {
		h.log.InternalError("stores.create: create store failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toStoreResponse(*store))
}

func (h *Handlers) UpdateStore(w http.ResponseWriter, r *http.Request) {
	storeID := strings.TrimSpace(chi.URLParam(r, "id"))
	if storeID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateStoreRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name cannot be empty")
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
			h.log.BusinessError("stores.update: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("stores.update: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	store, err := h.Gifts.UpdateStore(r.Context(), giftsdomain.UpdateStoreInput{
		GroupID: group.ID,
		StoreID: storeID,
		Name:    req.Name,
		URL:     req.URL,
	})
	if err != nil {
		if errors.Is(err, giftsdomain.ErrStoreNotFound) {
			h.log.BusinessError("stores.update: store not found", err, "user_id", user.ID, "group_id", group.ID, "store_id", storeID)
			writeError(w, http.StatusNotFound, "store_not_found", "store not found")
			return
		}
		h.log.InternalError("stores.update: update store failed", err, "user_id", user.ID, "group_id", group.ID, "store_id", storeID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toStoreResponse(*store))
}

func (h *Handlers) DeleteStore(w http.ResponseWriter, r *http.Request) {
	storeID := strings.TrimSpace(chi.URLParam(r, "id"))
	if storeID == "" {
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
			h.log.BusinessError("stores.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("stores.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Gifts.DeleteStore(r.Context(), group.ID, storeID); err != nil {
		if errors.Is(err, giftsdomain.ErrStoreNotFound) {
			h.log.BusinessError("stores.delete: store not found", err, "user_id", user.ID, "group_id", group.ID, "store_id", storeID)
			writeError(w, http.StatusNotFound, "store_not_found", "store not found")
			return
		}
		h.log.InternalError("stores.delete: delete store failed", err, "user_id", user.ID, "group_id", group.ID, "store_id", storeID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
