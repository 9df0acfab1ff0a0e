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

type createTagRequest struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type updateTagRequest struct {
	Name  string                 `json:"name"`
	Color optionalNullableString `json:"color"`
}

type tagResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

type tagListResponse struct {
	Items []tagResponse `json:"items"`
}

func toTagResponse(tag giftsdomain.Tag) tagResponse {
	return tagResponse{ID: tag.ID, Name: tag.Name, Color: tag.Color}
}

func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("tags.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("tags.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	tags, err := h.Gifts.ListTags(r.Context(), group.ID)
	if err != nil {
		h.log.InternalError("tags.list: list tags failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		response = append(response, toTagResponse(tag))
	}

	writeJSON(w, http.StatusOK, tagListResponse{Items: response})
}

func (h *Handlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
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
			h.log.BusinessError("tags.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("tags.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	tag, err := h.Gifts.CreateTag(r.Context(), giftsdomain.CreateTagInput{
		GroupID: group.ID,
		Name:    req.Name,
		Color:   req.Color,
	})
	if err != nil {
		if writeTagError(w, err) {
			h.log.BusinessError("tags.create: rejected", err, "user_id", user.ID, "group_id", group.ID)
			return
		}
		h.log.InternalError("tags.create: create tag failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, toTagResponse(*tag))
}

func (h *Handlers) UpdateTag(w http.ResponseWriter, r *http.Request) {
	tagID := strings.TrimSpace(chi.URLParam(r, "id"))
	if tagID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updateTagRequest
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
			h.log.BusinessError("tags.update: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("tags.update: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	tag, err := h.Gifts.UpdateTag(r.Context(), giftsdomain.UpdateTagInput{
		GroupID: group.ID,
		TagID:   tagID,
		Name:    req.Name,
		Color: giftsdomain.OptionalNullableString{
			Set:   req.Color.Set,
			Value: req.Color.Value,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, giftsdomain.ErrTagNotFound):
			h.log.BusinessError("tags.update: tag not found", err, "user_id", user.ID, "group_id", group.ID, "tag_id", tagID)
			writeError(w, http.StatusNotFound, "tag_not_found", "tag not found")
		case writeTagError(w, err):
			h.log.BusinessError("tags.update: rejected", err, "user_id", user.ID, "group_id", group.ID, "tag_id", tagID)
		default:
			h.log.InternalError("tags.update: update tag failed", err, "user_id", user.ID, "group_id", group.ID, "tag_id", tagID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, toTagResponse(*tag))
}

func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tagID := strings.TrimSpace(chi.URLParam(r, "id"))
	if tagID == "" {
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
			h.log.BusinessError("tags.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("tags.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Gifts.DeleteTag(r.Context(), group.ID, tagID); err != nil {
		switch {
		case errors.Is(err, giftsdomain.ErrTagNotFound):
			h.log.BusinessError("tags.delete: tag not found", err, "user_id", user.ID, "group_id", group.ID, "tag_id", tagID)
			writeError(w, http.StatusNotFound, "tag_not_found", "tag not found")
		case errors.Is(err, giftsdomain.ErrTagInUse):
			h.log.BusinessError("tags.delete: tag in use", err, "user_id", user.ID, "group_id", group.ID, "tag_id", tagID)
			writeError(w, http.StatusConflict, "tag_in_use", "tag is attached to gifts")
		default:
			h.log.InternalError("tags.delete: delete tag failed", err, "user_id", user.ID, "group_id", group.ID, "tag_id", tagID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeTagError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, giftsdomain.ErrTagNameTaken):
		writeError(w, http.StatusConflict, "tag_name_taken", "tag name already taken")
		return true
	case errors.Is(err, giftsdomain.ErrInvalidTagColor):
		writeError(w, http.StatusBadRequest, "invalid_request", "color must look like #rrggbb")
		return true
	default:
		return false
	}
}
