package dashboard

import (
	"errors"
	"net/http"

	activitydomain "giftboard/internal/domain/activity"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/internal/transport/httpserver/middleware"
)

type activityListResponse struct {
	Items []activityEntryResponse `json:"items"`
	Total int64                   `json:"total"`
}

func (h *Handlers) ListActivity(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
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
			h.log.BusinessError("activity.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("activity.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	entries, total, err := h.Activity.List(r.Context(), group.ID, activitydomain.ListFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.log.InternalError("activity.list: list activity failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]activityEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, toActivityEntryResponse(entry))
	}

	writeJSON(w, http.StatusOK, activityListResponse{Items: response, Total: total})
}
