package comments

import (
	"errors"
	"net/http"
	"strings"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	commentsdomain "giftboard/internal/domain/comments"
	groupsdomain "giftboard/internal/domain/groups"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createCommentRequest struct {
	ParentKind string `json:"parent_kind"`
	ParentID   string `json:"parent_id"`
	Body       string `json:"body"`
}

type commentResponse struct {
	ID         string    `json:"id"`
	ParentKind string    `json:"parent_kind"`
	ParentID   string    `json:"parent_id"`
	AuthorID   string    `json:"author_id"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

type commentListResponse struct {
	Items []commentResponse `json:"items"`
	Total int64             `json:"total"`
}

func toCommentResponse(comment commentsdomain.Comment) commentResponse {
	return commentResponse{
		ID:         comment.ID,
		ParentKind: string(comment.ParentKind),
		ParentID:   comment.ParentID,
		AuthorID:   comment.AuthorID,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt,
	}
}

func (h *Handlers) ListComments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	parentKind := strings.TrimSpace(query.Get("parent_kind"))
	parentID := strings.TrimSpace(query.Get("parent_id"))
	if parentKind == "" || parentID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "parent_kind and parent_id are required")
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

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("comments.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("comments.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	parent := commentsdomain.ParentRef{Kind: commentsdomain.ParentKind(parentKind), ID: parentID}
	comments, total, err := h.Comments.ListComments(r.Context(), group.ID, parent, commentsdomain.ListFilter{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		if errors.Is(err, commentsdomain.ErrInvalidParentKind) {
			h.log.BusinessError("comments.list: invalid parent kind", err, "user_id", user.ID, "group_id", group.ID, "parent_kind", parentKind)
			writeError(w, http.StatusBadRequest, "invalid_request", "parent_kind must be gift, list, person or occasion")
			return
		}
		h.log.InternalError("comments.list: list comments failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, toCommentResponse(comment))
	}

	writeJSON(w, http.StatusOK, commentListResponse{Items: response, Total: total})
}

func (h *Handlers) CreateComment(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.ParentKind) == "" || strings.TrimSpace(req.ParentID) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "parent_kind and parent_id are required")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "body is required")
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
			h.log.BusinessError("comments.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("comments.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	comment, err := h.Comments.CreateComment(r.Context(), commentsdomain.CreateCommentInput{
		GroupID:  group.ID,
		Parent:   commentsdomain.ParentRef{Kind: commentsdomain.ParentKind(req.ParentKind), ID: req.ParentID},
		AuthorID: user.ID,
		Body:     req.Body,
	})
	if err != nil {
		switch {
		case errors.Is(err, commentsdomain.ErrInvalidParentKind):
			h.log.BusinessError("comments.create: invalid parent kind", err, "user_id", user.ID, "group_id", group.ID, "parent_kind", req.ParentKind)
			writeError(w, http.StatusBadRequest, "invalid_request", "parent_kind must be gift, list, person or occasion")
		case errors.Is(err, commentsdomain.ErrParentNotFound):
			h.log.BusinessError("comments.create: parent not found", err, "user_id", user.ID, "group_id", group.ID, "parent_kind", req.ParentKind, "parent_id", req.ParentID)
			writeError(w, http.StatusNotFound, "parent_not_found", "comment parent not found")
		default:
			h.log.InternalError("comments.create: create comment failed", err, "user_id", user.ID, "group_id", group.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "comment.added",
		EntityKind: string(comment.ParentKind),
		EntityID:   comment.ParentID,
		Detail:     map[string]string{"comment_id": comment.ID},
	})

	writeJSON(w, http.StatusCreated, toCommentResponse(*comment))
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := strings.TrimSpace(chi.URLParam(r, "id"))
	if commentID == "" {
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
			h.log.BusinessError("comments.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("comments.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.Comments.DeleteComment(r.Context(), group.ID, user.ID, commentID); err != nil {
		switch {
		case errors.Is(err, commentsdomain.ErrCommentNotFound):
			h.log.BusinessError("comments.delete: comment not found", err, "user_id", user.ID, "group_id", group.ID, "comment_id", commentID)
			writeError(w, http.StatusNotFound, "comment_not_found", "comment not found")
		case errors.Is(err, commentsdomain.ErrNotAuthor):
			h.log.BusinessError("comments.delete: not author", err, "user_id", user.ID, "group_id", group.ID, "comment_id", commentID)
			writeError(w, http.StatusForbidden, "not_author", "only the author can delete a comment")
		default:
			h.log.InternalError("comments.delete: delete comment failed", err, "user_id", user.ID, "group_id", group.ID, "comment_id", commentID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
