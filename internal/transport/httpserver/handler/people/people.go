package people

import (
	"errors"
	"net/http"
	"strings"
	"time"

	activitydomain "giftboard/internal/domain/activity"
	groupsdomain "giftboard/internal/domain/groups"
	peopledomain "giftboard/internal/domain/people"
	commonhandler "giftboard/internal/transport/httpserver/handler/common"
	"giftboard/internal/transport/httpserver/middleware"
	"github.com/go-chi/chi/v5"
)

type createPersonRequest struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
	Notes    string `json:"notes"`
}

type updatePersonRequest struct {
	Name     *string                `json:"name"`
	Birthday optionalNullableString `json:"birthday"`
	Notes    *string                `json:"notes"`
}

type personResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Birthday  *string   `json:"birthday"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type personListResponse struct {
	Items []personResponse `json:"items"`
}

func toPersonResponse(person peopledomain.Person) personResponse {
	var birthday *string
	if person.Birthday != nil {
		formatted := person.Birthday.Format("2006-01-02")
		birthday = &formatted
	}

	return personResponse{
		ID:        person.ID,
		Name:      person.Name,
		Birthday:  birthday,
		Notes:     person.Notes,
		CreatedAt: person.CreatedAt,
		UpdatedAt: person.UpdatedAt,
	}
}

func (h *Handlers) ListPeople(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("people.list: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("people.list: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	people, err := h.People.ListPeople(r.Context(), group.ID)
	if err != nil {
		h.log.InternalError("people.list: list people failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := make([]personResponse, 0, len(people))
	for _, person := range people {
		response = append(response, toPersonResponse(person))
	}

	writeJSON(w, http.StatusOK, personListResponse{Items: response})
}

func (h *Handlers) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	birthday, err := commonhandler.ParseDateParam(req.Birthday)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid birthday")
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
			h.log.BusinessError("people.create: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("people.create: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	person, err := h.People.CreatePerson(r.Context(), user.ID, peopledomain.CreatePersonInput{
		GroupID:  group.ID,
		Name:     req.Name,
		Birthday: birthday,
		Notes:    req.Notes,
	})
	if err != nil {
		h.log.InternalError("people.create: create person failed", err, "user_id", user.ID, "group_id", group.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "person.created",
		EntityKind: "person",
		EntityID:   person.ID,
		Detail:     map[string]string{"name": person.Name},
	})

	writeJSON(w, http.StatusCreated, toPersonResponse(*person))
}

func (h *Handlers) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	personID := strings.TrimSpace(chi.URLParam(r, "id"))
	if personID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "id is required")
		return
	}

	var req updatePersonRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name cannot be empty")
		return
	}

	birthday := peopledomain.OptionalNullableTime{Set: req.Birthday.Set}
	if req.Birthday.Set && req.Birthday.Value != nil {
		parsed, err := commonhandler.ParseDateParam(*req.Birthday.Value)
		if err != nil || parsed == nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid birthday")
			return
		}
		birthday.Value = parsed
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	group, err := h.Groups.GetGroupByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, groupsdomain.ErrGroupNotFound) {
			h.log.BusinessError("people.update: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("people.update: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	person, err := h.People.UpdatePerson(r.Context(), user.ID, peopledomain.UpdatePersonInput{
		ID:       personID,
		GroupID:  group.ID,
		Name:     req.Name,
		Birthday: birthday,
		Notes:    req.Notes,
	})
	if err != nil {
		if errors.Is(err, peopledomain.ErrPersonNotFound) {
			h.log.BusinessError("people.update: person not found", err, "user_id", user.ID, "group_id", group.ID, "person_id", personID)
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
			return
		}
		h.log.InternalError("people.update: update person failed", err, "user_id", user.ID, "group_id", group.ID, "person_id", personID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "person.updated",
		EntityKind: "person",
		EntityID:   person.ID,
		Detail:     map[string]string{"name": person.Name},
	})

	writeJSON(w, http.StatusOK, toPersonResponse(*person))
}

func (h *Handlers) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID := strings.TrimSpace(chi.URLParam(r, "id"))
	if personID == "" {
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
			h.log.BusinessError("people.delete: group not found", err, "user_id", user.ID)
			writeError(w, http.StatusNotFound, "group_not_found", "group not found")
			return
		}
		h.log.InternalError("people.delete: get group failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	if err := h.People.DeletePerson(r.Context(), group.ID, user.ID, personID); err != nil {
		if errors.Is(err, peopledomain.ErrPersonNotFound) {
			h.log.BusinessError("people.delete: person not found", err, "user_id", user.ID, "group_id", group.ID, "person_id", personID)
			writeError(w, http.StatusNotFound, "person_not_found", "person not found")
			return
		}
		h.log.InternalError("people.delete: delete person failed", err, "user_id", user.ID, "group_id", group.ID, "person_id", personID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	h.recordActivity(r.Context(), activitydomain.RecordInput{
		GroupID:    group.ID,
		ActorID:    user.ID,
		Action:     "person.deleted",
		EntityKind: "person",
		EntityID:   personID,
	})

	w.WriteHeader(http.StatusNoContent)
}
