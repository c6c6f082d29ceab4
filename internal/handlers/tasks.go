package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jmalik/taskly-backend/internal/middleware"
	"github.com/jmalik/taskly-backend/internal/services"
	"github.com/jmalik/taskly-backend/pkg/validator"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Create handles POST /tasks. Owner always comes from the authenticated
// user, never the body.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	errs := make(validator.ValidationErrors)
	validator.ValidateTaskDescription(req.Description, errs)
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	task, err := h.tasks.Create(r.Context(), user.ID, req.Description, req.Completed)
	if err != nil {
		log.Printf("ERROR creating task: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// List handles GET /tasks?completed&limit&skip&sortBy.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	tasks, err := h.tasks.List(r.Context(), user.ID, parseListOptions(r.URL.Query()))
	if err != nil {
		log.Printf("ERROR listing tasks: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	task, err := h.tasks.GetByID(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("ERROR fetching task: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Update handles PATCH /tasks/{id}. Only {description, completed} may
// appear in the body.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	body, ok := decodeAllowListed(r, "description", "completed")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid updates")
		return
	}

	var upd services.TaskUpdate
	errs := make(validator.ValidationErrors)
	if raw, present := body["description"]; present {
		var description string
		if err := json.Unmarshal(raw, &description); err != nil {
			writeError(w, http.StatusBadRequest, "invalid updates")
			return
		}
		validator.ValidateTaskDescription(description, errs)
		upd.Description = &description
	}
	if raw, present := body["completed"]; present {
		var completed bool
		if err := json.Unmarshal(raw, &completed); err != nil {
			writeError(w, http.StatusBadRequest, "invalid updates")
			return
		}
		upd.Completed = &completed
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	task, err := h.tasks.Update(r.Context(), user.ID, id, upd)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("ERROR updating task: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	task, err := h.tasks.Delete(r.Context(), user.ID, id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("ERROR deleting task: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// sortableFields are the task keys a listing may be ordered by.
var sortableFields = map[string]bool{
	"description": true,
	"completed":   true,
	"created_at":  true,
	"updated_at":  true,
}

// parseListOptions turns the query string into listing options. Absent or
// unparseable parameters impose nothing.
func parseListOptions(q url.Values) services.TaskListOptions {
	var opts services.TaskListOptions

	if v := q.Get("completed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Completed = &b
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			opts.Limit = n
		}
	}
	if v := q.Get("skip"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			opts.Skip = n
		}
	}
	if field, desc, ok := parseSortBy(q.Get("sortBy")); ok {
		opts.SortField = field
		opts.SortDesc = desc
	}

	return opts
}

// parseSortBy splits a compound "field_direction" token. A "_desc" suffix
// means descending; anything else, including no suffix at all, means
// ascending. Unknown fields are ignored.
func parseSortBy(s string) (field string, desc bool, ok bool) {
	switch {
	case strings.HasSuffix(s, "_desc"):
		field, desc = strings.TrimSuffix(s, "_desc"), true
	case strings.HasSuffix(s, "_asc"):
		field = strings.TrimSuffix(s, "_asc")
	default:
		field = s
	}
	if !sortableFields[field] {
		return "", false, false
	}
	return field, desc, true
}
