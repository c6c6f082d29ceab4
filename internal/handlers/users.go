package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jmalik/taskly-backend/internal/mailer"
	"github.com/jmalik/taskly-backend/internal/middleware"
	"github.com/jmalik/taskly-backend/internal/models"
	"github.com/jmalik/taskly-backend/internal/services"
	"github.com/jmalik/taskly-backend/pkg/validator"
)

type UserHandler struct {
	users *services.UserService
	mail  *mailer.Mailer
}

func NewUserHandler(users *services.UserService, mail *mailer.Mailer) *UserHandler {
	return &UserHandler{users: users, mail: mail}
}

// AuthResponse is the body returned by register and login: the sanitized
// user plus the freshly issued session token.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /users.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input services.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if errs := validator.ValidateSignup(input.Name, input.Email, input.Password, input.Age); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, token, err := h.users.Register(r.Context(), input)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email already in use")
			return
		}
		log.Printf("ERROR register: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	h.mail.SendWelcome(user.Email, user.Name)

	writeJSON(w, http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login handles POST /users/login. Every failure gets the same body so
// callers cannot tell a missing account from a wrong password.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusBadRequest, "unable to login")
			return
		}
		log.Printf("ERROR login: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{User: user, Token: token})
}

// Logout handles POST /users/logout, revoking only the presented token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	token := middleware.TokenFrom(r.Context())

	if err := h.users.Logout(r.Context(), user.ID, token); err != nil {
		log.Printf("ERROR logout: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// LogoutAll handles POST /users/logoutAll.
func (h *UserHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := h.users.LogoutAll(r.Context(), user.ID); err != nil {
		log.Printf("ERROR logoutAll: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{})
}

// List handles GET /users. Unscoped on purpose: a debug/admin view, not a
// tenant boundary.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		log.Printf("ERROR listing users: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.UserFrom(r.Context()))
}

// GetByID handles GET /users/{id}.
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		log.Printf("ERROR fetching user: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateMe handles PATCH /users/me. Only {name, email, password, age} may
// appear in the body; any other key rejects the whole request.
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	body, ok := decodeAllowListed(r, "name", "email", "password", "age")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid updates")
		return
	}

	upd, errs, ok := parseUserUpdate(body)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid updates")
		return
	}
	if errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	if err := h.users.Update(r.Context(), user, upd); err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			writeError(w, http.StatusBadRequest, "email already in use")
			return
		}
		log.Printf("ERROR updating user: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteMe handles DELETE /users/me.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		log.Printf("ERROR deleting user: %v", err)
		writeError(w, http.StatusInternalServerError, "something went wrong")
		return
	}

	h.mail.SendCancellation(user.Email, user.Name)

	writeJSON(w, http.StatusOK, user)
}

// parseUserUpdate interprets an allow-listed body into a typed update and
// validates each present field. ok is false when a value has the wrong
// JSON type.
func parseUserUpdate(body map[string]json.RawMessage) (services.UserUpdate, validator.ValidationErrors, bool) {
	var upd services.UserUpdate
	errs := make(validator.ValidationErrors)

	if raw, present := body["name"]; present {
		var name string
		if err := json.Unmarshal(raw, &name); err != nil {
			return services.UserUpdate{}, nil, false
		}
		validator.ValidateName(name, errs)
		upd.Name = &name
	}
	if raw, present := body["email"]; present {
		var email string
		if err := json.Unmarshal(raw, &email); err != nil {
			return services.UserUpdate{}, nil, false
		}
		validator.ValidateEmail(email, errs)
		upd.Email = &email
	}
	if raw, present := body["password"]; present {
		var password string
		if err := json.Unmarshal(raw, &password); err != nil {
			return services.UserUpdate{}, nil, false
		}
		validator.ValidatePassword(password, errs)
		upd.Password = &password
	}
	if raw, present := body["age"]; present {
		var age int
		if err := json.Unmarshal(raw, &age); err != nil {
			return services.UserUpdate{}, nil, false
		}
		validator.ValidateAge(age, errs)
		upd.Age = &age
	}

	return upd, errs, true
}
