package api

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/jedilnik/internal/auth"
	"github.com/erazemk/jedilnik/internal/events"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/store"
)

// UsersHandler handles admin account management (master only).
type UsersHandler struct {
	DB     *sql.DB
	Events *events.Bus
}

type createUserRequest struct {
	Username     string `json:"username" validate:"required,max=64"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password" validate:"required"`
	Role         string `json:"role" validate:"omitempty,oneof=master admin"`
	RestaurantID *int64 `json:"assigned_restaurant"`
}

// updateUserRequest replaces username, email and assignment. A null
// assigned_restaurant unassigns the user; an empty password keeps the old one.
type updateUserRequest struct {
	Username     string `json:"username" validate:"required,max=64"`
	Email        string `json:"email" validate:"omitempty,email"`
	Password     string `json:"password"`
	RestaurantID *int64 `json:"assigned_restaurant"`
}

// List handles GET /api/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list users", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, users)
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.Role == "" {
		req.Role = model.RoleAdmin
	}

	if err := model.ValidatePassword(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.checkAssignment(r.Context(), req.RestaurantID); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Username, req.Email, string(hash), req.Role, req.RestaurantID)
	if err != nil {
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}

	s := auth.SessionFrom(r.Context())
	slog.Info("user created", "user", s.Claims.Username, "new_user", req.Username, "role", req.Role)
	publish(h.Events, events.UsersChanged, 0)
	jsonResponse(w, http.StatusCreated, user)
}

// Update handles PATCH /api/users/{id}.
func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	target, err := store.GetUser(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if target == nil || target.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.checkAssignment(r.Context(), req.RestaurantID); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var hash []byte
	if req.Password != "" {
		if err := model.ValidatePassword(req.Password); err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
		if hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost); err != nil {
			jsonError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
	}

	if err := store.UpdateUser(r.Context(), h.DB, id, req.Username, req.Email, req.RestaurantID); err != nil {
		slog.Error("failed to update user", "error", err)
		jsonError(w, http.StatusConflict, "username already exists")
		return
	}
	if hash != nil {
		if err := store.UpdateUserPassword(r.Context(), h.DB, id, string(hash)); err != nil {
			slog.Error("failed to update password", "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to update password")
			return
		}
	}

	user, _ := store.GetUser(r.Context(), h.DB, id)
	s := auth.SessionFrom(r.Context())
	slog.Info("user updated", "user", s.Claims.Username, "target_user", req.Username, "password_changed", hash != nil)
	publish(h.Events, events.UsersChanged, 0)
	jsonResponse(w, http.StatusOK, user)
}

// Delete handles DELETE /api/users/{id}.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id", "user")
	if !ok {
		return
	}

	// Prevent self-deletion.
	s := auth.SessionFrom(r.Context())
	if s.Claims.UserID == id {
		jsonError(w, http.StatusBadRequest, "cannot delete yourself")
		return
	}

	target, _ := store.GetUser(r.Context(), h.DB, id)
	if target == nil || target.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := store.DeleteUser(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete user", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	slog.Info("user deleted", "user", s.Claims.Username, "deleted_user", target.Username)
	publish(h.Events, events.UsersChanged, 0)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// checkAssignment verifies that an assigned restaurant exists.
func (h *UsersHandler) checkAssignment(ctx context.Context, restaurantID *int64) error {
	if restaurantID == nil {
		return nil
	}
	restaurant, err := store.GetRestaurant(ctx, h.DB, *restaurantID)
	if err != nil {
		return fmt.Errorf("checking restaurant: %w", err)
	}
	if restaurant == nil {
		return fmt.Errorf("restaurant %d not found", *restaurantID)
	}
	return nil
}
