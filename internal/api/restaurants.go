package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/jedilnik/internal/auth"
	"github.com/erazemk/jedilnik/internal/events"
	"github.com/erazemk/jedilnik/internal/menu"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/source"
	"github.com/erazemk/jedilnik/internal/store"
)

// RestaurantsHandler handles restaurant endpoints.
type RestaurantsHandler struct {
	DB         *sql.DB
	Events     *events.Bus
	Categories source.CategorySource
}

type restaurantRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Address     string   `json:"address" validate:"max=500"`
	Phone       string   `json:"phone" validate:"max=50"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Image       string   `json:"image"`
	Website     string   `json:"website" validate:"omitempty,url"`
	IsActive    *bool    `json:"is_active"`
	CustomTypes []string `json:"custom_types" validate:"max=100,dive,max=100"`
	MongoURI    string   `json:"mongo_uri" validate:"max=2000"`
}

func (req restaurantRequest) apply(r *model.Restaurant) {
	r.Name = req.Name
	r.Description = req.Description
	r.Address = req.Address
	r.Phone = req.Phone
	r.Email = req.Email
	r.Image = req.Image
	r.Website = req.Website
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	r.CustomTypes = menu.CleanLabels(req.CustomTypes)
	r.MongoURI = req.MongoURI
}

type customTypesRequest struct {
	CustomTypes []string `json:"custom_types" validate:"max=100,dive,max=100"`
}

// List handles GET /api/restaurants. Admins only see their own restaurant.
func (h *RestaurantsHandler) List(w http.ResponseWriter, r *http.Request) {
	s := auth.SessionFrom(r.Context())

	if !s.IsMaster() {
		restaurants := []model.Restaurant{}
		if s.Claims.RestaurantID != nil {
			restaurant, err := store.GetRestaurant(r.Context(), h.DB, *s.Claims.RestaurantID)
			if err != nil {
				slog.Error("failed to get restaurant", "error", err)
				jsonError(w, http.StatusInternalServerError, "failed to list restaurants")
				return
			}
			if restaurant != nil {
				restaurants = append(restaurants, *restaurant)
			}
		}
		jsonResponse(w, http.StatusOK, restaurants)
		return
	}

	restaurants, err := store.ListRestaurants(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list restaurants", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list restaurants")
		return
	}
	if restaurants == nil {
		restaurants = []model.Restaurant{}
	}
	jsonResponse(w, http.StatusOK, restaurants)
}

// Create handles POST /api/restaurants.
func (h *RestaurantsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req restaurantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	restaurant := model.Restaurant{IsActive: true}
	req.apply(&restaurant)

	created, err := store.CreateRestaurant(r.Context(), h.DB, restaurant)
	if err != nil {
		slog.Error("failed to create restaurant", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create restaurant")
		return
	}

	slog.Info("restaurant created", "user", auth.SessionFrom(r.Context()).Claims.Username, "restaurant", created.Name)
	publish(h.Events, events.RestaurantChanged, created.ID)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/restaurants/{id}.
func (h *RestaurantsHandler) Get(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}
	jsonResponse(w, http.StatusOK, restaurant)
}

// Update handles PUT /api/restaurants/{id}. Only masters may change the
// external source link.
func (h *RestaurantsHandler) Update(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	var req restaurantRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s := auth.SessionFrom(r.Context())
	if !s.IsMaster() {
		req.MongoURI = restaurant.MongoURI
	}
	req.apply(restaurant)

	if err := store.UpdateRestaurant(r.Context(), h.DB, *restaurant); err != nil {
		slog.Error("failed to update restaurant", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update restaurant")
		return
	}

	updated, _ := store.GetRestaurant(r.Context(), h.DB, restaurant.ID)
	slog.Info("restaurant updated", "user", s.Claims.Username, "restaurant", restaurant.Name)
	publish(h.Events, events.RestaurantChanged, restaurant.ID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/restaurants/{id}.
func (h *RestaurantsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	if err := store.DeleteRestaurant(r.Context(), h.DB, restaurant.ID); err != nil {
		slog.Error("failed to delete restaurant", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete restaurant")
		return
	}

	slog.Info("restaurant deleted", "user", auth.SessionFrom(r.Context()).Claims.Username, "restaurant", restaurant.Name)
	publish(h.Events, events.RestaurantChanged, restaurant.ID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "restaurant deleted"})
}

// SetCustomTypes handles PUT /api/restaurants/{id}/custom-types.
func (h *RestaurantsHandler) SetCustomTypes(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	var req customTypesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	types := menu.CleanLabels(req.CustomTypes)
	if err := store.SetCustomTypes(r.Context(), h.DB, restaurant.ID, types); err != nil {
		slog.Error("failed to set custom types", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to set custom types")
		return
	}

	restaurant.CustomTypes = types
	publish(h.Events, events.RestaurantChanged, restaurant.ID)
	jsonResponse(w, http.StatusOK, restaurant)
}

// RefreshCategories handles POST /api/restaurants/{id}/refresh-categories.
// It reads the labels the linked external menu uses, title-cases them and
// stores them as the restaurant's custom types.
func (h *RestaurantsHandler) RefreshCategories(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}
	if !restaurant.HasExternalSource() {
		jsonError(w, http.StatusBadRequest, "restaurant has no external menu source")
		return
	}

	raw, err := h.Categories.Categories(r.Context(), restaurant.MongoURI)
	if err != nil {
		slog.Warn("failed to read external categories", "restaurant", restaurant.ID, "error", err)
		jsonError(w, http.StatusBadGateway, "failed to read external menu source")
		return
	}

	categories := menu.DeriveCategories(raw)
	if categories == nil {
		categories = []string{}
	}
	if err := store.SetCustomTypes(r.Context(), h.DB, restaurant.ID, categories); err != nil {
		slog.Error("failed to store refreshed categories", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to store categories")
		return
	}

	slog.Info("categories refreshed", "restaurant", restaurant.Name, "count", len(categories))
	publish(h.Events, events.CategoriesRefreshed, restaurant.ID)
	jsonResponse(w, http.StatusOK, map[string]any{"categories": categories})
}
