package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/jedilnik/internal/auth"
	"github.com/erazemk/jedilnik/internal/events"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/store"
)

// loadRestaurant fetches the restaurant named by the {id} path value after
// checking that the caller may access it. It writes the error response and
// returns nil on failure.
func loadRestaurant(w http.ResponseWriter, r *http.Request, db *sql.DB) *model.Restaurant {
	id, ok := pathID(w, r, "id", "restaurant")
	if !ok {
		return nil
	}
	return loadRestaurantByID(w, r, db, id)
}

func loadRestaurantByID(w http.ResponseWriter, r *http.Request, db *sql.DB, id int64) *model.Restaurant {
	if !auth.SessionFrom(r.Context()).CanAccess(id) {
		jsonError(w, http.StatusForbidden, "no access to this restaurant")
		return nil
	}

	restaurant, err := store.GetRestaurant(r.Context(), db, id)
	if err != nil {
		slog.Error("failed to get restaurant", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get restaurant")
		return nil
	}
	if restaurant == nil {
		jsonError(w, http.StatusNotFound, "restaurant not found")
		return nil
	}
	return restaurant
}

// publish announces a change on bus.
func publish(bus *events.Bus, kind events.Kind, restaurantID int64) {
	bus.Publish(events.Event{Kind: kind, RestaurantID: restaurantID})
}
