package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/jedilnik/internal/events"
	"github.com/erazemk/jedilnik/internal/imaging"
	"github.com/erazemk/jedilnik/internal/metrics"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/source"
)

// Options configures the API router. Only DB and JWTSecret are required.
type Options struct {
	DB        *sql.DB
	JWTSecret string

	// Events receives data-changed signals. A private bus is used if nil.
	Events *events.Bus
	// Metrics, if set, is served at /metrics and fed by every request.
	Metrics *metrics.Metrics
	// Categories reads external menu categories. Defaults to MongoDB.
	Categories source.CategorySource
	// MaxUpload caps image uploads in bytes.
	MaxUpload int64
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(opts Options) http.Handler {
	if opts.Events == nil {
		opts.Events = &events.Bus{}
	}
	if opts.Categories == nil {
		opts.Categories = source.Mongo{}
	}
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = imaging.DefaultMaxBytes
	}

	db := opts.DB
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret}
	usersHandler := &UsersHandler{DB: db, Events: opts.Events}
	restaurantsHandler := &RestaurantsHandler{DB: db, Events: opts.Events, Categories: opts.Categories}
	menuHandler := &MenuHandler{DB: db, Events: opts.Events, Metrics: opts.Metrics}
	imagesHandler := &ImagesHandler{DB: db, MaxUpload: opts.MaxUpload}
	eventsHandler := &EventsHandler{DB: db, Events: opts.Events}

	authMW := AuthMiddleware(opts.JWTSecret, db)
	requireMaster := RequireRole(model.RoleMaster)

	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	master := func(h http.HandlerFunc) http.Handler { return authMW(requireMaster(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/images/{id}", imagesHandler.Get)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	// Session.
	mux.Handle("GET /api/auth/me", authed(authHandler.Me))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))

	// Users (master only).
	mux.Handle("GET /api/users", master(usersHandler.List))
	mux.Handle("POST /api/users", master(usersHandler.Create))
	mux.Handle("PATCH /api/users/{id}", master(usersHandler.Update))
	mux.Handle("DELETE /api/users/{id}", master(usersHandler.Delete))

	// Restaurants: admins see and edit only their assigned restaurant.
	mux.Handle("GET /api/restaurants", authed(restaurantsHandler.List))
	mux.Handle("POST /api/restaurants", master(restaurantsHandler.Create))
	mux.Handle("GET /api/restaurants/{id}", authed(restaurantsHandler.Get))
	mux.Handle("PUT /api/restaurants/{id}", authed(restaurantsHandler.Update))
	mux.Handle("DELETE /api/restaurants/{id}", master(restaurantsHandler.Delete))
	mux.Handle("PUT /api/restaurants/{id}/custom-types", authed(restaurantsHandler.SetCustomTypes))
	mux.Handle("POST /api/restaurants/{id}/refresh-categories", authed(restaurantsHandler.RefreshCategories))
	mux.Handle("GET /api/restaurants/{id}/events", authed(eventsHandler.Stream))

	// Menu.
	mux.Handle("GET /api/restaurants/{id}/menu", authed(menuHandler.View))
	mux.Handle("GET /api/restaurants/{id}/menu-items", authed(menuHandler.List))
	mux.Handle("POST /api/restaurants/{id}/menu-items", authed(menuHandler.Create))
	mux.Handle("GET /api/restaurants/{id}/menu-items/export", authed(menuHandler.Export))
	mux.Handle("POST /api/restaurants/{id}/menu-items/import", authed(menuHandler.Import))
	mux.Handle("GET /api/menu-items/{id}", authed(menuHandler.Get))
	mux.Handle("PUT /api/menu-items/{id}", authed(menuHandler.Update))
	mux.Handle("DELETE /api/menu-items/{id}", authed(menuHandler.Delete))

	// Images.
	mux.Handle("POST /api/upload-image", authed(imagesHandler.Upload))

	if opts.Metrics != nil {
		return MetricsMiddleware(opts.Metrics)(mux)
	}
	return mux
}
