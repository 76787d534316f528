package api

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/jedilnik/internal/auth"
	"github.com/erazemk/jedilnik/internal/events"
	"github.com/erazemk/jedilnik/internal/menu"
	"github.com/erazemk/jedilnik/internal/metrics"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/sheet"
	"github.com/erazemk/jedilnik/internal/store"
)

// maxImportSize caps uploaded spreadsheets.
const maxImportSize = 10 << 20

// MenuHandler handles menu item endpoints and the derived menu view.
type MenuHandler struct {
	DB      *sql.DB
	Events  *events.Bus
	Metrics *metrics.Metrics
}

type menuItemRequest struct {
	Name        string      `json:"name" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=2000"`
	Price       model.Price `json:"price" validate:"max=32"`
	Category    string      `json:"category" validate:"max=100"`
	IsVeg       bool        `json:"is_veg"`
	Image       string      `json:"image"`
	IsAvailable *bool       `json:"is_available"`
}

func (req menuItemRequest) apply(item *model.MenuItem) {
	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.Category = req.Category
	item.IsVeg = req.IsVeg
	item.Image = req.Image
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}
}

type importResponse struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// View handles GET /api/restaurants/{id}/menu: the resolved categories, the
// filtered and sorted items, and their per-category buckets.
func (h *MenuHandler) View(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	q, err := menu.ParseQuery(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, ok := h.listItems(w, r, restaurant.ID)
	if !ok {
		return
	}

	if h.Metrics != nil {
		h.Metrics.MenuViews.Inc()
	}
	jsonResponse(w, http.StatusOK, menu.BuildView(*restaurant, items, q))
}

// List handles GET /api/restaurants/{id}/menu-items.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	items, ok := h.listItems(w, r, restaurant.ID)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/restaurants/{id}/menu-items.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	var req menuItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	item := model.MenuItem{RestaurantID: restaurant.ID, IsAvailable: true}
	req.apply(&item)

	created, err := store.CreateMenuItem(r.Context(), h.DB, item)
	if err != nil {
		slog.Error("failed to create menu item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}

	publish(h.Events, events.ItemsChanged, restaurant.ID)
	jsonResponse(w, http.StatusCreated, created)
}

// Get handles GET /api/menu-items/{id}.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item := h.loadItem(w, r)
	if item == nil {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/menu-items/{id}.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	item := h.loadItem(w, r)
	if item == nil {
		return
	}

	var req menuItemRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	req.apply(item)

	if err := store.UpdateMenuItem(r.Context(), h.DB, *item); err != nil {
		slog.Error("failed to update menu item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update menu item")
		return
	}

	updated, _ := store.GetMenuItem(r.Context(), h.DB, item.ID)
	publish(h.Events, events.ItemsChanged, item.RestaurantID)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/menu-items/{id}.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item := h.loadItem(w, r)
	if item == nil {
		return
	}

	if err := store.DeleteMenuItem(r.Context(), h.DB, item.ID); err != nil {
		slog.Error("failed to delete menu item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}

	publish(h.Events, events.ItemsChanged, item.RestaurantID)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

// Export handles GET /api/restaurants/{id}/menu-items/export. The view query
// parameters narrow and order the exported rows.
func (h *MenuHandler) Export(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	q, err := menu.ParseQuery(r.URL.Query())
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, ok := h.listItems(w, r, restaurant.ID)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := sheet.WriteMenu(&buf, menu.ExportRows(menu.FilterAndSort(items, q))); err != nil {
		slog.Error("failed to write export", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export menu")
		return
	}

	filename := sheet.ExportFilename(restaurant.Name, time.Now())
	w.Header().Set("Content-Type", sheet.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// Import handles POST /api/restaurants/{id}/menu-items/import. Rows that
// parse are stored together; the rest are reported back.
func (h *MenuHandler) Import(w http.ResponseWriter, r *http.Request) {
	restaurant := loadRestaurant(w, r, h.DB)
	if restaurant == nil {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "spreadsheet file required")
		return
	}
	defer file.Close()

	res, err := sheet.ReadMenu(file)
	if err != nil {
		if errors.Is(err, sheet.ErrMissingColumn) {
			jsonError(w, http.StatusBadRequest, err.Error())
		} else {
			jsonError(w, http.StatusBadRequest, "invalid spreadsheet")
		}
		return
	}

	rowErrors := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		rowErrors = append(rowErrors, e.Error())
	}

	if len(res.Items) == 0 {
		jsonResponse(w, http.StatusBadRequest, map[string]any{
			"error":  "no valid rows to import",
			"errors": rowErrors,
		})
		return
	}

	n, err := store.CreateMenuItems(r.Context(), h.DB, restaurant.ID, res.Items)
	if err != nil {
		slog.Error("failed to import menu items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to import menu items")
		return
	}

	slog.Info("menu imported", "user", auth.SessionFrom(r.Context()).Claims.Username,
		"restaurant", restaurant.Name, "imported", n, "skipped", len(rowErrors))
	publish(h.Events, events.ItemsChanged, restaurant.ID)
	jsonResponse(w, http.StatusOK, importResponse{Imported: n, Errors: rowErrors})
}

// loadItem fetches the menu item named by the {id} path value after checking
// the caller may access its restaurant.
func (h *MenuHandler) loadItem(w http.ResponseWriter, r *http.Request) *model.MenuItem {
	id, ok := pathID(w, r, "id", "menu item")
	if !ok {
		return nil
	}

	item, err := store.GetMenuItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get menu item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get menu item")
		return nil
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "menu item not found")
		return nil
	}
	// Items of a deleted restaurant are gone with it.
	if loadRestaurantByID(w, r, h.DB, item.RestaurantID) == nil {
		return nil
	}
	return item
}

func (h *MenuHandler) listItems(w http.ResponseWriter, r *http.Request, restaurantID int64) ([]model.MenuItem, bool) {
	items, err := store.ListMenuItems(r.Context(), h.DB, restaurantID)
	if err != nil {
		slog.Error("failed to list menu items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list menu items")
		return nil, false
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	return items, true
}
