package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/services/menu"
	"github.com/ristora/fronthouse/services/staff"
)

func (h *Handler) menuRoutes(r *mux.Router) {
	// Reads are open to every staff role.
	r.HandleFunc("/menu/categories", h.require(staff.PermOrders, h.listCategories)).Methods(http.MethodGet)
	r.HandleFunc("/menu/items", h.require(staff.PermOrders, h.listMenuItems)).Methods(http.MethodGet)
	r.HandleFunc("/menu/items/{id}", h.require(staff.PermOrders, h.getMenuItem)).Methods(http.MethodGet)
	r.HandleFunc("/menu/items/{id}/availability", h.require(staff.PermOrders, h.checkAvailability)).Methods(http.MethodGet)

	// Catalog and recipe writes need the menu permission.
	r.HandleFunc("/menu/categories", h.require(staff.PermMenuWrite, h.createCategory)).Methods(http.MethodPost)
	r.HandleFunc("/menu/categories/{id}", h.require(staff.PermMenuWrite, h.updateCategory)).Methods(http.MethodPut)
	r.HandleFunc("/menu/categories/{id}", h.require(staff.PermMenuWrite, h.deleteCategory)).Methods(http.MethodDelete)
	r.HandleFunc("/menu/items", h.require(staff.PermMenuWrite, h.createMenuItem)).Methods(http.MethodPost)
	r.HandleFunc("/menu/items/{id}", h.require(staff.PermMenuWrite, h.updateMenuItem)).Methods(http.MethodPut)
	r.HandleFunc("/menu/items/{id}", h.require(staff.PermMenuWrite, h.deleteMenuItem)).Methods(http.MethodDelete)
	r.HandleFunc("/menu/items/{id}/recipe", h.require(staff.PermMenuWrite, h.getRecipe)).Methods(http.MethodGet)
	r.HandleFunc("/menu/items/{id}/recipe", h.require(staff.PermMenuWrite, h.setRecipe)).Methods(http.MethodPut)
	r.HandleFunc("/menu/availability/recompute", h.require(staff.PermMenuWrite, h.recomputeAvailability)).Methods(http.MethodPost)
	r.HandleFunc("/menu/low-stock", h.require(staff.PermMenuWrite, h.lowStockAffectingMenu)).Methods(http.MethodGet)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	categories, err := h.services.Menu.ListCategories(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	var input menu.CategoryInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	category, err := h.services.Menu.CreateCategory(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var input menu.CategoryInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	category, err := h.services.Menu.UpdateCategory(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.services.Menu.DeleteCategory(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listMenuItems(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	items, err := h.services.Menu.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) getMenuItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	item, err := h.services.Menu.GetItem(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	var input menu.ItemInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := h.services.Menu.CreateItem(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var input menu.ItemInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := h.services.Menu.UpdateItem(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.services.Menu.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getRecipe(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	lines, err := h.services.Menu.Recipe(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func (h *Handler) setRecipe(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Lines []menu.NewRecipeLine `json:"lines"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	if err := h.services.Menu.SetRecipe(r.Context(), id, payload.Lines); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) checkAvailability(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	result, err := h.services.Menu.CheckAvailability(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) recomputeAvailability(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	if err := h.services.Menu.RecomputeAllAvailability(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) lowStockAffectingMenu(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	impacts, err := h.services.Menu.LowStockAffectingMenu(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, impacts)
}
