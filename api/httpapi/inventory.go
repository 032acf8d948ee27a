package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/services/inventory"
	"github.com/ristora/fronthouse/services/staff"
)

func (h *Handler) inventoryRoutes(r *mux.Router) {
	r.HandleFunc("/inventory/items", h.require(staff.PermOrders, h.listInventory)).Methods(http.MethodGet)
	r.HandleFunc("/inventory/items/{id}/movements", h.require(staff.PermOrders, h.listMovements)).Methods(http.MethodGet)
	r.HandleFunc("/inventory/low-stock", h.require(staff.PermOrders, h.listLowStock)).Methods(http.MethodGet)

	r.HandleFunc("/inventory/items", h.require(staff.PermInventoryWrite, h.createInventoryItem)).Methods(http.MethodPost)
	r.HandleFunc("/inventory/items/{id}", h.require(staff.PermInventoryWrite, h.updateInventoryItem)).Methods(http.MethodPut)
	r.HandleFunc("/inventory/items/{id}", h.require(staff.PermInventoryWrite, h.deleteInventoryItem)).Methods(http.MethodDelete)
	r.HandleFunc("/inventory/movements", h.require(staff.PermInventoryWrite, h.applyMovement)).Methods(http.MethodPost)
}

func (h *Handler) listInventory(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	items, err := h.services.Inventory.ListItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) listLowStock(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	items, err := h.services.Inventory.LowStockItems(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) createInventoryItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	var input inventory.ItemInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := h.services.Inventory.CreateItem(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) updateInventoryItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var input inventory.ItemInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := h.services.Inventory.UpdateItem(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) deleteInventoryItem(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.services.Inventory.DeleteItem(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) applyMovement(w http.ResponseWriter, r *http.Request, actor *staff.Profile) {
	var input inventory.MovementInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	movement, err := h.services.Inventory.ApplyMovement(r.Context(), actor.ID, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, movement)
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	movements, err := h.services.Inventory.Movements(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}
