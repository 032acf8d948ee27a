package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/services/orders"
	"github.com/ristora/fronthouse/services/staff"
)

func (h *Handler) orderRoutes(r *mux.Router) {
	r.HandleFunc("/orders", h.require(staff.PermOrders, h.listOrders)).Methods(http.MethodGet)
	r.HandleFunc("/orders", h.require(staff.PermOrders, h.createOrder)).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}", h.require(staff.PermOrders, h.getOrder)).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.require(staff.PermOrders, h.deleteOrder)).Methods(http.MethodDelete)
	r.HandleFunc("/orders/{id}/items", h.require(staff.PermOrders, h.addOrderItems)).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}/status", h.require(staff.PermOrders, h.setOrderStatus)).Methods(http.MethodPut)
	r.HandleFunc("/orders/{id}/close", h.require(staff.PermOrders, h.closeBill)).Methods(http.MethodPost)
	r.HandleFunc("/order-items/{id}/status", h.require(staff.PermOrders, h.setOrderItemStatus)).Methods(http.MethodPut)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	if raw := r.URL.Query().Get("table_id"); raw != "" {
		tableID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeBadRequest(w, err)
			return
		}
		list, err := h.services.Orders.ListByTable(r.Context(), tableID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	list, err := h.services.Orders.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, actor *staff.Profile) {
	var payload struct {
		TableID int64            `json:"table_id"`
		Notes   string           `json:"notes"`
		Items   []orders.NewItem `json:"items"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}

	order, err := h.services.Orders.Create(r.Context(), actor.ID, payload.TableID, payload.Notes, payload.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := h.services.Orders.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.services.Orders.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addOrderItems(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Items []orders.NewItem `json:"items"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	order, err := h.services.Orders.AddItems(r.Context(), id, payload.Items)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) setOrderStatus(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Status orders.OrderStatus `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	order, err := h.services.Orders.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) setOrderItemStatus(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Status orders.ItemStatus `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	item, err := h.services.Orders.SetItemStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) closeBill(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	order, err := h.services.Orders.CloseBill(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
