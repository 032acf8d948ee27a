package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/services/reservations"
	"github.com/ristora/fronthouse/services/staff"
)

func (h *Handler) reservationRoutes(r *mux.Router) {
	r.HandleFunc("/reservations", h.require(staff.PermReservations, h.listReservations)).Methods(http.MethodGet)
	r.HandleFunc("/reservations", h.require(staff.PermReservations, h.createReservation)).Methods(http.MethodPost)
	r.HandleFunc("/reservations/{id}", h.require(staff.PermReservations, h.getReservation)).Methods(http.MethodGet)
	r.HandleFunc("/reservations/{id}", h.require(staff.PermReservations, h.updateReservation)).Methods(http.MethodPut)
	r.HandleFunc("/reservations/{id}", h.require(staff.PermReservations, h.deleteReservation)).Methods(http.MethodDelete)
	r.HandleFunc("/reservations/{id}/status", h.require(staff.PermReservations, h.setReservationStatus)).Methods(http.MethodPut)
}

func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	list, err := h.services.Reservations.List(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createReservation(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	var input reservations.Input
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	reservation, err := h.services.Reservations.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (h *Handler) getReservation(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	reservation, err := h.services.Reservations.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) updateReservation(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var input reservations.Input
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	reservation, err := h.services.Reservations.Update(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *Handler) deleteReservation(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.services.Reservations.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setReservationStatus(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Status reservations.Status `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	reservation, err := h.services.Reservations.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}
