package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/services/floor"
	"github.com/ristora/fronthouse/services/staff"
)

func (h *Handler) floorRoutes(r *mux.Router) {
	r.HandleFunc("/tables", h.require(staff.PermFloor, h.listTables)).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.require(staff.PermFloor, h.createTable)).Methods(http.MethodPost)
	r.HandleFunc("/tables/{id}", h.require(staff.PermFloor, h.getTable)).Methods(http.MethodGet)
	r.HandleFunc("/tables/{id}", h.require(staff.PermFloor, h.updateTable)).Methods(http.MethodPut)
	r.HandleFunc("/tables/{id}", h.require(staff.PermFloor, h.deleteTable)).Methods(http.MethodDelete)
	r.HandleFunc("/tables/{id}/status", h.require(staff.PermFloor, h.setTableStatus)).Methods(http.MethodPut)
	r.HandleFunc("/tables/{id}/position", h.require(staff.PermFloor, h.moveTable)).Methods(http.MethodPut)
	r.HandleFunc("/tables/{id}/notes", h.require(staff.PermFloor, h.updateTableNotes)).Methods(http.MethodPut)
	r.HandleFunc("/tables/{id}/merge", h.require(staff.PermFloor, h.mergeTables)).Methods(http.MethodPost)
	r.HandleFunc("/tables/{id}/unmerge", h.require(staff.PermFloor, h.unmergeTables)).Methods(http.MethodPost)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	tables, err := h.services.Floor.ListTables(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tables)
}

func (h *Handler) createTable(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	var input floor.CreateTableInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	table, err := h.services.Floor.CreateTable(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, table)
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	table, err := h.services.Floor.GetTable(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) updateTable(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var input floor.UpdateTableInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	table, err := h.services.Floor.UpdateTable(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := h.services.Floor.DeleteTable(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setTableStatus(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Status floor.TableStatus `json:"status"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	table, err := h.services.Floor.SetStatus(r.Context(), id, payload.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) moveTable(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		X float64 `json:"x_position"`
		Y float64 `json:"y_position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	table, err := h.services.Floor.Move(r.Context(), id, payload.X, payload.Y)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) updateTableNotes(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	table, err := h.services.Floor.UpdateNotes(r.Context(), id, payload.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) mergeTables(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	var payload struct {
		MemberIDs []int64 `json:"member_ids"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	table, err := h.services.Floor.Merge(r.Context(), id, payload.MemberIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (h *Handler) unmergeTables(w http.ResponseWriter, r *http.Request, _ *staff.Profile) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	table, err := h.services.Floor.Unmerge(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
