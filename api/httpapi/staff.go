package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/middleware"
	"github.com/ristora/fronthouse/services/staff"
)

func (h *Handler) staffRoutes(r *mux.Router) {
	r.HandleFunc("/auth/signin", h.signIn).Methods(http.MethodPost)
	r.HandleFunc("/auth/signout", h.signOut).Methods(http.MethodPost)
	r.HandleFunc("/me", h.me).Methods(http.MethodGet)

	r.HandleFunc("/staff/waiters", h.require(staff.PermStaffAdmin, h.listWaiters)).Methods(http.MethodGet)
	r.HandleFunc("/staff/waiters", h.require(staff.PermStaffAdmin, h.createWaiter)).Methods(http.MethodPost)
	r.HandleFunc("/staff/waiters/{id}", h.require(staff.PermStaffAdmin, h.deleteWaiter)).Methods(http.MethodDelete)
	r.HandleFunc("/staff/{id}/role", h.require(staff.PermStaffAdmin, h.setRole)).Methods(http.MethodPut)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		writeServiceError(w, errors.InvalidInput("email and password are required"))
		return
	}

	session, err := h.auth.SignIn(r.Context(), payload.Email, payload.Password)
	if err != nil {
		writeServiceError(w, errors.Unauthorized("invalid credentials"))
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	if token == "" {
		writeServiceError(w, errors.Unauthorized("authentication required"))
		return
	}
	if err := h.auth.SignOut(r.Context(), token); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// me returns the caller's profile, creating it on first login.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.actor(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) listWaiters(w http.ResponseWriter, r *http.Request, actor *staff.Profile) {
	waiters, err := h.services.Staff.ListWaiters(r.Context(), actor.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, waiters)
}

func (h *Handler) createWaiter(w http.ResponseWriter, r *http.Request, actor *staff.Profile) {
	var input staff.NewWaiterInput
	if err := decodeJSON(r.Body, &input); err != nil {
		writeBadRequest(w, err)
		return
	}
	profile, err := h.services.Staff.CreateWaiter(r.Context(), actor.Role, input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) deleteWaiter(w http.ResponseWriter, r *http.Request, actor *staff.Profile) {
	id := mux.Vars(r)["id"]
	if err := h.services.Staff.DeleteWaiter(r.Context(), actor.Role, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request, actor *staff.Profile) {
	id := mux.Vars(r)["id"]
	var payload struct {
		Role staff.Role `json:"role"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeBadRequest(w, err)
		return
	}
	profile, err := h.services.Staff.SetRole(r.Context(), actor.Role, id, payload.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
