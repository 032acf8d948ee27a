// Package httpapi exposes the front-of-house services as a JSON REST
// API.
package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ristora/fronthouse/internal/cache"
	"github.com/ristora/fronthouse/internal/errors"
	"github.com/ristora/fronthouse/internal/logging"
	"github.com/ristora/fronthouse/internal/middleware"
	"github.com/ristora/fronthouse/services/floor"
	"github.com/ristora/fronthouse/services/inventory"
	"github.com/ristora/fronthouse/services/menu"
	"github.com/ristora/fronthouse/services/orders"
	"github.com/ristora/fronthouse/services/reservations"
	"github.com/ristora/fronthouse/services/staff"
	"github.com/ristora/fronthouse/supabase/client"
)

// Auth is the sign-in surface the handler needs. The Supabase auth
// client satisfies it.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*client.AuthResponse, error)
	SignOut(ctx context.Context, accessToken string) error
}

// Services bundles the domain services behind the API.
type Services struct {
	Floor        *floor.Service
	Orders       *orders.Service
	Menu         *menu.Service
	Inventory    *inventory.Service
	Reservations *reservations.Service
	Staff        *staff.Service
}

// Handler serves the REST API.
type Handler struct {
	services Services
	auth     Auth
	cache    *cache.Collections
	logger   *logging.Logger
}

// NewHandler creates the API handler.
func NewHandler(services Services, auth Auth, cc *cache.Collections, logger *logging.Logger) *Handler {
	return &Handler{services: services, auth: auth, cache: cc, logger: logger}
}

// Routes registers every endpoint on a router.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)

	h.floorRoutes(r)
	h.orderRoutes(r)
	h.menuRoutes(r)
	h.inventoryRoutes(r)
	h.reservationRoutes(r)
	h.staffRoutes(r)

	r.HandleFunc("/state/{collection}", h.collectionState).Methods(http.MethodGet)
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// collectionState serves the cached snapshot of one collection, with
// its version stamp, for dashboards that poll instead of subscribing.
func (h *Handler) collectionState(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["collection"]
	snapshot, ok := h.cache.Get(name)
	if !ok {
		writeServiceError(w, errors.NotFound("no snapshot for collection "+name))
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// =============================================================================
// Access control
// =============================================================================

// actor resolves the caller's staff profile, creating it on first
// login.
func (h *Handler) actor(r *http.Request) (*staff.Profile, error) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	return h.services.Staff.CurrentProfile(r.Context(), user.ID, user.Email)
}

// require wraps a handler with a permission check against the caller's
// role.
func (h *Handler) require(perm staff.Permission, next func(w http.ResponseWriter, r *http.Request, actor *staff.Profile)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := h.actor(r)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if !staff.Can(actor.Role, perm) {
			h.logger.LogSecurityEvent(r.Context(), "permission_denied", map[string]any{
				"role":       actor.Role,
				"permission": perm,
				"path":       r.URL.Path,
			})
			writeServiceError(w, errors.Forbidden("role "+string(actor.Role)+" lacks "+string(perm)))
			return
		}
		next(w, r, actor)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func decodeJSON(body io.ReadCloser, dst any) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeServiceError(w http.ResponseWriter, err error) {
	serr := errors.Wrap(err, "request failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": serr.Message,
		"code":  serr.Code,
	})
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeServiceError(w, errors.InvalidInput(err.Error()))
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.InvalidInput("invalid id in path")
	}
	return id, nil
}
