package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"vendora-inventory/internal/app"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Tenant-scoped API (X-Tenant-ID header required) ──────────────────────
	r.Group(func(r chi.Router) {
		r.Use(RequireTenant)
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		// Order lifecycle events (at-least-once delivery; all idempotent)
		r.Post("/api/events/order-line-created", h.orderLineCreated)
		r.Post("/api/events/order-line-removed", h.orderLineRemoved)
		r.Post("/api/events/order-line-fulfilled", h.orderLineFulfilled)

		// Stock operations
		r.Post("/api/adjustments", h.createAdjustment)
		r.Post("/api/transfers", h.createTransfer)
		r.Post("/api/receipts", h.createReceipt)

		// Registry
		r.Post("/api/warehouses", h.createWarehouse)
		r.Get("/api/warehouses", h.listWarehouses)
		r.Post("/api/variants", h.createVariant)

		// Queries
		r.Get("/api/stock", h.stockLevels)
		r.Get("/api/availability/{sku}", h.availability)
		r.Get("/api/availability/{sku}/net", h.availabilityNet)
		r.Get("/api/ledger", h.listLedger)
		r.Get("/api/reservations", h.listReservations)
	})

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an
// appropriate error response on failure. Returns HTTP 413 when the body exceeds
// the size limit set by RequestBodyLimit middleware; HTTP 400 for all other
// decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
