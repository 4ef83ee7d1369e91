package web

import (
	"net/http"
	"strconv"

	"vendora-inventory/internal/app"

	"github.com/go-chi/chi/v5"
)

// createWarehouse handles POST /api/warehouses.
// Body: { code, name, store_code? }
func (h *Handler) createWarehouse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code      string  `json:"code"`
		Name      string  `json:"name"`
		StoreCode *string `json:"store_code"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateWarehouse(r.Context(), app.CreateWarehouseRequest{
		TenantCode: tenantCode(r),
		Code:       body.Code,
		Name:       body.Name,
		StoreCode:  body.StoreCode,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Warehouse)
}

// listWarehouses handles GET /api/warehouses.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListWarehouses(r.Context(), tenantCode(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Warehouses)
}

// createVariant handles POST /api/variants.
// Body: { sku, name }
func (h *Handler) createVariant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SKU  string `json:"sku"`
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.CreateVariant(r.Context(), app.CreateVariantRequest{
		TenantCode: tenantCode(r),
		SKU:        body.SKU,
		Name:       body.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Variant)
}

// stockLevels handles GET /api/stock.
func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetStockLevels(r.Context(), tenantCode(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Levels)
}

// availability handles GET /api/availability/{sku}.
func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	result, err := h.svc.GetAvailability(r.Context(), tenantCode(r), sku)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		VariantSKU string `json:"variant_sku"`
		Available  int64  `json:"available"`
	}
	writeJSON(w, response{VariantSKU: result.VariantSKU, Available: result.Available})
}

// availabilityNet handles GET /api/availability/{sku}/net.
func (h *Handler) availabilityNet(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	result, err := h.svc.GetAvailability(r.Context(), tenantCode(r), sku)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		VariantSKU   string `json:"variant_sku"`
		AvailableNet int64  `json:"available_net"`
	}
	writeJSON(w, response{VariantSKU: result.VariantSKU, AvailableNet: result.AvailableNet})
}

// listLedger handles GET /api/ledger.
// Query: variant_sku, warehouse_code, reason, from, to (YYYY-MM-DD), page, page_size.
func (h *Handler) listLedger(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	result, err := h.svc.ListLedger(r.Context(), tenantCode(r), app.LedgerQueryRequest{
		VariantSKU:    q.Get("variant_sku"),
		WarehouseCode: q.Get("warehouse_code"),
		Reason:        q.Get("reason"),
		FromDate:      q.Get("from"),
		ToDate:        q.Get("to"),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		Entries  any `json:"entries"`
		Total    int `json:"total"`
		Page     int `json:"page"`
		PageSize int `json:"page_size"`
	}
	writeJSON(w, response{Entries: result.Entries, Total: result.Total, Page: result.Page, PageSize: result.PageSize})
}

// listReservations handles GET /api/reservations?order_line_id=...
func (h *Handler) listReservations(w http.ResponseWriter, r *http.Request) {
	orderLineID := r.URL.Query().Get("order_line_id")
	if orderLineID == "" {
		writeError(w, r, "order_line_id query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	result, err := h.svc.ListReservations(r.Context(), tenantCode(r), orderLineID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result.Reservations)
}
