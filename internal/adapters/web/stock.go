package web

import (
	"net/http"

	"vendora-inventory/internal/app"

	"github.com/shopspring/decimal"
)

// orderLineCreated handles POST /api/events/order-line-created.
// Body: { order_line_id, variant_sku, qty, preferred_warehouse?, allow_backorder? }
// Redelivery of a known order_line_id returns the existing reservations with 200.
func (h *Handler) orderLineCreated(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderLineID        string `json:"order_line_id"`
		VariantSKU         string `json:"variant_sku"`
		Qty                int64  `json:"qty"`
		PreferredWarehouse string `json:"preferred_warehouse"`
		AllowBackorder     bool   `json:"allow_backorder"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.OrderLineCreated(r.Context(), app.OrderLineCreatedRequest{
		TenantCode:         tenantCode(r),
		OrderLineID:        body.OrderLineID,
		VariantSKU:         body.VariantSKU,
		Qty:                body.Qty,
		PreferredWarehouse: body.PreferredWarehouse,
		AllowBackorder:     body.AllowBackorder,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	type response struct {
		OrderLineID  string `json:"order_line_id"`
		Reservations any    `json:"reservations"`
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, response{OrderLineID: result.OrderLineID, Reservations: result.Reservations})
}

// orderLineRemoved handles POST /api/events/order-line-removed.
// Body: { order_line_id }
func (h *Handler) orderLineRemoved(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderLineID string `json:"order_line_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := h.svc.OrderLineRemoved(r.Context(), tenantCode(r), body.OrderLineID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "released"})
}

// orderLineFulfilled handles POST /api/events/order-line-fulfilled.
// Body: { order_line_id }
func (h *Handler) orderLineFulfilled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		OrderLineID string `json:"order_line_id"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	if err := h.svc.OrderLineFulfilled(r.Context(), tenantCode(r), body.OrderLineID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"status": "consumed"})
}

// createAdjustment handles POST /api/adjustments.
// Body: { warehouse_code, variant_sku, qty_delta, kind?, reason? }
func (h *Handler) createAdjustment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WarehouseCode string `json:"warehouse_code"`
		VariantSKU    string `json:"variant_sku"`
		QtyDelta      int64  `json:"qty_delta"`
		Kind          string `json:"kind"`
		Reason        string `json:"reason"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ApplyAdjustment(r.Context(), app.AdjustmentRequest{
		TenantCode:    tenantCode(r),
		WarehouseCode: body.WarehouseCode,
		VariantSKU:    body.VariantSKU,
		QtyDelta:      body.QtyDelta,
		Kind:          body.Kind,
		Reason:        body.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Adjustment)
}

// createTransfer handles POST /api/transfers.
// Body: { variant_sku, source_code, destination_code, qty, note? }
func (h *Handler) createTransfer(w http.ResponseWriter, r *http.Request) {
	var body struct {
		VariantSKU      string `json:"variant_sku"`
		SourceCode      string `json:"source_code"`
		DestinationCode string `json:"destination_code"`
		Qty             int64  `json:"qty"`
		Note            string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	result, err := h.svc.ApplyTransfer(r.Context(), app.TransferRequest{
		TenantCode:      tenantCode(r),
		VariantSKU:      body.VariantSKU,
		SourceCode:      body.SourceCode,
		DestinationCode: body.DestinationCode,
		Qty:             body.Qty,
		Note:            body.Note,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, result.Transfer)
}

// createReceipt handles POST /api/receipts.
// Body: { warehouse_code, variant_sku, qty, unit_cost?, note? }
func (h *Handler) createReceipt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		WarehouseCode string `json:"warehouse_code"`
		VariantSKU    string `json:"variant_sku"`
		Qty           int64  `json:"qty"`
		UnitCost      string `json:"unit_cost"`
		Note          string `json:"note"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}

	unitCost := decimal.Zero
	if body.UnitCost != "" {
		parsed, err := decimal.NewFromString(body.UnitCost)
		if err != nil {
			writeError(w, r, "invalid unit_cost", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		unitCost = parsed
	}

	err := h.svc.ReceiveStock(r.Context(), app.ReceiveStockRequest{
		TenantCode:    tenantCode(r),
		WarehouseCode: body.WarehouseCode,
		VariantSKU:    body.VariantSKU,
		Qty:           body.Qty,
		UnitCost:      unitCost,
		Note:          body.Note,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"status": "received"})
}
