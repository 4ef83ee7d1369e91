package app

import (
	"github.com/shopspring/decimal"
)

// OrderLineCreatedRequest is the input for reserving stock against an order line.
type OrderLineCreatedRequest struct {
	TenantCode         string
	OrderLineID        string
	VariantSKU         string
	Qty                int64
	PreferredWarehouse string // optional warehouse code to favor
	AllowBackorder     bool
}

// AdjustmentRequest is the input for a manual stock correction.
type AdjustmentRequest struct {
	TenantCode    string
	WarehouseCode string
	VariantSKU    string
	QtyDelta      int64
	Kind          string // "adjustment" (default) or "correction"
	Reason        string
}

// TransferRequest is the input for moving stock between warehouses.
type TransferRequest struct {
	TenantCode      string
	VariantSKU      string
	SourceCode      string
	DestinationCode string
	Qty             int64
	Note            string
}

// ReceiveStockRequest is the input for recording a goods receipt.
type ReceiveStockRequest struct {
	TenantCode    string
	WarehouseCode string
	VariantSKU    string
	Qty           int64
	UnitCost      decimal.Decimal
	Note          string
}

// CreateWarehouseRequest is the input for registering a warehouse.
type CreateWarehouseRequest struct {
	TenantCode string
	Code       string
	Name       string
	StoreCode  *string
}

// CreateVariantRequest is the input for registering a variant.
type CreateVariantRequest struct {
	TenantCode string
	SKU        string
	Name       string
}

// LedgerQueryRequest narrows and paginates the audit trail. All fields are
// optional; date bounds use YYYY-MM-DD.
type LedgerQueryRequest struct {
	VariantSKU    string
	WarehouseCode string
	Reason        string
	FromDate      string
	ToDate        string
	Page          int
	PageSize      int
}
