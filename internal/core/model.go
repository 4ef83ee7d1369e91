package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Warehouse is a physical or virtual stock-holding location within a tenant.
type Warehouse struct {
	ID        int       `json:"id"`
	TenantID  int       `json:"tenant_id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	StoreCode *string   `json:"store_code,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Variant is a purchasable SKU. The catalog proper lives elsewhere; this is
// the minimal registry the stock engine needs to resolve and validate SKUs.
type Variant struct {
	ID        int       `json:"id"`
	TenantID  int       `json:"tenant_id"`
	SKU       string    `json:"sku"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// StockItem is the quantity state for one (tenant, warehouse, variant) triple.
// Rows are created lazily the first time an engine touches the triple and are
// mutated only by the engines, under row locks.
//
// Invariant: 0 <= QtyReserved <= QtyOnHand, except that a backordered
// reservation may push QtyReserved above QtyOnHand for its row.
type StockItem struct {
	ID          int             `json:"id"`
	TenantID    int             `json:"tenant_id"`
	WarehouseID int             `json:"warehouse_id"`
	VariantID   int             `json:"variant_id"`
	QtyOnHand   int64           `json:"qty_on_hand"`
	QtyReserved int64           `json:"qty_reserved"`
	UnitCost    decimal.Decimal `json:"unit_cost"` // weighted average receipt cost
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Available is the sellable quantity: on-hand minus reserved, floored at zero.
func (si StockItem) Available() int64 {
	if avail := si.QtyOnHand - si.QtyReserved; avail > 0 {
		return avail
	}
	return 0
}

type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "reserved"
	ReservationConsumed ReservationStatus = "consumed"
	ReservationReleased ReservationStatus = "released"
)

// StockReservation is a claim against a StockItem on behalf of one order line.
// Quantity never increases after creation.
type StockReservation struct {
	ID            int               `json:"id"`
	TenantID      int               `json:"tenant_id"`
	OrderLineID   string            `json:"order_line_id"`
	VariantID     int               `json:"variant_id"`
	VariantSKU    string            `json:"variant_sku"`
	WarehouseID   int               `json:"warehouse_id"`
	WarehouseCode string            `json:"warehouse_code"`
	Qty           int64             `json:"qty"`
	Status        ReservationStatus `json:"status"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

type LedgerReason string

const (
	ReasonAdjustment  LedgerReason = "adjustment"
	ReasonCorrection  LedgerReason = "correction"
	ReasonTransferOut LedgerReason = "transfer_out"
	ReasonTransferIn  LedgerReason = "transfer_in"
	ReasonReserve     LedgerReason = "reserve"
	ReasonConsume     LedgerReason = "consume"
	ReasonRelease     LedgerReason = "release"
	ReasonReceive     LedgerReason = "receive"
)

// LedgerEntry is one immutable row of the append-only stock audit trail.
// QtyDelta is zero for pure reserve/release events that leave on-hand alone.
// SnapshotAvailable records on-hand minus reserved for the touched item at
// write time.
type LedgerEntry struct {
	ID                int64        `json:"id"`
	TenantID          int          `json:"tenant_id"`
	VariantID         int          `json:"variant_id"`
	VariantSKU        string       `json:"variant_sku"`
	WarehouseID       *int         `json:"warehouse_id,omitempty"`
	WarehouseCode     *string      `json:"warehouse_code,omitempty"`
	QtyDelta          int64        `json:"qty_delta"`
	Reason            LedgerReason `json:"reason"`
	OrderLineID       *string      `json:"order_line_id,omitempty"`
	Note              *string      `json:"note,omitempty"`
	SnapshotAvailable int64        `json:"snapshot_available"`
	CreatedAt         time.Time    `json:"created_at"`
}

type AdjustmentKind string

const (
	AdjustmentCycleCount AdjustmentKind = "adjustment"
	AdjustmentCorrection AdjustmentKind = "correction"
)

// StockAdjustment is the command-audit record of a manual on-hand delta.
type StockAdjustment struct {
	ID            int            `json:"id"`
	TenantID      int            `json:"tenant_id"`
	WarehouseID   int            `json:"warehouse_id"`
	WarehouseCode string         `json:"warehouse_code"`
	VariantID     int            `json:"variant_id"`
	VariantSKU    string         `json:"variant_sku"`
	QtyDelta      int64          `json:"qty_delta"` // the applied delta, after any clamp
	Kind          AdjustmentKind `json:"kind"`
	Reason        string         `json:"reason"`
	CreatedAt     time.Time      `json:"created_at"`
}

// StockTransfer is the command-audit record of a warehouse-to-warehouse move,
// expressed in the ledger as a linked transfer_out/transfer_in pair.
type StockTransfer struct {
	ID              int       `json:"id"`
	TenantID        int       `json:"tenant_id"`
	VariantID       int       `json:"variant_id"`
	VariantSKU      string    `json:"variant_sku"`
	SourceID        int       `json:"source_id"`
	SourceCode      string    `json:"source_code"`
	DestinationID   int       `json:"destination_id"`
	DestinationCode string    `json:"destination_code"`
	Qty             int64     `json:"qty"`
	Status          string    `json:"status"`
	Note            string    `json:"note"`
	CreatedAt       time.Time `json:"created_at"`
}

// StockLevel is a read view of a stock item joined with variant and warehouse.
type StockLevel struct {
	VariantSKU    string          `json:"variant_sku"`
	VariantName   string          `json:"variant_name"`
	WarehouseCode string          `json:"warehouse_code"`
	WarehouseName string          `json:"warehouse_name"`
	OnHand        int64           `json:"on_hand"`
	Reserved      int64           `json:"reserved"`
	Available     int64           `json:"available"` // on-hand minus reserved (negative on backorder)
	UnitCost      decimal.Decimal `json:"unit_cost"`
}
