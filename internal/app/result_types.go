package app

import "vendora-inventory/internal/core"

// ReservationResult is returned by OrderLineCreated and ListReservations.
type ReservationResult struct {
	OrderLineID  string
	Reservations []core.StockReservation
}

// AdjustmentResult is returned by ApplyAdjustment.
type AdjustmentResult struct {
	Adjustment *core.StockAdjustment
}

// TransferResult is returned by ApplyTransfer.
type TransferResult struct {
	Transfer *core.StockTransfer
}

// WarehouseResult is returned by CreateWarehouse.
type WarehouseResult struct {
	Warehouse *core.Warehouse
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.Warehouse
}

// VariantResult is returned by CreateVariant.
type VariantResult struct {
	Variant *core.Variant
}

// StockLevelsResult is returned by GetStockLevels.
type StockLevelsResult struct {
	Levels     []core.StockLevel
	TenantCode string
}

// AvailabilityResult is returned by GetAvailability.
type AvailabilityResult struct {
	VariantSKU   string
	Available    int64 // sum of on-hand across warehouses
	AvailableNet int64 // on-hand minus open reservations
}

// LedgerResult is returned by ListLedger.
type LedgerResult struct {
	Entries  []core.LedgerEntry
	Total    int
	Page     int
	PageSize int
}
