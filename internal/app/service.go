package app

import "context"

// ApplicationService is the single interface all transport adapters call.
// It decouples presentation from business logic. Implementations must contain
// no HTTP types, no status codes, and no display logic of any kind.
type ApplicationService interface {
	// OrderLineCreated reserves stock for a new order line, splitting the
	// quantity across warehouses proportionally to their free stock.
	// Redelivery of the same order line ID returns the existing reservations
	// in whatever status they have reached; a released or consumed line is
	// never re-reserved.
	OrderLineCreated(ctx context.Context, req OrderLineCreatedRequest) (*ReservationResult, error)

	// OrderLineRemoved releases every open reservation for the order line and
	// returns the quantity to free stock. Unknown order lines are a no-op.
	OrderLineRemoved(ctx context.Context, tenantCode, orderLineID string) error

	// OrderLineFulfilled consumes every open reservation for the order line,
	// drawing down on-hand stock. Unknown order lines are a no-op.
	OrderLineFulfilled(ctx context.Context, tenantCode, orderLineID string) error

	// ApplyAdjustment records a manual stock correction for one warehouse,
	// clamping on-hand at zero. Returns the adjustment with the applied delta.
	ApplyAdjustment(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error)

	// ApplyTransfer moves free stock between two warehouses of the same tenant.
	ApplyTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error)

	// ReceiveStock records a goods receipt: increases on-hand quantity and
	// folds the receipt cost into the item's weighted-average unit cost.
	ReceiveStock(ctx context.Context, req ReceiveStockRequest) error

	// CreateWarehouse registers a new active warehouse for a tenant.
	CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResult, error)

	// ListWarehouses returns all active warehouses for a tenant.
	ListWarehouses(ctx context.Context, tenantCode string) (*WarehouseListResult, error)

	// CreateVariant registers a new sellable variant for a tenant.
	CreateVariant(ctx context.Context, req CreateVariantRequest) (*VariantResult, error)

	// GetStockLevels returns current per-warehouse quantities for every
	// stocked variant of a tenant.
	GetStockLevels(ctx context.Context, tenantCode string) (*StockLevelsResult, error)

	// GetAvailability returns the tenant-wide gross and net availability for
	// one variant. Gross sums on-hand; net subtracts open reservations.
	GetAvailability(ctx context.Context, tenantCode, sku string) (*AvailabilityResult, error)

	// ListLedger returns audit trail entries newest first, filtered and
	// paginated per the request.
	ListLedger(ctx context.Context, tenantCode string, req LedgerQueryRequest) (*LedgerResult, error)

	// ListReservations returns all reservations for one order line in any
	// status.
	ListReservations(ctx context.Context, tenantCode, orderLineID string) (*ReservationResult, error)
}
