package app

import (
	"context"
	"fmt"
	"time"

	"vendora-inventory/internal/core"
)

type appService struct {
	stock     core.StockService
	ledger    core.LedgerService
	warehouse core.WarehouseService
}

// NewAppService constructs an appService that satisfies ApplicationService.
func NewAppService(
	stock core.StockService,
	ledger core.LedgerService,
	warehouse core.WarehouseService,
) ApplicationService {
	return &appService{
		stock:     stock,
		ledger:    ledger,
		warehouse: warehouse,
	}
}

func (s *appService) OrderLineCreated(ctx context.Context, req OrderLineCreatedRequest) (*ReservationResult, error) {
	if req.OrderLineID == "" {
		return nil, fmt.Errorf("%w: order line ID is required", core.ErrInvalidArgument)
	}
	if req.VariantSKU == "" {
		return nil, fmt.Errorf("%w: variant SKU is required", core.ErrInvalidArgument)
	}

	reservations, err := s.stock.Reserve(ctx, req.TenantCode, req.OrderLineID, req.VariantSKU,
		req.Qty, req.PreferredWarehouse, req.AllowBackorder)
	if err != nil {
		return nil, err
	}
	return &ReservationResult{OrderLineID: req.OrderLineID, Reservations: reservations}, nil
}

func (s *appService) OrderLineRemoved(ctx context.Context, tenantCode, orderLineID string) error {
	if orderLineID == "" {
		return fmt.Errorf("%w: order line ID is required", core.ErrInvalidArgument)
	}
	return s.stock.Release(ctx, tenantCode, orderLineID)
}

func (s *appService) OrderLineFulfilled(ctx context.Context, tenantCode, orderLineID string) error {
	if orderLineID == "" {
		return fmt.Errorf("%w: order line ID is required", core.ErrInvalidArgument)
	}
	return s.stock.Consume(ctx, tenantCode, orderLineID)
}

func (s *appService) ApplyAdjustment(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error) {
	adjustment, err := s.stock.ApplyAdjustment(ctx, req.TenantCode, req.WarehouseCode, req.VariantSKU,
		req.QtyDelta, core.AdjustmentKind(req.Kind), req.Reason)
	if err != nil {
		return nil, err
	}
	return &AdjustmentResult{Adjustment: adjustment}, nil
}

func (s *appService) ApplyTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	transfer, err := s.stock.ApplyTransfer(ctx, req.TenantCode, req.VariantSKU,
		req.SourceCode, req.DestinationCode, req.Qty, req.Note)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: transfer}, nil
}

func (s *appService) ReceiveStock(ctx context.Context, req ReceiveStockRequest) error {
	return s.stock.ReceiveStock(ctx, req.TenantCode, req.WarehouseCode, req.VariantSKU,
		req.Qty, req.UnitCost, req.Note)
}

func (s *appService) CreateWarehouse(ctx context.Context, req CreateWarehouseRequest) (*WarehouseResult, error) {
	warehouse, err := s.warehouse.CreateWarehouse(ctx, req.TenantCode, req.Code, req.Name, req.StoreCode)
	if err != nil {
		return nil, err
	}
	return &WarehouseResult{Warehouse: warehouse}, nil
}

func (s *appService) ListWarehouses(ctx context.Context, tenantCode string) (*WarehouseListResult, error) {
	warehouses, err := s.warehouse.ListWarehouses(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	return &WarehouseListResult{Warehouses: warehouses}, nil
}

func (s *appService) CreateVariant(ctx context.Context, req CreateVariantRequest) (*VariantResult, error) {
	variant, err := s.warehouse.CreateVariant(ctx, req.TenantCode, req.SKU, req.Name)
	if err != nil {
		return nil, err
	}
	return &VariantResult{Variant: variant}, nil
}

func (s *appService) GetStockLevels(ctx context.Context, tenantCode string) (*StockLevelsResult, error) {
	levels, err := s.warehouse.ListStockLevels(ctx, tenantCode)
	if err != nil {
		return nil, err
	}
	return &StockLevelsResult{Levels: levels, TenantCode: tenantCode}, nil
}

func (s *appService) GetAvailability(ctx context.Context, tenantCode, sku string) (*AvailabilityResult, error) {
	available, err := s.ledger.Available(ctx, tenantCode, sku)
	if err != nil {
		return nil, err
	}
	net, err := s.ledger.AvailableNet(ctx, tenantCode, sku)
	if err != nil {
		return nil, err
	}
	return &AvailabilityResult{VariantSKU: sku, Available: available, AvailableNet: net}, nil
}

func (s *appService) ListLedger(ctx context.Context, tenantCode string, req LedgerQueryRequest) (*LedgerResult, error) {
	filter := core.LedgerFilter{
		VariantSKU:    req.VariantSKU,
		WarehouseCode: req.WarehouseCode,
		Reason:        core.LedgerReason(req.Reason),
		Page:          req.Page,
		PageSize:      req.PageSize,
	}

	if req.FromDate != "" {
		from, err := time.Parse("2006-01-02", req.FromDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from date %q", core.ErrInvalidArgument, req.FromDate)
		}
		filter.From = from
	}
	if req.ToDate != "" {
		to, err := time.Parse("2006-01-02", req.ToDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to date %q", core.ErrInvalidArgument, req.ToDate)
		}
		// Inclusive upper bound: cover the whole day.
		filter.To = to.Add(24*time.Hour - time.Nanosecond)
	}

	entries, total, err := s.ledger.ListLedger(ctx, tenantCode, filter)
	if err != nil {
		return nil, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}
	return &LedgerResult{Entries: entries, Total: total, Page: page, PageSize: pageSize}, nil
}

func (s *appService) ListReservations(ctx context.Context, tenantCode, orderLineID string) (*ReservationResult, error) {
	if orderLineID == "" {
		return nil, fmt.Errorf("%w: order line ID is required", core.ErrInvalidArgument)
	}
	reservations, err := s.stock.ListReservations(ctx, tenantCode, orderLineID)
	if err != nil {
		return nil, err
	}
	return &ReservationResult{OrderLineID: orderLineID, Reservations: reservations}, nil
}
