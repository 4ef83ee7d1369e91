package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WarehouseService is the registry surface: warehouses, the minimal variant
// registry, and the stock-level read view. It never mutates quantities.
type WarehouseService interface {
	CreateWarehouse(ctx context.Context, tenantCode, code, name string, storeCode *string) (*Warehouse, error)
	ListWarehouses(ctx context.Context, tenantCode string) ([]Warehouse, error)
	CreateVariant(ctx context.Context, tenantCode, sku, name string) (*Variant, error)
	ListStockLevels(ctx context.Context, tenantCode string) ([]StockLevel, error)
}

type warehouseService struct {
	pool *pgxpool.Pool
}

func NewWarehouseService(pool *pgxpool.Pool) WarehouseService {
	return &warehouseService{pool: pool}
}

func (s *warehouseService) CreateWarehouse(ctx context.Context, tenantCode, code, name string, storeCode *string) (*Warehouse, error) {
	if code == "" || name == "" {
		return nil, fmt.Errorf("%w: warehouse code and name are required", ErrInvalidArgument)
	}
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	w := &Warehouse{TenantID: tenantID, Code: code, Name: name, StoreCode: storeCode, IsActive: true}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO warehouses (tenant_id, code, name, store_code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, tenantID, code, name, storeCode).Scan(&w.ID, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse %s: %w", code, uniqueError(err))
	}
	return w, nil
}

func (s *warehouseService) ListWarehouses(ctx context.Context, tenantCode string) ([]Warehouse, error) {
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, code, name, store_code, is_active, created_at
		FROM warehouses
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY code
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouses: %w", err)
	}
	defer rows.Close()

	var warehouses []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.TenantID, &w.Code, &w.Name, &w.StoreCode, &w.IsActive, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan warehouse: %w", err)
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating warehouses: %w", err)
	}
	return warehouses, nil
}

func (s *warehouseService) CreateVariant(ctx context.Context, tenantCode, sku, name string) (*Variant, error) {
	if sku == "" {
		return nil, fmt.Errorf("%w: variant sku is required", ErrInvalidArgument)
	}
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	v := &Variant{TenantID: tenantID, SKU: sku, Name: name, IsActive: true}
	err = s.pool.QueryRow(ctx, `
		INSERT INTO variants (tenant_id, sku, name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, tenantID, sku, name).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create variant %s: %w", sku, uniqueError(err))
	}
	return v, nil
}

// uniqueError maps a unique violation (SQLSTATE 23505) to ErrAlreadyExists.
func uniqueError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

func (s *warehouseService) ListStockLevels(ctx context.Context, tenantCode string) ([]StockLevel, error) {
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT v.sku, v.name, w.code, w.name,
		       si.qty_on_hand, si.qty_reserved,
		       si.qty_on_hand - si.qty_reserved AS qty_available,
		       si.unit_cost
		FROM stock_items si
		JOIN variants v   ON v.id = si.variant_id
		JOIN warehouses w ON w.id = si.warehouse_id
		WHERE si.tenant_id = $1
		ORDER BY v.sku, w.code
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stock levels: %w", err)
	}
	defer rows.Close()

	var levels []StockLevel
	for rows.Next() {
		var sl StockLevel
		if err := rows.Scan(
			&sl.VariantSKU, &sl.VariantName,
			&sl.WarehouseCode, &sl.WarehouseName,
			&sl.OnHand, &sl.Reserved, &sl.Available, &sl.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		levels = append(levels, sl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock levels: %w", err)
	}
	return levels, nil
}
