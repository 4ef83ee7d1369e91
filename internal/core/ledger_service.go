package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerService is the read side of the audit trail plus the availability
// aggregations. Reads take no locks; Available/AvailableNet may briefly trail
// in-flight mutations, which callers accept. Allocation planning re-reads
// quantities under lock inside its own transaction instead of calling these.
type LedgerService interface {
	// Available sums qty_on_hand across all warehouses for a variant.
	Available(ctx context.Context, tenantCode, sku string) (int64, error)

	// AvailableNet sums qty_on_hand - qty_reserved across all warehouses.
	AvailableNet(ctx context.Context, tenantCode, sku string) (int64, error)

	// ListLedger returns matching ledger entries newest first, plus the total
	// match count for pagination.
	ListLedger(ctx context.Context, tenantCode string, f LedgerFilter) ([]LedgerEntry, int, error)
}

// LedgerFilter narrows and paginates ListLedger. Zero values mean "any".
type LedgerFilter struct {
	VariantSKU    string
	WarehouseCode string
	Reason        LedgerReason
	From          time.Time
	To            time.Time
	Page          int // 1-based; defaults to 1
	PageSize      int // defaults to 50, capped at 500
}

type ledgerService struct {
	pool *pgxpool.Pool
}

func NewLedgerService(pool *pgxpool.Pool) LedgerService {
	return &ledgerService{pool: pool}
}

// appendLedgerTx writes one immutable audit row inside the caller's
// transaction. Every stock item mutation appends exactly one row.
func appendLedgerTx(ctx context.Context, tx pgx.Tx, e LedgerEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_ledger
			(tenant_id, variant_id, warehouse_id, qty_delta, reason, order_line_id, note, snapshot_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.TenantID, e.VariantID, e.WarehouseID, e.QtyDelta, string(e.Reason),
		e.OrderLineID, e.Note, e.SnapshotAvailable)
	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (s *ledgerService) Available(ctx context.Context, tenantCode, sku string) (int64, error) {
	return s.sumStock(ctx, tenantCode, sku, "COALESCE(SUM(qty_on_hand), 0)")
}

func (s *ledgerService) AvailableNet(ctx context.Context, tenantCode, sku string) (int64, error) {
	return s.sumStock(ctx, tenantCode, sku, "COALESCE(SUM(qty_on_hand - qty_reserved), 0)")
}

func (s *ledgerService) sumStock(ctx context.Context, tenantCode, sku, aggregate string) (int64, error) {
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return 0, err
	}
	variantID, err := resolveVariant(ctx, s.pool, tenantID, sku)
	if err != nil {
		return 0, err
	}

	var total int64
	err = s.pool.QueryRow(ctx,
		"SELECT "+aggregate+" FROM stock_items WHERE tenant_id = $1 AND variant_id = $2",
		tenantID, variantID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate stock for %s: %w", sku, err)
	}
	return total, nil
}

func (s *ledgerService) ListLedger(ctx context.Context, tenantCode string, f LedgerFilter) ([]LedgerEntry, int, error) {
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, 0, err
	}

	where := "WHERE l.tenant_id = $1"
	args := []any{tenantID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.VariantSKU != "" {
		variantID, err := resolveVariant(ctx, s.pool, tenantID, f.VariantSKU)
		if err != nil {
			return nil, 0, err
		}
		where += " AND l.variant_id = " + arg(variantID)
	}
	if f.WarehouseCode != "" {
		warehouseID, err := resolveWarehouse(ctx, s.pool, tenantID, f.WarehouseCode)
		if err != nil {
			return nil, 0, err
		}
		where += " AND l.warehouse_id = " + arg(warehouseID)
	}
	if f.Reason != "" {
		where += " AND l.reason = " + arg(string(f.Reason))
	}
	if !f.From.IsZero() {
		where += " AND l.created_at >= " + arg(f.From)
	}
	if !f.To.IsZero() {
		where += " AND l.created_at <= " + arg(f.To)
	}

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM stock_ledger l "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	pageSize := f.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	if pageSize > 500 {
		pageSize = 500
	}

	query := `
		SELECT l.id, l.tenant_id, l.variant_id, v.sku, l.warehouse_id, w.code,
		       l.qty_delta, l.reason, l.order_line_id, l.note, l.snapshot_available, l.created_at
		FROM stock_ledger l
		JOIN variants v    ON v.id = l.variant_id
		LEFT JOIN warehouses w ON w.id = l.warehouse_id
		` + where + `
		ORDER BY l.created_at DESC, l.id DESC
		LIMIT ` + arg(pageSize) + ` OFFSET ` + arg((page-1)*pageSize)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer rows.Close()

	var entries []LedgerEntry
	for rows.Next() {
		var e LedgerEntry
		var reason string
		if err := rows.Scan(&e.ID, &e.TenantID, &e.VariantID, &e.VariantSKU, &e.WarehouseID, &e.WarehouseCode,
			&e.QtyDelta, &reason, &e.OrderLineID, &e.Note, &e.SnapshotAvailable, &e.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.Reason = LedgerReason(reason)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, total, nil
}
