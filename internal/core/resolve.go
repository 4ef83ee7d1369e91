package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// querier is the slice of pgx shared by *pgxpool.Pool and pgx.Tx that the
// code-to-id resolvers need.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func resolveTenant(ctx context.Context, q querier, code string) (int, error) {
	var id int
	err := q.QueryRow(ctx, "SELECT id FROM tenants WHERE code = $1", code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: tenant %s", ErrNotFound, code)
		}
		return 0, fmt.Errorf("failed to resolve tenant %s: %w", code, err)
	}
	return id, nil
}

func resolveVariant(ctx context.Context, q querier, tenantID int, sku string) (int, error) {
	var id int
	err := q.QueryRow(ctx,
		"SELECT id FROM variants WHERE tenant_id = $1 AND sku = $2 AND is_active = true",
		tenantID, sku,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: variant %s", ErrNotFound, sku)
		}
		return 0, fmt.Errorf("failed to resolve variant %s: %w", sku, err)
	}
	return id, nil
}

func resolveWarehouse(ctx context.Context, q querier, tenantID int, code string) (int, error) {
	var id int
	err := q.QueryRow(ctx,
		"SELECT id FROM warehouses WHERE tenant_id = $1 AND code = $2 AND is_active = true",
		tenantID, code,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: warehouse %s", ErrNotFound, code)
		}
		return 0, fmt.Errorf("failed to resolve warehouse %s: %w", code, err)
	}
	return id, nil
}
