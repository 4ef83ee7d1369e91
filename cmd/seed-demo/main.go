// seed-demo is a one-shot tool that loads a demo tenant with warehouses,
// variants, and opening stock into the configured database. Safe to rerun:
// existing demo rows are reset to the opening state.
//
// Usage: go run ./cmd/seed-demo
package main

import (
	"context"
	"log"

	"vendora-inventory/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Upserting demo tenant...")
	var tenantID int
	err = tx.QueryRow(ctx, `
		INSERT INTO tenants (code, name) VALUES ('demo', 'Demo Retail Co.')
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`).Scan(&tenantID)
	if err != nil {
		log.Fatalf("Failed to upsert tenant: %v", err)
	}

	log.Println("Clearing previous demo stock state...")
	// One statement per Exec: a parameterized multi-command string cannot be
	// prepared, and pgx sends parameterized queries as prepared statements.
	for _, table := range []string{
		"stock_ledger", "stock_reservations", "stock_adjustments", "stock_transfers", "stock_items",
	} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE tenant_id = $1", tenantID); err != nil {
			log.Fatalf("Failed to clear %s: %v", table, err)
		}
	}

	log.Println("Upserting warehouses...")
	_, err = tx.Exec(ctx, `
		INSERT INTO warehouses (tenant_id, code, name, store_code) VALUES
		($1, 'WH-CENTRAL', 'Central Distribution', NULL),
		($1, 'WH-NORTH',   'North Store Backroom', 'store-north'),
		($1, 'WH-SOUTH',   'South Store Backroom', 'store-south')
		ON CONFLICT (tenant_id, code) DO UPDATE SET name = EXCLUDED.name
	`, tenantID)
	if err != nil {
		log.Fatalf("Failed to upsert warehouses: %v", err)
	}

	log.Println("Upserting variants...")
	_, err = tx.Exec(ctx, `
		INSERT INTO variants (tenant_id, sku, name) VALUES
		($1, 'TEE-BLK-S',  'T-Shirt Black S'),
		($1, 'TEE-BLK-M',  'T-Shirt Black M'),
		($1, 'TEE-BLK-L',  'T-Shirt Black L'),
		($1, 'MUG-WHT',    'Ceramic Mug White'),
		($1, 'CAP-NVY',    'Baseball Cap Navy')
		ON CONFLICT (tenant_id, sku) DO UPDATE SET name = EXCLUDED.name
	`, tenantID)
	if err != nil {
		log.Fatalf("Failed to upsert variants: %v", err)
	}

	log.Println("Loading opening stock...")
	_, err = tx.Exec(ctx, `
		INSERT INTO stock_items (tenant_id, warehouse_id, variant_id, qty_on_hand, unit_cost)
		SELECT $1, w.id, v.id, s.qty, s.cost
		FROM (VALUES
			('WH-CENTRAL', 'TEE-BLK-S', 120::bigint, 4.50::numeric),
			('WH-CENTRAL', 'TEE-BLK-M', 200::bigint, 4.50::numeric),
			('WH-CENTRAL', 'TEE-BLK-L',  80::bigint, 4.50::numeric),
			('WH-CENTRAL', 'MUG-WHT',   300::bigint, 2.10::numeric),
			('WH-NORTH',   'TEE-BLK-M',  25::bigint, 4.50::numeric),
			('WH-NORTH',   'MUG-WHT',    40::bigint, 2.10::numeric),
			('WH-SOUTH',   'TEE-BLK-M',  15::bigint, 4.50::numeric),
			('WH-SOUTH',   'CAP-NVY',    60::bigint, 3.80::numeric)
		) AS s(warehouse, sku, qty, cost)
		JOIN warehouses w ON w.tenant_id = $1 AND w.code = s.warehouse
		JOIN variants v   ON v.tenant_id = $1 AND v.sku = s.sku
	`, tenantID)
	if err != nil {
		log.Fatalf("Failed to load opening stock: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Demo seed complete.")
}
