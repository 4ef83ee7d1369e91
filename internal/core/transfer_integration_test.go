package core_test

import (
	"errors"
	"testing"

	"vendora-inventory/internal/core"

	"github.com/shopspring/decimal"
)

func TestApplyTransfer_MovesStockBetweenWarehouses(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 10, 0)
	seedStock(t, ctx, pool, "acme", "WH-B", "SKU-RED", 2, 0)

	transfer, err := svc.ApplyTransfer(ctx, "acme", "SKU-RED", "WH-A", "WH-B", 4, "rebalance")
	if err != nil {
		t.Fatalf("ApplyTransfer failed: %v", err)
	}
	if transfer.Qty != 4 {
		t.Errorf("Expected transfer qty 4, got %d", transfer.Qty)
	}

	if onHand, _ := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED"); onHand != 6 {
		t.Errorf("Expected source on_hand=6, got %d", onHand)
	}
	if onHand, _ := getStock(t, ctx, pool, "acme", "WH-B", "SKU-RED"); onHand != 6 {
		t.Errorf("Expected destination on_hand=6, got %d", onHand)
	}

	if n := countLedger(t, ctx, pool, "acme", core.ReasonTransferOut); n != 1 {
		t.Errorf("Expected 1 transfer_out ledger row, got %d", n)
	}
	if n := countLedger(t, ctx, pool, "acme", core.ReasonTransferIn); n != 1 {
		t.Errorf("Expected 1 transfer_in ledger row, got %d", n)
	}
}

func TestApplyTransfer_ReservedStockIsNotTransferable(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	// 10 on hand but 8 reserved: only 2 are free to move.
	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 10, 8)

	_, err := svc.ApplyTransfer(ctx, "acme", "SKU-RED", "WH-A", "WH-B", 5, "")
	if !errors.Is(err, core.ErrInsufficientStock) {
		t.Fatalf("Expected ErrInsufficientStock, got %v", err)
	}

	onHand, reserved := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED")
	if onHand != 10 || reserved != 8 {
		t.Errorf("Failed transfer must not mutate stock: on_hand=%d reserved=%d", onHand, reserved)
	}
}

func TestApplyTransfer_SameWarehouseRejected(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	_, err := svc.ApplyTransfer(ctx, "acme", "SKU-RED", "WH-A", "WH-A", 1, "")
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("Expected ErrInvalidArgument, got %v", err)
	}
}

func TestApplyAdjustment_CycleCount(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 10, 0)

	adj, err := svc.ApplyAdjustment(ctx, "acme", "WH-A", "SKU-RED", -3, core.AdjustmentCycleCount, "cycle count")
	if err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}
	if adj.QtyDelta != -3 {
		t.Errorf("Expected applied delta -3, got %d", adj.QtyDelta)
	}

	if onHand, _ := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED"); onHand != 7 {
		t.Errorf("Expected on_hand=7, got %d", onHand)
	}
	if n := countLedger(t, ctx, pool, "acme", core.ReasonAdjustment); n != 1 {
		t.Errorf("Expected 1 adjustment ledger row, got %d", n)
	}
}

func TestApplyAdjustment_ClampsAtZero(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 4, 0)

	adj, err := svc.ApplyAdjustment(ctx, "acme", "WH-A", "SKU-RED", -10, core.AdjustmentCycleCount, "shrinkage")
	if err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}
	if adj.QtyDelta != -4 {
		t.Errorf("Expected clamped delta -4, got %d", adj.QtyDelta)
	}

	if onHand, _ := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED"); onHand != 0 {
		t.Errorf("Expected on_hand=0 after clamp, got %d", onHand)
	}
}

func TestApplyAdjustment_CannotStrandReservations(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 10, 6)

	// Dropping on-hand below the reserved quantity would strand the order line.
	_, err := svc.ApplyAdjustment(ctx, "acme", "WH-A", "SKU-RED", -5, core.AdjustmentCycleCount, "")
	if !errors.Is(err, core.ErrInvariantViolation) {
		t.Fatalf("Expected ErrInvariantViolation, got %v", err)
	}

	onHand, reserved := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED")
	if onHand != 10 || reserved != 6 {
		t.Errorf("Failed adjustment must not mutate stock: on_hand=%d reserved=%d", onHand, reserved)
	}
}

func TestApplyAdjustment_RestockOfBackorderedRowAllowed(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	// Backordered state: reserved exceeds on-hand. Raising on-hand must work
	// even though reserved is still above the new on-hand.
	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 0, 8)

	if _, err := svc.ApplyAdjustment(ctx, "acme", "WH-A", "SKU-RED", 5, core.AdjustmentCycleCount, "restock"); err != nil {
		t.Fatalf("Restock of backordered row must succeed, got: %v", err)
	}

	onHand, reserved := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED")
	if onHand != 5 || reserved != 8 {
		t.Errorf("Expected on_hand=5 reserved=8, got %d/%d", onHand, reserved)
	}
}

func TestApplyAdjustment_CreatesMissingStockItem(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	// No stock row exists for WH-C yet.
	if _, err := svc.ApplyAdjustment(ctx, "acme", "WH-C", "SKU-BLUE", 12, core.AdjustmentCycleCount, "initial count"); err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}

	if onHand, _ := getStock(t, ctx, pool, "acme", "WH-C", "SKU-BLUE"); onHand != 12 {
		t.Errorf("Expected on_hand=12, got %d", onHand)
	}
}

func TestReceiveStock_WeightedAverageCost(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewStockService(pool)

	if err := svc.ReceiveStock(ctx, "acme", "WH-A", "SKU-RED", 10, decimal.NewFromInt(2), "PO-1"); err != nil {
		t.Fatalf("First receive failed: %v", err)
	}
	if err := svc.ReceiveStock(ctx, "acme", "WH-A", "SKU-RED", 10, decimal.NewFromInt(4), "PO-2"); err != nil {
		t.Fatalf("Second receive failed: %v", err)
	}

	onHand, _ := getStock(t, ctx, pool, "acme", "WH-A", "SKU-RED")
	if onHand != 20 {
		t.Errorf("Expected on_hand=20, got %d", onHand)
	}

	var cost decimal.Decimal
	err := pool.QueryRow(ctx, `
		SELECT si.unit_cost
		FROM stock_items si
		JOIN tenants t    ON t.id = si.tenant_id
		JOIN warehouses w ON w.id = si.warehouse_id
		JOIN variants v   ON v.id = si.variant_id
		WHERE t.code = 'acme' AND w.code = 'WH-A' AND v.sku = 'SKU-RED'
	`).Scan(&cost)
	if err != nil {
		t.Fatalf("Failed to read unit cost: %v", err)
	}
	if !cost.Equal(decimal.NewFromInt(3)) {
		t.Errorf("Expected weighted average cost 3, got %s", cost)
	}

	if n := countLedger(t, ctx, pool, "acme", core.ReasonReceive); n != 2 {
		t.Errorf("Expected 2 receive ledger rows, got %d", n)
	}
}
