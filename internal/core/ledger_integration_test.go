package core_test

import (
	"testing"

	"vendora-inventory/internal/core"

	"github.com/google/uuid"
)

func TestAvailable_SumsAcrossWarehouses(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	svc := core.NewLedgerService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 7, 3)
	seedStock(t, ctx, pool, "acme", "WH-B", "SKU-RED", 5, 0)
	seedStock(t, ctx, pool, "globex", "WH-A", "SKU-RED", 100, 0)

	available, err := svc.Available(ctx, "acme", "SKU-RED")
	if err != nil {
		t.Fatalf("Available failed: %v", err)
	}
	if available != 12 {
		t.Errorf("Expected available 12, got %d", available)
	}

	net, err := svc.AvailableNet(ctx, "acme", "SKU-RED")
	if err != nil {
		t.Fatalf("AvailableNet failed: %v", err)
	}
	if net != 9 {
		t.Errorf("Expected net 9, got %d", net)
	}
}

func TestListLedger_FiltersAndPaginates(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	stock := core.NewStockService(pool)
	ledger := core.NewLedgerService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 100, 0)
	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-BLUE", 100, 0)

	// Three reserve rows for SKU-RED, one adjustment for SKU-BLUE.
	for i := 0; i < 3; i++ {
		if _, err := stock.Reserve(ctx, "acme", uuid.NewString(), "SKU-RED", 2, "", false); err != nil {
			t.Fatalf("Reserve failed: %v", err)
		}
	}
	if _, err := stock.ApplyAdjustment(ctx, "acme", "WH-A", "SKU-BLUE", -1, core.AdjustmentCycleCount, ""); err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}

	entries, total, err := ledger.ListLedger(ctx, "acme", core.LedgerFilter{VariantSKU: "SKU-RED"})
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if total != 3 || len(entries) != 3 {
		t.Fatalf("Expected 3 SKU-RED entries, got total=%d len=%d", total, len(entries))
	}
	for _, e := range entries {
		if e.Reason != core.ReasonReserve {
			t.Errorf("Expected reserve reason, got %s", e.Reason)
		}
		if e.QtyDelta != 0 {
			t.Errorf("Reserve rows carry qty_delta=0, got %d", e.QtyDelta)
		}
	}

	entries, total, err = ledger.ListLedger(ctx, "acme", core.LedgerFilter{Reason: core.ReasonAdjustment})
	if err != nil {
		t.Fatalf("ListLedger by reason failed: %v", err)
	}
	if total != 1 || entries[0].VariantSKU != "SKU-BLUE" {
		t.Fatalf("Expected 1 SKU-BLUE adjustment entry, got total=%d %+v", total, entries)
	}

	// Page size 2 over 4 rows: two full pages, total stays 4.
	page1, total, err := ledger.ListLedger(ctx, "acme", core.LedgerFilter{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("ListLedger page 1 failed: %v", err)
	}
	if total != 4 || len(page1) != 2 {
		t.Fatalf("Expected total=4 page of 2, got total=%d len=%d", total, len(page1))
	}
	page2, _, err := ledger.ListLedger(ctx, "acme", core.LedgerFilter{Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("ListLedger page 2 failed: %v", err)
	}
	if len(page2) != 2 {
		t.Fatalf("Expected second page of 2, got %d", len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Errorf("Pages overlap on entry %d", page1[0].ID)
	}
}

func TestListLedger_TenantIsolation(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	stock := core.NewStockService(pool)
	ledger := core.NewLedgerService(pool)

	seedStock(t, ctx, pool, "globex", "WH-A", "SKU-RED", 10, 0)
	if _, err := stock.Reserve(ctx, "globex", uuid.NewString(), "SKU-RED", 1, "", false); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	_, total, err := ledger.ListLedger(ctx, "acme", core.LedgerFilter{})
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no acme entries, got %d", total)
	}
}

func TestLedger_SnapshotAvailableTracksPostMutationState(t *testing.T) {
	pool, ctx := setupStockTestDB(t)
	defer pool.Close()
	stock := core.NewStockService(pool)
	ledger := core.NewLedgerService(pool)

	seedStock(t, ctx, pool, "acme", "WH-A", "SKU-RED", 10, 0)
	if _, err := stock.Reserve(ctx, "acme", uuid.NewString(), "SKU-RED", 4, "", false); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	entries, _, err := ledger.ListLedger(ctx, "acme", core.LedgerFilter{Reason: core.ReasonReserve})
	if err != nil {
		t.Fatalf("ListLedger failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0].SnapshotAvailable != 6 {
		t.Errorf("Expected snapshot_available=6 after reserving 4 of 10, got %d", entries[0].SnapshotAvailable)
	}
}
