package core

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// StockService is the mutating surface of the engine: the allocation,
// release, consumption, adjustment, transfer, and receiving operations.
// Every method runs in its own transaction and is all-or-nothing; stock item
// rows are locked FOR UPDATE in ascending warehouse-id order so concurrent
// operations on overlapping warehouse sets cannot deadlock.
type StockService interface {
	// Reserve allocates quantity of a variant to an order line across one or
	// more warehouses, proportionally to availability. Idempotent by order
	// line: if reservations exist for orderLineID in any status they are
	// returned unchanged, so a redelivered create event never re-reserves a
	// line that was since released or consumed (events are delivered at least
	// once and may be reordered).
	Reserve(ctx context.Context, tenantCode, orderLineID, sku string, qty int64,
		preferredWarehouse string, allowBackorder bool) ([]StockReservation, error)

	// Release returns all live reservations of an order line to stock.
	// Releasing a line with no reservations is a no-op, not an error.
	Release(ctx context.Context, tenantCode, orderLineID string) error

	// Consume draws down on-hand stock for all live reservations of an order
	// line when fulfillment begins. Idempotent like Release.
	Consume(ctx context.Context, tenantCode, orderLineID string) error

	// ApplyAdjustment applies a manual/cycle-count delta to one warehouse's
	// on-hand quantity. Negative deltas clamp on-hand at zero; a clamp that
	// would leave reserved above on-hand is rejected instead.
	ApplyAdjustment(ctx context.Context, tenantCode, warehouseCode, sku string,
		qtyDelta int64, kind AdjustmentKind, reason string) (*StockAdjustment, error)

	// ApplyTransfer moves qty of a variant between two warehouses as a linked
	// transfer_out/transfer_in pair. Reservations never move with it.
	ApplyTransfer(ctx context.Context, tenantCode, sku, sourceCode, destinationCode string,
		qty int64, note string) (*StockTransfer, error)

	// ReceiveStock records a goods receipt, maintaining the weighted average
	// unit cost of the stock item.
	ReceiveStock(ctx context.Context, tenantCode, warehouseCode, sku string,
		qty int64, unitCost decimal.Decimal, note string) error

	// ListReservations returns reservations for a tenant, newest first,
	// optionally filtered to one order line.
	ListReservations(ctx context.Context, tenantCode, orderLineID string) ([]StockReservation, error)
}

type stockService struct {
	pool *pgxpool.Pool
}

func NewStockService(pool *pgxpool.Pool) StockService {
	return &stockService{pool: pool}
}

// lockError surfaces the database's lock-acquisition timeout (SQLSTATE 55P03,
// raised when lock_timeout is configured) as ErrLockTimeout so callers can
// retry the whole operation.
func lockError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "55P03" {
		return fmt.Errorf("%w: %s", ErrLockTimeout, pgErr.Message)
	}
	return err
}

// lockedItem is a stock item row held under FOR UPDATE within a transaction.
// warehouseCode is filled only by lockItemsForVariant, which joins warehouses.
type lockedItem struct {
	id            int
	warehouseID   int
	warehouseCode string
	qtyOnHand     int64
	qtyReserved   int64
	unitCost      decimal.Decimal
}

func (li lockedItem) available() int64 {
	if avail := li.qtyOnHand - li.qtyReserved; avail > 0 {
		return avail
	}
	return 0
}

// lockOrCreateItem is the lazy get-or-create: insert-on-conflict-do-nothing,
// then re-select under lock.
func lockOrCreateItem(ctx context.Context, tx pgx.Tx, tenantID, warehouseID, variantID int) (lockedItem, error) {
	var item lockedItem
	_, err := tx.Exec(ctx, `
		INSERT INTO stock_items (tenant_id, warehouse_id, variant_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, warehouse_id, variant_id) DO NOTHING
	`, tenantID, warehouseID, variantID)
	if err != nil {
		return item, fmt.Errorf("failed to upsert stock item: %w", err)
	}

	err = tx.QueryRow(ctx, `
		SELECT id, warehouse_id, qty_on_hand, qty_reserved, unit_cost
		FROM stock_items
		WHERE tenant_id = $1 AND warehouse_id = $2 AND variant_id = $3
		FOR UPDATE
	`, tenantID, warehouseID, variantID).Scan(
		&item.id, &item.warehouseID, &item.qtyOnHand, &item.qtyReserved, &item.unitCost,
	)
	if err != nil {
		return item, fmt.Errorf("failed to lock stock item: %w", lockError(err))
	}
	return item, nil
}

// lockItemsForVariant locks every stock item of (tenant, variant) in ascending
// warehouse-id order.
func lockItemsForVariant(ctx context.Context, tx pgx.Tx, tenantID, variantID int) ([]lockedItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT si.id, si.warehouse_id, w.code, si.qty_on_hand, si.qty_reserved, si.unit_cost
		FROM stock_items si
		JOIN warehouses w ON w.id = si.warehouse_id
		WHERE si.tenant_id = $1 AND si.variant_id = $2 AND w.is_active = true
		ORDER BY si.warehouse_id
		FOR UPDATE OF si
	`, tenantID, variantID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock items: %w", lockError(err))
	}
	defer rows.Close()

	var items []lockedItem
	for rows.Next() {
		var li lockedItem
		if err := rows.Scan(&li.id, &li.warehouseID, &li.warehouseCode, &li.qtyOnHand, &li.qtyReserved, &li.unitCost); err != nil {
			return nil, fmt.Errorf("failed to scan stock item: %w", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock items: %w", lockError(err))
	}
	return items, nil
}

// ── Reserve ───────────────────────────────────────────────────────────────────

func (s *stockService) Reserve(ctx context.Context, tenantCode, orderLineID, sku string, qty int64,
	preferredWarehouse string, allowBackorder bool) ([]StockReservation, error) {

	if qty <= 0 {
		return nil, fmt.Errorf("%w: reserve quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenant(ctx, tx, tenantCode)
	if err != nil {
		return nil, err
	}
	variantID, err := resolveVariant(ctx, tx, tenantID, sku)
	if err != nil {
		return nil, err
	}

	preferredID := 0
	if preferredWarehouse != "" {
		preferredID, err = resolveWarehouse(ctx, tx, tenantID, preferredWarehouse)
		if err != nil {
			return nil, err
		}
	}

	// At-least-once delivery: a redelivered create event must not reserve
	// twice. Reservations in any status settle the call, so a line that was
	// already released or consumed stays settled under reordered delivery.
	existing, err := reservationsForLine(ctx, tx, tenantID, orderLineID, "")
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	// Seed the backorder overflow row before the ordered locking scan so all
	// locks are still taken in ascending warehouse-id order.
	if allowBackorder {
		seedWarehouseID := preferredID
		if seedWarehouseID == 0 {
			var exists bool
			err := tx.QueryRow(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM stock_items si
					JOIN warehouses w ON w.id = si.warehouse_id
					WHERE si.tenant_id = $1 AND si.variant_id = $2 AND w.is_active = true
				)
			`, tenantID, variantID).Scan(&exists)
			if err != nil {
				return nil, fmt.Errorf("failed to probe stock items: %w", err)
			}
			if !exists {
				err = tx.QueryRow(ctx,
					"SELECT id FROM warehouses WHERE tenant_id = $1 AND is_active = true ORDER BY id LIMIT 1",
					tenantID,
				).Scan(&seedWarehouseID)
				if errors.Is(err, pgx.ErrNoRows) {
					return nil, fmt.Errorf("%w: no active warehouses for tenant %s", ErrNotFound, tenantCode)
				}
				if err != nil {
					return nil, fmt.Errorf("failed to pick backorder warehouse: %w", err)
				}
			}
		}
		if seedWarehouseID != 0 {
			_, err = tx.Exec(ctx, `
				INSERT INTO stock_items (tenant_id, warehouse_id, variant_id)
				VALUES ($1, $2, $3)
				ON CONFLICT (tenant_id, warehouse_id, variant_id) DO NOTHING
			`, tenantID, seedWarehouseID, variantID)
			if err != nil {
				return nil, fmt.Errorf("failed to seed stock item: %w", err)
			}
		}
	}

	items, err := lockItemsForVariant(ctx, tx, tenantID, variantID)
	if err != nil {
		return nil, err
	}

	stocks := make([]WarehouseStock, len(items))
	byWarehouse := make(map[int]lockedItem, len(items))
	for i, li := range items {
		stocks[i] = WarehouseStock{WarehouseID: li.warehouseID, Available: li.available()}
		byWarehouse[li.warehouseID] = li
	}

	plan, err := PlanAllocation(stocks, qty, preferredID, allowBackorder)
	if err != nil {
		return nil, err
	}

	var created []StockReservation
	for _, alloc := range plan {
		item, ok := byWarehouse[alloc.WarehouseID]
		if !ok {
			return nil, fmt.Errorf("allocation planned for unlocked warehouse %d", alloc.WarehouseID)
		}

		var res StockReservation
		res.TenantID = tenantID
		res.OrderLineID = orderLineID
		res.VariantID = variantID
		res.VariantSKU = sku
		res.WarehouseID = alloc.WarehouseID
		res.WarehouseCode = item.warehouseCode
		res.Qty = alloc.Qty
		res.Status = ReservationReserved
		err = tx.QueryRow(ctx, `
			INSERT INTO stock_reservations (tenant_id, order_line_id, variant_id, warehouse_id, qty, status)
			VALUES ($1, $2, $3, $4, $5, 'reserved')
			RETURNING id, created_at, updated_at
		`, tenantID, orderLineID, variantID, alloc.WarehouseID, alloc.Qty).Scan(
			&res.ID, &res.CreatedAt, &res.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert reservation: %w", err)
		}

		var snapshot int64
		err = tx.QueryRow(ctx, `
			UPDATE stock_items
			SET qty_reserved = qty_reserved + $1, updated_at = now()
			WHERE id = $2
			RETURNING qty_on_hand - qty_reserved
		`, alloc.Qty, item.id).Scan(&snapshot)
		if err != nil {
			return nil, fmt.Errorf("failed to reserve stock: %w", err)
		}

		warehouseID := alloc.WarehouseID
		lineID := orderLineID
		if err := appendLedgerTx(ctx, tx, LedgerEntry{
			TenantID:          tenantID,
			VariantID:         variantID,
			WarehouseID:       &warehouseID,
			QtyDelta:          0,
			Reason:            ReasonReserve,
			OrderLineID:       &lineID,
			SnapshotAvailable: snapshot,
		}); err != nil {
			return nil, err
		}

		created = append(created, res)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit reservation: %w", err)
	}
	return created, nil
}

// ── Release / Consume ─────────────────────────────────────────────────────────

func (s *stockService) Release(ctx context.Context, tenantCode, orderLineID string) error {
	return s.settleLine(ctx, tenantCode, orderLineID, false)
}

func (s *stockService) Consume(ctx context.Context, tenantCode, orderLineID string) error {
	return s.settleLine(ctx, tenantCode, orderLineID, true)
}

// settleLine closes out every live reservation of an order line: consume
// draws down on-hand stock, release just hands the reservation back. Both are
// idempotent — a line with no live reservations is a no-op.
func (s *stockService) settleLine(ctx context.Context, tenantCode, orderLineID string, consume bool) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenant(ctx, tx, tenantCode)
	if err != nil {
		return err
	}

	// Ascending warehouse id keeps the lock order stable across the loop below.
	rows, err := tx.Query(ctx, `
		SELECT id, variant_id, warehouse_id, qty
		FROM stock_reservations
		WHERE tenant_id = $1 AND order_line_id = $2 AND status = 'reserved'
		ORDER BY warehouse_id, id
		FOR UPDATE
	`, tenantID, orderLineID)
	if err != nil {
		return fmt.Errorf("failed to fetch reservations for order line %s: %w", orderLineID, lockError(err))
	}

	type resRow struct {
		id          int
		variantID   int
		warehouseID int
		qty         int64
	}
	var reservations []resRow
	for rows.Next() {
		var r resRow
		if err := rows.Scan(&r.id, &r.variantID, &r.warehouseID, &r.qty); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan reservation: %w", err)
		}
		reservations = append(reservations, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating reservations: %w", lockError(err))
	}

	if len(reservations) == 0 {
		return nil // nothing reserved, treated as success
	}

	newStatus := ReservationReleased
	reason := ReasonRelease
	if consume {
		newStatus = ReservationConsumed
		reason = ReasonConsume
	}

	for _, r := range reservations {
		var item lockedItem
		err := tx.QueryRow(ctx, `
			SELECT id, warehouse_id, qty_on_hand, qty_reserved, unit_cost
			FROM stock_items
			WHERE tenant_id = $1 AND warehouse_id = $2 AND variant_id = $3
			FOR UPDATE
		`, tenantID, r.warehouseID, r.variantID).Scan(
			&item.id, &item.warehouseID, &item.qtyOnHand, &item.qtyReserved, &item.unitCost,
		)
		if err != nil {
			return fmt.Errorf("failed to lock stock item for reservation %d: %w", r.id, lockError(err))
		}

		qtyDelta := int64(0)
		if consume {
			if item.qtyOnHand < r.qty {
				return fmt.Errorf("%w: consuming %d would drive on-hand %d negative",
					ErrInvariantViolation, r.qty, item.qtyOnHand)
			}
			qtyDelta = -r.qty
		}

		// qty_reserved stays >= 0; reservations are its only writers.
		var snapshot int64
		err = tx.QueryRow(ctx, `
			UPDATE stock_items
			SET qty_on_hand  = qty_on_hand + $1,
			    qty_reserved = GREATEST(qty_reserved - $2, 0),
			    updated_at   = now()
			WHERE id = $3
			RETURNING qty_on_hand - qty_reserved
		`, qtyDelta, r.qty, item.id).Scan(&snapshot)
		if err != nil {
			return fmt.Errorf("failed to update stock item %d: %w", item.id, err)
		}

		_, err = tx.Exec(ctx,
			"UPDATE stock_reservations SET status = $1, updated_at = now() WHERE id = $2",
			string(newStatus), r.id,
		)
		if err != nil {
			return fmt.Errorf("failed to update reservation %d: %w", r.id, err)
		}

		warehouseID := r.warehouseID
		lineID := orderLineID
		if err := appendLedgerTx(ctx, tx, LedgerEntry{
			TenantID:          tenantID,
			VariantID:         r.variantID,
			WarehouseID:       &warehouseID,
			QtyDelta:          qtyDelta,
			Reason:            reason,
			OrderLineID:       &lineID,
			SnapshotAvailable: snapshot,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit %s of order line %s: %w", reason, orderLineID, err)
	}
	return nil
}

// ── Adjustment ────────────────────────────────────────────────────────────────

func (s *stockService) ApplyAdjustment(ctx context.Context, tenantCode, warehouseCode, sku string,
	qtyDelta int64, kind AdjustmentKind, reason string) (*StockAdjustment, error) {

	if kind == "" {
		kind = AdjustmentCycleCount
	}
	if kind != AdjustmentCycleCount && kind != AdjustmentCorrection {
		return nil, fmt.Errorf("%w: unknown adjustment kind %q", ErrInvalidArgument, kind)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenant(ctx, tx, tenantCode)
	if err != nil {
		return nil, err
	}
	warehouseID, err := resolveWarehouse(ctx, tx, tenantID, warehouseCode)
	if err != nil {
		return nil, err
	}
	variantID, err := resolveVariant(ctx, tx, tenantID, sku)
	if err != nil {
		return nil, err
	}

	item, err := lockOrCreateItem(ctx, tx, tenantID, warehouseID, variantID)
	if err != nil {
		return nil, err
	}

	// Cycle counts are advisory: clamp at zero rather than erroring. The
	// clamp is rejected when it would push the row out of reserved <= on_hand
	// (a row already in backorder is only rejected if the delta makes it worse).
	applied := qtyDelta
	newOnHand := item.qtyOnHand + qtyDelta
	if newOnHand < 0 {
		newOnHand = 0
		applied = -item.qtyOnHand
	}
	if item.qtyReserved > newOnHand && newOnHand < item.qtyOnHand {
		return nil, fmt.Errorf("%w: adjustment would leave reserved %d above on-hand %d",
			ErrInvariantViolation, item.qtyReserved, newOnHand)
	}

	var snapshot int64
	err = tx.QueryRow(ctx, `
		UPDATE stock_items
		SET qty_on_hand = $1, updated_at = now()
		WHERE id = $2
		RETURNING qty_on_hand - qty_reserved
	`, newOnHand, item.id).Scan(&snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock item: %w", err)
	}

	adj := &StockAdjustment{
		TenantID:      tenantID,
		WarehouseID:   warehouseID,
		WarehouseCode: warehouseCode,
		VariantID:     variantID,
		VariantSKU:    sku,
		QtyDelta:      applied,
		Kind:          kind,
		Reason:        reason,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_adjustments (tenant_id, warehouse_id, variant_id, qty_delta, kind, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, tenantID, warehouseID, variantID, applied, string(kind), reason).Scan(&adj.ID, &adj.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert adjustment: %w", err)
	}

	note := reason
	if err := appendLedgerTx(ctx, tx, LedgerEntry{
		TenantID:          tenantID,
		VariantID:         variantID,
		WarehouseID:       &warehouseID,
		QtyDelta:          applied,
		Reason:            LedgerReason(kind),
		Note:              &note,
		SnapshotAvailable: snapshot,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}
	return adj, nil
}

// ── Transfer ──────────────────────────────────────────────────────────────────

func (s *stockService) ApplyTransfer(ctx context.Context, tenantCode, sku, sourceCode, destinationCode string,
	qty int64, note string) (*StockTransfer, error) {

	if qty <= 0 {
		return nil, fmt.Errorf("%w: transfer quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}
	if sourceCode == destinationCode {
		return nil, fmt.Errorf("%w: source and destination are both %s", ErrInvalidArgument, sourceCode)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenant(ctx, tx, tenantCode)
	if err != nil {
		return nil, err
	}
	variantID, err := resolveVariant(ctx, tx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	sourceID, err := resolveWarehouse(ctx, tx, tenantID, sourceCode)
	if err != nil {
		return nil, err
	}
	destinationID, err := resolveWarehouse(ctx, tx, tenantID, destinationCode)
	if err != nil {
		return nil, err
	}

	transfer := &StockTransfer{
		TenantID:        tenantID,
		VariantID:       variantID,
		VariantSKU:      sku,
		SourceID:        sourceID,
		SourceCode:      sourceCode,
		DestinationID:   destinationID,
		DestinationCode: destinationCode,
		Qty:             qty,
		Status:          "completed",
		Note:            note,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO stock_transfers (tenant_id, variant_id, source_id, destination_id, qty, status, note)
		VALUES ($1, $2, $3, $4, $5, 'completed', $6)
		RETURNING id, created_at
	`, tenantID, variantID, sourceID, destinationID, qty, note).Scan(&transfer.ID, &transfer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	// Lock both rows in ascending warehouse-id order.
	lockOrder := []int{sourceID, destinationID}
	sort.Ints(lockOrder)
	locked := make(map[int]lockedItem, 2)
	for _, warehouseID := range lockOrder {
		item, err := lockOrCreateItem(ctx, tx, tenantID, warehouseID, variantID)
		if err != nil {
			return nil, err
		}
		locked[warehouseID] = item
	}

	source := locked[sourceID]
	if source.available() < qty {
		return nil, fmt.Errorf("%w: warehouse %s has %d available, transfer needs %d",
			ErrInsufficientStock, sourceCode, source.available(), qty)
	}

	transferNote := fmt.Sprintf("transfer #%d %s -> %s", transfer.ID, sourceCode, destinationCode)
	if note != "" {
		transferNote = fmt.Sprintf("%s: %s", transferNote, note)
	}

	var outSnapshot int64
	err = tx.QueryRow(ctx, `
		UPDATE stock_items
		SET qty_on_hand = qty_on_hand - $1, updated_at = now()
		WHERE id = $2
		RETURNING qty_on_hand - qty_reserved
	`, qty, source.id).Scan(&outSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to debit source warehouse: %w", err)
	}
	if err := appendLedgerTx(ctx, tx, LedgerEntry{
		TenantID:          tenantID,
		VariantID:         variantID,
		WarehouseID:       &transfer.SourceID,
		QtyDelta:          -qty,
		Reason:            ReasonTransferOut,
		Note:              &transferNote,
		SnapshotAvailable: outSnapshot,
	}); err != nil {
		return nil, err
	}

	destination := locked[destinationID]
	var inSnapshot int64
	err = tx.QueryRow(ctx, `
		UPDATE stock_items
		SET qty_on_hand = qty_on_hand + $1, updated_at = now()
		WHERE id = $2
		RETURNING qty_on_hand - qty_reserved
	`, qty, destination.id).Scan(&inSnapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to credit destination warehouse: %w", err)
	}
	if err := appendLedgerTx(ctx, tx, LedgerEntry{
		TenantID:          tenantID,
		VariantID:         variantID,
		WarehouseID:       &transfer.DestinationID,
		QtyDelta:          qty,
		Reason:            ReasonTransferIn,
		Note:              &transferNote,
		SnapshotAvailable: inSnapshot,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return transfer, nil
}

// ── Receiving ─────────────────────────────────────────────────────────────────

func (s *stockService) ReceiveStock(ctx context.Context, tenantCode, warehouseCode, sku string,
	qty int64, unitCost decimal.Decimal, note string) error {

	if qty <= 0 {
		return fmt.Errorf("%w: receive quantity must be positive, got %d", ErrInvalidQuantity, qty)
	}
	if unitCost.IsNegative() {
		return fmt.Errorf("%w: unit cost cannot be negative, got %s", ErrInvalidQuantity, unitCost)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tenantID, err := resolveTenant(ctx, tx, tenantCode)
	if err != nil {
		return err
	}
	warehouseID, err := resolveWarehouse(ctx, tx, tenantID, warehouseCode)
	if err != nil {
		return err
	}
	variantID, err := resolveVariant(ctx, tx, tenantID, sku)
	if err != nil {
		return err
	}

	item, err := lockOrCreateItem(ctx, tx, tenantID, warehouseID, variantID)
	if err != nil {
		return err
	}

	// Weighted average: new_cost = (old_qty*old_cost + qty*unit_cost) / new_qty.
	oldQty := decimal.NewFromInt(item.qtyOnHand)
	recvQty := decimal.NewFromInt(qty)
	newQty := oldQty.Add(recvQty)
	newCost := unitCost
	if !newQty.IsZero() {
		newCost = oldQty.Mul(item.unitCost).Add(recvQty.Mul(unitCost)).Div(newQty)
	}

	var snapshot int64
	err = tx.QueryRow(ctx, `
		UPDATE stock_items
		SET qty_on_hand = qty_on_hand + $1, unit_cost = $2, updated_at = now()
		WHERE id = $3
		RETURNING qty_on_hand - qty_reserved
	`, qty, newCost, item.id).Scan(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to receive stock: %w", err)
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	if err := appendLedgerTx(ctx, tx, LedgerEntry{
		TenantID:          tenantID,
		VariantID:         variantID,
		WarehouseID:       &warehouseID,
		QtyDelta:          qty,
		Reason:            ReasonReceive,
		Note:              notePtr,
		SnapshotAvailable: snapshot,
	}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit goods receipt: %w", err)
	}
	return nil
}

// ── Reservation queries ───────────────────────────────────────────────────────

func (s *stockService) ListReservations(ctx context.Context, tenantCode, orderLineID string) ([]StockReservation, error) {
	tenantID, err := resolveTenant(ctx, s.pool, tenantCode)
	if err != nil {
		return nil, err
	}
	return reservationsForLine(ctx, s.pool, tenantID, orderLineID, "ORDER BY r.created_at DESC, r.id DESC")
}

// reservationsForLine loads reservations joined with variant and warehouse
// codes. orderLineID of "" means all lines; order of "" means the stable
// warehouse-id order used inside transactions.
func reservationsForLine(ctx context.Context, q interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}, tenantID int, orderLineID, order string) ([]StockReservation, error) {

	query := `
		SELECT r.id, r.tenant_id, r.order_line_id, r.variant_id, v.sku,
		       r.warehouse_id, w.code, r.qty, r.status, r.created_at, r.updated_at
		FROM stock_reservations r
		JOIN variants v   ON v.id = r.variant_id
		JOIN warehouses w ON w.id = r.warehouse_id
		WHERE r.tenant_id = $1`
	args := []any{tenantID}
	if orderLineID != "" {
		query += " AND r.order_line_id = $2"
		args = append(args, orderLineID)
	}
	if order == "" {
		order = "ORDER BY r.warehouse_id, r.id"
	}
	query += "\n\t\t" + order

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []StockReservation
	for rows.Next() {
		var r StockReservation
		var status string
		if err := rows.Scan(&r.ID, &r.TenantID, &r.OrderLineID, &r.VariantID, &r.VariantSKU,
			&r.WarehouseID, &r.WarehouseCode, &r.Qty, &status, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		r.Status = ReservationStatus(status)
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return reservations, nil
}
