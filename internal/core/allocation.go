package core

import (
	"fmt"
	"sort"
)

// WarehouseStock is the availability snapshot the allocation planner works on.
type WarehouseStock struct {
	WarehouseID int
	Available   int64 // max(0, on_hand - reserved)
}

// Allocation is one planned (warehouse, quantity) take.
type Allocation struct {
	WarehouseID int
	Qty         int64
}

// PlanAllocation splits a demand across warehouses proportionally to their
// availability, so that no single warehouse is fully drained while others
// still hold stock.
//
// stocks must be ordered by ascending warehouse id (the row-lock order);
// that order is the tie-break when availabilities are equal, which makes the
// plan reproducible. preferredWarehouseID of 0 means no preference.
//
// The plan is computed in three passes over the sort order (preferred
// warehouse first if given, then descending availability):
//  1. each warehouse gets floor(available/total * demand), capped by its
//     availability and the remaining demand;
//  2. rounding leftovers are assigned warehouse by warehouse, capped by the
//     remaining headroom of each;
//  3. with allowBackorder, any demand that no availability can cover goes to
//     the preferred warehouse (or the first in sort order), as the explicit
//     backorder overflow.
//
// Without allowBackorder the plan fails with ErrInsufficientStock when total
// availability is short, before any pass runs.
func PlanAllocation(stocks []WarehouseStock, demand int64, preferredWarehouseID int, allowBackorder bool) ([]Allocation, error) {
	if demand <= 0 {
		return nil, fmt.Errorf("%w: demand must be positive, got %d", ErrInvalidQuantity, demand)
	}

	sorted := make([]WarehouseStock, len(stocks))
	copy(sorted, stocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		if preferredWarehouseID != 0 {
			if sorted[i].WarehouseID == preferredWarehouseID {
				return sorted[j].WarehouseID != preferredWarehouseID
			}
			if sorted[j].WarehouseID == preferredWarehouseID {
				return false
			}
		}
		return sorted[i].Available > sorted[j].Available
	})

	var total int64
	for _, s := range sorted {
		if s.Available > 0 {
			total += s.Available
		}
	}

	if !allowBackorder && total < demand {
		return nil, fmt.Errorf("%w: need %d, total available %d", ErrInsufficientStock, demand, total)
	}
	if len(sorted) == 0 {
		// Backorder needs at least one warehouse row to overflow into.
		return nil, fmt.Errorf("%w: no stock locations for variant", ErrInsufficientStock)
	}

	takes := make(map[int]int64, len(sorted))
	remaining := demand

	if total > 0 {
		// Pass 1: proportional shares, floored.
		for _, s := range sorted {
			if remaining == 0 {
				break
			}
			if s.Available <= 0 {
				continue
			}
			take := s.Available * demand / total
			if take > s.Available {
				take = s.Available
			}
			if take > remaining {
				take = remaining
			}
			if take > 0 {
				takes[s.WarehouseID] = take
				remaining -= take
			}
		}

		// Pass 2: hand out rounding leftovers in sort order.
		for _, s := range sorted {
			if remaining == 0 {
				break
			}
			extra := s.Available - takes[s.WarehouseID]
			if extra <= 0 {
				continue
			}
			if extra > remaining {
				extra = remaining
			}
			takes[s.WarehouseID] += extra
			remaining -= extra
		}
	}

	// Pass 3: backorder overflow.
	if remaining > 0 {
		takes[sorted[0].WarehouseID] += remaining
		remaining = 0
	}

	plan := make([]Allocation, 0, len(takes))
	for _, s := range sorted {
		if qty := takes[s.WarehouseID]; qty > 0 {
			plan = append(plan, Allocation{WarehouseID: s.WarehouseID, Qty: qty})
		}
	}
	return plan, nil
}
