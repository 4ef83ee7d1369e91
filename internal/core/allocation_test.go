package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanAllocation(t *testing.T) {
	tests := []struct {
		name           string
		stocks         []WarehouseStock
		demand         int64
		preferred      int
		allowBackorder bool
		want           []Allocation
		wantErr        error
	}{
		{
			name:   "proportional split across two warehouses",
			stocks: []WarehouseStock{{1, 10}, {2, 5}},
			demand: 12,
			want:   []Allocation{{1, 8}, {2, 4}},
		},
		{
			name:    "insufficient without backorder",
			stocks:  []WarehouseStock{{1, 3}},
			demand:  5,
			wantErr: ErrInsufficientStock,
		},
		{
			name:           "backorder overflows into preferred warehouse",
			stocks:         []WarehouseStock{{1, 0}},
			demand:         5,
			preferred:      1,
			allowBackorder: true,
			want:           []Allocation{{1, 5}},
		},
		{
			name:   "single warehouse takes everything",
			stocks: []WarehouseStock{{1, 20}},
			demand: 7,
			want:   []Allocation{{1, 7}},
		},
		{
			name:   "exact fit drains all warehouses",
			stocks: []WarehouseStock{{1, 4}, {2, 6}},
			demand: 10,
			want:   []Allocation{{2, 6}, {1, 4}},
		},
		{
			name:   "rounding remainder goes to largest first",
			stocks: []WarehouseStock{{1, 7}, {2, 7}, {3, 7}},
			demand: 10,
			// floor(7/21*10)=3 each, remainder 1 to the first in sort order,
			// which is warehouse 1 by the ascending-id tie-break.
			want: []Allocation{{1, 4}, {2, 3}, {3, 3}},
		},
		{
			name:      "preferred warehouse sorts first",
			stocks:    []WarehouseStock{{1, 10}, {2, 4}},
			demand:    6,
			preferred: 2,
			// shares: wh2 floor(4/14*6)=1, wh1 floor(10/14*6)=4; remainder 1
			// tops up the preferred warehouse first.
			want: []Allocation{{2, 2}, {1, 4}},
		},
		{
			name:           "backorder tops up preferred beyond availability",
			stocks:         []WarehouseStock{{1, 2}, {2, 1}},
			demand:         10,
			preferred:      1,
			allowBackorder: true,
			want:           []Allocation{{1, 9}, {2, 1}},
		},
		{
			name:           "backorder with no stock rows fails",
			stocks:         nil,
			demand:         3,
			allowBackorder: true,
			wantErr:        ErrInsufficientStock,
		},
		{
			name:    "zero demand rejected",
			stocks:  []WarehouseStock{{1, 10}},
			demand:  0,
			wantErr: ErrInvalidQuantity,
		},
		{
			name:    "negative demand rejected",
			stocks:  []WarehouseStock{{1, 10}},
			demand:  -4,
			wantErr: ErrInvalidQuantity,
		},
		{
			name:   "warehouses with zero availability are skipped",
			stocks: []WarehouseStock{{1, 0}, {2, 8}, {3, 0}},
			demand: 5,
			want:   []Allocation{{2, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PlanAllocation(tt.stocks, tt.demand, tt.preferred, tt.allowBackorder)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var total int64
			for _, a := range got {
				total += a.Qty
			}
			assert.Equal(t, tt.demand, total, "plan must cover the full demand")
		})
	}
}

func TestPlanAllocation_Deterministic(t *testing.T) {
	stocks := []WarehouseStock{{1, 13}, {2, 13}, {3, 5}, {4, 9}}

	first, err := PlanAllocation(stocks, 17, 0, false)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := PlanAllocation(stocks, 17, 0, false)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPlanAllocation_NeverExceedsAvailabilityWithoutBackorder(t *testing.T) {
	stocks := []WarehouseStock{{1, 6}, {2, 3}, {3, 11}}
	avail := map[int]int64{1: 6, 2: 3, 3: 11}

	for demand := int64(1); demand <= 20; demand++ {
		plan, err := PlanAllocation(stocks, demand, 0, false)
		require.NoError(t, err)
		for _, a := range plan {
			assert.LessOrEqual(t, a.Qty, avail[a.WarehouseID],
				"demand %d over-allocated warehouse %d", demand, a.WarehouseID)
		}
	}
}

func TestPlanAllocation_InputNotMutated(t *testing.T) {
	stocks := []WarehouseStock{{3, 2}, {7, 9}, {9, 4}}
	snapshot := make([]WarehouseStock, len(stocks))
	copy(snapshot, stocks)

	_, err := PlanAllocation(stocks, 6, 0, false)
	require.NoError(t, err)
	assert.Equal(t, snapshot, stocks)
}
