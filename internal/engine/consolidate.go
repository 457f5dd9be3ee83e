package engine

import (
	"github.com/nimbleretail/poolalloc/internal/domain"
)

type planningKey struct {
	Channel    string
	LocationID string
	Style      string
	SKU        string
	PoolSKU    string
}

// Consolidate merges demand records sharing the same planning key into
// one record per key. Several raw sale rows can legitimately collapse
// onto one key (multiple sale dates, multiple sizes) and decisions are
// made once per key, not once per raw row.
//
// Sale quantity is summed; run rate and idealized demand are re-derived
// from the summed quantity rather than summed per-row, which would
// accumulate rounding drift. Shares are carried from the first record
// of each group: they were computed from pre-consolidation totals and
// stay valid. Output preserves first-seen key order.
func (e *Engine) Consolidate(records []domain.DemandRecord) []domain.DemandRecord {
	groups := make(map[planningKey]int, len(records))
	out := make([]domain.DemandRecord, 0, len(records))

	for _, r := range records {
		key := planningKey{r.Channel, r.LocationID, r.Style, r.SKU, r.PoolSKU}

		if idx, ok := groups[key]; ok {
			out[idx].SaleQty += r.SaleQty
			continue
		}

		groups[key] = len(out)
		out = append(out, r)
	}

	for i := range out {
		drr := DailyRunRate(out[i].SaleQty)
		out[i].DailyRunRate = drr
		out[i].ActualDemand = idealDemand(drr, e.cfg.TargetStockDays)
	}

	return out
}
