package engine

import (
	"math"
	"sort"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

// Allocation remarks surfaced on the final rows.
const (
	RemarkPoolStockOut = "pool stock-out"
	RemarkConstrained  = "allocation ratio constrained"
)

// Allocate distributes the capped central pool over the demand records.
//
// Per pool SKU at most floor(poolStock x AllocationRatio) units may
// leave the pool in one cycle; the rest stays as buffer. Each record's
// theoretical grant is that allocatable quantity times its combined
// demand-weight share, floored and bounded by its idealized demand.
// A record whose genuine fractional claim floors to nothing is bumped
// to 1 so that low-volume-but-real demand is not starved by rounding.
//
// Every grant, bumps included, is additionally bounded by the pool
// SKU's remaining allocatable quantity, so the per-pool cap holds no
// matter how the shares sum. Records are processed in input order,
// which is deterministic.
//
// This stage does not look at location stock or cover; it only answers
// how much of the shared pool each record's demand justifies.
func (e *Engine) Allocate(records []domain.DemandRecord, pool []domain.PoolStockRecord) ([]domain.AllocatedRecord, []domain.PoolUsage) {
	poolBySKU := make(map[string]int, len(pool))
	for _, p := range pool {
		poolBySKU[p.PoolSKU] += p.Qty
	}

	allocatable := make(map[string]int, len(poolBySKU))
	remaining := make(map[string]int, len(poolBySKU))
	for sku, qty := range poolBySKU {
		capped := int(math.Floor(float64(qty) * e.cfg.AllocationRatio))
		allocatable[sku] = capped
		remaining[sku] = capped
	}

	out := make([]domain.AllocatedRecord, 0, len(records))
	for _, r := range records {
		rec := domain.AllocatedRecord{DemandRecord: r}

		avail := allocatable[r.PoolSKU]
		if avail <= 0 {
			rec.AllocationRemark = RemarkPoolStockOut
			out = append(out, rec)
			continue
		}

		theoretical := float64(avail) * r.CombinedShare

		qty := int(math.Floor(theoretical))
		if qty > r.ActualDemand {
			qty = r.ActualDemand
		}
		if qty == 0 && r.ActualDemand > 0 && theoretical > 0 {
			qty = 1
		}
		if left := remaining[r.PoolSKU]; qty > left {
			qty = left
		}

		rec.ShipmentQty = qty
		remaining[r.PoolSKU] -= qty

		if qty < r.ActualDemand {
			rec.AllocationRemark = RemarkConstrained
		}

		out = append(out, rec)
	}

	usage := make([]domain.PoolUsage, 0, len(poolBySKU))
	for sku, qty := range poolBySKU {
		usage = append(usage, domain.PoolUsage{
			PoolSKU:     sku,
			PoolStock:   qty,
			Allocatable: allocatable[sku],
			Granted:     allocatable[sku] - remaining[sku],
			Remaining:   remaining[sku],
		})
	}
	sort.Slice(usage, func(i, j int) bool { return usage[i].PoolSKU < usage[j].PoolSKU })

	return out, usage
}
