package engine

import (
	"sort"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

type channelLocationKey struct {
	Channel    string
	LocationID string
}

// LocationSummaries rolls up sale, stock and decisions per location.
// Stock totals come from the authoritative stock extract, not from the
// decision rows: a location can hold SKUs that sold nothing in the
// window and those units still count.
func (e *Engine) LocationSummaries(rows []domain.FinalRecord, stock []domain.LocationStockRecord) []domain.LocationSummary {
	byLocation := make(map[channelLocationKey]*domain.LocationSummary)

	get := func(key channelLocationKey) *domain.LocationSummary {
		if s, ok := byLocation[key]; ok {
			return s
		}
		s := &domain.LocationSummary{Channel: key.Channel, LocationID: key.LocationID}
		byLocation[key] = s
		return s
	}

	for _, r := range stock {
		s := get(channelLocationKey{r.Channel, r.LocationID})
		s.TotalStock += r.Qty
	}

	for _, r := range rows {
		s := get(channelLocationKey{r.Channel, r.LocationID})
		s.TotalSale += r.SaleQty
		s.ActualShipmentQty += r.ActualShipmentQty
		s.ShipmentQty += r.ShipmentQty
		s.RecallQty += r.RecallQty
	}

	out := make([]domain.LocationSummary, 0, len(byLocation))
	for _, s := range byLocation {
		s.DailyRunRate = DailyRunRate(s.TotalSale)
		s.StockCover = domain.StockCoverDays(StockCover(s.TotalStock, s.DailyRunRate))
		out = append(out, *s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Channel != out[j].Channel {
			return out[i].Channel < out[j].Channel
		}
		return out[i].LocationID < out[j].LocationID
	})

	return out
}

// TopSKUs returns the n highest-selling SKUs among the given rows,
// ties broken by SKU for stable output.
func TopSKUs(rows []domain.FinalRecord, n int) []domain.SKUSummary {
	saleBySKU := make(map[string]int)
	for _, r := range rows {
		saleBySKU[r.SKU] += r.SaleQty
	}

	out := make([]domain.SKUSummary, 0, len(saleBySKU))
	for sku, sale := range saleBySKU {
		out = append(out, domain.SKUSummary{
			SKU:          sku,
			TotalSale:    sale,
			DailyRunRate: DailyRunRate(sale),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSale != out[j].TotalSale {
			return out[i].TotalSale > out[j].TotalSale
		}
		return out[i].SKU < out[j].SKU
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopStyles returns the n highest-selling styles among the given rows,
// ties broken by style for stable output.
func TopStyles(rows []domain.FinalRecord, n int) []domain.StyleSummary {
	saleByStyle := make(map[string]int)
	for _, r := range rows {
		saleByStyle[r.Style] += r.SaleQty
	}

	out := make([]domain.StyleSummary, 0, len(saleByStyle))
	for style, sale := range saleByStyle {
		out = append(out, domain.StyleSummary{
			Style:        style,
			TotalSale:    sale,
			DailyRunRate: DailyRunRate(sale),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSale != out[j].TotalSale {
			return out[i].TotalSale > out[j].TotalSale
		}
		return out[i].Style < out[j].Style
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SellerRollup aggregates the direct/seller slice of a plan.
func SellerRollup(plan *Plan) domain.SellerSummary {
	var s domain.SellerSummary
	for _, r := range plan.SellerRows {
		s.TotalSale += r.SaleQty
		s.ShipmentQty += r.ShipmentQty
	}
	s.Unresolved = plan.UnresolvedDemand
	return s
}

// PoolUsageTotals aggregates pool usage across all pool SKUs.
func PoolUsageTotals(usage []domain.PoolUsage) domain.PoolTotals {
	var t domain.PoolTotals
	for _, u := range usage {
		t.Allocatable += u.Allocatable
		t.Granted += u.Granted
		t.Remaining += u.Remaining
	}
	return t
}
