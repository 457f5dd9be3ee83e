package engine

import (
	"math"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

type channelSKUKey struct {
	Channel string
	SKU     string
}

type channelStyleKey struct {
	Channel string
	Style   string
}

type channelStyleSKUKey struct {
	Channel string
	Style   string
	SKU     string
}

type channelLocationSKUKey struct {
	Channel    string
	LocationID string
	SKU        string
}

// demandTables holds the aggregation tables every share calculation
// reads from. Built once per pipeline run and threaded through
// read-only, instead of re-deriving the same sums at every stage.
type demandTables struct {
	totalBySKU        map[string]int
	byChannelSKU      map[channelSKUKey]int
	byChannelStyle    map[channelStyleKey]int
	byChannelStyleSKU map[channelStyleSKUKey]int
	byChannelLocSKU   map[channelLocationSKUKey]int
}

func buildDemandTables(all []domain.SaleRecord) *demandTables {
	t := &demandTables{
		totalBySKU:        make(map[string]int),
		byChannelSKU:      make(map[channelSKUKey]int),
		byChannelStyle:    make(map[channelStyleKey]int),
		byChannelStyleSKU: make(map[channelStyleSKUKey]int),
		byChannelLocSKU:   make(map[channelLocationSKUKey]int),
	}

	for _, r := range all {
		t.totalBySKU[r.SKU] += r.Qty
		t.byChannelSKU[channelSKUKey{r.Channel, r.SKU}] += r.Qty
		t.byChannelStyle[channelStyleKey{r.Channel, r.Style}] += r.Qty
		t.byChannelStyleSKU[channelStyleSKUKey{r.Channel, r.Style, r.SKU}] += r.Qty

		// The location dimension only exists for channel-fulfilled rows.
		if r.LocationID != "" {
			t.byChannelLocSKU[channelLocationSKUKey{r.Channel, r.LocationID, r.SKU}] += r.Qty
		}
	}

	return t
}

// idealDemand converts a run rate into the idealized targetDays stock
// requirement. A strictly positive requirement that would round down to
// nothing becomes 1: genuine demand is never erased by rounding.
func idealDemand(drr float64, targetDays int) int {
	ideal := float64(targetDays) * drr
	if ideal > 0 && ideal < 1 {
		return 1
	}
	return int(math.Floor(ideal))
}

// BuildDemandUniverse merges channel-fulfilled and direct sale rows into
// one demand record set, resolving each row's nested demand-weight
// shares and its idealized demand against tables built over the union.
func (e *Engine) BuildDemandUniverse(fulfilled, direct []domain.SaleRecord) []domain.DemandRecord {
	all := make([]domain.SaleRecord, 0, len(fulfilled)+len(direct))
	all = append(all, fulfilled...)
	all = append(all, direct...)

	tables := buildDemandTables(all)

	records := make([]domain.DemandRecord, 0, len(all))
	for _, r := range all {
		totalSale := tables.totalBySKU[r.SKU]
		channelSale := tables.byChannelSKU[channelSKUKey{r.Channel, r.SKU}]
		styleSale := tables.byChannelStyle[channelStyleKey{r.Channel, r.Style}]
		skuSale := tables.byChannelStyleSKU[channelStyleSKUKey{r.Channel, r.Style, r.SKU}]

		channelShare := ChannelShare(channelSale, totalSale)
		styleShare := StyleShare(styleSale, channelSale)
		skuShare := SKUShare(skuSale, styleSale)

		locationShare := 1.0
		if r.LocationID != "" {
			locationSale := tables.byChannelLocSKU[channelLocationSKUKey{r.Channel, r.LocationID, r.SKU}]
			locationShare = LocationShare(locationSale, channelSale)
		}

		drr := DailyRunRate(r.Qty)

		records = append(records, domain.DemandRecord{
			Channel:       r.Channel,
			LocationID:    r.LocationID,
			Style:         r.Style,
			SKU:           r.SKU,
			PoolSKU:       r.PoolSKU,
			SaleQty:       r.Qty,
			DailyRunRate:  drr,
			ChannelShare:  channelShare,
			LocationShare: locationShare,
			StyleShare:    styleShare,
			SKUShare:      skuShare,
			CombinedShare: CombinedShare(channelShare, locationShare, styleShare, skuShare),
			ActualDemand:  idealDemand(drr, e.cfg.TargetStockDays),
		})
	}

	return records
}
