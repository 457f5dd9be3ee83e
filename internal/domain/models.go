package domain

import (
	"encoding/json"
	"math"
)

// StockCoverDays is days of stock remaining at the current run rate.
// +Inf means "no sales, cover unbounded" and renders as JSON null,
// which encoding/json cannot do for a plain float64.
type StockCoverDays float64

func (d StockCoverDays) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(d), 1) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(d))
}

func (d *StockCoverDays) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = StockCoverDays(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = StockCoverDays(v)
	return nil
}

// Unbounded reports whether the cover is the no-sales sentinel.
func (d StockCoverDays) Unbounded() bool {
	return math.IsInf(float64(d), 1)
}

// DirectChannel is the sentinel channel assigned to sale rows that no
// fulfillment location claims. Such demand is sold and shipped by the
// seller directly and only receives a physical location late in the
// pipeline.
const DirectChannel = "DIRECT"

// SaleRecord is one raw sale line from the 30-day sales extract.
// Produced by ingestion, consumed once by the engine.
type SaleRecord struct {
	Channel         string `json:"channel"`
	Date            string `json:"date"`
	SKU             string `json:"sku"`
	ChannelCode     string `json:"channel_code"`
	Qty             int    `json:"qty"`
	LocationID      string `json:"location_id"`
	FulfillmentType string `json:"fulfillment_type"`
	PoolSKU         string `json:"pool_sku"`
	Style           string `json:"style"`
	Size            string `json:"size"`
}

// LocationStockRecord is the on-hand quantity of one SKU at one
// fulfillment location. Refreshed every data cycle, read-only to the
// engine.
type LocationStockRecord struct {
	Channel     string `json:"channel"`
	LocationID  string `json:"location_id"`
	SKU         string `json:"sku"`
	ChannelCode string `json:"channel_code"`
	Qty         int    `json:"qty"`
}

// PoolStockRecord is the authoritative quantity of one pool SKU held in
// the shared central pool. Every shipment in the system is funded from
// this figure.
type PoolStockRecord struct {
	PoolSKU string `json:"pool_sku"`
	Qty     int    `json:"qty"`
}

// StyleRemark carries the merchandising remark for a style. A style is
// closed iff the remark equals the configured closed sentinel.
type StyleRemark struct {
	Style    string `json:"style"`
	Category string `json:"category"`
	Remark   string `json:"remark"`
}

// Extracts bundles the four tabular inputs of one data cycle. The engine
// never starts on a partial set.
type Extracts struct {
	Sales         []SaleRecord
	LocationStock []LocationStockRecord
	PoolStock     []PoolStockRecord
	StyleRemarks  []StyleRemark
}

// DemandRecord is one unit of demand with its resolved demand-weight
// hierarchy. Location is empty for direct/seller records until
// distribution assigns one.
type DemandRecord struct {
	Channel    string `json:"channel"`
	LocationID string `json:"location_id"`
	Style      string `json:"style"`
	SKU        string `json:"sku"`
	PoolSKU    string `json:"pool_sku"`

	SaleQty      int     `json:"sale_qty"`
	DailyRunRate float64 `json:"daily_run_rate"`

	ChannelShare  float64 `json:"channel_share"`
	LocationShare float64 `json:"location_share"`
	StyleShare    float64 `json:"style_share"`
	SKUShare      float64 `json:"sku_share"`
	CombinedShare float64 `json:"combined_share"`

	// ActualDemand is the idealized 45-day requirement derived from the
	// run rate, independent of pool availability.
	ActualDemand int `json:"actual_demand"`
}

// AllocatedRecord is a DemandRecord after the central pool has been
// distributed over it.
type AllocatedRecord struct {
	DemandRecord

	ShipmentQty      int    `json:"shipment_qty"`
	AllocationRemark string `json:"allocation_remark"`
}

// Action is the terminal decision for one final record.
type Action string

const (
	ActionClosedRecall Action = "CLOSED_RECALL"
	ActionRecall       Action = "RECALL"
	ActionShip         Action = "SHIP"
	ActionNone         Action = "NONE"
)

// FinalRecord is the fully enriched per-location decision row.
type FinalRecord struct {
	AllocatedRecord

	LocationStock int            `json:"location_stock"`
	StockCover    StockCoverDays `json:"stock_cover"`

	// ActualShipmentQty is the true 45-day replenishment need;
	// ShipmentQty never exceeds it.
	ActualShipmentQty int    `json:"actual_shipment_qty"`
	RecallQty         int    `json:"recall_qty"`
	Action            Action `json:"action"`
	Remark            string `json:"remark"`
}

// PoolUsage reports how much of one pool SKU's capped allocatable
// quantity a run consumed.
type PoolUsage struct {
	PoolSKU     string `json:"pool_sku"`
	PoolStock   int    `json:"pool_stock"`
	Allocatable int    `json:"allocatable"`
	Granted     int    `json:"granted"`
	Remaining   int    `json:"remaining"`
}

// LocationSummary rolls up one location's sale, stock and decisions.
// Stock comes from the authoritative stock extract, sale and decision
// quantities from the final rows.
type LocationSummary struct {
	Channel           string         `json:"channel"`
	LocationID        string         `json:"location_id"`
	TotalStock        int            `json:"total_stock"`
	TotalSale         int            `json:"total_sale"`
	DailyRunRate      float64        `json:"daily_run_rate"`
	StockCover        StockCoverDays `json:"stock_cover"`
	ActualShipmentQty int            `json:"actual_shipment_qty"`
	ShipmentQty       int            `json:"shipment_qty"`
	RecallQty         int            `json:"recall_qty"`
}

// SKUSummary is a top-N roll-up of sale by SKU within a channel.
type SKUSummary struct {
	SKU          string  `json:"sku"`
	TotalSale    int     `json:"total_sale"`
	DailyRunRate float64 `json:"daily_run_rate"`
}

// StyleSummary is a top-N roll-up of sale by style within a channel.
type StyleSummary struct {
	Style        string  `json:"style"`
	TotalSale    int     `json:"total_sale"`
	DailyRunRate float64 `json:"daily_run_rate"`
}

// SellerSummary rolls up the direct/seller slice of the plan.
type SellerSummary struct {
	TotalSale   int `json:"total_sale"`
	ShipmentQty int `json:"shipment_qty"`
	Unresolved  int `json:"unresolved"`
}

// PoolTotals aggregates pool usage across all pool SKUs.
type PoolTotals struct {
	Allocatable int `json:"allocatable"`
	Granted     int `json:"granted"`
	Remaining   int `json:"remaining"`
}
