package engine

import (
	"reflect"
	"testing"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

func testExtracts() domain.Extracts {
	return domain.Extracts{
		Sales: []domain.SaleRecord{
			{Channel: "AMAZON", LocationID: "BOM-01", Style: "ST-1", SKU: "SKU-1", PoolSKU: "P-1", Qty: 120},
			{Channel: "AMAZON", LocationID: "DEL-02", Style: "ST-1", SKU: "SKU-1", PoolSKU: "P-1", Qty: 60},
			{Channel: "FLIPKART", LocationID: "BOM-01", Style: "ST-1", SKU: "SKU-1", PoolSKU: "P-1", Qty: 90},
			{Channel: "AMAZON", LocationID: "", Style: "ST-2", SKU: "SKU-2", PoolSKU: "P-2", Qty: 30},
			{Channel: "MYNTRA", LocationID: "GHOST-99", Style: "ST-3", SKU: "SKU-3", PoolSKU: "P-2", Qty: 15},
		},
		LocationStock: []domain.LocationStockRecord{
			{Channel: "AMAZON", LocationID: "BOM-01", SKU: "SKU-1", Qty: 50},
			{Channel: "AMAZON", LocationID: "DEL-02", SKU: "SKU-1", Qty: 400},
			{Channel: "FLIPKART", LocationID: "BOM-01", SKU: "SKU-1", Qty: 20},
		},
		PoolStock: []domain.PoolStockRecord{
			{PoolSKU: "P-1", Qty: 1000},
			{PoolSKU: "P-2", Qty: 500},
		},
		StyleRemarks: []domain.StyleRemark{
			{Style: "ST-3", Remark: "Closed"},
		},
	}
}

func TestRunSplitsSellerRows(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	plan := e.Run(testExtracts())

	for _, r := range plan.ChannelRows {
		if r.Channel == domain.DirectChannel {
			t.Errorf("channel rows contain direct record: %+v", r)
		}
	}
	for _, r := range plan.SellerRows {
		if r.Channel != domain.DirectChannel {
			t.Errorf("seller rows contain channel record: %+v", r)
		}
		if r.LocationID == "" {
			t.Errorf("seller row left without a location: %+v", r)
		}
	}
	// Two sale rows had no viable fulfillment location.
	if len(plan.SellerRows) != 2 {
		t.Errorf("seller rows = %d, want 2", len(plan.SellerRows))
	}
	if plan.UnresolvedDemand != 0 {
		t.Errorf("unresolved = %d, want 0", plan.UnresolvedDemand)
	}
}

func TestRunClosedStyleRecallsEverywhere(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	plan := e.Run(testExtracts())

	found := false
	for _, r := range append(plan.ChannelRows, plan.SellerRows...) {
		if r.Style != "ST-3" {
			continue
		}
		found = true
		if r.Action != domain.ActionClosedRecall {
			t.Errorf("closed style action = %q, want %q", r.Action, domain.ActionClosedRecall)
		}
		if r.ShipmentQty != 0 {
			t.Errorf("closed style ships %d, want 0", r.ShipmentQty)
		}
	}
	if !found {
		t.Error("no rows for the closed style")
	}
}

func TestRunIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	first := e.Run(testExtracts())
	second := e.Run(testExtracts())

	if !reflect.DeepEqual(first.ChannelRows, second.ChannelRows) {
		t.Error("channel rows differ between identical runs")
	}
	if !reflect.DeepEqual(first.SellerRows, second.SellerRows) {
		t.Error("seller rows differ between identical runs")
	}
	if !reflect.DeepEqual(first.PoolUsage, second.PoolUsage) {
		t.Error("pool usage differs between identical runs")
	}
	if !reflect.DeepEqual(first.LocationSummaries, second.LocationSummaries) {
		t.Error("location summaries differ between identical runs")
	}
}

func TestRunPoolCapHolds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	plan := e.Run(testExtracts())

	grantedByPool := make(map[string]int)
	for _, r := range append(plan.ChannelRows, plan.SellerRows...) {
		grantedByPool[r.PoolSKU] += r.ShipmentQty
	}

	for _, u := range plan.PoolUsage {
		if grantedByPool[u.PoolSKU] > u.Allocatable {
			t.Errorf("pool %s shipped %d of allocatable %d",
				u.PoolSKU, grantedByPool[u.PoolSKU], u.Allocatable)
		}
	}
}

func TestRunShipmentNeverExceedsActualNeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	plan := e.Run(testExtracts())
	for _, r := range append(plan.ChannelRows, plan.SellerRows...) {
		if r.Action == domain.ActionShip && r.ShipmentQty > r.ActualShipmentQty {
			t.Errorf("%s/%s ships %d above need %d",
				r.LocationID, r.SKU, r.ShipmentQty, r.ActualShipmentQty)
		}
	}
}

func TestRunCombinedShareStaysBounded(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	// A style spanning two SKUs pushes the raw style share above 1; the
	// emitted rows must still carry a bounded combined share.
	extracts := testExtracts()
	extracts.Sales = append(extracts.Sales,
		domain.SaleRecord{Channel: "FLIPKART", LocationID: "DEL-02", Style: "ST-4", SKU: "SKU-4", PoolSKU: "P-1", Qty: 10},
		domain.SaleRecord{Channel: "FLIPKART", LocationID: "DEL-02", Style: "ST-4", SKU: "SKU-5", PoolSKU: "P-1", Qty: 20},
	)

	plan := e.Run(extracts)
	rows := append(plan.ChannelRows, plan.SellerRows...)
	if len(rows) == 0 {
		t.Fatal("plan has no rows")
	}
	for _, r := range rows {
		if r.CombinedShare < 0 || r.CombinedShare > 1 {
			t.Errorf("%s %s/%s combined share = %v, out of [0,1]",
				r.Channel, r.LocationID, r.SKU, r.CombinedShare)
		}
	}
}

func TestRunRowsAreSorted(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	e := New(cfg)

	plan := e.Run(testExtracts())

	rows := plan.ChannelRows
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Channel > b.Channel {
			t.Errorf("rows out of order at %d: %q after %q", i, b.Channel, a.Channel)
		}
		if a.Channel == b.Channel && a.LocationID > b.LocationID {
			t.Errorf("rows out of order at %d: %q after %q", i, b.LocationID, a.LocationID)
		}
	}
}

func TestNewBackfillsZeroConfig(t *testing.T) {
	e := New(Config{})
	if e.cfg.AllocationRatio != 0.40 {
		t.Errorf("allocation ratio = %v, want 0.40", e.cfg.AllocationRatio)
	}
	if e.cfg.TargetStockDays != 45 || e.cfg.RecallThresholdDays != 60 {
		t.Errorf("thresholds = %d/%d, want 45/60", e.cfg.TargetStockDays, e.cfg.RecallThresholdDays)
	}
	if e.cfg.ClosedRemark != "Closed" {
		t.Errorf("closed remark = %q, want Closed", e.cfg.ClosedRemark)
	}
}
