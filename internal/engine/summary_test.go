package engine

import (
	"testing"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

func finalRecord(channel, location, style, sku string, saleQty, ship, actual, recall int) domain.FinalRecord {
	return domain.FinalRecord{
		AllocatedRecord: domain.AllocatedRecord{
			DemandRecord: domain.DemandRecord{
				Channel:    channel,
				LocationID: location,
				Style:      style,
				SKU:        sku,
				SaleQty:    saleQty,
			},
			ShipmentQty: ship,
		},
		ActualShipmentQty: actual,
		RecallQty:         recall,
	}
}

func TestLocationSummariesUseAuthoritativeStock(t *testing.T) {
	e := New(DefaultConfig())

	rows := []domain.FinalRecord{
		finalRecord("AMAZON", "BOM-01", "ST-1", "SKU-1", 60, 10, 20, 0),
		finalRecord("AMAZON", "BOM-01", "ST-1", "SKU-2", 30, 5, 5, 0),
	}
	stock := []domain.LocationStockRecord{
		{Channel: "AMAZON", LocationID: "BOM-01", SKU: "SKU-1", Qty: 100},
		{Channel: "AMAZON", LocationID: "BOM-01", SKU: "SKU-2", Qty: 40},
		// This SKU sold nothing in the window; its stock still counts.
		{Channel: "AMAZON", LocationID: "BOM-01", SKU: "SKU-SLOW", Qty: 60},
	}

	out := e.LocationSummaries(rows, stock)
	if len(out) != 1 {
		t.Fatalf("got %d summaries, want 1", len(out))
	}

	s := out[0]
	if s.TotalStock != 200 {
		t.Errorf("total stock = %d, want 200", s.TotalStock)
	}
	if s.TotalSale != 90 {
		t.Errorf("total sale = %d, want 90", s.TotalSale)
	}
	if s.DailyRunRate != 3 {
		t.Errorf("drr = %v, want 3", s.DailyRunRate)
	}
	if s.ShipmentQty != 15 || s.ActualShipmentQty != 25 {
		t.Errorf("shipment = %d/%d, want 15/25", s.ShipmentQty, s.ActualShipmentQty)
	}
}

func TestLocationSummariesStockOnlyLocation(t *testing.T) {
	e := New(DefaultConfig())

	stock := []domain.LocationStockRecord{
		{Channel: "AMAZON", LocationID: "DEL-02", SKU: "SKU-1", Qty: 30},
	}

	out := e.LocationSummaries(nil, stock)
	if len(out) != 1 {
		t.Fatalf("got %d summaries, want 1", len(out))
	}
	if !out[0].StockCover.Unbounded() {
		t.Errorf("cover with no sales = %v, want unbounded", out[0].StockCover)
	}
}

func TestLocationSummariesSorted(t *testing.T) {
	e := New(DefaultConfig())

	stock := []domain.LocationStockRecord{
		{Channel: "FLIPKART", LocationID: "BOM-01", SKU: "S", Qty: 1},
		{Channel: "AMAZON", LocationID: "DEL-02", SKU: "S", Qty: 1},
		{Channel: "AMAZON", LocationID: "BOM-01", SKU: "S", Qty: 1},
	}

	out := e.LocationSummaries(nil, stock)
	want := []string{"AMAZON/BOM-01", "AMAZON/DEL-02", "FLIPKART/BOM-01"}
	for i, w := range want {
		got := out[i].Channel + "/" + out[i].LocationID
		if got != w {
			t.Errorf("summary[%d] = %s, want %s", i, got, w)
		}
	}
}

func TestTopSKUs(t *testing.T) {
	rows := []domain.FinalRecord{
		finalRecord("AMAZON", "BOM-01", "ST", "SKU-B", 50, 0, 0, 0),
		finalRecord("AMAZON", "DEL-02", "ST", "SKU-B", 40, 0, 0, 0),
		finalRecord("AMAZON", "BOM-01", "ST", "SKU-A", 90, 0, 0, 0),
		finalRecord("AMAZON", "BOM-01", "ST", "SKU-C", 10, 0, 0, 0),
	}

	out := TopSKUs(rows, 2)
	if len(out) != 2 {
		t.Fatalf("got %d, want 2", len(out))
	}
	// SKU-A and SKU-B tie at 90; SKU-A wins on key order.
	if out[0].SKU != "SKU-A" || out[1].SKU != "SKU-B" {
		t.Errorf("top SKUs = %s, %s; want SKU-A, SKU-B", out[0].SKU, out[1].SKU)
	}
	if out[0].TotalSale != 90 || out[1].TotalSale != 90 {
		t.Errorf("totals = %d, %d; want 90, 90", out[0].TotalSale, out[1].TotalSale)
	}
}

func TestTopStyles(t *testing.T) {
	rows := []domain.FinalRecord{
		finalRecord("AMAZON", "BOM-01", "ST-1", "SKU-1", 30, 0, 0, 0),
		finalRecord("AMAZON", "BOM-01", "ST-2", "SKU-2", 70, 0, 0, 0),
	}

	out := TopStyles(rows, 0)
	if len(out) != 2 {
		t.Fatalf("got %d, want 2", len(out))
	}
	if out[0].Style != "ST-2" {
		t.Errorf("top style = %s, want ST-2", out[0].Style)
	}
}

func TestSellerRollupAndPoolTotals(t *testing.T) {
	plan := &Plan{
		SellerRows: []domain.FinalRecord{
			finalRecord(domain.DirectChannel, "BOM-01", "ST", "SKU-1", 30, 10, 0, 0),
			finalRecord(domain.DirectChannel, "BOM-01", "ST", "SKU-2", 20, 5, 0, 0),
		},
		UnresolvedDemand: 3,
	}

	s := SellerRollup(plan)
	if s.TotalSale != 50 || s.ShipmentQty != 15 || s.Unresolved != 3 {
		t.Errorf("rollup = %+v, want sale 50 ship 15 unresolved 3", s)
	}

	totals := PoolUsageTotals([]domain.PoolUsage{
		{Allocatable: 400, Granted: 300, Remaining: 100},
		{Allocatable: 200, Granted: 50, Remaining: 150},
	})
	if totals.Allocatable != 600 || totals.Granted != 350 || totals.Remaining != 250 {
		t.Errorf("totals = %+v", totals)
	}
}
