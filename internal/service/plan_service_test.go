package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nimbleretail/poolalloc/internal/domain"
	"github.com/nimbleretail/poolalloc/internal/engine"
)

type stubFetcher struct {
	extracts domain.Extracts
	err      error
	calls    int
}

func (f *stubFetcher) FetchAll(ctx context.Context) (domain.Extracts, error) {
	f.calls++
	return f.extracts, f.err
}

func stubExtracts() domain.Extracts {
	return domain.Extracts{
		Sales: []domain.SaleRecord{
			{Channel: "AMAZON", LocationID: "BOM-01", Style: "ST-1", SKU: "SKU-1", PoolSKU: "P-1", Qty: 60},
			{Channel: "AMAZON", LocationID: "", Style: "ST-2", SKU: "SKU-2", PoolSKU: "P-1", Qty: 30},
		},
		LocationStock: []domain.LocationStockRecord{
			{Channel: "AMAZON", LocationID: "BOM-01", SKU: "SKU-1", Qty: 20},
		},
		PoolStock: []domain.PoolStockRecord{
			{PoolSKU: "P-1", Qty: 1000},
		},
	}
}

func newTestService(fetcher ExtractFetcher) *PlanService {
	cfg := engine.DefaultConfig()
	cfg.FallbackLocations = map[string][]string{domain.DirectChannel: {"BOM-01"}}
	return NewPlanService(fetcher, engine.New(cfg), nil)
}

func TestPlanServiceBeforeFirstRefresh(t *testing.T) {
	s := newTestService(&stubFetcher{})

	if _, err := s.ChannelRows(""); !errors.Is(err, ErrNoPlan) {
		t.Errorf("ChannelRows error = %v, want ErrNoPlan", err)
	}
	if _, err := s.SellerRows(); !errors.Is(err, ErrNoPlan) {
		t.Errorf("SellerRows error = %v, want ErrNoPlan", err)
	}
	if status := s.Status(); status.Ready {
		t.Errorf("status ready before refresh: %+v", status)
	}
}

func TestPlanServiceRefreshAndRead(t *testing.T) {
	fetcher := &stubFetcher{extracts: stubExtracts()}
	s := newTestService(fetcher)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}

	rows, err := s.ChannelRows("")
	if err != nil {
		t.Fatalf("ChannelRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("channel rows = %d, want 1", len(rows))
	}

	sellers, err := s.SellerRows()
	if err != nil {
		t.Fatalf("SellerRows: %v", err)
	}
	if len(sellers) != 1 {
		t.Errorf("seller rows = %d, want 1", len(sellers))
	}

	status := s.Status()
	if !status.Ready || status.ChannelRows != 1 || status.SellerRows != 1 {
		t.Errorf("status = %+v", status)
	}
}

func TestPlanServiceChannelFilter(t *testing.T) {
	s := newTestService(&stubFetcher{extracts: stubExtracts()})
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	rows, err := s.ChannelRows("amazon")
	if err != nil {
		t.Fatalf("ChannelRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("filtered rows = %d, want 1", len(rows))
	}

	rows, err = s.ChannelRows("FLIPKART")
	if err != nil {
		t.Fatalf("ChannelRows: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("filtered rows = %d, want 0", len(rows))
	}
}

func TestPlanServiceFailedRefreshKeepsOldPlan(t *testing.T) {
	fetcher := &stubFetcher{extracts: stubExtracts()}
	s := newTestService(fetcher)

	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	fetcher.err = errors.New("source down")
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh error, got nil")
	}

	// The previous plan still serves.
	rows, err := s.ChannelRows("")
	if err != nil {
		t.Fatalf("ChannelRows after failed refresh: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("rows after failed refresh = %d, want 1", len(rows))
	}
}

func TestPlanServiceSummaries(t *testing.T) {
	s := newTestService(&stubFetcher{extracts: stubExtracts()})
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	summaries, err := s.LocationSummaries(context.Background(), "")
	if err != nil {
		t.Fatalf("LocationSummaries: %v", err)
	}
	if len(summaries) == 0 {
		t.Error("no location summaries")
	}

	skus, err := s.TopSKUs("", 5)
	if err != nil {
		t.Fatalf("TopSKUs: %v", err)
	}
	if len(skus) != 1 || skus[0].SKU != "SKU-1" {
		t.Errorf("top skus = %+v", skus)
	}

	skus, err = s.TopSKUs("flipkart", 5)
	if err != nil {
		t.Fatalf("TopSKUs: %v", err)
	}
	if len(skus) != 0 {
		t.Errorf("top skus for empty channel = %+v", skus)
	}

	usage, totals, err := s.PoolUsage()
	if err != nil {
		t.Fatalf("PoolUsage: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("usage rows = %d, want 1", len(usage))
	}
	if totals.Granted != usage[0].Granted {
		t.Errorf("totals granted = %d, want %d", totals.Granted, usage[0].Granted)
	}

	seller, err := s.SellerSummary()
	if err != nil {
		t.Fatalf("SellerSummary: %v", err)
	}
	if seller.TotalSale != 30 {
		t.Errorf("seller total sale = %d, want 30", seller.TotalSale)
	}
}
