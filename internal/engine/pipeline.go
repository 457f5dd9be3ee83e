package engine

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

// Config carries the allocation policy for one engine instance. Values
// are consumed, never computed, here.
type Config struct {
	AllocationRatio     float64
	TargetStockDays     int
	RecallThresholdDays int
	ClosedRemark        string
	FallbackLocations   map[string][]string
}

// DefaultConfig returns the production policy: release at most 40% of
// the pool per cycle, ship below 45 days of cover, recall above 60.
func DefaultConfig() Config {
	return Config{
		AllocationRatio:     0.40,
		TargetStockDays:     45,
		RecallThresholdDays: 60,
		ClosedRemark:        "Closed",
	}
}

// Engine runs the demand-weighted allocation pipeline. It holds no
// state across runs; every stage is a pure transform allocating new
// records, so a run is deterministic and trivially re-runnable on the
// same inputs.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine {
	if cfg.AllocationRatio <= 0 {
		cfg.AllocationRatio = 0.40
	}
	if cfg.TargetStockDays <= 0 {
		cfg.TargetStockDays = 45
	}
	if cfg.RecallThresholdDays <= 0 {
		cfg.RecallThresholdDays = 60
	}
	if cfg.ClosedRemark == "" {
		cfg.ClosedRemark = "Closed"
	}
	return &Engine{cfg: cfg}
}

// Plan is the immutable result of one pipeline run.
type Plan struct {
	GeneratedAt time.Time `json:"generated_at"`

	// ChannelRows are decisions for channel-fulfilled demand,
	// SellerRows for direct/seller demand. Both are sorted and stable
	// under repeated rendering.
	ChannelRows []domain.FinalRecord `json:"channel_rows"`
	SellerRows  []domain.FinalRecord `json:"seller_rows"`

	PoolUsage []domain.PoolUsage `json:"pool_usage"`

	// UnresolvedDemand counts direct records that could not be placed
	// at any location.
	UnresolvedDemand int `json:"unresolved_demand"`

	LocationSummaries []domain.LocationSummary `json:"location_summaries"`
}

// Run executes the full pipeline over one set of extracts:
// channel derivation, demand universe, consolidation, pool allocation,
// location distribution, enrichment, summaries. Inputs are never
// mutated.
func (e *Engine) Run(extracts domain.Extracts) *Plan {
	started := time.Now()

	fulfilled, direct := SplitByChannel(extracts.Sales, extracts.LocationStock)

	demand := e.BuildDemandUniverse(fulfilled, direct)
	demand = e.Consolidate(demand)

	allocated, usage := e.Allocate(demand, extracts.PoolStock)
	allocated, unresolved := e.DistributeLocations(allocated)

	final := e.Enrich(allocated, extracts.LocationStock, extracts.StyleRemarks)

	var channelRows, sellerRows []domain.FinalRecord
	for _, r := range final {
		if r.Channel == domain.DirectChannel {
			sellerRows = append(sellerRows, r)
		} else {
			channelRows = append(channelRows, r)
		}
	}
	sortFinalRecords(channelRows)
	sortFinalRecords(sellerRows)

	plan := &Plan{
		GeneratedAt:       time.Now().UTC(),
		ChannelRows:       channelRows,
		SellerRows:        sellerRows,
		PoolUsage:         usage,
		UnresolvedDemand:  unresolved,
		LocationSummaries: e.LocationSummaries(channelRows, extracts.LocationStock),
	}

	log.Info().
		Int("sales", len(extracts.Sales)).
		Int("channel_rows", len(channelRows)).
		Int("seller_rows", len(sellerRows)).
		Int("unresolved", unresolved).
		Dur("took", time.Since(started)).
		Msg("allocation pipeline completed")

	return plan
}

// sortFinalRecords orders rows by their planning key so output is
// byte-identical across runs on the same input.
func sortFinalRecords(rows []domain.FinalRecord) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Channel != b.Channel {
			return a.Channel < b.Channel
		}
		if a.LocationID != b.LocationID {
			return a.LocationID < b.LocationID
		}
		if a.Style != b.Style {
			return a.Style < b.Style
		}
		if a.SKU != b.SKU {
			return a.SKU < b.SKU
		}
		return a.PoolSKU < b.PoolSKU
	})
}
