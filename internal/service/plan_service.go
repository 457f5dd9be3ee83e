package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nimbleretail/poolalloc/internal/cache"
	"github.com/nimbleretail/poolalloc/internal/domain"
	"github.com/nimbleretail/poolalloc/internal/engine"
)

// ErrNoPlan is returned by read accessors before the first successful
// refresh.
var ErrNoPlan = errors.New("no allocation plan available yet")

// ExtractFetcher retrieves the four tabular inputs of one data cycle.
type ExtractFetcher interface {
	FetchAll(ctx context.Context) (domain.Extracts, error)
}

// PlanService owns the current allocation plan. Refresh replaces it
// atomically; reads serve from the held plan so the API never observes
// a half-computed cycle.
type PlanService struct {
	fetcher ExtractFetcher
	engine  *engine.Engine
	cache   cache.SummaryCache

	mu   sync.RWMutex
	plan *engine.Plan
}

func NewPlanService(fetcher ExtractFetcher, eng *engine.Engine, cacheImpl cache.SummaryCache) *PlanService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSummaryCache()
	}
	return &PlanService{
		fetcher: fetcher,
		engine:  eng,
		cache:   cacheImpl,
	}
}

// Refresh fetches a fresh set of extracts, runs the pipeline and swaps
// the plan in. A failed fetch keeps the previous plan; stale beats
// absent.
func (s *PlanService) Refresh(ctx context.Context) error {
	extracts, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		return err
	}

	plan := s.engine.Run(extracts)

	s.mu.Lock()
	s.plan = plan
	s.mu.Unlock()

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("plan: cache invalidation failed")
	}

	return nil
}

func (s *PlanService) current() (*engine.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.plan == nil {
		return nil, ErrNoPlan
	}
	return s.plan, nil
}

// ChannelRows returns channel-fulfilled decision rows, optionally
// filtered to one channel.
func (s *PlanService) ChannelRows(channel string) ([]domain.FinalRecord, error) {
	plan, err := s.current()
	if err != nil {
		return nil, err
	}

	channel = strings.ToUpper(strings.TrimSpace(channel))
	return filterByChannel(plan.ChannelRows, channel), nil
}

// SellerRows returns direct/seller decision rows.
func (s *PlanService) SellerRows() ([]domain.FinalRecord, error) {
	plan, err := s.current()
	if err != nil {
		return nil, err
	}
	return plan.SellerRows, nil
}

// LocationSummaries serves per-location roll-ups, cache first.
func (s *PlanService) LocationSummaries(ctx context.Context, channel string) ([]domain.LocationSummary, error) {
	channel = strings.ToUpper(strings.TrimSpace(channel))

	if summaries, ok, err := s.cache.GetLocationSummaries(ctx, channel); err == nil && ok {
		return summaries, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("plan: cache get summaries failed")
	}

	plan, err := s.current()
	if err != nil {
		return nil, err
	}

	summaries := plan.LocationSummaries
	if channel != "" {
		filtered := make([]domain.LocationSummary, 0)
		for _, sum := range summaries {
			if sum.Channel == channel {
				filtered = append(filtered, sum)
			}
		}
		summaries = filtered
	}

	if err := s.cache.SetLocationSummaries(ctx, channel, summaries); err != nil {
		log.Warn().Err(err).Msg("plan: cache set summaries failed")
	}

	return summaries, nil
}

func filterByChannel(rows []domain.FinalRecord, channel string) []domain.FinalRecord {
	if channel == "" {
		return rows
	}
	filtered := make([]domain.FinalRecord, 0, len(rows))
	for _, r := range rows {
		if r.Channel == channel {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// TopSKUs returns the n highest-selling SKUs of the current plan,
// optionally within one channel.
func (s *PlanService) TopSKUs(channel string, n int) ([]domain.SKUSummary, error) {
	plan, err := s.current()
	if err != nil {
		return nil, err
	}
	channel = strings.ToUpper(strings.TrimSpace(channel))
	return engine.TopSKUs(filterByChannel(plan.ChannelRows, channel), n), nil
}

// TopStyles returns the n highest-selling styles of the current plan,
// optionally within one channel.
func (s *PlanService) TopStyles(channel string, n int) ([]domain.StyleSummary, error) {
	plan, err := s.current()
	if err != nil {
		return nil, err
	}
	channel = strings.ToUpper(strings.TrimSpace(channel))
	return engine.TopStyles(filterByChannel(plan.ChannelRows, channel), n), nil
}

// SellerSummary rolls up the direct/seller slice of the current plan.
func (s *PlanService) SellerSummary() (domain.SellerSummary, error) {
	plan, err := s.current()
	if err != nil {
		return domain.SellerSummary{}, err
	}
	return engine.SellerRollup(plan), nil
}

// PoolUsage reports per-pool-SKU consumption plus grand totals.
func (s *PlanService) PoolUsage() ([]domain.PoolUsage, domain.PoolTotals, error) {
	plan, err := s.current()
	if err != nil {
		return nil, domain.PoolTotals{}, err
	}
	return plan.PoolUsage, engine.PoolUsageTotals(plan.PoolUsage), nil
}

// Status describes the currently held plan.
type Status struct {
	Ready            bool      `json:"ready"`
	GeneratedAt      time.Time `json:"generated_at,omitempty"`
	ChannelRows      int       `json:"channel_rows"`
	SellerRows       int       `json:"seller_rows"`
	UnresolvedDemand int       `json:"unresolved_demand"`
}

func (s *PlanService) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.plan == nil {
		return Status{}
	}
	return Status{
		Ready:            true,
		GeneratedAt:      s.plan.GeneratedAt,
		ChannelRows:      len(s.plan.ChannelRows),
		SellerRows:       len(s.plan.SellerRows),
		UnresolvedDemand: s.plan.UnresolvedDemand,
	}
}
