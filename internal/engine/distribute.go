package engine

import (
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

type locationCandidate struct {
	LocationID string
	Share      float64
}

// DistributeLocations assigns a physical location to every direct/seller
// record. Channel-fulfilled records already carry one and pass through
// unchanged.
//
// The preferred location for a SKU is the one with the highest
// location-level demand weight among channel-fulfilled records of that
// SKU. Comparison is strictly-greater only, so with the deterministic
// input order the first seen wins ties. A SKU with no fulfillment
// history falls back to the configured per-channel candidate list and
// takes its first entry; if the record's channel has no list, channels
// are scanned in sorted order for the first non-empty one.
//
// A record with neither history nor fallback cannot be placed. It is
// excluded from the plan and counted, never silently dropped.
func (e *Engine) DistributeLocations(records []domain.AllocatedRecord) (out []domain.AllocatedRecord, unresolved int) {
	bestBySKU := make(map[string]locationCandidate)
	for _, r := range records {
		if r.Channel == domain.DirectChannel || r.LocationID == "" {
			continue
		}
		if best, ok := bestBySKU[r.SKU]; !ok || r.LocationShare > best.Share {
			bestBySKU[r.SKU] = locationCandidate{LocationID: r.LocationID, Share: r.LocationShare}
		}
	}

	out = make([]domain.AllocatedRecord, 0, len(records))
	for _, r := range records {
		if r.LocationID != "" {
			out = append(out, r)
			continue
		}

		if best, ok := bestBySKU[r.SKU]; ok {
			r.LocationID = best.LocationID
			out = append(out, r)
			continue
		}

		if loc, ok := e.fallbackLocation(r.Channel); ok {
			r.LocationID = loc
			out = append(out, r)
			continue
		}

		unresolved++
		log.Warn().
			Str("channel", r.Channel).
			Str("sku", r.SKU).
			Str("pool_sku", r.PoolSKU).
			Msg("no viable location for direct demand, record dropped")
	}

	return out, unresolved
}

func (e *Engine) fallbackLocation(channel string) (string, bool) {
	if list := e.cfg.FallbackLocations[channel]; len(list) > 0 {
		return list[0], true
	}

	channels := make([]string, 0, len(e.cfg.FallbackLocations))
	for ch := range e.cfg.FallbackLocations {
		channels = append(channels, ch)
	}
	sort.Strings(channels)

	for _, ch := range channels {
		if list := e.cfg.FallbackLocations[ch]; len(list) > 0 {
			return list[0], true
		}
	}
	return "", false
}
