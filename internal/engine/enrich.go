package engine

import (
	"math"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

// Decision remarks surfaced on the final rows.
const (
	RemarkStyleClosed    = "style closed"
	RemarkCappedByDemand = "capped by demand"
	RemarkStockCovered   = "no demand, stock covered"
)

type stockKey struct {
	Channel    string
	LocationID string
	SKU        string
}

// Enrich attaches current location stock to every record and applies
// the threshold state machine to reach a terminal action.
//
//	closed style          -> CLOSED_RECALL, recall everything on hand
//	no run rate           -> NONE, no signal to act on
//	cover > recall days   -> RECALL down to the recall threshold
//	cover < target days   -> SHIP, capped at the true 45-day need
//	otherwise             -> NONE
//
// The band between the two thresholds is deliberate hysteresis: stock is
// not re-shipped the instant it dips nor recalled the instant it is
// ample, so noisy day-to-day sale counts cannot oscillate a location
// between SHIP and RECALL.
func (e *Engine) Enrich(records []domain.AllocatedRecord, stock []domain.LocationStockRecord, remarks []domain.StyleRemark) []domain.FinalRecord {
	closedStyles := make(map[string]struct{})
	for _, r := range remarks {
		if r.Remark == e.cfg.ClosedRemark {
			closedStyles[r.Style] = struct{}{}
		}
	}

	stockByKey := make(map[stockKey]int, len(stock))
	for _, r := range stock {
		stockByKey[stockKey{r.Channel, r.LocationID, r.SKU}] += r.Qty
	}

	out := make([]domain.FinalRecord, 0, len(records))
	for _, r := range records {
		locationStock := stockByKey[stockKey{r.Channel, r.LocationID, r.SKU}]
		cover := StockCover(locationStock, r.DailyRunRate)

		rec := domain.FinalRecord{
			AllocatedRecord: r,
			LocationStock:   locationStock,
			StockCover:      domain.StockCoverDays(cover),
			Remark:          r.AllocationRemark,
		}

		if _, closed := closedStyles[r.Style]; closed {
			// Overrides everything else unconditionally.
			rec.Action = domain.ActionClosedRecall
			rec.RecallQty = locationStock
			rec.ShipmentQty = 0
			rec.ActualShipmentQty = 0
			rec.Remark = RemarkStyleClosed
			out = append(out, rec)
			continue
		}

		if r.DailyRunRate == 0 {
			rec.Action = domain.ActionNone
			rec.ShipmentQty = 0
			out = append(out, rec)
			continue
		}

		recallDays := float64(e.cfg.RecallThresholdDays)
		targetDays := float64(e.cfg.TargetStockDays)

		switch {
		case cover > recallDays:
			recall := int(math.Floor(float64(locationStock) - r.DailyRunRate*recallDays))
			if recall < 0 {
				recall = 0
			}
			rec.ShipmentQty = 0
			rec.RecallQty = recall
			rec.Action = domain.ActionRecall
			if recall == 0 {
				rec.Action = domain.ActionNone
			}

		case cover < targetDays:
			need := int(math.Ceil(r.DailyRunRate*targetDays - float64(locationStock)))
			if need < 0 {
				need = 0
			}
			rec.ActualShipmentQty = need
			if need == 0 {
				rec.Action = domain.ActionNone
				rec.ShipmentQty = 0
				rec.Remark = RemarkStockCovered
				break
			}
			rec.Action = domain.ActionShip
			if rec.ShipmentQty > need {
				rec.ShipmentQty = need
				rec.Remark = RemarkCappedByDemand
			}

		default:
			rec.Action = domain.ActionNone
			rec.ShipmentQty = 0
		}

		out = append(out, rec)
	}

	return out
}
