package engine

import (
	"github.com/nimbleretail/poolalloc/internal/domain"
)

type networkKey struct {
	Channel    string
	LocationID string
}

// fulfillmentNetwork is the authoritative set of (channel, location)
// pairs known to hold stock.
type fulfillmentNetwork map[networkKey]struct{}

func buildFulfillmentNetwork(stock []domain.LocationStockRecord) fulfillmentNetwork {
	network := make(fulfillmentNetwork, len(stock))
	for _, r := range stock {
		network[networkKey{Channel: r.Channel, LocationID: r.LocationID}] = struct{}{}
	}
	return network
}

// SplitByChannel partitions raw sale rows into channel-fulfilled rows
// (their location belongs to the fulfillment network of their channel)
// and direct/seller rows. A row with no location, or a location the
// network does not recognize, is direct - never dropped, so demand is
// never silently lost. Direct rows are reclassified under the DIRECT
// sentinel channel with no location; inputs are not mutated.
func SplitByChannel(sales []domain.SaleRecord, stock []domain.LocationStockRecord) (fulfilled, direct []domain.SaleRecord) {
	network := buildFulfillmentNetwork(stock)

	fulfilled = make([]domain.SaleRecord, 0, len(sales))
	direct = make([]domain.SaleRecord, 0)

	for _, r := range sales {
		if r.LocationID != "" {
			if _, ok := network[networkKey{Channel: r.Channel, LocationID: r.LocationID}]; ok {
				fulfilled = append(fulfilled, r)
				continue
			}
		}

		d := r
		d.Channel = domain.DirectChannel
		d.LocationID = ""
		direct = append(direct, d)
	}

	return fulfilled, direct
}
