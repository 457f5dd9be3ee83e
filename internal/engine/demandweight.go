package engine

// Demand-weight shares. Each share is a plain ratio with a guarded
// denominator: a zero or negative denominator yields 0, never NaN.
// The nesting (channel -> location -> style -> SKU) splits a pool SKU's
// central stock first across channels in proportion to where it sells,
// then within a channel in proportion to local demand.

func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// ChannelShare is the channel's sale of a SKU over the SKU's sale
// across all channels.
func ChannelShare(channelSkuSale, totalSkuSale int) float64 {
	return safeRatio(float64(channelSkuSale), float64(totalSkuSale))
}

// LocationShare is the location's sale of a SKU over the channel's sale
// of that SKU. Direct/seller demand has no location split and carries a
// share of 1.
func LocationShare(locationSkuSale, channelSkuSale int) float64 {
	return safeRatio(float64(locationSkuSale), float64(channelSkuSale))
}

// StyleShare is the style's sale within a channel over the channel's
// sale of the record's own SKU. For a style spanning several SKUs the
// ratio exceeds 1; the SKU share divides it back out, so the combined
// product stays bounded.
func StyleShare(styleSale, channelSkuSale int) float64 {
	return safeRatio(float64(styleSale), float64(channelSkuSale))
}

// SKUShare is the SKU's sale within a style over the style's sale.
func SKUShare(skuSale, styleSale int) float64 {
	return safeRatio(float64(skuSale), float64(styleSale))
}

// CombinedShare is the record's proportional claim on the shared pool:
// the plain product of the four nested shares, always in [0,1].
func CombinedShare(channel, location, style, sku float64) float64 {
	return channel * location * style * sku
}
