package engine

import "math"

// saleWindowDays is the length of the sales extract window. The daily
// run rate is always derived from a 30-day sale quantity.
const saleWindowDays = 30

// DailyRunRate converts a 30-day sale quantity into units sold per day.
func DailyRunRate(saleQty int) float64 {
	return float64(saleQty) / saleWindowDays
}

// StockCover returns the days of stock remaining at the current run
// rate. With no run rate the cover is unbounded, not zero; +Inf keeps
// "never sells" distinguishable from "sold out today".
func StockCover(locationStock int, drr float64) float64 {
	if drr <= 0 {
		return math.Inf(1)
	}
	return float64(locationStock) / drr
}
