package ingest

import "fmt"

// Source names, used in contract errors and logging.
const (
	SourceSales         = "sales"
	SourceLocationStock = "location_stock"
	SourcePoolStock     = "pool_stock"
	SourceStyleRemarks  = "style_remarks"
)

// Column names of the four extracts.
const (
	colChannel         = "Channel"
	colDate            = "Date"
	colSKU             = "SKU"
	colChannelCode     = "Channel Code"
	colQuantity        = "Quantity"
	colLocation        = "Location"
	colFulfillmentType = "Fulfillment Type"
	colPoolSKU         = "Pool SKU"
	colStyle           = "Style"
	colSize            = "Size"
	colCategory        = "Category"
	colRemark          = "Remark"
)

// contracts lists the required columns per source. A header without a
// required column is a contract violation: the whole cycle aborts
// before any computation, no partial results.
var contracts = map[string][]string{
	SourceSales: {
		colChannel, colDate, colSKU, colChannelCode, colQuantity,
		colLocation, colFulfillmentType, colPoolSKU, colStyle, colSize,
	},
	SourceLocationStock: {
		colChannel, colLocation, colSKU, colChannelCode, colQuantity,
	},
	SourcePoolStock: {
		colPoolSKU, colQuantity,
	},
	SourceStyleRemarks: {
		colStyle, colCategory, colRemark,
	},
}

// ValidateContract checks that every required column of the named
// source is present in the extract header. A document with no header
// at all fails, as does a header missing a required column; a
// header-only extract with zero data rows is a valid empty extract.
func ValidateContract(header []string, source string) error {
	required, ok := contracts[source]
	if !ok {
		return fmt.Errorf("unknown source %q", source)
	}

	if len(header) == 0 {
		return fmt.Errorf("contract violation in %s: document has no header", source)
	}

	present := make(map[string]struct{}, len(header))
	for _, col := range header {
		present[col] = struct{}{}
	}

	for _, col := range required {
		if _, ok := present[col]; !ok {
			return fmt.Errorf("contract violation in %s: missing column %q", source, col)
		}
	}
	return nil
}
