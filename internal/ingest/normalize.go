package ingest

import (
	"strconv"
	"strings"

	"github.com/nimbleretail/poolalloc/internal/domain"
)

// canonicalChannels maps raw channel spellings onto canonical names by
// substring match. Unknown channels pass through upper-cased so a new
// marketplace does not break ingestion.
var canonicalChannels = []string{"AMAZON", "FLIPKART", "MYNTRA"}

func normalizeChannel(raw string) string {
	v := strings.ToUpper(strings.TrimSpace(raw))
	for _, canonical := range canonicalChannels {
		if strings.Contains(v, canonical) {
			return canonical
		}
	}
	return v
}

// parseQty reads a quantity cell, tolerating thousands separators and
// blanks. Unparseable cells count as zero rather than failing the row.
func parseQty(raw string) int {
	v := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0
		}
		return int(f)
	}
	return n
}

func cell(row map[string]string, col string) string {
	return strings.TrimSpace(row[col])
}

// NormalizeSales maps raw sales rows into typed sale records. The
// source contract has already been checked against the extract header.
func NormalizeSales(rows []map[string]string) []domain.SaleRecord {
	out := make([]domain.SaleRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.SaleRecord{
			Channel:         normalizeChannel(r[colChannel]),
			Date:            cell(r, colDate),
			SKU:             cell(r, colSKU),
			ChannelCode:     cell(r, colChannelCode),
			Qty:             parseQty(r[colQuantity]),
			LocationID:      cell(r, colLocation),
			FulfillmentType: cell(r, colFulfillmentType),
			PoolSKU:         cell(r, colPoolSKU),
			Style:           cell(r, colStyle),
			Size:            cell(r, colSize),
		})
	}
	return out
}

// NormalizeLocationStock maps raw stock rows into typed stock records.
func NormalizeLocationStock(rows []map[string]string) []domain.LocationStockRecord {
	out := make([]domain.LocationStockRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.LocationStockRecord{
			Channel:     normalizeChannel(r[colChannel]),
			LocationID:  cell(r, colLocation),
			SKU:         cell(r, colSKU),
			ChannelCode: cell(r, colChannelCode),
			Qty:         parseQty(r[colQuantity]),
		})
	}
	return out
}

// NormalizePoolStock maps raw pool rows into typed pool records.
func NormalizePoolStock(rows []map[string]string) []domain.PoolStockRecord {
	out := make([]domain.PoolStockRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.PoolStockRecord{
			PoolSKU: cell(r, colPoolSKU),
			Qty:     parseQty(r[colQuantity]),
		})
	}
	return out
}

// NormalizeStyleRemarks maps raw remark rows into typed remark records.
func NormalizeStyleRemarks(rows []map[string]string) []domain.StyleRemark {
	out := make([]domain.StyleRemark, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.StyleRemark{
			Style:    cell(r, colStyle),
			Category: cell(r, colCategory),
			Remark:   cell(r, colRemark),
		})
	}
	return out
}
