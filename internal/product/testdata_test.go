package product

import (
	"github.com/shopspring/decimal"
)

func stock(n int64) *int64 { return &n }

// seedRecords returns three rows whose article numbers sort differently as
// text and as numbers.
func seedRecords() []Record {
	return []Record{
		{
			ID: 1, ArticleNo: "ART-010",
			NameEN: "Widget", NameSV: "Pryl",
			DescriptionEN: "A widget", DescriptionSV: "En pryl",
			InPrice: decimal.NewNullDecimal(decimal.NewFromInt(5)),
			Price:   decimal.NewFromInt(10),
			Unit:    "pcs", InStock: stock(20),
		},
		{
			ID: 2, ArticleNo: "ART-1",
			NameEN: "Consulting", NameSV: "Konsultation",
			DescriptionEN: "Hourly consulting", DescriptionSV: "Konsultation per timme",
			Price: decimal.NewFromInt(950),
			Unit:  "hour",
		},
		{
			ID: 3, ArticleNo: "ART-002",
			NameEN: "Bolt", NameSV: "Bult",
			DescriptionEN: "Steel bolt", DescriptionSV: "Stålbult",
			InPrice: decimal.NewNullDecimal(decimal.RequireFromString("0.25")),
			Price:   decimal.RequireFromString("1.50"),
			Unit:    "pcs", InStock: stock(500),
		},
	}
}
