package usecase

import (
	"fmt"

	"adsync/internal/domain"
)

// The normalizer reshapes each report type's rows onto the destination
// vocabulary ("Campaign Name", "Spend", "7 Day Total Sales", ...). Upstream
// field names are not systematically related to the destination names, so
// every report type carries an explicit mapping table; nothing is derived by
// convention or reflection.

type fieldMapping struct {
	src     string
	dst     string
	numeric bool
}

// columns shared by every report type
var commonFields = []fieldMapping{
	{src: "campaignName", dst: "Campaign Name"},
	{src: "impressions", dst: "Impressions", numeric: true},
	{src: "clicks", dst: "Clicks", numeric: true},
	{src: "cost", dst: "Spend", numeric: true},
}

// campaign-status columns only the campaign-level reports request
var campaignFields = []fieldMapping{
	{src: "campaignId", dst: "Campaign ID"},
	{src: "campaignStatus", dst: "Campaign Status"},
	{src: "campaignBudgetAmount", dst: "Campaign Budget", numeric: true},
}

var reportFields = map[string][]fieldMapping{
	"sp_campaigns": campaignFields,
	"sp_targeting": {
		{src: "adGroupName", dst: "Ad Group Name"},
		{src: "targeting", dst: "Targeting"},
		{src: "matchType", dst: "Match Type"},
	},
	"sp_search_terms": {
		{src: "adGroupName", dst: "Ad Group Name"},
		{src: "searchTerm", dst: "Customer Search Term"},
	},
	"sp_advertised_product": {
		{src: "adGroupName", dst: "Ad Group Name"},
		{src: "advertisedSku", dst: "Advertised SKU"},
		{src: "advertisedAsin", dst: "Advertised ASIN"},
	},
	"sp_purchased_product": {
		{src: "adGroupName", dst: "Ad Group Name"},
		{src: "advertisedAsin", dst: "Advertised ASIN"},
		{src: "purchasedAsin", dst: "Purchased ASIN"},
	},
	"sb_campaigns": campaignFields,
	"sd_campaigns": append(campaignFields, fieldMapping{src: "detailPageViews", dst: "Detail Page Views", numeric: true}),
	"sd_advertised_product": {
		{src: "adGroupName", dst: "Ad Group Name"},
		{src: "promotedSku", dst: "Advertised SKU"},
		{src: "promotedAsin", dst: "Advertised ASIN"},
	},
}

// normalizeRows maps raw upstream rows onto the canonical wide schema. All
// variants share a Date column so downstream consumers can join on time.
func normalizeRows(spec domain.ReportSpec, rows []domain.Row) []domain.Row {
	mappings := append(append([]fieldMapping{}, commonFields...), reportFields[spec.Key]...)

	out := make([]domain.Row, 0, len(rows))
	for _, raw := range rows {
		n := domain.Row{"Date": raw.Str("date")}
		for _, fm := range mappings {
			if !raw.Has(fm.src) {
				continue
			}
			if fm.numeric {
				n[fm.dst] = raw.Num(fm.src)
			} else {
				n[fm.dst] = raw.Str(fm.src)
			}
		}
		n[salesColumn(spec.Window)] = rawSales(raw, spec.Window)
		n[ordersColumn(spec.Window)] = rawPurchases(raw, spec.Window)
		n[unitsColumn(spec.Window)] = rawUnits(raw, spec.Window)
		out = append(out, n)
	}
	return out
}

// Destination column names depend on the report family's attribution window.
func salesColumn(window int) string {
	return fmt.Sprintf("%d Day Total Sales", window)
}

func ordersColumn(window int) string {
	return fmt.Sprintf("%d Day Total Orders (#)", window)
}

func unitsColumn(window int) string {
	return fmt.Sprintf("%d Day Total Units (#)", window)
}

// Attribution-window-aware accessors. Metric field names differ by window
// across report families (SP attributes on 7 days, SB/SD on 14) and older
// API row shapes used unwindowed names, so each accessor tries the windowed
// spellings first and falls back to the legacy ones.

func rawSales(r domain.Row, window int) float64 {
	return firstNum(r,
		fmt.Sprintf("sales%dd", window),
		fmt.Sprintf("salesClicks%dd", window),
		"attributedSales",
		"sales",
	)
}

func rawPurchases(r domain.Row, window int) float64 {
	return firstNum(r,
		fmt.Sprintf("purchases%dd", window),
		fmt.Sprintf("purchasesClicks%dd", window),
		"attributedConversions",
		"purchases",
		"orders",
	)
}

func rawUnits(r domain.Row, window int) float64 {
	return firstNum(r,
		fmt.Sprintf("unitsSoldClicks%dd", window),
		fmt.Sprintf("unitsSold%dd", window),
		"attributedUnitsOrdered",
		"unitsSold",
	)
}

func firstNum(r domain.Row, keys ...string) float64 {
	for _, key := range keys {
		if r.Has(key) {
			return r.Num(key)
		}
	}
	return 0
}
