package usecase

import (
	"sort"

	"adsync/internal/domain"
)

// Aggregator folds normalized rows into daily totals, per-SKU rollups, and
// per-campaign rollups. The accumulator maps are owned exclusively by one
// pipeline invocation and every fold is commutative (sums and set unions),
// so row order never affects the output.
type Aggregator struct {
	daily        map[string]*dailyAcc
	skuDays      map[string]map[string]*domain.SkuDayMetrics
	skuTotals    map[string]*skuAcc
	campaigns    map[string]*campaignAcc
	rowsByReport map[string]int
}

type dailyAcc struct {
	spend, revenue                     float64
	orders, units, impressions, clicks float64
}

type skuAcc struct {
	sku, asin                          string
	spend, sales                       float64
	orders, units, clicks, impressions float64
	campaigns                          map[string]bool
	adGroups                           map[string]bool
	dates                              map[string]bool
}

type campaignAcc struct {
	adType, name                            string
	status                                  string
	budget                                  float64
	spend, sales                            float64
	orders, units, clicks, impressions, dpv float64
	dates                                   map[string]bool
	lastDate                                string
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		daily:        make(map[string]*dailyAcc),
		skuDays:      make(map[string]map[string]*domain.SkuDayMetrics),
		skuTotals:    make(map[string]*skuAcc),
		campaigns:    make(map[string]*campaignAcc),
		rowsByReport: make(map[string]int),
	}
}

// Consume folds one report type's normalized rows into the accumulators.
// Campaign-level reports feed the daily and campaign rollups; the SP
// advertised-product report is the only one with SKU granularity.
func (a *Aggregator) Consume(spec domain.ReportSpec, rows []domain.Row) {
	a.rowsByReport[spec.Key] += len(rows)

	if spec.CampaignLevel {
		for _, row := range rows {
			a.foldDaily(spec, row)
			a.foldCampaign(spec, row)
		}
	}
	if spec.ProductLevel {
		for _, row := range rows {
			a.foldSku(spec, row)
		}
	}
}

func (a *Aggregator) foldDaily(spec domain.ReportSpec, row domain.Row) {
	date := row.Str("Date")
	if date == "" {
		return
	}
	acc := a.daily[date]
	if acc == nil {
		acc = &dailyAcc{}
		a.daily[date] = acc
	}
	acc.spend += row.Num("Spend")
	acc.revenue += row.Num(salesColumn(spec.Window))
	acc.orders += row.Num(ordersColumn(spec.Window))
	acc.units += row.Num(unitsColumn(spec.Window))
	acc.impressions += row.Num("Impressions")
	acc.clicks += row.Num("Clicks")
}

func (a *Aggregator) foldSku(spec domain.ReportSpec, row domain.Row) {
	sku := row.Str("Advertised SKU")
	if sku == "" {
		sku = row.Str("Advertised ASIN")
	}
	date := row.Str("Date")
	if sku == "" || date == "" {
		return
	}

	spend := row.Num("Spend")
	sales := row.Num(salesColumn(spec.Window))
	orders := row.Num(ordersColumn(spec.Window))
	units := row.Num(unitsColumn(spec.Window))
	clicks := row.Num("Clicks")
	impressions := row.Num("Impressions")

	day := a.skuDays[date]
	if day == nil {
		day = make(map[string]*domain.SkuDayMetrics)
		a.skuDays[date] = day
	}
	dm := day[sku]
	if dm == nil {
		dm = &domain.SkuDayMetrics{}
		day[sku] = dm
	}
	dm.Spend += spend
	dm.Sales += sales
	dm.Orders += int(orders)
	dm.Units += int(units)
	dm.Clicks += int(clicks)
	dm.Impressions += int(impressions)

	acc := a.skuTotals[sku]
	if acc == nil {
		acc = &skuAcc{
			sku:       sku,
			campaigns: make(map[string]bool),
			adGroups:  make(map[string]bool),
			dates:     make(map[string]bool),
		}
		a.skuTotals[sku] = acc
	}
	if asin := row.Str("Advertised ASIN"); asin != "" {
		acc.asin = asin
	}
	acc.spend += spend
	acc.sales += sales
	acc.orders += orders
	acc.units += units
	acc.clicks += clicks
	acc.impressions += impressions
	acc.dates[date] = true
	if c := row.Str("Campaign Name"); c != "" {
		acc.campaigns[c] = true
	}
	if g := row.Str("Ad Group Name"); g != "" {
		acc.adGroups[g] = true
	}
}

func (a *Aggregator) foldCampaign(spec domain.ReportSpec, row domain.Row) {
	name := row.Str("Campaign Name")
	date := row.Str("Date")
	if name == "" {
		return
	}

	// adType in the key keeps identically named SP/SB/SD campaigns apart
	key := spec.AdProduct.Short() + "::" + name
	acc := a.campaigns[key]
	if acc == nil {
		acc = &campaignAcc{
			adType: spec.AdProduct.Short(),
			name:   name,
			dates:  make(map[string]bool),
		}
		a.campaigns[key] = acc
	}

	acc.spend += row.Num("Spend")
	acc.sales += row.Num(salesColumn(spec.Window))
	acc.orders += row.Num(ordersColumn(spec.Window))
	acc.units += row.Num(unitsColumn(spec.Window))
	acc.clicks += row.Num("Clicks")
	acc.impressions += row.Num("Impressions")
	acc.dpv += row.Num("Detail Page Views")
	if date != "" {
		acc.dates[date] = true
	}

	// status and budget are last-value-wins from the most recent row
	if date >= acc.lastDate {
		acc.lastDate = date
		if s := row.Str("Campaign Status"); s != "" {
			acc.status = s
		}
		if row.Has("Campaign Budget") {
			acc.budget = row.Num("Campaign Budget")
		}
	}
}

// DailyTotals returns the daily rollup sorted by date ascending. Derived
// ratios are computed from the accumulated totals only; every denominator
// is guarded so ratios are always finite.
func (a *Aggregator) DailyTotals() []domain.DailyTotal {
	totals := make([]domain.DailyTotal, 0, len(a.daily))
	for date, acc := range a.daily {
		totals = append(totals, domain.DailyTotal{
			Date:           date,
			Spend:          acc.spend,
			Revenue:        acc.revenue,
			Orders:         int(acc.orders),
			Units:          int(acc.units),
			Impressions:    int(acc.impressions),
			Clicks:         int(acc.clicks),
			ACOS:           safeDiv(acc.spend, acc.revenue) * 100,
			ROAS:           safeDiv(acc.revenue, acc.spend),
			CTR:            safeDiv(acc.clicks, acc.impressions) * 100,
			CPC:            safeDiv(acc.spend, acc.clicks),
			ConversionRate: safeDiv(acc.orders, acc.clicks) * 100,
		})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Date < totals[j].Date })
	return totals
}

// SkuDaily returns the date → SKU → metrics breakdown.
func (a *Aggregator) SkuDaily() map[string]map[string]domain.SkuDayMetrics {
	out := make(map[string]map[string]domain.SkuDayMetrics, len(a.skuDays))
	for date, skus := range a.skuDays {
		day := make(map[string]domain.SkuDayMetrics, len(skus))
		for sku, m := range skus {
			day[sku] = *m
		}
		out[date] = day
	}
	return out
}

// SkuSummary returns per-SKU all-time rollups sorted by spend descending.
func (a *Aggregator) SkuSummary() []domain.SkuRollup {
	rollups := make([]domain.SkuRollup, 0, len(a.skuTotals))
	for _, acc := range a.skuTotals {
		days := len(acc.dates)
		rollups = append(rollups, domain.SkuRollup{
			SKU:            acc.sku,
			ASIN:           acc.asin,
			Spend:          acc.spend,
			Sales:          acc.sales,
			Orders:         int(acc.orders),
			Units:          int(acc.units),
			Clicks:         int(acc.clicks),
			Impressions:    int(acc.impressions),
			Campaigns:      sortedKeys(acc.campaigns),
			AdGroups:       sortedKeys(acc.adGroups),
			DaysActive:     days,
			ACOS:           safeDiv(acc.spend, acc.sales) * 100,
			ROAS:           safeDiv(acc.sales, acc.spend),
			CTR:            safeDiv(acc.clicks, acc.impressions) * 100,
			CPC:            safeDiv(acc.spend, acc.clicks),
			ConversionRate: safeDiv(acc.orders, acc.clicks) * 100,
			AvgDailySpend:  safeDiv(acc.spend, float64(days)),
		})
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Spend > rollups[j].Spend })
	return rollups
}

// CampaignSummary returns per-campaign rollups sorted by spend descending.
func (a *Aggregator) CampaignSummary() []domain.CampaignRollup {
	rollups := make([]domain.CampaignRollup, 0, len(a.campaigns))
	for _, acc := range a.campaigns {
		rollups = append(rollups, domain.CampaignRollup{
			AdType:          acc.adType,
			CampaignName:    acc.name,
			Status:          acc.status,
			Budget:          acc.budget,
			Spend:           acc.spend,
			Sales:           acc.sales,
			Orders:          int(acc.orders),
			Units:           int(acc.units),
			Clicks:          int(acc.clicks),
			Impressions:     int(acc.impressions),
			DetailPageViews: int(acc.dpv),
			Days:            len(acc.dates),
			ACOS:            safeDiv(acc.spend, acc.sales) * 100,
			ROAS:            safeDiv(acc.sales, acc.spend),
			CTR:             safeDiv(acc.clicks, acc.impressions) * 100,
			CPC:             safeDiv(acc.spend, acc.clicks),
			ConversionRate:  safeDiv(acc.orders, acc.clicks) * 100,
		})
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].Spend > rollups[j].Spend })
	return rollups
}

// RowsByReport returns how many rows each report type contributed.
func (a *Aggregator) RowsByReport() map[string]int {
	out := make(map[string]int, len(a.rowsByReport))
	for k, v := range a.rowsByReport {
		out[k] = v
	}
	return out
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
