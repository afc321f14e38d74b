package domain

// ReportCatalog returns the eight report types the pipeline provisions.
// Sponsored Products reports attribute on a 7-day window, Sponsored Brands
// and Display on 14 days. The slice is rebuilt on every call so callers can
// never mutate the canonical definitions.
func ReportCatalog() []ReportSpec {
	return []ReportSpec{
		{
			Key:          "sp_campaigns",
			Label:        "SP Campaigns",
			AdProduct:    SponsoredProducts,
			ReportTypeID: "spCampaigns",
			GroupBy:      []string{"campaign"},
			Columns: []string{
				"date", "campaignName", "campaignId", "campaignStatus",
				"campaignBudgetAmount", "impressions", "clicks", "cost",
				"purchases7d", "sales7d", "unitsSoldClicks7d",
			},
			Window:        7,
			CampaignLevel: true,
		},
		{
			Key:          "sp_targeting",
			Label:        "SP Targeting",
			AdProduct:    SponsoredProducts,
			ReportTypeID: "spTargeting",
			GroupBy:      []string{"targeting"},
			Columns: []string{
				"date", "campaignName", "adGroupName", "targeting", "matchType",
				"impressions", "clicks", "cost",
				"purchases7d", "sales7d", "unitsSoldClicks7d",
			},
			Window: 7,
		},
		{
			Key:          "sp_search_terms",
			Label:        "SP Search Terms",
			AdProduct:    SponsoredProducts,
			ReportTypeID: "spSearchTerm",
			GroupBy:      []string{"searchTerm"},
			Columns: []string{
				"date", "campaignName", "adGroupName", "searchTerm",
				"impressions", "clicks", "cost",
				"purchases7d", "sales7d", "unitsSoldClicks7d",
			},
			Window: 7,
		},
		{
			Key:          "sp_advertised_product",
			Label:        "SP Advertised Product",
			AdProduct:    SponsoredProducts,
			ReportTypeID: "spAdvertisedProduct",
			GroupBy:      []string{"advertiser"},
			Columns: []string{
				"date", "campaignName", "adGroupName", "advertisedSku",
				"advertisedAsin", "impressions", "clicks", "cost",
				"purchases7d", "sales7d", "unitsSoldClicks7d",
			},
			Window:       7,
			ProductLevel: true,
		},
		{
			Key:          "sp_purchased_product",
			Label:        "SP Purchased Product",
			AdProduct:    SponsoredProducts,
			ReportTypeID: "spPurchasedProduct",
			GroupBy:      []string{"asin"},
			Columns: []string{
				"date", "campaignName", "adGroupName", "advertisedAsin",
				"purchasedAsin", "purchases7d", "sales7d", "unitsSoldClicks7d",
			},
			Window: 7,
		},
		{
			Key:          "sb_campaigns",
			Label:        "SB Campaigns",
			AdProduct:    SponsoredBrands,
			ReportTypeID: "sbCampaigns",
			GroupBy:      []string{"campaign"},
			Columns: []string{
				"date", "campaignName", "campaignId", "campaignStatus",
				"campaignBudgetAmount", "impressions", "clicks", "cost",
				"purchases14d", "sales14d", "unitsSold14d",
			},
			Window:        14,
			CampaignLevel: true,
		},
		{
			Key:          "sd_campaigns",
			Label:        "SD Campaigns",
			AdProduct:    SponsoredDisplay,
			ReportTypeID: "sdCampaigns",
			GroupBy:      []string{"campaign"},
			Columns: []string{
				"date", "campaignName", "campaignId", "campaignStatus",
				"campaignBudgetAmount", "impressions", "clicks", "cost",
				"purchases14d", "sales14d", "unitsSold14d", "detailPageViews",
			},
			Window:        14,
			CampaignLevel: true,
		},
		{
			Key:          "sd_advertised_product",
			Label:        "SD Advertised Product",
			AdProduct:    SponsoredDisplay,
			ReportTypeID: "sdAdvertisedProduct",
			GroupBy:      []string{"advertiser"},
			Columns: []string{
				"date", "campaignName", "adGroupName", "promotedSku",
				"promotedAsin", "impressions", "clicks", "cost",
				"purchases14d", "sales14d", "unitsSold14d",
			},
			Window: 14,
		},
	}
}

// SpecByKey looks a spec up in the catalog, for re-submitting resumed jobs.
func SpecByKey(key string) (ReportSpec, bool) {
	for _, spec := range ReportCatalog() {
		if spec.Key == key {
			return spec, true
		}
	}
	return ReportSpec{}, false
}
