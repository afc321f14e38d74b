package domain

// DailyTotal accumulates campaign-level metrics for one calendar date across
// SP/SB/SD. Derived ratios are computed from the accumulated totals only,
// never per source row.
type DailyTotal struct {
	Date        string  `json:"date"`
	Spend       float64 `json:"spend"`
	Revenue     float64 `json:"revenue"`
	Orders      int     `json:"orders"`
	Units       int     `json:"units"`
	Impressions int     `json:"impressions"`
	Clicks      int     `json:"clicks"`

	ACOS           float64 `json:"acos"`
	ROAS           float64 `json:"roas"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	ConversionRate float64 `json:"conversionRate"`
}

// SkuDayMetrics is the per-date slice of one SKU's activity.
type SkuDayMetrics struct {
	Spend       float64 `json:"spend"`
	Sales       float64 `json:"sales"`
	Orders      int     `json:"orders"`
	Units       int     `json:"units"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
}

// SkuRollup is the all-time total for one SKU (falling back to ASIN when the
// SKU is absent). DaysActive is the number of distinct dates the SKU appears
// in, used for velocity-style averages.
type SkuRollup struct {
	SKU         string   `json:"sku"`
	ASIN        string   `json:"asin,omitempty"`
	Spend       float64  `json:"spend"`
	Sales       float64  `json:"sales"`
	Orders      int      `json:"orders"`
	Units       int      `json:"units"`
	Clicks      int      `json:"clicks"`
	Impressions int      `json:"impressions"`
	Campaigns   []string `json:"campaigns"`
	AdGroups    []string `json:"adGroups,omitempty"`
	DaysActive  int      `json:"daysActive"`

	ACOS           float64 `json:"acos"`
	ROAS           float64 `json:"roas"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	ConversionRate float64 `json:"conversionRate"`
	AvgDailySpend  float64 `json:"avgDailySpend"`
}

// CampaignRollup is the all-time total for one campaign. AdType keeps
// identically named campaigns from different ad products apart. Status and
// Budget are last-value-wins from the most recent row seen.
type CampaignRollup struct {
	AdType          string  `json:"adType"`
	CampaignName    string  `json:"campaignName"`
	Status          string  `json:"status,omitempty"`
	Budget          float64 `json:"budget,omitempty"`
	Spend           float64 `json:"spend"`
	Sales           float64 `json:"sales"`
	Orders          int     `json:"orders"`
	Units           int     `json:"units"`
	Clicks          int     `json:"clicks"`
	Impressions     int     `json:"impressions"`
	DetailPageViews int     `json:"detailPageViews,omitempty"`
	Days            int     `json:"days"`

	ACOS           float64 `json:"acos"`
	ROAS           float64 `json:"roas"`
	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	ConversionRate float64 `json:"conversionRate"`
}

// SyncSummary is derived from the final rollups, not stored anywhere.
type SyncSummary struct {
	DateStart        string         `json:"dateStart"`
	DateEnd          string         `json:"dateEnd"`
	RowsTransformed  int            `json:"rowsTransformed"`
	RowsByReport     map[string]int `json:"rowsByReport"`
	Spend            float64        `json:"spend"`
	Revenue          float64        `json:"revenue"`
	ACOS             float64        `json:"acos"`
	ROAS             float64        `json:"roas"`
	CampaignCount    int            `json:"campaignCount"`
	SkuCount         int            `json:"skuCount"`
	ReportsCompleted int            `json:"reportsCompleted"`
	ReportsFailed    int            `json:"reportsFailed"`
}

// SyncError records a single report type's failure in the final result.
type SyncError struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

// Sync run outcomes.
const (
	SyncPending  = "pending"
	SyncComplete = "complete"
)

// SyncResult is the pipeline's terminal value. A pending result carries the
// full job list for the caller to replay; a complete result carries the
// rollups and any per-report errors.
type SyncResult struct {
	Status         string                              `json:"status"`
	PendingReports []ReportJob                         `json:"pendingReports,omitempty"`
	Summary        *SyncSummary                        `json:"summary,omitempty"`
	DailyData      []DailyTotal                        `json:"dailyData,omitempty"`
	SkuDailyData   map[string]map[string]SkuDayMetrics `json:"skuDailyData,omitempty"`
	SkuSummary     []SkuRollup                         `json:"skuSummary,omitempty"`
	Campaigns      []CampaignRollup                    `json:"campaigns,omitempty"`
	Reports        map[string][]Row                    `json:"reports,omitempty"`
	Errors         []SyncError                         `json:"errors,omitempty"`
}

// Credentials is the long-lived identity used to mint bearer tokens.
type Credentials struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RefreshToken string `json:"refreshToken"`
}

// RequestAuth is the per-invocation authentication attached to API calls.
type RequestAuth struct {
	Token     string
	ClientID  string
	ProfileID string
}

// SyncRequest is one pipeline invocation. When PendingReports is non-empty
// the run resumes by polling those jobs instead of submitting new ones.
type SyncRequest struct {
	Credentials
	ProfileID      string      `json:"profileId"`
	StartDate      string      `json:"startDate,omitempty"`
	EndDate        string      `json:"endDate,omitempty"`
	DaysBack       int         `json:"daysBack,omitempty"`
	PendingReports []ReportJob `json:"pendingReports,omitempty"`
}
