package domain

// AdProduct identifies the advertising program a report covers.
type AdProduct string

const (
	SponsoredProducts AdProduct = "SPONSORED_PRODUCTS"
	SponsoredBrands   AdProduct = "SPONSORED_BRANDS"
	SponsoredDisplay  AdProduct = "SPONSORED_DISPLAY"
)

// Short returns the abbreviated ad type used in rollup keys and output.
func (p AdProduct) Short() string {
	switch p {
	case SponsoredProducts:
		return "SP"
	case SponsoredBrands:
		return "SB"
	case SponsoredDisplay:
		return "SD"
	}
	return string(p)
}

type JobStatus string

const (
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
	JobError      JobStatus = "ERROR"
)

// ReportSpec is the static description of one report type. The catalog of
// specs is fixed at startup and never mutated.
type ReportSpec struct {
	Key           string
	Label         string
	AdProduct     AdProduct
	ReportTypeID  string
	GroupBy       []string
	Columns       []string
	Window        int // attribution window in days (SP=7, SB/SD=14)
	CampaignLevel bool
	ProductLevel  bool // carries SKU/ASIN granularity
}

// ReportJob tracks one report submission through the pipeline. The caller
// persists and replays these records verbatim to resume an interrupted run.
type ReportJob struct {
	ReportID    string    `json:"reportId,omitempty"`
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Status      JobStatus `json:"status"`
	DownloadURL string    `json:"downloadUrl,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Terminal reports whether the job needs no further polling.
func (j ReportJob) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobError
}

// Pollable reports whether the job has an upstream id and is still running.
func (j ReportJob) Pollable() bool {
	return j.ReportID != "" && !j.Terminal()
}

// Upstream report lifecycle states.
const (
	UpstreamCompleted = "COMPLETED"
	UpstreamFailure   = "FAILURE"
)

// CreateReportRequest is the body of a report-submission call.
type CreateReportRequest struct {
	Name          string              `json:"name"`
	StartDate     string              `json:"startDate"`
	EndDate       string              `json:"endDate"`
	Configuration ReportConfiguration `json:"configuration"`
}

type ReportConfiguration struct {
	AdProduct    AdProduct `json:"adProduct"`
	ReportTypeID string    `json:"reportTypeId"`
	TimeUnit     string    `json:"timeUnit"`
	Format       string    `json:"format"`
	GroupBy      []string  `json:"groupBy"`
	Columns      []string  `json:"columns"`
}

// ReportStatus is the upstream view of a submitted report.
type ReportStatus struct {
	ReportID      string `json:"reportId"`
	Status        string `json:"status"`
	URL           string `json:"url,omitempty"`
	StatusDetails string `json:"statusDetails,omitempty"`
	FailureReason string `json:"failureReason,omitempty"`
}

// Detail returns the most specific failure description the upstream gave.
func (s ReportStatus) Detail() string {
	if s.FailureReason != "" {
		return s.FailureReason
	}
	if s.StatusDetails != "" {
		return s.StatusDetails
	}
	return "report processing failed"
}

// Payload is a downloaded report body before decoding.
type Payload struct {
	Body            []byte
	ContentType     string
	ContentEncoding string
	URL             string
}
