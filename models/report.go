package models

// PlatformStatusCount is one row of the weekly report.
type PlatformStatusCount struct {
	Platform Platform `json:"platform"`
	Status   Status   `json:"status"`
	Count    int64    `json:"count"`
}

// SeriesStatusCount is one row of the series effectiveness report. Series is nil for
// posts that belong to no series.
type SeriesStatusCount struct {
	Series *string `json:"series"`
	Status Status  `json:"status"`
	Count  int64   `json:"count"`
}
