package models

// AnalysisResult is a snapshot of the worst-churn month plus dataset-wide means.
// AvgRevenue and AvgChurn are rounded for presentation; MeanRevenue and MeanChurn
// keep full precision.
type AnalysisResult struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	Churn      float64 `json:"churn"`
	AvgRevenue float64 `json:"avg_revenue"`
	AvgChurn   float64 `json:"avg_churn"`

	Index       int     `json:"-"`
	Rows        int     `json:"-"`
	MeanRevenue float64 `json:"-"`
	MeanChurn   float64 `json:"-"`
}
