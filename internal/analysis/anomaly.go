// Package analysis selects the worst-churn month of a dataset and computes the
// dataset-wide context the narrative stages compare it against.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// ErrEmptyDataset is returned when there are no rows to analyze.
var ErrEmptyDataset = errors.New("dataset has no rows")

// Analyze returns the row with the highest churn rate together with the mean
// revenue (2 dp) and mean churn (3 dp) across all rows. When several rows share
// the maximum, the earliest one wins.
func Analyze(ds models.Dataset) (models.AnalysisResult, error) {
	if len(ds.Rows) == 0 {
		return models.AnalysisResult{}, ErrEmptyDataset
	}

	worst := 0
	var sumRevenue, sumChurn float64
	for i, row := range ds.Rows {
		sumRevenue += row.Revenue
		sumChurn += row.ChurnRate
		if row.ChurnRate > ds.Rows[worst].ChurnRate {
			worst = i
		}
	}

	n := float64(len(ds.Rows))
	meanRevenue := sumRevenue / n
	meanChurn := sumChurn / n
	row := ds.Rows[worst]

	return models.AnalysisResult{
		Month:       row.Month,
		Revenue:     row.Revenue,
		Churn:       row.ChurnRate,
		AvgRevenue:  Round(meanRevenue, 2),
		AvgChurn:    Round(meanChurn, 3),
		Index:       worst,
		Rows:        len(ds.Rows),
		MeanRevenue: meanRevenue,
		MeanChurn:   meanChurn,
	}, nil
}

// Round rounds v to the given number of decimal places, halves away from zero.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Summary renders a one-line description of the anomaly for the session log.
func Summary(r models.AnalysisResult) string {
	return fmt.Sprintf(
		"Anomaly detected in %s: churn %s vs average %s, revenue $%sM vs average $%sM (%d months scanned)",
		r.Month,
		formatFloat(r.Churn), formatFloat(r.AvgChurn),
		formatFloat(r.Revenue), formatFloat(r.AvgRevenue),
		r.Rows,
	)
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%g", v)
}
