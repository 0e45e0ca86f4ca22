package analysis

import (
	"errors"
	"testing"

	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

func datasetOf(churn, revenue []float64) models.Dataset {
	months := []string{"2023-01", "2023-02", "2023-03", "2023-04", "2023-05", "2023-06"}
	ds := models.Dataset{Source: "test"}
	for i := range churn {
		ds.Rows = append(ds.Rows, models.DataRow{
			Month:     months[i],
			Revenue:   revenue[i],
			ChurnRate: churn[i],
		})
	}
	return ds
}

func TestAnalyze_ThreeRowScenario(t *testing.T) {
	ds := datasetOf([]float64{0.02, 0.18, 0.015}, []float64{18.0, 10.8, 19.5})

	got, err := Analyze(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Index != 1 {
		t.Errorf("Index = %d, want 1", got.Index)
	}
	if got.Month != "2023-02" {
		t.Errorf("Month = %q, want 2023-02", got.Month)
	}
	if got.Revenue != 10.8 {
		t.Errorf("Revenue = %v, want 10.8", got.Revenue)
	}
	if got.Churn != 0.18 {
		t.Errorf("Churn = %v, want 0.18", got.Churn)
	}
	if got.AvgRevenue != 16.1 {
		t.Errorf("AvgRevenue = %v, want 16.1", got.AvgRevenue)
	}
	if got.AvgChurn != 0.072 {
		t.Errorf("AvgChurn = %v, want 0.072", got.AvgChurn)
	}
	if got.Rows != 3 {
		t.Errorf("Rows = %d, want 3", got.Rows)
	}
}

func TestAnalyze_SelectsMaxChurn(t *testing.T) {
	tests := []struct {
		name      string
		churn     []float64
		wantIndex int
	}{
		{"single row", []float64{0.05}, 0},
		{"max first", []float64{0.3, 0.1, 0.2}, 0},
		{"max last", []float64{0.1, 0.2, 0.3}, 2},
		{"tie goes to earliest", []float64{0.1, 0.25, 0.05, 0.25}, 1},
		{"all equal", []float64{0.04, 0.04, 0.04}, 0},
		{"all zero", []float64{0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			revenue := make([]float64, len(tt.churn))
			got, err := Analyze(datasetOf(tt.churn, revenue))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", got.Index, tt.wantIndex)
			}
			for _, c := range tt.churn {
				if c > got.Churn {
					t.Errorf("Churn %v is not the maximum (found %v)", got.Churn, c)
				}
			}
		})
	}
}

func TestAnalyze_KeepsUnroundedMeans(t *testing.T) {
	ds := datasetOf([]float64{0.011, 0.012, 0.0125}, []float64{10.001, 10.002, 10.004})

	got, err := Analyze(ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.AvgRevenue != 10 {
		t.Errorf("AvgRevenue = %v, want 10", got.AvgRevenue)
	}
	if got.MeanRevenue == got.AvgRevenue {
		t.Errorf("MeanRevenue should keep full precision, got %v", got.MeanRevenue)
	}
	if got.AvgChurn != 0.012 {
		t.Errorf("AvgChurn = %v, want 0.012", got.AvgChurn)
	}
}

func TestAnalyze_EmptyDataset(t *testing.T) {
	got, err := Analyze(models.Dataset{Source: "empty.csv"})
	if !errors.Is(err, ErrEmptyDataset) {
		t.Fatalf("err = %v, want ErrEmptyDataset", err)
	}
	if got != (models.AnalysisResult{}) {
		t.Errorf("expected zero result, got %+v", got)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   float64
	}{
		{16.099999999999998, 2, 16.1},
		{0.07166666, 3, 0.072},
		{2.345, 1, 2.3},
		{-1.25, 1, -1.3},
		{0.0005, 3, 0.001},
		{7, 2, 7},
	}

	for _, tt := range tests {
		if got := Round(tt.v, tt.places); got != tt.want {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestSummary(t *testing.T) {
	r := models.AnalysisResult{
		Month: "2023-02", Revenue: 10.8, Churn: 0.18,
		AvgRevenue: 16.1, AvgChurn: 0.072, Rows: 3,
	}

	want := "Anomaly detected in 2023-02: churn 0.18 vs average 0.072, revenue $10.8M vs average $16.1M (3 months scanned)"
	if got := Summary(r); got != want {
		t.Errorf("Summary() =\n%q\nwant\n%q", got, want)
	}
}
