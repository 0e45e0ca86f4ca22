package dataset

import (
	"errors"
	"strings"
	"testing"

	"github.com/kiranshivaraju/insightreporter/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Month,Revenue_Millions,Active_Users,Marketing_Spend_M,Support_Tickets,Churn_Rate
2023-01,18.0,5012,2.5,120,0.02
2023-02,10.8,4870.0,2.1,310,0.18
2023-03,19.5,5230,2.7,98,0.015
`

func TestParse_ValidRows(t *testing.T) {
	rows, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.DataRow{
		Month:          "2023-02",
		Revenue:        10.8,
		ActiveUsers:    4870,
		MarketingSpend: 2.1,
		SupportTickets: 310,
		ChurnRate:      0.18,
	}, rows[1])
	assert.Equal(t, "2023-01", rows[0].Month)
	assert.Equal(t, "2023-03", rows[2].Month)
}

func TestParse_ReorderedAndExtraColumnsWithWhitespace(t *testing.T) {
	in := "\ufeff Churn_Rate , Month,Notes,Support_Tickets,Marketing_Spend_M,Active_Users,Revenue_Millions\n" +
		"0.05, 2024-01 ,launch,100,1.5,4999.6,12.25\n"

	rows, err := Parse(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "2024-01", rows[0].Month)
	assert.Equal(t, 0.05, rows[0].ChurnRate)
	assert.Equal(t, 5000, rows[0].ActiveUsers)
	assert.Equal(t, 12.25, rows[0].Revenue)
}

func TestParse_HeaderOnlyYieldsEmpty(t *testing.T) {
	rows, err := Parse(strings.NewReader("Month,Revenue_Millions,Active_Users,Marketing_Spend_M,Support_Tickets,Churn_Rate\n"))
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestParse_Malformed(t *testing.T) {
	header := "Month,Revenue_Millions,Active_Users,Marketing_Spend_M,Support_Tickets,Churn_Rate\n"

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"empty input", "", "missing header"},
		{"missing column", "Month,Revenue_Millions,Active_Users\n2023-01,1,2\n", "Churn_Rate"},
		{"non-numeric revenue", header + "2023-01,lots,5012,2.5,120,0.02\n", "Revenue_Millions"},
		{"non-numeric users", header + "2023-01,18.0,many,2.5,120,0.02\n", "Active_Users"},
		{"churn above one", header + "2023-01,18.0,5012,2.5,120,1.2\n", "outside"},
		{"negative churn", header + "2023-01,18.0,5012,2.5,120,-0.1\n", "outside"},
		{"NaN churn", header + "2023-01,18.0,5012,2.5,120,NaN\n", "Churn_Rate"},
		{"short row", header + "2023-01,18.0,5012\n", "wrong number of fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformed), "want ErrMalformed, got %v", err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParse_ErrorReportsLine(t *testing.T) {
	in := sampleCSV + "2023-04,oops,1,1,1,0.1\n"

	_, err := Parse(strings.NewReader(in))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "line 5")
}
