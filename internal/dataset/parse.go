package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

// Parse decodes CSV with a header row into DataRows. Columns may appear in any
// order and extra columns are ignored. Integer columns accept decimal text and
// are rounded.
func Parse(r io.Reader) ([]models.DataRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformed, err)
	}

	idx, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	rows := []models.DataRow{}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}

		line, _ := reader.FieldPos(0)
		row, err := parseRow(rec, idx, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func indexColumns(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		idx[name] = i
	}

	var missing []string
	for _, col := range models.Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", ErrMalformed, strings.Join(missing, ", "))
	}
	return idx, nil
}

func parseRow(rec []string, idx map[string]int, line int) (models.DataRow, error) {
	p := rowParser{rec: rec, idx: idx, line: line}

	row := models.DataRow{
		Month:          p.text(models.ColumnMonth),
		Revenue:        p.float(models.ColumnRevenue),
		ActiveUsers:    p.int(models.ColumnActiveUsers),
		MarketingSpend: p.float(models.ColumnMarketingSpend),
		SupportTickets: p.int(models.ColumnSupportTickets),
		ChurnRate:      p.float(models.ColumnChurnRate),
	}
	if p.err != nil {
		return models.DataRow{}, p.err
	}

	if row.ChurnRate < 0 || row.ChurnRate > 1 {
		return models.DataRow{}, fmt.Errorf("%w: line %d: %s %v outside [0,1]",
			ErrMalformed, line, models.ColumnChurnRate, row.ChurnRate)
	}

	return row, nil
}

// rowParser records the first conversion error so a row can be decoded in a
// single expression.
type rowParser struct {
	rec  []string
	idx  map[string]int
	line int
	err  error
}

func (p *rowParser) text(col string) string {
	return strings.TrimSpace(p.rec[p.idx[col]])
}

func (p *rowParser) float(col string) float64 {
	if p.err != nil {
		return 0
	}
	raw := p.text(col)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		p.err = fmt.Errorf("%w: line %d: %s %q is not a number", ErrMalformed, p.line, col, raw)
		return 0
	}
	return v
}

func (p *rowParser) int(col string) int {
	return int(math.Round(p.float(col)))
}
