package models

// Column names of the tabular dataset source.
const (
	ColumnMonth          = "Month"
	ColumnRevenue        = "Revenue_Millions"
	ColumnActiveUsers    = "Active_Users"
	ColumnMarketingSpend = "Marketing_Spend_M"
	ColumnSupportTickets = "Support_Tickets"
	ColumnChurnRate      = "Churn_Rate"
)

// Columns lists the required header columns in their canonical order.
var Columns = []string{
	ColumnMonth,
	ColumnRevenue,
	ColumnActiveUsers,
	ColumnMarketingSpend,
	ColumnSupportTickets,
	ColumnChurnRate,
}

// DataRow is one month of company metrics.
type DataRow struct {
	Month          string  `json:"month"`
	Revenue        float64 `json:"revenue_millions"`
	ActiveUsers    int     `json:"active_users"`
	MarketingSpend float64 `json:"marketing_spend_m"`
	SupportTickets int     `json:"support_tickets"`
	ChurnRate      float64 `json:"churn_rate"`
}

// Dataset is an ordered, chronological sequence of rows. It is treated as
// read-only once loaded.
type Dataset struct {
	Source string    `json:"source"`
	Rows   []DataRow `json:"rows"`
}

// Len returns the number of rows.
func (d Dataset) Len() int { return len(d.Rows) }

// Tail returns the last n rows, or every row when n <= 0 or n exceeds the length.
func (d Dataset) Tail(n int) []DataRow {
	if n <= 0 || n >= len(d.Rows) {
		return d.Rows
	}
	return d.Rows[len(d.Rows)-n:]
}
