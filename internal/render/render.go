// Package render formats briefings, analyses and session logs for a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kiranshivaraju/insightreporter/internal/analysis"
	"github.com/kiranshivaraju/insightreporter/internal/briefing"
	"github.com/kiranshivaraju/insightreporter/pkg/models"
)

const defaultWidth = 80

// Options configures a Renderer.
type Options struct {
	// Width is the wrap width; zero means 80 columns.
	Width int
	// Plain disables colour and borders, for pipes and logs.
	Plain bool
	// ShowLogs appends the session log after a briefing.
	ShowLogs bool
}

// Renderer writes human-readable output. It is safe for sequential use only.
type Renderer struct {
	md       *glamour.TermRenderer
	st       styles
	width    int
	showLogs bool
}

type styles struct {
	banner   lipgloss.Style
	headline lipgloss.Style
	card     lipgloss.Style
	label    lipgloss.Style
	alert    lipgloss.Style
	muted    lipgloss.Style
	agents   map[models.Agent]lipgloss.Style
}

// New creates a Renderer.
func New(opts Options) (*Renderer, error) {
	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	style := glamour.WithAutoStyle()
	if opts.Plain {
		style = glamour.WithStandardStyle("notty")
	}
	md, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width-4))
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}

	return &Renderer{
		md:       md,
		st:       newStyles(opts.Plain, width),
		width:    width,
		showLogs: opts.ShowLogs,
	}, nil
}

func newStyles(plain bool, width int) styles {
	if plain {
		s := lipgloss.NewStyle()
		return styles{
			banner: s, headline: s, card: s, label: s, alert: s, muted: s,
			agents: map[models.Agent]lipgloss.Style{},
		}
	}
	return styles{
		banner: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8FAFC")).
			Background(lipgloss.Color("#1E3A8A")).
			Padding(0, 1),
		headline: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#1E3A8A")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#1E3A8A")).
			Width(width),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1),
		label: lipgloss.NewStyle().Bold(true),
		alert: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#DC2626")),
		muted: lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
		agents: map[models.Agent]lipgloss.Style{
			models.AgentDetective:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
			models.AgentEditor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6")),
			models.AgentStrategist: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981")),
		},
	}
}

// Briefing writes the headline, anomaly card, article and strategy of b, and
// its session log when ShowLogs is set.
func (r *Renderer) Briefing(w io.Writer, b *briefing.Briefing) error {
	var sb strings.Builder

	sb.WriteString(r.st.banner.Render("InsightReporter") + " " + r.st.muted.Render(b.Source) + "\n\n")

	if b.Result != nil {
		if h := b.Result.Headline(); h != "" {
			sb.WriteString(r.st.headline.Render(h) + "\n")
		}
	}
	sb.WriteString(r.card(b.Analysis) + "\n")

	if b.Result != nil {
		article, err := r.markdown("## The Scoop\n\n" + b.Result.Article)
		if err != nil {
			return err
		}
		strategy, err := r.markdown("## Strategic Advice\n\n" + b.Result.Strategy)
		if err != nil {
			return err
		}
		sb.WriteString(article)
		sb.WriteString(strategy)
	}

	if r.showLogs {
		sb.WriteString(r.logs(b.Logs))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Analysis writes the anomaly card and one-line summary of a.
func (r *Renderer) Analysis(w io.Writer, source string, a models.AnalysisResult) error {
	out := r.st.banner.Render("Detective") + " " + r.st.muted.Render(source) + "\n\n" +
		r.card(a) + "\n" + analysis.Summary(a) + "\n"
	_, err := io.WriteString(w, out)
	return err
}

// Dataset writes rows as a table.
func (r *Renderer) Dataset(w io.Writer, ds models.Dataset) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.st.muted).
		Headers(models.Columns...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.st.label.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	for _, row := range ds.Rows {
		t.Row(row.Month, num(row.Revenue), strconv.Itoa(row.ActiveUsers),
			num(row.MarketingSpend), strconv.Itoa(row.SupportTickets), num(row.ChurnRate))
	}
	_, err := io.WriteString(w, t.String()+"\n")
	return err
}

// Logs writes a session log, one numbered step per entry.
func (r *Renderer) Logs(w io.Writer, entries []models.LogEntry) error {
	_, err := io.WriteString(w, r.logs(entries))
	return err
}

// Failure writes a run error for source together with whatever log exists.
func (r *Renderer) Failure(w io.Writer, source string, err error, entries []models.LogEntry) error {
	out := r.st.alert.Render("Briefing failed") + " " + r.st.muted.Render(source) + "\n" + err.Error() + "\n"
	if len(entries) > 0 {
		out += r.logs(entries)
	}
	_, werr := io.WriteString(w, out)
	return werr
}

func (r *Renderer) card(a models.AnalysisResult) string {
	lines := []string{
		r.st.label.Render("Anomaly month: ") + a.Month,
		r.st.label.Render("Revenue:       ") + "$" + num(a.Revenue) + "M" +
			r.st.muted.Render(" (avg $"+num(a.AvgRevenue)+"M)"),
		r.st.label.Render("Churn rate:    ") + r.st.alert.Render(num(a.Churn)) +
			r.st.muted.Render(" (avg "+num(a.AvgChurn)+")"),
	}
	return r.st.card.Render(strings.Join(lines, "\n"))
}

func (r *Renderer) logs(entries []models.LogEntry) string {
	var sb strings.Builder
	sb.WriteString("\n" + r.st.banner.Render("Agent Memory") + "\n")
	if len(entries) == 0 {
		sb.WriteString(r.st.muted.Render("No agents have run yet.") + "\n")
		return sb.String()
	}
	for i, e := range entries {
		agent := string(e.Agent)
		if st, ok := r.st.agents[e.Agent]; ok {
			agent = st.Render(agent)
		}
		fmt.Fprintf(&sb, "Step %d: %s (%s) %s\n", i+1, agent, e.Action,
			r.st.muted.Render(e.At.Format("15:04:05")))
		for _, line := range strings.Split(e.Details, "\n") {
			sb.WriteString("    " + line + "\n")
		}
	}
	return sb.String()
}

func (r *Renderer) markdown(src string) (string, error) {
	out, err := r.md.Render(src)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
