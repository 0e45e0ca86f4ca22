package ai

import "text/template"

// EditorPrompt asks for a short breaking-news brief about the anomaly. It is
// executed against a models.AnalysisResult.
var EditorPrompt = template.Must(template.New("editor").Option("missingkey=error").Parse(
	`You are a Senior Data Journalist.

DATA ANOMALY FOUND:
- Month: {{.Month}}
- Revenue: ${{.Revenue}}M (dataset average: ${{.AvgRevenue}}M)
- Churn rate: {{.Churn}} (dataset average: {{.AvgChurn}})

Write a 'Breaking News' style brief of roughly 100-150 words.
- First line: a dramatic, professional headline.
- Body: compare {{.Month}} against the averages provided above.
- Tone: urgent business intelligence.
`))

// StrategistPrompt asks for three CEO recommendations. It only ever sees the
// Editor's brief, executed against a StrategistInput.
var StrategistPrompt = template.Must(template.New("strategist").Option("missingkey=error").Parse(
	`Read this internal news brief:
"{{.Brief}}"

Suggest exactly 3 specific, actionable bullet points for the CEO to fix this.
`))

// StrategistInput is the template data for StrategistPrompt.
type StrategistInput struct {
	Brief string
}
