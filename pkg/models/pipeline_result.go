package models

import "strings"

// PipelineResult is the final output of one pipeline run.
type PipelineResult struct {
	Article  string `json:"article"`
	Strategy string `json:"strategy"`
}

// Headline returns the first non-blank line of the article with markdown
// heading and emphasis markers removed.
func (r PipelineResult) Headline() string {
	for _, line := range strings.Split(r.Article, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		line = strings.Trim(strings.TrimSpace(line), "*_")
		line = strings.TrimPrefix(line, "Headline:")
		line = strings.TrimSpace(strings.Trim(line, "*_"))
		if line != "" {
			return line
		}
	}
	return ""
}
