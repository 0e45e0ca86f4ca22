package models

import "time"

// Agent names the pipeline participant that produced a log entry.
type Agent string

const (
	AgentDetective  Agent = "Detective"
	AgentEditor     Agent = "Editor"
	AgentStrategist Agent = "Strategist"
)

// Action describes what an agent was doing when the entry was written.
type Action string

const (
	ActionToolUse  Action = "TOOL_USE"
	ActionThinking Action = "THINKING"
	ActionOutput   Action = "OUTPUT"
)

// LogEntry is one observability record of a pipeline run. Entries are never
// modified after they are appended to a session log.
type LogEntry struct {
	Agent   Agent     `json:"agent"`
	Action  Action    `json:"action"`
	Details string    `json:"details"`
	At      time.Time `json:"at"`
}
