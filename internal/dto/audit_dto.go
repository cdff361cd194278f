package dto

import "time"

// AuditEntry is the watermill payload recorded to the workspace's
// append-only JSONL trail.
type AuditEntry struct {
	WorkspaceId string                 `json:"workspace_id"`
	Slug        string                 `json:"slug"`
	SourceType  string                 `json:"source_type"`
	Action      string                 `json:"action"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
	At          time.Time              `json:"at"`
}
