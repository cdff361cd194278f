package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "sync.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event types published on the bus.
const (
	TypeSyncStarted        = "sync.started"
	TypeSyncCompleted      = "sync.completed"
	TypeSyncFailed         = "sync.failed"
	TypeSourceDisconnected = "source.disconnected"
	TypePageCreated        = "page.created"
)

// BaseEvent is the shared implementation used by all constructors.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSyncStarted fires when a provider sync begins for a workspace.
func NewSyncStarted(workspaceID, provider string) Event {
	return BaseEvent{
		Type: TypeSyncStarted,
		Data: map[string]interface{}{
			"workspace_id": workspaceID,
			"provider":     provider,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewSyncCompleted carries the ingest counters of a finished run.
func NewSyncCompleted(workspaceID, provider string, indexed, skipped, removed int) Event {
	return BaseEvent{
		Type: TypeSyncCompleted,
		Data: map[string]interface{}{
			"workspace_id": workspaceID,
			"provider":     provider,
			"indexed":      indexed,
			"skipped":      skipped,
			"removed":      removed,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewSyncFailed records an aborted run with its failure kind.
func NewSyncFailed(workspaceID, provider, kind, message string) Event {
	return BaseEvent{
		Type: TypeSyncFailed,
		Data: map[string]interface{}{
			"workspace_id": workspaceID,
			"provider":     provider,
			"kind":         kind,
			"message":      message,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewSourceDisconnected fires after a provider's records are purged.
func NewSourceDisconnected(workspaceID, provider string) Event {
	return BaseEvent{
		Type: TypeSourceDisconnected,
		Data: map[string]interface{}{
			"workspace_id": workspaceID,
			"provider":     provider,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// NewPageCreated fires when the agent publishes a generated document.
func NewPageCreated(workspaceID, pageID, title string) Event {
	return BaseEvent{
		Type: TypePageCreated,
		Data: map[string]interface{}{
			"workspace_id": workspaceID,
			"page_id":      pageID,
			"title":        title,
		},
		OccurredAt: time.Now().UTC(),
	}
}
