package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"arcana-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditFixture(t *testing.T) (IAuditService, string) {
	t.Helper()
	root := t.TempDir()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	svc := NewAuditService(pubSub, AuditTopic, root, nopLogger{})
	require.NoError(t, svc.Consume(context.Background()))
	return svc, root
}

func TestAuditRecordAppendsJSONL(t *testing.T) {
	svc, root := newAuditFixture(t)

	require.NoError(t, svc.Record(context.Background(), dto.AuditEntry{
		WorkspaceId: "11111111-1111-1111-1111-111111111111",
		Slug:        "demo",
		SourceType:  "notion",
		Action:      "sync.completed",
		Detail:      map[string]interface{}{"indexed": 3},
	}))

	path := filepath.Join(root, "demo", "jsonl", "notion.jsonl")
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry dto.AuditEntry
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "sync.completed", entry.Action)
	assert.Equal(t, "demo", entry.Slug)
	assert.False(t, entry.At.IsZero())
	assert.EqualValues(t, 3, entry.Detail["indexed"])
}

func TestAuditEntriesWithoutSourceTypeGoToEventsFile(t *testing.T) {
	svc, root := newAuditFixture(t)

	require.NoError(t, svc.Record(context.Background(), dto.AuditEntry{
		Slug:   "demo",
		Action: "page.created",
	}))

	path := filepath.Join(root, "demo", "jsonl", "events.jsonl")
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAuditAppendIsSequential(t *testing.T) {
	svc, root := newAuditFixture(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Record(context.Background(), dto.AuditEntry{
			Slug:       "demo",
			SourceType: "gdrive",
			Action:     "sync.started",
		}))
	}

	path := filepath.Join(root, "demo", "jsonl", "gdrive.jsonl")
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		if err != nil {
			return false
		}
		lines := 0
		for _, b := range data {
			if b == '\n' {
				lines++
			}
		}
		return lines == 5
	}, 2*time.Second, 10*time.Millisecond)
}
