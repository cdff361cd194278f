package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"arcana-be/internal/dto"
	"arcana-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// AuditTopic is the in-process channel carrying workspace audit entries
// from the sync and agent paths to the JSONL writer.
const AuditTopic = "workspace.audit"

type IAuditService interface {
	// Record publishes one audit entry; the consumer appends it to the
	// workspace's JSONL trail.
	Record(ctx context.Context, entry dto.AuditEntry) error

	// Consume starts the background writer. It returns after the
	// subscription is established.
	Consume(ctx context.Context) error
}

type auditService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	storageRoot string
	logger      logger.ILogger
}

func NewAuditService(pubSub *gochannel.GoChannel, topicName, storageRoot string, logger logger.ILogger) IAuditService {
	return &auditService{
		pubSub:      pubSub,
		topicName:   topicName,
		storageRoot: storageRoot,
		logger:      logger,
	}
}

func (as *auditService) Record(ctx context.Context, entry dto.AuditEntry) error {
	if entry.At.IsZero() {
		entry.At = time.Now().UTC()
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return as.pubSub.Publish(as.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (as *auditService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(msg)
		}
	}()

	return nil
}

func (as *auditService) processMessage(msg *message.Message) {
	var entry dto.AuditEntry
	if err := json.Unmarshal(msg.Payload, &entry); err != nil {
		// Ack malformed payloads so they do not retry forever.
		as.logger.Error("audit_service", "failed to unmarshal audit entry", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}
	if entry.Slug == "" {
		as.logger.Warn("audit_service", "audit entry missing workspace slug, dropping", map[string]interface{}{
			"action": entry.Action,
		})
		msg.Ack()
		return
	}

	if err := as.append(entry, msg.Payload); err != nil {
		as.logger.Error("audit_service", "failed to append audit entry", map[string]interface{}{
			"slug":   entry.Slug,
			"action": entry.Action,
			"error":  err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

// append writes one JSON line to <root>/<slug>/jsonl/<source_type>.jsonl.
// Entries without a source type go to the shared events file.
func (as *auditService) append(entry dto.AuditEntry, line []byte) error {
	name := entry.SourceType
	if name == "" {
		name = "events"
	}
	dir := filepath.Join(as.storageRoot, entry.Slug, "jsonl")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, name+".jsonl"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return err
	}
	_, err = f.Write([]byte("\n"))
	return err
}
