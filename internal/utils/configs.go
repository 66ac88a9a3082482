package utils

import (
	"context"

	"github.com/docuflow/firestore-events/internal/logging"
	"github.com/sethvargo/go-envconfig"
)

//RelayConfig Configuration of the change relay.
type RelayConfig struct {
	CreatedTopic string `env:"TOPIC_DOCUMENT_CREATED, default=document-created"`
	UpdatedTopic string `env:"TOPIC_DOCUMENT_UPDATED, default=document-updated"`
	DeletedTopic string `env:"TOPIC_DOCUMENT_DELETED, default=document-deleted"`
}

//AuditConfig Configuration of the change audit.
type AuditConfig struct {
	Collection string `env:"AUDIT_COLLECTION, default=documentChangeCounters"`
}

//LoadRelayConfig Load change relay config.
func LoadRelayConfig(ctx context.Context) (*RelayConfig, error) {
	logger := logging.FromContext(ctx)

	var relayConfig RelayConfig
	if err := envconfig.Process(ctx, &relayConfig); err != nil {
		logger.Debugf("Could not load RelayConfig: %v", err)
		return nil, err
	}

	return &relayConfig, nil
}

//LoadAuditConfig Load change audit config.
func LoadAuditConfig(ctx context.Context) (*AuditConfig, error) {
	logger := logging.FromContext(ctx)

	var auditConfig AuditConfig
	if err := envconfig.Process(ctx, &auditConfig); err != nil {
		logger.Debugf("Could not load AuditConfig: %v", err)
		return nil, err
	}

	return &auditConfig, nil
}

//TopicFor Gets the configured topic for the given change type, or empty string.
func (c *RelayConfig) TopicFor(changeType string) string {
	switch changeType {
	case "created":
		return c.CreatedTopic
	case "updated":
		return c.UpdatedTopic
	case "deleted":
		return c.DeletedTopic
	}
	return ""
}
