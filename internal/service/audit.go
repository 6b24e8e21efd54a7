package service

import (
	"encoding/json"
	"log"
	"time"

	"safeprofile/internal/util"
)

// Audit event names.
const (
	AuditProfileCreated    = "profile.created"
	AuditProfileUpdated    = "profile.updated"
	AuditProfileDeleted    = "profile.deleted"
	AuditDocumentGenerated = "document.generated"
)

// AuditEvent is what goes onto the audit queue. Profile ids only, never
// profile content.
type AuditEvent struct {
	Event     string    `json:"event"`
	ProfileID string    `json:"profile_id"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AuditPublisher emits audit events. Works with a nil client; the broker is
// optional infrastructure and publishing failures never fail the operation
// being audited.
type AuditPublisher struct {
	rabbitMQ *util.RabbitMQClient
}

func NewAuditPublisher(rabbitMQ *util.RabbitMQClient) *AuditPublisher {
	return &AuditPublisher{rabbitMQ: rabbitMQ}
}

func (p *AuditPublisher) Publish(event, profileID, detail string) {
	if p == nil || p.rabbitMQ == nil {
		return
	}

	body, err := json.Marshal(AuditEvent{
		Event:     event,
		ProfileID: profileID,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}

	if err := p.rabbitMQ.Publish(body); err != nil {
		log.Printf("Failed to publish audit event %s for %s: %v", event, profileID, err)
	}
}
