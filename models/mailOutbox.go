package models

import (
	"time"

	"github.com/vsfastfood/restaurant_backend/config"
)

// MailMessageRecord implements a transactional outbox for outgoing mail:
// the row is written inside the caller's DB transaction, and publishing to
// Pub/Sub happens after commit via the outbox dispatcher. The push worker
// performs the actual delivery.
type MailMessageRecord struct {
	ID            int      `gorm:"primary_key;index:idx_mail_outbox_dispatch,priority:3" json:"id"`
	Kind          MailKind `gorm:"type:enum('IV','OF','OT');not null" json:"kind"`
	ReferenceId   int      `gorm:"index" json:"reference_id"`
	ReferenceType string   `gorm:"size:50" json:"reference_type"`
	Recipient     string   `gorm:"size:100;not null" json:"recipient"`
	Subject       string   `gorm:"size:255" json:"subject"`
	Payload       []byte   `gorm:"type:blob" json:"payload"`

	// Publish metadata (dispatcher side).
	PublishStatus    string     `gorm:"size:20;index;not null;default:'PENDING';index:idx_mail_outbox_dispatch,priority:1" json:"publish_status"` // PENDING|PROCESSING|SENT|FAILED|DEAD
	PublishedAt      *time.Time `gorm:"index" json:"published_at"`
	PubSubMessageId  *string    `gorm:"size:255" json:"pubsub_message_id"`
	PublishAttempts  int        `gorm:"not null;default:0" json:"publish_attempts"`
	NextAttemptAt    *time.Time `gorm:"index;index:idx_mail_outbox_dispatch,priority:2" json:"next_attempt_at"`
	LockedAt         *time.Time `gorm:"index" json:"locked_at"`
	LockedBy         *string    `gorm:"size:100" json:"locked_by"`
	LastPublishError *string    `gorm:"type:text" json:"last_publish_error"`

	// Delivery metadata (push worker side).
	DeliveredAt      *time.Time `gorm:"index" json:"delivered_at"`
	LastProcessError *string    `gorm:"type:text" json:"last_process_error"`

	CorrelationId string    `gorm:"size:64;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func ConvertToPubSubMessage(record MailMessageRecord) config.PubSubMessage {
	return config.PubSubMessage{
		ID:            record.ID,
		Kind:          record.Kind.String(),
		QueuedAt:      record.CreatedAt,
		ReferenceId:   record.ReferenceId,
		ReferenceType: record.ReferenceType,
		Payload:       record.Payload,
		CorrelationId: record.CorrelationId,
	}
}
