package models

import (
	"context"

	"github.com/google/uuid"
	"github.com/vsfastfood/restaurant_backend/utils"
	"gorm.io/gorm"
)

// QueueMail implements the transactional outbox write: the mail record is
// created inside the caller's DB transaction but NOT published to Pub/Sub.
// Publishing is performed asynchronously by the outbox dispatcher after commit.
func QueueMail(ctx context.Context, tx *gorm.DB, kind MailKind, refId int, refType string, recipient string, subject string, payload interface{}) error {

	var payloadInByte []byte

	if payload != nil {
		payloadJSON, err := utils.MarshalToJSON(payload)
		if err != nil {
			return err
		}
		payloadInByte = []byte(payloadJSON)
	}

	record := MailMessageRecord{
		Kind:          kind,
		ReferenceId:   refId,
		ReferenceType: refType,
		Recipient:     recipient,
		Subject:       subject,
		Payload:       payloadInByte,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	if err := tx.Create(&record).Error; err != nil {
		return err
	}
	return nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
