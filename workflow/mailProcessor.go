package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/mailer"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
)

const mailHandlerName = "mailProcessor"

// ProcessMailMessage handles one pushed outbox message. Pub/Sub delivery
// is at-least-once, so the idempotency key gates the side effect; a
// returned error makes the push endpoint NACK and Pub/Sub redelivers.
func ProcessMailMessage(ctx context.Context, logger *logrus.Logger, sender mailer.Mailer, msg config.PubSubMessage) error {
	moduleName := "mailProcessor.go"
	db := config.GetDB()
	messageId := fmt.Sprint(msg.ID)

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	skip, err := BeginIdempotency(tx, mailHandlerName, messageId)
	if err != nil {
		tx.Rollback()
		return err
	}
	if skip {
		tx.Rollback()
		return nil
	}
	if err := tx.Commit().Error; err != nil {
		return err
	}

	handleErr := handleMailKind(ctx, logger, sender, msg)

	markTx := db.WithContext(ctx)
	if handleErr != nil {
		_ = MarkIdempotencyFailed(markTx, mailHandlerName, messageId, handleErr)
		markProcessError(ctx, msg.ID, handleErr)
		return handleErr
	}

	if err := MarkIdempotencySucceeded(markTx, mailHandlerName, messageId); err != nil {
		config.LogError(logger, moduleName, "ProcessMailMessage", "MarkIdempotencySucceeded", messageId, err)
		return err
	}
	markDelivered(ctx, msg.ID)
	return nil
}

func handleMailKind(ctx context.Context, logger *logrus.Logger, sender mailer.Mailer, msg config.PubSubMessage) error {
	moduleName := "mailProcessor.go"

	switch models.MailKind(msg.Kind) {
	case models.MailKindInvoice:
		return SendOrderInvoice(ctx, logger, sender, nil, msg.ReferenceId)

	case models.MailKindOffer:
		var payload models.OfferMailPayload
		if err := utils.UnmarshalFromJSON(msg.Payload, &payload); err != nil {
			config.LogError(logger, moduleName, "handleMailKind", "unmarshal offer payload", msg.ID, err)
			return err
		}
		return sender.Send(ctx, &mailer.Message{
			To:      payload.Email,
			Subject: payload.Subject,
			Html:    payload.Html,
		})

	case models.MailKindOtp:
		var payload models.OtpMailPayload
		if err := utils.UnmarshalFromJSON(msg.Payload, &payload); err != nil {
			config.LogError(logger, moduleName, "handleMailKind", "unmarshal otp payload", msg.ID, err)
			return err
		}
		return sender.Send(ctx, &mailer.Message{
			To:      payload.Email,
			Subject: "Your verification code",
			Html:    "<p>Your verification code is <b>" + payload.Code + "</b>. It expires in a few minutes.</p>",
		})

	default:
		config.LogError(logger, moduleName, "handleMailKind", "dropping message", msg.ID, fmt.Errorf("unknown mail kind %q", msg.Kind))
		// Unknown kinds are dropped, not retried.
		return nil
	}
}

func markDelivered(ctx context.Context, recordID int) {
	now := time.Now().UTC()
	_ = config.GetDB().WithContext(ctx).Model(&models.MailMessageRecord{}).
		Where("id = ?", recordID).
		Updates(map[string]interface{}{
			"delivered_at":       &now,
			"last_process_error": nil,
		}).Error
}

func markProcessError(ctx context.Context, recordID int, err error) {
	msg := err.Error()
	_ = config.GetDB().WithContext(ctx).Model(&models.MailMessageRecord{}).
		Where("id = ?", recordID).
		Update("last_process_error", &msg).Error
}

// RunMailWorker is the pull-mode fallback used when the service is not
// deployed behind a push subscription. It drains SENT but undelivered
// records directly.
func RunMailWorker(ctx context.Context, logger *logrus.Logger, sender mailer.Mailer, pollInterval time.Duration) {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		processSentBatch(ctx, logger, sender)
		select {
		case <-ctx.Done():
			return
		case <-time.After(pollInterval):
		}
	}
}

func processSentBatch(ctx context.Context, logger *logrus.Logger, sender mailer.Mailer) {
	db := config.GetDB()
	if db == nil {
		return
	}
	var records []models.MailMessageRecord
	err := db.WithContext(ctx).
		Where("publish_status = ? AND delivered_at IS NULL", models.OutboxPublishStatusSent).
		Order("id ASC").
		Limit(20).
		Find(&records).Error
	if err != nil {
		return
	}
	for _, rec := range records {
		_ = ProcessMailMessage(ctx, logger, sender, models.ConvertToPubSubMessage(rec))
	}
}
