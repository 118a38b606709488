package models

import (
	"context"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

type OfferMailPayload struct {
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

// QueueOfferBlast queues one promotional mail per customer. All records
// commit together; the dispatcher fans them out after commit.
func QueueOfferBlast(ctx context.Context, subject string, html string) (int, error) {
	moduleName := "offerMail"

	if subject == "" {
		return 0, utils.NewValidationError("subject", "subject is required")
	}
	if html == "" {
		return 0, utils.NewValidationError("body", "body is required")
	}

	// Only customers with an address on file receive the blast.
	customers, err := utils.FetchModelsWhere[Customer](ctx, "email <> ''")
	if err != nil {
		return 0, utils.ErrorStorageUnavailable
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return 0, utils.ErrorStorageUnavailable
	}

	queued := 0
	for _, customer := range customers {
		payload := OfferMailPayload{Email: customer.Email, Subject: subject, Html: html}
		if err := QueueMail(ctx, tx, MailKindOffer, customer.ID, "customer", customer.Email, subject, payload); err != nil {
			tx.Rollback()
			config.LogError(config.GetLogger(), moduleName, "QueueOfferBlast", "queueing mail", customer.ID, err)
			return 0, utils.ErrorStorageUnavailable
		}
		queued++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, utils.ErrorStorageUnavailable
	}

	return queued, nil
}
