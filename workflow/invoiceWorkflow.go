package workflow

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/mailer"
	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/models/reports"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// OrderMailRenderer builds the invoice attachment. The excelize renderer is
// the production implementation; tests swap in a stub.
type OrderMailRenderer func(order *models.Order) ([]byte, error)

// SendOrderInvoice mails the invoice for a completed order and then
// archives it. The archive runs only after the mail provider accepts the
// message, so a crash or send failure leaves the order in place for a
// retry; the daily aggregate is untouched either way because it was
// already updated when the order was recorded.
func SendOrderInvoice(ctx context.Context, logger *logrus.Logger, sender mailer.Mailer, render OrderMailRenderer, orderId int) error {
	moduleName := "invoiceWorkflow.go"

	lock, err := utils.ObtainLock(ctx, "Invoice", fmt.Sprint(orderId), moduleName, "SendOrderInvoice")
	if err != nil {
		return err
	}
	defer lock.Release(ctx)

	order, err := models.GetOrder(ctx, orderId)
	if err != nil {
		// Already archived by an earlier delivery; nothing left to do.
		if err == utils.ErrorRecordNotFound {
			return nil
		}
		config.LogError(logger, moduleName, "SendOrderInvoice", "GetOrder", orderId, err)
		return err
	}

	if order.Customer == nil || order.Customer.Email == "" {
		config.LogError(logger, moduleName, "SendOrderInvoice", "missing customer email", orderId, utils.ErrorInconsistency)
		return utils.ErrorInconsistency
	}

	if render == nil {
		render = reports.RenderOrderInvoice
	}
	content, err := render(order)
	if err != nil {
		config.LogError(logger, moduleName, "SendOrderInvoice", "rendering invoice", orderId, err)
		return err
	}

	msg := &mailer.Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Your VS Fastfood invoice #%d", order.ID),
		Html: fmt.Sprintf(
			"<p>Hi %s,</p><p>Thank you for your order. Your invoice for %s is attached.</p>",
			order.Customer.Name, order.TotalAmount.String(),
		),
		Attachments: []mailer.Attachment{
			{Filename: fmt.Sprintf("invoice-%d.xlsx", order.ID), Content: content},
		},
	}
	if err := sender.Send(ctx, msg); err != nil {
		config.LogError(logger, moduleName, "SendOrderInvoice", "sending mail", orderId, err)
		return err
	}

	// Mail is confirmed; archiving is the last step.
	if _, err := models.ArchiveOrder(ctx, orderId); err != nil {
		config.LogError(logger, moduleName, "SendOrderInvoice", "ArchiveOrder", orderId, err)
		return err
	}

	return nil
}
