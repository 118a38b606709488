package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/mailer"
	"github.com/vsfastfood/restaurant_backend/models"
)

type recordingMailer struct {
	sent    []*mailer.Message
	sendErr error
}

func (m *recordingMailer) Send(ctx context.Context, msg *mailer.Message) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestHandleMailKind_Offer(t *testing.T) {
	payload, _ := json.Marshal(models.OfferMailPayload{
		Email:   "a@b.com",
		Subject: "Weekend offer",
		Html:    "<p>20% off</p>",
	})
	sender := &recordingMailer{}

	err := handleMailKind(context.Background(), config.GetLogger(), sender, config.PubSubMessage{
		ID:      1,
		Kind:    string(models.MailKindOffer),
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("handleMailKind: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "a@b.com" || sender.sent[0].Subject != "Weekend offer" {
		t.Errorf("unexpected message: %+v", sender.sent[0])
	}
}

func TestHandleMailKind_Otp(t *testing.T) {
	payload, _ := json.Marshal(models.OtpMailPayload{Email: "a@b.com", Code: "123456"})
	sender := &recordingMailer{}

	err := handleMailKind(context.Background(), config.GetLogger(), sender, config.PubSubMessage{
		ID:      2,
		Kind:    string(models.MailKindOtp),
		Payload: payload,
	})
	if err != nil {
		t.Fatalf("handleMailKind: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "a@b.com" {
		t.Errorf("unexpected recipient: %s", sender.sent[0].To)
	}
}

func TestHandleMailKind_SendFailurePropagates(t *testing.T) {
	payload, _ := json.Marshal(models.OfferMailPayload{Email: "a@b.com", Subject: "s", Html: "h"})
	sender := &recordingMailer{sendErr: errors.New("provider down")}

	err := handleMailKind(context.Background(), config.GetLogger(), sender, config.PubSubMessage{
		ID:      3,
		Kind:    string(models.MailKindOffer),
		Payload: payload,
	})
	if err == nil {
		t.Fatal("expected the send failure to propagate for redelivery")
	}
}

func TestHandleMailKind_MalformedPayload(t *testing.T) {
	sender := &recordingMailer{}

	err := handleMailKind(context.Background(), config.GetLogger(), sender, config.PubSubMessage{
		ID:      4,
		Kind:    string(models.MailKindOffer),
		Payload: []byte("{not json"),
	})
	if err == nil {
		t.Fatal("expected an unmarshal error")
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should be sent for a malformed payload")
	}
}

func TestHandleMailKind_UnknownKindDropped(t *testing.T) {
	sender := &recordingMailer{}

	err := handleMailKind(context.Background(), config.GetLogger(), sender, config.PubSubMessage{
		ID:   5,
		Kind: "XX",
	})
	if err != nil {
		t.Fatalf("unknown kinds must be dropped without error, got %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("nothing should be sent for an unknown kind")
	}
}
