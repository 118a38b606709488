package mailer_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vsfastfood/restaurant_backend/mailer"
)

func newTestMailer(t *testing.T, baseURL string) *mailer.ResendMailer {
	t.Helper()
	t.Setenv("RESEND_API_KEY", "re_test_key")
	t.Setenv("MAIL_FROM", "VS Fastfood <orders@vsfastfood.in>")
	t.Setenv("RESEND_BASE_URL", baseURL)
	m, err := mailer.NewResendMailer()
	if err != nil {
		t.Fatalf("NewResendMailer: %v", err)
	}
	return m
}

func TestNewResendMailer_RequiresApiKey(t *testing.T) {
	t.Setenv("RESEND_API_KEY", "")
	if _, err := mailer.NewResendMailer(); err == nil {
		t.Fatal("expected an error when RESEND_API_KEY is unset")
	}
}

func TestResendMailer_Send(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := newTestMailer(t, srv.URL)
	err := m.Send(context.Background(), &mailer.Message{
		To:      "a@b.com",
		Subject: "Your VS Fastfood invoice",
		Html:    "<p>attached</p>",
		Attachments: []mailer.Attachment{
			{Filename: "invoice.xlsx", Content: []byte("bytes")},
		},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotAuth != "Bearer re_test_key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/emails" {
		t.Errorf("expected POST /emails, got %q", gotPath)
	}
	to, _ := gotBody["to"].([]interface{})
	if len(to) != 1 || to[0] != "a@b.com" {
		t.Errorf("unexpected recipients: %v", gotBody["to"])
	}
	atts, _ := gotBody["attachments"].([]interface{})
	if len(atts) != 1 {
		t.Fatalf("expected 1 attachment, got %v", gotBody["attachments"])
	}
	att := atts[0].(map[string]interface{})
	want := base64.StdEncoding.EncodeToString([]byte("bytes"))
	if att["content"] != want {
		t.Errorf("attachment content not base64 encoded: %v", att["content"])
	}
}

func TestResendMailer_SendFailureSurfacesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid recipient"}`))
	}))
	defer srv.Close()

	m := newTestMailer(t, srv.URL)
	err := m.Send(context.Background(), &mailer.Message{To: "bad", Subject: "s", Html: "h"})
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
}
