package models_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vsfastfood/restaurant_backend/models"
	"github.com/vsfastfood/restaurant_backend/utils"
)

type fakeOtpStore struct {
	codes      map[string]string
	consumeErr error
}

func newFakeOtpStore() *fakeOtpStore {
	return &fakeOtpStore{codes: map[string]string{}}
}

func (s *fakeOtpStore) Save(email string, code string, ttl time.Duration) error {
	s.codes[email] = code
	return nil
}

func (s *fakeOtpStore) Consume(email string) (string, bool, error) {
	if s.consumeErr != nil {
		return "", false, s.consumeErr
	}
	code, ok := s.codes[email]
	if ok {
		delete(s.codes, email)
	}
	return code, ok, nil
}

func withOtpStore(t *testing.T, store models.OtpStore) {
	t.Helper()
	models.SetOtpStore(store)
	t.Cleanup(func() { models.SetOtpStore(models.RedisOtpStore{}) })
}

func TestGenerateOtpCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := models.GenerateOtpCode()
		if err != nil {
			t.Fatalf("GenerateOtpCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, c := range code {
			if c < '0' || c > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}

func TestVerifyOtp_CorrectCode(t *testing.T) {
	store := newFakeOtpStore()
	withOtpStore(t, store)
	store.codes["a@b.com"] = "123456"

	ok, err := models.VerifyOtp(context.Background(), "a@b.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to succeed")
	}
	if _, found := store.codes["a@b.com"]; found {
		t.Fatal("code must be consumed after a successful verify")
	}
}

func TestVerifyOtp_WrongCodeStillConsumes(t *testing.T) {
	store := newFakeOtpStore()
	withOtpStore(t, store)
	store.codes["a@b.com"] = "123456"

	ok, err := models.VerifyOtp(context.Background(), "a@b.com", "000000")
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}
	if ok {
		t.Fatal("wrong code must not verify")
	}

	// A retry with the right code fails too: the stored value is gone.
	ok, err = models.VerifyOtp(context.Background(), "a@b.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}
	if ok {
		t.Fatal("expected a fresh code to be required after a failed attempt")
	}
}

func TestVerifyOtp_NoStoredCode(t *testing.T) {
	withOtpStore(t, newFakeOtpStore())

	ok, err := models.VerifyOtp(context.Background(), "a@b.com", "123456")
	if err != nil {
		t.Fatalf("VerifyOtp: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail when no code was stored")
	}
}

func TestVerifyOtp_ValidatesInput(t *testing.T) {
	withOtpStore(t, newFakeOtpStore())

	if _, err := models.VerifyOtp(context.Background(), "not-an-email", "123456"); err == nil {
		t.Fatal("expected a validation error for a bad email")
	}
	if _, err := models.VerifyOtp(context.Background(), "a@b.com", ""); err == nil {
		t.Fatal("expected a validation error for an empty code")
	}
}

func TestVerifyOtp_StoreUnavailable(t *testing.T) {
	store := newFakeOtpStore()
	store.consumeErr = errors.New("connection refused")
	withOtpStore(t, store)

	_, err := models.VerifyOtp(context.Background(), "a@b.com", "123456")
	if err != utils.ErrorStorageUnavailable {
		t.Fatalf("expected ErrorStorageUnavailable, got %v", err)
	}
}
