package models

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"

	"github.com/vsfastfood/restaurant_backend/config"
	"github.com/vsfastfood/restaurant_backend/utils"
)

// OtpStore is the expiring code store. Save overwrites any previous code
// for the same email; Consume removes the code on read so a code verifies
// at most once.
type OtpStore interface {
	Save(email string, code string, ttl time.Duration) error
	Consume(email string) (string, bool, error)
}

// RedisOtpStore keeps codes in redis under an Otp:<email> key with the
// TTL enforced by redis itself.
type RedisOtpStore struct{}

func (RedisOtpStore) Save(email string, code string, ttl time.Duration) error {
	return config.SetRedisValue("Otp:"+email, code, ttl)
}

func (RedisOtpStore) Consume(email string) (string, bool, error) {
	return config.GetDelRedisValue("Otp:" + email)
}

var otpStore OtpStore = RedisOtpStore{}

// SetOtpStore swaps the backing store. Tests inject an in-memory store.
func SetOtpStore(store OtpStore) {
	otpStore = store
}

func otpLifespan() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("OTP_LIFESPAN_MINUTES"))
	if err != nil || minutes <= 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}

// GenerateOtpCode returns a 6 digit numeric code, zero padded.
func GenerateOtpCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

type OtpMailPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SendOtp generates a code, stores it with a TTL and queues the mail
// through the outbox so delivery retries survive a crash.
func SendOtp(ctx context.Context, email string) error {
	moduleName := "otp"

	if !utils.IsValidEmail(email) {
		return utils.NewValidationError("email", "invalid email address")
	}

	code, err := GenerateOtpCode()
	if err != nil {
		config.LogError(config.GetLogger(), moduleName, "SendOtp", "generating code", email, err)
		return err
	}

	if err := otpStore.Save(email, code, otpLifespan()); err != nil {
		config.LogError(config.GetLogger(), moduleName, "SendOtp", "storing code", email, err)
		return utils.ErrorStorageUnavailable
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return utils.ErrorStorageUnavailable
	}

	payload := OtpMailPayload{Email: email, Code: code}
	if err := QueueMail(ctx, tx, MailKindOtp, 0, "otp", email, "Your verification code", payload); err != nil {
		tx.Rollback()
		config.LogError(config.GetLogger(), moduleName, "SendOtp", "queueing mail", email, err)
		return utils.ErrorStorageUnavailable
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorStorageUnavailable
	}

	return nil
}

// VerifyOtp consumes the stored code and compares it to the submitted one.
// A wrong code still consumes the stored value, forcing a fresh request.
func VerifyOtp(ctx context.Context, email string, code string) (bool, error) {
	if !utils.IsValidEmail(email) {
		return false, utils.NewValidationError("email", "invalid email address")
	}
	if code == "" {
		return false, utils.NewValidationError("code", "code is required")
	}

	stored, found, err := otpStore.Consume(email)
	if err != nil {
		config.LogError(config.GetLogger(), "otp", "VerifyOtp", "consuming code", email, err)
		return false, utils.ErrorStorageUnavailable
	}
	if !found {
		return false, nil
	}

	return stored == code, nil
}
