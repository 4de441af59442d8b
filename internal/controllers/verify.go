package controllers

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/kitsouko/aniarr/internal/metrics"
	"github.com/kitsouko/aniarr/internal/models"
	"github.com/kitsouko/aniarr/internal/services/sms"
	"github.com/sirupsen/logrus"
)

const (
	codeDigits       = 6
	codeTTL          = 10 * time.Minute
	maxCheckAttempts = 5
)

var (
	// ErrInvalidPhone is returned before any provider call for malformed numbers
	ErrInvalidPhone = errors.New("invalid phone number format, expected E.164 (e.g. +15551234567)")
	// ErrCodeExpired is returned when the challenge is past its expiry
	ErrCodeExpired = errors.New("verification code expired")
	// ErrTooManyAttempts is returned after the attempt budget is spent
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrCodeMismatch is returned for a wrong code
	ErrCodeMismatch = errors.New("verification code does not match")
	// ErrSendFailed wraps a provider-side delivery failure
	ErrSendFailed = errors.New("failed to send verification SMS")
)

// SMSSender is the external SMS collaborator
type SMSSender interface {
	SendVerification(ctx context.Context, toE164Phone, code string) (*sms.SendResult, error)
}

// VerifyController owns phone verification challenges: code generation,
// hashed storage, delivery and checking. Codes live 10 minutes and allow 5
// check attempts; only the sha256 of the code is ever stored.
type VerifyController struct {
	db      *models.Database
	sender  SMSSender
	metrics *metrics.Metrics
	logger  *logrus.Logger
}

// NewVerifyController creates a new verification controller
func NewVerifyController(db *models.Database, sender SMSSender, m *metrics.Metrics, logger *logrus.Logger) *VerifyController {
	return &VerifyController{db: db, sender: sender, metrics: m, logger: logger}
}

// Start validates the number, generates and stores a hashed one-time code and
// sends it. Returns the challenge id the client must present to Check.
func (c *VerifyController) Start(ctx context.Context, userID, phone string) (string, error) {
	if !sms.IsValidE164PhoneNumber(phone) {
		return "", ErrInvalidPhone
	}

	code, err := generateCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	verification := &models.PhoneVerification{
		ID:          uuid.NewString(),
		UserID:      userID,
		PhoneNumber: phone,
		CodeHash:    hashCode(code),
		ExpiresAt:   time.Now().Add(codeTTL),
	}
	if err := c.db.CreateVerification(verification); err != nil {
		return "", fmt.Errorf("failed to store verification: %w", err)
	}

	result, err := c.sender.SendVerification(ctx, phone, code)
	if err != nil {
		c.metrics.SMSSendTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if !result.Success {
		c.metrics.SMSSendTotal.WithLabelValues("rejected").Inc()
		c.logger.WithFields(logrus.Fields{
			"error_code": result.ErrorCode,
			"status":     result.Status,
		}).Warn("SMS provider rejected verification send")
		return "", fmt.Errorf("%w: %s", ErrSendFailed, result.ErrorMessage)
	}

	c.metrics.SMSSendTotal.WithLabelValues("ok").Inc()
	c.logger.WithField("user_id", userID).Info("Verification SMS sent")
	return verification.ID, nil
}

// Check answers a challenge. On success the challenge is marked verified and
// the user's profile is stamped.
func (c *VerifyController) Check(ctx context.Context, id, code string) error {
	verification, err := c.db.GetVerification(id)
	if err != nil {
		return err
	}

	if verification.Expired(time.Now()) {
		return ErrCodeExpired
	}
	if verification.Attempts >= maxCheckAttempts {
		return ErrTooManyAttempts
	}

	verification.Attempts++
	if err := c.db.UpdateVerification(verification); err != nil {
		return err
	}

	want := []byte(verification.CodeHash)
	got := []byte(hashCode(code))
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return ErrCodeMismatch
	}

	verification.Verified = true
	if err := c.db.UpdateVerification(verification); err != nil {
		return err
	}

	profile, err := c.db.GetUserProfile(verification.UserID)
	if err != nil {
		if err != models.ErrNotFound {
			return err
		}
		profile = &models.UserProfile{UserID: verification.UserID}
	}
	profile.PhoneVerified = true
	if err := c.db.UpsertUserProfile(profile); err != nil {
		return err
	}

	c.logger.WithField("user_id", verification.UserID).Info("Phone number verified")
	return nil
}

// PurgeExpired removes challenges past their expiry. Cron-driven.
func (c *VerifyController) PurgeExpired() {
	count, err := c.db.DeleteExpiredVerifications(time.Now())
	if err != nil {
		c.logger.WithError(err).Error("Failed to purge expired verifications")
		return
	}
	if count > 0 {
		c.logger.WithField("count", count).Debug("Purged expired verifications")
	}
}

func generateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
