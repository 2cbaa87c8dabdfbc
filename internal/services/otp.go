package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"
)

const (
	otpTTL            = 5 * time.Minute
	otpResendCooldown = 60 * time.Second
	otpMaxAttempts    = 3
)

var (
	ErrOTPCooldown     = errors.New("please wait before requesting another code")
	ErrOTPNotFound     = errors.New("no verification code pending for this number")
	ErrOTPMismatch     = errors.New("verification code does not match")
	ErrOTPTooManyTries = errors.New("too many failed attempts, request a new code")
)

// OTPService issues and verifies the one-time codes that gate checkout.
// Codes live in Redis with a short TTL and are delivered over WhatsApp;
// the resend cooldown is a SetNX lock.
type OTPService struct {
	cache    *RedisCache
	whatsapp *WhatsAppService
}

func NewOTPService(cache *RedisCache, whatsapp *WhatsAppService) *OTPService {
	return &OTPService{cache: cache, whatsapp: whatsapp}
}

func otpKey(phone string) string         { return "otp:" + phone }
func otpAttemptsKey(phone string) string { return "otp:attempts:" + phone }
func otpCooldownKey(phone string) string { return "otp:cooldown:" + phone }

// GenerateCode returns a random 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Request generates a code for the phone and sends it over WhatsApp.
// Repeated requests within the cooldown window are rejected.
func (s *OTPService) Request(ctx context.Context, phone string) error {
	phone = NormalizePhone(phone)

	ok, err := s.cache.SetNX(ctx, otpCooldownKey(phone), 1, otpResendCooldown)
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}
	if !ok {
		return ErrOTPCooldown
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}

	if err := s.cache.Set(ctx, otpKey(phone), code, otpTTL); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	// Fresh code, fresh attempt budget
	_ = s.cache.Delete(ctx, otpAttemptsKey(phone))

	msg := fmt.Sprintf("Kode verifikasi Anda: %s. Berlaku 5 menit, jangan bagikan ke siapapun.", code)
	if err := s.whatsapp.SendMessage(ctx, phone, msg); err != nil {
		return fmt.Errorf("failed to deliver code: %w", err)
	}

	return nil
}

// Verify checks a submitted code. After 3 failed attempts the code is burned
// and the customer has to request a new one.
func (s *OTPService) Verify(ctx context.Context, phone, code string) error {
	phone = NormalizePhone(phone)

	var stored string
	if err := s.cache.Get(ctx, otpKey(phone), &stored); err != nil {
		return ErrOTPNotFound
	}

	if stored != code {
		attempts, err := s.cache.Increment(ctx, otpAttemptsKey(phone))
		if err == nil && attempts >= otpMaxAttempts {
			_ = s.cache.Delete(ctx, otpKey(phone))
			_ = s.cache.Delete(ctx, otpAttemptsKey(phone))
			return ErrOTPTooManyTries
		}
		return ErrOTPMismatch
	}

	_ = s.cache.Delete(ctx, otpKey(phone))
	_ = s.cache.Delete(ctx, otpAttemptsKey(phone))
	_ = s.cache.Delete(ctx, otpCooldownKey(phone))
	return nil
}
