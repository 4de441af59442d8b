package sms

import (
	"context"
	"strings"
	"testing"

	"github.com/kitsouko/aniarr/internal/config"
	"github.com/sirupsen/logrus"
)

func TestIsValidE164PhoneNumber(t *testing.T) {
	tests := []struct {
		phone string
		valid bool
	}{
		{"+15551234567", true},
		{"+447911123456", true},
		{"+861012345678", true},
		{"5551234567", false},        // missing plus
		{"+05551234567", false},      // leading zero after plus
		{"+1", false},                // too short
		{"+1234567890123456", false}, // over 15 digits
		{"+1555123456a", false},      // non-digit
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidE164PhoneNumber(tt.phone); got != tt.valid {
			t.Errorf("IsValidE164PhoneNumber(%q) = %v, want %v", tt.phone, got, tt.valid)
		}
	}
}

func TestSendVerificationRejectsInvalidNumberWithoutNetwork(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	client := NewClient(&config.Config{}, logger)

	result, err := client.SendVerification(context.Background(), "5551234567", "123456")
	if err != nil {
		t.Fatalf("Invalid number should return a result, not an error: %v", err)
	}
	if result.Success {
		t.Error("Invalid number must not report success")
	}
	if !strings.Contains(result.ErrorMessage, "E.164") {
		t.Errorf("Error message should explain the expected format, got %q", result.ErrorMessage)
	}
}
