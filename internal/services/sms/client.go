package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/kitsouko/aniarr/internal/config"
	"github.com/sirupsen/logrus"
)

const baseURL = "https://api.twilio.com/2010-04-01"

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// IsValidE164PhoneNumber reports whether the number is in E.164 format
// (leading +, country code, up to 15 digits total)
func IsValidE164PhoneNumber(phone string) bool {
	return e164Regex.MatchString(phone)
}

// Client handles communication with the SMS provider
type Client struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new SMS client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		accountSID: cfg.SMSAccountSID,
		authToken:  cfg.SMSAuthToken,
		from:       cfg.SMSFromNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// SendResult reports the outcome of one send attempt, including the provider's
// error metadata on failure.
type SendResult struct {
	Success      bool
	ErrorMessage string
	ErrorCode    int
	Status       string
}

type providerResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// SendVerification sends a one-time code to an E.164 phone number. The number
// is validated before any provider call; an invalid number never reaches the
// network.
func (c *Client) SendVerification(ctx context.Context, toE164Phone, code string) (*SendResult, error) {
	if !IsValidE164PhoneNumber(toE164Phone) {
		return &SendResult{
			Success:      false,
			ErrorMessage: "Invalid phone number format, expected E.164 (e.g. +15551234567)",
		}, nil
	}

	form := url.Values{}
	form.Set("To", toE164Phone)
	form.Set("From", c.from)
	form.Set("Body", fmt.Sprintf("Your aniarr verification code is %s. It expires in 10 minutes.", code))

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	c.logger.WithField("to", toE164Phone).Debug("Sending verification SMS")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	var provider providerResponse
	_ = json.Unmarshal(bodyBytes, &provider)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := provider.Message
		if message == "" {
			message = fmt.Sprintf("provider returned status %d", resp.StatusCode)
		}
		return &SendResult{
			Success:      false,
			ErrorMessage: message,
			ErrorCode:    provider.Code,
			Status:       provider.Status,
		}, nil
	}

	return &SendResult{Success: true, Status: provider.Status}, nil
}
