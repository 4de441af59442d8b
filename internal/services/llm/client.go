package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kitsouko/aniarr/internal/config"
	"github.com/sirupsen/logrus"
)

// Client handles communication with the text generation API
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a new text generation client
func NewClient(cfg *config.Config, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    cfg.LLMURL,
		apiKey:     cfg.LLMKey,
		model:      cfg.LLMModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     logger,
	}
}

// EnrichmentRequest carries the character's known fields as generation context
type EnrichmentRequest struct {
	CharacterName string
	AnimeTitle    string
	Role          string
	Description   string
}

// EnrichedFields is the generated biographical/analytical content
type EnrichedFields struct {
	Personality   string   `json:"personality"`
	Backstory     string   `json:"backstory"`
	CharacterArcs string   `json:"character_arcs"`
	Relationships []string `json:"key_relationships"`
	Abilities     []string `json:"detailed_abilities"`
	Trivia        []string `json:"trivia"`
}

// Empty reports whether generation produced no usable content
func (f *EnrichedFields) Empty() bool {
	return f.Personality == "" && f.Backstory == "" && f.CharacterArcs == "" &&
		len(f.Relationships) == 0 && len(f.Abilities) == 0 && len(f.Trivia) == 0
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are an anime encyclopedia assistant. Reply with a single JSON object " +
	"containing the keys personality, backstory, character_arcs, key_relationships, " +
	"detailed_abilities and trivia. The first three are strings, the rest are arrays of strings. " +
	"Base your answer only on widely known information about the character."

// GenerateCharacterProfile asks the model for enriched biographical fields.
// One call per character; the caller owns fan-out and failure policy.
func (c *Client) GenerateCharacterProfile(ctx context.Context, req EnrichmentRequest) (*EnrichedFields, error) {
	userPrompt := fmt.Sprintf("Character: %s\nAnime: %s\nRole: %s", req.CharacterName, req.AnimeTitle, req.Role)
	if req.Description != "" {
		userPrompt += "\nKnown description: " + req.Description
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.4,
	}
	payload.ResponseFormat.Type = "json_object"

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"character": req.CharacterName,
		"anime":     req.AnimeTitle,
	}).Debug("Requesting character enrichment")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	content := strings.TrimSpace(chat.Choices[0].Message.Content)
	// Some models wrap the object in a fenced block despite json_object mode
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var fields EnrichedFields
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse enrichment payload: %w", err)
	}
	if fields.Empty() {
		return nil, fmt.Errorf("enrichment payload was empty")
	}

	return &fields, nil
}
