package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// ErrNotConfigured is returned by New when no API key is available
var ErrNotConfigured = errors.New("anthropic api key not set")

// Suggestion is the JSON shape the model is asked to answer with
type Suggestion struct {
	Tags []string `json:"tags"`
}

// Classifier picks existing tags for a call via the Anthropic API
type Classifier struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// New creates a new Classifier
func New(apiKey string) (*Classifier, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	return &Classifier{
		apiKey:   apiKey,
		model:    "claude-sonnet-4-20250514",
		endpoint: anthropicAPI,
		client:   http.DefaultClient,
	}, nil
}

// SuggestTags returns the subset of tagNames the model thinks fit the call
func (c *Classifier) SuggestTags(ctx context.Context, callName string, tagNames []string) ([]string, error) {
	prompt := buildPrompt(callName, tagNames)

	resp, err := c.callAPI(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}

	result, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}
	return keepKnown(result.Tags, tagNames), nil
}

func buildPrompt(callName string, tagNames []string) string {
	var sb strings.Builder

	sb.WriteString("A call-center operator logged this call. Pick the tags that apply. Return JSON only.\n\n")
	sb.WriteString("Call:\n")
	sb.WriteString(callName)
	sb.WriteString("\n\n")

	sb.WriteString("Available tags:\n")
	for _, tag := range tagNames {
		sb.WriteString("- ")
		sb.WriteString(tag)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(`Return a JSON object with this structure:
{
  "tags": ["tag-name", "other-tag"]
}

Rules:
- Only use tags from the list above, spelled exactly as listed
- Pick 0-3 tags; an empty list is fine when nothing fits

Return ONLY the JSON, no other text.`)

	return sb.String()
}

// keepKnown drops names the model invented, matching case-insensitively
func keepKnown(suggested, known []string) []string {
	index := make(map[string]string, len(known))
	for _, name := range known {
		index[strings.ToLower(name)] = name
	}

	out := []string{}
	seen := make(map[string]bool)
	for _, name := range suggested {
		canonical, ok := index[strings.ToLower(strings.TrimSpace(name))]
		if !ok || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Classifier) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 256,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return apiResp.Content[0].Text, nil
}

func parseResponse(resp string) (*Suggestion, error) {
	// Models sometimes wrap the JSON in a markdown fence
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var result Suggestion
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}

	return &result, nil
}
