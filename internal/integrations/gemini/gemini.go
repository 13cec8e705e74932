package gemini

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash"

// Client handles integration with the Gemini text API
type Client struct {
	client *genai.Client
	model  string
	log    *logrus.Logger
}

// NewClient initializes a new Gemini client
func NewClient(ctx context.Context, apiKey, model string, log *logrus.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: model, log: log}, nil
}

// planSchema constrains the answer to the four plan fields
func planSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"savingsStrategy":     {Type: genai.TypeString},
			"expenseAudits":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"safetyNetAssessment": {Type: genai.TypeString},
			"bridgeTactics":       {Type: genai.TypeString},
		},
		Required: []string{"savingsStrategy", "expenseAudits", "safetyNetAssessment", "bridgeTactics"},
	}
}

// Generate sends the prompt and returns the JSON text of the answer
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   planSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("Gemini generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("Gemini returned an empty response")
	}

	c.log.Debugf("Gemini response (%s): %d bytes", c.model, len(text))
	return text, nil
}

// Name returns the client name
func (c *Client) Name() string {
	return fmt.Sprintf("gemini:%s", c.model)
}
