package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/MatthijsVer/company-manager/pkg/config"
)

// ExtractionClient is a minimal client for the structured-extraction LLM
// service. It speaks two endpoint shapes of the same logical API: the
// structured "responses" endpoint and the classic chat-completions endpoint
// with a JSON-schema response format.
type ExtractionClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewExtractionClient creates an extraction client using values from the
// provided config. Pass a nil config to fall back to environment variables.
func NewExtractionClient(cfg *config.ExtractionConfig) *ExtractionClient {
	var apiKey, base, model string
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
	}
	if apiKey == "" {
		apiKey = os.Getenv("EXTRACTION_API_KEY")
	}
	if base == "" {
		base = os.Getenv("EXTRACTION_API_URL")
		if base == "" {
			base = "https://api.openai.com"
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &ExtractionClient{
		apiKey:  apiKey,
		baseURL: base,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Payload is the structured output of one extraction call. The service may
// return an inline JSON object or a text field containing JSON, optionally
// wrapped in markdown code fences; exactly one of the two is set.
type Payload struct {
	Inline json.RawMessage
	Text   string
}

// Decode unmarshals the payload into v, stripping code fences from the text
// shape first
func (p Payload) Decode(v interface{}) error {
	if len(p.Inline) > 0 {
		return json.Unmarshal(p.Inline, v)
	}
	if p.Text == "" {
		return fmt.Errorf("empty extraction payload")
	}
	return json.Unmarshal([]byte(ExtractJSON(p.Text)), v)
}

// structuredRequest is the shape for the structured responses endpoint
type structuredRequest struct {
	Model        string     `json:"model"`
	Instructions string     `json:"instructions,omitempty"`
	Input        string     `json:"input"`
	Text         textFormat `json:"text"`
}

type textFormat struct {
	Format schemaFormat `json:"format"`
}

type schemaFormat struct {
	Type   string                 `json:"type"`
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
	Strict bool                   `json:"strict"`
}

// structuredResponse is a minimal response shape for the responses endpoint
type structuredResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string          `json:"type"`
			Text string          `json:"text"`
			JSON json.RawMessage `json:"json,omitempty"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// chatRequest is the shape for chat completion requests
type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []map[string]string `json:"messages"`
	Temperature    float64             `json:"temperature,omitempty"`
	ResponseFormat *responseFormat     `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type jsonSchemaSpec struct {
	Name   string                 `json:"name"`
	Schema map[string]interface{} `json:"schema"`
	Strict bool                   `json:"strict"`
}

// chatResponse is a minimal response shape for chat completions
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// StructuredExtract calls the structured responses endpoint. In strict mode
// the schema marks every task field required and any non-conformant or
// non-success response is returned as an error.
func (c *ExtractionClient) StructuredExtract(ctx context.Context, instructions, input string, schema map[string]interface{}, strict bool) (Payload, error) {
	reqBody := structuredRequest{
		Model:        c.model,
		Instructions: instructions,
		Input:        input,
		Text: textFormat{
			Format: schemaFormat{
				Type:   "json_schema",
				Name:   "meeting_extraction",
				Schema: schema,
				Strict: strict,
			},
		},
	}

	body, err := c.post(ctx, "/v1/responses", reqBody)
	if err != nil {
		return Payload{}, err
	}

	var sr structuredResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return Payload{}, fmt.Errorf("failed to decode structured response: %w", err)
	}
	if sr.Error != nil {
		return Payload{}, fmt.Errorf("extraction service error: %s", sr.Error.Message)
	}

	for _, out := range sr.Output {
		if out.Type != "" && out.Type != "message" {
			continue
		}
		for _, content := range out.Content {
			if len(content.JSON) > 0 {
				return Payload{Inline: content.JSON}, nil
			}
			if content.Text != "" {
				return Payload{Text: content.Text}, nil
			}
		}
	}

	return Payload{}, fmt.Errorf("structured response contained no output payload")
}

// ChatExtract calls the chat-completions endpoint with a JSON-schema
// response format. Used as the preview-mode fallback.
func (c *ExtractionClient) ChatExtract(ctx context.Context, instructions, input string, schema map[string]interface{}) (Payload, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []map[string]string{
			{"role": "system", "content": instructions},
			{"role": "user", "content": input},
		},
		Temperature: 0.2,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaSpec{
				Name:   "meeting_extraction",
				Schema: schema,
				Strict: false,
			},
		},
	}

	body, err := c.post(ctx, "/v1/chat/completions", reqBody)
	if err != nil {
		return Payload{}, err
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return Payload{}, fmt.Errorf("failed to decode chat response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Payload{}, fmt.Errorf("empty response from extraction service")
	}

	return Payload{Text: cr.Choices[0].Message.Content}, nil
}

// post sends a JSON request and returns the raw body of a 2xx response
func (c *ExtractionClient) post(ctx context.Context, path string, reqBody interface{}) ([]byte, error) {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	return body, nil
}

// ExtractJSON strips markdown code-fence markers from a JSON string
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
