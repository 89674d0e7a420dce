package prompts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mxchestnut/workshelf/pkg/models"
)

// Client generates writing prompts with a local Ollama instance.
type Client struct {
	host   string
	model  string
	client *http.Client
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func NewClient(host, model string) *Client {
	return &Client{
		host:   host,
		model:  model,
		client: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Generate produces one writing prompt for the given genre. The seed, when
// non-empty, is an idea fragment the prompt should build on.
func (c *Client) Generate(ctx context.Context, genre, seed string) (*models.Prompt, error) {
	instruction := fmt.Sprintf("Write a single creative writing prompt for the %s genre.", genre)
	if seed != "" {
		instruction += fmt.Sprintf(" Build on this idea: %s.", seed)
	}
	instruction += " Respond with the prompt only, no preamble."

	reqBody := generateRequest{
		Model:  c.model,
		Prompt: instruction,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/generate", c.host)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("Ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	text := strings.TrimSpace(genResp.Response)
	if text == "" {
		return nil, fmt.Errorf("Ollama returned an empty prompt")
	}

	return &models.Prompt{
		Text:      text,
		Genre:     genre,
		CreatedAt: time.Now(),
	}, nil
}
