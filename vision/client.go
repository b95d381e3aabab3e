package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	completionsURL = "https://api.openai.com/v1/chat/completions"

	// Hard cap on downloaded image size; schedule images are screenshots,
	// anything larger is rejected before it reaches the API.
	maxImageBytes = 20 << 20
)

const extractionPrompt = `Analyze this streaming schedule image and extract all events. Return the data as XML in the following format:

<schedule>
  <date_range>
    <start_date>YYYY-MM-DD</start_date>
    <end_date>YYYY-MM-DD</end_date>
  </date_range>
  <events>
    <event>
      <day>Monday</day>
      <date>YYYY-MM-DD</date>
      <time>HH:MM</time>
      <timezone>UTC</timezone>
      <title>Event Title</title>
      <description>Optional description</description>
    </event>
    <!-- Add more events as needed -->
  </events>
</schedule>

Important:
- Extract the date range (start and end dates) from the image
- For each event, extract day, date, time, timezone, title, and optional description
- Use UTC timezone if not specified
- Only include events that have a clear time and title
- If no events are found, return empty <events></events>`

// Client calls the OpenAI vision API to turn a schedule image into the
// raw XML payload the parser consumes.
type Client struct {
	hc     *http.Client
	apiKey string
	model  string
}

// New creates a vision client. model is the chat-completions model name,
// e.g. "gpt-4o".
func New(apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		hc:     &http.Client{Timeout: timeout},
		apiKey: apiKey,
		model:  model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Extract downloads the image and asks the vision model for the schedule
// XML. The returned payload may still be fenced or malformed; validating
// it is the parser's job.
func (c *Client) Extract(ctx context.Context, imageSource string) (string, error) {
	imageData, err := c.downloadImage(ctx, imageSource)
	if err != nil {
		return "", fmt.Errorf("downloading schedule image: %w", err)
	}

	payload := chatRequest{
		Model:       c.model,
		MaxTokens:   2000,
		Temperature: 0.1,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: extractionPrompt},
					{Type: "image_url", ImageURL: &imageURL{
						URL: "data:image/png;base64," + base64.StdEncoding.EncodeToString(imageData),
					}},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, completionsURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decoding vision API response (status=%d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("vision API error: %s (status=%d)", parsed.Error.Message, resp.StatusCode)
	}
	if resp.StatusCode >= 400 || len(parsed.Choices) == 0 {
		return "", fmt.Errorf("vision API returned no result (status=%d)", resp.StatusCode)
	}

	return parsed.Choices[0].Message.Content, nil
}

func (c *Client) downloadImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, nil
}
