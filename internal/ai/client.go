package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

var systemPrompts = map[Mode]string{
	ModeStudent: "You are a study assistant for a secondary school student.",
	ModeTeacher: "You are an assistant for a secondary school teacher.",
}

const parsePrompt = `Read the timetable in the image. Reply with only a JSON array of objects with keys ` +
	`"day" (Mon..Fri), "periodIndex" (0-7), "subject", "teacher", "room".`

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

var (
	_ TextService    = (*Client)(nil)
	_ ScheduleParser = (*Client)(nil)
)

func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		log:     logger.With("component", "ai"),
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func textMessage(role, text string) chatMessage {
	return chatMessage{Role: role, Content: []contentPart{{Type: "text", Text: text}}}
}

func withImage(msg chatMessage, mimeType, data string) chatMessage {
	msg.Content = append(msg.Content, contentPart{
		Type:     "image_url",
		ImageURL: &imageURL{URL: fmt.Sprintf("data:%s;base64,%s", mimeType, data)},
	})
	return msg
}

func (c *Client) Reply(ctx context.Context, req Request) string {
	if !c.Enabled() {
		return FallbackReply
	}
	mode := req.Mode
	if mode == "" {
		mode = ModeStudent
	}

	msgs := []chatMessage{textMessage("system", systemPrompts[mode])}
	for _, turn := range req.History {
		role := "user"
		if turn.Role == "model" {
			role = "assistant"
		}
		msgs = append(msgs, textMessage(role, turn.Text))
	}
	last := textMessage("user", req.Message)
	if req.File != nil {
		last = withImage(last, req.File.MimeType, req.File.Data)
	}
	msgs = append(msgs, last)

	reply, err := c.complete(ctx, msgs)
	if err != nil {
		c.log.Warn("assistant request failed", "mode", mode, "err", err)
		return FallbackReply
	}
	return reply
}

func (c *Client) Parse(ctx context.Context, image, mimeType string) ([]ParsedPeriod, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	msgs := []chatMessage{
		textMessage("system", parsePrompt),
		withImage(textMessage("user", "Extract the timetable."), mimeType, image),
	}
	content, err := c.complete(ctx, msgs)
	if err != nil {
		return nil, errors.Wrap(err, "ai: parse schedule")
	}
	return decodePeriods(content)
}

func (c *Client) complete(ctx context.Context, msgs []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{Model: c.model, Messages: msgs})
	if err != nil {
		return "", errors.Wrap(err, "ai: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "ai: create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("ai: upstream status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "ai: decode response")
	}
	if len(out.Choices) == 0 {
		return "", errors.New("ai: empty choices in response")
	}
	return out.Choices[0].Message.Content, nil
}

// decodePeriods accepts the model output with or without a markdown code fence.
func decodePeriods(content string) ([]ParsedPeriod, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var periods []ParsedPeriod
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &periods); err != nil {
		return nil, errors.Wrap(err, "ai: model reply is not a period list")
	}
	valid := periods[:0]
	for _, p := range periods {
		if p.PeriodIndex < 0 || p.PeriodIndex > 7 {
			continue
		}
		valid = append(valid, p)
	}
	return valid, nil
}
