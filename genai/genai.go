// Package genai calls the Gemini generateContent API to draft application
// task lists and application advice. Responses are requested as JSON; a
// malformed reply propagates as an error, there are no retries.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"huntboard/models"
	"huntboard/utils"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	HTTP    *http.Client
}

func New() *Client {
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  os.Getenv("GEMINI_API_KEY"),
		Model:   model,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("call Gemini: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("Gemini HTTP %d", resp.StatusCode)
	}

	var gr generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return "", fmt.Errorf("decode Gemini response: %w", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates in Gemini response")
	}
	return gr.Candidates[0].Content.Parts[0].Text, nil
}

// GenerateTasks asks the model for a preparation checklist for one
// application. The user's password hash is stripped before serialization.
func (c *Client) GenerateTasks(ctx context.Context, user models.User, app models.Application) ([]models.Task, error) {
	user.Password = ""

	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}
	appJSON, err := json.Marshal(app)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(
		"Based on this user %s and this job application %s, generate a list of preparation tasks. "+
			`Respond with a JSON array of objects shaped like {"title": string, "description": string, "completed": false, "dueDate": string (RFC 3339)}.`,
		userJSON, appJSON)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return ParseTasks(raw)
}

// GenerateAdvice asks the model for free-text advice on one application.
func (c *Client) GenerateAdvice(ctx context.Context, user models.User, app models.Application) (string, error) {
	user.Password = ""

	userJSON, err := json.Marshal(user)
	if err != nil {
		return "", err
	}
	appJSON, err := json.Marshal(app)
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(
		"Based on this user %s and this job application %s, give concrete advice for landing the job. "+
			`Respond with a JSON object shaped like {"advice": string}.`,
		userJSON, appJSON)

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	return ParseAdvice(raw)
}

// ParseTasks decodes the model's task-list reply, assigning ids and
// timestamps since the model only drafts content.
func ParseTasks(raw string) ([]models.Task, error) {
	var drafts []struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Completed   bool      `json:"completed"`
		DueDate     time.Time `json:"dueDate"`
	}
	if err := json.Unmarshal([]byte(raw), &drafts); err != nil {
		return nil, fmt.Errorf("unexpected AI task response: %w", err)
	}

	now := time.Now()
	tasks := make([]models.Task, 0, len(drafts))
	for _, d := range drafts {
		tasks = append(tasks, models.Task{
			ID:          utils.NewID(),
			Title:       d.Title,
			Description: d.Description,
			Completed:   d.Completed,
			DueDate:     d.DueDate,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return tasks, nil
}

// ParseAdvice decodes the {"advice": string} envelope.
func ParseAdvice(raw string) (string, error) {
	var envelope struct {
		Advice string `json:"advice"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return "", fmt.Errorf("unexpected AI advice response: %w", err)
	}
	if envelope.Advice == "" {
		return "", fmt.Errorf("empty advice in AI response")
	}
	return envelope.Advice, nil
}
