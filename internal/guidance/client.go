// Package guidance wraps the AI-backed essay and resume endpoints.
package guidance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/collegiate-app/collegiate/internal/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Generation can take a while; give the model room.
			Timeout: 90 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GenerateOutline turns questionnaire responses into an essay outline.
func (c *Client) GenerateOutline(ctx context.Context, responses model.OutlineResponses) (*model.OutlineResult, error) {
	if responses.Empty() {
		return nil, errors.New("Please answer at least one question first.")
	}

	var payload struct {
		Outline *model.OutlineResult `json:"outline"`
		Error   string               `json:"error"`
	}
	if err := c.postJSON(ctx, "/api/openai/generate-outline", responses, &payload, "Failed to generate outline."); err != nil {
		return nil, err
	}
	if payload.Outline == nil {
		return nil, errors.New("Failed to generate outline.")
	}
	return payload.Outline, nil
}

// GradeEssay scores a draft against the admissions rubric. Context is
// optional background for the grader, e.g. the prompt being answered.
func (c *Client) GradeEssay(ctx context.Context, essay, essayContext string) (*model.EssayGrade, error) {
	if strings.TrimSpace(essay) == "" {
		return nil, errors.New("Essay text is required.")
	}

	body := map[string]string{
		"essay":   essay,
		"context": essayContext,
	}
	var grade model.EssayGrade
	if err := c.postJSON(ctx, "/api/openai/grade-essay", body, &grade, "Failed to grade essay."); err != nil {
		return nil, err
	}
	return &grade, nil
}

// AnalyzeResume returns markdown feedback for resume text.
func (c *Client) AnalyzeResume(ctx context.Context, resumeText string) (string, error) {
	if strings.TrimSpace(resumeText) == "" {
		return "", errors.New("Resume text is required.")
	}

	var payload struct {
		Feedback string `json:"feedback"`
	}
	body := map[string]string{"resume_text": resumeText}
	if err := c.postJSON(ctx, "/api/openai/analyze-resume", body, &payload, "Failed to analyze resume."); err != nil {
		return "", err
	}
	if payload.Feedback == "" {
		return "", errors.New("Failed to analyze resume.")
	}
	return payload.Feedback, nil
}

// UploadResume sends a resume file for text extraction and analysis.
func (c *Client) UploadResume(ctx context.Context, filename string, contents io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("resume", filename)
	if err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, contents); err != nil {
		return "", fmt.Errorf("reading resume file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("building upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/openai/upload-resume", &buf)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var payload struct {
		Feedback string `json:"feedback"`
	}
	if err := c.send(req, &payload, "Failed to upload resume."); err != nil {
		return "", err
	}
	if payload.Feedback == "" {
		return "", errors.New("Failed to upload resume.")
	}
	return payload.Feedback, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any, fallback string) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out, fallback)
}

func (c *Client) send(req *http.Request, out any, fallback string) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("guidance request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			return errors.New(payload.Error)
		}
		return errors.New(fallback)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
