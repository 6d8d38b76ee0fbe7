// Package store is the pass-through client for the WikiQuiz API: quiz
// generation, history, and the single mutating save-attempt call. It owns no
// formats beyond the contract shapes in internal/quiz.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

// Client talks to the WikiQuiz backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client; baseURL defaults to a local backend.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8000/api"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type generateRequest struct {
	URL          string `json:"url"`
	ForceRefresh bool   `json:"force_refresh"`
}

type saveAttemptRequest struct {
	Score   int    `json:"score"`
	Answers string `json:"answers"`
}

// GenerateQuiz asks the backend to turn the article at url into a quiz.
// Failures carry a client-facing message suitable for direct display.
func (c *Client) GenerateQuiz(ctx context.Context, articleURL string, forceRefresh bool) (*quiz.Quiz, error) {
	var result quiz.Quiz
	err := c.doJSON(ctx, http.MethodPost, "/generate", generateRequest{URL: articleURL, ForceRefresh: forceRefresh}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetHistory fetches the full ordered quiz list.
func (c *Client) GetHistory(ctx context.Context) ([]quiz.Quiz, error) {
	var result []quiz.Quiz
	if err := c.doJSON(ctx, http.MethodGet, "/history", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetQuiz fetches a single quiz by identity, used when a surface needs a
// fresh copy rather than the cached one.
func (c *Client) GetQuiz(ctx context.Context, id int) (*quiz.Quiz, error) {
	var result quiz.Quiz
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/quiz/%d", id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SaveAttempt persists the completed attempt for a quiz, overwriting any
// prior attempt. Answers round-trip through the stored text encoding.
func (c *Client) SaveAttempt(ctx context.Context, quizID, score int, answers quiz.AnswerMap) (*quiz.AttemptResult, error) {
	stored, err := quiz.EncodeAnswers(answers)
	if err != nil {
		return nil, err
	}
	var saved struct {
		Score   int    `json:"score"`
		Answers string `json:"answers"`
	}
	err = c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/quiz/%d/attempt", quizID), saveAttemptRequest{Score: score, Answers: stored}, &saved)
	if err != nil {
		return nil, err
	}
	decoded, err := quiz.DecodeAnswers(saved.Answers)
	if err != nil {
		return nil, err
	}
	return &quiz.AttemptResult{Score: saved.Score, Answers: decoded}, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
