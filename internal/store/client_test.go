package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/wikiquiz/internal/quiz"
)

func TestGenerateQuizSendsRequestAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/generate", r.URL.Path)

		var req struct {
			URL          string `json:"url"`
			ForceRefresh bool   `json:"force_refresh"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://en.wikipedia.org/wiki/Alan_Turing", req.URL)
		assert.True(t, req.ForceRefresh)

		json.NewEncoder(w).Encode(quiz.Quiz{ID: 5, Title: "Alan Turing"})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	q, err := client.GenerateQuiz(context.Background(), "https://en.wikipedia.org/wiki/Alan_Turing", true)
	require.NoError(t, err)
	assert.Equal(t, 5, q.ID)
	assert.Equal(t, "Alan Turing", q.Title)
}

func TestGenerateQuizSurfacesDetailMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Scraping failed: article not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.GenerateQuiz(context.Background(), "https://example.com/nope", false)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Scraping failed: article not found", apiErr.Error())
}

func TestErrorWithoutDetailFallsBackToStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	_, err := client.GetHistory(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGetHistoryDecodesList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/history", r.URL.Path)
		json.NewEncoder(w).Encode([]quiz.Quiz{{ID: 1}, {ID: 2}})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	items, err := client.GetHistory(context.Background())
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestGetQuizByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quiz/7", r.URL.Path)
		json.NewEncoder(w).Encode(quiz.Quiz{ID: 7})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	q, err := client.GetQuiz(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, q.ID)
}

func TestSaveAttemptRoundTripsStoredEncoding(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/quiz/42/attempt", r.URL.Path)

		var req struct {
			Score   int    `json:"score"`
			Answers string `json:"answers"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 1, req.Score)

		decoded, err := quiz.DecodeAnswers(req.Answers)
		require.NoError(t, err)
		assert.Equal(t, quiz.AnswerMap{1: "A", 2: "X"}, decoded)

		json.NewEncoder(w).Encode(map[string]interface{}{"score": req.Score, "answers": req.Answers})
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	result, err := client.SaveAttempt(context.Background(), 42, 1, quiz.AnswerMap{1: "A", 2: "X"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Score)
	assert.Equal(t, quiz.AnswerMap{1: "A", 2: "X"}, result.Answers)
}
