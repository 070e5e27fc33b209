package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"huntboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// geminiStub answers generateContent with reply as the single candidate text.
func geminiStub(t *testing.T, reply string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if capture != nil {
			*capture = string(body)
		}
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": reply}},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(server *httptest.Server) *Client {
	return &Client{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "gemini-1.5-flash",
		HTTP:    server.Client(),
	}
}

func TestGenerateTasks(t *testing.T) {
	reply := `[
	  {"title": "Review the job description", "description": "Note required skills.", "completed": false, "dueDate": "2026-09-01T00:00:00Z"},
	  {"title": "Prepare portfolio", "description": "", "completed": false, "dueDate": "2026-09-03T00:00:00Z"}
	]`
	var sentBody string
	server := geminiStub(t, reply, &sentBody)
	defer server.Close()

	user := models.User{ID: "u1", Username: "tester", Password: "bcrypt-hash"}
	app := models.Application{ID: "a1", JobTitle: "Go Developer"}

	tasks, err := testClient(server).GenerateTasks(context.Background(), user, app)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Review the job description", tasks[0].Title)
	assert.False(t, tasks[0].Completed)
	assert.NotEmpty(t, tasks[0].ID)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
	assert.False(t, tasks[0].CreatedAt.IsZero())
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), tasks[0].DueDate)

	assert.NotContains(t, sentBody, "bcrypt-hash", "password hash must never reach the model")
	assert.Contains(t, sentBody, "application/json")
	assert.Contains(t, sentBody, "Go Developer")
}

func TestGenerateAdvice(t *testing.T) {
	server := geminiStub(t, `{"advice": "Tailor your resume to the posting."}`, nil)
	defer server.Close()

	advice, err := testClient(server).GenerateAdvice(context.Background(),
		models.User{ID: "u1"}, models.Application{ID: "a1"})
	require.NoError(t, err)
	assert.Equal(t, "Tailor your resume to the posting.", advice)
}

func TestGenerateSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server).GenerateAdvice(context.Background(),
		models.User{}, models.Application{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprint(http.StatusTooManyRequests))
}

func TestGenerateRejectsEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	_, err := testClient(server).GenerateTasks(context.Background(),
		models.User{}, models.Application{})
	assert.Error(t, err)
}

func TestParseTasksRejectsNonArray(t *testing.T) {
	_, err := ParseTasks(`{"oops": true}`)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unexpected AI task response"))
}

func TestParseTasksEmptyArray(t *testing.T) {
	tasks, err := ParseTasks(`[]`)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestParseAdvice(t *testing.T) {
	advice, err := ParseAdvice(`{"advice": "Practice interviews."}`)
	require.NoError(t, err)
	assert.Equal(t, "Practice interviews.", advice)

	_, err = ParseAdvice(`{"advice": ""}`)
	assert.Error(t, err)

	_, err = ParseAdvice(`not json`)
	assert.Error(t, err)
}
