package gqlserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"huntboard/jobs"
	"huntboard/models"
	"huntboard/pubsub"
	"huntboard/schema"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAI struct{}

func (stubAI) GenerateTasks(_ context.Context, _ models.User, _ models.Application) ([]models.Task, error) {
	return nil, nil
}

func (stubAI) GenerateAdvice(_ context.Context, _ models.User, _ models.Application) (string, error) {
	return "", nil
}

type mapCache map[string]string

func (c mapCache) Get(_ context.Context, key string) (string, error) { return c[key], nil }

func (c mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c[key] = value
	return nil
}

type fixedSource struct{ vacancies []models.JobVacancy }

func (fixedSource) Name() string { return "fixed" }

func (s fixedSource) Fetch(_ context.Context, _ int, _ string) ([]models.JobVacancy, error) {
	return s.vacancies, nil
}

func testServer(t *testing.T) *Server {
	t.Helper()
	broker := pubsub.NewMemory()
	t.Cleanup(broker.Close)
	gqlSchema, err := schema.New(schema.Deps{
		Broker: broker,
		Jobs: jobs.NewService(mapCache{}, fixedSource{vacancies: []models.JobVacancy{
			{Title: "Go Developer", Company: "Acme"},
		}}),
		AI: stubAI{},
	})
	require.NoError(t, err)
	return New(gqlSchema)
}

func postGraphQL(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.GraphQL(rec, req, httprouter.Params{})
	return rec
}

func TestGraphQLQuery(t *testing.T) {
	s := testServer(t)
	rec := postGraphQL(t, s, `{"query": "{ getJobs(page: 1) { title company } }"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data struct {
			GetJobs []struct {
				Title   string `json:"title"`
				Company string `json:"company"`
			} `json:"getJobs"`
		} `json:"data"`
		Errors []interface{} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Empty(t, result.Errors)
	require.Len(t, result.Data.GetJobs, 1)
	assert.Equal(t, "Go Developer", result.Data.GetJobs[0].Title)
	assert.Equal(t, "Acme", result.Data.GetJobs[0].Company)
}

func TestGraphQLVariables(t *testing.T) {
	s := testServer(t)
	rec := postGraphQL(t, s, `{
		"query": "query Listings($page: Int) { getJobs(page: $page) { title } }",
		"variables": {"page": 1},
		"operationName": "Listings"
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Go Developer")
}

func TestGraphQLAuthErrorSurfaces(t *testing.T) {
	s := testServer(t)
	rec := postGraphQL(t, s, `{"query": "{ getAuthenticatedUser { _id } }"}`)
	require.Equal(t, http.StatusOK, rec.Code, "GraphQL errors ride a 200 response")
	assert.Contains(t, rec.Body.String(), "You have to login first!")
}

func TestGraphQLRejectsBadBody(t *testing.T) {
	s := testServer(t)
	rec := postGraphQL(t, s, `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGraphQLRejectsMissingQuery(t *testing.T) {
	s := testServer(t)
	rec := postGraphQL(t, s, `{"variables": {}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Must provide query string")
}
