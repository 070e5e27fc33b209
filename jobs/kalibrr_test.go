package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kalibrrFixture = `{
  "jobs": [
    {
      "id": 98765,
      "name": "Backend Engineer",
      "company": {"name": "Kopi Kita", "code": "kopi-kita"},
      "company_info": {"logo": "https://cdn.example.com/kopi.png"},
      "google_location": {
        "address_components": {"region": "DKI Jakarta", "city": "Jakarta Pusat"}
      },
      "activation_date": "2026-08-01T00:00:00Z",
      "salary": "IDR 20,000,000",
      "description": "<p>Work on <strong>payments</strong> infrastructure.</p>"
    }
  ]
}`

func TestKalibrrFetch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.String()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(kalibrrFixture))
	}))
	defer server.Close()

	src := &Kalibrr{BaseURL: server.URL, Client: server.Client()}
	got, err := src.Fetch(context.Background(), 2, "backend engineer")
	require.NoError(t, err)

	assert.Equal(t, "/kjs/job_board/search?limit=10&offset=20&text=backend+engineer", gotQuery)
	require.Len(t, got, 1)

	job := got[0]
	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Kopi Kita", job.Company)
	assert.Equal(t, "https://cdn.example.com/kopi.png", job.CompanyLogo)
	assert.Equal(t, "DKI Jakarta, Jakarta Pusat", job.Location)
	assert.Equal(t, "Work on payments infrastructure.", job.Description, "HTML tags must be stripped")
	assert.Equal(t, "IDR 20,000,000", job.Salary)
	assert.Equal(t, "2026-08-01T00:00:00Z", job.Since)
	assert.Equal(t, server.URL+"/c/kopi-kita/jobs/98765", job.Source)
}

func TestKalibrrFetchEmptyBoard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jobs": []}`))
	}))
	defer server.Close()

	src := &Kalibrr{BaseURL: server.URL, Client: server.Client()}
	got, err := src.Fetch(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKalibrrFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	src := &Kalibrr{BaseURL: server.URL, Client: server.Client()}
	_, err := src.Fetch(context.Background(), 1, "go")
	assert.Error(t, err)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", stripHTML("plain text"))
	assert.Equal(t, "a b", stripHTML("<div>a <span>b</span></div>"))
}
