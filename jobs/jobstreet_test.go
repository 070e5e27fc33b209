package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobStreetFixture = `<!DOCTYPE html>
<html><body>
<div data-automation="normalJob">
  <img src="/logos/acme.png" />
  <a data-automation="jobTitle" href="#">Senior Go Developer</a>
  <a data-automation="jobCompany" href="#">PT Acme Teknologi</a>
  <span data-automation="jobCardLocation">Jakarta Selatan</span>
  <span data-automation="jobListingDate">3d ago</span>
  <span data-automation="jobShortDescription">Build backend services.</span>
  <span data-automation="jobSalary">Rp 15jt – Rp 25jt</span>
  <a data-automation="job-list-view-job-link" href="/id/job/12345">view</a>
</div>
<div data-automation="normalJob">
  <a data-automation="jobTitle" href="#">Data Engineer</a>
  <a data-automation="jobCompany" href="#">Nusantara Data</a>
  <span data-automation="jobCardLocation">Bandung</span>
  <a data-automation="job-list-view-job-link" href="/id/job/67890">view</a>
</div>
<div data-automation="normalJob">
  <a data-automation="jobTitle" href="#">Orphan Listing</a>
  <!-- no company: skipped -->
</div>
</body></html>`

func TestJobStreetFetch(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte(jobStreetFixture))
	}))
	defer server.Close()

	src := &JobStreet{BaseURL: server.URL, Client: server.Client()}
	got, err := src.Fetch(context.Background(), 2, "golang")
	require.NoError(t, err)

	assert.Equal(t, "/id/golang-jobs?page=2", gotPath)
	require.Len(t, got, 2, "card without a company must be skipped")

	first := got[0]
	assert.Equal(t, "Senior Go Developer", first.Title)
	assert.Equal(t, "PT Acme Teknologi", first.Company)
	assert.Equal(t, "/logos/acme.png", first.CompanyLogo)
	assert.Equal(t, "Jakarta Selatan", first.Location)
	assert.Equal(t, "3d ago", first.Since)
	assert.Equal(t, "Build backend services.", first.Description)
	assert.Equal(t, "Rp 25jt", first.Salary, "salary range keeps the upper bound")
	assert.Equal(t, server.URL+"/id/job/12345", first.Source)

	second := got[1]
	assert.Equal(t, "Data Engineer", second.Title)
	assert.Empty(t, second.Salary)
}

func TestJobStreetFetchWithoutQuery(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		w.Write([]byte("<html><body></body></html>"))
	}))
	defer server.Close()

	src := &JobStreet{BaseURL: server.URL, Client: server.Client()}
	got, err := src.Fetch(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "/id/jobs?page=1", gotPath)
}

func TestJobStreetFetchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	src := &JobStreet{BaseURL: server.URL, Client: server.Client()}
	_, err := src.Fetch(context.Background(), 1, "go")
	assert.Error(t, err)
}
