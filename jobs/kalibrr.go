package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"huntboard/models"

	"github.com/PuerkitoBio/goquery"
)

const kalibrrBaseURL = "https://www.kalibrr.id"

// Kalibrr queries the board's JSON search endpoint; only the job
// description arrives as an HTML fragment and needs stripping.
type Kalibrr struct {
	BaseURL string
	Client  *http.Client
}

func NewKalibrr() *Kalibrr {
	return &Kalibrr{BaseURL: kalibrrBaseURL, Client: http.DefaultClient}
}

func (k *Kalibrr) Name() string { return "kalibrr" }

type kalibrrJob struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"name"`
	Company struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"company"`
	CompanyInfo struct {
		Logo string `json:"logo"`
	} `json:"company_info"`
	GoogleLocation struct {
		AddressComponents struct {
			Region string `json:"region"`
			City   string `json:"city"`
		} `json:"address_components"`
	} `json:"google_location"`
	ActivationDate string `json:"activation_date"`
	Salary         string `json:"salary"`
	Description    string `json:"description"`
}

type kalibrrResponse struct {
	Jobs []kalibrrJob `json:"jobs"`
}

func (k *Kalibrr) Fetch(ctx context.Context, page int, query string) ([]models.JobVacancy, error) {
	endpoint := fmt.Sprintf("%s/kjs/job_board/search?limit=10&offset=%d&text=%s",
		k.BaseURL, page*10, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := k.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kalibrr: HTTP %d", resp.StatusCode)
	}

	var data kalibrrResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}

	result := make([]models.JobVacancy, 0, len(data.Jobs))
	for _, job := range data.Jobs {
		addr := job.GoogleLocation.AddressComponents
		result = append(result, models.JobVacancy{
			Title:       job.Name,
			Company:     job.Company.Name,
			CompanyLogo: job.CompanyInfo.Logo,
			Location:    fmt.Sprintf("%s, %s", addr.Region, addr.City),
			Description: stripHTML(job.Description),
			Salary:      job.Salary,
			Since:       job.ActivationDate,
			Source:      fmt.Sprintf("%s/c/%s/jobs/%s", k.BaseURL, job.Company.Code, job.ID.String()),
		})
	}
	return result, nil
}

func stripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	return strings.TrimSpace(doc.Text())
}
