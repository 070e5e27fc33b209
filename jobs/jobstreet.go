package jobs

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"huntboard/models"

	"github.com/PuerkitoBio/goquery"
)

const jobStreetBaseURL = "https://id.jobstreet.com"

// JobStreet scrapes the JobStreet listing pages by HTML structure. The
// data-automation attributes are the stable-ish part of their markup;
// everything else there churns.
type JobStreet struct {
	BaseURL string
	Client  *http.Client
}

func NewJobStreet() *JobStreet {
	return &JobStreet{BaseURL: jobStreetBaseURL, Client: http.DefaultClient}
}

func (j *JobStreet) Name() string { return "jobstreet" }

func (j *JobStreet) Fetch(ctx context.Context, page int, query string) ([]models.JobVacancy, error) {
	path := "jobs"
	if query != "" {
		path = query + "-jobs"
	}
	url := fmt.Sprintf("%s/id/%s?page=%d", j.BaseURL, path, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := j.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jobstreet: HTTP %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}
	return j.parse(doc), nil
}

func (j *JobStreet) parse(doc *goquery.Document) []models.JobVacancy {
	var result []models.JobVacancy

	doc.Find(`[data-automation="normalJob"]`).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find(`a[data-automation="jobTitle"]`).Text())
		company := strings.TrimSpace(card.Find(`a[data-automation="jobCompany"]`).Text())
		if title == "" || company == "" {
			return
		}

		location := strings.TrimSpace(card.Find(`span[data-automation="jobCardLocation"]`).Text())
		since := strings.TrimSpace(card.Find(`span[data-automation="jobListingDate"]`).Text())
		description := strings.TrimSpace(card.Find(`span[data-automation="jobShortDescription"]`).Text())
		salary := strings.TrimSpace(card.Find(`span[data-automation="jobSalary"]`).Text())
		href, _ := card.Find(`a[data-automation="job-list-view-job-link"]`).Attr("href")
		logo, _ := card.Find("img").First().Attr("src")

		vacancy := models.JobVacancy{
			Title:       title,
			Company:     company,
			CompanyLogo: logo,
			Location:    location,
			Description: description,
			Since:       since,
			Source:      j.BaseURL + href,
		}
		// ranges like "Rp 8jt – Rp 12jt": keep the upper bound
		if salary != "" {
			parts := strings.Split(salary, "–")
			vacancy.Salary = strings.TrimSpace(parts[len(parts)-1])
		}
		result = append(result, vacancy)
	})

	return result
}
