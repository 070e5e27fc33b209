package models

// JobVacancy is cache-only: scraped fresh, never persisted to Mongo.
type JobVacancy struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	CompanyLogo string `json:"companyLogo"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Salary      string `json:"salary"`
	Source      string `json:"source"`
	Since       string `json:"since"`
}
