package models

import "time"

type Task struct {
	ID          string    `bson:"_id" json:"_id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Completed   bool      `bson:"completed" json:"completed"`
	DueDate     time.Time `bson:"dueDate,omitempty" json:"dueDate"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Application struct {
	ID                  string    `bson:"_id" json:"_id"`
	OwnerID             string    `bson:"ownerId" json:"ownerId"`
	CollectionID        string    `bson:"collectionId,omitempty" json:"collectionId,omitempty"`
	JobTitle            string    `bson:"jobTitle" json:"jobTitle"`
	Description         string    `bson:"description" json:"description"`
	OrganizationName    string    `bson:"organizationName" json:"organizationName"`
	OrganizationAddress string    `bson:"organizationAddress" json:"organizationAddress"`
	OrganizationLogo    string    `bson:"organizationLogo" json:"organizationLogo"`
	Location            string    `bson:"location" json:"location"`
	Salary              int       `bson:"salary" json:"salary"`
	Type                string    `bson:"type" json:"type"`
	Tasks               []Task    `bson:"tasks" json:"tasks"`
	StartDate           time.Time `bson:"startDate,omitempty" json:"startDate"`
	EndDate             time.Time `bson:"endDate,omitempty" json:"endDate"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}
