package models

import "time"

type Experience struct {
	ID        string    `bson:"_id" json:"_id"`
	JobTitle  string    `bson:"jobTitle" json:"jobTitle"`
	Institute string    `bson:"institute" json:"institute"`
	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate,omitempty" json:"endDate"`
}

type Education struct {
	ID        string    `bson:"_id" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	Institute string    `bson:"institute" json:"institute"`
	StartDate time.Time `bson:"startDate" json:"startDate"`
	EndDate   time.Time `bson:"endDate,omitempty" json:"endDate"`
}

type License struct {
	ID         string    `bson:"_id" json:"_id"`
	Number     string    `bson:"number" json:"number"`
	Name       string    `bson:"name" json:"name"`
	IssuedBy   string    `bson:"issuedBy" json:"issuedBy"`
	IssuedAt   time.Time `bson:"issuedAt" json:"issuedAt"`
	ExpiryDate time.Time `bson:"expiryDate,omitempty" json:"expiryDate"`
}

type Profile struct {
	ID          string       `bson:"_id" json:"_id"`
	Bio         string       `bson:"bio" json:"bio"`
	Location    string       `bson:"location" json:"location"`
	JobPrefs    []string     `bson:"jobPrefs" json:"jobPrefs"`
	Experiences []Experience `bson:"experiences" json:"experiences"`
	Education   []Education  `bson:"education" json:"education"`
	Licenses    []License    `bson:"licenses" json:"licenses"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time    `bson:"updatedAt" json:"updatedAt"`
}

type User struct {
	ID       string `bson:"_id" json:"_id"`
	Username string `bson:"username" json:"username"`
	Avatar   string `bson:"avatar" json:"avatar"`
	FullName string `bson:"fullName" json:"fullName"`
	Email    string `bson:"email" json:"email"`
	// Password holds the bcrypt hash, never the plaintext.
	Password    string    `bson:"password" json:"password"`
	IsOnline    int       `bson:"isOnline" json:"isOnline"`
	Collections []string  `bson:"collections" json:"collections"`
	Profile     Profile   `bson:"profile" json:"profile"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

type PresenceEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsOnline int    `json:"isOnline"`
}
