package models

import "time"

type Message struct {
	ID         string    `bson:"_id" json:"_id"`
	SenderID   string    `bson:"senderId" json:"senderId"`
	SenderName string    `bson:"senderName" json:"senderName"`
	Content    string    `bson:"content" json:"content"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Collection struct {
	ID           string    `bson:"_id" json:"_id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description" json:"description"`
	OwnerID      string    `bson:"ownerId" json:"ownerId"`
	SharedWith   []string  `bson:"sharedWith" json:"sharedWith"`
	Applications []string  `bson:"applications" json:"applications"`
	Chat         []Message `bson:"chat" json:"chat"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}
