package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IssueStatus string

const (
	StatusPending    IssueStatus = "Pending"
	StatusInProgress IssueStatus = "In Progress"
	StatusResolved   IssueStatus = "Resolved"
)

type IssuePriority string

const (
	PriorityNormal IssuePriority = "Normal"
	PriorityHigh   IssuePriority = "High"
)

const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

type Issue struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title         string             `json:"title" bson:"title"`
	Description   string             `json:"description" bson:"description"`
	Category      string             `json:"category" bson:"category"`
	Location      string             `json:"location" bson:"location"`
	Image         string             `json:"image" bson:"image"`
	Status        IssueStatus        `json:"status" bson:"status"`
	Priority      IssuePriority      `json:"priority" bson:"priority"`
	Email         string             `json:"email" bson:"email"` // reporter
	Upvotes       int                `json:"upvotes" bson:"upvotes"`
	UpvotedBy     []string           `json:"upvotedBy" bson:"upvotedBy"`
	PaymentStatus string             `json:"paymentStatus" bson:"paymentStatus"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
	PremiumSince  *time.Time         `json:"premiumSince,omitempty" bson:"premiumSince,omitempty"`
}

func (i Issue) HasUpvoted(email string) bool {
	for _, e := range i.UpvotedBy {
		if e == email {
			return true
		}
	}
	return false
}

// IssueSummary is the card projection served by /latest-issue.
type IssueSummary struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id"`
	Title    string             `json:"title" bson:"title"`
	Category string             `json:"category" bson:"category"`
	Status   IssueStatus        `json:"status" bson:"status"`
	Priority IssuePriority      `json:"priority" bson:"priority"`
	Location string             `json:"location" bson:"location"`
	Image    string             `json:"image" bson:"image"`
	Upvotes  int                `json:"upvotes" bson:"upvotes"`
}

func (i Issue) Summary() IssueSummary {
	return IssueSummary{
		ID:       i.ID,
		Title:    i.Title,
		Category: i.Category,
		Status:   i.Status,
		Priority: i.Priority,
		Location: i.Location,
		Image:    i.Image,
		Upvotes:  i.Upvotes,
	}
}

type IssueFilter struct {
	Title    string
	Category string
	Location string
	Search   string // matched against title, category or location
	Limit    int64
	Skip     int64
}

// IssueEdit holds the fields an owner may overwrite.
type IssueEdit struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Location    string `json:"location"`
	Image       string `json:"image"`
}

type IssueStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Resolved   int64 `json:"resolved"`
}

func (s *IssueStats) Add(status IssueStatus, n int64) {
	s.Total += n
	switch status {
	case StatusPending:
		s.Pending += n
	case StatusInProgress:
		s.InProgress += n
	case StatusResolved:
		s.Resolved += n
	}
}
