package db

import (
	"context"
	"errors"
	"time"

	"civicfix/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid id")
	ErrDuplicate = errors.New("duplicate key")
)

type UpdateResult struct {
	Matched  int64
	Modified int64
}

type Store interface {
	IssueStore
	UserStore
	FeedbackStore
	PaymentStore
}

type IssueStore interface {
	LatestIssues(ctx context.Context, limit int64) ([]models.IssueSummary, error)
	SearchIssues(ctx context.Context, f models.IssueFilter) ([]models.Issue, int64, error)
	GetIssue(ctx context.Context, id string) (models.Issue, error)
	InsertIssue(ctx context.Context, issue *models.Issue) (string, error)
	IssuesByReporter(ctx context.Context, email string) ([]models.Issue, error)
	CountIssuesByReporter(ctx context.Context, email string) (int64, error)
	UpdateIssue(ctx context.Context, id string, edit models.IssueEdit, at time.Time) (UpdateResult, error)
	DeleteIssue(ctx context.Context, id string) (int64, error)
	// AddUpvote increments the count and records the voter unless the voter
	// is already in the set. It reports whether a vote was added.
	AddUpvote(ctx context.Context, id, email string) (bool, error)
	BoostIssue(ctx context.Context, id string, at time.Time) error
	IssueStats(ctx context.Context) (models.IssueStats, error)
}

type UserStore interface {
	FindUser(ctx context.Context, email string) (models.User, error)
	InsertUser(ctx context.Context, user *models.User) (string, error)
	UpdateProfile(ctx context.Context, email string, p models.ProfileUpdate) (UpdateResult, error)
	// SetPremium marks the user premium, creating the user document when the
	// payer has never signed in through POST /users.
	SetPremium(ctx context.Context, email string, at time.Time) error
	UserStats(ctx context.Context) (models.UserStats, error)
}

type FeedbackStore interface {
	InsertFeedback(ctx context.Context, fb *models.Feedback) (string, error)
	DeleteFeedback(ctx context.Context, email string) (int64, error)
}

type PaymentStore interface {
	InsertPayment(ctx context.Context, p *models.Payment) error
	GetPayment(ctx context.Context, id string) (models.Payment, error)
	MarkPaymentPaid(ctx context.Context, id string, at time.Time) error
	ExpiredPayments(ctx context.Context, now time.Time) ([]models.Payment, error)
	// DeleteUnpaidPayment removes the checkout only while it is still unpaid.
	DeleteUnpaidPayment(ctx context.Context, id string) (bool, error)
}
