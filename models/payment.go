package models

import "time"

type CheckoutKind string

const (
	CheckoutPremium CheckoutKind = "premium"
	CheckoutBoost   CheckoutKind = "boost"
)

// Payment records a hosted checkout started with the payment processor.
// ID is the session reference handed to the client.
type Payment struct {
	ID        string       `json:"sessionId" bson:"_id"`
	ChargeID  string       `json:"chargeId" bson:"chargeId"`
	Kind      CheckoutKind `json:"kind" bson:"kind"`
	Email     string       `json:"email" bson:"email"`
	UserID    string       `json:"userId,omitempty" bson:"userId,omitempty"`
	IssueID   string       `json:"issueId,omitempty" bson:"issueId,omitempty"`
	Amount    int64        `json:"amount" bson:"amount"`
	Currency  string       `json:"currency" bson:"currency"`
	Status    string       `json:"status" bson:"status"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
	ExpiredAt time.Time    `json:"expiredAt" bson:"expiredAt"`
	PaidAt    *time.Time   `json:"paidAt,omitempty" bson:"paidAt,omitempty"`
}
