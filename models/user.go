package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "Admin"
)

type User struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email         string             `json:"email" bson:"email"`
	Name          string             `json:"name" bson:"name"`
	Photo         string             `json:"photo" bson:"photo"`
	Role          string             `json:"role" bson:"role"`
	IsPremium     bool               `json:"isPremium" bson:"isPremium"`
	PaymentStatus string             `json:"paymentStatus,omitempty" bson:"paymentStatus,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	LastLogin     time.Time          `json:"lastLogin" bson:"lastLogin"`
	PremiumSince  *time.Time         `json:"premiumSince,omitempty" bson:"premiumSince,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type ProfileUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"required,email"`
	Photo string `json:"photo"`
}

type UserStats struct {
	Total   int64 `json:"totalUsers"`
	Premium int64 `json:"premiumUsers"`
}
