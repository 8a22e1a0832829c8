package db

import (
	"time"

	"civicfix/models"
	"civicfix/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var latestProjection = bson.M{
	"title":    1,
	"category": 1,
	"status":   1,
	"priority": 1,
	"location": 1,
	"image":    1,
	"upvotes":  1,
}

func containsFold(term string) bson.M {
	return bson.M{"$regex": utils.LiteralPattern(term), "$options": "i"}
}

// issueFilter builds the search query: field filters are ANDed, Search
// matches any of title/category/location.
func issueFilter(f models.IssueFilter) bson.M {
	filter := bson.M{}
	if f.Title != "" {
		filter["title"] = containsFold(f.Title)
	}
	if f.Category != "" {
		filter["category"] = containsFold(f.Category)
	}
	if f.Location != "" {
		filter["location"] = containsFold(f.Location)
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"title": containsFold(f.Search)},
			{"category": containsFold(f.Search)},
			{"location": containsFold(f.Search)},
		}
	}
	return filter
}

func issueFindOptions(f models.IssueFilter) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "priority", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	return opts
}

// upvoteFilter only matches when the voter has not voted yet, so the
// increment and the append land together or not at all.
func upvoteFilter(id interface{}, email string) bson.M {
	return bson.M{
		"_id":       id,
		"email":     bson.M{"$ne": email},
		"upvotedBy": bson.M{"$ne": email},
	}
}

func upvoteUpdate(email string) bson.M {
	return bson.M{
		"$inc":      bson.M{"upvotes": 1},
		"$addToSet": bson.M{"upvotedBy": email},
	}
}

// premiumUpdate flips the premium flags; on upsert the payer also gets the
// fields a first sign-in would have written.
func premiumUpdate(at time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"isPremium":     true,
			"paymentStatus": models.PaymentPaid,
			"premiumSince":  at,
		},
		"$setOnInsert": bson.M{
			"name":      "",
			"photo":     "",
			"role":      models.RoleUser,
			"createdAt": at,
			"lastLogin": at,
		},
	}
}

func expiredPaymentsFilter(now time.Time) bson.M {
	return bson.M{
		"status":    models.PaymentUnpaid,
		"expiredAt": bson.M{"$lt": now},
	}
}
