package db

import (
	"context"
	"time"

	"civicfix/models"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	issues   *mongo.Collection
	users    *mongo.Collection
	feedback *mongo.Collection
	payments *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func objectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return objID, nil
}

func insertedHex(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return ""
}

func (s *MongoStore) LatestIssues(ctx context.Context, limit int64) ([]models.IssueSummary, error) {
	opts := options.Find().
		SetLimit(limit).
		SetSort(bson.D{{Key: "status", Value: -1}}).
		SetProjection(latestProjection)

	cursor, err := s.issues.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find latest issues")
	}
	defer cursor.Close(ctx)

	latest := []models.IssueSummary{}
	if err := cursor.All(ctx, &latest); err != nil {
		return nil, errors.Wrap(err, "decode latest issues")
	}
	return latest, nil
}

func (s *MongoStore) SearchIssues(ctx context.Context, f models.IssueFilter) ([]models.Issue, int64, error) {
	cursor, err := s.issues.Find(ctx, issueFilter(f), issueFindOptions(f))
	if err != nil {
		return nil, 0, errors.Wrap(err, "search issues")
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, 0, errors.Wrap(err, "decode issues")
	}

	total, err := s.issues.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "count issues")
	}
	return issues, total, nil
}

func (s *MongoStore) GetIssue(ctx context.Context, id string) (models.Issue, error) {
	objID, err := objectID(id)
	if err != nil {
		return models.Issue{}, err
	}

	var issue models.Issue
	err = s.issues.FindOne(ctx, bson.M{"_id": objID}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Issue{}, ErrNotFound
	}
	if err != nil {
		return models.Issue{}, errors.Wrap(err, "find issue")
	}
	return issue, nil
}

func (s *MongoStore) InsertIssue(ctx context.Context, issue *models.Issue) (string, error) {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	if issue.UpvotedBy == nil {
		issue.UpvotedBy = []string{}
	}
	res, err := s.issues.InsertOne(ctx, issue)
	if err != nil {
		return "", errors.Wrap(err, "insert issue")
	}
	return insertedHex(res), nil
}

func (s *MongoStore) IssuesByReporter(ctx context.Context, email string) ([]models.Issue, error) {
	cursor, err := s.issues.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, errors.Wrap(err, "find reporter issues")
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, errors.Wrap(err, "decode reporter issues")
	}
	return issues, nil
}

func (s *MongoStore) CountIssuesByReporter(ctx context.Context, email string) (int64, error) {
	n, err := s.issues.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return 0, errors.Wrap(err, "count reporter issues")
	}
	return n, nil
}

func (s *MongoStore) UpdateIssue(ctx context.Context, id string, edit models.IssueEdit, at time.Time) (UpdateResult, error) {
	objID, err := objectID(id)
	if err != nil {
		return UpdateResult{}, err
	}

	update := bson.M{
		"$set": bson.M{
			"title":       edit.Title,
			"description": edit.Description,
			"category":    edit.Category,
			"location":    edit.Location,
			"image":       edit.Image,
			"updatedAt":   at,
		},
	}
	res, err := s.issues.UpdateByID(ctx, objID, update)
	if err != nil {
		return UpdateResult{}, errors.Wrap(err, "update issue")
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *MongoStore) DeleteIssue(ctx context.Context, id string) (int64, error) {
	objID, err := objectID(id)
	if err != nil {
		return 0, err
	}
	res, err := s.issues.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return 0, errors.Wrap(err, "delete issue")
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) AddUpvote(ctx context.Context, id, email string) (bool, error) {
	objID, err := objectID(id)
	if err != nil {
		return false, err
	}
	res, err := s.issues.UpdateOne(ctx, upvoteFilter(objID, email), upvoteUpdate(email))
	if err != nil {
		return false, errors.Wrap(err, "upvote issue")
	}
	return res.ModifiedCount == 1, nil
}

func (s *MongoStore) BoostIssue(ctx context.Context, id string, at time.Time) error {
	objID, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.issues.UpdateByID(ctx, objID, bson.M{
		"$set": bson.M{
			"priority":      models.PriorityHigh,
			"paymentStatus": models.PaymentPaid,
			"premiumSince":  at,
		},
	})
	if err != nil {
		return errors.Wrap(err, "boost issue")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) IssueStats(ctx context.Context) (models.IssueStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.issues.Aggregate(ctx, pipeline)
	if err != nil {
		return models.IssueStats{}, errors.Wrap(err, "aggregate issue stats")
	}
	defer cursor.Close(ctx)

	var groups []struct {
		Status models.IssueStatus `bson:"_id"`
		Count  int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return models.IssueStats{}, errors.Wrap(err, "decode issue stats")
	}

	var stats models.IssueStats
	for _, g := range groups {
		stats.Add(g.Status, g.Count)
	}
	return stats, nil
}

func (s *MongoStore) FindUser(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "find user")
	}
	return user, nil
}

func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) (string, error) {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	res, err := s.users.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicate
	}
	if err != nil {
		return "", errors.Wrap(err, "insert user")
	}
	return insertedHex(res), nil
}

func (s *MongoStore) UpdateProfile(ctx context.Context, email string, p models.ProfileUpdate) (UpdateResult, error) {
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, bson.M{
		"$set": bson.M{
			"name":  p.Name,
			"email": p.Email,
			"photo": p.Photo,
		},
	})
	if mongo.IsDuplicateKeyError(err) {
		return UpdateResult{}, ErrDuplicate
	}
	if err != nil {
		return UpdateResult{}, errors.Wrap(err, "update profile")
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (s *MongoStore) SetPremium(ctx context.Context, email string, at time.Time) error {
	_, err := s.users.UpdateOne(ctx, bson.M{"email": email}, premiumUpdate(at), options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrap(err, "set premium")
	}
	return nil
}

func (s *MongoStore) UserStats(ctx context.Context) (models.UserStats, error) {
	total, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return models.UserStats{}, errors.Wrap(err, "count users")
	}
	premium, err := s.users.CountDocuments(ctx, bson.M{"isPremium": true})
	if err != nil {
		return models.UserStats{}, errors.Wrap(err, "count premium users")
	}
	return models.UserStats{Total: total, Premium: premium}, nil
}

func (s *MongoStore) InsertFeedback(ctx context.Context, fb *models.Feedback) (string, error) {
	if fb.ID.IsZero() {
		fb.ID = primitive.NewObjectID()
	}
	res, err := s.feedback.InsertOne(ctx, fb)
	if err != nil {
		return "", errors.Wrap(err, "insert feedback")
	}
	return insertedHex(res), nil
}

func (s *MongoStore) DeleteFeedback(ctx context.Context, email string) (int64, error) {
	res, err := s.feedback.DeleteMany(ctx, bson.M{"email": email})
	if err != nil {
		return 0, errors.Wrap(err, "delete feedback")
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) InsertPayment(ctx context.Context, p *models.Payment) error {
	if _, err := s.payments.InsertOne(ctx, p); err != nil {
		return errors.Wrap(err, "insert payment")
	}
	return nil
}

func (s *MongoStore) GetPayment(ctx context.Context, id string) (models.Payment, error) {
	var p models.Payment
	err := s.payments.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Payment{}, ErrNotFound
	}
	if err != nil {
		return models.Payment{}, errors.Wrap(err, "find payment")
	}
	return p, nil
}

func (s *MongoStore) MarkPaymentPaid(ctx context.Context, id string, at time.Time) error {
	_, err := s.payments.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": models.PaymentPaid, "paidAt": at},
	})
	if err != nil {
		return errors.Wrap(err, "mark payment paid")
	}
	return nil
}

func (s *MongoStore) ExpiredPayments(ctx context.Context, now time.Time) ([]models.Payment, error) {
	cursor, err := s.payments.Find(ctx, expiredPaymentsFilter(now))
	if err != nil {
		return nil, errors.Wrap(err, "find expired payments")
	}
	var payments []models.Payment
	if err := cursor.All(ctx, &payments); err != nil {
		return nil, errors.Wrap(err, "decode expired payments")
	}
	return payments, nil
}

func (s *MongoStore) DeleteUnpaidPayment(ctx context.Context, id string) (bool, error) {
	res, err := s.payments.DeleteOne(ctx, bson.M{"_id": id, "status": models.PaymentUnpaid})
	if err != nil {
		return false, errors.Wrap(err, "delete payment")
	}
	return res.DeletedCount == 1, nil
}
