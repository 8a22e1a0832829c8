package db

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	IssueCollection    = "issues"
	UserCollection     = "users"
	FeedbackCollection = "feedback"
	PaymentCollection  = "payments"
)

// Client owns the single long-lived connection to the document store.
type Client struct {
	mongo *mongo.Client
	db    *mongo.Database
}

// Connect dials the cluster, pings it and makes sure the indexes exist.
func Connect(ctx context.Context, uri, dbName string) (*Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}

	c := &Client{mongo: client, db: client.Database(dbName)}
	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("Pinged your deployment. Connected to MongoDB!")
	return c, nil
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(UserCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(err, "create users.email index")
	}
	_, err = c.db.Collection(IssueCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return errors.Wrap(err, "create issues.email index")
	}
	return nil
}

// Close disconnects from the cluster.
func (c *Client) Close(ctx context.Context) {
	if c == nil || c.mongo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.mongo.Disconnect(ctx); err != nil {
		log.Println("Failed to disconnect MongoDB:", err)
		return
	}
	log.Println("Disconnected from MongoDB")
}

// OpenCollection returns the named collection of the configured database.
func (c *Client) OpenCollection(name string) *mongo.Collection {
	return c.db.Collection(name)
}

// Store returns the Mongo-backed Store over this connection.
func (c *Client) Store() *MongoStore {
	return &MongoStore{
		issues:   c.OpenCollection(IssueCollection),
		users:    c.OpenCollection(UserCollection),
		feedback: c.OpenCollection(FeedbackCollection),
		payments: c.OpenCollection(PaymentCollection),
	}
}
