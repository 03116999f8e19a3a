package digest

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchiveCollection is the MongoDB collection digests are stored in.
const ArchiveCollection = "digests"

// documentStore is the subset of *mongo.Collection the archive needs.
type documentStore interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// MongoArchive keeps a copy of every delivered digest.
type MongoArchive struct {
	collection documentStore
}

// NewMongoArchive creates a MongoArchive on the digests collection of db.
func NewMongoArchive(db *mongo.Database) *MongoArchive {
	return &MongoArchive{collection: db.Collection(ArchiveCollection)}
}

// EnsureIndexes creates the (user_id, generated_at) index used by ListForUser.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(ArchiveCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "generated_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create digest index: %w", err)
	}
	return nil
}

// Notify stores the digest.
func (a *MongoArchive) Notify(ctx context.Context, d Digest) error {
	if _, err := a.collection.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("archive digest for user %d: %w", d.UserID, err)
	}
	return nil
}

// ListForUser returns the user's archived digests, newest first.
func (a *MongoArchive) ListForUser(ctx context.Context, userID uint, limit int64) ([]Digest, error) {
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "generated_at", Value: -1}})
	cursor, err := a.collection.Find(ctx, bson.M{"user_id": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var digests []Digest
	if err = cursor.All(ctx, &digests); err != nil {
		return nil, err
	}
	return digests, nil
}
