package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	inserted  []interface{}
	insertErr error
	filter    interface{}
	found     []interface{}
}

func (f *fakeCollection) InsertOne(_ context.Context, document interface{}, _ ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.inserted = append(f.inserted, document)
	return &mongo.InsertOneResult{InsertedID: len(f.inserted)}, nil
}

func (f *fakeCollection) Find(_ context.Context, filter interface{}, _ ...*options.FindOptions) (*mongo.Cursor, error) {
	f.filter = filter
	return mongo.NewCursorFromDocuments(f.found, nil, nil)
}

func TestMongoArchiveNotify(t *testing.T) {
	coll := &fakeCollection{}
	archive := &MongoArchive{collection: coll}
	d := Digest{UserID: 3, Username: "bob", PostTitles: []string{"hello"}}

	require.NoError(t, archive.Notify(context.Background(), d))
	require.Len(t, coll.inserted, 1)
	assert.Equal(t, d, coll.inserted[0])

	coll.insertErr = errors.New("not primary")
	err := archive.Notify(context.Background(), d)
	assert.ErrorContains(t, err, "archive digest for user 3")
	assert.ErrorContains(t, err, "not primary")
}

func TestMongoArchiveListForUser(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	coll := &fakeCollection{found: []interface{}{
		Digest{UserID: 3, Username: "bob", Email: "bob@x.com", PostTitles: []string{"b", "a"}, GeneratedAt: at},
	}}
	archive := &MongoArchive{collection: coll}

	digests, err := archive.ListForUser(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, bson.M{"user_id": uint(3)}, coll.filter)
	require.Len(t, digests, 1)
	assert.Equal(t, "bob", digests[0].Username)
	assert.Equal(t, []string{"b", "a"}, digests[0].PostTitles)
	assert.True(t, at.Equal(digests[0].GeneratedAt))
}
