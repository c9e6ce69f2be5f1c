package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matsen/talkportal/internal/talk"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// caseInsensitive is a strength-2 collation: case is ignored, diacritics are not.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// MongoStore keeps talks as documents in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and verifies the server answers within timeout.
func OpenMongo(ctx context.Context, uri, database, collection string, timeout time.Duration) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}

	// Connect is lazy; ping to surface an unreachable server now
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging %s: %w", uri, err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// FindAll returns every document in natural order.
func (s *MongoStore) FindAll(ctx context.Context) ([]talk.Talk, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing talks: %w", err)
	}

	var talks []talk.Talk
	if err := cursor.All(ctx, &talks); err != nil {
		return nil, fmt.Errorf("decoding talks: %w", err)
	}

	for i := range talks {
		talks[i] = talks[i].Normalize()
	}
	if talks == nil {
		talks = []talk.Talk{}
	}
	return talks, nil
}

// FindByTitle returns the first document with exactly this title.
func (s *MongoStore) FindByTitle(ctx context.Context, title string) (*talk.Talk, error) {
	var t talk.Talk
	err := s.coll.FindOne(ctx, bson.D{{Key: "title", Value: title}}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding talk %q: %w", title, err)
	}

	t = t.Normalize()
	return &t, nil
}

// TitleExists reports whether a document has this title, ignoring case.
func (s *MongoStore) TitleExists(ctx context.Context, title string) (bool, error) {
	opts := options.Count().SetCollation(caseInsensitive).SetLimit(1)
	n, err := s.coll.CountDocuments(ctx, bson.D{{Key: "title", Value: title}}, opts)
	if err != nil {
		return false, fmt.Errorf("checking title %q: %w", title, err)
	}
	return n > 0, nil
}

// Insert adds a document; MongoDB assigns its _id.
func (s *MongoStore) Insert(ctx context.Context, t talk.Talk) error {
	if _, err := s.coll.InsertOne(ctx, t.Normalize()); err != nil {
		return fmt.Errorf("inserting talk %q: %w", t.Title, err)
	}
	return nil
}

// UpdateFields sets the patched fields on the first document with this title.
func (s *MongoStore) UpdateFields(ctx context.Context, title string, p talk.Patch) error {
	set := bson.D{{Key: "date", Value: p.Date}}
	if p.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *p.Description})
	}
	if p.PostedBy != nil {
		set = append(set, bson.E{Key: "postedBy", Value: *p.PostedBy})
	}
	if p.Tags != nil {
		set = append(set, bson.E{Key: "tags", Value: p.Tags})
	}

	filter := bson.D{{Key: "title", Value: title}}
	if _, err := s.coll.UpdateOne(ctx, filter, bson.D{{Key: "$set", Value: set}}); err != nil {
		return fmt.Errorf("updating talk %q: %w", title, err)
	}
	return nil
}

// DeleteByTitle removes the first document with exactly this title.
func (s *MongoStore) DeleteByTitle(ctx context.Context, title string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "title", Value: title}})
	if err != nil {
		return false, fmt.Errorf("deleting talk %q: %w", title, err)
	}
	return res.DeletedCount > 0, nil
}
