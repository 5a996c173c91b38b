package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/idilsaglam/items/internal/model"
	"github.com/idilsaglam/items/internal/store"
)

const (
	itemsCollection    = "items"
	countersCollection = "counters"
	itemsCounterID     = "items"
)

// Store keeps items in MongoDB. Ids come from a counter document so they stay
// small integers like the SQL backends.
type Store struct {
	client   *mongo.Client
	items    *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to uri and pings the server.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongostore: empty uri")
	}
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	s := &Store{
		client:   client,
		items:    db.Collection(itemsCollection),
		counters: db.Collection(countersCollection),
		now:      time.Now,
	}
	if _, err := s.items.Indexes().CreateOne(cctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.items.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer cursor.Close(ctx)

	var recs []store.Record
	if err := cursor.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return store.Items(recs), nil
}

func (s *Store) Create(ctx context.Context, in model.NewItem) (model.Item, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return model.Item{}, err
	}
	rec := store.Record{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		// BSON dates carry milliseconds.
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.items.InsertOne(ctx, rec); err != nil {
		return model.Item{}, fmt.Errorf("insert item: %w", err)
	}
	return rec.Item(), nil
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.items.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) nextID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": itemsCounterID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return doc.Seq, nil
}
