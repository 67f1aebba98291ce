package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sukhantharot/dividend-stocks/internal/dividend"
	"github.com/sukhantharot/dividend-stocks/logger"
)

// MongoStore implements DividendStore on a MongoDB collection with a unique
// compound index on the natural key
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the natural-key index
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	logger.Info("Connected to MongoDB %s/%s", database, collection)
	return s, nil
}

// ensureIndexes creates the unique natural-key index and the upcoming-events
// index. The unique index is what makes insert-if-absent race-safe under
// concurrent crawls of the same symbol.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "symbol", Value: 1},
				{Key: "fiscal_year", Value: 1},
				{Key: "period", Value: 1},
				{Key: "amount", Value: 1},
				{Key: "ex_date", Value: 1},
				{Key: "event_type", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("natural_key"),
		},
		{
			Keys:    bson.D{{Key: "next_event_date", Value: 1}},
			Options: options.Index().SetName("next_event_date"),
		},
	})
	return err
}

// keyFilter builds the natural-key lookup filter. A zero ExDate in the key
// stands for a null stored date.
func keyFilter(key dividend.Key) bson.M {
	var exDate interface{}
	if !key.ExDate.IsZero() {
		exDate = key.ExDate
	}
	return bson.M{
		"symbol":      key.Symbol,
		"fiscal_year": key.FiscalYear,
		"period":      key.Period,
		"amount":      key.Amount,
		"ex_date":     exDate,
		"event_type":  key.EventType,
	}
}

// FindByKey looks up an event by natural key
func (s *MongoStore) FindByKey(ctx context.Context, key dividend.Key) (*dividend.Event, error) {
	var event dividend.Event
	err := s.collection.FindOne(ctx, keyFilter(key)).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// InsertMany inserts a batch of events. Duplicate-key failures from a
// concurrent crawl of the same symbol are swallowed; the records exist.
func (s *MongoStore) InsertMany(ctx context.Context, events []dividend.Event) error {
	docs := make([]interface{}, len(events))
	for i := range events {
		docs[i] = events[i]
	}

	_, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}

// UpdateNextEventDate refreshes the derived field of an existing record
func (s *MongoStore) UpdateNextEventDate(ctx context.Context, key dividend.Key, next *time.Time) error {
	update := bson.M{"$set": bson.M{"next_event_date": next}}
	_, err := s.collection.UpdateOne(ctx, keyFilter(key), update)
	return err
}

// BySymbol returns all stored events for a symbol
func (s *MongoStore) BySymbol(ctx context.Context, symbol string) ([]dividend.Event, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"symbol": symbol})
	if err != nil {
		return nil, err
	}
	var events []dividend.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// LatestScrapedAt returns the most recent scrape instant for a symbol
func (s *MongoStore) LatestScrapedAt(ctx context.Context, symbol string) (time.Time, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "scraped_at", Value: -1}})
	var event dividend.Event
	err := s.collection.FindOne(ctx, bson.M{"symbol": symbol}, opts).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return event.ScrapedAt, nil
}

// ListUpcoming returns events with next_event_date >= referenceNow, ascending
func (s *MongoStore) ListUpcoming(ctx context.Context, referenceNow time.Time) ([]dividend.Event, error) {
	filter := bson.M{"next_event_date": bson.M{"$gte": referenceNow}}
	opts := options.Find().SetSort(bson.D{{Key: "next_event_date", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var events []dividend.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// EventsInYear returns a symbol's events whose ex-date or pay-date falls in year
func (s *MongoStore) EventsInYear(ctx context.Context, symbol string, year int) ([]dividend.Event, error) {
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	inYear := bson.M{"$gte": start, "$lt": end}

	filter := bson.M{
		"symbol": symbol,
		"$or": []bson.M{
			{"ex_date": inYear},
			{"pay_date": inYear},
		},
	}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var events []dividend.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Close disconnects from MongoDB
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
