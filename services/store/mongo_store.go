package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"crypto_stats_backend/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo collection name for observations
const mongoObservationCollection = "observations"

const mongoConnectTimeout = 10 * time.Second

// mongoObservation is the document shape stored in MongoDB
type mongoObservation struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	CoinID           string             `bson:"coin_id"`
	PriceUSD         float64            `bson:"price_usd"`
	MarketCapUSD     float64            `bson:"market_cap_usd"`
	Change24hPercent float64            `bson:"change_24h_percent"`
	ObservedAt       time.Time          `bson:"observed_at"`
	CreatedAt        time.Time          `bson:"created_at"`
}

// MongoStore persists observations in a MongoDB collection. It is selected
// over the gorm store when MONGODB_URI is configured.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures the
// (coin_id, observed_at desc) index the read path depends on.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	collection := client.Database(dbName).Collection(mongoObservationCollection)

	_, err = collection.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "coin_id", Value: 1},
			{Key: "observed_at", Value: -1},
		},
	})
	if err != nil {
		log.Printf("Warning: could not create observation index: %v", err)
	}

	return &MongoStore{client: client, collection: collection}, nil
}

// Append persists one observation as a single document insert.
func (s *MongoStore) Append(ctx context.Context, obs *models.Observation) error {
	if obs.ObservedAt.IsZero() {
		obs.ObservedAt = time.Now().UTC()
	}
	obs.CreatedAt = time.Now().UTC()

	doc := mongoObservation{
		CoinID:           obs.CoinID,
		PriceUSD:         obs.PriceUSD.InexactFloat64(),
		MarketCapUSD:     obs.MarketCapUSD.InexactFloat64(),
		Change24hPercent: obs.Change24hPercent.InexactFloat64(),
		ObservedAt:       obs.ObservedAt,
		CreatedAt:        obs.CreatedAt,
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to persist observation for %s: %w", obs.CoinID, err)
	}
	return nil
}

// Latest returns the most recently observed record for the coin. Ties on
// observed_at go to the later insertion (higher _id).
func (s *MongoStore) Latest(ctx context.Context, coin models.Coin) (*models.Observation, error) {
	opts := options.FindOne().SetSort(bson.D{
		{Key: "observed_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	var doc mongoObservation
	err := s.collection.FindOne(ctx, bson.M{"coin_id": string(coin)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoObservations
		}
		return nil, fmt.Errorf("failed to fetch latest observation for %s: %w", coin, err)
	}

	obs := doc.toModel()
	return &obs, nil
}

// Recent returns up to limit observations for the coin, newest first.
func (s *MongoStore) Recent(ctx context.Context, coin models.Coin, limit int) ([]models.Observation, error) {
	opts := options.Find().
		SetSort(bson.D{
			{Key: "observed_at", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, bson.M{"coin_id": string(coin)}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent observations for %s: %w", coin, err)
	}
	defer cursor.Close(ctx)

	var docs []mongoObservation
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode observations for %s: %w", coin, err)
	}

	observations := make([]models.Observation, 0, len(docs))
	for _, doc := range docs {
		observations = append(observations, doc.toModel())
	}
	return observations, nil
}

// Close disconnects the underlying MongoDB client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d mongoObservation) toModel() models.Observation {
	return models.Observation{
		CoinID:           d.CoinID,
		PriceUSD:         decimal.NewFromFloat(d.PriceUSD),
		MarketCapUSD:     decimal.NewFromFloat(d.MarketCapUSD),
		Change24hPercent: decimal.NewFromFloat(d.Change24hPercent),
		ObservedAt:       d.ObservedAt,
		CreatedAt:        d.CreatedAt,
	}
}
