package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/transportease/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehiclesCollectionName is the mirror collection inside the configured database.
const VehiclesCollectionName = "vehicles"

var (
	ErrNilCollection   = errors.New("mongo collection is nil")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

// ConnectMongo connects to MongoDB at uri and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// MongoCollection stores the catalog mirror in MongoDB.
type MongoCollection struct {
	Collection *mongo.Collection
}

// NewMongoCollection returns the vehicles mirror of database dbName.
func NewMongoCollection(client *mongo.Client, dbName string) *MongoCollection {
	return &MongoCollection{Collection: client.Database(dbName).Collection(VehiclesCollectionName)}
}

// MirrorVehicle is the stored form of a vehicle. Position is the index the
// API returned it at so the mirror reads back in the same order.
type MirrorVehicle struct {
	Position       int `bson:"position"`
	models.Vehicle `bson:",inline"`
}

// EnsureIndexes creates the indexes used by mirror reads.
func (c *MongoCollection) EnsureIndexes(ctx context.Context) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	_, err := c.Collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "position", Value: 1}}},
		{Keys: bson.D{{Key: "city", Value: 1}, {Key: "type", Value: 1}}},
	})
	return err
}

// mirrorDocuments converts an API listing into mirror documents keyed by id.
// Records without an id are dropped, and a repeated id keeps its first
// occurrence. The second result counts what was dropped.
func mirrorDocuments(vehicles []models.Vehicle) ([]MirrorVehicle, int) {
	seen := make(map[string]bool, len(vehicles))
	docs := make([]MirrorVehicle, 0, len(vehicles))
	for i, v := range vehicles {
		if strings.TrimSpace(v.ID) == "" || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		docs = append(docs, MirrorVehicle{Position: i, Vehicle: v})
	}
	return docs, len(vehicles) - len(docs)
}

// ReplaceVehicles upserts every vehicle and removes those no longer listed.
func (c *MongoCollection) ReplaceVehicles(ctx context.Context, vehicles []models.Vehicle) error {
	if c.Collection == nil {
		return ErrNilCollection
	}

	docs, dropped := mirrorDocuments(vehicles)
	if dropped > 0 {
		log.WithFields(log.Fields{
			"received": len(vehicles),
			"dropped":  dropped,
		}).Warn("Skipping vehicles with empty or duplicate ids in mirror")
	}

	ids := make(bson.A, 0, len(docs))
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": doc.ID}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	if len(writes) > 0 {
		if _, err := c.Collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("failed to write vehicles: %w", err)
		}
	}
	if _, err := c.Collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": ids}}); err != nil {
		return fmt.Errorf("failed to prune vehicles: %w", err)
	}
	return nil
}

// mongoVehicleCursor wraps a MongoDB cursor for vehicle queries.
type mongoVehicleCursor struct {
	cursor *mongo.Cursor
}

// All retrieves all results from the cursor.
func (m *mongoVehicleCursor) All(ctx context.Context, out interface{}) error {
	return m.cursor.All(ctx, out)
}

// Close closes the cursor.
func (m *mongoVehicleCursor) Close(ctx context.Context) error {
	return m.cursor.Close(ctx)
}

// FindVehicles queries the mirror. Without options results come back in
// API order.
func (c *MongoCollection) FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	if len(opts) > 0 && opts[0] != nil {
		findOptions = opts[0]
	}

	cursor, err := c.Collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	return &mongoVehicleCursor{cursor: cursor}, nil
}

// FindVehicleByID finds a mirrored vehicle by its API id.
func (c *MongoCollection) FindVehicleByID(ctx context.Context, id string) (*models.Vehicle, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}

	var doc MirrorVehicle
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &doc.Vehicle, nil
}

// ReadAll returns every mirrored vehicle in API order.
func ReadAll(ctx context.Context, coll VehicleCollection) ([]models.Vehicle, error) {
	cursor, err := coll.FindVehicles(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []MirrorVehicle
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Vehicle, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Vehicle)
	}
	return out, nil
}
