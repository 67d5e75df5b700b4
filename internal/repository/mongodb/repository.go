package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/megg/internal/domain/models"
)

const (
	reportsCollection = "inventory_reports"
	viewsCollection   = "filter_states"
)

// Repository defines the interface for report and view state storage.
type Repository interface {
	SaveInventoryReport(ctx context.Context, report models.InventoryReport) error
	LoadViewState(ctx context.Context, accountID string) (models.ViewState, bool, error)
	SaveViewState(ctx context.Context, accountID string, state models.ViewState) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

// viewStateDocument wraps a view state with its owning account.
type viewStateDocument struct {
	AccountID string           `bson:"_id"`
	State     models.ViewState `bson:"state"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
	}, nil
}

// SaveInventoryReport stores a digest snapshot.
func (r *MongoDBRepository) SaveInventoryReport(ctx context.Context, report models.InventoryReport) error {
	collection := r.client.Database(r.dbName).Collection(reportsCollection)
	if _, err := collection.InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert inventory report: %w", err)
	}
	return nil
}

// LoadViewState returns the stored view state of an account. The boolean is
// false when the account has none yet.
func (r *MongoDBRepository) LoadViewState(ctx context.Context, accountID string) (models.ViewState, bool, error) {
	collection := r.client.Database(r.dbName).Collection(viewsCollection)

	var doc viewStateDocument
	err := collection.FindOne(ctx, bson.M{"_id": accountID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ViewState{}, false, nil
	}
	if err != nil {
		return models.ViewState{}, false, fmt.Errorf("failed to load view state for %s: %w", accountID, err)
	}
	return doc.State, true, nil
}

// SaveViewState upserts the view state of an account.
func (r *MongoDBRepository) SaveViewState(ctx context.Context, accountID string, state models.ViewState) error {
	collection := r.client.Database(r.dbName).Collection(viewsCollection)

	doc := viewStateDocument{AccountID: accountID, State: state, UpdatedAt: time.Now().UTC()}
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": accountID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save view state for %s: %w", accountID, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
