package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB client wrapper
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
	dbName   string
}

// Connect establishes connection to MongoDB
func Connect(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoDB := &MongoDB{
		client:   client,
		database: client.Database(dbName),
		dbName:   dbName,
	}

	if err := mongoDB.createIndexes(); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Database returns the database instance
func (m *MongoDB) Database() *mongo.Database {
	return m.database
}

// Collection returns a collection instance
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.database.Collection(name)
}

// WithTransaction runs fn inside a MongoDB transaction. The session context
// passed to fn must be used for every repository call that should be part of
// the transaction; any error from fn aborts it.
func (m *MongoDB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// nameCollation makes sibling-name comparisons case-insensitive while the
// stored names keep their original casing.
var nameCollation = &options.Collation{Locale: "en", Strength: 2}

// createIndexes creates all necessary indexes
func (m *MongoDB) createIndexes() error {
	ctx := context.Background()

	// User indexes
	userIndexes := []mongo.IndexModel{
		{Keys: bson.M{"email": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"created_at": -1}},
	}
	if _, err := m.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	// Folder indexes. The compound unique index enforces sibling name
	// uniqueness per owner and parent.
	folderIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "parent_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(nameCollation),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "parent_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "path", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_favorite", Value: 1}}},
	}
	if _, err := m.Collection("folders").Indexes().CreateMany(ctx, folderIndexes); err != nil {
		return fmt.Errorf("failed to create folder indexes: %w", err)
	}

	// File indexes
	fileIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "folder_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "name", Value: 1}}},
		{Keys: bson.M{"storage_key": 1}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_favorite", Value: 1}}},
		{Keys: bson.M{"created_at": -1}},
	}
	if _, err := m.Collection("files").Indexes().CreateMany(ctx, fileIndexes); err != nil {
		return fmt.Errorf("failed to create file indexes: %w", err)
	}

	// Folder share indexes. One live share row per (folder, target) pair.
	folderShareIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "folder_id", Value: 1}, {Key: "target_user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "target_user_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.M{"owner_id": 1}},
	}
	if _, err := m.Collection("folder_shares").Indexes().CreateMany(ctx, folderShareIndexes); err != nil {
		return fmt.Errorf("failed to create folder share indexes: %w", err)
	}

	// File share indexes
	fileShareIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "file_id", Value: 1}, {Key: "target_user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.M{"target_user_id": 1}},
		{Keys: bson.M{"owner_id": 1}},
	}
	if _, err := m.Collection("file_shares").Indexes().CreateMany(ctx, fileShareIndexes); err != nil {
		return fmt.Errorf("failed to create file share indexes: %w", err)
	}

	// Public file share indexes
	publicShareIndexes := []mongo.IndexModel{
		{Keys: bson.M{"share_token": 1}, Options: options.Index().SetUnique(true)},
		{Keys: bson.M{"file_id": 1}},
		{Keys: bson.M{"owner_id": 1}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "expires_at", Value: 1}}},
	}
	if _, err := m.Collection("public_file_shares").Indexes().CreateMany(ctx, publicShareIndexes); err != nil {
		return fmt.Errorf("failed to create public file share indexes: %w", err)
	}

	return nil
}

// BaseRepository provides common repository functionality. notFound is the
// sentinel returned when a lookup matches nothing, so each repository reports
// its own entity.
type BaseRepository struct {
	collection *mongo.Collection
	mongodb    *MongoDB
	notFound   *pkg.AppError
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(mongodb *MongoDB, collectionName string, notFound *pkg.AppError) *BaseRepository {
	return &BaseRepository{
		collection: mongodb.Collection(collectionName),
		mongodb:    mongodb,
		notFound:   notFound,
	}
}

// GetByID retrieves a document by ID
func (r *BaseRepository) GetByID(ctx context.Context, id primitive.ObjectID, result interface{}) error {
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return r.notFound
		}
		return fmt.Errorf("failed to get document by ID: %w", err)
	}
	return nil
}

// Update applies a $set update to a single document
func (r *BaseRepository) Update(ctx context.Context, filter bson.M, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	update := bson.M{"$set": updates}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	if result.MatchedCount == 0 {
		return r.notFound
	}

	return nil
}

// Delete deletes a single document
func (r *BaseRepository) Delete(ctx context.Context, filter bson.M) error {
	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	if result.DeletedCount == 0 {
		return r.notFound
	}

	return nil
}

// List retrieves documents with pagination
func (r *BaseRepository) List(ctx context.Context, filter bson.M, params *pkg.PaginationParams, results interface{}) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	opts := options.Find()
	opts.SetSkip(int64(params.GetOffset()))
	opts.SetLimit(int64(params.Limit))
	opts.SetSort(bson.M{params.Sort: params.GetSortDirection()})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		return 0, fmt.Errorf("failed to decode documents: %w", err)
	}

	return total, nil
}

// BuildSearchFilter builds a case-insensitive regex filter over fields
func (r *BaseRepository) BuildSearchFilter(query string, fields []string) bson.M {
	if query == "" {
		return bson.M{}
	}

	var orConditions []bson.M
	for _, field := range fields {
		orConditions = append(orConditions, bson.M{
			field: bson.M{"$regex": query, "$options": "i"},
		})
	}

	return bson.M{"$or": orConditions}
}

// NewRepositories creates all repository instances
func NewRepositories(mongodb *MongoDB) *Repository {
	return &Repository{
		User:            NewUserRepository(mongodb),
		Folder:          NewFolderRepository(mongodb),
		File:            NewFileRepository(mongodb),
		FolderShare:     NewFolderShareRepository(mongodb),
		FileShare:       NewFileShareRepository(mongodb),
		PublicFileShare: NewPublicFileShareRepository(mongodb),
		Tx:              mongodb,
	}
}
