package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fileRepository struct {
	*BaseRepository
}

// NewFileRepository creates a new file repository
func NewFileRepository(mongodb *MongoDB) FileRepository {
	return &fileRepository{
		BaseRepository: NewBaseRepository(mongodb, "files", pkg.ErrFileNotFound),
	}
}

// Create creates a new file record
func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt

	_, err := r.collection.InsertOne(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

// GetByID retrieves file by ID
func (r *fileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	var file models.File
	if err := r.BaseRepository.GetByID(ctx, id, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// ListByFolder retrieves the files directly inside a folder (nil for root)
func (r *fileRepository) ListByFolder(ctx context.Context, userID primitive.ObjectID, folderID *primitive.ObjectID) ([]*models.File, error) {
	var files []*models.File
	filter := bson.M{"user_id": userID, "folder_id": parentFilter(folderID)}

	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list files by folder: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode files: %w", err)
	}

	return files, nil
}

// ListByUser retrieves the user's files with pagination
func (r *fileRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	var files []*models.File
	filter := bson.M{"user_id": userID}

	total, err := r.BaseRepository.List(ctx, filter, params, &files)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list user files: %w", err)
	}

	return files, total, nil
}

// ListFavorites retrieves the user's favorite files with pagination
func (r *fileRepository) ListFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	var files []*models.File
	filter := bson.M{"user_id": userID, "is_favorite": true}

	total, err := r.BaseRepository.List(ctx, filter, params, &files)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list favorite files: %w", err)
	}

	return files, total, nil
}

// ListRecent retrieves the user's most recently touched files
func (r *fileRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.File, error) {
	var files []*models.File
	filter := bson.M{"user_id": userID}

	opts := options.Find().
		SetSort(bson.M{"updated_at": -1}).
		SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent files: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode recent files: %w", err)
	}

	return files, nil
}

// Search retrieves the user's files matching the search term
func (r *fileRepository) Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	var files []*models.File
	filter := bson.M{"user_id": userID}

	if params.Search != "" {
		searchFilter := r.BuildSearchFilter(params.Search, []string{"name"})
		filter = bson.M{"$and": []bson.M{filter, searchFilter}}
	}

	total, err := r.BaseRepository.List(ctx, filter, params, &files)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search files: %w", err)
	}

	return files, total, nil
}

// SumSizeByFolders aggregates file count and byte total across a set of
// folders. A nil entry cannot appear here; root files are summed separately
// by the service when needed.
func (r *fileRepository) SumSizeByFolders(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (int64, int64, error) {
	if len(folderIDs) == 0 {
		return 0, 0, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"user_id":   userID,
			"folder_id": bson.M{"$in": folderIDs},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
			"size":  bson.M{"$sum": "$size"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate file sizes: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Count int64 `bson:"count"`
		Size  int64 `bson:"size"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, fmt.Errorf("failed to decode file size aggregate: %w", err)
	}

	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].Count, results[0].Size, nil
}

// Update updates file data
func (r *fileRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return r.BaseRepository.Update(ctx, bson.M{"_id": id}, updates)
}

// Delete permanently deletes file record
func (r *fileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.BaseRepository.Delete(ctx, bson.M{"_id": id})
}

// DeleteByFolders deletes every file inside the given folders
func (r *fileRepository) DeleteByFolders(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	filter := bson.M{"user_id": userID, "folder_id": bson.M{"$in": folderIDs}}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete files by folders: %w", err)
	}

	return result.DeletedCount, nil
}

// DeleteByUser deletes every file the user owns
func (r *fileRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user files: %w", err)
	}

	return result.DeletedCount, nil
}
