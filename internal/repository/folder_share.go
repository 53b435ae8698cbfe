package repository

import (
	"context"
	"fmt"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type folderShareRepository struct {
	*BaseRepository
}

// NewFolderShareRepository creates a new folder share repository
func NewFolderShareRepository(mongodb *MongoDB) FolderShareRepository {
	return &folderShareRepository{
		BaseRepository: NewBaseRepository(mongodb, "folder_shares", pkg.ErrShareNotFound),
	}
}

// Create creates a new folder share
func (r *folderShareRepository) Create(ctx context.Context, share *models.FolderShare) error {
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, share)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkg.ErrShareAlreadyExists
		}
		return fmt.Errorf("failed to create folder share: %w", err)
	}
	return nil
}

// GetByID retrieves folder share by ID
func (r *folderShareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FolderShare, error) {
	var share models.FolderShare
	if err := r.BaseRepository.GetByID(ctx, id, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// GetByFolderAndTarget retrieves the share row for a (folder, target) pair
func (r *folderShareRepository) GetByFolderAndTarget(ctx context.Context, folderID, targetUserID primitive.ObjectID) (*models.FolderShare, error) {
	var share models.FolderShare
	filter := bson.M{"folder_id": folderID, "target_user_id": targetUserID}

	err := r.collection.FindOne(ctx, filter).Decode(&share)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get folder share: %w", err)
	}

	return &share, nil
}

// ListByOwner retrieves the shares a user has handed out
func (r *folderShareRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error) {
	var shares []*models.FolderShare
	filter := bson.M{"owner_id": ownerID}

	total, err := r.BaseRepository.List(ctx, filter, params, &shares)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list owned folder shares: %w", err)
	}

	return shares, total, nil
}

// ListByTarget retrieves the shares addressed to a user, optionally filtered
// by status.
func (r *folderShareRepository) ListByTarget(ctx context.Context, targetUserID primitive.ObjectID, statuses []models.ShareStatus, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error) {
	var shares []*models.FolderShare
	filter := bson.M{"target_user_id": targetUserID}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	total, err := r.BaseRepository.List(ctx, filter, params, &shares)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list received folder shares: %w", err)
	}

	return shares, total, nil
}

// ListAcceptedByTarget retrieves every accepted share addressed to a user
func (r *folderShareRepository) ListAcceptedByTarget(ctx context.Context, targetUserID primitive.ObjectID) ([]*models.FolderShare, error) {
	var shares []*models.FolderShare
	filter := bson.M{"target_user_id": targetUserID, "status": models.ShareStatusAccepted}

	opts := options.Find().SetSort(bson.M{"shared_at": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list accepted folder shares: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &shares); err != nil {
		return nil, fmt.Errorf("failed to decode folder shares: %w", err)
	}

	return shares, nil
}

// Update updates folder share data
func (r *folderShareRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return r.BaseRepository.Update(ctx, bson.M{"_id": id}, updates)
}

// Delete permanently deletes folder share
func (r *folderShareRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.BaseRepository.Delete(ctx, bson.M{"_id": id})
}

// DeleteByFolders deletes every share row pointing at the given folders
func (r *folderShareRepository) DeleteByFolders(ctx context.Context, folderIDs []primitive.ObjectID) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"folder_id": bson.M{"$in": folderIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete folder shares: %w", err)
	}

	return result.DeletedCount, nil
}

// DeleteByUser deletes every share the user owns or receives
func (r *folderShareRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": []bson.M{
		{"owner_id": userID},
		{"target_user_id": userID},
	}}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user folder shares: %w", err)
	}

	return result.DeletedCount, nil
}
