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
)

type fileShareRepository struct {
	*BaseRepository
}

// NewFileShareRepository creates a new direct file share repository
func NewFileShareRepository(mongodb *MongoDB) FileShareRepository {
	return &fileShareRepository{
		BaseRepository: NewBaseRepository(mongodb, "file_shares", pkg.ErrShareNotFound),
	}
}

// Create creates a new direct file share
func (r *fileShareRepository) Create(ctx context.Context, share *models.FileShare) error {
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, share)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkg.ErrShareAlreadyExists
		}
		return fmt.Errorf("failed to create file share: %w", err)
	}
	return nil
}

// GetByID retrieves file share by ID
func (r *fileShareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileShare, error) {
	var share models.FileShare
	if err := r.BaseRepository.GetByID(ctx, id, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// GetByFileAndTarget retrieves the share row for a (file, target) pair
func (r *fileShareRepository) GetByFileAndTarget(ctx context.Context, fileID, targetUserID primitive.ObjectID) (*models.FileShare, error) {
	var share models.FileShare
	filter := bson.M{"file_id": fileID, "target_user_id": targetUserID}

	err := r.collection.FindOne(ctx, filter).Decode(&share)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get file share: %w", err)
	}

	return &share, nil
}

// CountByFile counts the direct share rows pointing at a file
func (r *fileShareRepository) CountByFile(ctx context.Context, fileID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"file_id": fileID})
	if err != nil {
		return 0, fmt.Errorf("failed to count file shares: %w", err)
	}
	return count, nil
}

// ListByOwner retrieves the file shares a user has handed out
func (r *fileShareRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error) {
	var shares []*models.FileShare
	filter := bson.M{"owner_id": ownerID}

	total, err := r.BaseRepository.List(ctx, filter, params, &shares)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list owned file shares: %w", err)
	}

	return shares, total, nil
}

// ListByTarget retrieves the file shares addressed to a user
func (r *fileShareRepository) ListByTarget(ctx context.Context, targetUserID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error) {
	var shares []*models.FileShare
	filter := bson.M{"target_user_id": targetUserID}

	total, err := r.BaseRepository.List(ctx, filter, params, &shares)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list received file shares: %w", err)
	}

	return shares, total, nil
}

// Update updates file share data
func (r *fileShareRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return r.BaseRepository.Update(ctx, bson.M{"_id": id}, updates)
}

// Delete permanently deletes file share
func (r *fileShareRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.BaseRepository.Delete(ctx, bson.M{"_id": id})
}

// DeleteByFiles deletes every share row pointing at the given files
func (r *fileShareRepository) DeleteByFiles(ctx context.Context, fileIDs []primitive.ObjectID) (int64, error) {
	if len(fileIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"file_id": bson.M{"$in": fileIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete file shares: %w", err)
	}

	return result.DeletedCount, nil
}

// DeleteByUser deletes every file share the user owns or receives
func (r *fileShareRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{"$or": []bson.M{
		{"owner_id": userID},
		{"target_user_id": userID},
	}}

	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete user file shares: %w", err)
	}

	return result.DeletedCount, nil
}

type publicFileShareRepository struct {
	*BaseRepository
}

// NewPublicFileShareRepository creates a new token share repository
func NewPublicFileShareRepository(mongodb *MongoDB) PublicFileShareRepository {
	return &publicFileShareRepository{
		BaseRepository: NewBaseRepository(mongodb, "public_file_shares", pkg.ErrShareNotFound),
	}
}

// Create creates a new public file share
func (r *publicFileShareRepository) Create(ctx context.Context, share *models.PublicFileShare) error {
	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	share.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, share)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkg.ErrShareAlreadyExists
		}
		return fmt.Errorf("failed to create public file share: %w", err)
	}
	return nil
}

// GetByID retrieves public file share by ID
func (r *publicFileShareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PublicFileShare, error) {
	var share models.PublicFileShare
	if err := r.BaseRepository.GetByID(ctx, id, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// GetByToken retrieves public file share by its token
func (r *publicFileShareRepository) GetByToken(ctx context.Context, token string) (*models.PublicFileShare, error) {
	var share models.PublicFileShare
	err := r.collection.FindOne(ctx, bson.M{"share_token": token}).Decode(&share)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrShareNotFound
		}
		return nil, fmt.Errorf("failed to get share by token: %w", err)
	}
	return &share, nil
}

// ListByOwner retrieves the public shares a user has created
func (r *publicFileShareRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.PublicFileShare, int64, error) {
	var shares []*models.PublicFileShare
	filter := bson.M{"owner_id": ownerID}

	total, err := r.BaseRepository.List(ctx, filter, params, &shares)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list public file shares: %w", err)
	}

	return shares, total, nil
}

// IncrementAccessCount bumps the share's access counter by one
func (r *publicFileShareRepository) IncrementAccessCount(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{"$inc": bson.M{"access_count": 1}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment access count: %w", err)
	}
	if result.MatchedCount == 0 {
		return pkg.ErrShareNotFound
	}

	return nil
}

// Update updates public file share data
func (r *publicFileShareRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return r.BaseRepository.Update(ctx, bson.M{"_id": id}, updates)
}

// DeactivateExpired flips is_active off on every share whose expiry passed
func (r *publicFileShareRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	filter := bson.M{
		"is_active":  true,
		"expires_at": bson.M{"$ne": nil, "$lt": time.Now()},
	}
	update := bson.M{"$set": bson.M{"is_active": false}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired shares: %w", err)
	}

	return result.ModifiedCount, nil
}

// Delete permanently deletes public file share
func (r *publicFileShareRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.BaseRepository.Delete(ctx, bson.M{"_id": id})
}

// DeleteByFiles deletes every public share pointing at the given files
func (r *publicFileShareRepository) DeleteByFiles(ctx context.Context, fileIDs []primitive.ObjectID) (int64, error) {
	if len(fileIDs) == 0 {
		return 0, nil
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"file_id": bson.M{"$in": fileIDs}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete public file shares: %w", err)
	}

	return result.DeletedCount, nil
}

// DeleteByUser deletes every public share the user created
func (r *publicFileShareRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"owner_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user public file shares: %w", err)
	}

	return result.DeletedCount, nil
}
