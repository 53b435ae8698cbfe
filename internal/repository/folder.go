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

type folderRepository struct {
	*BaseRepository
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(mongodb *MongoDB) FolderRepository {
	return &folderRepository{
		BaseRepository: NewBaseRepository(mongodb, "folders", pkg.ErrFolderNotFound),
	}
}

// parentFilter matches a folder's parent slot: an explicit ID or root (nil)
func parentFilter(parentID *primitive.ObjectID) interface{} {
	if parentID == nil {
		return nil
	}
	return *parentID
}

// Create creates a new folder
func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt

	_, err := r.collection.InsertOne(ctx, folder)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkg.ErrFolderAlreadyExists
		}
		return fmt.Errorf("failed to create folder: %w", err)
	}
	return nil
}

// GetByID retrieves folder by ID
func (r *folderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	var folder models.Folder
	if err := r.BaseRepository.GetByID(ctx, id, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

// FindSiblingByName looks up a child of parentID by case-insensitive name
func (r *folderRepository) FindSiblingByName(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	var folder models.Folder
	filter := bson.M{
		"user_id":   userID,
		"parent_id": parentFilter(parentID),
		"name":      name,
	}

	opts := options.FindOne().SetCollation(nameCollation)
	err := r.collection.FindOne(ctx, filter, opts).Decode(&folder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, pkg.ErrFolderNotFound
		}
		return nil, fmt.Errorf("failed to find sibling by name: %w", err)
	}

	return &folder, nil
}

// ListByParent retrieves the direct children of a folder, name-sorted
func (r *folderRepository) ListByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID) ([]*models.Folder, error) {
	var folders []*models.Folder
	filter := bson.M{"user_id": userID, "parent_id": parentFilter(parentID)}

	opts := options.Find().SetSort(bson.M{"name": 1}).SetCollation(nameCollation)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders by parent: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}

	return folders, nil
}

// ListByUser retrieves every folder the user owns, path-sorted so parents
// come before their descendants.
func (r *folderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Folder, error) {
	var folders []*models.Folder
	filter := bson.M{"user_id": userID}

	opts := options.Find().SetSort(bson.M{"path": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list user folders: %w", err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, &folders); err != nil {
		return nil, fmt.Errorf("failed to decode folders: %w", err)
	}

	return folders, nil
}

// ListFavorites retrieves the user's favorite folders with pagination
func (r *folderRepository) ListFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error) {
	var folders []*models.Folder
	filter := bson.M{"user_id": userID, "is_favorite": true}

	total, err := r.BaseRepository.List(ctx, filter, params, &folders)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list favorite folders: %w", err)
	}

	return folders, total, nil
}

// Search retrieves the user's folders matching the search term
func (r *folderRepository) Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error) {
	var folders []*models.Folder
	filter := bson.M{"user_id": userID}

	if params.Search != "" {
		searchFilter := r.BuildSearchFilter(params.Search, []string{"name", "description"})
		filter = bson.M{"$and": []bson.M{filter, searchFilter}}
	}

	total, err := r.BaseRepository.List(ctx, filter, params, &folders)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search folders: %w", err)
	}

	return folders, total, nil
}

// CountByParent counts the direct children of a folder
func (r *folderRepository) CountByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID) (int64, error) {
	filter := bson.M{"user_id": userID, "parent_id": parentFilter(parentID)}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count folders by parent: %w", err)
	}

	return count, nil
}

// Update updates folder data
func (r *folderRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return r.BaseRepository.Update(ctx, bson.M{"_id": id}, updates)
}

// Delete permanently deletes folder
func (r *folderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.BaseRepository.Delete(ctx, bson.M{"_id": id})
}

// DeleteMany deletes a batch of folders by ID
func (r *folderRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to delete folders: %w", err)
	}

	return nil
}

// DeleteByUser deletes every folder the user owns
func (r *folderRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete user folders: %w", err)
	}

	return result.DeletedCount, nil
}
