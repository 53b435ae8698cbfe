package repository

import (
	"context"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transactor runs a function atomically. The MongoDB implementation uses a
// session transaction; the in-memory implementation runs fn under its lock.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines user data access methods
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FolderRepository defines folder data access methods
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error)
	// FindSiblingByName looks up a child of parentID (nil for root) whose
	// name matches case-insensitively. Returns pkg.ErrFolderNotFound when
	// no sibling carries the name.
	FindSiblingByName(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error)
	ListByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID) ([]*models.Folder, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Folder, error)
	ListFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error)
	Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error)
	CountByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID) (int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteMany(ctx context.Context, ids []primitive.ObjectID) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// FileRepository defines file data access methods
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.File, error)
	ListByFolder(ctx context.Context, userID primitive.ObjectID, folderID *primitive.ObjectID) ([]*models.File, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error)
	ListFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error)
	ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.File, error)
	Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error)
	SumSizeByFolders(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (int64, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFolders(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// FolderShareRepository defines folder share data access methods
type FolderShareRepository interface {
	Create(ctx context.Context, share *models.FolderShare) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FolderShare, error)
	GetByFolderAndTarget(ctx context.Context, folderID, targetUserID primitive.ObjectID) (*models.FolderShare, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error)
	ListByTarget(ctx context.Context, targetUserID primitive.ObjectID, statuses []models.ShareStatus, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error)
	ListAcceptedByTarget(ctx context.Context, targetUserID primitive.ObjectID) ([]*models.FolderShare, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFolders(ctx context.Context, folderIDs []primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// FileShareRepository defines direct file share data access methods
type FileShareRepository interface {
	Create(ctx context.Context, share *models.FileShare) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileShare, error)
	GetByFileAndTarget(ctx context.Context, fileID, targetUserID primitive.ObjectID) (*models.FileShare, error)
	CountByFile(ctx context.Context, fileID primitive.ObjectID) (int64, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error)
	ListByTarget(ctx context.Context, targetUserID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFiles(ctx context.Context, fileIDs []primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// PublicFileShareRepository defines token share data access methods
type PublicFileShareRepository interface {
	Create(ctx context.Context, share *models.PublicFileShare) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.PublicFileShare, error)
	GetByToken(ctx context.Context, token string) (*models.PublicFileShare, error)
	ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.PublicFileShare, int64, error)
	IncrementAccessCount(ctx context.Context, id primitive.ObjectID) error
	Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	DeactivateExpired(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByFiles(ctx context.Context, fileIDs []primitive.ObjectID) (int64, error)
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// Repository aggregates all repositories
type Repository struct {
	User            UserRepository
	Folder          FolderRepository
	File            FileRepository
	FolderShare     FolderShareRepository
	FileShare       FileShareRepository
	PublicFileShare PublicFileShareRepository
	Tx              Transactor
}
