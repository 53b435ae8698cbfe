package services

import (
	"context"
	"io"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileService handles file catalog operations and the dual write between the
// catalog and the blob store.
type FileService struct {
	repos   *repository.Repository
	storage *StorageService
	logger  *pkg.Logger
}

// NewFileService creates a new file service
func NewFileService(repos *repository.Repository, storage *StorageService, logger *pkg.Logger) *FileService {
	return &FileService{
		repos:   repos,
		storage: storage,
		logger:  logger.WithPrefix("files"),
	}
}

// UploadRequest carries file upload input
type UploadRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=255"`
	FolderID    *primitive.ObjectID `json:"folderId,omitempty"`
	Size        int64               `json:"size" validate:"min=0"`
	ContentType string              `json:"contentType"`
	Body        io.Reader           `json:"-"`
}

// Upload stores the bytes first, then the catalog record. If the record
// write fails the just-uploaded blob is removed again.
func (s *FileService) Upload(ctx context.Context, userID primitive.ObjectID, req *UploadRequest) (*models.File, error) {
	name := pkg.Files.SanitizeFilename(req.Name)
	if name == "" {
		return nil, pkg.ErrInvalidInput.WithMessage("File name cannot be empty")
	}

	if req.FolderID != nil {
		folder, err := s.repos.Folder.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, err
		}
		if folder.UserID != userID {
			return nil, pkg.ErrFolderNotFound
		}
	}

	key := NewStorageKey(userID, name)
	result, err := s.storage.Upload(ctx, key, req.Body, req.Size, req.ContentType)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Name:        name,
		StorageKey:  key,
		FolderID:    req.FolderID,
		UserID:      userID,
		Size:        result.Size,
		ContentType: req.ContentType,
		Extension:   pkg.Files.Extension(name),
	}

	if err := s.repos.File.Create(ctx, file); err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("failed to remove blob after record write failure", map[string]interface{}{
				"storageKey": key,
				"error":      delErr.Error(),
			})
		}
		return nil, err
	}

	s.logger.Info("file uploaded", map[string]interface{}{
		"fileId": file.ID.Hex(),
		"userId": userID.Hex(),
		"size":   file.Size,
	})
	return file, nil
}

// Download returns the file record and a reader over its bytes
func (s *FileService) Download(ctx context.Context, fileID, userID primitive.ObjectID) (*models.File, io.ReadCloser, error) {
	file, err := s.ownedFile(ctx, fileID, userID)
	if err != nil {
		return nil, nil, err
	}

	reader, err := s.storage.Download(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return file, reader, nil
}

// Get returns a file record owned by the caller
func (s *FileService) Get(ctx context.Context, fileID, userID primitive.ObjectID) (*models.File, error) {
	return s.ownedFile(ctx, fileID, userID)
}

// Rename changes a file's display name
func (s *FileService) Rename(ctx context.Context, fileID, userID primitive.ObjectID, newName string) (*models.File, error) {
	name := pkg.Files.SanitizeFilename(newName)
	if name == "" {
		return nil, pkg.ErrInvalidInput.WithMessage("File name cannot be empty")
	}

	file, err := s.ownedFile(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	file.Name = name
	file.Extension = pkg.Files.Extension(name)
	if err := s.repos.File.Update(ctx, fileID, map[string]interface{}{
		"name":      name,
		"extension": file.Extension,
	}); err != nil {
		return nil, err
	}
	return file, nil
}

// Move places a file into another folder (nil for root)
func (s *FileService) Move(ctx context.Context, fileID, userID primitive.ObjectID, folderID *primitive.ObjectID) (*models.File, error) {
	file, err := s.ownedFile(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	if folderID != nil {
		folder, err := s.repos.Folder.GetByID(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.UserID != userID {
			return nil, pkg.ErrFolderNotFound
		}
	}

	updates := map[string]interface{}{}
	if folderID == nil {
		updates["folder_id"] = nil
	} else {
		updates["folder_id"] = *folderID
	}
	if err := s.repos.File.Update(ctx, fileID, updates); err != nil {
		return nil, err
	}

	file.FolderID = folderID
	return file, nil
}

// ToggleFavorite flips the file's favorite flag
func (s *FileService) ToggleFavorite(ctx context.Context, fileID, userID primitive.ObjectID) (*models.File, error) {
	file, err := s.ownedFile(ctx, fileID, userID)
	if err != nil {
		return nil, err
	}

	file.IsFavorite = !file.IsFavorite
	if err := s.repos.File.Update(ctx, fileID, map[string]interface{}{
		"is_favorite": file.IsFavorite,
	}); err != nil {
		return nil, err
	}
	return file, nil
}

// Delete removes the file's share rows and record, then its bytes
// best-effort.
func (s *FileService) Delete(ctx context.Context, fileID, userID primitive.ObjectID) error {
	file, err := s.ownedFile(ctx, fileID, userID)
	if err != nil {
		return err
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repos.FileShare.DeleteByFiles(ctx, []primitive.ObjectID{fileID}); err != nil {
			return err
		}
		if _, err := s.repos.PublicFileShare.DeleteByFiles(ctx, []primitive.ObjectID{fileID}); err != nil {
			return err
		}
		return s.repos.File.Delete(ctx, fileID)
	})
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Warn("failed to delete blob", map[string]interface{}{
			"storageKey": file.StorageKey,
			"error":      err.Error(),
		})
	}

	s.logger.Info("file deleted", map[string]interface{}{
		"fileId": fileID.Hex(),
	})
	return nil
}

// ListByFolder lists the files directly inside a folder (nil for root)
func (s *FileService) ListByFolder(ctx context.Context, userID primitive.ObjectID, folderID *primitive.ObjectID) ([]*models.File, error) {
	if folderID != nil {
		folder, err := s.repos.Folder.GetByID(ctx, *folderID)
		if err != nil {
			return nil, err
		}
		if folder.UserID != userID {
			return nil, pkg.ErrFolderNotFound
		}
	}
	return s.repos.File.ListByFolder(ctx, userID, folderID)
}

// List lists the user's files with pagination
func (s *FileService) List(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	return s.repos.File.ListByUser(ctx, userID, params)
}

// GetFavorites lists the user's favorite files
func (s *FileService) GetFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	return s.repos.File.ListFavorites(ctx, userID, params)
}

// Recent lists the user's most recently touched files. The limit is capped
// so the endpoint cannot be used as an unbounded export.
func (s *FileService) Recent(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.File, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repos.File.ListRecent(ctx, userID, limit)
}

// Search finds the user's files by name
func (s *FileService) Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	return s.repos.File.Search(ctx, userID, params)
}

// ownedFile loads a file and verifies the caller owns it
func (s *FileService) ownedFile(ctx context.Context, fileID, userID primitive.ObjectID) (*models.File, error) {
	file, err := s.repos.File.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if file.UserID != userID {
		return nil, pkg.ErrFileNotFound
	}
	return file, nil
}
