package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxFolderDepth caps how deep a folder tree can nest. Create and move reject
// mutations that would push any folder past it.
const MaxFolderDepth = 64

// FolderService orchestrates all folder tree mutations. It owns path
// maintenance and sibling name uniqueness; structural changes run inside a
// Tree Store transaction while blob operations stay outside as compensated
// best-effort steps.
type FolderService struct {
	repos   *repository.Repository
	storage *StorageService
	logger  *pkg.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(repos *repository.Repository, storage *StorageService, logger *pkg.Logger) *FolderService {
	return &FolderService{
		repos:   repos,
		storage: storage,
		logger:  logger.WithPrefix("folders"),
	}
}

// CreateFolderRequest carries folder creation input
type CreateFolderRequest struct {
	Name        string              `json:"name" validate:"required,min=1,max=255"`
	ParentID    *primitive.ObjectID `json:"parentId,omitempty"`
	Color       string              `json:"color" validate:"color"`
	Description string              `json:"description" validate:"max=500"`
}

// UpdateFolderRequest carries folder metadata updates
type UpdateFolderRequest struct {
	Color       *string `json:"color,omitempty" validate:"omitempty,color"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// BulkResult reports how a best-effort batch went
type BulkResult struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
}

// Create creates a folder under parentID (nil for root)
func (s *FolderService) Create(ctx context.Context, userID primitive.ObjectID, req *CreateFolderRequest) (*models.Folder, error) {
	if errs := pkg.DefaultValidator.Validate(req); len(errs) > 0 {
		return nil, pkg.ErrValidationFailed.WithDetails(map[string]interface{}{"errors": errs})
	}

	name := pkg.Files.SanitizeFilename(req.Name)
	if name == "" {
		return nil, pkg.ErrInvalidInput.WithMessage("Folder name cannot be empty")
	}

	var parentPath string
	if req.ParentID != nil {
		parent, err := s.ownedFolder(ctx, *req.ParentID, userID)
		if err != nil {
			return nil, err
		}
		if folderDepth(parent.Path) >= MaxFolderDepth {
			return nil, pkg.ErrFolderTooDeep
		}
		parentPath = parent.Path
	}

	if err := s.assertUniqueName(ctx, userID, req.ParentID, name, nil); err != nil {
		return nil, err
	}

	folder := &models.Folder{
		Name:        name,
		Path:        parentPath + "/" + name,
		ParentID:    req.ParentID,
		UserID:      userID,
		Color:       req.Color,
		Description: req.Description,
	}

	if err := s.repos.Folder.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created", map[string]interface{}{
		"folderId": folder.ID.Hex(),
		"userId":   userID.Hex(),
		"path":     folder.Path,
	})
	return folder, nil
}

// Rename changes a folder's name and rewrites the paths of its whole subtree
func (s *FolderService) Rename(ctx context.Context, folderID, userID primitive.ObjectID, newName string) (*models.Folder, error) {
	name := pkg.Files.SanitizeFilename(newName)
	if name == "" {
		return nil, pkg.ErrInvalidInput.WithMessage("Folder name cannot be empty")
	}

	folder, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	if folder.Name == name {
		return folder, nil
	}

	if err := s.assertUniqueName(ctx, userID, folder.ParentID, name, &folderID); err != nil {
		return nil, err
	}

	newPath := parentPathOf(folder.Path, folder.Name) + "/" + name
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.repos.Folder.Update(ctx, folderID, map[string]interface{}{
			"name": name,
			"path": newPath,
		}); err != nil {
			return err
		}
		return s.propagatePaths(ctx, userID, folderID, newPath)
	})
	if err != nil {
		return nil, err
	}

	folder.Name = name
	folder.Path = newPath
	s.logger.Info("folder renamed", map[string]interface{}{
		"folderId": folderID.Hex(),
		"path":     newPath,
	})
	return folder, nil
}

// Update changes folder metadata that has no structural effect
func (s *FolderService) Update(ctx context.Context, folderID, userID primitive.ObjectID, req *UpdateFolderRequest) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Color != nil {
		updates["color"] = *req.Color
		folder.Color = *req.Color
	}
	if req.Description != nil {
		updates["description"] = *req.Description
		folder.Description = *req.Description
	}
	if len(updates) == 0 {
		return folder, nil
	}

	if err := s.repos.Folder.Update(ctx, folderID, updates); err != nil {
		return nil, err
	}
	return folder, nil
}

// ToggleFavorite flips the folder's favorite flag
func (s *FolderService) ToggleFavorite(ctx context.Context, folderID, userID primitive.ObjectID) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	folder.IsFavorite = !folder.IsFavorite
	if err := s.repos.Folder.Update(ctx, folderID, map[string]interface{}{
		"is_favorite": folder.IsFavorite,
	}); err != nil {
		return nil, err
	}
	return folder, nil
}

// Move reparents a folder. Rejected when the destination is the folder itself
// or any of its descendants, when the destination already holds a sibling
// with the same name, or when the move would nest past MaxFolderDepth.
func (s *FolderService) Move(ctx context.Context, folderID, userID primitive.ObjectID, newParentID *primitive.ObjectID) (*models.Folder, error) {
	folder, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	newParentPath, err := s.validateMove(ctx, folder, userID, newParentID)
	if err != nil {
		return nil, err
	}

	if err := s.assertUniqueName(ctx, userID, newParentID, folder.Name, &folderID); err != nil {
		return nil, err
	}

	newPath := newParentPath + "/" + folder.Name
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		updates := map[string]interface{}{"path": newPath}
		if newParentID == nil {
			updates["parent_id"] = nil
		} else {
			updates["parent_id"] = *newParentID
		}
		if err := s.repos.Folder.Update(ctx, folderID, updates); err != nil {
			return err
		}
		return s.propagatePaths(ctx, userID, folderID, newPath)
	})
	if err != nil {
		return nil, err
	}

	folder.ParentID = newParentID
	folder.Path = newPath
	s.logger.Info("folder moved", map[string]interface{}{
		"folderId": folderID.Hex(),
		"path":     newPath,
	})
	return folder, nil
}

// validateMove runs the cycle and depth checks for reparenting folder under
// newParentID and returns the destination parent path.
func (s *FolderService) validateMove(ctx context.Context, folder *models.Folder, userID primitive.ObjectID, newParentID *primitive.ObjectID) (string, error) {
	if newParentID == nil {
		return "", nil
	}

	if *newParentID == folder.ID {
		return "", pkg.ErrInvalidFolderMove
	}

	newParent, err := s.ownedFolder(ctx, *newParentID, userID)
	if err != nil {
		return "", err
	}

	// Ancestor walk from the destination up to root. Hitting the moved
	// folder means the destination lives inside its own subtree.
	current := newParent
	for current.ParentID != nil {
		if *current.ParentID == folder.ID {
			return "", pkg.ErrInvalidFolderMove
		}
		current, err = s.repos.Folder.GetByID(ctx, *current.ParentID)
		if err != nil {
			return "", err
		}
	}

	subtreeHeight, err := s.subtreeHeight(ctx, userID, folder)
	if err != nil {
		return "", err
	}
	if folderDepth(newParent.Path)+subtreeHeight > MaxFolderDepth {
		return "", pkg.ErrFolderTooDeep
	}

	return newParent.Path, nil
}

// Copy deep-clones a folder subtree under newParentID. The folder structure
// is created atomically; file contents are then copied one by one, and a
// file whose bytes cannot be copied is dropped from the clone with its
// just-created record removed.
func (s *FolderService) Copy(ctx context.Context, folderID, userID primitive.ObjectID, newParentID *primitive.ObjectID, nameHint string) (*models.Folder, error) {
	source, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	var destPath string
	if newParentID != nil {
		dest, err := s.ownedFolder(ctx, *newParentID, userID)
		if err != nil {
			return nil, err
		}
		destPath = dest.Path

		subtreeHeight, err := s.subtreeHeight(ctx, userID, source)
		if err != nil {
			return nil, err
		}
		if folderDepth(dest.Path)+subtreeHeight > MaxFolderDepth {
			return nil, pkg.ErrFolderTooDeep
		}
	}

	if nameHint == "" {
		nameHint = source.Name
	}
	topName, err := s.resolveCopyName(ctx, userID, newParentID, nameHint)
	if err != nil {
		return nil, err
	}

	subtree, err := s.collectSubtree(ctx, userID, source)
	if err != nil {
		return nil, err
	}

	// Structure phase: clone every folder record under fresh ids.
	idMap := make(map[primitive.ObjectID]primitive.ObjectID, len(subtree))
	pathMap := make(map[primitive.ObjectID]string, len(subtree))
	var root *models.Folder

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		for _, src := range subtree {
			clone := &models.Folder{
				ID:          primitive.NewObjectID(),
				Name:        src.Name,
				UserID:      userID,
				Color:       src.Color,
				Description: src.Description,
			}

			if src.ID == source.ID {
				clone.Name = topName
				clone.ParentID = newParentID
				clone.Path = destPath + "/" + topName
				root = clone
			} else {
				newParent := idMap[*src.ParentID]
				clone.ParentID = &newParent
				clone.Path = pathMap[*src.ParentID] + "/" + src.Name
			}

			if err := s.repos.Folder.Create(ctx, clone); err != nil {
				return err
			}
			idMap[src.ID] = clone.ID
			pathMap[src.ID] = clone.Path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Content phase: per-file best effort with compensation.
	copied, skipped := 0, 0
	for _, src := range subtree {
		files, err := s.repos.File.ListByFolder(ctx, userID, &src.ID)
		if err != nil {
			s.logger.Error("failed to list files for copy", map[string]interface{}{
				"folderId": src.ID.Hex(),
				"error":    err.Error(),
			})
			continue
		}

		newFolderID := idMap[src.ID]
		for _, f := range files {
			if err := s.copyFile(ctx, f, newFolderID); err != nil {
				skipped++
				s.logger.Error("failed to copy file, skipping", map[string]interface{}{
					"fileId": f.ID.Hex(),
					"error":  err.Error(),
				})
				continue
			}
			copied++
		}
	}

	s.logger.Info("folder copied", map[string]interface{}{
		"sourceId":     folderID.Hex(),
		"folderId":     root.ID.Hex(),
		"filesCopied":  copied,
		"filesSkipped": skipped,
	})
	return root, nil
}

// copyFile clones one file record and its bytes into newFolderID. The record
// is created first; if the blob copy fails the record is deleted again so the
// catalog never points at bytes that were not written.
func (s *FolderService) copyFile(ctx context.Context, src *models.File, newFolderID primitive.ObjectID) error {
	newKey := NewStorageKey(src.UserID, src.Name)
	clone := &models.File{
		Name:        src.Name,
		StorageKey:  newKey,
		FolderID:    &newFolderID,
		UserID:      src.UserID,
		Size:        src.Size,
		ContentType: src.ContentType,
		Extension:   src.Extension,
	}

	if err := s.repos.File.Create(ctx, clone); err != nil {
		return err
	}

	if err := s.storage.Copy(ctx, src.StorageKey, newKey); err != nil {
		if delErr := s.repos.File.Delete(ctx, clone.ID); delErr != nil {
			s.logger.Error("failed to compensate file record after blob copy failure", map[string]interface{}{
				"fileId": clone.ID.Hex(),
				"error":  delErr.Error(),
			})
		}
		return err
	}

	return nil
}

// resolveCopyName finds a collision-free top-level name for a copy, suffixing
// " - Copy" then " - Copy (2)", " - Copy (3)", and so on.
func (s *FolderService) resolveCopyName(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, hint string) (string, error) {
	free := func(name string) (bool, error) {
		_, err := s.repos.Folder.FindSiblingByName(ctx, userID, parentID, name)
		if err != nil {
			if errors.Is(err, pkg.ErrFolderNotFound) {
				return true, nil
			}
			return false, err
		}
		return false, nil
	}

	if ok, err := free(hint); err != nil {
		return "", err
	} else if ok {
		return hint, nil
	}

	candidate := hint + " - Copy"
	for n := 2; ; n++ {
		if ok, err := free(candidate); err != nil {
			return "", err
		} else if ok {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s - Copy (%d)", hint, n)
	}
}

// Delete removes a folder subtree: share rows first, then file records with
// best-effort blob deletion, then the folder rows bottom-up.
func (s *FolderService) Delete(ctx context.Context, folderID, userID primitive.ObjectID) error {
	folder, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return err
	}

	subtree, err := s.collectSubtree(ctx, userID, folder)
	if err != nil {
		return err
	}

	folderIDs := make([]primitive.ObjectID, 0, len(subtree))
	for _, f := range subtree {
		folderIDs = append(folderIDs, f.ID)
	}

	var files []*models.File
	for _, id := range folderIDs {
		fs, err := s.repos.File.ListByFolder(ctx, userID, &id)
		if err != nil {
			return err
		}
		files = append(files, fs...)
	}

	fileIDs := make([]primitive.ObjectID, 0, len(files))
	for _, f := range files {
		fileIDs = append(fileIDs, f.ID)
	}

	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repos.FolderShare.DeleteByFolders(ctx, folderIDs); err != nil {
			return err
		}
		if _, err := s.repos.FileShare.DeleteByFiles(ctx, fileIDs); err != nil {
			return err
		}
		if _, err := s.repos.PublicFileShare.DeleteByFiles(ctx, fileIDs); err != nil {
			return err
		}
		if _, err := s.repos.File.DeleteByFolders(ctx, userID, folderIDs); err != nil {
			return err
		}
		return s.repos.Folder.DeleteMany(ctx, folderIDs)
	})
	if err != nil {
		return err
	}

	// Blob removal stays outside the transaction; a stray object is
	// preferable to a half-deleted catalog.
	for _, f := range files {
		if err := s.storage.Delete(ctx, f.StorageKey); err != nil {
			s.logger.Warn("failed to delete blob", map[string]interface{}{
				"storageKey": f.StorageKey,
				"error":      err.Error(),
			})
		}
	}

	s.logger.Info("folder deleted", map[string]interface{}{
		"folderId": folderID.Hex(),
		"folders":  len(folderIDs),
		"files":    len(fileIDs),
	})
	return nil
}

// BulkMove moves a batch of folders under one target. Validation is
// all-or-nothing; execution is best-effort per item.
func (s *FolderService) BulkMove(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID, newParentID *primitive.ObjectID) (*BulkResult, error) {
	if err := s.validateBatch(ctx, userID, folderIDs, func(folder *models.Folder) error {
		_, err := s.validateMove(ctx, folder, userID, newParentID)
		if err != nil {
			return err
		}
		return s.assertUniqueName(ctx, userID, newParentID, folder.Name, &folder.ID)
	}); err != nil {
		return nil, err
	}

	result := &BulkResult{Requested: len(folderIDs)}
	for _, id := range folderIDs {
		if _, err := s.Move(ctx, id, userID, newParentID); err != nil {
			s.logger.Error("bulk move item failed", map[string]interface{}{
				"folderId": id.Hex(),
				"error":    err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// BulkCopy copies a batch of folders under one target
func (s *FolderService) BulkCopy(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID, newParentID *primitive.ObjectID) (*BulkResult, error) {
	if err := s.validateBatch(ctx, userID, folderIDs, func(folder *models.Folder) error {
		if newParentID == nil {
			return nil
		}
		if *newParentID == folder.ID {
			return pkg.ErrInvalidFolderMove
		}
		_, err := s.ownedFolder(ctx, *newParentID, userID)
		return err
	}); err != nil {
		return nil, err
	}

	result := &BulkResult{Requested: len(folderIDs)}
	for _, id := range folderIDs {
		if _, err := s.Copy(ctx, id, userID, newParentID, ""); err != nil {
			s.logger.Error("bulk copy item failed", map[string]interface{}{
				"folderId": id.Hex(),
				"error":    err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// BulkDelete deletes a batch of folders and reports how many actually went
func (s *FolderService) BulkDelete(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (*BulkResult, error) {
	if err := s.validateBatch(ctx, userID, folderIDs, nil); err != nil {
		return nil, err
	}

	result := &BulkResult{Requested: len(folderIDs)}
	for _, id := range folderIDs {
		if err := s.Delete(ctx, id, userID); err != nil {
			// A folder already removed as a descendant of an earlier
			// batch item is counted as deleted, not failed.
			if errors.Is(err, pkg.ErrFolderNotFound) {
				result.Succeeded++
				continue
			}
			s.logger.Error("bulk delete item failed", map[string]interface{}{
				"folderId": id.Hex(),
				"error":    err.Error(),
			})
			continue
		}
		result.Succeeded++
	}
	return result, nil
}

// validateBatch loads and checks every folder before any mutation happens
func (s *FolderService) validateBatch(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID, check func(*models.Folder) error) error {
	if len(folderIDs) == 0 {
		return pkg.ErrInvalidInput.WithMessage("No folders given")
	}

	for _, id := range folderIDs {
		folder, err := s.ownedFolder(ctx, id, userID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(folder); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteAllForUser removes every folder, file, blob and share row belonging
// to a user. Called by account deletion.
func (s *FolderService) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) error {
	var files []*models.File
	for page := 1; ; page++ {
		params := allPages()
		params.Page = page
		batch, total, err := s.repos.File.ListByUser(ctx, userID, params)
		if err != nil {
			return err
		}
		files = append(files, batch...)
		if int64(len(files)) >= total || len(batch) == 0 {
			break
		}
	}

	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repos.FolderShare.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := s.repos.FileShare.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := s.repos.PublicFileShare.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if _, err := s.repos.File.DeleteByUser(ctx, userID); err != nil {
			return err
		}
		_, err := s.repos.Folder.DeleteByUser(ctx, userID)
		return err
	})
	if err != nil {
		return err
	}

	for _, f := range files {
		if err := s.storage.Delete(ctx, f.StorageKey); err != nil {
			s.logger.Warn("failed to delete blob", map[string]interface{}{
				"storageKey": f.StorageKey,
				"error":      err.Error(),
			})
		}
	}

	s.logger.Info("user tree deleted", map[string]interface{}{
		"userId": userID.Hex(),
		"files":  len(files),
	})
	return nil
}

// GetRootFolders lists the user's top-level folders
func (s *FolderService) GetRootFolders(ctx context.Context, userID primitive.ObjectID) ([]*models.Folder, error) {
	return s.repos.Folder.ListByParent(ctx, userID, nil)
}

// GetSubfolders lists the direct children of a folder
func (s *FolderService) GetSubfolders(ctx context.Context, folderID, userID primitive.ObjectID) ([]*models.Folder, error) {
	if _, err := s.ownedFolder(ctx, folderID, userID); err != nil {
		return nil, err
	}
	return s.repos.Folder.ListByParent(ctx, userID, &folderID)
}

// GetFavorites lists the user's favorite folders
func (s *FolderService) GetFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error) {
	return s.repos.Folder.ListFavorites(ctx, userID, params)
}

// Search finds the user's folders by name or description
func (s *FolderService) Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error) {
	return s.repos.Folder.Search(ctx, userID, params)
}

// GetDetails returns a folder with derived statistics and its breadcrumb.
// Counters cover the whole subtree and are recomputed from current rows.
func (s *FolderService) GetDetails(ctx context.Context, folderID, userID primitive.ObjectID) (*models.FolderDetails, error) {
	folder, err := s.ownedFolder(ctx, folderID, userID)
	if err != nil {
		return nil, err
	}

	subtree, err := s.collectSubtree(ctx, userID, folder)
	if err != nil {
		return nil, err
	}

	folderIDs := make([]primitive.ObjectID, 0, len(subtree))
	for _, f := range subtree {
		folderIDs = append(folderIDs, f.ID)
	}

	fileCount, totalSize, err := s.repos.File.SumSizeByFolders(ctx, userID, folderIDs)
	if err != nil {
		return nil, err
	}

	breadcrumb, err := s.breadcrumb(ctx, folder)
	if err != nil {
		return nil, err
	}

	return &models.FolderDetails{
		Folder:         folder,
		FileCount:      fileCount,
		SubfolderCount: int64(len(subtree) - 1),
		TotalSize:      totalSize,
		FormattedSize:  pkg.Files.FormatSize(totalSize),
		Breadcrumb:     breadcrumb,
	}, nil
}

// breadcrumb walks the ancestor chain from root down to the folder itself
func (s *FolderService) breadcrumb(ctx context.Context, folder *models.Folder) ([]models.BreadcrumbItem, error) {
	var chain []models.BreadcrumbItem
	current := folder
	for {
		chain = append(chain, models.BreadcrumbItem{ID: current.ID, Name: current.Name})
		if current.ParentID == nil {
			break
		}
		parent, err := s.repos.Folder.GetByID(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
		current = parent
	}

	// reverse to root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// ownedFolder loads a folder and verifies the caller owns it. A folder owned
// by someone else surfaces as NotFound so ids leak nothing.
func (s *FolderService) ownedFolder(ctx context.Context, folderID, userID primitive.ObjectID) (*models.Folder, error) {
	folder, err := s.repos.Folder.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != userID {
		return nil, pkg.ErrFolderNotFound
	}
	return folder, nil
}

// assertUniqueName fails with Conflict when another sibling (excluding
// excludeID) already carries the name, case-insensitively.
func (s *FolderService) assertUniqueName(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, name string, excludeID *primitive.ObjectID) error {
	sibling, err := s.repos.Folder.FindSiblingByName(ctx, userID, parentID, name)
	if err != nil {
		if errors.Is(err, pkg.ErrFolderNotFound) {
			return nil
		}
		return err
	}
	if excludeID != nil && sibling.ID == *excludeID {
		return nil
	}
	return pkg.ErrFolderAlreadyExists
}

// propagatePaths rewrites the stored path of every descendant of folderID
// after its own path changed to newPath. Iterative worklist; each folder is
// visited exactly once and only reads its already-updated parent's path.
func (s *FolderService) propagatePaths(ctx context.Context, userID, folderID primitive.ObjectID, newPath string) error {
	type item struct {
		id   primitive.ObjectID
		path string
	}

	worklist := []item{{id: folderID, path: newPath}}
	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]

		children, err := s.repos.Folder.ListByParent(ctx, userID, &current.id)
		if err != nil {
			return err
		}
		for _, child := range children {
			childPath := current.path + "/" + child.Name
			if err := s.repos.Folder.Update(ctx, child.ID, map[string]interface{}{
				"path": childPath,
			}); err != nil {
				return err
			}
			worklist = append(worklist, item{id: child.ID, path: childPath})
		}
	}
	return nil
}

// collectSubtree returns the folder and every descendant, parents before
// children. Iterative worklist, no recursion.
func (s *FolderService) collectSubtree(ctx context.Context, userID primitive.ObjectID, root *models.Folder) ([]*models.Folder, error) {
	subtree := []*models.Folder{root}
	worklist := []primitive.ObjectID{root.ID}

	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]

		children, err := s.repos.Folder.ListByParent(ctx, userID, &id)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			subtree = append(subtree, child)
			worklist = append(worklist, child.ID)
		}
	}
	return subtree, nil
}

// subtreeHeight reports how many levels the folder's subtree spans, the
// folder itself included.
func (s *FolderService) subtreeHeight(ctx context.Context, userID primitive.ObjectID, folder *models.Folder) (int, error) {
	subtree, err := s.collectSubtree(ctx, userID, folder)
	if err != nil {
		return 0, err
	}

	base := folderDepth(folder.Path)
	height := 1
	for _, f := range subtree {
		if h := folderDepth(f.Path) - base + 1; h > height {
			height = h
		}
	}
	return height, nil
}

/// folderDepth counts path segments: "/Docs/2024" has depth 2
func folderDepth(path string) int {
	return strings.Count(path, "/")
}

// parentPathOf strips the folder's own name segment from its path
func parentPathOf(path, name string) string {
	return strings.TrimSuffix(path, "/"+name)
}

// NewStorageKey builds an owner-namespaced blob key. The key keeps the file
// extension so stored objects stay recognizable, everything else is random.
func NewStorageKey(userID primitive.ObjectID, fileName string) string {
	return userID.Hex() + "/" + uuid.NewString() + pkg.Files.Extension(fileName)
}

// allPages returns pagination params wide enough for internal full scans
func allPages() *pkg.PaginationParams {
	p := pkg.DefaultPaginationParams()
	p.Limit = pkg.MaxLimit
	return p
}
