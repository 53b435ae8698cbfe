package memory

import (
	"context"
	"sort"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type folderShareRepository struct {
	store *Store
}

func (r *folderShareRepository) Create(ctx context.Context, share *models.FolderShare) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.folderShares {
		if s.FolderID == share.FolderID && s.TargetUserID == share.TargetUserID {
			return pkg.ErrShareAlreadyExists
		}
	}

	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}

	clone := *share
	r.store.folderShares[share.ID] = &clone
	return nil
}

func (r *folderShareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FolderShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.folderShares[id]
	if !ok {
		return nil, pkg.ErrShareNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *folderShareRepository) GetByFolderAndTarget(ctx context.Context, folderID, targetUserID primitive.ObjectID) (*models.FolderShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.folderShares {
		if s.FolderID == folderID && s.TargetUserID == targetUserID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pkg.ErrShareNotFound
}

func (r *folderShareRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.FolderShare
	for _, s := range r.store.folderShares {
		if s.OwnerID == ownerID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sortFolderShares(out)
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *folderShareRepository) ListByTarget(ctx context.Context, targetUserID primitive.ObjectID, statuses []models.ShareStatus, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	statusSet := make(map[models.ShareStatus]struct{}, len(statuses))
	for _, st := range statuses {
		statusSet[st] = struct{}{}
	}

	var out []*models.FolderShare
	for _, s := range r.store.folderShares {
		if s.TargetUserID != targetUserID {
			continue
		}
		if len(statusSet) > 0 {
			if _, ok := statusSet[s.Status]; !ok {
				continue
			}
		}
		clone := *s
		out = append(out, &clone)
	}
	sortFolderShares(out)
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *folderShareRepository) ListAcceptedByTarget(ctx context.Context, targetUserID primitive.ObjectID) ([]*models.FolderShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.FolderShare
	for _, s := range r.store.folderShares {
		if s.TargetUserID == targetUserID && s.Status == models.ShareStatusAccepted {
			clone := *s
			out = append(out, &clone)
		}
	}
	sortFolderShares(out)
	return out, nil
}

func (r *folderShareRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.folderShares[id]
	if !ok {
		return pkg.ErrShareNotFound
	}

	for key, value := range updates {
		switch key {
		case "status":
			s.Status = value.(models.ShareStatus)
		case "permission":
			s.Permission = value.(models.PermissionType)
		case "responded_at":
			t := value.(time.Time)
			s.RespondedAt = &t
		case "expires_at":
			if value == nil {
				s.ExpiresAt = nil
			} else {
				t := value.(time.Time)
				s.ExpiresAt = &t
			}
		}
	}
	return nil
}

func (r *folderShareRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.folderShares[id]; !ok {
		return pkg.ErrShareNotFound
	}
	delete(r.store.folderShares, id)
	return nil
}

func (r *folderShareRepository) DeleteByFolders(ctx context.Context, folderIDs []primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idSet := make(map[primitive.ObjectID]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		idSet[id] = struct{}{}
	}

	var deleted int64
	for id, s := range r.store.folderShares {
		if _, ok := idSet[s.FolderID]; ok {
			delete(r.store.folderShares, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *folderShareRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, s := range r.store.folderShares {
		if s.OwnerID == userID || s.TargetUserID == userID {
			delete(r.store.folderShares, id)
			deleted++
		}
	}
	return deleted, nil
}

func sortFolderShares(shares []*models.FolderShare) {
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].SharedAt.After(shares[j].SharedAt)
	})
}

type fileShareRepository struct {
	store *Store
}

func (r *fileShareRepository) Create(ctx context.Context, share *models.FileShare) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.fileShares {
		if s.FileID == share.FileID && s.TargetUserID == share.TargetUserID {
			return pkg.ErrShareAlreadyExists
		}
	}

	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}

	clone := *share
	r.store.fileShares[share.ID] = &clone
	return nil
}

func (r *fileShareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FileShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.fileShares[id]
	if !ok {
		return nil, pkg.ErrShareNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *fileShareRepository) GetByFileAndTarget(ctx context.Context, fileID, targetUserID primitive.ObjectID) (*models.FileShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.fileShares {
		if s.FileID == fileID && s.TargetUserID == targetUserID {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pkg.ErrShareNotFound
}

func (r *fileShareRepository) CountByFile(ctx context.Context, fileID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, s := range r.store.fileShares {
		if s.FileID == fileID {
			count++
		}
	}
	return count, nil
}

func (r *fileShareRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.FileShare
	for _, s := range r.store.fileShares {
		if s.OwnerID == ownerID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sortFileShares(out)
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *fileShareRepository) ListByTarget(ctx context.Context, targetUserID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.FileShare
	for _, s := range r.store.fileShares {
		if s.TargetUserID == targetUserID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sortFileShares(out)
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *fileShareRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.fileShares[id]
	if !ok {
		return pkg.ErrShareNotFound
	}

	for key, value := range updates {
		switch key {
		case "accepted":
			b := value.(bool)
			s.Accepted = &b
		case "responded_at":
			t := value.(time.Time)
			s.RespondedAt = &t
		}
	}
	return nil
}

func (r *fileShareRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.fileShares[id]; !ok {
		return pkg.ErrShareNotFound
	}
	delete(r.store.fileShares, id)
	return nil
}

func (r *fileShareRepository) DeleteByFiles(ctx context.Context, fileIDs []primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idSet := make(map[primitive.ObjectID]struct{}, len(fileIDs))
	for _, id := range fileIDs {
		idSet[id] = struct{}{}
	}

	var deleted int64
	for id, s := range r.store.fileShares {
		if _, ok := idSet[s.FileID]; ok {
			delete(r.store.fileShares, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fileShareRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, s := range r.store.fileShares {
		if s.OwnerID == userID || s.TargetUserID == userID {
			delete(r.store.fileShares, id)
			deleted++
		}
	}
	return deleted, nil
}

func sortFileShares(shares []*models.FileShare) {
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].SharedAt.After(shares[j].SharedAt)
	})
}

type publicFileShareRepository struct {
	store *Store
}

func (r *publicFileShareRepository) Create(ctx context.Context, share *models.PublicFileShare) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.publicShares {
		if s.ShareToken == share.ShareToken {
			return pkg.ErrShareAlreadyExists
		}
	}

	if share.ID.IsZero() {
		share.ID = primitive.NewObjectID()
	}
	share.CreatedAt = time.Now()

	clone := *share
	r.store.publicShares[share.ID] = &clone
	return nil
}

func (r *publicFileShareRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.PublicFileShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.publicShares[id]
	if !ok {
		return nil, pkg.ErrShareNotFound
	}
	clone := *s
	return &clone, nil
}

func (r *publicFileShareRepository) GetByToken(ctx context.Context, token string) (*models.PublicFileShare, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, s := range r.store.publicShares {
		if s.ShareToken == token {
			clone := *s
			return &clone, nil
		}
	}
	return nil, pkg.ErrShareNotFound
}

func (r *publicFileShareRepository) ListByOwner(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.PublicFileShare, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.PublicFileShare
	for _, s := range r.store.publicShares {
		if s.OwnerID == ownerID {
			clone := *s
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *publicFileShareRepository) IncrementAccessCount(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.publicShares[id]
	if !ok {
		return pkg.ErrShareNotFound
	}
	s.AccessCount++
	return nil
}

func (r *publicFileShareRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	s, ok := r.store.publicShares[id]
	if !ok {
		return pkg.ErrShareNotFound
	}

	for key, value := range updates {
		switch key {
		case "is_active":
			s.IsActive = value.(bool)
		case "allow_download":
			s.AllowDownload = value.(bool)
		case "expires_at":
			if value == nil {
				s.ExpiresAt = nil
			} else {
				t := value.(time.Time)
				s.ExpiresAt = &t
			}
		}
	}
	return nil
}

func (r *publicFileShareRepository) DeactivateExpired(ctx context.Context) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	var modified int64
	for _, s := range r.store.publicShares {
		if s.IsActive && s.ExpiresAt != nil && now.After(*s.ExpiresAt) {
			s.IsActive = false
			modified++
		}
	}
	return modified, nil
}

func (r *publicFileShareRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.publicShares[id]; !ok {
		return pkg.ErrShareNotFound
	}
	delete(r.store.publicShares, id)
	return nil
}

func (r *publicFileShareRepository) DeleteByFiles(ctx context.Context, fileIDs []primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idSet := make(map[primitive.ObjectID]struct{}, len(fileIDs))
	for _, id := range fileIDs {
		idSet[id] = struct{}{}
	}

	var deleted int64
	for id, s := range r.store.publicShares {
		if _, ok := idSet[s.FileID]; ok {
			delete(r.store.publicShares, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *publicFileShareRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, s := range r.store.publicShares {
		if s.OwnerID == userID {
			delete(r.store.publicShares, id)
			deleted++
		}
	}
	return deleted, nil
}
