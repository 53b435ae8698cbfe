package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fileRepository struct {
	store *Store
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if file.ID.IsZero() {
		file.ID = primitive.NewObjectID()
	}
	file.CreatedAt = time.Now()
	file.UpdatedAt = file.CreatedAt

	clone := *file
	r.store.files[file.ID] = &clone
	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.File, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	f, ok := r.store.files[id]
	if !ok {
		return nil, pkg.ErrFileNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *fileRepository) ListByFolder(ctx context.Context, userID primitive.ObjectID, folderID *primitive.ObjectID) ([]*models.File, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.File
	for _, f := range r.store.files {
		if f.UserID == userID && sameParent(f.FolderID, folderID) {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessFold(out[i].Name, out[j].Name) })
	return out, nil
}

func (r *fileRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.File
	for _, f := range r.store.files {
		if f.UserID == userID {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessFold(out[i].Name, out[j].Name) })
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *fileRepository) ListFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.File
	for _, f := range r.store.files {
		if f.UserID == userID && f.IsFavorite {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessFold(out[i].Name, out[j].Name) })
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *fileRepository) ListRecent(ctx context.Context, userID primitive.ObjectID, limit int) ([]*models.File, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.File
	for _, f := range r.store.files {
		if f.UserID == userID {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fileRepository) Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.File, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	term := strings.ToLower(params.Search)
	var out []*models.File
	for _, f := range r.store.files {
		if f.UserID != userID {
			continue
		}
		if term == "" || strings.Contains(strings.ToLower(f.Name), term) {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessFold(out[i].Name, out[j].Name) })
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *fileRepository) SumSizeByFolders(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (int64, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idSet := make(map[primitive.ObjectID]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		idSet[id] = struct{}{}
	}

	var count, size int64
	for _, f := range r.store.files {
		if f.UserID != userID || f.FolderID == nil {
			continue
		}
		if _, ok := idSet[*f.FolderID]; ok {
			count++
			size += f.Size
		}
	}
	return count, size, nil
}

func (r *fileRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	f, ok := r.store.files[id]
	if !ok {
		return pkg.ErrFileNotFound
	}

	for key, value := range updates {
		switch key {
		case "name":
			f.Name = value.(string)
		case "folder_id":
			if value == nil {
				f.FolderID = nil
			} else {
				fid := value.(primitive.ObjectID)
				f.FolderID = &fid
			}
		case "is_favorite":
			f.IsFavorite = value.(bool)
		case "is_shared":
			f.IsShared = value.(bool)
		case "extension":
			f.Extension = value.(string)
		}
	}
	f.UpdatedAt = time.Now()
	return nil
}

func (r *fileRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.files[id]; !ok {
		return pkg.ErrFileNotFound
	}
	delete(r.store.files, id)
	return nil
}

func (r *fileRepository) DeleteByFolders(ctx context.Context, userID primitive.ObjectID, folderIDs []primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idSet := make(map[primitive.ObjectID]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		idSet[id] = struct{}{}
	}

	var deleted int64
	for id, f := range r.store.files {
		if f.UserID != userID || f.FolderID == nil {
			continue
		}
		if _, ok := idSet[*f.FolderID]; ok {
			delete(r.store.files, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fileRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, f := range r.store.files {
		if f.UserID == userID {
			delete(r.store.files, id)
			deleted++
		}
	}
	return deleted, nil
}
