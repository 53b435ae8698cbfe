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

type folderRepository struct {
	store *Store
}

func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, f := range r.store.folders {
		if f.UserID == folder.UserID && sameParent(f.ParentID, folder.ParentID) && strings.EqualFold(f.Name, folder.Name) {
			return pkg.ErrFolderAlreadyExists
		}
	}

	if folder.ID.IsZero() {
		folder.ID = primitive.NewObjectID()
	}
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt

	clone := *folder
	r.store.folders[folder.ID] = &clone
	return nil
}

func (r *folderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Folder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	f, ok := r.store.folders[id]
	if !ok {
		return nil, pkg.ErrFolderNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *folderRepository) FindSiblingByName(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, f := range r.store.folders {
		if f.UserID == userID && sameParent(f.ParentID, parentID) && strings.EqualFold(f.Name, name) {
			clone := *f
			return &clone, nil
		}
	}
	return nil, pkg.ErrFolderNotFound
}

func (r *folderRepository) ListByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID) ([]*models.Folder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.Folder
	for _, f := range r.store.folders {
		if f.UserID == userID && sameParent(f.ParentID, parentID) {
			clone := *f
			out = append(out, &clone)
		}
	}
	sortFoldersByName(out)
	return out, nil
}

func (r *folderRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*models.Folder, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.Folder
	for _, f := range r.store.folders {
		if f.UserID == userID {
			clone := *f
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (r *folderRepository) ListFavorites(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*models.Folder
	for _, f := range r.store.folders {
		if f.UserID == userID && f.IsFavorite {
			clone := *f
			out = append(out, &clone)
		}
	}
	sortFoldersByName(out)
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *folderRepository) Search(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.Folder, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	term := strings.ToLower(params.Search)
	var out []*models.Folder
	for _, f := range r.store.folders {
		if f.UserID != userID {
			continue
		}
		if term == "" ||
			strings.Contains(strings.ToLower(f.Name), term) ||
			strings.Contains(strings.ToLower(f.Description), term) {
			clone := *f
			out = append(out, &clone)
		}
	}
	sortFoldersByName(out)
	page, total := paginateSlice(out, params)
	return page, total, nil
}

func (r *folderRepository) CountByParent(ctx context.Context, userID primitive.ObjectID, parentID *primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, f := range r.store.folders {
		if f.UserID == userID && sameParent(f.ParentID, parentID) {
			count++
		}
	}
	return count, nil
}

func (r *folderRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	f, ok := r.store.folders[id]
	if !ok {
		return pkg.ErrFolderNotFound
	}

	for key, value := range updates {
		switch key {
		case "name":
			f.Name = value.(string)
		case "path":
			f.Path = value.(string)
		case "parent_id":
			if value == nil {
				f.ParentID = nil
			} else {
				pid := value.(primitive.ObjectID)
				f.ParentID = &pid
			}
		case "is_favorite":
			f.IsFavorite = value.(bool)
		case "color":
			f.Color = value.(string)
		case "description":
			f.Description = value.(string)
		}
	}
	f.UpdatedAt = time.Now()
	return nil
}

func (r *folderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.folders[id]; !ok {
		return pkg.ErrFolderNotFound
	}
	delete(r.store.folders, id)
	return nil
}

func (r *folderRepository) DeleteMany(ctx context.Context, ids []primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, id := range ids {
		delete(r.store.folders, id)
	}
	return nil
}

func (r *folderRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var deleted int64
	for id, f := range r.store.folders {
		if f.UserID == userID {
			delete(r.store.folders, id)
			deleted++
		}
	}
	return deleted, nil
}
