// Package memory holds in-memory repository implementations backed by plain
// maps. They mirror the MongoDB repositories' semantics, including sentinel
// errors and case-insensitive sibling name uniqueness, and exist so services
// can be tested without a database.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the shared backing state for all in-memory repositories
type Store struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	users        map[primitive.ObjectID]*models.User
	folders      map[primitive.ObjectID]*models.Folder
	files        map[primitive.ObjectID]*models.File
	folderShares map[primitive.ObjectID]*models.FolderShare
	fileShares   map[primitive.ObjectID]*models.FileShare
	publicShares map[primitive.ObjectID]*models.PublicFileShare
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:        make(map[primitive.ObjectID]*models.User),
		folders:      make(map[primitive.ObjectID]*models.Folder),
		files:        make(map[primitive.ObjectID]*models.File),
		folderShares: make(map[primitive.ObjectID]*models.FolderShare),
		fileShares:   make(map[primitive.ObjectID]*models.FileShare),
		publicShares: make(map[primitive.ObjectID]*models.PublicFileShare),
	}
}

// Repositories wires all in-memory repositories over this store
func (s *Store) Repositories() *repository.Repository {
	return &repository.Repository{
		User:            &userRepository{store: s},
		Folder:          &folderRepository{store: s},
		File:            &fileRepository{store: s},
		FolderShare:     &folderShareRepository{store: s},
		FileShare:       &fileShareRepository{store: s},
		PublicFileShare: &publicFileShareRepository{store: s},
		Tx:              s,
	}
}

// WithTransaction serializes fn against other transactions. The in-memory
// store has no rollback; individual repository calls stay consistent through
// the store mutex.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

// FolderCount reports how many folder rows exist, for test assertions
func (s *Store) FolderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.folders)
}

// FileCount reports how many file rows exist, for test assertions
func (s *Store) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// paginate sorts by created-at descending order stand-in (insertion order is
// not tracked, callers sort first) and slices out the requested page.
func paginateSlice[T any](items []T, params *pkg.PaginationParams) ([]T, int64) {
	total := int64(len(items))
	offset := params.GetOffset()
	if offset >= len(items) {
		return nil, total
	}
	end := offset + params.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total
}

func sortFoldersByName(folders []*models.Folder) {
	sort.Slice(folders, func(i, j int) bool {
		return lessFold(folders[i].Name, folders[j].Name)
	})
}

func lessFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if la == lb {
		return a < b
	}
	return la < lb
}
