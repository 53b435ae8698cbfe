package services

import (
	"context"
	"strings"
	"testing"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository/memory"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// testEnv wires the full service stack over the in-memory store and blob
// provider so tests exercise the same code paths the server runs.
type testEnv struct {
	store       *memory.Store
	repos       *repository.Repository
	provider    *MemoryProvider
	storage     *StorageService
	sink        *RecordingSink
	folders     *FolderService
	files       *FileService
	sharing     *SharingService
	fileSharing *FileSharingService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	repos := store.Repositories()
	provider := NewMemoryProvider()
	storage := NewStorageServiceWithProvider(provider, 0)
	sink := NewRecordingSink()
	logger := pkg.NewLogger(pkg.LevelFatal)

	return &testEnv{
		store:       store,
		repos:       repos,
		provider:    provider,
		storage:     storage,
		sink:        sink,
		folders:     NewFolderService(repos, storage, logger),
		files:       NewFileService(repos, storage, logger),
		sharing:     NewSharingService(repos, sink, logger),
		fileSharing: NewFileSharingService(repos, storage, sink, logger),
	}
}

func (e *testEnv) addUser(t *testing.T, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:         email,
		FirstName:     "Test",
		LastName:      "User",
		PasswordHash:  "irrelevant",
		EmailVerified: true,
	}
	require.NoError(t, e.repos.User.Create(context.Background(), user))
	return user
}

func (e *testEnv) mkFolder(t *testing.T, userID primitive.ObjectID, parentID *primitive.ObjectID, name string) *models.Folder {
	t.Helper()

	folder, err := e.folders.Create(context.Background(), userID, &CreateFolderRequest{
		Name:     name,
		ParentID: parentID,
	})
	require.NoError(t, err)
	return folder
}

func (e *testEnv) mkFile(t *testing.T, userID primitive.ObjectID, folderID *primitive.ObjectID, name, content string) *models.File {
	t.Helper()

	file, err := e.files.Upload(context.Background(), userID, &UploadRequest{
		Name:        name,
		FolderID:    folderID,
		Size:        int64(len(content)),
		ContentType: "text/plain",
		Body:        strings.NewReader(content),
	})
	require.NoError(t, err)
	return file
}
