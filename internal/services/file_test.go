package services

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAndDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	folder := env.mkFolder(t, user.ID, nil, "Docs")
	file := env.mkFile(t, user.ID, &folder.ID, "notes.txt", "hello world")

	assert.Equal(t, ".txt", file.Extension)
	assert.Equal(t, int64(len("hello world")), file.Size)
	assert.True(t, strings.HasPrefix(file.StorageKey, user.ID.Hex()+"/"))
	assert.True(t, env.provider.Has(file.StorageKey))

	got, reader, err := env.files.Download(ctx, file.ID, user.ID)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, file.ID, got.ID)
	assert.Equal(t, "hello world", string(data))
}

func TestUpload_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "alice@example.com")
	bob := env.addUser(t, "bob@example.com")

	folder := env.mkFolder(t, alice.ID, nil, "Docs")

	// uploading into someone else's folder fails before any blob write
	_, err := env.files.Upload(ctx, bob.ID, &UploadRequest{
		Name:     "sneaky.txt",
		FolderID: &folder.ID,
		Body:     strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, pkg.ErrFolderNotFound)
	assert.Equal(t, 0, env.provider.ObjectCount())

	_, err = env.files.Upload(ctx, alice.ID, &UploadRequest{
		Name: "  ",
		Body: strings.NewReader("x"),
	})
	assert.ErrorIs(t, err, pkg.ErrInvalidInput)
}

func TestFileRenameAndMove(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	folder := env.mkFolder(t, user.ID, nil, "Docs")
	file := env.mkFile(t, user.ID, nil, "draft.txt", "content")

	renamed, err := env.files.Rename(ctx, file.ID, user.ID, "final.md")
	require.NoError(t, err)
	assert.Equal(t, "final.md", renamed.Name)
	assert.Equal(t, ".md", renamed.Extension)

	moved, err := env.files.Move(ctx, file.ID, user.ID, &folder.ID)
	require.NoError(t, err)
	require.NotNil(t, moved.FolderID)
	assert.Equal(t, folder.ID, *moved.FolderID)

	// and back to root
	moved, err = env.files.Move(ctx, file.ID, user.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, moved.FolderID)
}

func TestDeleteFile_RemovesSharesAndBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	friend := env.addUser(t, "friend@example.com")

	file := env.mkFile(t, owner.ID, nil, "doc.txt", "payload")

	fileShare, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: friend.Email,
	})
	require.NoError(t, err)
	publicShare, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID: file.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.files.Delete(ctx, file.ID, owner.ID))

	assert.Equal(t, 0, env.store.FileCount())
	assert.False(t, env.provider.Has(file.StorageKey))
	_, err = env.repos.FileShare.GetByID(ctx, fileShare.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
	_, err = env.repos.PublicFileShare.GetByID(ctx, publicShare.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
}

func TestFileOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "alice@example.com")
	bob := env.addUser(t, "bob@example.com")

	file := env.mkFile(t, alice.ID, nil, "private.txt", "secret")

	_, err := env.files.Get(ctx, file.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrFileNotFound)

	err = env.files.Delete(ctx, file.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrFileNotFound)
}

func TestFileFavoritesAndSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFile(t, user.ID, nil, "budget-2026.xlsx", "numbers")
	env.mkFile(t, user.ID, nil, "holiday.jpg", "pixels")

	toggled, err := env.files.ToggleFavorite(ctx, a.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	favorites, total, err := env.files.GetFavorites(ctx, user.ID, pkg.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, favorites, 1)
	assert.Equal(t, a.ID, favorites[0].ID)

	params := pkg.DefaultPaginationParams()
	params.Search = "budget"
	results, total, err := env.files.Search(ctx, user.ID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, a.ID, results[0].ID)
}

func TestFileRecent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")
	other := env.addUser(t, "bob@example.com")

	a := env.mkFile(t, user.ID, nil, "a.txt", "x")
	env.mkFile(t, user.ID, nil, "b.txt", "x")
	env.mkFile(t, user.ID, nil, "c.txt", "x")
	env.mkFile(t, other.ID, nil, "theirs.txt", "x")

	// touching a file moves it to the front
	_, err := env.files.Rename(ctx, a.ID, user.ID, "a-renamed.txt")
	require.NoError(t, err)

	recent, err := env.files.Recent(ctx, user.ID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, a.ID, recent[0].ID)

	// a non-positive limit falls back to the default page size
	all, err := env.files.Recent(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
