package services

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	root := env.mkFolder(t, user.ID, nil, "Documents")
	assert.Equal(t, "/Documents", root.Path)
	assert.Nil(t, root.ParentID)

	child := env.mkFolder(t, user.ID, &root.ID, "Taxes")
	assert.Equal(t, "/Documents/Taxes", child.Path)
	require.NotNil(t, child.ParentID)
	assert.Equal(t, root.ID, *child.ParentID)

	_, err := env.folders.Create(ctx, user.ID, &CreateFolderRequest{Name: "   "})
	assert.ErrorIs(t, err, pkg.ErrInvalidInput)

	_, err = env.folders.Create(ctx, user.ID, &CreateFolderRequest{Name: "x", ParentID: &primitive.ObjectID{}})
	assert.Error(t, err)
}

func TestCreateFolder_SiblingNameUniqueness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	root := env.mkFolder(t, user.ID, nil, "Projects")

	// case-insensitive collision in the same parent
	_, err := env.folders.Create(ctx, user.ID, &CreateFolderRequest{Name: "PROJECTS"})
	assert.ErrorIs(t, err, pkg.ErrFolderAlreadyExists)

	// same name under a different parent is fine
	nested := env.mkFolder(t, user.ID, &root.ID, "Projects")
	assert.Equal(t, "/Projects/Projects", nested.Path)

	// and a different user can reuse the name at root
	bob := env.addUser(t, "bob@example.com")
	env.mkFolder(t, bob.ID, nil, "Projects")
}

func TestRenameFolder_PropagatesSubtreePaths(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	b := env.mkFolder(t, user.ID, &a.ID, "B")
	c := env.mkFolder(t, user.ID, &b.ID, "C")

	renamed, err := env.folders.Rename(ctx, a.ID, user.ID, "X")
	require.NoError(t, err)
	assert.Equal(t, "/X", renamed.Path)

	gotB, err := env.repos.Folder.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "/X/B", gotB.Path)

	gotC, err := env.repos.Folder.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "/X/B/C", gotC.Path)
}

func TestRenameFolder_Conflicts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "Reports")
	env.mkFolder(t, user.ID, nil, "Archive")

	_, err := env.folders.Rename(ctx, a.ID, user.ID, "archive")
	assert.ErrorIs(t, err, pkg.ErrFolderAlreadyExists)

	// renaming to its own name is a no-op, not a conflict
	same, err := env.folders.Rename(ctx, a.ID, user.ID, "Reports")
	require.NoError(t, err)
	assert.Equal(t, "/Reports", same.Path)
}

func TestMoveFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	src := env.mkFolder(t, user.ID, nil, "Src")
	child := env.mkFolder(t, user.ID, &src.ID, "Child")
	dst := env.mkFolder(t, user.ID, nil, "Dst")

	moved, err := env.folders.Move(ctx, src.ID, user.ID, &dst.ID)
	require.NoError(t, err)
	assert.Equal(t, "/Dst/Src", moved.Path)

	gotChild, err := env.repos.Folder.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "/Dst/Src/Child", gotChild.Path)

	// back to root
	moved, err = env.folders.Move(ctx, src.ID, user.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "/Src", moved.Path)
	assert.Nil(t, moved.ParentID)
}

func TestMoveFolder_CyclePrevention(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	b := env.mkFolder(t, user.ID, &a.ID, "B")
	c := env.mkFolder(t, user.ID, &b.ID, "C")

	_, err := env.folders.Move(ctx, a.ID, user.ID, &a.ID)
	assert.ErrorIs(t, err, pkg.ErrInvalidFolderMove)

	_, err = env.folders.Move(ctx, a.ID, user.ID, &b.ID)
	assert.ErrorIs(t, err, pkg.ErrInvalidFolderMove)

	_, err = env.folders.Move(ctx, a.ID, user.ID, &c.ID)
	assert.ErrorIs(t, err, pkg.ErrInvalidFolderMove)

	// nothing changed
	got, err := env.repos.Folder.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "/A", got.Path)
}

func TestMoveFolder_DestinationNameConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	dst := env.mkFolder(t, user.ID, nil, "Dst")
	env.mkFolder(t, user.ID, &dst.ID, "notes")
	outsider := env.mkFolder(t, user.ID, nil, "Notes")

	_, err := env.folders.Move(ctx, outsider.ID, user.ID, &dst.ID)
	assert.ErrorIs(t, err, pkg.ErrFolderAlreadyExists)
}

func TestFolderDepthLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	deepest := env.mkFolder(t, user.ID, nil, "d1")
	above := deepest
	for i := 2; i <= MaxFolderDepth; i++ {
		above = deepest
		deepest = env.mkFolder(t, user.ID, &deepest.ID, fmt.Sprintf("d%d", i))
	}

	_, err := env.folders.Create(ctx, user.ID, &CreateFolderRequest{
		Name:     "too-deep",
		ParentID: &deepest.ID,
	})
	assert.ErrorIs(t, err, pkg.ErrFolderTooDeep)

	// move and copy share the create bound: landing at the maximum depth is
	// fine, going past it is not
	solo := env.mkFolder(t, user.ID, nil, "Solo")
	_, err = env.folders.Move(ctx, solo.ID, user.ID, &deepest.ID)
	assert.ErrorIs(t, err, pkg.ErrFolderTooDeep)

	moved, err := env.folders.Move(ctx, solo.ID, user.ID, &above.ID)
	require.NoError(t, err)
	assert.Equal(t, MaxFolderDepth, folderDepth(moved.Path))

	clone, err := env.folders.Copy(ctx, moved.ID, user.ID, &above.ID, "")
	require.NoError(t, err)
	assert.Equal(t, MaxFolderDepth, folderDepth(clone.Path))

	sub := env.mkFolder(t, user.ID, nil, "Sub")
	env.mkFolder(t, user.ID, &sub.ID, "Leaf")
	_, err = env.folders.Move(ctx, sub.ID, user.ID, &above.ID)
	assert.ErrorIs(t, err, pkg.ErrFolderTooDeep)
	_, err = env.folders.Copy(ctx, sub.ID, user.ID, &above.ID, "")
	assert.ErrorIs(t, err, pkg.ErrFolderTooDeep)
}

func TestCopyFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	b := env.mkFolder(t, user.ID, &a.ID, "B")
	env.mkFile(t, user.ID, &a.ID, "top.txt", "top contents")
	env.mkFile(t, user.ID, &b.ID, "deep.txt", "deep contents")

	_, err := env.folders.ToggleFavorite(ctx, a.ID, user.ID)
	require.NoError(t, err)

	clone, err := env.folders.Copy(ctx, a.ID, user.ID, nil, "")
	require.NoError(t, err)

	// the name collides at root so the copy suffix kicks in
	assert.Equal(t, "A - Copy", clone.Name)
	assert.Equal(t, "/A - Copy", clone.Path)
	assert.NotEqual(t, a.ID, clone.ID)
	assert.False(t, clone.IsFavorite)

	children, err := env.folders.GetSubfolders(ctx, clone.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "B", children[0].Name)
	assert.Equal(t, "/A - Copy/B", children[0].Path)

	// cloned files get fresh records and fresh blobs with identical bytes
	files, err := env.files.ListByFolder(ctx, user.ID, &children[0].ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "deep.txt", files[0].Name)

	reader, err := env.storage.Download(ctx, files[0].StorageKey)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "deep contents", string(data))

	assert.Equal(t, 4, env.store.FolderCount())
	assert.Equal(t, 4, env.store.FileCount())
	assert.Equal(t, 4, env.provider.ObjectCount())

	// a second copy picks the numbered suffix
	clone2, err := env.folders.Copy(ctx, a.ID, user.ID, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "A - Copy (2)", clone2.Name)
}

func TestCopyFolder_SkipsFilesWithMissingBlobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	good := env.mkFile(t, user.ID, &a.ID, "good.txt", "still here")
	bad := env.mkFile(t, user.ID, &a.ID, "bad.txt", "about to vanish")

	// simulate a blob lost out from under the catalog
	require.NoError(t, env.provider.Delete(ctx, bad.StorageKey))

	clone, err := env.folders.Copy(ctx, a.ID, user.ID, nil, "")
	require.NoError(t, err)

	files, err := env.files.ListByFolder(ctx, user.ID, &clone.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, good.Name, files[0].Name)

	// the skipped file left no dangling record behind
	assert.Equal(t, 3, env.store.FileCount())
}

func TestDeleteFolder_Cascade(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "alice@example.com")
	friend := env.addUser(t, "bob@example.com")

	a := env.mkFolder(t, owner.ID, nil, "A")
	b := env.mkFolder(t, owner.ID, &a.ID, "B")
	file := env.mkFile(t, owner.ID, &b.ID, "doc.txt", "payload")
	keeper := env.mkFile(t, owner.ID, nil, "keep.txt", "survives")

	folderShare, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    a.ID,
		TargetEmail: friend.Email,
		Permission:  models.PermissionRead,
	})
	require.NoError(t, err)

	fileShare, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: friend.Email,
	})
	require.NoError(t, err)

	publicShare, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID: file.ID,
	})
	require.NoError(t, err)

	require.NoError(t, env.folders.Delete(ctx, a.ID, owner.ID))

	assert.Equal(t, 0, env.store.FolderCount())
	assert.Equal(t, 1, env.store.FileCount())
	assert.False(t, env.provider.Has(file.StorageKey))
	assert.True(t, env.provider.Has(keeper.StorageKey))

	_, err = env.repos.FolderShare.GetByID(ctx, folderShare.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
	_, err = env.repos.FileShare.GetByID(ctx, fileShare.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
	_, err = env.repos.PublicFileShare.GetByID(ctx, publicShare.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
}

func TestBulkMove_ValidatesBeforeMutating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	b := env.mkFolder(t, user.ID, nil, "B")
	inside := env.mkFolder(t, user.ID, &b.ID, "Inside")

	// moving B into its own descendant poisons the whole batch
	_, err := env.folders.BulkMove(ctx, user.ID, []primitive.ObjectID{a.ID, b.ID}, &inside.ID)
	assert.ErrorIs(t, err, pkg.ErrInvalidFolderMove)

	gotA, err := env.repos.Folder.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "/A", gotA.Path)

	dst := env.mkFolder(t, user.ID, nil, "Dst")
	result, err := env.folders.BulkMove(ctx, user.ID, []primitive.ObjectID{a.ID, b.ID}, &dst.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Succeeded)

	gotInside, err := env.repos.Folder.GetByID(ctx, inside.ID)
	require.NoError(t, err)
	assert.Equal(t, "/Dst/B/Inside", gotInside.Path)
}

func TestBulkCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	b := env.mkFolder(t, user.ID, nil, "B")
	dst := env.mkFolder(t, user.ID, nil, "Dst")

	result, err := env.folders.BulkCopy(ctx, user.ID, []primitive.ObjectID{a.ID, b.ID}, &dst.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Succeeded)

	children, err := env.folders.GetSubfolders(ctx, dst.ID, user.ID)
	require.NoError(t, err)
	assert.Len(t, children, 2)
}

func TestBulkDelete_CountsAlreadyGoneDescendants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	parent := env.mkFolder(t, user.ID, nil, "Parent")
	child := env.mkFolder(t, user.ID, &parent.ID, "Child")

	// deleting the parent first takes the child with it; the batch still
	// reports both as done
	result, err := env.folders.BulkDelete(ctx, user.ID, []primitive.ObjectID{parent.ID, child.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Requested)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, env.store.FolderCount())
}

func TestBulkOperations_EmptyBatch(t *testing.T) {
	env := newTestEnv(t)
	user := env.addUser(t, "alice@example.com")

	_, err := env.folders.BulkDelete(context.Background(), user.ID, nil)
	assert.ErrorIs(t, err, pkg.ErrInvalidInput)
}

func TestDeleteAllForUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "alice@example.com")
	bob := env.addUser(t, "bob@example.com")

	a := env.mkFolder(t, alice.ID, nil, "Mine")
	env.mkFile(t, alice.ID, &a.ID, "a.txt", "alice data")
	env.mkFile(t, alice.ID, nil, "root.txt", "alice root")

	bobFolder := env.mkFolder(t, bob.ID, nil, "His")
	bobFile := env.mkFile(t, bob.ID, &bobFolder.ID, "b.txt", "bob data")

	require.NoError(t, env.folders.DeleteAllForUser(ctx, alice.ID))

	assert.Equal(t, 1, env.store.FolderCount())
	assert.Equal(t, 1, env.store.FileCount())
	assert.Equal(t, 1, env.provider.ObjectCount())
	assert.True(t, env.provider.Has(bobFile.StorageKey))
}

func TestFolderOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.addUser(t, "alice@example.com")
	bob := env.addUser(t, "bob@example.com")

	folder := env.mkFolder(t, alice.ID, nil, "Private")

	// someone else's folder is indistinguishable from a missing one
	_, err := env.folders.Rename(ctx, folder.ID, bob.ID, "Stolen")
	assert.ErrorIs(t, err, pkg.ErrFolderNotFound)

	err = env.folders.Delete(ctx, folder.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrFolderNotFound)

	_, err = env.folders.GetDetails(ctx, folder.ID, bob.ID)
	assert.ErrorIs(t, err, pkg.ErrFolderNotFound)
}

func TestGetDetails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	a := env.mkFolder(t, user.ID, nil, "A")
	b := env.mkFolder(t, user.ID, &a.ID, "B")
	c := env.mkFolder(t, user.ID, &b.ID, "C")
	env.mkFile(t, user.ID, &a.ID, "one.txt", "12345")
	env.mkFile(t, user.ID, &c.ID, "two.txt", "1234567890")

	details, err := env.folders.GetDetails(ctx, a.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(2), details.FileCount)
	assert.Equal(t, int64(2), details.SubfolderCount)
	assert.Equal(t, int64(15), details.TotalSize)
	assert.Equal(t, "15 B", details.FormattedSize)

	details, err = env.folders.GetDetails(ctx, c.ID, user.ID)
	require.NoError(t, err)
	require.Len(t, details.Breadcrumb, 3)
	assert.Equal(t, "A", details.Breadcrumb[0].Name)
	assert.Equal(t, "B", details.Breadcrumb[1].Name)
	assert.Equal(t, "C", details.Breadcrumb[2].Name)
}

func TestToggleFavoriteAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	folder := env.mkFolder(t, user.ID, nil, "Starred")

	toggled, err := env.folders.ToggleFavorite(ctx, folder.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	favorites, total, err := env.folders.GetFavorites(ctx, user.ID, pkg.DefaultPaginationParams())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, favorites, 1)

	color := "#ff8800"
	desc := "starred things"
	updated, err := env.folders.Update(ctx, folder.ID, user.ID, &UpdateFolderRequest{
		Color:       &color,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, color, updated.Color)
	assert.Equal(t, desc, updated.Description)
}

func TestSearchFolders(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.addUser(t, "alice@example.com")

	env.mkFolder(t, user.ID, nil, "Tax Returns")
	env.mkFolder(t, user.ID, nil, "Vacation Photos")

	params := pkg.DefaultPaginationParams()
	params.Search = "tax"
	results, total, err := env.folders.Search(ctx, user.ID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
	assert.Equal(t, "Tax Returns", results[0].Name)
}
