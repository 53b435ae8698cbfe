package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareFile_AcceptMaterializesCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Docs")
	file := env.mkFile(t, owner.ID, &folder.ID, "report.pdf", "pdf bytes")

	share, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: target.Email,
	})
	require.NoError(t, err)
	assert.Nil(t, share.Accepted)

	answered, err := env.fileSharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)
	require.NotNil(t, answered.Accepted)
	assert.True(t, *answered.Accepted)

	// the recipient got an independent copy in their root
	copies, err := env.files.ListByFolder(ctx, target.ID, nil)
	require.NoError(t, err)
	require.Len(t, copies, 1)

	clone := copies[0]
	assert.Equal(t, file.Name, clone.Name)
	assert.Equal(t, target.ID, clone.UserID)
	assert.NotEqual(t, file.StorageKey, clone.StorageKey)
	require.NotNil(t, clone.OriginalFileID)
	assert.Equal(t, file.ID, *clone.OriginalFileID)

	reader, err := env.storage.Download(ctx, clone.StorageKey)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "pdf bytes", string(data))
}

func TestShareFile_RejectLeavesNoCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	file := env.mkFile(t, owner.ID, nil, "memo.txt", "memo")
	share, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: target.Email,
	})
	require.NoError(t, err)

	answered, err := env.fileSharing.Respond(ctx, share.ID, target.ID, false)
	require.NoError(t, err)
	require.NotNil(t, answered.Accepted)
	assert.False(t, *answered.Accepted)

	copies, err := env.files.ListByFolder(ctx, target.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, copies)
	assert.Equal(t, 1, env.store.FileCount())
}

func TestShareFile_AcceptFailsWhenBlobIsGone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	file := env.mkFile(t, owner.ID, nil, "lost.txt", "going away")
	share, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: target.Email,
	})
	require.NoError(t, err)

	require.NoError(t, env.provider.Delete(ctx, file.StorageKey))

	_, err = env.fileSharing.Respond(ctx, share.ID, target.ID, true)
	assert.ErrorIs(t, err, pkg.ErrStorageProviderError)

	// the failed accept compensated its record and left the share answerable
	assert.Equal(t, 1, env.store.FileCount())
	got, err := env.repos.FileShare.GetByID(ctx, share.ID)
	require.NoError(t, err)
	assert.False(t, got.Responded())
}

func TestShareFile_DuplicateAndReshare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	file := env.mkFile(t, owner.ID, nil, "doc.txt", "doc")
	req := &ShareFileRequest{FileID: file.ID, TargetEmail: target.Email}

	share, err := env.fileSharing.ShareFile(ctx, owner.ID, req)
	require.NoError(t, err)

	// self-share and duplicates are conflicts
	_, err = env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: owner.Email,
	})
	assert.ErrorIs(t, err, pkg.ErrSelfShare)

	_, err = env.fileSharing.ShareFile(ctx, owner.ID, req)
	assert.ErrorIs(t, err, pkg.ErrShareAlreadyExists)

	// an accepted share still blocks re-offering
	_, err = env.fileSharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)
	_, err = env.fileSharing.ShareFile(ctx, owner.ID, req)
	assert.ErrorIs(t, err, pkg.ErrShareAlreadyExists)
}

func TestShareFile_ReshareAfterReject(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	file := env.mkFile(t, owner.ID, nil, "doc.txt", "doc")
	req := &ShareFileRequest{FileID: file.ID, TargetEmail: target.Email}

	share, err := env.fileSharing.ShareFile(ctx, owner.ID, req)
	require.NoError(t, err)
	_, err = env.fileSharing.Respond(ctx, share.ID, target.ID, false)
	require.NoError(t, err)

	fresh, err := env.fileSharing.ShareFile(ctx, owner.ID, req)
	require.NoError(t, err)
	assert.NotEqual(t, share.ID, fresh.ID)
	assert.Nil(t, fresh.Accepted)
}

func TestPublicShare_ResolveToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")

	file := env.mkFile(t, owner.ID, nil, "public.txt", "visible to all")
	share, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID:        file.ID,
		AllowDownload: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, share.ShareToken)
	assert.Equal(t, models.ShareTypePublic, share.ShareType)

	resolved, gotFile, err := env.fileSharing.ResolveToken(ctx, share.ShareToken, "")
	require.NoError(t, err)
	assert.Equal(t, file.ID, gotFile.ID)
	assert.Equal(t, int64(1), resolved.AccessCount)

	// every resolution bumps the counter
	resolved, _, err = env.fileSharing.ResolveToken(ctx, share.ShareToken, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), resolved.AccessCount)

	_, _, err = env.fileSharing.ResolveToken(ctx, "no-such-token", "")
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
}

func TestPublicShare_Password(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")

	file := env.mkFile(t, owner.ID, nil, "secret.txt", "classified")
	share, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID:   file.ID,
		Password: "letmein",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShareTypePrivate, share.ShareType)
	assert.NotEqual(t, "letmein", share.PasswordHash)

	_, _, err = env.fileSharing.ResolveToken(ctx, share.ShareToken, "")
	assert.ErrorIs(t, err, pkg.ErrSharePasswordRequired)

	_, _, err = env.fileSharing.ResolveToken(ctx, share.ShareToken, "wrong")
	assert.ErrorIs(t, err, pkg.ErrInvalidSharePassword)

	_, gotFile, err := env.fileSharing.ResolveToken(ctx, share.ShareToken, "letmein")
	require.NoError(t, err)
	assert.Equal(t, file.ID, gotFile.ID)
}

func TestPublicShare_DeadTokensResolveAsNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")

	file := env.mkFile(t, owner.ID, nil, "gone.txt", "bytes")

	// expired
	expired, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID: file.ID,
	})
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, env.repos.PublicFileShare.Update(ctx, expired.ID, map[string]interface{}{
		"expires_at": past,
	}))
	_, _, err = env.fileSharing.ResolveToken(ctx, expired.ShareToken, "")
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)

	// deactivated
	other := env.mkFile(t, owner.ID, nil, "off.txt", "bytes")
	inactive, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID: other.ID,
	})
	require.NoError(t, err)
	require.NoError(t, env.fileSharing.DeactivatePublicShare(ctx, inactive.ID, owner.ID))
	_, _, err = env.fileSharing.ResolveToken(ctx, inactive.ShareToken, "")
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
}

func TestPublicShare_Download(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")

	file := env.mkFile(t, owner.ID, nil, "dl.txt", "downloadable")

	viewOnly, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID:        file.ID,
		AllowDownload: false,
	})
	require.NoError(t, err)
	_, _, err = env.fileSharing.DownloadByToken(ctx, viewOnly.ShareToken, "")
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	require.NoError(t, env.repos.PublicFileShare.Update(ctx, viewOnly.ID, map[string]interface{}{
		"allow_download": true,
	}))
	gotFile, reader, err := env.fileSharing.DownloadByToken(ctx, viewOnly.ShareToken, "")
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, file.ID, gotFile.ID)
	assert.Equal(t, "downloadable", string(data))
}

func TestPublicShare_OwnerGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	other := env.addUser(t, "other@example.com")

	file := env.mkFile(t, owner.ID, nil, "mine.txt", "bytes")

	// only the owner can expose a file
	_, err := env.fileSharing.CreatePublicShare(ctx, other.ID, &CreatePublicShareRequest{
		FileID: file.ID,
	})
	assert.ErrorIs(t, err, pkg.ErrFileNotFound)

	share, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID: file.ID,
	})
	require.NoError(t, err)

	err = env.fileSharing.DeactivatePublicShare(ctx, share.ID, other.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestPublicShare_Expiration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")

	file := env.mkFile(t, owner.ID, nil, "tmp.txt", "bytes")
	share, err := env.fileSharing.CreatePublicShare(ctx, owner.ID, &CreatePublicShareRequest{
		FileID:         file.ID,
		ExpirationDays: 7,
	})
	require.NoError(t, err)
	require.NotNil(t, share.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), *share.ExpiresAt, time.Minute)
}

func TestShareFile_Revoke(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	file := env.mkFile(t, owner.ID, nil, "memo.txt", "memo")
	share, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: target.Email,
	})
	require.NoError(t, err)

	// only the owner can withdraw the offer
	err = env.fileSharing.Revoke(ctx, share.ID, target.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	require.NoError(t, env.fileSharing.Revoke(ctx, share.ID, owner.ID))

	_, err = env.repos.FileShare.GetByID(ctx, share.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)

	// the target can no longer answer the withdrawn offer
	_, err = env.fileSharing.Respond(ctx, share.ID, target.ID, true)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)

	// the last share gone, the file is no longer flagged as shared
	stored, err := env.repos.File.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsShared)

	// and the pair can be shared again from scratch
	again, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: target.Email,
	})
	require.NoError(t, err)
	assert.NotEqual(t, share.ID, again.ID)
	assert.Nil(t, again.Accepted)
}

func TestShareFile_RevokeKeepsFlagWhileSharesRemain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	first := env.addUser(t, "first@example.com")
	second := env.addUser(t, "second@example.com")

	file := env.mkFile(t, owner.ID, nil, "plan.txt", "plan")
	one, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: first.Email,
	})
	require.NoError(t, err)
	two, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: second.Email,
	})
	require.NoError(t, err)

	require.NoError(t, env.fileSharing.Revoke(ctx, one.ID, owner.ID))
	stored, err := env.repos.File.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsShared)

	require.NoError(t, env.fileSharing.Revoke(ctx, two.ID, owner.ID))
	stored, err = env.repos.File.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsShared)
}

func TestShareFile_RevokeAcceptedLeavesRecipientCopy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	file := env.mkFile(t, owner.ID, nil, "report.pdf", "pdf bytes")
	share, err := env.fileSharing.ShareFile(ctx, owner.ID, &ShareFileRequest{
		FileID:      file.ID,
		TargetEmail: target.Email,
	})
	require.NoError(t, err)

	_, err = env.fileSharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)

	require.NoError(t, env.fileSharing.Revoke(ctx, share.ID, owner.ID))

	// the copy belongs to the recipient and survives the revoke
	copies, err := env.files.ListByFolder(ctx, target.ID, nil)
	require.NoError(t, err)
	require.Len(t, copies, 1)

	reader, err := env.storage.Download(ctx, copies[0].StorageKey)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	reader.Close()
	assert.Equal(t, "pdf bytes", string(data))
}
