package services

import (
	"context"
	"testing"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareFolder_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")

	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionWrite,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusPending, share.Status)
	assert.Nil(t, share.RespondedAt)

	// pending grants nothing yet
	perm, err := env.sharing.ResolveAccess(ctx, folder.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)

	accepted, err := env.sharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.RespondedAt)

	perm, err = env.sharing.ResolveAccess(ctx, folder.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionWrite, perm)

	revoked, err := env.sharing.Revoke(ctx, share.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusRevoked, revoked.Status)

	perm, err = env.sharing.ResolveAccess(ctx, folder.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)
}

func TestShareFolder_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")

	// sharing with yourself is a conflict
	_, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: owner.Email,
		Permission:  models.PermissionRead,
	})
	assert.ErrorIs(t, err, pkg.ErrSelfShare)

	// unknown recipient
	_, err = env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: "ghost@example.com",
		Permission:  models.PermissionRead,
	})
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)

	// only the owner can offer the folder
	_, err = env.sharing.ShareFolder(ctx, target.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: owner.Email,
		Permission:  models.PermissionRead,
	})
	assert.ErrorIs(t, err, pkg.ErrFolderNotFound)

	// bogus permission level
	_, err = env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionType("superuser"),
	})
	assert.ErrorIs(t, err, pkg.ErrInvalidInput)
}

func TestShareFolder_DuplicateAndReshare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")
	req := &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
	}

	share, err := env.sharing.ShareFolder(ctx, owner.ID, req)
	require.NoError(t, err)

	// pending blocks a second offer
	_, err = env.sharing.ShareFolder(ctx, owner.ID, req)
	assert.ErrorIs(t, err, pkg.ErrShareAlreadyExists)

	// accepted blocks it too
	_, err = env.sharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)
	_, err = env.sharing.ShareFolder(ctx, owner.ID, req)
	assert.ErrorIs(t, err, pkg.ErrShareAlreadyExists)

	// a revoked share is replaced by a fresh pending one
	_, err = env.sharing.Revoke(ctx, share.ID, owner.ID)
	require.NoError(t, err)
	reshared, err := env.sharing.ShareFolder(ctx, owner.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusPending, reshared.Status)
	assert.NotEqual(t, share.ID, reshared.ID)

	// same after a rejection
	_, err = env.sharing.Respond(ctx, reshared.ID, target.ID, false)
	require.NoError(t, err)
	again, err := env.sharing.ShareFolder(ctx, owner.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusPending, again.Status)
}

func TestRespond_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")
	other := env.addUser(t, "other@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
	})
	require.NoError(t, err)

	// only the target may answer, the owner included
	_, err = env.sharing.Respond(ctx, share.ID, owner.ID, true)
	assert.ErrorIs(t, err, pkg.ErrForbidden)
	_, err = env.sharing.Respond(ctx, share.ID, other.ID, true)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	_, err = env.sharing.Respond(ctx, share.ID, target.ID, false)
	require.NoError(t, err)

	// answering twice is a conflict
	_, err = env.sharing.Respond(ctx, share.ID, target.ID, true)
	assert.ErrorIs(t, err, pkg.ErrShareAlreadyResponded)
}

func TestRespond_ExpiredShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")
	expired := time.Now().Add(-time.Hour)
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
		ExpiresAt:   &expired,
	})
	require.NoError(t, err)

	_, err = env.sharing.Respond(ctx, share.ID, target.ID, true)
	assert.ErrorIs(t, err, pkg.ErrShareExpired)
}

func TestRevoke_Guards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
	})
	require.NoError(t, err)

	_, err = env.sharing.Revoke(ctx, share.ID, target.ID)
	assert.ErrorIs(t, err, pkg.ErrForbidden)

	// revoke straight from pending is allowed
	revoked, err := env.sharing.Revoke(ctx, share.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusRevoked, revoked.Status)

	// revoking again is idempotent
	again, err := env.sharing.Revoke(ctx, share.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusRevoked, again.Status)
}

func TestRevoke_RejectedShare(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
	})
	require.NoError(t, err)

	_, err = env.sharing.Respond(ctx, share.ID, target.ID, false)
	require.NoError(t, err)

	_, err = env.sharing.Revoke(ctx, share.ID, owner.ID)
	assert.ErrorIs(t, err, pkg.ErrShareAlreadyResponded)
}

func TestResolveAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")
	stranger := env.addUser(t, "stranger@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")

	perm, err := env.sharing.ResolveAccess(ctx, folder.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionAdmin, perm)

	perm, err = env.sharing.ResolveAccess(ctx, folder.ID, stranger.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)

	// an accepted share that has since expired grants nothing
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
	})
	require.NoError(t, err)
	_, err = env.sharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	require.NoError(t, env.repos.FolderShare.Update(ctx, share.ID, map[string]interface{}{
		"expires_at": expired,
	}))

	perm, err = env.sharing.ResolveAccess(ctx, folder.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)
}

func TestShareFolder_Password(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Locked")
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
		Password:    "hunter2",
	})
	require.NoError(t, err)
	assert.True(t, share.RequiresPassword)
	assert.NotEqual(t, "hunter2", share.PasswordHash)

	err = env.sharing.VerifyPassword(ctx, share.ID, target.ID, "")
	assert.ErrorIs(t, err, pkg.ErrSharePasswordRequired)

	err = env.sharing.VerifyPassword(ctx, share.ID, target.ID, "wrong")
	assert.ErrorIs(t, err, pkg.ErrInvalidSharePassword)

	err = env.sharing.VerifyPassword(ctx, share.ID, target.ID, "hunter2")
	assert.NoError(t, err)

	err = env.sharing.VerifyPassword(ctx, share.ID, owner.ID, "hunter2")
	assert.ErrorIs(t, err, pkg.ErrForbidden)
}

func TestShareFolder_Notifications(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Shared")
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionRead,
	})
	require.NoError(t, err)

	_, err = env.sharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)

	notifications := env.sink.Notifications()
	require.Len(t, notifications, 2)
	assert.Equal(t, models.NotificationFolderShareReceived, notifications[0].Type)
	assert.Equal(t, target.ID, notifications[0].UserID)
	assert.Equal(t, models.NotificationFolderShareAccepted, notifications[1].Type)
	assert.Equal(t, owner.ID, notifications[1].UserID)
}

func TestListShares(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")

	f1 := env.mkFolder(t, owner.ID, nil, "One")
	f2 := env.mkFolder(t, owner.ID, nil, "Two")

	s1, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID: f1.ID, TargetEmail: target.Email, Permission: models.PermissionRead,
	})
	require.NoError(t, err)
	_, err = env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID: f2.ID, TargetEmail: target.Email, Permission: models.PermissionRead,
	})
	require.NoError(t, err)
	_, err = env.sharing.Respond(ctx, s1.ID, target.ID, true)
	require.NoError(t, err)

	params := pkg.DefaultPaginationParams()

	_, total, err := env.sharing.ListSharedByMe(ctx, owner.ID, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	// status filter narrows the inbox
	accepted, total, err := env.sharing.ListSharedWithMe(ctx, target.ID, []models.ShareStatus{models.ShareStatusAccepted}, params)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, accepted, 1)
	assert.Equal(t, f1.ID, accepted[0].FolderID)

	// a share is visible to its two parties only
	_, err = env.sharing.GetShare(ctx, s1.ID, owner.ID)
	assert.NoError(t, err)
	_, err = env.sharing.GetShare(ctx, s1.ID, target.ID)
	assert.NoError(t, err)
	stranger := env.addUser(t, "stranger@example.com")
	_, err = env.sharing.GetShare(ctx, s1.ID, stranger.ID)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)
}

func TestRemoveUserFromFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@example.com")
	target := env.addUser(t, "target@example.com")
	stranger := env.addUser(t, "stranger@example.com")

	folder := env.mkFolder(t, owner.ID, nil, "Projects")
	share, err := env.sharing.ShareFolder(ctx, owner.ID, &ShareFolderRequest{
		FolderID:    folder.ID,
		TargetEmail: target.Email,
		Permission:  models.PermissionWrite,
	})
	require.NoError(t, err)
	_, err = env.sharing.Respond(ctx, share.ID, target.ID, true)
	require.NoError(t, err)

	// only the owner may remove users
	_, err = env.sharing.RemoveUserFromFolder(ctx, folder.ID, target.ID, owner.Email)
	assert.ErrorIs(t, err, pkg.ErrFolderNotFound)

	_, err = env.sharing.RemoveUserFromFolder(ctx, folder.ID, owner.ID, "nobody@example.com")
	assert.ErrorIs(t, err, pkg.ErrUserNotFound)

	// a user without a share on the folder cannot be removed
	_, err = env.sharing.RemoveUserFromFolder(ctx, folder.ID, owner.ID, stranger.Email)
	assert.ErrorIs(t, err, pkg.ErrShareNotFound)

	removed, err := env.sharing.RemoveUserFromFolder(ctx, folder.ID, owner.ID, target.Email)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusRevoked, removed.Status)
	assert.Equal(t, share.ID, removed.ID)

	permission, err := env.sharing.ResolveAccess(ctx, folder.ID, target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, permission)

	// removing again hits the revoke idempotency path
	removed, err = env.sharing.RemoveUserFromFolder(ctx, folder.ID, owner.ID, target.Email)
	require.NoError(t, err)
	assert.Equal(t, models.ShareStatusRevoked, removed.Status)
}
