package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileSharingService handles direct file-to-user shares and token-based
// public links. Direct shares follow the offer/respond shape; token links
// skip approval and gate on activity, expiry and password instead.
type FileSharingService struct {
	repos   *repository.Repository
	storage *StorageService
	sink    NotificationSink
	logger  *pkg.Logger
}

// NewFileSharingService creates a new file sharing service
func NewFileSharingService(repos *repository.Repository, storage *StorageService, sink NotificationSink, logger *pkg.Logger) *FileSharingService {
	return &FileSharingService{
		repos:   repos,
		storage: storage,
		sink:    sink,
		logger:  logger.WithPrefix("filesharing"),
	}
}

// ShareFileRequest carries direct file share input
type ShareFileRequest struct {
	FileID      primitive.ObjectID `json:"fileId" validate:"required"`
	TargetEmail string             `json:"targetEmail" validate:"required,email"`
	Message     string             `json:"message" validate:"max=500"`
}

// ShareFile offers a file to the user behind targetEmail
func (s *FileSharingService) ShareFile(ctx context.Context, ownerID primitive.ObjectID, req *ShareFileRequest) (*models.FileShare, error) {
	if errs := pkg.DefaultValidator.Validate(req); len(errs) > 0 {
		return nil, pkg.ErrValidationFailed.WithDetails(map[string]interface{}{"errors": errs})
	}

	file, err := s.repos.File.GetByID(ctx, req.FileID)
	if err != nil {
		return nil, err
	}
	if file.UserID != ownerID {
		return nil, pkg.ErrFileNotFound
	}

	target, err := s.repos.User.GetByEmail(ctx, req.TargetEmail)
	if err != nil {
		return nil, err
	}
	if target.ID == ownerID {
		return nil, pkg.ErrSelfShare
	}

	existing, err := s.repos.FileShare.GetByFileAndTarget(ctx, req.FileID, target.ID)
	if err != nil && !errors.Is(err, pkg.ErrShareNotFound) {
		return nil, err
	}
	if existing != nil {
		if !existing.Responded() || (existing.Accepted != nil && *existing.Accepted) {
			return nil, pkg.ErrShareAlreadyExists
		}
		if err := s.repos.FileShare.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
	}

	share := &models.FileShare{
		FileID:       req.FileID,
		OwnerID:      ownerID,
		TargetUserID: target.ID,
		Message:      req.Message,
		SharedAt:     time.Now(),
	}

	if err := s.repos.FileShare.Create(ctx, share); err != nil {
		return nil, err
	}

	if err := s.repos.File.Update(ctx, file.ID, map[string]interface{}{
		"is_shared": true,
	}); err != nil {
		s.logger.Warn("failed to flag file as shared", map[string]interface{}{
			"fileId": file.ID.Hex(),
			"error":  err.Error(),
		})
	}

	s.sink.Notify(ctx, &models.Notification{
		UserID:  target.ID,
		Type:    models.NotificationFileShareReceived,
		Message: fmt.Sprintf("File %q was shared with you", file.Name),
		ShareID: share.ID,
	})

	s.logger.Info("file shared", map[string]interface{}{
		"shareId":  share.ID.Hex(),
		"fileId":   req.FileID.Hex(),
		"targetId": target.ID.Hex(),
	})
	return share, nil
}

// Respond records the recipient's decision. Accepting clones the file into
// the recipient's root: the record is written first and removed again if the
// blob copy fails, so the accept either fully materializes or not at all.
func (s *FileSharingService) Respond(ctx context.Context, shareID, userID primitive.ObjectID, accept bool) (*models.FileShare, error) {
	share, err := s.repos.FileShare.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.TargetUserID != userID {
		return nil, pkg.ErrForbidden
	}
	if share.Responded() {
		return nil, pkg.ErrShareAlreadyResponded
	}

	if accept {
		if err := s.materializeAcceptedCopy(ctx, share, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	if err := s.repos.FileShare.Update(ctx, shareID, map[string]interface{}{
		"accepted":     accept,
		"responded_at": now,
	}); err != nil {
		return nil, err
	}

	share.Accepted = &accept
	share.RespondedAt = &now

	notifType := models.NotificationFileShareRejected
	if accept {
		notifType = models.NotificationFileShareAccepted
	}
	s.sink.Notify(ctx, &models.Notification{
		UserID:  share.OwnerID,
		Type:    notifType,
		Message: "Your file share was answered",
		ShareID: share.ID,
	})
	return share, nil
}

// materializeAcceptedCopy clones the shared file into the recipient's root.
// OriginalFileID links the copy back to the source so later renames of the
// source do not diverge silently.
func (s *FileSharingService) materializeAcceptedCopy(ctx context.Context, share *models.FileShare, userID primitive.ObjectID) error {
	source, err := s.repos.File.GetByID(ctx, share.FileID)
	if err != nil {
		return err
	}

	newKey := NewStorageKey(userID, source.Name)
	clone := &models.File{
		Name:           source.Name,
		StorageKey:     newKey,
		UserID:         userID,
		Size:           source.Size,
		ContentType:    source.ContentType,
		Extension:      source.Extension,
		OriginalFileID: &source.ID,
	}

	if err := s.repos.File.Create(ctx, clone); err != nil {
		return err
	}

	if err := s.storage.Copy(ctx, source.StorageKey, newKey); err != nil {
		if delErr := s.repos.File.Delete(ctx, clone.ID); delErr != nil {
			s.logger.Error("failed to compensate file record after blob copy failure", map[string]interface{}{
				"fileId": clone.ID.Hex(),
				"error":  delErr.Error(),
			})
		}
		return pkg.ErrStorageProviderError.WithCause(err)
	}

	return nil
}

// Revoke withdraws a direct share. Owner-only; the row is deleted outright
// so the pair can be shared again later, and the file drops its shared flag
// once no direct shares remain. A copy an earlier accept materialized belongs
// to the recipient and is not touched.
func (s *FileSharingService) Revoke(ctx context.Context, shareID, ownerID primitive.ObjectID) error {
	share, err := s.repos.FileShare.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.OwnerID != ownerID {
		return pkg.ErrForbidden
	}

	if err := s.repos.FileShare.Delete(ctx, shareID); err != nil {
		return err
	}

	remaining, err := s.repos.FileShare.CountByFile(ctx, share.FileID)
	if err != nil {
		s.logger.Warn("failed to count remaining file shares", map[string]interface{}{
			"fileId": share.FileID.Hex(),
			"error":  err.Error(),
		})
	} else if remaining == 0 {
		if err := s.repos.File.Update(ctx, share.FileID, map[string]interface{}{
			"is_shared": false,
		}); err != nil {
			s.logger.Warn("failed to clear shared flag", map[string]interface{}{
				"fileId": share.FileID.Hex(),
				"error":  err.Error(),
			})
		}
	}

	s.sink.Notify(ctx, &models.Notification{
		UserID:  share.TargetUserID,
		Type:    models.NotificationFileShareRevoked,
		Message: "A file share was revoked",
		ShareID: share.ID,
	})

	s.logger.Info("file share revoked", map[string]interface{}{
		"shareId": shareID.Hex(),
		"fileId":  share.FileID.Hex(),
	})
	return nil
}

// ListSharedByMe lists the direct shares the caller handed out
func (s *FileSharingService) ListSharedByMe(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error) {
	return s.repos.FileShare.ListByOwner(ctx, ownerID, params)
}

// ListSharedWithMe lists the direct shares addressed to the caller
func (s *FileSharingService) ListSharedWithMe(ctx context.Context, userID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FileShare, int64, error) {
	return s.repos.FileShare.ListByTarget(ctx, userID, params)
}

// CreatePublicShareRequest carries token share creation input
type CreatePublicShareRequest struct {
	FileID         primitive.ObjectID `json:"fileId" validate:"required"`
	Password       string             `json:"password,omitempty"`
	AllowDownload  bool               `json:"allowDownload"`
	ExpirationDays int                `json:"expirationDays" validate:"min=0,max=365"`
}

// CreatePublicShare exposes a file through a fresh unguessable token
func (s *FileSharingService) CreatePublicShare(ctx context.Context, ownerID primitive.ObjectID, req *CreatePublicShareRequest) (*models.PublicFileShare, error) {
	file, err := s.repos.File.GetByID(ctx, req.FileID)
	if err != nil {
		return nil, err
	}
	if file.UserID != ownerID {
		return nil, pkg.ErrFileNotFound
	}

	share := &models.PublicFileShare{
		FileID:        req.FileID,
		OwnerID:       ownerID,
		ShareToken:    uuid.NewString(),
		ShareType:     models.ShareTypePublic,
		AllowDownload: req.AllowDownload,
		IsActive:      true,
	}

	if req.Password != "" {
		hash, err := pkg.HashPassword(req.Password)
		if err != nil {
			return nil, pkg.ErrInternalServer.WithCause(err)
		}
		share.PasswordHash = hash
		share.ShareType = models.ShareTypePrivate
	}

	if req.ExpirationDays > 0 {
		expires := time.Now().AddDate(0, 0, req.ExpirationDays)
		share.ExpiresAt = &expires
	}

	if err := s.repos.PublicFileShare.Create(ctx, share); err != nil {
		return nil, err
	}

	s.logger.Info("public share created", map[string]interface{}{
		"shareId": share.ID.Hex(),
		"fileId":  req.FileID.Hex(),
	})
	return share, nil
}

// ResolveToken grants access through a share token. The share must be active
// and unexpired and the password must match when one is set; every
// successful resolution bumps the access counter. Dead tokens surface as
// NotFound so they reveal nothing.
func (s *FileSharingService) ResolveToken(ctx context.Context, token, password string) (*models.PublicFileShare, *models.File, error) {
	share, err := s.repos.PublicFileShare.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if !share.Resolvable(time.Now()) {
		return nil, nil, pkg.ErrShareNotFound
	}

	if share.PasswordHash != "" {
		if password == "" {
			return nil, nil, pkg.ErrSharePasswordRequired
		}
		if !pkg.VerifyPassword(password, share.PasswordHash) {
			return nil, nil, pkg.ErrInvalidSharePassword
		}
	}

	file, err := s.repos.File.GetByID(ctx, share.FileID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repos.PublicFileShare.IncrementAccessCount(ctx, share.ID); err != nil {
		s.logger.Warn("failed to increment access count", map[string]interface{}{
			"shareId": share.ID.Hex(),
			"error":   err.Error(),
		})
	}
	share.AccessCount++

	return share, file, nil
}

// DownloadByToken resolves a token and streams the file bytes when the share
// permits downloading.
func (s *FileSharingService) DownloadByToken(ctx context.Context, token, password string) (*models.File, io.ReadCloser, error) {
	share, file, err := s.ResolveToken(ctx, token, password)
	if err != nil {
		return nil, nil, err
	}
	if !share.AllowDownload {
		return nil, nil, pkg.ErrForbidden
	}

	reader, err := s.storage.Download(ctx, file.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return file, reader, nil
}

// DeactivatePublicShare turns a token link off without deleting its history
func (s *FileSharingService) DeactivatePublicShare(ctx context.Context, shareID, ownerID primitive.ObjectID) error {
	share, err := s.repos.PublicFileShare.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.OwnerID != ownerID {
		return pkg.ErrForbidden
	}

	return s.repos.PublicFileShare.Update(ctx, shareID, map[string]interface{}{
		"is_active": false,
	})
}

// ListPublicShares lists the token links the caller created
func (s *FileSharingService) ListPublicShares(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.PublicFileShare, int64, error) {
	return s.repos.PublicFileShare.ListByOwner(ctx, ownerID, params)
}
