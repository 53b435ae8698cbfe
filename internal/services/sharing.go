package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SharingService drives the folder share state machine: pending to accepted
// or rejected by the target, accepted to revoked by the owner.
type SharingService struct {
	repos  *repository.Repository
	sink   NotificationSink
	logger *pkg.Logger
}

// NewSharingService creates a new folder sharing service
func NewSharingService(repos *repository.Repository, sink NotificationSink, logger *pkg.Logger) *SharingService {
	return &SharingService{
		repos:  repos,
		sink:   sink,
		logger: logger.WithPrefix("sharing"),
	}
}

// ShareFolderRequest carries folder share creation input
type ShareFolderRequest struct {
	FolderID    primitive.ObjectID    `json:"folderId" validate:"required"`
	TargetEmail string                `json:"targetEmail" validate:"required,email"`
	Permission  models.PermissionType `json:"permission" validate:"required"`
	Message     string                `json:"message" validate:"max=500"`
	Password    string                `json:"password,omitempty"`
	ExpiresAt   *time.Time            `json:"expiresAt,omitempty"`
}

// ShareFolder creates a pending share offering folderID to the user behind
// targetEmail. Self-shares and duplicate live shares are Conflicts.
func (s *SharingService) ShareFolder(ctx context.Context, ownerID primitive.ObjectID, req *ShareFolderRequest) (*models.FolderShare, error) {
	if errs := pkg.DefaultValidator.Validate(req); len(errs) > 0 {
		return nil, pkg.ErrValidationFailed.WithDetails(map[string]interface{}{"errors": errs})
	}
	if !req.Permission.Valid() {
		return nil, pkg.ErrInvalidInput.WithMessage("Unknown permission level")
	}

	folder, err := s.repos.Folder.GetByID(ctx, req.FolderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != ownerID {
		return nil, pkg.ErrFolderNotFound
	}

	target, err := s.repos.User.GetByEmail(ctx, req.TargetEmail)
	if err != nil {
		return nil, err
	}
	if target.ID == ownerID {
		return nil, pkg.ErrSelfShare
	}

	// A pending or accepted share blocks a new one; a rejected or revoked
	// row is replaced so the pair can be shared again.
	existing, err := s.repos.FolderShare.GetByFolderAndTarget(ctx, req.FolderID, target.ID)
	if err != nil && !errors.Is(err, pkg.ErrShareNotFound) {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case models.ShareStatusPending, models.ShareStatusAccepted:
			return nil, pkg.ErrShareAlreadyExists
		default:
			if err := s.repos.FolderShare.Delete(ctx, existing.ID); err != nil {
				return nil, err
			}
		}
	}

	share := &models.FolderShare{
		FolderID:     req.FolderID,
		OwnerID:      ownerID,
		TargetUserID: target.ID,
		Permission:   req.Permission,
		Status:       models.ShareStatusPending,
		Message:      req.Message,
		ExpiresAt:    req.ExpiresAt,
		SharedAt:     time.Now(),
	}

	if req.Password != "" {
		hash, err := pkg.HashPassword(req.Password)
		if err != nil {
			return nil, pkg.ErrInternalServer.WithCause(err)
		}
		share.PasswordHash = hash
		share.RequiresPassword = true
	}

	if err := s.repos.FolderShare.Create(ctx, share); err != nil {
		return nil, err
	}

	s.sink.Notify(ctx, &models.Notification{
		UserID:  target.ID,
		Type:    models.NotificationFolderShareReceived,
		Message: fmt.Sprintf("Folder %q was shared with you", folder.Name),
		ShareID: share.ID,
	})

	s.logger.Info("folder shared", map[string]interface{}{
		"shareId":  share.ID.Hex(),
		"folderId": req.FolderID.Hex(),
		"targetId": target.ID.Hex(),
	})
	return share, nil
}

// Respond records the target's accept or reject decision. Only a pending,
// unexpired share can be answered, and only by its target.
func (s *SharingService) Respond(ctx context.Context, shareID, userID primitive.ObjectID, accept bool) (*models.FolderShare, error) {
	share, err := s.repos.FolderShare.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.TargetUserID != userID {
		return nil, pkg.ErrForbidden
	}
	if share.Status != models.ShareStatusPending {
		return nil, pkg.ErrShareAlreadyResponded
	}
	if share.IsExpired(time.Now()) {
		return nil, pkg.ErrShareExpired
	}

	now := time.Now()
	status := models.ShareStatusRejected
	notifType := models.NotificationFolderShareRejected
	if accept {
		status = models.ShareStatusAccepted
		notifType = models.NotificationFolderShareAccepted
	}

	if err := s.repos.FolderShare.Update(ctx, shareID, map[string]interface{}{
		"status":       status,
		"responded_at": now,
	}); err != nil {
		return nil, err
	}

	share.Status = status
	share.RespondedAt = &now

	s.sink.Notify(ctx, &models.Notification{
		UserID:  share.OwnerID,
		Type:    notifType,
		Message: fmt.Sprintf("Your folder share was %s", status),
		ShareID: share.ID,
	})
	return share, nil
}

// Revoke withdraws a share. Owner-only; works from pending or accepted and
// is idempotent when the share is already revoked.
func (s *SharingService) Revoke(ctx context.Context, shareID, ownerID primitive.ObjectID) (*models.FolderShare, error) {
	share, err := s.repos.FolderShare.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.OwnerID != ownerID {
		return nil, pkg.ErrForbidden
	}
	if share.Status == models.ShareStatusRevoked {
		return share, nil
	}
	if share.Status == models.ShareStatusRejected {
		return nil, pkg.ErrShareAlreadyResponded
	}

	now := time.Now()
	if err := s.repos.FolderShare.Update(ctx, shareID, map[string]interface{}{
		"status":       models.ShareStatusRevoked,
		"responded_at": now,
	}); err != nil {
		return nil, err
	}

	share.Status = models.ShareStatusRevoked
	share.RespondedAt = &now

	s.sink.Notify(ctx, &models.Notification{
		UserID:  share.TargetUserID,
		Type:    models.NotificationFolderShareRevoked,
		Message: "A folder share was revoked",
		ShareID: share.ID,
	})
	return share, nil
}

// RemoveUserFromFolder revokes the share a folder holds for the user behind
// targetEmail, for owners who know who they shared with but not the share id.
// Runs through the same state machine as Revoke.
func (s *SharingService) RemoveUserFromFolder(ctx context.Context, folderID, ownerID primitive.ObjectID, targetEmail string) (*models.FolderShare, error) {
	folder, err := s.repos.Folder.GetByID(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if folder.UserID != ownerID {
		return nil, pkg.ErrFolderNotFound
	}

	target, err := s.repos.User.GetByEmail(ctx, targetEmail)
	if err != nil {
		return nil, err
	}

	share, err := s.repos.FolderShare.GetByFolderAndTarget(ctx, folderID, target.ID)
	if err != nil {
		return nil, err
	}

	return s.Revoke(ctx, share.ID, ownerID)
}

// ResolveAccess returns the permission userID holds over folderID: admin for
// the owner, the granted level for an accepted unexpired share, none
// otherwise.
func (s *SharingService) ResolveAccess(ctx context.Context, folderID, userID primitive.ObjectID) (models.PermissionType, error) {
	folder, err := s.repos.Folder.GetByID(ctx, folderID)
	if err != nil {
		return models.PermissionNone, err
	}
	if folder.UserID == userID {
		return models.PermissionAdmin, nil
	}

	share, err := s.repos.FolderShare.GetByFolderAndTarget(ctx, folderID, userID)
	if err != nil {
		if errors.Is(err, pkg.ErrShareNotFound) {
			return models.PermissionNone, nil
		}
		return models.PermissionNone, err
	}

	if !share.Active(time.Now()) {
		return models.PermissionNone, nil
	}
	return share.Permission, nil
}

// VerifyPassword checks a password-protected share's password for the target
func (s *SharingService) VerifyPassword(ctx context.Context, shareID, userID primitive.ObjectID, password string) error {
	share, err := s.repos.FolderShare.GetByID(ctx, shareID)
	if err != nil {
		return err
	}
	if share.TargetUserID != userID {
		return pkg.ErrForbidden
	}
	if !share.RequiresPassword {
		return nil
	}
	if password == "" {
		return pkg.ErrSharePasswordRequired
	}
	if !pkg.VerifyPassword(password, share.PasswordHash) {
		return pkg.ErrInvalidSharePassword
	}
	return nil
}

// ListSharedByMe lists shares the caller handed out
func (s *SharingService) ListSharedByMe(ctx context.Context, ownerID primitive.ObjectID, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error) {
	return s.repos.FolderShare.ListByOwner(ctx, ownerID, params)
}

// ListSharedWithMe lists shares addressed to the caller, optionally filtered
// by status.
func (s *SharingService) ListSharedWithMe(ctx context.Context, userID primitive.ObjectID, statuses []models.ShareStatus, params *pkg.PaginationParams) ([]*models.FolderShare, int64, error) {
	return s.repos.FolderShare.ListByTarget(ctx, userID, statuses, params)
}

// GetShare returns a share visible to the caller (owner or target)
func (s *SharingService) GetShare(ctx context.Context, shareID, userID primitive.ObjectID) (*models.FolderShare, error) {
	share, err := s.repos.FolderShare.GetByID(ctx, shareID)
	if err != nil {
		return nil, err
	}
	if share.OwnerID != userID && share.TargetUserID != userID {
		return nil, pkg.ErrShareNotFound
	}
	return share, nil
}
