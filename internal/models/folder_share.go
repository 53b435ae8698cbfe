package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShareStatus tracks a folder share through its lifecycle
type ShareStatus string

const (
	ShareStatusPending  ShareStatus = "pending"
	ShareStatusAccepted ShareStatus = "accepted"
	ShareStatusRejected ShareStatus = "rejected"
	ShareStatusRevoked  ShareStatus = "revoked"
)

// FolderShare grants a target user access to a folder subtree. The share is
// created pending; the target responds exactly once (accept or reject), and
// the owner may revoke at any point before or after acceptance. PasswordHash
// is a bcrypt hash checked on access when RequiresPassword is set.
type FolderShare struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FolderID         primitive.ObjectID `bson:"folder_id" json:"folderId"`
	OwnerID          primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	TargetUserID     primitive.ObjectID `bson:"target_user_id" json:"targetUserId"`
	Permission       PermissionType     `bson:"permission" json:"permission" validate:"required"`
	Status           ShareStatus        `bson:"status" json:"status"`
	Message          string             `bson:"message,omitempty" json:"message,omitempty"`
	RequiresPassword bool               `bson:"requires_password" json:"requiresPassword"`
	PasswordHash     string             `bson:"password_hash,omitempty" json:"-"`
	ExpiresAt        *time.Time         `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	SharedAt         time.Time          `bson:"shared_at" json:"sharedAt"`
	RespondedAt      *time.Time         `bson:"responded_at,omitempty" json:"respondedAt,omitempty"`
}

// IsExpired reports whether the share's expiry has passed at the given time
func (s *FolderShare) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// Active reports whether the share currently grants access: accepted and not
// expired.
func (s *FolderShare) Active(now time.Time) bool {
	return s.Status == ShareStatusAccepted && !s.IsExpired(now)
}
