package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileShare offers a single file directly to another user. Accepted is nil
// while the offer is open; accepting creates a copy of the file under the
// recipient's root and records the decision.
type FileShare struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileID       primitive.ObjectID `bson:"file_id" json:"fileId"`
	OwnerID      primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	TargetUserID primitive.ObjectID `bson:"target_user_id" json:"targetUserId"`
	Message      string             `bson:"message,omitempty" json:"message,omitempty"`
	Accepted     *bool              `bson:"accepted,omitempty" json:"accepted,omitempty"`
	SharedAt     time.Time          `bson:"shared_at" json:"sharedAt"`
	RespondedAt  *time.Time         `bson:"responded_at,omitempty" json:"respondedAt,omitempty"`
}

// Responded reports whether the recipient already answered the offer
func (s *FileShare) Responded() bool {
	return s.Accepted != nil
}

// ShareType distinguishes link shares open to anyone from ones that still
// require a password.
type ShareType string

const (
	ShareTypePublic  ShareType = "public"
	ShareTypePrivate ShareType = "private"
)

// PublicFileShare exposes a file through an unguessable token. Every
// successful resolve increments AccessCount. Deactivated or expired shares
// resolve to not-found rather than forbidden so tokens leak nothing.
type PublicFileShare struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FileID        primitive.ObjectID `bson:"file_id" json:"fileId"`
	OwnerID       primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	ShareToken    string             `bson:"share_token" json:"shareToken"`
	ShareType     ShareType          `bson:"share_type" json:"shareType"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	AllowDownload bool               `bson:"allow_download" json:"allowDownload"`
	ExpiresAt     *time.Time         `bson:"expires_at,omitempty" json:"expiresAt,omitempty"`
	AccessCount   int64              `bson:"access_count" json:"accessCount"`
	IsActive      bool               `bson:"is_active" json:"isActive"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
}

// IsExpired reports whether the link's expiry has passed at the given time
func (s *PublicFileShare) IsExpired(now time.Time) bool {
	return s.ExpiresAt != nil && now.After(*s.ExpiresAt)
}

// Resolvable reports whether the link can still be served
func (s *PublicFileShare) Resolvable(now time.Time) bool {
	return s.IsActive && !s.IsExpired(now)
}
