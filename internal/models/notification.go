package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType identifies what a notification announces
type NotificationType string

const (
	NotificationFolderShareReceived  NotificationType = "folder_share_received"
	NotificationFolderShareAccepted  NotificationType = "folder_share_accepted"
	NotificationFolderShareRejected  NotificationType = "folder_share_rejected"
	NotificationFolderShareRevoked   NotificationType = "folder_share_revoked"
	NotificationFileShareReceived    NotificationType = "file_share_received"
	NotificationFileShareAccepted    NotificationType = "file_share_accepted"
	NotificationFileShareRejected    NotificationType = "file_share_rejected"
	NotificationFileShareRevoked     NotificationType = "file_share_revoked"
)

// Notification is a single event pushed to a user about sharing activity
type Notification struct {
	UserID    primitive.ObjectID `json:"userId"`
	Type      NotificationType   `json:"type"`
	Message   string             `json:"message"`
	ShareID   primitive.ObjectID `json:"shareId,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
}
