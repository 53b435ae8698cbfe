package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Folder is one node of a user's folder tree. Path is the materialized
// slash-joined ancestor chain ("/Docs/2024") kept in sync by the folder
// service on every rename and move. Children are always found by querying
// parent_id; folders hold no child references.
type Folder struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name" validate:"required,min=1,max=255"`
	Path        string              `bson:"path" json:"path"`
	ParentID    *primitive.ObjectID `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"userId"`
	IsFavorite  bool                `bson:"is_favorite" json:"isFavorite"`
	Color       string              `bson:"color" json:"color"`
	Description string              `bson:"description" json:"description"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

// FolderDetails is a folder plus its derived statistics. The counters are
// recomputed from current file and folder rows on every read, never stored.
type FolderDetails struct {
	*Folder
	FileCount      int64            `json:"fileCount"`
	SubfolderCount int64            `json:"subfolderCount"`
	TotalSize      int64            `json:"totalSize"`
	FormattedSize  string           `json:"formattedSize"`
	Breadcrumb     []BreadcrumbItem `json:"breadcrumb,omitempty"`
}

// BreadcrumbItem is one ancestor entry on the path from root to a folder
type BreadcrumbItem struct {
	ID   primitive.ObjectID `json:"id"`
	Name string             `json:"name"`
}

// PermissionType is a folder access level granted through sharing
type PermissionType string

const (
	PermissionRead  PermissionType = "read"
	PermissionWrite PermissionType = "write"
	PermissionAdmin PermissionType = "admin"
	PermissionNone  PermissionType = "none"
)

// Valid reports whether the permission is one that can be granted
func (p PermissionType) Valid() bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return true
	}
	return false
}
