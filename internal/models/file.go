package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// File is a stored file's catalog record. StorageKey addresses the bytes in
// the blob store and is opaque beyond being namespaced by owner. A nil
// FolderID means the file lives at the user's root. OriginalFileID is set
// only on records created by accepting a direct share and links back to the
// source file.
type File struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name           string              `bson:"name" json:"name" validate:"required,min=1,max=255"`
	StorageKey     string              `bson:"storage_key" json:"-"`
	FolderID       *primitive.ObjectID `bson:"folder_id,omitempty" json:"folderId,omitempty"`
	UserID         primitive.ObjectID  `bson:"user_id" json:"userId"`
	Size           int64               `bson:"size" json:"size"`
	ContentType    string              `bson:"content_type" json:"contentType"`
	Extension      string              `bson:"extension" json:"extension"`
	IsFavorite     bool                `bson:"is_favorite" json:"isFavorite"`
	IsShared       bool                `bson:"is_shared" json:"isShared"`
	OriginalFileID *primitive.ObjectID `bson:"original_file_id,omitempty" json:"originalFileId,omitempty"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time           `bson:"updated_at" json:"updatedAt"`
}
