package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that owns a folder tree and can participate in shares
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email" validate:"required,email"`
	FirstName     string             `bson:"first_name" json:"firstName" validate:"required,min=1,max=100"`
	LastName      string             `bson:"last_name" json:"lastName" validate:"required,min=1,max=100"`
	PasswordHash  string             `bson:"password_hash" json:"-"`
	EmailVerified bool               `bson:"email_verified" json:"emailVerified"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
