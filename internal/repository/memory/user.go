package memory

import (
	"context"
	"strings"
	"time"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userRepository struct {
	store *Store
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, user.Email) {
			return pkg.ErrEmailAlreadyTaken
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	clone := *user
	r.store.users[user.ID] = &clone
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, pkg.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, pkg.ErrUserNotFound
}

func (r *userRepository) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return pkg.ErrUserNotFound
	}

	for key, value := range updates {
		switch key {
		case "first_name":
			u.FirstName = value.(string)
		case "last_name":
			u.LastName = value.(string)
		case "password_hash":
			u.PasswordHash = value.(string)
		case "email_verified":
			u.EmailVerified = value.(bool)
		}
	}
	u.UpdatedAt = time.Now()
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return pkg.ErrUserNotFound
	}
	delete(r.store.users, id)
	return nil
}
