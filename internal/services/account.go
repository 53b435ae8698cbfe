package services

import (
	"context"

	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/models"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/pkg"
	"github.com/AH-Digital-go/DEVPFA-SQUAD-FILEFLOW/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AccountService handles the caller's own account: profile reads and the
// email verification flow.
type AccountService struct {
	repos        *repository.Repository
	verification *VerificationService
	email        EmailService
	logger       *pkg.Logger
}

// NewAccountService creates a new account service
func NewAccountService(repos *repository.Repository, verification *VerificationService, email EmailService, logger *pkg.Logger) *AccountService {
	return &AccountService{
		repos:        repos,
		verification: verification,
		email:        email,
		logger:       logger.WithPrefix("account"),
	}
}

// Profile returns the caller's account record
func (s *AccountService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	return s.repos.User.GetByID(ctx, userID)
}

// RequestEmailVerification issues a fresh verification code and mails it to
// the account's address. Calling it again replaces the earlier code.
func (s *AccountService) RequestEmailVerification(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return pkg.ErrEmailAlreadyVerified
	}

	code, err := s.verification.Generate(user.Email)
	if err != nil {
		return pkg.ErrInternalServer.WithCause(err)
	}

	if err := s.email.SendVerificationEmail(ctx, user.Email, user.FullName(), code); err != nil {
		return pkg.ErrEmailSendFailed.WithCause(err)
	}

	s.logger.Info("verification code sent", map[string]interface{}{
		"userId": userID.Hex(),
	})
	return nil
}

// ConfirmEmail checks the code and marks the account's address verified. The
// code is consumed on success.
func (s *AccountService) ConfirmEmail(ctx context.Context, userID primitive.ObjectID, code string) (*models.User, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.EmailVerified {
		return nil, pkg.ErrEmailAlreadyVerified
	}

	if err := s.verification.Verify(user.Email, code); err != nil {
		return nil, err
	}

	if err := s.repos.User.Update(ctx, userID, map[string]interface{}{
		"email_verified": true,
	}); err != nil {
		return nil, err
	}

	user.EmailVerified = true
	s.logger.Info("email verified", map[string]interface{}{
		"userId": userID.Hex(),
	})
	return user, nil
}
