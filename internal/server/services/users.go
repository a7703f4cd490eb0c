package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskly/internal/common"
	"github.com/dmitrijs2005/taskly/internal/cryptox"
	"github.com/dmitrijs2005/taskly/internal/server/models"
	"github.com/dmitrijs2005/taskly/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/taskly/internal/server/storage"
	"github.com/google/uuid"
)

// DefaultTheme is assigned at registration.
const DefaultTheme = "light"

var themes = map[string]bool{"light": true, "dark": true, "blue": true, "green": true}

// Registration is a sign-up request.
type Registration struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ProfilePatch is a partial profile update; nil fields stay untouched.
type ProfilePatch struct {
	FirstName       *string
	LastName        *string
	Bio             *string
	Theme           *string
	HasSeenTutorial *bool
}

// TokenIssuer mints session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}

// UserService provides account operations:
// - Register / Login: create or verify an account and mint a session token
// - Profile / UpdateProfile / ChangePassword: manage the signed-in account
// - ProfileImageUpload: presign an avatar upload
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenIssuer
	images      storage.Presigner
	newID       func() string
}

// NewUserService constructs a UserService. images may be nil when object
// storage is not configured.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens TokenIssuer, images storage.Presigner) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		images:      images,
		newID:       uuid.NewString,
	}
}

// Register creates an account and returns it with a fresh token. A taken
// email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, reg Registration) (*models.User, string, error) {
	email := common.NormalizeEmail(reg.Email)
	if email == "" || reg.Password == "" || strings.TrimSpace(reg.FirstName) == "" || strings.TrimSpace(reg.LastName) == "" {
		return nil, "", invalid("Please fill in all fields")
	}
	if err := checkEmailAndPassword(email, reg.Password); err != nil {
		return nil, "", err
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:           s.newID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Theme:        DefaultTheme,
	}

	u, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return u, token, nil
}

// Login verifies credentials. Unknown emails and wrong passwords both yield
// common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, "", invalid("Please fill in all fields")
	}

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, common.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", common.ErrorInternal
	}
	if err := cryptox.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", common.ErrorInternal
	}
	return user, token, nil
}

// Profile returns the account of userID.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile applies patch to the account of userID.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.User, error) {
	if patch.Theme != nil && !themes[*patch.Theme] {
		return nil, invalid(fmt.Sprintf("Unknown theme %q", *patch.Theme))
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		u.FirstName = strings.TrimSpace(*patch.FirstName)
	}
	if patch.LastName != nil {
		u.LastName = strings.TrimSpace(*patch.LastName)
	}
	if patch.Bio != nil {
		u.Bio = *patch.Bio
	}
	if patch.Theme != nil {
		u.Theme = *patch.Theme
	}
	if patch.HasSeenTutorial != nil {
		u.HasSeenTutorial = *patch.HasSeenTutorial
	}

	if err := repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword replaces the password after checking the current one. A
// wrong current password is a validation error, not an auth failure, so the
// session survives it.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return invalid("Please fill in all fields")
	}
	if len(next) < common.MinPasswordLength {
		return invalid("Password must be at least 6 characters")
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := cryptox.CheckPassword(u.PasswordHash, current); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return invalid("Current password is incorrect")
		}
		return fmt.Errorf("check password: %w", err)
	}

	hash, err := cryptox.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return repo.UpdatePassword(ctx, userID, hash)
}

// ProfileImageUpload presigns an avatar upload and records the resulting
// public URL on the account.
func (s *UserService) ProfileImageUpload(ctx context.Context, userID, contentType string) (storage.Upload, error) {
	if s.images == nil {
		return storage.Upload{}, storage.ErrDisabled
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return storage.Upload{}, err
	}

	up, err := s.images.PresignImageUpload(ctx, userID, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return storage.Upload{}, invalid("Please choose a PNG, JPEG, GIF or WebP image")
		}
		return storage.Upload{}, err
	}

	u.ProfileImage = up.PublicURL
	if err := repo.Update(ctx, u); err != nil {
		return storage.Upload{}, err
	}
	return up, nil
}

func checkEmailAndPassword(email, password string) error {
	if !common.IsValidEmail(email) {
		return invalid("Please enter a valid email address")
	}
	if len(password) < common.MinPasswordLength {
		return invalid("Password must be at least 6 characters")
	}
	return nil
}
