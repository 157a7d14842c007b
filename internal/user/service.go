package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/agrosig/agrosig-api/internal/auth"
	"github.com/agrosig/agrosig-api/internal/user/entity"
	userrepo "github.com/agrosig/agrosig-api/internal/user/repo"
)

var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("email already in use")
	ErrMissingFields    = errors.New("there are missing fields to submit in the application")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrSamePassword     = errors.New("new password must differ from the current one")
	ErrPasswordMismatch = errors.New("new password and confirmation do not match")
	ErrWeakPassword     = errors.New("password must be at least 8 characters long")
)

// Store captures the persistence operations the user domain needs.
type Store interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]entity.User, error)
	UpdateProfile(ctx context.Context, id int64, firstName, paternalSurname, maternalSurname, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
	UpdateImage(ctx context.Context, id int64, imagePath string) (*entity.User, error)
	Delete(ctx context.Context, id int64) error
}

// Service implements profile, password, and image update rules.
type Service struct {
	store  Store
	hasher auth.PasswordHasher
}

func NewService(store Store, hasher auth.PasswordHasher) *Service {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}
	return &Service{store: store, hasher: hasher}
}

// GetByID fetches a user.
func (s *Service) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// List returns every user.
func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	return s.store.List(ctx)
}

// UpdateProfile applies the provided name and email fields; absent fields
// keep their stored values. A new email must not collide with a different
// existing account.
func (s *Service) UpdateProfile(ctx context.Context, id int64, in entity.ProfileUpdate) (*entity.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	firstName := coalesce(in.FirstName, u.FirstName)
	paternalSurname := coalesce(in.PaternalSurname, u.PaternalSurname)
	maternalSurname := coalesce(in.MaternalSurname, u.MaternalSurname)
	email := coalesce(in.Email, u.Email)

	if email != u.Email {
		if other, err := s.store.GetByEmail(ctx, email); err == nil && other.ID != id {
			return nil, ErrDuplicateEmail
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("lookup user by email: %w", err)
		}
	}

	updated, err := s.store.UpdateProfile(ctx, id, firstName, paternalSurname, maternalSurname, email)
	if err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return updated, nil
}

// UpdatePassword verifies the old password and persists the hash of the new
// one.
func (s *Service) UpdatePassword(ctx context.Context, id int64, oldPassword, newPassword, repeatedPassword string) (*entity.User, error) {
	if oldPassword == "" || newPassword == "" || repeatedPassword == "" {
		return nil, ErrMissingFields
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(u.PasswordHash, oldPassword) {
		return nil, ErrBadCredentials
	}
	if newPassword == oldPassword {
		return nil, ErrSamePassword
	}
	if newPassword != repeatedPassword {
		return nil, ErrPasswordMismatch
	}
	if len(newPassword) < 8 {
		return nil, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.store.UpdatePassword(ctx, id, hash); err != nil {
		return nil, fmt.Errorf("update password: %w", err)
	}
	return u, nil
}

// UpdateImage persists a new profile image reference and returns the updated
// user plus the superseded reference so the caller can reclaim the old file.
func (s *Service) UpdateImage(ctx context.Context, id int64, imagePath string) (*entity.User, string, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	var oldImage string
	if u.ImageUser != nil {
		oldImage = *u.ImageUser
	}

	updated, err := s.store.UpdateImage(ctx, id, imagePath)
	if err != nil {
		return nil, "", fmt.Errorf("update image: %w", err)
	}
	return updated, oldImage, nil
}

// Delete removes the user row permanently.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func coalesce(v *string, def string) string {
	if v != nil && *v != "" {
		return *v
	}
	return def
}
