package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/agrosig/agrosig-api/internal/user/entity"
	userrepo "github.com/agrosig/agrosig-api/internal/user/repo"
)

var (
	ErrMissingFields   = errors.New("there are missing fields to submit in the application")
	ErrDuplicateUser   = errors.New("user already exists")
	ErrWeakPassword    = errors.New("password must be at least 8 characters long")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrUserNotFound    = errors.New("user not found")
	ErrExternalAccount = errors.New("account is linked to an external identity provider")
	ErrAccountInactive = errors.New("account is inactive")
	ErrBadCredentials  = errors.New("invalid credentials")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserStore captures the persistence operations the authentication flow
// needs.
type UserStore interface {
	Create(ctx context.Context, u *entity.User) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// RegisterInput is the registration payload.
type RegisterInput struct {
	FirstName       string  `json:"first_name"`
	PaternalSurname string  `json:"paternal_surname"`
	MaternalSurname string  `json:"maternal_surname"`
	Email           string  `json:"email"`
	Password        string  `json:"password"`
	ImageUser       *string `json:"image_user,omitempty"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the authenticated user and both tokens. The refresh
// token lets clients renew the access token through the gate without
// re-authenticating.
type LoginResult struct {
	User         *entity.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refresh_token"`
}

// Service orchestrates registration and login.
type Service struct {
	users  UserStore
	hasher PasswordHasher
	tokens *TokenService
}

func NewService(users UserStore, hasher PasswordHasher, tokens *TokenService) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{users: users, hasher: hasher, tokens: tokens}
}

// Register creates a new member account and returns the persisted user along
// with an access token for the new identity.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, string, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.PaternalSurname = strings.TrimSpace(in.PaternalSurname)
	in.MaternalSurname = strings.TrimSpace(in.MaternalSurname)
	in.Email = strings.TrimSpace(in.Email)
	if in.FirstName == "" || in.PaternalSurname == "" || in.MaternalSurname == "" || in.Email == "" || in.Password == "" {
		return nil, "", ErrMissingFields
	}

	// best-effort duplicate check; the unique index on email is the backstop
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, "", ErrDuplicateUser
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", fmt.Errorf("lookup user by email: %w", err)
	}

	if len(in.Password) < 8 {
		return nil, "", ErrWeakPassword
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, "", ErrInvalidEmail
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &entity.User{
		RoleID:          entity.RoleMember,
		FirstName:       in.FirstName,
		PaternalSurname: in.PaternalSurname,
		MaternalSurname: in.MaternalSurname,
		Email:           in.Email,
		PasswordHash:    hash,
		ImageUser:       in.ImageUser,
		ConfiguredPlot:  false,
		IsActive:        true,
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return nil, "", ErrDuplicateUser
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.IssueAccessToken(created.ID, created.RoleID)
	if err != nil {
		return nil, "", fmt.Errorf("issue access token: %w", err)
	}
	return created, token, nil
}

// Login authenticates with email + password and issues both tokens.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if u.External() {
		return nil, ErrExternalAccount
	}
	if !u.IsActive {
		return nil, ErrAccountInactive
	}
	if !s.hasher.Verify(u.PasswordHash, in.Password) {
		return nil, ErrBadCredentials
	}

	access, err := s.tokens.IssueAccessToken(u.ID, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID, u.RoleID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	return &LoginResult{User: u, Token: access, RefreshToken: refresh}, nil
}
