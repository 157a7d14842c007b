package auth

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrosig/agrosig-api/internal/user/entity"
	userrepo "github.com/agrosig/agrosig-api/internal/user/repo"
)

type fakeUserStore struct {
	byEmail map[string]*entity.User
	nextID  int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*entity.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *entity.User) (*entity.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, userrepo.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = f.nextID
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		FirstName:       "Maria",
		PaternalSurname: "Lopez",
		MaternalSurname: "Garcia",
		Email:           "maria@example.com",
		Password:        "supersecret",
	}
}

func TestRegisterSuccess(t *testing.T) {
	store := newFakeUserStore()
	tokens := testTokenService()
	svc := NewService(store, BcryptHasher{}, tokens)

	created, token, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.Equal(t, entity.RoleMember, created.RoleID)
	assert.True(t, created.IsActive)
	assert.False(t, created.ConfiguredPlot)
	assert.NotEqual(t, "supersecret", created.PasswordHash)

	claims, err := tokens.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, created.RoleID, claims.RoleID)
}

func TestRegisterValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantErr error
	}{
		{"missing first name", func(in *RegisterInput) { in.FirstName = "" }, ErrMissingFields},
		{"missing paternal surname", func(in *RegisterInput) { in.PaternalSurname = " " }, ErrMissingFields},
		{"missing maternal surname", func(in *RegisterInput) { in.MaternalSurname = "" }, ErrMissingFields},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, ErrMissingFields},
		{"missing password", func(in *RegisterInput) { in.Password = "" }, ErrMissingFields},
		{"short password", func(in *RegisterInput) { in.Password = "seven77" }, ErrWeakPassword},
		{"bad email shape", func(in *RegisterInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		{"email without tld", func(in *RegisterInput) { in.Email = "user@host" }, ErrInvalidEmail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(newFakeUserStore(), BcryptHasher{}, testTokenService())
			in := validRegisterInput()
			tc.mutate(&in)
			_, _, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, BcryptHasher{}, testTokenService())

	_, _, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, ErrDuplicateUser)
}

func registerTestUser(t *testing.T, svc *Service) *entity.User {
	t.Helper()
	created, _, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	return created
}

func TestLoginSuccess(t *testing.T) {
	store := newFakeUserStore()
	tokens := testTokenService()
	svc := NewService(store, BcryptHasher{}, tokens)
	created := registerTestUser(t, svc)

	result, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com", Password: "supersecret"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, result.User.ID)

	accessClaims, err := tokens.VerifyAccessToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, accessClaims.UserID)

	refreshClaims, err := tokens.VerifyRefreshToken(result.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, refreshClaims.UserID)
	assert.Equal(t, created.RoleID, refreshClaims.RoleID)
}

func TestLoginFailures(t *testing.T) {
	store := newFakeUserStore()
	svc := NewService(store, BcryptHasher{}, testTokenService())
	created := registerTestUser(t, svc)

	t.Run("missing fields", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com"})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com", Password: "wrongwrong"})
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		created.IsActive = false
		defer func() { created.IsActive = true }()
		_, err := svc.Login(context.Background(), LoginInput{Email: "maria@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, ErrAccountInactive)
	})

	t.Run("external account", func(t *testing.T) {
		googleID := "google-oauth-123"
		external := &entity.User{
			ID:       99,
			RoleID:   entity.RoleMember,
			Email:    "fed@example.com",
			GoogleID: &googleID,
			IsActive: true,
		}
		store.byEmail[external.Email] = external
		_, err := svc.Login(context.Background(), LoginInput{Email: "fed@example.com", Password: "whatever1"})
		assert.ErrorIs(t, err, ErrExternalAccount)
	})
}
