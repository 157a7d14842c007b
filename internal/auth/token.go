package auth

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failures are split into two kinds because the authentication
// gate branches on expiry specifically.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload embedded in both access and refresh tokens.
type Claims struct {
	UserID int64 `json:"user_id"`
	RoleID int64 `json:"role_id"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// TokenConfigFromEnv reads token settings from env vars.
func TokenConfigFromEnv() TokenConfig {
	cfg := TokenConfig{
		AccessSecret:  envOr("JWT_SECRET", "secret"),
		RefreshSecret: envOr("JWT_REFRESH_SECRET", "refresh-secret"),
		AccessTTL:     durationOr("JWT_EXPIRE_IN", 12*time.Hour),
		RefreshTTL:    durationOr("JWT_REFRESH_EXPIRE_IN", 7*24*time.Hour),
		Issuer:        envOr("JWT_ISSUER", "agrosig-api"),
	}
	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// TokenService issues and verifies HS256 JWTs. Access and refresh tokens
// carry the same claim shape but are signed with independent secrets, so one
// kind never verifies under the other's path.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		issuer:        cfg.Issuer,
	}
}

// IssueAccessToken signs a short-lived access token for the identity.
func (s *TokenService) IssueAccessToken(userID, roleID int64) (string, error) {
	return s.sign(userID, roleID, s.accessSecret, s.accessTTL)
}

// IssueRefreshToken signs a longer-lived refresh token for the identity.
func (s *TokenService) IssueRefreshToken(userID, roleID int64) (string, error) {
	return s.sign(userID, roleID, s.refreshSecret, s.refreshTTL)
}

// VerifyAccessToken validates an access token and returns its claims, or
// ErrTokenExpired / ErrTokenInvalid.
func (s *TokenService) VerifyAccessToken(token string) (*Claims, error) {
	return s.verify(token, s.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its claims, or
// ErrTokenExpired / ErrTokenInvalid.
func (s *TokenService) VerifyRefreshToken(token string) (*Claims, error) {
	return s.verify(token, s.refreshSecret)
}

func (s *TokenService) sign(userID, roleID int64, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RoleID: roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *TokenService) verify(token string, secret []byte) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}
