package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrNotConfigured      = errors.New("authentication is not configured")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type Config struct {
	Secret       string
	Username     string
	PasswordHash string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type Claims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Authenticator checks the single admin account and issues HS256 tokens.
type Authenticator struct {
	config Config
	now    func() time.Time
}

func NewAuthenticator(config Config) *Authenticator {
	if config.AccessTTL <= 0 {
		config.AccessTTL = 60 * time.Minute
	}
	if config.RefreshTTL <= 0 {
		config.RefreshTTL = 24 * time.Hour
	}
	return &Authenticator{config: config, now: time.Now}
}

func (a *Authenticator) configured() bool {
	return a.config.Secret != "" && a.config.Username != "" && a.config.PasswordHash != ""
}

func (a *Authenticator) CheckCredentials(username, password string) error {
	if !a.configured() {
		return ErrNotConfigured
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.config.Username)) != 1 {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.config.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (a *Authenticator) Login(username, password string) (*TokenPair, error) {
	if err := a.CheckCredentials(username, password); err != nil {
		return nil, err
	}

	access, err := a.sign(username, TokenAccess, a.config.AccessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := a.sign(username, TokenRefresh, a.config.RefreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (a *Authenticator) Refresh(refreshToken string) (string, error) {
	claims, err := a.parse(refreshToken, TokenRefresh)
	if err != nil {
		return "", err
	}
	return a.sign(claims.Subject, TokenAccess, a.config.AccessTTL)
}

func (a *Authenticator) ParseAccess(token string) (*Claims, error) {
	return a.parse(token, TokenAccess)
}

func (a *Authenticator) sign(subject, tokenType string, ttl time.Duration) (string, error) {
	if a.config.Secret == "" {
		return "", ErrNotConfigured
	}

	now := a.now()
	claims := Claims{
		Type: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) parse(tokenStr, tokenType string) (*Claims, error) {
	if a.config.Secret == "" {
		return nil, ErrNotConfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(a.config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
