// Package auth provides authentication services
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/findosh/brandsales/internal/config"
	"github.com/findosh/brandsales/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DashboardSubject is the JWT subject of password-gated sessions
const DashboardSubject = "dashboard"

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrLoginDisabled      = errors.New("dashboard password not configured")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidToken       = errors.New("invalid token")
)

// Service handles authentication operations
type Service struct {
	cfg          *config.Config
	passwordHash []byte
}

// NewService creates a new auth service. A plain-text dashboard password is
// hashed once at startup; values that already look like bcrypt hashes are
// used as-is.
func NewService(cfg *config.Config) (*Service, error) {
	s := &Service{cfg: cfg}

	switch pw := cfg.DashboardPassword; {
	case pw == "":
	case strings.HasPrefix(pw, "$2"):
		s.passwordHash = []byte(pw)
	default:
		hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		s.passwordHash = hash
	}

	return s, nil
}

// APIKeyRequired reports whether API calls must present the shared secret
func (s *Service) APIKeyRequired() bool {
	return s.cfg.APISecretKey != ""
}

// LoginEnabled reports whether a dashboard password is configured
func (s *Service) LoginEnabled() bool {
	return len(s.passwordHash) > 0
}

// Open reports whether no credentials are configured at all, in which case
// API routes are served without authentication
func (s *Service) Open() bool {
	return !s.APIKeyRequired() && !s.LoginEnabled()
}

// CheckAPIKey compares a presented token with the shared secret in constant
// time
func (s *Service) CheckAPIKey(token string) bool {
	if !s.APIKeyRequired() || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.APISecretKey)) == 1
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	Session *models.Session
	Token   string
	Expires time.Time
}

// Login verifies the dashboard password and issues a session token
func (s *Service) Login(password string) (*LoginResult, error) {
	if !s.LoginEnabled() {
		return nil, ErrLoginDisabled
	}

	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &models.Session{
		ID:        uuid.New(),
		Subject:   DashboardSubject,
		ExpiresAt: now.Add(s.cfg.SessionDuration),
		CreatedAt: now,
	}

	token, err := s.createToken(session)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}
	session.Token = token

	return &LoginResult{
		Session: session,
		Token:   token,
		Expires: session.ExpiresAt,
	}, nil
}

// ValidateToken verifies a JWT token and returns its session
func (s *Service) ValidateToken(tokenString string) (*models.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	exp, ok := claims["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, ErrSessionExpired
	}

	subject, _ := claims["sub"].(string)
	if subject != DashboardSubject {
		return nil, ErrInvalidToken
	}

	id, err := uuid.Parse(fmt.Sprint(claims["sid"]))
	if err != nil {
		return nil, ErrInvalidToken
	}

	iat, _ := claims["iat"].(float64)
	return &models.Session{
		ID:        id,
		Subject:   subject,
		Token:     tokenString,
		ExpiresAt: time.Unix(int64(exp), 0).UTC(),
		CreatedAt: time.Unix(int64(iat), 0).UTC(),
	}, nil
}

func (s *Service) createToken(session *models.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub": session.Subject,
		"sid": session.ID.String(),
		"exp": session.ExpiresAt.Unix(),
		"iat": session.CreatedAt.Unix(),
		"jti": generateJTI(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.SecretKey))
}

func generateJTI() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
