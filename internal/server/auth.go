package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/htdinh/tictac/internal/model"
	"github.com/htdinh/tictac/internal/store"
)

// AuthService manages accounts and bearer tokens. Users live under a
// single store key, so all mutations go through the mutex.
type AuthService struct {
	mu        sync.Mutex
	store     *store.Store
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAuthService(st *store.Store, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		store:     st,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// AuthResult is the response body for register and login
type AuthResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

func (s *AuthService) Register(email, password string) (*AuthResult, *APIError) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return nil, errBadRequest("invalid_email", "email is required")
	}
	if len(password) < 6 {
		return nil, errBadRequest("invalid_password", "password must be at least 6 characters")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, errInternal("failed to load users")
	}
	for _, u := range users {
		if u.Email == normalized {
			return nil, errConflict("email_exists", "email already registered")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errInternal("failed to secure password")
	}

	user := model.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	users = append(users, user)
	if err := s.store.Put(store.KeyUsers, users); err != nil {
		return nil, errInternal("failed to save user")
	}

	token, apiErr := s.issueToken(user)
	if apiErr != nil {
		return nil, apiErr
	}

	return &AuthResult{Token: token, User: user.Sanitized()}, nil
}

func (s *AuthService) Login(email, password string) (*AuthResult, *APIError) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, errBadRequest("invalid_credentials", "email and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, errInternal("failed to load users")
	}

	for _, u := range users {
		if u.Email != normalized {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			break
		}
		token, apiErr := s.issueToken(u)
		if apiErr != nil {
			return nil, apiErr
		}
		return &AuthResult{Token: token, User: u.Sanitized()}, nil
	}

	return nil, errUnauthorized("invalid email or password")
}

// GetUser looks up a user by id
func (s *AuthService) GetUser(id string) (*model.User, *APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.loadUsers()
	if err != nil {
		return nil, errInternal("failed to load users")
	}
	for _, u := range users {
		if u.ID == id {
			sanitized := u.Sanitized()
			return &sanitized, nil
		}
	}
	return nil, errNotFound("user_not_found", "user not found")
}

// ParseToken validates a bearer token and returns the user id
func (s *AuthService) ParseToken(tokenString string) (string, *APIError) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", errUnauthorized("invalid token")
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errUnauthorized("invalid token")
	}

	return claims.Subject, nil
}

func (s *AuthService) issueToken(user model.User) (string, *APIError) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errInternal("failed to sign token")
	}
	return signed, nil
}

func (s *AuthService) loadUsers() ([]model.User, error) {
	var users []model.User
	if _, err := s.store.Get(store.KeyUsers, &users); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	return users, nil
}
