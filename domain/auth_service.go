package domain

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists user credentials and enforces email uniqueness.
type UserStore interface {
	GetUser(ctx context.Context, email string) (*User, error)
	UserExists(ctx context.Context, email string) (bool, error)
	InsertUser(ctx context.Context, u User) error
}

// AuthService registers users and authenticates login attempts.
type AuthService struct{ users UserStore }

func NewAuthService(users UserStore) AuthService { return AuthService{users: users} }

// Register stores a new user with a bcrypt password hash. A second
// registration with the same email fails with ErrEmailTaken.
func (s AuthService) Register(ctx context.Context, email, password string) (*User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	taken, err := s.users.UserExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.InsertUser(ctx, u); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user": u.ID}).Info("user registered")
	return &u, nil
}

// Login authenticates an email/password pair. Unknown emails and password
// mismatches are indistinguishable to the caller.
func (s AuthService) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetUser(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func validateCredentials(email, password string) error {
	v := newValidationError()
	if _, err := mail.ParseAddress(email); err != nil {
		v.add("email", "Email must be valid")
	}
	if password == "" {
		v.add("password", "Password is required")
	}
	return v.err()
}
