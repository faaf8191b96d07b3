package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown user or a
// wrong password. The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid username or password")

// UserService provides account lookup and password checks.
type UserService interface {
	Create(ctx context.Context, in UserInput) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// EnsureAdmin creates an admin account when no user with that name exists.
	EnsureAdmin(ctx context.Context, username, password string) (created bool, err error)
}

type userService struct {
	docs *Documents
	log  zerolog.Logger
	cost int
}

// NewUserService constructs a UserService over the shared document.
func NewUserService(docs *Documents, log zerolog.Logger) UserService {
	return &userService{docs: docs, log: log.With().Str("service", "users").Logger(), cost: bcrypt.DefaultCost}
}

func findUser(db *Database, match func(u *User) bool) *User {
	for i := range db.Users {
		if match(&db.Users[i]) {
			u := db.Users[i]
			return &u
		}
	}
	return nil
}

func (s *userService) Create(ctx context.Context, in UserInput) (*User, error) {
	rec := Record{"username": in.Username, "password": in.Password}
	if in.ID != "" {
		rec["id"] = in.ID
	}
	if in.Role != "" {
		rec["role"] = string(in.Role)
	}
	valid, err := ValidateUser(ApplyUserDefaults(rec))
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(valid.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{ID: valid.ID, Username: valid.Username, PasswordHash: string(hash), Role: valid.Role}

	err = s.docs.Update(ctx, func(db *Database) error {
		if findUser(db, func(x *User) bool { return strings.EqualFold(x.Username, u.Username) }) != nil {
			return &ValidationError{Entity: "user", Errors: []FieldError{{
				Field: "username", Kind: KindInvalidEnum, Message: "is already taken",
			}}}
		}
		db.Users = append(db.Users, *u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", u.Username).Str("role", string(u.Role)).Msg("user created")
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (*User, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(username)
	if u := findUser(db, func(x *User) bool { return strings.EqualFold(x.Username, name) }); u != nil {
		return u, nil
	}
	return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
}

func (s *userService) GetByID(ctx context.Context, id string) (*User, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	if u := findUser(db, func(x *User) bool { return x.ID == id }); u != nil {
		return u, nil
	}
	return nil, fmt.Errorf("user id=%s: %w", id, ErrNotFound)
}

func (s *userService) List(ctx context.Context) ([]User, error) {
	db, err := s.docs.Read(ctx)
	if err != nil {
		return nil, err
	}
	return append([]User{}, db.Users...), nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	_, err := s.GetByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if _, err := s.Create(ctx, UserInput{Username: username, Password: password, Role: RoleAdmin}); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	return true, nil
}
