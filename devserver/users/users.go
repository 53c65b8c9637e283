// Package users provides the credential backend behind the development
// server's login endpoint.
package users

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned when the email is unknown or the
// password does not match.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DefaultRole is assigned to users configured without a role.
const DefaultRole = "user"

// User is an account allowed to log in.
type User struct {
	ID       string `json:"id" mapstructure:"id"`
	Email    string `json:"email" mapstructure:"email"`
	Password string `json:"password" mapstructure:"password"`
	Role     string `json:"role" mapstructure:"role"`
}

// Config holds configuration for loading users.
type Config struct {
	Inline []User `mapstructure:"inline"` // Inline users from config
	File   string `mapstructure:"file"`   // Path to JSON file containing users
}

// Store looks users up by email.
type Store struct {
	byEmail map[string]User
}

// NewStore creates a Store from inline users and, when set, a users file.
// File entries take precedence over inline entries with the same email.
func NewStore(cfg Config) (*Store, error) {
	s := &Store{byEmail: make(map[string]User)}
	s.add(cfg.Inline)

	if cfg.File != "" {
		fileUsers, err := LoadUsersFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		s.add(fileUsers)
	}

	return s, nil
}

func (s *Store) add(list []User) {
	for _, u := range list {
		if u.Email == "" || u.Password == "" {
			continue
		}
		if u.ID == "" {
			u.ID = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(u.Email))).String()
		}
		if u.Role == "" {
			u.Role = DefaultRole
		}
		s.byEmail[strings.ToLower(u.Email)] = u
	}
}

// Len returns the number of users.
func (s *Store) Len() int {
	return len(s.byEmail)
}

// Authenticate returns the user whose email and password match.
func (s *Store) Authenticate(email, password string) (User, error) {
	u, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Lookup returns the user with the given email.
func (s *Store) Lookup(email string) (User, error) {
	u, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", email, ErrInvalidCredentials)
	}
	return u, nil
}

// LoadUsersFromFile loads users from a JSON file holding an array:
//
//	[
//	  {"email": "user1@gmail.com", "password": "secret", "role": "admin"}
//	]
func LoadUsersFromFile(path string) ([]User, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var list []User
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	return list, nil
}
