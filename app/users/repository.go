package users

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Repository stores users in memory in insertion order.
type Repository struct {
	mu      sync.RWMutex
	users   []User
	byEmail map[string]int
}

// NewRepository returns an empty Repository.
func NewRepository() *Repository {
	return &Repository{byEmail: make(map[string]int)}
}

// Add stores u. Emails are unique, compared case-insensitively.
func (r *Repository) Add(u User) error {
	key := strings.ToLower(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[key]; taken {
		return fmt.Errorf("%w: %s", ErrEmailTaken, u.Email)
	}
	r.byEmail[key] = len(r.users)
	r.users = append(r.users, u)
	return nil
}

// All returns every user, oldest first.
func (r *Repository) All() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]User{}, r.users...)
}

// Find returns the user with id.
func (r *Repository) Find(id uuid.UUID) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := slices.IndexFunc(r.users, func(u User) bool { return u.ID == id })
	if i < 0 {
		return User{}, ErrNotFound
	}
	return r.users[i], nil
}

// Len returns the number of stored users.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

// seedFile is the YAML layout read by LoadSeed:
//
//	users:
//	  - name: Ada Lovelace
//	    email: ada@example.com
type seedFile struct {
	Users []User `yaml:"users"`
}

// LoadSeed adds the users listed in the YAML file at path. Missing IDs and
// timestamps are generated.
func (r *Repository) LoadSeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("users: reading seed: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("users: parsing seed %s: %w", path, err)
	}
	for _, u := range seed.Users {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = time.Now().UTC()
		}
		if err := r.Add(u); err != nil {
			return fmt.Errorf("users: seeding %s: %w", path, err)
		}
	}
	return nil
}
