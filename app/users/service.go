package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/app/mail"
)

// Service creates and lists users.
type Service struct {
	repo   *Repository
	mailer mail.Mailer
	log    *zap.Logger
}

// NewService is the constructor bound in the container.
func NewService(repo *Repository, mailer mail.Mailer, log *zap.Logger) (*Service, error) {
	return &Service{repo: repo, mailer: mailer, log: log}, nil
}

// Create stores a new user and sends a welcome email. A failed email is
// logged and does not undo the creation.
func (s *Service) Create(ctx context.Context, name, email string) (User, error) {
	u := User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Add(u); err != nil {
		return User{}, err
	}
	s.log.Info("user created", zap.Stringer("user_id", u.ID), zap.String("email", u.Email))

	err := s.mailer.Send(ctx, mail.Message{
		To:      u.Email,
		Subject: "Welcome, " + u.Name + "!",
		Body:    fmt.Sprintf("Hi %s, your account has been created.", u.Name),
	})
	if err != nil {
		s.log.Warn("sending welcome email", zap.Stringer("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

// List returns every user, oldest first.
func (s *Service) List() []User {
	return s.repo.All()
}

// Find returns the user with the given id string.
func (s *Service) Find(id string) (User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return s.repo.Find(uid)
}
