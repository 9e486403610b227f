package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidProfile wraps profile validation failures.
	ErrInvalidProfile = errors.New("invalid profile")

	errNoRepo = errors.New("users service not configured")
)

type Service struct {
	repo     Repo
	validate *validator.Validate
}

func NewService(repo Repo) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// RecordSignIn stores the identity reported by the identity provider.
func (s *Service) RecordSignIn(ctx context.Context, id Identity) (User, error) {
	if s == nil || s.repo == nil {
		return User{}, errNoRepo
	}
	id.ID = strings.TrimSpace(id.ID)
	id.Email = strings.TrimSpace(id.Email)
	if id.ID == "" || id.Email == "" {
		return User{}, errors.New("user id and email are required")
	}
	id.Name = strings.TrimSpace(id.Name)
	return s.repo.RecordSignIn(ctx, id)
}

func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	if s == nil || s.repo == nil {
		return User{}, errNoRepo
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrNotFound
	}
	return s.repo.Get(ctx, userID)
}

// SetProfile trims and validates before storing.
func (s *Service) SetProfile(ctx context.Context, userID string, p Profile) (User, error) {
	if s == nil || s.repo == nil {
		return User{}, errNoRepo
	}
	p.JobTitle = strings.TrimSpace(p.JobTitle)
	p.Department = strings.TrimSpace(p.Department)
	if err := s.validate.Struct(p); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return s.repo.SetProfile(ctx, userID, p)
}

// Prefill maps the account onto common author fields. Callers keep only the
// keys their form declares.
func (u User) Prefill() map[string]string {
	out := map[string]string{}
	if u.Name != "" {
		out["preparedBy"] = u.Name
		out["employeeName"] = u.Name
		out["from"] = u.Name
	}
	if u.Department != "" {
		out["department"] = u.Department
	}
	if u.JobTitle != "" {
		out["role"] = u.JobTitle
	}
	return out
}
