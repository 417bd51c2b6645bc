package user

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrNotAllowed = errors.New("operation not allowed for this user")

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUser(ctx context.Context, id int) (User, error)
	// EnsureUser returns the user with the given identity-provider uid,
	// creating a member record on first sight.
	EnsureUser(ctx context.Context, uid string, displayName string, email string) (User, error)
	ChangeRole(ctx context.Context, id int, role Role) (User, error)
}

type ServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

func (s *ServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetUser(ctx, userId)
}

func (s *ServiceImpl) GetUser(ctx context.Context, id int) (User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *ServiceImpl) EnsureUser(ctx context.Context, uid string, displayName string, email string) (User, error) {
	existing, err := s.repo.FindByUid(ctx, uid)
	if err != nil {
		return User{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	log.Debugf("first sign-in for uid %s, creating member record", uid)
	newUser := User{
		Uid:         uid,
		DisplayName: displayName,
		Email:       email,
		Role:        RoleMember,
	}
	id, err := s.repo.CreateUser(ctx, newUser)
	if err != nil {
		return User{}, err
	}
	newUser.Id = id
	return newUser, nil
}

// ChangeRole updates another user's role. Only staff may do this.
func (s *ServiceImpl) ChangeRole(ctx context.Context, id int, role Role) (User, error) {
	current, err := CurrentUser(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if current.Role != RoleStaff {
		return User{}, ErrNotAllowed
	}
	if role != RoleMember && role != RoleStaff {
		return User{}, fmt.Errorf("unknown role: %s", role)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return User{}, err
	}
	return s.repo.GetUser(ctx, id)
}
