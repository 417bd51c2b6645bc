package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	FindByUid(ctx context.Context, uid string) (*User, error)
	UpdateRole(ctx context.Context, id int, role Role) error
}

type RepoImpl struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *RepoImpl {
	return &RepoImpl{db: db}
}

func (r *RepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	if user.Role == "" {
		user.Role = RoleMember
	}
	query := "INSERT INTO app_user (uid, display_name, email, role) VALUES ($1, $2, $3, $4) RETURNING id"

	var id int
	err := r.db.QueryRowContext(ctx, query, user.Uid, user.DisplayName, user.Email, string(user.Role)).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not store user: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := "SELECT id, uid, display_name, email, role FROM app_user WHERE id = $1"

	var user User
	var role string
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&user.Id, &user.Uid, &user.DisplayName, &user.Email, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNoUser
		}
		err := fmt.Errorf("failed to get user %d: %w", id, err)
		log.Error(err)
		return User{}, err
	}
	user.Role = Role(role)
	return user, nil
}

func (r *RepoImpl) FindByUid(ctx context.Context, uid string) (*User, error) {
	query := "SELECT id, uid, display_name, email, role FROM app_user WHERE uid = $1"

	var user User
	var role string
	err := r.db.QueryRowContext(ctx, query, uid).
		Scan(&user.Id, &user.Uid, &user.DisplayName, &user.Email, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		err := fmt.Errorf("failed to find user by uid: %w", err)
		log.Error(err)
		return nil, err
	}
	user.Role = Role(role)
	return &user, nil
}

func (r *RepoImpl) UpdateRole(ctx context.Context, id int, role Role) error {
	query := "UPDATE app_user SET role = $1 WHERE id = $2"

	result, err := r.db.ExecContext(ctx, query, string(role), id)
	if err != nil {
		err := fmt.Errorf("could not update user role: %w", err)
		log.Error(err)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNoUser
	}
	return nil
}
