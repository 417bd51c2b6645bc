package user

import (
	"context"
)

type StubUserRepo struct {
	Users  []User
	nextId int
}

func (s *StubUserRepo) CreateUser(ctx context.Context, user User) (int, error) {
	s.nextId++
	user.Id = s.nextId
	s.Users = append(s.Users, user)
	return user.Id, nil
}

func (s *StubUserRepo) GetUser(ctx context.Context, id int) (User, error) {
	for _, u := range s.Users {
		if u.Id == id {
			return u, nil
		}
	}
	return User{}, ErrNoUser
}

func (s *StubUserRepo) FindByUid(ctx context.Context, uid string) (*User, error) {
	for _, u := range s.Users {
		if u.Uid == uid {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (s *StubUserRepo) UpdateRole(ctx context.Context, id int, role Role) error {
	for i, u := range s.Users {
		if u.Id == id {
			s.Users[i].Role = role
			return nil
		}
	}
	return ErrNoUser
}
