package api

import (
	"context"

	"github.com/adamwoolhether/adminapi/client"
)

// User is a system account as reported by the backend.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	CreatedTime string `json:"createdTime,omitempty"`
	UpdatedTime string `json:"updatedTime,omitempty"`
}

// CreateUserRequest creates an account with an initial password.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=64"`
	Role     string `json:"role" validate:"required,oneof=ADMIN USER"`
}

// UpdateUserRequest changes an account. An empty Password keeps the
// current one.
type UpdateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password,omitempty" validate:"omitempty,min=6,max=64"`
	Role     string `json:"role" validate:"required,oneof=ADMIN USER"`
}

// Users manages system accounts.
type Users struct {
	c *client.Client
}

func (u *Users) List(ctx context.Context) ([]User, error) {
	var users []User
	if err := u.c.Get(ctx, PathUsers, client.WithDestination(&users)); err != nil {
		return nil, err
	}

	return users, nil
}

func (u *Users) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	var user User
	if err := u.c.Post(ctx, PathUsers, req, client.WithDestination(&user)); err != nil {
		return User{}, err
	}

	return user, nil
}

func (u *Users) Update(ctx context.Context, id int64, req UpdateUserRequest) (User, error) {
	var user User
	if err := u.c.Put(ctx, UserPath(id), req, client.WithDestination(&user)); err != nil {
		return User{}, err
	}

	return user, nil
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	return u.c.Delete(ctx, UserPath(id))
}
