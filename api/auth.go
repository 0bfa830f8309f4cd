package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/session"
)

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Auth signs in and checks stored credentials.
type Auth struct {
	c    *client.Client
	sess *session.Session
}

// Login exchanges a username and password for a token and stores the
// result in the session. A rejected login never triggers the
// unauthorized hook.
func (a *Auth) Login(ctx context.Context, req LoginRequest) (session.Credentials, error) {
	var resp loginResponse
	err := a.c.Post(ctx, PathLogin, req,
		client.WithSkipAuthRedirect(),
		client.WithDestination(&resp),
	)
	if err != nil {
		return session.Credentials{}, err
	}
	if resp.Token == "" {
		return session.Credentials{}, errors.New("login response carried no token")
	}

	creds := session.Credentials{Token: resp.Token, Username: resp.Username, Role: resp.Role}
	if err := a.sess.Login(creds); err != nil {
		return session.Credentials{}, fmt.Errorf("storing credentials: %w", err)
	}

	return creds, nil
}

// Session asks the backend who token belongs to. It has the shape of a
// [session.CheckFunc] so it can back a [session.Validator].
func (a *Auth) Session(ctx context.Context, token string) (session.Profile, error) {
	var p session.Profile
	err := a.c.Get(ctx, PathSession,
		client.WithHeaders(map[string][]string{"Authorization": {"Bearer " + token}}),
		client.WithSkipAuthRedirect(),
		client.WithDestination(&p),
	)
	if err != nil {
		return session.Profile{}, err
	}

	return p, nil
}

// Logout forgets the stored credentials.
func (a *Auth) Logout() error {
	return a.sess.Clear()
}
