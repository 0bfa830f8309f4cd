package api

import (
	"errors"

	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/session"
)

// Service groups the typed services sharing one client.
type Service struct {
	Auth         *Auth
	Users        *Users
	Requirements *Requirements
}

// New wires the services to c. Login results are stored in sess.
func New(c *client.Client, sess *session.Session) (*Service, error) {
	if c == nil {
		return nil, errors.New("client must not be nil")
	}
	if sess == nil {
		return nil, errors.New("session must not be nil")
	}

	return &Service{
		Auth:         &Auth{c: c, sess: sess},
		Users:        &Users{c: c},
		Requirements: &Requirements{c: c},
	}, nil
}
