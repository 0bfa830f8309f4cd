// Package adminapi exposes the admin API client builder.
package adminapi

import (
	"github.com/adamwoolhether/adminapi/api"
	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/session"
)

// NewClient instantiates a new *client.Client with the provided options.
func NewClient(opts ...client.Option) (*client.Client, error) {
	return client.Build(opts...)
}

// NewService builds a client bound to sess and returns the typed services
// on top of it. Requests carry the session token and a 401 runs guard.
// opts are applied after the session wiring.
func NewService(sess *session.Session, guard *session.Guard, opts ...client.Option) (*api.Service, error) {
	base := []client.Option{client.WithTokenSource(sess)}
	if guard != nil {
		base = append(base, client.WithUnauthorizedHandler(guard))
	}

	c, err := client.Build(append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	return api.New(c, sess)
}
