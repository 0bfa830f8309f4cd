// Package api holds the admin API's endpoint table and typed services
// built on top of [github.com/adamwoolhether/adminapi/client].
//
// A [Service] groups the services around one client and session:
//
//	svc, err := api.New(c, sess)
//	creds, err := svc.Auth.Login(ctx, api.LoginRequest{Username: "ada", Password: "secret"})
//	users, err := svc.Users.List(ctx)
//
// Request types carry `validate` tags; an invalid request is rejected
// with [client.FieldErrors] before anything goes on the wire.
package api
