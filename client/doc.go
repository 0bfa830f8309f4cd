// Package client is the data-access layer for the admin API: one
// configurable HTTP client that normalizes every success and failure.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithBaseURL("https://admin.example.com/web"),
//		client.WithTokenSource(sess),
//		client.WithUnauthorizedHandler(guard),
//	)
//
// Calls default to a 600 second timeout, JSON content headers and a
// bearer header read from the token source on every request.
//
// # Making Requests
//
// The verb helpers decode a JSON success into a destination:
//
//	var users []User
//	err := c.Get(ctx, "/api/admin/users", client.WithDestination(&users))
//
// For binary responses use [Client.Send] with [WithBinaryResponse] to get
// the raw [Response] envelope, or [Client.Download] to save it to disk.
//
// # Errors
//
// Every failure is an [*Error] whose Kind says what went wrong and whose
// Message is fit for display:
//
//	if errors.Is(err, client.ErrUnauthorized) { ... }
//	if e, ok := client.AsError(err); ok { fmt.Println(e.Message) }
//
// A 401 runs the registered [UnauthorizedHandler] and reports a generic
// message, unless the call used [WithSkipAuthRedirect].
//
// # Streaming
//
// [Client.Stream] posts a JSON body and accumulates a text/event-stream
// response, see [github.com/adamwoolhether/adminapi/client/stream].
package client
