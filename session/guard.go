package session

import (
	"context"
	"log/slog"
)

const (
	// DefaultLoginPath is where the guard sends the user after a 401.
	DefaultLoginPath = "/login"

	expiredMessage = "session expired, please log in again"
)

// Notifier shows a message to the user.
type Notifier interface {
	Notify(ctx context.Context, msg string)
}

// NotifyFunc adapts a plain func to [Notifier].
type NotifyFunc func(ctx context.Context, msg string)

func (f NotifyFunc) Notify(ctx context.Context, msg string) { f(ctx, msg) }

// Navigator moves the user between pages.
type Navigator interface {
	Current() string
	Navigate(ctx context.Context, path string)
}

// Guard reacts to an unauthorized response: it clears the session, tells
// the user, and sends them to the login page unless they are already there.
// It satisfies client.UnauthorizedHandler.
type Guard struct {
	sess      *Session
	notifier  Notifier
	navigator Navigator
	loginPath string
	logger    *slog.Logger
}

// GuardOption configures a [Guard].
type GuardOption func(*Guard)

// WithNotifier sets who is told about the expired session.
func WithNotifier(n Notifier) GuardOption {
	return func(g *Guard) { g.notifier = n }
}

// WithNavigator sets how the user is redirected.
func WithNavigator(n Navigator) GuardOption {
	return func(g *Guard) { g.navigator = n }
}

// WithLoginPath overrides [DefaultLoginPath].
func WithLoginPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithGuardLogger injects a logger. The default is slog.Default().
func WithGuardLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard returns a Guard for sess.
func NewGuard(sess *Session, opts ...GuardOption) *Guard {
	g := &Guard{
		sess:      sess,
		loginPath: DefaultLoginPath,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// HandleUnauthorized clears the session, notifies and redirects. It is
// safe to call from many failing requests at once.
func (g *Guard) HandleUnauthorized(ctx context.Context) {
	if err := g.sess.Clear(); err != nil {
		g.logger.Error("clearing session after 401", "error", err)
	}

	if g.notifier != nil {
		g.notifier.Notify(ctx, expiredMessage)
	}

	if g.navigator == nil {
		return
	}
	if g.navigator.Current() == g.loginPath {
		return
	}

	g.logger.Info("redirecting to login", "path", g.loginPath)
	g.navigator.Navigate(ctx, g.loginPath)
}
