package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// State is the validator's view of the current credential.
type State int

const (
	Unvalidated State = iota
	Validating
	Validated
)

func (s State) String() string {
	switch s {
	case Validating:
		return "validating"
	case Validated:
		return "validated"
	default:
		return "unvalidated"
	}
}

// CheckFunc confirms token with the server and returns its profile.
type CheckFunc func(ctx context.Context, token string) (Profile, error)

// Validator confirms the stored credential with the server at most once
// per credential. Concurrent callers share a single in-flight check.
type Validator struct {
	sess   *Session
	check  CheckFunc
	group  singleflight.Group
	logger *slog.Logger

	mu        sync.Mutex
	validated string
	profile   Profile
	inflight  int
}

// ValidatorOption configures a [Validator].
type ValidatorOption func(*Validator)

// WithValidatorLogger injects a logger. The default is slog.Default().
func WithValidatorLogger(logger *slog.Logger) ValidatorOption {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewValidator returns a Validator for sess. Its cache is dropped whenever
// sess is cleared.
func NewValidator(sess *Session, check CheckFunc, opts ...ValidatorOption) *Validator {
	v := &Validator{
		sess:   sess,
		check:  check,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}

	sess.OnClear(v.Reset)

	return v
}

// Ensure returns the profile for the current credential, checking it with
// the server unless it was already confirmed. A failed check clears the
// session. ctx only bounds this caller's wait: the shared check keeps
// running for the other callers.
func (v *Validator) Ensure(ctx context.Context) (Profile, error) {
	token := v.sess.Token()
	if token == "" {
		return Profile{}, ErrNoCredential
	}

	v.mu.Lock()
	if v.validated == token {
		p := v.profile
		v.mu.Unlock()
		return p, nil
	}
	v.inflight++
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		v.inflight--
		v.mu.Unlock()
	}()

	ch := v.group.DoChan(token, func() (any, error) {
		return v.validate(context.WithoutCancel(ctx), token)
	})

	select {
	case <-ctx.Done():
		return Profile{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Profile{}, res.Err
		}
		return res.Val.(Profile), nil
	}
}

func (v *Validator) validate(ctx context.Context, token string) (Profile, error) {
	// A flight that finished just before this one started already did the work.
	v.mu.Lock()
	if v.validated == token {
		p := v.profile
		v.mu.Unlock()
		return p, nil
	}
	v.mu.Unlock()

	v.logger.Debug("validating session")

	p, err := v.check(ctx, token)
	if err != nil {
		v.logger.Warn("session validation failed", "error", err)
		if v.sess.Token() == token {
			if cerr := v.sess.Clear(); cerr != nil {
				v.logger.Error("clearing session", "error", cerr)
			}
		}
		return Profile{}, fmt.Errorf("validating session: %w", err)
	}

	// A clear or re-login while the check was running wins. Reading the
	// token under v.mu orders this against Reset.
	v.mu.Lock()
	current := v.sess.Token() == token
	if current {
		v.validated = token
		v.profile = p
	}
	v.mu.Unlock()

	if !current {
		return p, nil
	}

	if err := v.sess.SaveProfile(token, p); err != nil {
		v.logger.Error("caching profile", "error", err)
	}

	return p, nil
}

// State reports where the current credential stands.
func (v *Validator) State() State {
	token := v.sess.Token()

	v.mu.Lock()
	defer v.mu.Unlock()

	switch {
	case token != "" && v.validated == token:
		return Validated
	case v.inflight > 0:
		return Validating
	default:
		return Unvalidated
	}
}

// Reset forgets the confirmed credential so the next Ensure checks again.
func (v *Validator) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.validated = ""
	v.profile = Profile{}
}
