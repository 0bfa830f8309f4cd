package download

import (
	"errors"
	"fmt"
	"time"
)

// Option configures [Save] and [Target].
type Option func(*options) error

type options struct {
	progress         ProgressFunc
	progressInterval time.Duration
	skipExisting     bool
	fallback         string
	name             string
}

func apply(optFns []Option) (options, error) {
	opts := options{progressInterval: time.Second}
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, fmt.Errorf("applying option: %w", err)
		}
	}

	return opts, nil
}

// WithProgress reports progress to fn at most once per interval and once
// more when the expected length has been written. A zero interval reports
// every write.
func WithProgress(fn ProgressFunc, interval time.Duration) Option {
	return func(opts *options) error {
		if fn == nil {
			return errors.New("progress func must not be nil")
		}
		if interval < 0 {
			return errors.New("progress interval must not be negative")
		}
		opts.progress = fn
		opts.progressInterval = interval
		return nil
	}
}

// WithSkipExisting makes Save a no-op when the destination already exists.
func WithSkipExisting() Option {
	return func(opts *options) error {
		opts.skipExisting = true
		return nil
	}
}

// WithFallbackName names the file when the response carries no usable
// Content-Disposition filename.
func WithFallbackName(name string) Option {
	return func(opts *options) error {
		clean, err := sanitize(name)
		if err != nil {
			return err
		}
		opts.fallback = clean
		return nil
	}
}

// WithFilename names the file regardless of the response headers.
func WithFilename(name string) Option {
	return func(opts *options) error {
		clean, err := sanitize(name)
		if err != nil {
			return err
		}
		opts.name = clean
		return nil
	}
}
