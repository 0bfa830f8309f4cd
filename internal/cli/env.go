package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/adamwoolhether/adminapi/api"
	"github.com/adamwoolhether/adminapi/client"
	"github.com/adamwoolhether/adminapi/internal/config"
	"github.com/adamwoolhether/adminapi/session"
)

// env is what a command runs against.
type env struct {
	cfg       config.Config
	logger    *slog.Logger
	sess      *session.Session
	client    *client.Client
	svc       *api.Service
	validator *session.Validator
	out       io.Writer
	errOut    io.Writer

	logFile io.Closer
}

func newEnv(cmd *cobra.Command, opts *GlobalOptions) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.EnvFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = opts.BaseURL
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = opts.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}

	var logOut io.Writer = e.errOut
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: 3,
		}
		logOut = lj
		e.logFile = lj
	}
	e.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level()}))

	e.sess, err = session.New(session.FileStore{Path: cfg.SessionFile}, e.logger)
	if err != nil {
		e.close()
		return nil, err
	}

	guard := session.NewGuard(e.sess,
		session.WithGuardLogger(e.logger),
		session.WithLoginPath(cfg.LoginPath),
		session.WithNotifier(session.NotifyFunc(func(_ context.Context, msg string) {
			fmt.Fprintln(e.errOut, msg)
		})),
		session.WithNavigator(terminal{w: e.errOut}),
	)

	copts := []client.Option{
		client.WithBaseURL(cfg.BaseURL),
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(e.logger),
		client.WithTokenSource(e.sess),
		client.WithUnauthorizedHandler(guard),
	}
	if cfg.UserAgent != "" {
		copts = append(copts, client.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RPS > 0 {
		copts = append(copts, client.WithThrottle(cfg.RPS, cfg.Burst))
	}

	e.client, err = client.Build(copts...)
	if err != nil {
		e.close()
		return nil, fmt.Errorf("building client: %w", err)
	}

	e.svc, err = api.New(e.client, e.sess)
	if err != nil {
		e.close()
		return nil, err
	}
	e.validator = session.NewValidator(e.sess, e.svc.Auth.Session, session.WithValidatorLogger(e.logger))

	return e, nil
}

func (e *env) close() error {
	if e.logFile == nil {
		return nil
	}
	return e.logFile.Close()
}

// terminal is the session navigator for a CLI: there is no page to move
// to, so a redirect becomes a hint on how to sign in again.
type terminal struct {
	w io.Writer
}

func (terminal) Current() string { return "" }

func (t terminal) Navigate(_ context.Context, path string) {
	fmt.Fprintf(t.w, "login required (%s): run %q\n", path, cliName+" login")
}
