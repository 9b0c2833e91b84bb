package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/bnema/legalai-cli/internal/adapters/api"
	"github.com/bnema/legalai-cli/internal/adapters/render/terminal"
	tomlrepo "github.com/bnema/legalai-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/legalai-cli/internal/adapters/secrets/chain"
	"github.com/bnema/legalai-cli/internal/adapters/secrets/keyed"
	passstore "github.com/bnema/legalai-cli/internal/adapters/secrets/pass"
	"github.com/bnema/legalai-cli/internal/application"
	"github.com/bnema/legalai-cli/internal/config"
	"github.com/bnema/legalai-cli/internal/ports"
	"github.com/bnema/legalai-cli/internal/version"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	controller *application.Controller
	presenter  *terminal.Presenter
}

// runOptions describe what a command needs from the wired app.
type runOptions struct {
	// restore revalidates the persisted token before running.
	restore bool
	// showSession renders session transitions.
	showSession bool
}

type cliState struct {
	flags *rootFlags
}

// run wires a fresh app for one command and tears it down afterwards.
func (s *cliState) run(cmd *cobra.Command, opts runOptions, fn func(ctx context.Context, app *app) error) error {
	app, err := wireApp(s.flags, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.restore {
		// Failures are notified and leave an anonymous session.
		_ = app.controller.RestoreSession(ctx)
	}

	return fn(ctx, app)
}

func wireApp(flags *rootFlags, opts runOptions, stdout, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: flags.configFile, EnvFile: flags.envFile})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flags.baseURL != "" {
		if err := cfg.Override(config.KeyBaseURL, flags.baseURL); err != nil {
			return nil, fmt.Errorf("apply --base-url: %w", err)
		}
	}
	if flags.logLevel != "" {
		if err := cfg.Override(config.KeyLogLevel, flags.logLevel); err != nil {
			return nil, fmt.Errorf("apply --log-level: %w", err)
		}
	}

	logger := config.NewLogger(stderr, cfg.LogLevel)

	tokens, err := newTokenStore(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("wire token store: %w", err)
	}

	presenter := terminal.NewPresenter(stdout, stderr, terminal.Options{
		JSON:        flags.jsonOutput,
		Interactive: terminal.IsInteractive(stdout) && terminal.IsInteractive(stderr),
		ShowSession: opts.showSession,
	})

	client := &api.Client{
		BaseURL:    cfg.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		UserAgent:  version.UserAgent(),
		Logger:     logger,
	}

	controller := application.NewController(api.NewBackend(client), tokens, presenter, application.Options{
		Clock:        ports.SystemClock{},
		Files:        afero.NewOsFs(),
		Logger:       logger,
		DismissAfter: cfg.DismissAfter,
		DecodeClaims: api.ParseTokenClaims,
	})
	client.Tokens = controller

	logger.Debug("wired", "base_url", cfg.BaseURL, "session_backend", cfg.SessionBackend)

	return &app{
		cfg:        cfg,
		logger:     logger,
		controller: controller,
		presenter:  presenter,
	}, nil
}

func newTokenStore(cfg *config.Config, logger *slog.Logger) (ports.TokenStore, error) {
	switch cfg.SessionBackend {
	case config.BackendSecrets:
		pass := passstore.Options{Binary: cfg.PassBinary, StoreDir: cfg.PassStoreDir}
		secrets, err := chainstore.NewPassFirstWithFileFallback(pass, cfg.SecretsDir, chainstore.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return keyed.NewTokenStore(secrets, keyed.DefaultKey), nil
	default:
		return tomlrepo.NewSessionRepository(cfg.Viper(), ports.SystemClock{})
	}
}

// dispatch runs one action. Its failure was already notified, so only
// errActionFailed is reported upwards.
func (a *app) dispatch(ctx context.Context, action application.ActionID, form application.Form) error {
	outcome := a.controller.Dispatch(ctx, action, form)
	if outcome.Err != nil {
		return fmt.Errorf("%s: %w: %w", action, errActionFailed, outcome.Err)
	}
	return nil
}

func (a *app) close() {
	a.controller.Close()
	a.presenter.SetBusy(false)
}
