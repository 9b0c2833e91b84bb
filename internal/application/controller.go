package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
	"github.com/spf13/afero"
)

const (
	DefaultDismissAfter = 5 * time.Second

	CasesPlaceholderMessage = "Sign in to see your cases."
)

// ClaimsDecoder reads display-only claims from a bearer token.
type ClaimsDecoder func(token string) (domain.TokenClaims, bool)

type Options struct {
	Clock        ports.Clock
	Files        afero.Fs
	Logger       *slog.Logger
	DismissAfter time.Duration
	DecodeClaims ClaimsDecoder
}

// Controller owns the session and one transient result per action kind. It is
// safe for concurrent use; actions never block each other.
type Controller struct {
	api          ports.LegalService
	tokens       ports.TokenStore
	presenter    ports.Presenter
	clock        ports.Clock
	files        afero.Fs
	logger       *slog.Logger
	decodeClaims ClaimsDecoder
	notifier     *notifier
	results      resultStore

	mu      sync.RWMutex
	state   domain.SessionState
	session domain.Session
}

func NewController(api ports.LegalService, tokens ports.TokenStore, presenter ports.Presenter, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}
	if opts.Files == nil {
		opts.Files = afero.NewOsFs()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DismissAfter <= 0 {
		opts.DismissAfter = DefaultDismissAfter
	}

	return &Controller{
		api:          api,
		tokens:       tokens,
		presenter:    presenter,
		clock:        opts.Clock,
		files:        opts.Files,
		logger:       opts.Logger,
		decodeClaims: opts.DecodeClaims,
		notifier:     newNotifier(presenter, opts.Clock, opts.DismissAfter),
		state:        domain.SessionAnonymous,
	}
}

// Token returns the session token, or "" when anonymous. It lets the
// controller act as the token source of the HTTP client.
func (c *Controller) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.session.Token
}

func (c *Controller) State() domain.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.state
}

func (c *Controller) Session() domain.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return copySession(c.session)
}

func (c *Controller) Results() Results {
	return c.results.snapshot()
}

func (c *Controller) Notifications() []domain.Notification {
	return c.notifier.recent()
}

// Close cancels pending notification dismissals.
func (c *Controller) Close() {
	c.notifier.stop()
}

func (c *Controller) setSession(state domain.SessionState, session domain.Session) {
	c.mu.Lock()
	c.state = state
	c.session = session
	snapshot := copySession(session)
	c.mu.Unlock()

	c.presenter.RenderSession(state, snapshot)
}

// expireSession drops the session the server rejected. A 401 answering an
// older token leaves a newer session alone. The store is cleared under the
// session lock so a concurrent login cannot persist before the clear lands.
func (c *Controller) expireSession(ctx context.Context, rejected string) {
	c.mu.Lock()
	if rejected == "" || c.session.Token != rejected {
		c.mu.Unlock()
		return
	}
	c.state = domain.SessionAnonymous
	c.session = domain.Session{}
	c.clearStoredToken(ctx)
	c.mu.Unlock()

	c.presenter.RenderSession(domain.SessionAnonymous, domain.Session{})
}

func (c *Controller) clearStoredToken(ctx context.Context) {
	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Warn("clear stored session token", "error", err)
	}
}

func (c *Controller) notify(level domain.NotificationLevel, message string) {
	c.notifier.notify(level, message)
}

// reject reports a local validation failure. Nothing was sent.
func (c *Controller) reject(action ActionID, err error) error {
	c.logger.Debug("action rejected", "action", action, "error", err)
	c.notify(domain.NotifyWarning, userMessage(err))
	return err
}

// fail reports a failed call without touching the session.
func (c *Controller) fail(action ActionID, err error) error {
	c.logger.Info("action failed", "action", action, "error", err)
	c.notify(domain.NotifyError, userMessage(err))
	return err
}

// failRequest is fail plus session expiry on authentication errors. token is
// the session token the failed request was sent with.
func (c *Controller) failRequest(ctx context.Context, token string, action ActionID, err error) error {
	if errors.Is(err, domain.ErrAuthentication) {
		c.expireSession(ctx, token)
	}
	return c.fail(action, err)
}

func userMessage(err error) string {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}
	var requestErr *domain.RequestError
	if errors.As(err, &requestErr) {
		return requestErr.Error()
	}
	var transportErr *domain.TransportError
	if errors.As(err, &transportErr) {
		return transportErr.Error()
	}
	return err.Error()
}

func copySession(session domain.Session) domain.Session {
	if session.User != nil {
		user := *session.User
		session.User = &user
	}
	return session
}
