package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/legalai-cli/internal/domain"
)

// Login exchanges credentials for a token and fetches the profile with it.
// The token is persisted only once both calls succeeded, so a failed login
// leaves the stored token untouched.
func (c *Controller) Login(ctx context.Context, cmd LoginCommand) error {
	credentials, err := cmd.credentials()
	if err != nil {
		return c.reject(ActionLogin, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	c.setSession(domain.SessionAuthenticating, domain.Session{})

	token, err := c.api.IssueToken(ctx, credentials)
	if err != nil {
		c.setSession(domain.SessionAnonymous, domain.Session{})
		return c.fail(ActionLogin, fmt.Errorf("issue token: %w", err))
	}

	profile, err := c.api.CurrentUser(ctx, token)
	if err != nil {
		c.setSession(domain.SessionAnonymous, domain.Session{})
		return c.fail(ActionLogin, fmt.Errorf("fetch profile: %w", err))
	}

	c.setSession(domain.SessionAuthenticated, domain.Session{Token: token, User: &profile})

	if err := c.tokens.Set(ctx, token); err != nil {
		c.logger.Warn("persist session token", "error", err)
		c.notify(domain.NotifyWarning, "Signed in, but the session could not be saved for the next run.")
		return nil
	}

	c.logger.Debug("signed in", "user", profile.Username)
	c.notify(domain.NotifySuccess, fmt.Sprintf("Welcome, %s.", profile.DisplayName()))
	return nil
}

// Register creates an account. It never signs in; the presenter is asked to
// offer the login flow instead.
func (c *Controller) Register(ctx context.Context, cmd RegisterCommand) (domain.RegisteredUser, error) {
	registration, err := cmd.registration()
	if err != nil {
		return domain.RegisteredUser{}, c.reject(ActionRegister, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	user, err := c.api.Register(ctx, registration)
	if err != nil {
		return domain.RegisteredUser{}, c.failRequest(ctx, c.Token(), ActionRegister, fmt.Errorf("register: %w", err))
	}

	c.notify(domain.NotifySuccess, fmt.Sprintf("Account %s created. Sign in to continue.", user.Username))
	c.presenter.PromptLogin(user)
	return user, nil
}

// Logout always succeeds. A store that cannot be cleared is logged only.
func (c *Controller) Logout(ctx context.Context) {
	c.setSession(domain.SessionAnonymous, domain.Session{})
	c.clearStoredToken(ctx)
	c.notify(domain.NotifyInfo, "Signed out.")

	_ = c.LoadUserCases(ctx, LoadCasesQuery{})
}

// RestoreSession revalidates a persisted token. Any failure discards it.
func (c *Controller) RestoreSession(ctx context.Context) error {
	token, err := c.tokens.Get(ctx)
	if err != nil {
		c.setSession(domain.SessionAnonymous, domain.Session{})
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil
		}
		c.clearStoredToken(ctx)
		return c.fail(ActionRestoreSession, fmt.Errorf("load session token: %w", err))
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	c.setSession(domain.SessionAuthenticating, domain.Session{Token: token})

	profile, err := c.api.CurrentUser(ctx, token)
	if err != nil {
		c.setSession(domain.SessionAnonymous, domain.Session{})
		c.clearStoredToken(ctx)
		return c.fail(ActionRestoreSession, fmt.Errorf("restore session: %w", err))
	}

	c.setSession(domain.SessionAuthenticated, domain.Session{Token: token, User: &profile})
	return nil
}

func (c *Controller) SessionInfo() SessionInfo {
	c.mu.RLock()
	session := copySession(c.session)
	info := SessionInfo{State: c.state, User: session.User, HasToken: session.HasToken()}
	c.mu.RUnlock()

	if info.HasToken && c.decodeClaims != nil {
		if claims, ok := c.decodeClaims(session.Token); ok {
			info.Claims = &claims
		}
	}

	return info
}
