// Package keyed stores the session token as a single entry of a secret store.
package keyed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
)

const DefaultKey = "legalai/session/token"

type TokenStore struct {
	secrets ports.SecretStore
	key     string
}

var _ ports.TokenStore = (*TokenStore)(nil)

func NewTokenStore(secrets ports.SecretStore, key string) *TokenStore {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}

	return &TokenStore{secrets: secrets, key: key}
}

func (s *TokenStore) Get(ctx context.Context) (string, error) {
	token, err := s.secrets.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", domain.ErrTokenNotFound
		}
		return "", fmt.Errorf("load session token: %w", err)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrTokenNotFound
	}

	return token, nil
}

func (s *TokenStore) Set(ctx context.Context, token string) error {
	if err := s.secrets.Put(ctx, s.key, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}

	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.secrets.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}

	return nil
}
