package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	filestore "github.com/bnema/legalai-cli/internal/adapters/secrets/file"
	passstore "github.com/bnema/legalai-cli/internal/adapters/secrets/pass"
	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
)

var (
	errNilPrimaryStore  = errors.New("primary secret store is nil")
	errNilFallbackStore = errors.New("fallback secret store is nil")
)

// Store prefers the primary backend and uses the fallback whenever the
// primary fails. Deletes reach both backends so a token written while the
// primary was unavailable cannot outlive a logout.
type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	logger   *slog.Logger
}

var _ ports.SecretStore = (*Store)(nil)

type Option func(*Store)

// WithLogger reports every fallback at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewStore(primary ports.SecretStore, fallback ports.SecretStore, opts ...Option) *Store {
	store, err := NewStoreChecked(primary, fallback, opts...)
	if err != nil {
		panic(err)
	}

	return store
}

func NewStoreChecked(primary ports.SecretStore, fallback ports.SecretStore, opts ...Option) (*Store, error) {
	if primary == nil {
		return nil, errNilPrimaryStore
	}
	if fallback == nil {
		return nil, errNilFallbackStore
	}

	s := &Store{
		primary:  primary,
		fallback: fallback,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// NewPassFirstWithFileFallback chains pass(1) with 0600 files below fileRoot.
func NewPassFirstWithFileFallback(pass passstore.Options, fileRoot string, opts ...Option) (*Store, error) {
	return NewStoreChecked(passstore.NewStore(pass), filestore.NewStore(fileRoot), opts...)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	primaryErr := s.primary.Put(ctx, key, value)
	if primaryErr == nil || isCancellation(primaryErr) {
		return primaryErr
	}

	s.logFallback("put", key, primaryErr)
	if err := s.fallback.Put(ctx, key, value); err != nil {
		return fmt.Errorf("primary backend put failed: %w; fallback backend put failed: %w", primaryErr, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, primaryErr := s.primary.Get(ctx, key)
	if primaryErr == nil || isCancellation(primaryErr) {
		return value, primaryErr
	}

	s.logFallback("get", key, primaryErr)
	value, fallbackErr := s.fallback.Get(ctx, key)
	switch {
	case fallbackErr == nil:
		return value, nil
	case errors.Is(primaryErr, domain.ErrSecretNotFound) && errors.Is(fallbackErr, domain.ErrSecretNotFound):
		return "", fmt.Errorf("secret %q: %w", key, domain.ErrSecretNotFound)
	case errors.Is(primaryErr, passstore.ErrUnavailable) && errors.Is(fallbackErr, domain.ErrSecretNotFound):
		return "", fallbackErr
	default:
		return "", fmt.Errorf("primary backend get failed: %w; fallback backend get failed: %w", primaryErr, fallbackErr)
	}
}

func (s *Store) Delete(ctx context.Context, key string) error {
	primaryErr := s.primary.Delete(ctx, key)
	if isCancellation(primaryErr) {
		return primaryErr
	}
	// pass missing on this host is not an error
	if errors.Is(primaryErr, passstore.ErrUnavailable) {
		primaryErr = nil
	}

	fallbackErr := s.fallback.Delete(ctx, key)
	switch {
	case primaryErr == nil && fallbackErr == nil:
		return nil
	case primaryErr == nil:
		return fmt.Errorf("fallback backend delete failed: %w", fallbackErr)
	case fallbackErr == nil:
		return fmt.Errorf("primary backend delete failed: %w", primaryErr)
	default:
		return fmt.Errorf("primary backend delete failed: %w; fallback backend delete failed: %w", primaryErr, fallbackErr)
	}
}

func (s *Store) logFallback(op, key string, err error) {
	s.logger.Debug("secret fallback", "op", op, "key", key, "error", err)
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
