package ports

import "context"

// SecretStore persists opaque values by slash-separated key, such as
// "legalai/session/token". Get wraps domain.ErrSecretNotFound for absent keys
// and Delete of an absent key succeeds.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
