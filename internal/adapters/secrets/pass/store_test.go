package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokenKey = "legalai/session/token"

// scriptedPass answers every invocation with the same output and records calls.
type scriptedPass struct {
	out   result
	err   error
	calls []invocation
}

func (p *scriptedPass) run(_ context.Context, call invocation) (result, error) {
	p.calls = append(p.calls, call)
	return p.out, p.err
}

func newScriptedStore(p *scriptedPass) *Store {
	return &Store{run: p.run}
}

func TestStorePutInsertsMultilineEntry(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{}
	require.NoError(t, newScriptedStore(fake).Put(context.Background(), tokenKey, "T1"))

	require.Len(t, fake.calls, 1)
	assert.Equal(t, []string{"insert", "--multiline", "--force", tokenKey}, fake.calls[0].args)
	assert.Equal(t, "T1\n", fake.calls[0].stdin)
}

func TestStoreGetKeepsFirstLineOnly(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{out: result{stdout: "T1\r\nsaved: 2026-10-18\n"}}

	value, err := newScriptedStore(fake).Get(context.Background(), tokenKey)
	require.NoError(t, err)
	assert.Equal(t, "T1", value)
	assert.Equal(t, []string{"show", tokenKey}, fake.calls[0].args)
	assert.Empty(t, fake.calls[0].stdin)
}

func TestStoreGetMapsMissingEntryToNotFound(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{
		out: result{stderr: "Error: legalai/session/token is not in the password store."},
		err: errors.New("exit status 1"),
	}

	_, err := newScriptedStore(fake).Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{
		out: result{stderr: "Error: legalai/session/token is not in the password store."},
		err: errors.New("exit status 1"),
	}

	require.NoError(t, newScriptedStore(fake).Delete(context.Background(), tokenKey))
	assert.Equal(t, []string{"rm", "--force", tokenKey}, fake.calls[0].args)
}

func TestStoreGetReportsDecryptionFailure(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{
		out: result{stderr: "gpg: decryption failed: No secret key"},
		err: errors.New("exit status 2"),
	}

	_, err := newScriptedStore(fake).Get(context.Background(), tokenKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "pass show")
	assert.ErrorContains(t, err, tokenKey)
	assert.ErrorContains(t, err, "decryption failed")
}

func TestStorePropagatesUnavailable(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{err: ErrUnavailable}

	err := newScriptedStore(fake).Put(context.Background(), tokenKey, "T1")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestStoreCanceledContextSkipsCommand(t *testing.T) {
	t.Parallel()

	fake := &scriptedPass{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newScriptedStore(fake).Get(ctx, tokenKey)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fake.calls)
}

func TestStoreOptions(t *testing.T) {
	t.Parallel()

	plain := NewStore(Options{})
	assert.Equal(t, "pass", plain.binary())
	assert.NotContains(t, plain.environ(), "PASSWORD_STORE_DIR=/srv/legal-pass")

	custom := NewStore(Options{Binary: "/opt/bin/pass", StoreDir: "/srv/legal-pass"})
	assert.Equal(t, "/opt/bin/pass", custom.binary())
	assert.Contains(t, custom.environ(), "PASSWORD_STORE_DIR=/srv/legal-pass")
}

func TestStoreMissingBinaryIsUnavailable(t *testing.T) {
	t.Parallel()

	store := NewStore(Options{Binary: "legalai-pass-binary-that-does-not-exist"})

	_, err := store.Get(context.Background(), tokenKey)
	require.ErrorIs(t, err, ErrUnavailable)
}
