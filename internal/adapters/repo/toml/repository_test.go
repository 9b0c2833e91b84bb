package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct {
	ports.SystemClock
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestRepository(t *testing.T, sessionPath, origin string) *SessionRepository {
	t.Helper()

	config := viper.New()
	config.Set(SessionPathKey, sessionPath)
	config.Set(OriginKey, origin)

	repo, err := NewSessionRepository(config, fixedClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	return repo
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	sessionPath := filepath.Join(t.TempDir(), "session.toml")
	repo := newTestRepository(t, sessionPath, "http://localhost:8000/api/v1")

	require.NoError(t, repo.Set(context.Background(), "T1"))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T1", got)

	data, err := os.ReadFile(sessionPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "saved_at = '2026-10-18T09:00:00Z'")
}

func TestSessionRepositoryMissingFileReportsTokenNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "session.toml"), "")

	_, err := repo.Get(context.Background())
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	require.NoError(t, repo.Clear(context.Background()))
}

func TestSessionRepositoryClearRemovesFile(t *testing.T) {
	t.Parallel()

	sessionPath := filepath.Join(t.TempDir(), "session.toml")
	repo := newTestRepository(t, sessionPath, "")
	require.NoError(t, repo.Set(context.Background(), "T1"))

	require.NoError(t, repo.Clear(context.Background()))
	require.NoError(t, repo.Clear(context.Background()))

	_, err := repo.Get(context.Background())
	require.ErrorIs(t, err, domain.ErrTokenNotFound)
	assert.NoFileExists(t, sessionPath)
}

func TestSessionRepositoryOnMemoryFs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	config := viper.New()
	config.Set(SessionPathKey, "/profiles/ana/session.toml")

	repo, err := NewSessionRepositoryOnFs(fs, config, fixedClock{now: time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	require.NoError(t, repo.Set(context.Background(), "T-mem"))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T-mem", got)

	info, err := fs.Stat("/profiles/ana/session.toml")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := afero.Glob(fs, "/profiles/ana/.session-*")
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSessionRepositoryIgnoresTokenFromOtherOrigin(t *testing.T) {
	t.Parallel()

	sessionPath := filepath.Join(t.TempDir(), "session.toml")
	staging := newTestRepository(t, sessionPath, "https://staging.example.com/api/v1")
	require.NoError(t, staging.Set(context.Background(), "T-staging"))

	production := newTestRepository(t, sessionPath, "https://legal.example.com/api/v1/")
	_, err := production.Get(context.Background())
	require.ErrorIs(t, err, domain.ErrTokenNotFound)

	got, err := staging.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T-staging", got)
}

func TestSessionRepositorySetRejectsEmptyToken(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "session.toml"), "")
	err := repo.Set(context.Background(), "   ")
	assert.ErrorContains(t, err, "session token is empty")
}

func TestSessionRepositoryCreatesDefaultPathAndEnforcesPermissions(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)

	repo, err := NewSessionRepository(viper.New(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.Set(context.Background(), "T1"))

	sessionPath := filepath.Join(homeDir, ".legalai", "session.toml")
	assert.Equal(t, sessionPath, repo.Path())
	info, err := os.Stat(sessionPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSessionRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	sessionPath := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(sessionPath, []byte("session = ["), 0o600))

	repo := newTestRepository(t, sessionPath, "")
	_, err := repo.Get(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode session file")
}

func TestSessionRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	sessionPath := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(sessionPath, []byte(strings.Join([]string{
		"version = 999",
		"",
		"[session]",
		"token = \"T1\"",
		"",
	}, "\n")), 0o600))

	repo := newTestRepository(t, sessionPath, "")
	_, err := repo.Get(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported session schema version")
}

func TestSessionRepositoryCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "session.toml"), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Set(ctx, "T1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSessionRepositoryConcurrentWritesAcrossInstances(t *testing.T) {
	t.Parallel()

	sessionPath := filepath.Join(t.TempDir(), "session.toml")
	repoA := newTestRepository(t, sessionPath, "")
	repoB := newTestRepository(t, sessionPath, "")

	const writes = 50
	start := make(chan struct{})
	errCh := make(chan error, writes*2)
	var wg sync.WaitGroup
	wg.Add(2)

	write := func(repo *SessionRepository, token string) {
		defer wg.Done()
		<-start
		for i := 0; i < writes; i++ {
			errCh <- repo.Set(context.Background(), token)
		}
	}
	go write(repoA, "token-a")
	go write(repoB, "token-b")

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := repoA.Get(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"token-a", "token-b"}, got)
}
