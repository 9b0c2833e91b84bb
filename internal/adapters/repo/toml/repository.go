package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

const (
	SessionPathKey = "session.path"
	OriginKey      = "api.base_url"

	fileMode    = 0o600
	dirMode     = 0o700
	defaultDir  = ".legalai"
	defaultName = "session.toml"
	tempPattern = ".session-*.toml.tmp"
)

// SessionRepository keeps the bearer token in a small TOML file. A token saved
// for another backend origin is reported as missing.
type SessionRepository struct {
	fs     afero.Fs
	path   string
	origin string
	clock  ports.Clock
	mu     *sync.RWMutex
}

var _ ports.TokenStore = (*SessionRepository)(nil)

// Repositories pointing at the same file share one lock.
var sessionLocks sync.Map

func NewSessionRepository(cfg *viper.Viper, clock ports.Clock) (*SessionRepository, error) {
	return NewSessionRepositoryOnFs(afero.NewOsFs(), cfg, clock)
}

func NewSessionRepositoryOnFs(fs afero.Fs, cfg *viper.Viper, clock ports.Clock) (*SessionRepository, error) {
	if cfg == nil {
		cfg = viper.New()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	path, err := sessionPath(cfg.GetString(SessionPathKey))
	if err != nil {
		return nil, err
	}

	mu, _ := sessionLocks.LoadOrStore(path, &sync.RWMutex{})
	return &SessionRepository{
		fs:     fs,
		path:   path,
		origin: strings.TrimRight(cfg.GetString(OriginKey), "/"),
		clock:  clock,
		mu:     mu.(*sync.RWMutex),
	}, nil
}

func sessionPath(configured string) (string, error) {
	if configured == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		configured = filepath.Join(home, defaultDir, defaultName)
	}
	abs, err := filepath.Abs(configured)
	if err != nil {
		return "", fmt.Errorf("resolve session path: %w", err)
	}
	return abs, nil
}

func (r *SessionRepository) Path() string {
	return r.path
}

func (r *SessionRepository) Get(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, found, err := r.load()
	if err != nil {
		return "", err
	}
	if !found {
		return "", domain.ErrTokenNotFound
	}
	token, ok := doc.tokenFor(r.origin)
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	return token, nil
}

func (r *SessionRepository) Set(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session token is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Refuse to overwrite a file written by a newer client.
	if _, _, err := r.load(); err != nil {
		return err
	}

	doc := document{
		Version: documentVersion,
		Session: storedToken{
			Token:   token,
			Origin:  r.origin,
			SavedAt: r.clock.Now().UTC().Format(time.RFC3339),
		},
	}
	return r.store(ctx, doc)
}

// Clear deletes the session file. A missing file is not an error.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.fs.Remove(r.path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("remove session file: %w", err)
}

func (r *SessionRepository) load() (document, bool, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, os.ErrNotExist) {
		return document{}, false, nil
	}
	if err != nil {
		return document{}, false, fmt.Errorf("read session file: %w", err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return document{}, false, fmt.Errorf("decode session file: %w", err)
	}
	if err := doc.check(); err != nil {
		return document{}, false, err
	}
	return doc, true, nil
}

func (r *SessionRepository) store(ctx context.Context, doc document) error {
	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	dir := filepath.Dir(r.path)
	if err := r.fs.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := afero.TempFile(r.fs, dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = r.fs.Chmod(tmpName, fileMode)
	}
	if werr == nil {
		werr = ctx.Err()
	}
	if werr == nil {
		werr = r.fs.Rename(tmpName, r.path)
	}
	if werr != nil {
		_ = r.fs.Remove(tmpName)
		return fmt.Errorf("write session file: %w", werr)
	}
	return nil
}
