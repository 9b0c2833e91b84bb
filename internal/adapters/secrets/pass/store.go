package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

const (
	defaultBinary    = "pass"
	storeDirEnv      = "PASSWORD_STORE_DIR"
	notInStoreMarker = "is not in the password store"
)

// Options configure how pass(1) is invoked.
type Options struct {
	// Binary overrides the executable looked up in PATH.
	Binary string
	// StoreDir is exported as PASSWORD_STORE_DIR when set.
	StoreDir string
}

type invocation struct {
	args  []string
	stdin string
}

type result struct {
	stdout string
	stderr string
}

type runner func(ctx context.Context, call invocation) (result, error)

// Store keeps session secrets in the pass(1) password manager.
type Store struct {
	opts Options
	run  runner
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(opts Options) *Store {
	s := &Store{opts: opts}
	s.run = s.exec
	return s
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := s.run(ctx, invocation{
		args:  []string{"insert", "--multiline", "--force", key},
		stdin: value + "\n",
	})
	if err != nil {
		return commandError("insert", key, err, out.stderr)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	out, err := s.run(ctx, invocation{args: []string{"show", key}})
	switch {
	case err == nil:
	case strings.Contains(out.stderr, notInStoreMarker):
		return "", fmt.Errorf("pass show %q: %w", key, domain.ErrSecretNotFound)
	default:
		return "", commandError("show", key, err, out.stderr)
	}

	// pass entries keep the secret on the first line
	token, _, _ := strings.Cut(out.stdout, "\n")
	return strings.TrimRight(token, "\r"), nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	out, err := s.run(ctx, invocation{args: []string{"rm", "--force", key}})
	if err != nil && !strings.Contains(out.stderr, notInStoreMarker) {
		return commandError("rm", key, err, out.stderr)
	}

	return nil
}

func (s *Store) binary() string {
	if strings.TrimSpace(s.opts.Binary) != "" {
		return s.opts.Binary
	}
	return defaultBinary
}

func (s *Store) environ() []string {
	env := os.Environ()
	if s.opts.StoreDir != "" {
		env = append(env, storeDirEnv+"="+s.opts.StoreDir)
	}
	return env
}

func (s *Store) exec(ctx context.Context, call invocation) (result, error) {
	path, err := exec.LookPath(s.binary())
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return result{}, ErrUnavailable
		}
		return result{}, fmt.Errorf("locate %s: %w", s.binary(), err)
	}

	cmd := exec.CommandContext(ctx, path, call.args...)
	cmd.Env = s.environ()
	if call.stdin != "" {
		cmd.Stdin = strings.NewReader(call.stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return result{stdout: stdout.String(), stderr: strings.TrimSpace(stderr.String())}, err
}

func commandError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}
	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
