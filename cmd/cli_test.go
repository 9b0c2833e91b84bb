package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnema/legalai-cli/internal/application"
	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/testutil/fakebackend"
	"github.com/bnema/legalai-cli/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "", "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version+"\n", stdout)

	stdout, _, err = executeCLI(t, t.TempDir(), "", "version", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"`+version.Version+`","user_agent":"legalai/`+version.Version+`"}`, stdout)
}

func TestUnknownCommandIsRejected(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"status\"")
}

func TestLoginPersistsSessionForLaterCommands(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stderr, "success: Welcome, Ana García.")

	sessionFile := filepath.Join(home, ".legalai", "session.toml")
	info, err := os.Stat(sessionFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	fake.AddCase(fakebackend.Case{Owner: "ana@example.com", Title: "Despido arbitrario", Status: "initiated", Priority: "high"})

	stdout, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "list")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "cases: 1")
	assert.Contains(t, stdout, "Despido arbitrario")
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	stdout, stderr, err := executeCLI(t, home, "pw123\n", "--base-url", fake.URL(),
		"auth", "login", "-u", "ana@example.com", "--password-stdin")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Signed in as Ana García")
}

func TestLoginWithWrongPasswordKeepsStoreEmpty(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, errActionFailed)
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Contains(t, stderr, "error: Incorrect username or password")

	_, statErr := os.Stat(filepath.Join(home, ".legalai", "session.toml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRegisterPasswordMismatchMakesNoRequest(t *testing.T) {
	fake := newFakeBackend(t)

	_, stderr, err := executeCLI(t, t.TempDir(), "", "--base-url", fake.URL(),
		"auth", "register",
		"--full-name", "Luis Pérez",
		"--email", "luis@example.com",
		"--password", "a",
		"--confirm-password", "b",
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, stderr, "Passwords do not match")
	assert.Empty(t, fake.Requests())
}

func TestRegisterPromptsLogin(t *testing.T) {
	fake := newFakeBackend(t)

	stdout, stderr, err := executeCLI(t, t.TempDir(), "", "--base-url", fake.URL(),
		"auth", "register",
		"--full-name", "Luis Pérez",
		"--email", "luis@example.com",
		"--password", "secret",
		"--confirm-password", "secret",
	)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Account created for Luis Pérez")
	assert.Contains(t, stdout, "--identifier luis@example.com")
}

func TestLogoutShowsPlaceholderWithoutNetwork(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, _, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	stdout, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(), "auth", "logout")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Not signed in.")
	assert.Contains(t, stdout, application.CasesPlaceholderMessage)
	assert.Equal(t, 0, fake.Count(http.MethodGet, "/cases/"))

	_, statErr := os.Stat(filepath.Join(home, ".legalai", "session.toml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCasesListWhenAnonymousRendersPlaceholder(t *testing.T) {
	fake := newFakeBackend(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "", "--base-url", fake.URL(), "cases", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, application.CasesPlaceholderMessage)
	assert.Empty(t, fake.Requests())
}

func TestSearchRendersJudgments(t *testing.T) {
	fake := newFakeBackend(t)
	fake.AddJudgment(fakebackend.Judgment{
		Tribunal:   "Corte Suprema",
		Expediente: "CAS-456-2019",
		Materia:    "estafa",
		FullText:   "El acusado indujo a error a la víctima.",
		Score:      0.91,
	})

	stdout, stderr, err := executeCLI(t, t.TempDir(), "", "--base-url", fake.URL(), "search", "estafa", "--limit", "5")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "results: 1")
	assert.Contains(t, stdout, "Corte Suprema CAS-456-2019")
}

func TestSearchJSONOutput(t *testing.T) {
	fake := newFakeBackend(t)
	fake.AddJudgment(fakebackend.Judgment{Tribunal: "Sala Penal", Expediente: "R-1", Materia: "estafa"})

	stdout, _, err := executeCLI(t, t.TempDir(), "", "--base-url", fake.URL(), "--json", "search", "--query", "estafa")
	require.NoError(t, err)

	var event struct {
		Event string `json:"event"`
		Data  struct {
			Total     int `json:"total"`
			Judgments []struct {
				Tribunal string `json:"tribunal"`
			} `json:"judgments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(stdout)), &event))
	assert.Equal(t, "search", event.Event)
	assert.Equal(t, 1, event.Data.Total)
	require.Len(t, event.Data.Judgments, 1)
	assert.Equal(t, "Sala Penal", event.Data.Judgments[0].Tribunal)
}

func TestAnalyzeWithoutDescriptionFailsLocally(t *testing.T) {
	fake := newFakeBackend(t)

	_, stderr, err := executeCLI(t, t.TempDir(), "", "--base-url", fake.URL(), "analyze")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, stderr, "warning: Case description is required")
	assert.Equal(t, 0, fake.Count(http.MethodPost, "/analysis/predict"))
}

func TestCaseLifecycle(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, _, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	stdout, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"cases", "create", "--expedient", "EXP-2026-014", "--title", "Robo agravado", "--description", "Robo en banda", "--type", "penal", "--priority", "urgent")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "#1 Robo agravado")

	stdout, stderr, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "status", "1", "resolved")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Resolved")

	stdout, stderr, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "show", "1")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "expedient: EXP-2026-014")

	stdout, stderr, err = executeCLI(t, home, "", "--base-url", fake.URL(),
		"cases", "update", "1", "--title", "Robo con violencia", "--case-type", "penal-especial")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "#1 Robo con violencia")
	assert.Contains(t, stderr, "Case 1 updated.")
	updated := fake.Cases("ana@example.com")
	require.Len(t, updated, 1)
	assert.Equal(t, "Robo en banda", updated[0].Description)
	assert.Equal(t, "penal-especial", updated[0].CaseType)

	stdout, stderr, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "list", "--case-type", "civil")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "cases: 0")

	fake.AddDocument(fakebackend.Document{CaseID: 1, Title: "denuncia - Robo con violencia", DocumentType: "denuncia", Content: "hechos"})
	stdout, stderr, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "documents", "1")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "documents: 1")
	assert.Contains(t, stdout, "denuncia - Robo con violencia")

	_, _, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "update", "1")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, stderr, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "delete", "1")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Empty(t, fake.Cases("ana@example.com"))

	_, _, err = executeCLI(t, home, "", "--base-url", fake.URL(), "cases", "status", "abc", "resolved")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestExpiredSessionIsDiscarded(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, _, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	fake.RevokeTokens()

	stdout, _, err := executeCLI(t, home, "", "--base-url", fake.URL(), "auth", "whoami")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.Contains(t, stdout, "Not signed in.")

	_, statErr := os.Stat(filepath.Join(home, ".legalai", "session.toml"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSessionReportsTokenClaims(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, _, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	stdout, _, err := executeCLI(t, home, "", "--base-url", fake.URL(), "auth", "session", "--json")
	require.NoError(t, err)

	var report sessionReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, string(domain.SessionAuthenticated), report.State)
	assert.Equal(t, fake.URL(), report.BaseURL)
	assert.Equal(t, "toml", report.Backend)
	assert.Equal(t, "Ana García", report.User)
	assert.Equal(t, "ana@example.com", report.Subject)
	require.NotNil(t, report.ExpiresAt)
	assert.False(t, report.Expired)
}

func TestGenerateDocumentWithAttachment(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	_, _, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	attachment := filepath.Join(t.TempDir(), "contrato.txt")
	require.NoError(t, os.WriteFile(attachment, []byte("contenido"), 0o600))

	stdout, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"generate", "--case", "4", "--type", "demanda", "--template", "demanda_civil",
		"--detail", "demandante=Ana", "--attachment", attachment)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "DOCUMENTO: DEMANDA")
	assert.Contains(t, stdout, "Anexo: contrato.txt")

	uploaded, ok := fake.LastAttachment()
	require.True(t, ok)
	assert.Equal(t, "contenido", uploaded.Content)
}

func TestDocumentsTemplatesAndSummarize(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)

	stdout, _, err := executeCLI(t, home, "", "--base-url", fake.URL(), "documents", "templates")
	require.NoError(t, err)
	assert.Contains(t, stdout, "templates: 3")
	assert.Contains(t, stdout, "demanda_civil (demanda)")

	_, _, err = executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	stdout, stderr, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"documents", "summarize", "--content", "Sentencia breve", "--kind", "citizen")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Summary (citizen)")
	assert.Contains(t, stdout, "Sentencia breve")
}

func TestShellDispatchesLinesConcurrently(t *testing.T) {
	home := t.TempDir()
	fake := newFakeBackend(t)
	fake.AddJudgment(fakebackend.Judgment{Tribunal: "Sala Penal", Expediente: "R-9", Materia: "estafa"})

	_, _, err := executeCLI(t, home, "", "--base-url", fake.URL(),
		"auth", "login", "--identifier", "ana@example.com", "--password", "pw123")
	require.NoError(t, err)

	input := strings.Join([]string{
		"# warm up",
		`analyze "description=Incumplimiento de contrato" fact=pago`,
		"search query=estafa",
		"",
		"load-templates",
		"exit",
		"search query=ignored",
	}, "\n")

	stdout, stderr, err := executeCLI(t, home, input, "--base-url", fake.URL(), "shell")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Case analysis")
	assert.Contains(t, stdout, "Jurisprudence search")
	assert.Contains(t, stdout, "Document templates")
	assert.Equal(t, 1, fake.Count(http.MethodPost, "/search/query"))
}

func TestShellReportsFailedLines(t *testing.T) {
	fake := newFakeBackend(t)

	_, stderr, err := executeCLI(t, t.TempDir(), "bogus-action\nsearch\n", "--base-url", fake.URL(), "shell")
	require.Error(t, err)
	assert.ErrorIs(t, err, errActionFailed)
	assert.Contains(t, err.Error(), "2 shell actions failed")
	assert.Contains(t, stderr, "unknown action")
}

func TestParseShellLine(t *testing.T) {
	tests := []struct {
		name       string
		line       string
		wantAction application.ActionID
		check      func(t *testing.T, form application.Form)
		wantErr    bool
	}{
		{
			name:       "plain pairs",
			line:       "search query=estafa limit=3",
			wantAction: application.ActionSearch,
			check: func(t *testing.T, form application.Form) {
				assert.Equal(t, "estafa", form.Get("query"))
				assert.Equal(t, "3", form.Get("limit"))
			},
		},
		{
			name:       "quoted pair keeps spaces",
			line:       `analyze "description=robo en banda"  fact=uno fact=dos`,
			wantAction: application.ActionAnalyze,
			check: func(t *testing.T, form application.Form) {
				assert.Equal(t, "robo en banda", form.Get("description"))
				assert.Equal(t, []string{"uno", "dos"}, form.All("fact"))
			},
		},
		{
			name:       "file value",
			line:       "generate-document case_id=2 attachment=@/tmp/contrato.pdf",
			wantAction: application.ActionGenerateDocument,
			check: func(t *testing.T, form application.Form) {
				assert.Equal(t, "/tmp/contrato.pdf", form.File("attachment"))
				assert.Empty(t, form.Get("attachment"))
			},
		},
		{name: "missing equals", line: "search estafa", wantErr: true},
		{name: "empty key", line: "search =x", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			action, form, err := parseShellLine(tc.line)
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, errMalformedLine)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAction, action)
			tc.check(t, form)
		})
	}
}

func newFakeBackend(t *testing.T) *fakebackend.Backend {
	t.Helper()

	fake := fakebackend.New(t)
	fake.AddUser(fakebackend.User{
		Username: "ana@example.com",
		Password: "pw123",
		Email:    "ana@example.com",
		FullName: "Ana García",
	})
	return fake
}

func executeCLI(t *testing.T, home, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
