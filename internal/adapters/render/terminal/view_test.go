package terminal

import (
	"testing"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderAnalysis(t *testing.T) {
	output := renderAnalysis(domain.AnalysisResult{
		Prediction:      "favorable",
		Confidence:      0.72,
		Explanation:     "Precedents support the claim.",
		Recommendations: []string{"Gather the contract", "File before the deadline"},
		SimilarCases: []domain.CaseReference{
			{Tribunal: "Sala Penal", Expedient: "123-2020", Subject: "estafa"},
		},
	}, newStyles())

	assert.Contains(t, output, "Case analysis")
	assert.Contains(t, output, "prediction: favorable")
	assert.Contains(t, output, "72%")
	assert.Contains(t, output, "[")
	assert.Contains(t, output, "- Gather the contract")
	assert.Contains(t, output, "similar cases: 1")
	assert.Contains(t, output, "Sala Penal · 123-2020: estafa")
}

func TestRenderAnalysisWithoutPrediction(t *testing.T) {
	output := renderAnalysis(domain.AnalysisResult{}, newStyles())

	assert.Contains(t, output, "prediction: n/a")
	assert.Contains(t, output, " 0%")
	assert.NotContains(t, output, "similar cases")
}

func TestRenderConfidenceBar(t *testing.T) {
	s := newStyles()

	assert.Equal(t, "[=======---]", renderConfidenceBar(72, 10, s))
	assert.Equal(t, "[----------]", renderConfidenceBar(-5, 10, s))
	assert.Equal(t, "[==========]", renderConfidenceBar(140, 10, s))
	assert.Equal(t, "", renderConfidenceBar(50, 0, s))
}

func TestInterpolateColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("240"), interpolateColor(0, 0, 100))
	assert.Equal(t, lipgloss.Color("255"), interpolateColor(100, 0, 100))
	assert.Equal(t, lipgloss.Color("255"), interpolateColor(5, 1, 1))
	assert.Equal(t, lipgloss.Color("240"), interpolateColor(-20, 0, 100))
}

func TestRenderSearch(t *testing.T) {
	score := 0.91
	output := renderSearch(domain.SearchResultSet{
		Total: 1,
		Judgments: []domain.JudgmentSummary{
			{
				Tribunal:  "Corte Suprema",
				Expedient: "CAS-456-2019",
				Date:      "2019-05-02",
				Subject:   "estafa agravada",
				Excerpt:   "El acusado indujo a error...",
				Score:     &score,
			},
		},
	}, newStyles())

	assert.Contains(t, output, "results: 1")
	assert.Contains(t, output, "Corte Suprema CAS-456-2019")
	assert.Contains(t, output, "(91% match)")
	assert.Contains(t, output, "subject: estafa agravada")
	assert.Contains(t, output, "El acusado indujo a error...")
}

func TestRenderSearchEmpty(t *testing.T) {
	output := renderSearch(domain.SearchResultSet{}, newStyles())

	assert.Contains(t, output, "results: 0")
	assert.Contains(t, output, "No judgments matched the query.")
}

func TestRenderCases(t *testing.T) {
	output := renderCases([]domain.Case{
		{
			ID:              7,
			ExpedientNumber: "EXP-2026-001",
			Title:           "Despido arbitrario",
			CaseType:        "laboral",
			Status:          domain.CaseStatusInProgress,
			Priority:        domain.CasePriorityHigh,
			CreatedAt:       time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
		},
	}, newStyles())

	assert.Contains(t, output, "cases: 1")
	assert.Contains(t, output, "#7 Despido arbitrario")
	assert.Contains(t, output, "[In progress · high priority]")
	assert.Contains(t, output, "expedient: EXP-2026-001")
	assert.Contains(t, output, "created: 2026-10-01 09:30")
}

func TestRenderCasesEmpty(t *testing.T) {
	assert.Contains(t, renderCases(nil, newStyles()), "No cases yet.")
}

func TestRenderSession(t *testing.T) {
	s := newStyles()

	assert.Contains(t, renderSession(domain.SessionAnonymous, domain.Session{}, s), "Not signed in.")
	assert.Contains(t, renderSession(domain.SessionAuthenticating, domain.Session{}, s), "Signing in...")

	output := renderSession(domain.SessionAuthenticated, domain.Session{
		Token: "T1",
		User:  &domain.UserProfile{FullName: "Ana", Email: "ana@example.com", IsPrivileged: true},
	}, s)
	assert.Contains(t, output, "Signed in as Ana")
	assert.Contains(t, output, "email: ana@example.com")
	assert.Contains(t, output, "role: administrator")
}

func TestRenderPromptLogin(t *testing.T) {
	output := renderPromptLogin(domain.RegisteredUser{Email: "ana@example.com", Username: "ana"}, newStyles())

	assert.Contains(t, output, "Account created for ana@example.com")
	assert.Contains(t, output, "--identifier ana")
}

func TestRenderDocumentAndSummary(t *testing.T) {
	s := newStyles()

	doc := renderDocument(domain.GeneratedDocument{
		Content:      "DOCUMENTO: DEMANDA",
		TemplateUsed: "demanda_civil",
		Citations:    []string{"Art. 1969 CC"},
	}, s)
	assert.Contains(t, doc, "template: demanda_civil")
	assert.Contains(t, doc, "DOCUMENTO: DEMANDA")
	assert.Contains(t, doc, "- Art. 1969 CC")

	summary := renderSummary(domain.DocumentSummary{
		Summary:        "Resumen breve",
		Kind:           domain.SummaryCitizen,
		OriginalLength: 120,
		SummaryLength:  13,
	}, s)
	assert.Contains(t, summary, "Summary (citizen)")
	assert.Contains(t, summary, "120 → 13 characters")
	assert.Contains(t, summary, "Resumen breve")
}

func TestRenderTemplates(t *testing.T) {
	output := renderTemplates([]domain.Template{
		{ID: 1, Name: "demanda_civil", DocumentType: "demanda"},
	}, newStyles())

	assert.Contains(t, output, "templates: 1")
	assert.Contains(t, output, "demanda_civil (demanda)")
	assert.Contains(t, renderTemplates(nil, newStyles()), "No templates available.")
}

func TestRenderNotification(t *testing.T) {
	s := newStyles()

	assert.Equal(t, "error: Incorrect username or password",
		renderNotification(domain.Notification{Level: domain.NotifyError, Message: "Incorrect username or password"}, s))
	assert.Equal(t, "info: hello", renderNotification(domain.Notification{Message: "hello"}, s))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("  short ", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestRenderCaseDetail(t *testing.T) {
	output := renderCaseDetail(domain.Case{
		ID:              7,
		ExpedientNumber: "EXP-7",
		Title:           "Despido",
		CaseType:        "laboral",
		Status:          domain.CaseStatusInProgress,
		Priority:        domain.CasePriorityHigh,
	}, newStyles())

	assert.Contains(t, output, "Case")
	assert.Contains(t, output, "#7 Despido")
	assert.Contains(t, output, "expedient: EXP-7")
	assert.Contains(t, output, "type: laboral")
}

func TestRenderCaseDocuments(t *testing.T) {
	output := renderCaseDocuments(domain.CaseDocuments{
		CaseID:          7,
		CaseTitle:       "Despido",
		ExpedientNumber: "EXP-7",
		Total:           1,
		Documents: []domain.CaseDocument{{
			ID:            3,
			Title:         "demanda - Despido",
			DocumentType:  "demanda",
			CreatedAt:     time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
			ContentLength: 1200,
		}},
	}, newStyles())

	assert.Contains(t, output, "Documents for case #7 Despido")
	assert.Contains(t, output, "documents: 1")
	assert.Contains(t, output, "#3 demanda - Despido")
	assert.Contains(t, output, "demanda · 2026-10-18 09:30 · 1200 chars")
}

func TestRenderCaseDocumentsEmpty(t *testing.T) {
	output := renderCaseDocuments(domain.CaseDocuments{CaseID: 2}, newStyles())

	assert.Contains(t, output, "documents: 0")
	assert.Contains(t, output, "No documents generated for this case.")
}
