package ports

import (
	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/google/uuid"
)

// Presenter is the produced side of the UI. Implementations must be safe for
// concurrent use since actions may complete in any order.
type Presenter interface {
	SetBusy(visible bool)
	Notify(n domain.Notification)
	Dismiss(id uuid.UUID)

	RenderSession(state domain.SessionState, session domain.Session)
	PromptLogin(user domain.RegisteredUser)
	RenderAnalysis(result domain.AnalysisResult)
	RenderSearch(results domain.SearchResultSet)
	RenderDocument(doc domain.GeneratedDocument)
	RenderSummary(summary domain.DocumentSummary)
	RenderTemplates(templates []domain.Template)
	RenderCases(cases []domain.Case)
	RenderCasesPlaceholder(message string)
	RenderCase(c domain.Case)
	RenderCaseDocuments(docs domain.CaseDocuments)
}
