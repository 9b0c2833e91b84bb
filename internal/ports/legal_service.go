package ports

import (
	"context"

	"github.com/bnema/legalai-cli/internal/domain"
)

// LegalService is the remote Legal AI API. Calls other than IssueToken and
// CurrentUser authenticate with the current session token, if any.
type LegalService interface {
	IssueToken(ctx context.Context, credentials domain.Credentials) (string, error)
	// CurrentUser authenticates with token rather than the session token.
	CurrentUser(ctx context.Context, token string) (domain.UserProfile, error)
	Register(ctx context.Context, registration domain.Registration) (domain.RegisteredUser, error)

	PredictOutcome(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error)
	SearchJurisprudence(ctx context.Context, query domain.SearchQuery) (domain.SearchResultSet, error)
	GenerateDocument(ctx context.Context, req domain.DocumentRequest) (domain.GeneratedDocument, error)
	Summarize(ctx context.Context, content string, kind domain.SummaryKind) (domain.DocumentSummary, error)
	Templates(ctx context.Context) ([]domain.Template, error)

	ListCases(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error)
	GetCase(ctx context.Context, id domain.CaseID) (domain.Case, error)
	CreateCase(ctx context.Context, draft domain.CaseDraft) (domain.Case, error)
	UpdateCase(ctx context.Context, id domain.CaseID, update domain.CaseUpdate) (domain.Case, error)
	CaseDocuments(ctx context.Context, id domain.CaseID) (domain.CaseDocuments, error)
	ChangeCaseStatus(ctx context.Context, id domain.CaseID, status domain.CaseStatus) error
	DeleteCase(ctx context.Context, id domain.CaseID) error
}
