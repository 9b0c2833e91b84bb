package api

import (
	"bytes"
	"context"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
)

// Backend adapts Client to ports.LegalService.
type Backend struct {
	client *Client
}

var _ ports.LegalService = (*Backend)(nil)

func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

func (b *Backend) IssueToken(ctx context.Context, credentials domain.Credentials) (string, error) {
	return b.client.IssueToken(ctx, credentials.Identifier, credentials.Secret)
}

func (b *Backend) CurrentUser(ctx context.Context, token string) (domain.UserProfile, error) {
	return b.client.WithToken(token).CurrentUser(ctx)
}

func (b *Backend) Register(ctx context.Context, registration domain.Registration) (domain.RegisteredUser, error) {
	return b.client.Register(ctx, RegisterRequest{
		FullName: registration.FullName,
		Email:    registration.Email,
		Username: registration.Username,
		Password: registration.Secret,
	})
}

func (b *Backend) PredictOutcome(ctx context.Context, req domain.AnalysisRequest) (domain.AnalysisResult, error) {
	return b.client.Predict(ctx, PredictRequest{
		CaseDescription: req.Description,
		CaseType:        req.CaseType,
		RelevantFacts:   req.Facts,
	})
}

func (b *Backend) SearchJurisprudence(ctx context.Context, query domain.SearchQuery) (domain.SearchResultSet, error) {
	return b.client.Search(ctx, SearchRequest{
		Query:    query.Query,
		Tribunal: query.Tribunal,
		Materia:  query.Subject,
		From:     query.From,
		To:       query.To,
		Limit:    query.Limit,
	})
}

func (b *Backend) GenerateDocument(ctx context.Context, req domain.DocumentRequest) (domain.GeneratedDocument, error) {
	generate := GenerateRequest{
		CaseID:       req.CaseID,
		DocumentType: req.DocumentType,
		TemplateName: req.TemplateName,
		Details:      req.Details,
	}
	if req.Attachment != nil {
		generate.Attachment = &Attachment{
			FileName: req.Attachment.FileName,
			Content:  bytes.NewReader(req.Attachment.Content),
		}
	}

	return b.client.GenerateDocument(ctx, generate)
}

func (b *Backend) Summarize(ctx context.Context, content string, kind domain.SummaryKind) (domain.DocumentSummary, error) {
	return b.client.Summarize(ctx, content, kind)
}

func (b *Backend) Templates(ctx context.Context) ([]domain.Template, error) {
	return b.client.Templates(ctx)
}

func (b *Backend) ListCases(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	return b.client.ListCases(ctx, filter)
}

func (b *Backend) GetCase(ctx context.Context, id domain.CaseID) (domain.Case, error) {
	return b.client.GetCase(ctx, id)
}

func (b *Backend) UpdateCase(ctx context.Context, id domain.CaseID, update domain.CaseUpdate) (domain.Case, error) {
	req := UpdateCaseRequest{
		Title:       update.Title,
		Description: update.Description,
		CaseType:    update.CaseType,
	}
	if update.Status != nil {
		status := string(*update.Status)
		req.Status = &status
	}
	return b.client.UpdateCase(ctx, id, req)
}

func (b *Backend) CaseDocuments(ctx context.Context, id domain.CaseID) (domain.CaseDocuments, error) {
	return b.client.CaseDocuments(ctx, id)
}

func (b *Backend) CreateCase(ctx context.Context, draft domain.CaseDraft) (domain.Case, error) {
	return b.client.CreateCase(ctx, CreateCaseRequest{
		CaseNumber:  draft.ExpedientNumber,
		Title:       draft.Title,
		Description: draft.Description,
		CaseType:    draft.CaseType,
		Status:      string(draft.Status),
		Priority:    string(draft.Priority),
	})
}

func (b *Backend) ChangeCaseStatus(ctx context.Context, id domain.CaseID, status domain.CaseStatus) error {
	return b.client.ChangeCaseStatus(ctx, id, status)
}

func (b *Backend) DeleteCase(ctx context.Context, id domain.CaseID) error {
	return b.client.DeleteCase(ctx, id)
}
