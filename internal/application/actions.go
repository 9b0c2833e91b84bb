package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
)

// Every action validates locally, then shows the busy indicator for the
// duration of its call. On failure the previous result stays in place. The
// token held at the start of the call is what a 401 is checked against.

func (c *Controller) AnalyzeCase(ctx context.Context, cmd AnalyzeCaseCommand) (domain.AnalysisResult, error) {
	req, err := cmd.request()
	if err != nil {
		return domain.AnalysisResult{}, c.reject(ActionAnalyze, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	result, err := c.api.PredictOutcome(ctx, req)
	if err != nil {
		return domain.AnalysisResult{}, c.failRequest(ctx, token, ActionAnalyze, fmt.Errorf("analyze case: %w", err))
	}

	c.results.setAnalysis(result)
	c.presenter.RenderAnalysis(result)
	return result, nil
}

func (c *Controller) SearchJurisprudence(ctx context.Context, cmd SearchCommand) (domain.SearchResultSet, error) {
	query, err := cmd.query()
	if err != nil {
		return domain.SearchResultSet{}, c.reject(ActionSearch, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	results, err := c.api.SearchJurisprudence(ctx, query)
	if err != nil {
		return domain.SearchResultSet{}, c.failRequest(ctx, token, ActionSearch, fmt.Errorf("search jurisprudence: %w", err))
	}

	c.results.setSearch(results)
	c.presenter.RenderSearch(results)
	return results, nil
}

func (c *Controller) GenerateDocument(ctx context.Context, cmd GenerateDocumentCommand) (domain.GeneratedDocument, error) {
	req, err := cmd.request(c.files)
	if err != nil {
		return domain.GeneratedDocument{}, c.reject(ActionGenerateDocument, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	doc, err := c.api.GenerateDocument(ctx, req)
	if err != nil {
		return domain.GeneratedDocument{}, c.failRequest(ctx, token, ActionGenerateDocument, fmt.Errorf("generate document: %w", err))
	}

	c.results.setDocument(doc)
	c.presenter.RenderDocument(doc)
	c.notify(domain.NotifySuccess, "Document generated.")
	return doc, nil
}

func (c *Controller) SummarizeDocument(ctx context.Context, cmd SummarizeCommand) (domain.DocumentSummary, error) {
	content, kind, err := cmd.parse(c.files)
	if err != nil {
		return domain.DocumentSummary{}, c.reject(ActionSummarize, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	summary, err := c.api.Summarize(ctx, content, kind)
	if err != nil {
		return domain.DocumentSummary{}, c.failRequest(ctx, token, ActionSummarize, fmt.Errorf("summarize document: %w", err))
	}

	c.results.setSummary(summary)
	c.presenter.RenderSummary(summary)
	return summary, nil
}

func (c *Controller) LoadTemplates(ctx context.Context) ([]domain.Template, error) {
	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	templates, err := c.api.Templates(ctx)
	if err != nil {
		return nil, c.failRequest(ctx, token, ActionLoadTemplates, fmt.Errorf("load templates: %w", err))
	}

	c.results.setTemplates(templates)
	c.presenter.RenderTemplates(templates)
	return templates, nil
}

// LoadUserCases renders a placeholder without any call when anonymous.
func (c *Controller) LoadUserCases(ctx context.Context, query LoadCasesQuery) error {
	filter := domain.CaseFilter{CaseType: strings.TrimSpace(query.CaseType)}
	if query.Status != "" {
		parsed, err := domain.ParseCaseStatus(query.Status)
		if err != nil {
			return c.reject(ActionLoadCases, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown case status %q", query.Status)})
		}
		filter.Status = parsed
	}

	if !c.Session().HasToken() {
		c.results.setCasesPlaceholder(CasesPlaceholderMessage)
		c.presenter.RenderCasesPlaceholder(CasesPlaceholderMessage)
		return nil
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	return c.reloadCases(ctx, token, ActionLoadCases, filter)
}

func (c *Controller) CreateCase(ctx context.Context, cmd CreateCaseCommand) (domain.Case, error) {
	draft, err := cmd.draft()
	if err != nil {
		return domain.Case{}, c.reject(ActionCreateCase, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	created, err := c.api.CreateCase(ctx, draft)
	if err != nil {
		return domain.Case{}, c.failRequest(ctx, token, ActionCreateCase, fmt.Errorf("create case: %w", err))
	}

	c.notify(domain.NotifySuccess, fmt.Sprintf("Case %s created.", created.ExpedientNumber))
	_ = c.reloadCases(ctx, token, ActionCreateCase, domain.CaseFilter{})
	return created, nil
}

func (c *Controller) ChangeCaseStatus(ctx context.Context, cmd ChangeCaseStatusCommand) error {
	id, status, err := cmd.parse()
	if err != nil {
		return c.reject(ActionChangeCaseStatus, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	if err := c.api.ChangeCaseStatus(ctx, id, status); err != nil {
		return c.failRequest(ctx, token, ActionChangeCaseStatus, fmt.Errorf("change case status: %w", err))
	}

	c.notify(domain.NotifySuccess, fmt.Sprintf("Case %d is now %s.", id, status.Label()))
	_ = c.reloadCases(ctx, token, ActionChangeCaseStatus, domain.CaseFilter{})
	return nil
}

func (c *Controller) GetCase(ctx context.Context, query GetCaseQuery) (domain.Case, error) {
	id, err := parseCaseID(query.CaseID)
	if err != nil {
		return domain.Case{}, c.reject(ActionGetCase, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	found, err := c.api.GetCase(ctx, id)
	if err != nil {
		return domain.Case{}, c.failRequest(ctx, token, ActionGetCase, fmt.Errorf("get case: %w", err))
	}

	c.results.setCase(found)
	c.presenter.RenderCase(found)
	return found, nil
}

func (c *Controller) UpdateCase(ctx context.Context, cmd UpdateCaseCommand) (domain.Case, error) {
	id, update, err := cmd.parse()
	if err != nil {
		return domain.Case{}, c.reject(ActionUpdateCase, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	updated, err := c.api.UpdateCase(ctx, id, update)
	if err != nil {
		return domain.Case{}, c.failRequest(ctx, token, ActionUpdateCase, fmt.Errorf("update case: %w", err))
	}

	c.results.setCase(updated)
	c.presenter.RenderCase(updated)
	c.notify(domain.NotifySuccess, fmt.Sprintf("Case %d updated.", id))
	_ = c.reloadCases(ctx, token, ActionUpdateCase, domain.CaseFilter{})
	return updated, nil
}

func (c *Controller) LoadCaseDocuments(ctx context.Context, query CaseDocumentsQuery) (domain.CaseDocuments, error) {
	id, err := parseCaseID(query.CaseID)
	if err != nil {
		return domain.CaseDocuments{}, c.reject(ActionCaseDocuments, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	docs, err := c.api.CaseDocuments(ctx, id)
	if err != nil {
		return domain.CaseDocuments{}, c.failRequest(ctx, token, ActionCaseDocuments, fmt.Errorf("load case documents: %w", err))
	}

	c.results.setCaseDocuments(docs)
	c.presenter.RenderCaseDocuments(docs)
	return docs, nil
}

func (c *Controller) DeleteCase(ctx context.Context, cmd DeleteCaseCommand) error {
	id, err := parseCaseID(cmd.CaseID)
	if err != nil {
		return c.reject(ActionDeleteCase, err)
	}

	c.presenter.SetBusy(true)
	defer c.presenter.SetBusy(false)

	token := c.Token()
	if err := c.api.DeleteCase(ctx, id); err != nil {
		return c.failRequest(ctx, token, ActionDeleteCase, fmt.Errorf("delete case: %w", err))
	}

	c.notify(domain.NotifySuccess, fmt.Sprintf("Case %d deleted.", id))
	_ = c.reloadCases(ctx, token, ActionDeleteCase, domain.CaseFilter{})
	return nil
}

// reloadCases runs inside an action that already shows the busy indicator.
func (c *Controller) reloadCases(ctx context.Context, token string, action ActionID, filter domain.CaseFilter) error {
	cases, err := c.api.ListCases(ctx, filter)
	if err != nil {
		return c.failRequest(ctx, token, action, fmt.Errorf("load cases: %w", err))
	}

	c.results.setCases(cases)
	c.presenter.RenderCases(cases)
	return nil
}
