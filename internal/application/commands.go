package application

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/spf13/afero"
)

type LoginCommand struct {
	Identifier string
	Secret     string
}

func (c LoginCommand) credentials() (domain.Credentials, error) {
	identifier := strings.TrimSpace(c.Identifier)
	if identifier == "" {
		return domain.Credentials{}, domain.Required("identifier", "Username or email")
	}
	if c.Secret == "" {
		return domain.Credentials{}, domain.Required("secret", "Password")
	}

	return domain.Credentials{Identifier: identifier, Secret: c.Secret}, nil
}

type RegisterCommand struct {
	FullName     string
	Email        string
	Username     string
	Secret       string
	Confirmation string
}

// registration checks presence first, then that both passwords match. A
// blank username falls back to the email address.
func (c RegisterCommand) registration() (domain.Registration, error) {
	reg := domain.Registration{
		FullName: strings.TrimSpace(c.FullName),
		Email:    strings.TrimSpace(c.Email),
		Username: strings.TrimSpace(c.Username),
		Secret:   c.Secret,
	}

	switch {
	case reg.FullName == "":
		return domain.Registration{}, domain.Required("full_name", "Full name")
	case reg.Email == "":
		return domain.Registration{}, domain.Required("email", "Email")
	case reg.Secret == "":
		return domain.Registration{}, domain.Required("secret", "Password")
	case c.Secret != c.Confirmation:
		return domain.Registration{}, &domain.ValidationError{Field: "confirmation", Message: "Passwords do not match"}
	}

	if reg.Username == "" {
		reg.Username = reg.Email
	}

	return reg, nil
}

type AnalyzeCaseCommand struct {
	Description string
	CaseType    string
	Facts       []string
}

func (c AnalyzeCaseCommand) request() (domain.AnalysisRequest, error) {
	description := strings.TrimSpace(c.Description)
	if description == "" {
		return domain.AnalysisRequest{}, domain.Required("description", "Case description")
	}

	caseType := strings.TrimSpace(c.CaseType)
	if caseType == "" {
		caseType = "civil"
	}

	return domain.AnalysisRequest{
		Description: description,
		CaseType:    caseType,
		Facts:       nonEmpty(c.Facts),
	}, nil
}

type SearchCommand struct {
	Query    string
	Tribunal string
	Subject  string
	From     string
	To       string
	Limit    int
}

func (c SearchCommand) query() (domain.SearchQuery, error) {
	query := strings.TrimSpace(c.Query)
	if query == "" {
		return domain.SearchQuery{}, domain.Required("query", "Search query")
	}

	return domain.SearchQuery{
		Query:    query,
		Tribunal: strings.TrimSpace(c.Tribunal),
		Subject:  strings.TrimSpace(c.Subject),
		From:     strings.TrimSpace(c.From),
		To:       strings.TrimSpace(c.To),
		Limit:    c.Limit,
	}, nil
}

type GenerateDocumentCommand struct {
	CaseID         string
	DocumentType   string
	TemplateName   string
	Details        map[string]string
	AttachmentPath string
}

// request reads the attachment, if any, from files. Read failures count as
// local validation errors since nothing was sent yet.
func (c GenerateDocumentCommand) request(files afero.Fs) (domain.DocumentRequest, error) {
	id, err := parseCaseID(c.CaseID)
	if err != nil {
		return domain.DocumentRequest{}, err
	}

	documentType := strings.TrimSpace(c.DocumentType)
	if documentType == "" {
		return domain.DocumentRequest{}, domain.Required("document_type", "Document type")
	}

	req := domain.DocumentRequest{
		CaseID:       id,
		DocumentType: documentType,
		TemplateName: strings.TrimSpace(c.TemplateName),
		Details:      c.Details,
	}

	path := strings.TrimSpace(c.AttachmentPath)
	if path == "" {
		return req, nil
	}

	info, err := files.Stat(path)
	if err != nil {
		return domain.DocumentRequest{}, &domain.ValidationError{Field: "attachment", Message: fmt.Sprintf("Attachment %s cannot be read", path)}
	}
	if info.IsDir() {
		return domain.DocumentRequest{}, &domain.ValidationError{Field: "attachment", Message: fmt.Sprintf("Attachment %s is a directory", path)}
	}
	content, err := afero.ReadFile(files, path)
	if err != nil {
		return domain.DocumentRequest{}, &domain.ValidationError{Field: "attachment", Message: fmt.Sprintf("Attachment %s cannot be read", path)}
	}
	req.Attachment = &domain.Attachment{FileName: filepath.Base(path), Content: content}

	return req, nil
}

type CreateCaseCommand struct {
	ExpedientNumber string
	Title           string
	Description     string
	CaseType        string
	Status          string
	Priority        string
}

func (c CreateCaseCommand) draft() (domain.CaseDraft, error) {
	draft := domain.CaseDraft{
		ExpedientNumber: strings.TrimSpace(c.ExpedientNumber),
		Title:           strings.TrimSpace(c.Title),
		Description:     strings.TrimSpace(c.Description),
		CaseType:        strings.TrimSpace(c.CaseType),
		Status:          domain.CaseStatusInitiated,
		Priority:        domain.CasePriorityMedium,
	}

	if draft.ExpedientNumber == "" {
		return domain.CaseDraft{}, domain.Required("expedient_number", "Expedient number")
	}
	if draft.Title == "" {
		return domain.CaseDraft{}, domain.Required("title", "Title")
	}

	if strings.TrimSpace(c.Status) != "" {
		status, err := domain.ParseCaseStatus(c.Status)
		if err != nil {
			return domain.CaseDraft{}, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown case status %q", c.Status)}
		}
		draft.Status = status
	}
	if strings.TrimSpace(c.Priority) != "" {
		priority, err := domain.ParseCasePriority(c.Priority)
		if err != nil {
			return domain.CaseDraft{}, &domain.ValidationError{Field: "priority", Message: fmt.Sprintf("Unknown case priority %q", c.Priority)}
		}
		draft.Priority = priority
	}

	return draft, nil
}

type ChangeCaseStatusCommand struct {
	CaseID string
	Status string
}

func (c ChangeCaseStatusCommand) parse() (domain.CaseID, domain.CaseStatus, error) {
	id, err := parseCaseID(c.CaseID)
	if err != nil {
		return 0, "", err
	}
	if strings.TrimSpace(c.Status) == "" {
		return 0, "", domain.Required("status", "Status")
	}
	status, err := domain.ParseCaseStatus(c.Status)
	if err != nil {
		return 0, "", &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown case status %q", c.Status)}
	}

	return id, status, nil
}

type DeleteCaseCommand struct {
	CaseID string
}

// UpdateCaseCommand changes only the fields that are set.
type UpdateCaseCommand struct {
	CaseID      string
	Title       *string
	Description *string
	CaseType    *string
	Status      *string
}

func (c UpdateCaseCommand) parse() (domain.CaseID, domain.CaseUpdate, error) {
	id, err := parseCaseID(c.CaseID)
	if err != nil {
		return 0, domain.CaseUpdate{}, err
	}

	var update domain.CaseUpdate
	if c.Title != nil {
		title := strings.TrimSpace(*c.Title)
		if title == "" {
			return 0, domain.CaseUpdate{}, domain.Required("title", "Title")
		}
		update.Title = &title
	}
	if c.Description != nil {
		description := strings.TrimSpace(*c.Description)
		update.Description = &description
	}
	if c.CaseType != nil {
		caseType := strings.TrimSpace(*c.CaseType)
		update.CaseType = &caseType
	}
	if c.Status != nil {
		status, err := domain.ParseCaseStatus(*c.Status)
		if err != nil {
			return 0, domain.CaseUpdate{}, &domain.ValidationError{Field: "status", Message: fmt.Sprintf("Unknown case status %q", *c.Status)}
		}
		update.Status = &status
	}
	if update.Empty() {
		return 0, domain.CaseUpdate{}, &domain.ValidationError{Field: "case", Message: "Nothing to update"}
	}

	return id, update, nil
}

// The backend takes the document in the query string, so long documents
// would exceed server URL limits.
const maxSummaryContentBytes = 4 << 10

type SummarizeCommand struct {
	Content string
	// DocumentPath is read when Content is blank.
	DocumentPath string
	Kind         string
}

func (c SummarizeCommand) parse(files afero.Fs) (string, domain.SummaryKind, error) {
	content := strings.TrimSpace(c.Content)
	if content == "" && strings.TrimSpace(c.DocumentPath) != "" {
		path := strings.TrimSpace(c.DocumentPath)
		data, err := afero.ReadFile(files, path)
		if err != nil {
			return "", "", &domain.ValidationError{Field: "document", Message: fmt.Sprintf("Document %s cannot be read", path)}
		}
		content = strings.TrimSpace(string(data))
	}
	if content == "" {
		return "", "", domain.Required("content", "Document content")
	}
	if len(content) > maxSummaryContentBytes {
		return "", "", &domain.ValidationError{Field: "content", Message: fmt.Sprintf("Document is too long to summarize (%d bytes, limit %d)", len(content), maxSummaryContentBytes)}
	}

	switch kind := domain.SummaryKind(strings.ToLower(strings.TrimSpace(c.Kind))); kind {
	case "":
		return content, domain.SummaryTechnical, nil
	case domain.SummaryTechnical, domain.SummaryCitizen:
		return content, kind, nil
	default:
		return "", "", &domain.ValidationError{Field: "kind", Message: fmt.Sprintf("Unknown summary kind %q", c.Kind)}
	}
}

func parseCaseID(raw string) (domain.CaseID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, domain.Required("case_id", "Case")
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: "case_id", Message: fmt.Sprintf("Case %q is not a valid case id", trimmed)}
	}
	return domain.CaseID(id), nil
}

func nonEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
