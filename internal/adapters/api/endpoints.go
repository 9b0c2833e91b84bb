package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
)

const (
	PathToken         = "/auth/token"
	PathRegister      = "/auth/register"
	PathCurrentUser   = "/auth/me"
	PathPredict       = "/analysis/predict"
	PathSearch        = "/search/query"
	PathGenerate      = "/documents/generate"
	PathSummarize     = "/documents/summarize"
	PathTemplates     = "/documents/templates"
	PathCases         = "/cases/"
	pathCaseTemplate  = "/cases/%d"
	pathCaseStatusFmt = "/cases/%d/change-status"
	pathCaseDocsFmt   = "/cases/%d/documents"
)

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type PredictRequest struct {
	CaseDescription string   `json:"case_description"`
	CaseType        string   `json:"case_type"`
	RelevantFacts   []string `json:"relevant_facts"`
}

type SearchRequest struct {
	Query    string `json:"query"`
	Tribunal string `json:"tribunal,omitempty"`
	Materia  string `json:"materia,omitempty"`
	From     string `json:"fecha_desde,omitempty"`
	To       string `json:"fecha_hasta,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

type CreateCaseRequest struct {
	CaseNumber  string `json:"case_number"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CaseType    string `json:"case_type"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// UpdateCaseRequest is a partial update; nil fields are not sent.
type UpdateCaseRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	CaseType    *string `json:"case_type,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type Attachment struct {
	FileName string
	Content  io.Reader
}

type GenerateRequest struct {
	CaseID       domain.CaseID
	DocumentType string
	TemplateName string
	Details      map[string]string
	Attachment   *Attachment
}

// IssueToken exchanges credentials for a bearer token. The request never
// carries an Authorization header.
func (c *Client) IssueToken(ctx context.Context, identifier, secret string) (string, error) {
	values := url.Values{}
	values.Set("username", identifier)
	values.Set("password", secret)

	raw, err := c.WithToken("").Call(ctx, http.MethodPost, PathToken, Payload{
		Body:        strings.NewReader(values.Encode()),
		ContentType: "application/x-www-form-urlencoded",
	}, true)
	if err != nil {
		return "", err
	}

	var payload tokenResponse
	if err := decode(raw, &payload); err != nil {
		return "", err
	}
	token := str(payload.AccessToken)
	if token == "" {
		return "", fmt.Errorf("%w: token response missing access_token", domain.ErrAuthentication)
	}

	return token, nil
}

func (c *Client) CurrentUser(ctx context.Context) (domain.UserProfile, error) {
	raw, err := c.Call(ctx, http.MethodGet, PathCurrentUser, nil, false)
	if err != nil {
		return domain.UserProfile{}, err
	}

	var payload userResponse
	if err := decode(raw, &payload); err != nil {
		return domain.UserProfile{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (domain.RegisteredUser, error) {
	raw, err := c.Call(ctx, http.MethodPost, PathRegister, req, false)
	if err != nil {
		return domain.RegisteredUser{}, err
	}

	var payload userResponse
	if err := decode(raw, &payload); err != nil {
		return domain.RegisteredUser{}, err
	}

	return payload.toRegistered(), nil
}

func (c *Client) Predict(ctx context.Context, req PredictRequest) (domain.AnalysisResult, error) {
	if req.RelevantFacts == nil {
		req.RelevantFacts = []string{}
	}

	raw, err := c.Call(ctx, http.MethodPost, PathPredict, req, false)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	var payload analysisResponse
	if err := decode(raw, &payload); err != nil {
		return domain.AnalysisResult{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) Search(ctx context.Context, req SearchRequest) (domain.SearchResultSet, error) {
	raw, err := c.Call(ctx, http.MethodPost, PathSearch, req, false)
	if err != nil {
		return domain.SearchResultSet{}, err
	}

	set, err := decodeSearch(raw)
	if err != nil {
		return domain.SearchResultSet{}, malformed(err)
	}

	return set, nil
}

// GenerateDocument posts a multipart form; the attachment, when present, is
// streamed as the "attachment" file part.
func (c *Client) GenerateDocument(ctx context.Context, req GenerateRequest) (domain.GeneratedDocument, error) {
	payload, err := encodeGenerateForm(req)
	if err != nil {
		return domain.GeneratedDocument{}, err
	}

	raw, err := c.Call(ctx, http.MethodPost, PathGenerate, payload, true)
	if err != nil {
		return domain.GeneratedDocument{}, err
	}

	var response generateResponse
	if err := decode(raw, &response); err != nil {
		return domain.GeneratedDocument{}, err
	}

	return response.toDomain(), nil
}

func (c *Client) ListCases(ctx context.Context, filter domain.CaseFilter) ([]domain.Case, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status_filter", string(filter.Status))
	}
	if filter.CaseType != "" {
		query.Set("case_type_filter", filter.CaseType)
	}
	path := PathCases
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	raw, err := c.Call(ctx, http.MethodGet, path, nil, false)
	if err != nil {
		return nil, err
	}

	var payload []caseResponse
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}

	cases := make([]domain.Case, 0, len(payload))
	for _, entry := range payload {
		cases = append(cases, entry.toDomain())
	}

	return cases, nil
}

func (c *Client) GetCase(ctx context.Context, id domain.CaseID) (domain.Case, error) {
	raw, err := c.Call(ctx, http.MethodGet, fmt.Sprintf(pathCaseTemplate, id), nil, false)
	if err != nil {
		return domain.Case{}, err
	}

	var payload caseResponse
	if err := decode(raw, &payload); err != nil {
		return domain.Case{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) UpdateCase(ctx context.Context, id domain.CaseID, req UpdateCaseRequest) (domain.Case, error) {
	raw, err := c.Call(ctx, http.MethodPut, fmt.Sprintf(pathCaseTemplate, id), req, false)
	if err != nil {
		return domain.Case{}, err
	}

	var payload caseResponse
	if err := decode(raw, &payload); err != nil {
		return domain.Case{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) CaseDocuments(ctx context.Context, id domain.CaseID) (domain.CaseDocuments, error) {
	raw, err := c.Call(ctx, http.MethodGet, fmt.Sprintf(pathCaseDocsFmt, id), nil, false)
	if err != nil {
		return domain.CaseDocuments{}, err
	}

	var payload caseDocumentsResponse
	if err := decode(raw, &payload); err != nil {
		return domain.CaseDocuments{}, err
	}

	return payload.toDomain(id), nil
}

func (c *Client) CreateCase(ctx context.Context, req CreateCaseRequest) (domain.Case, error) {
	raw, err := c.Call(ctx, http.MethodPost, PathCases, req, false)
	if err != nil {
		return domain.Case{}, err
	}

	var payload caseResponse
	if err := decode(raw, &payload); err != nil {
		return domain.Case{}, err
	}

	return payload.toDomain(), nil
}

func (c *Client) ChangeCaseStatus(ctx context.Context, id domain.CaseID, status domain.CaseStatus) error {
	path := fmt.Sprintf(pathCaseStatusFmt, id) + "?" + url.Values{"new_status": {string(status)}}.Encode()
	_, err := c.Call(ctx, http.MethodPost, path, nil, false)
	return err
}

func (c *Client) DeleteCase(ctx context.Context, id domain.CaseID) error {
	_, err := c.Call(ctx, http.MethodDelete, fmt.Sprintf(pathCaseTemplate, id), nil, false)
	return err
}

func (c *Client) Summarize(ctx context.Context, content string, kind domain.SummaryKind) (domain.DocumentSummary, error) {
	query := url.Values{}
	query.Set("document_content", content)
	query.Set("summary_type", string(kind))

	raw, err := c.Call(ctx, http.MethodPost, PathSummarize+"?"+query.Encode(), nil, false)
	if err != nil {
		return domain.DocumentSummary{}, err
	}

	var payload summaryResponse
	if err := decode(raw, &payload); err != nil {
		return domain.DocumentSummary{}, err
	}

	return payload.toDomain(kind), nil
}

func (c *Client) Templates(ctx context.Context) ([]domain.Template, error) {
	raw, err := c.Call(ctx, http.MethodGet, PathTemplates, nil, false)
	if err != nil {
		return nil, err
	}

	var payload []templateResponse
	if err := decode(raw, &payload); err != nil {
		return nil, err
	}

	templates := make([]domain.Template, 0, len(payload))
	for _, entry := range payload {
		templates = append(templates, entry.toDomain())
	}

	return templates, nil
}

func encodeGenerateForm(req GenerateRequest) (Payload, error) {
	details := req.Details
	if details == nil {
		details = map[string]string{}
	}
	encodedDetails, err := json.Marshal(details)
	if err != nil {
		return Payload{}, fmt.Errorf("encode case details: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	fields := [][2]string{
		{"case_id", strconv.FormatInt(int64(req.CaseID), 10)},
		{"document_type", req.DocumentType},
		{"template_name", req.TemplateName},
		{"case_details", string(encodedDetails)},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return Payload{}, fmt.Errorf("write form field %s: %w", field[0], err)
		}
	}

	if req.Attachment != nil && req.Attachment.Content != nil {
		part, err := writer.CreateFormFile("attachment", req.Attachment.FileName)
		if err != nil {
			return Payload{}, fmt.Errorf("create attachment part: %w", err)
		}
		if _, err := io.Copy(part, req.Attachment.Content); err != nil {
			return Payload{}, fmt.Errorf("copy attachment: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return Payload{}, fmt.Errorf("close multipart form: %w", err)
	}

	return Payload{Body: &body, ContentType: writer.FormDataContentType()}, nil
}

// decode tolerates empty bodies: the target keeps its zero value.
func decode(raw json.RawMessage, target any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return malformed(err)
	}
	return nil
}

func malformed(err error) error {
	return fmt.Errorf("%w: unexpected response shape: %v", domain.ErrRequest, err)
}
