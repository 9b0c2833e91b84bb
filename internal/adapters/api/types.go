package api

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bnema/legalai-cli/internal/domain"
)

const excerptRunes = 280

// Wire types mirror the backend payloads. Every field is optional so a
// partially filled 200 response still maps to a usable value.

type tokenResponse struct {
	AccessToken *string `json:"access_token"`
	TokenType   *string `json:"token_type"`
}

type userResponse struct {
	ID          *int64  `json:"id"`
	Email       *string `json:"email"`
	Username    *string `json:"username"`
	FullName    *string `json:"full_name"`
	IsSuperuser *bool   `json:"is_superuser"`
}

type caseResponse struct {
	ID          *int64  `json:"id"`
	CaseNumber  *string `json:"case_number"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CaseType    *string `json:"case_type"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	CreatedAt   *string `json:"created_at"`
}

type caseDocumentsResponse struct {
	Case *struct {
		ID         *int64  `json:"id"`
		Title      *string `json:"title"`
		CaseNumber *string `json:"case_number"`
	} `json:"case"`
	Documents      []caseDocumentResponse `json:"documents"`
	TotalDocuments *int                   `json:"total_documents"`
}

type caseDocumentResponse struct {
	ID            *int64  `json:"id"`
	Title         *string `json:"title"`
	DocumentType  *string `json:"document_type"`
	CreatedAt     *string `json:"created_at"`
	ContentLength *int    `json:"content_length"`
}

type legalDocumentResponse struct {
	Tribunal        *string                `json:"tribunal"`
	Expediente      *string                `json:"expediente"`
	Fecha           *string                `json:"fecha"`
	Materia         *string                `json:"materia"`
	Partes          *string                `json:"partes"`
	FullText        *string                `json:"full_text"`
	URL             *string                `json:"url"`
	SimilarityScore *float64               `json:"similarity_score"`
	LegalDocument   *legalDocumentResponse `json:"legal_document"`
}

type analysisResponse struct {
	PredictedOutcome *string                 `json:"predicted_outcome"`
	ConfidenceScore  *float64                `json:"confidence_score"`
	SimilarCases     []legalDocumentResponse `json:"similar_cases"`
	Explanation      *string                 `json:"explanation"`
	Recommendations  []string                `json:"recommendations"`
}

type searchEnvelope struct {
	Results []legalDocumentResponse `json:"results"`
	Total   *int                    `json:"total"`
}

type generateResponse struct {
	GeneratedDocument *string  `json:"generated_document"`
	TemplateUsed      *string  `json:"template_used"`
	Citations         []string `json:"citations"`
}

type summaryResponse struct {
	Summary        *string `json:"summary"`
	SummaryType    *string `json:"summary_type"`
	OriginalLength *int    `json:"original_length"`
	SummaryLength  *int    `json:"summary_length"`
}

type templateResponse struct {
	ID           *int64  `json:"id"`
	Name         *string `json:"name"`
	DocumentType *string `json:"document_type"`
}

func str(value *string) string {
	if value == nil {
		return ""
	}
	return strings.TrimSpace(*value)
}

func (u userResponse) toDomain() domain.UserProfile {
	return domain.UserProfile{
		FullName:     str(u.FullName),
		Email:        str(u.Email),
		Username:     str(u.Username),
		IsPrivileged: u.IsSuperuser != nil && *u.IsSuperuser,
	}
}

func (u userResponse) toRegistered() domain.RegisteredUser {
	var id int64
	if u.ID != nil {
		id = *u.ID
	}
	return domain.RegisteredUser{
		ID:       id,
		Username: str(u.Username),
		Email:    str(u.Email),
		FullName: str(u.FullName),
	}
}

func (c caseResponse) toDomain() domain.Case {
	var id domain.CaseID
	if c.ID != nil {
		id = domain.CaseID(*c.ID)
	}
	return domain.Case{
		ID:              id,
		ExpedientNumber: str(c.CaseNumber),
		Title:           str(c.Title),
		Description:     str(c.Description),
		CaseType:        str(c.CaseType),
		Status:          domain.CaseStatus(str(c.Status)),
		Priority:        domain.CasePriority(str(c.Priority)),
		CreatedAt:       parseTimestamp(str(c.CreatedAt)),
	}
}

// toDomain falls back to the requested id and the list length when the
// envelope omits them.
func (r caseDocumentsResponse) toDomain(requested domain.CaseID) domain.CaseDocuments {
	result := domain.CaseDocuments{CaseID: requested, Documents: make([]domain.CaseDocument, 0, len(r.Documents))}
	if r.Case != nil {
		if r.Case.ID != nil {
			result.CaseID = domain.CaseID(*r.Case.ID)
		}
		result.CaseTitle = str(r.Case.Title)
		result.ExpedientNumber = str(r.Case.CaseNumber)
	}
	for _, doc := range r.Documents {
		entry := domain.CaseDocument{
			Title:        str(doc.Title),
			DocumentType: str(doc.DocumentType),
			CreatedAt:    parseTimestamp(str(doc.CreatedAt)),
		}
		if doc.ID != nil {
			entry.ID = *doc.ID
		}
		if doc.ContentLength != nil {
			entry.ContentLength = *doc.ContentLength
		}
		result.Documents = append(result.Documents, entry)
	}
	result.Total = len(result.Documents)
	if r.TotalDocuments != nil {
		result.Total = *r.TotalDocuments
	}
	return result
}

// flatten lifts a nested legal_document entry, keeping the outer score.
func (d legalDocumentResponse) flatten() legalDocumentResponse {
	if d.LegalDocument == nil {
		return d
	}
	inner := d.LegalDocument.flatten()
	if inner.SimilarityScore == nil {
		inner.SimilarityScore = d.SimilarityScore
	}
	return inner
}

func (d legalDocumentResponse) toJudgment() domain.JudgmentSummary {
	flat := d.flatten()
	return domain.JudgmentSummary{
		Tribunal:  str(flat.Tribunal),
		Expedient: str(flat.Expediente),
		Date:      formatDate(str(flat.Fecha)),
		Subject:   str(flat.Materia),
		Parties:   str(flat.Partes),
		Excerpt:   excerpt(str(flat.FullText), excerptRunes),
		URL:       str(flat.URL),
		Score:     flat.SimilarityScore,
	}
}

func (d legalDocumentResponse) toReference() domain.CaseReference {
	flat := d.flatten()
	return domain.CaseReference{
		Tribunal:  str(flat.Tribunal),
		Expedient: str(flat.Expediente),
		Date:      formatDate(str(flat.Fecha)),
		Subject:   str(flat.Materia),
		URL:       str(flat.URL),
	}
}

func (a analysisResponse) toDomain() domain.AnalysisResult {
	result := domain.AnalysisResult{
		Prediction:      str(a.PredictedOutcome),
		Explanation:     str(a.Explanation),
		Recommendations: a.Recommendations,
		SimilarCases:    make([]domain.CaseReference, 0, len(a.SimilarCases)),
	}
	if a.ConfidenceScore != nil {
		result.Confidence = *a.ConfidenceScore
	}
	for _, similar := range a.SimilarCases {
		result.SimilarCases = append(result.SimilarCases, similar.toReference())
	}
	return result
}

// decodeSearch accepts {"results": [...], "total": n} as well as a bare list.
func decodeSearch(raw json.RawMessage) (domain.SearchResultSet, error) {
	var entries []legalDocumentResponse
	var total *int

	if len(raw) > 0 && raw[0] == '[' {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return domain.SearchResultSet{}, err
		}
	} else if len(raw) > 0 {
		var envelope searchEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return domain.SearchResultSet{}, err
		}
		entries = envelope.Results
		total = envelope.Total
	}

	set := domain.SearchResultSet{Judgments: make([]domain.JudgmentSummary, 0, len(entries))}
	for _, entry := range entries {
		set.Judgments = append(set.Judgments, entry.toJudgment())
	}
	set.Total = len(set.Judgments)
	if total != nil && *total >= set.Total {
		set.Total = *total
	}

	return set, nil
}

func (g generateResponse) toDomain() domain.GeneratedDocument {
	return domain.GeneratedDocument{
		Content:      str(g.GeneratedDocument),
		TemplateUsed: str(g.TemplateUsed),
		Citations:    g.Citations,
	}
}

func (s summaryResponse) toDomain(requested domain.SummaryKind) domain.DocumentSummary {
	summary := domain.DocumentSummary{
		Summary: str(s.Summary),
		Kind:    requested,
	}
	if kind := str(s.SummaryType); kind != "" {
		summary.Kind = domain.SummaryKind(kind)
	}
	if s.OriginalLength != nil {
		summary.OriginalLength = *s.OriginalLength
	}
	if s.SummaryLength != nil {
		summary.SummaryLength = *s.SummaryLength
	} else {
		summary.SummaryLength = utf8.RuneCountInString(summary.Summary)
	}
	return summary
}

func (t templateResponse) toDomain() domain.Template {
	var id int64
	if t.ID != nil {
		id = *t.ID
	}
	return domain.Template{ID: id, Name: str(t.Name), DocumentType: str(t.DocumentType)}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func formatDate(raw string) string {
	parsed := parseTimestamp(raw)
	if parsed.IsZero() {
		return raw
	}
	return parsed.Format("2006-01-02")
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
