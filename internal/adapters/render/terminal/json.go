package terminal

import (
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
)

type jsonEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type jsonNotification struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
}

type jsonSession struct {
	State string       `json:"state"`
	User  *jsonProfile `json:"user,omitempty"`
}

type jsonProfile struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	IsPrivileged bool   `json:"is_privileged"`
}

type jsonRegistered struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

type jsonAnalysis struct {
	Prediction      string              `json:"prediction"`
	Confidence      float64             `json:"confidence"`
	SimilarCases    []jsonCaseReference `json:"similar_cases"`
	Explanation     string              `json:"explanation,omitempty"`
	Recommendations []string            `json:"recommendations"`
}

type jsonCaseReference struct {
	Tribunal  string `json:"tribunal,omitempty"`
	Expedient string `json:"expedient,omitempty"`
	Date      string `json:"date,omitempty"`
	Subject   string `json:"subject,omitempty"`
	URL       string `json:"url,omitempty"`
}

type jsonSearch struct {
	Total     int            `json:"total"`
	Judgments []jsonJudgment `json:"judgments"`
}

type jsonJudgment struct {
	Tribunal  string   `json:"tribunal,omitempty"`
	Expedient string   `json:"expedient,omitempty"`
	Date      string   `json:"date,omitempty"`
	Subject   string   `json:"subject,omitempty"`
	Parties   string   `json:"parties,omitempty"`
	Excerpt   string   `json:"excerpt,omitempty"`
	URL       string   `json:"url,omitempty"`
	Score     *float64 `json:"score,omitempty"`
}

type jsonDocument struct {
	Content      string   `json:"content"`
	TemplateUsed string   `json:"template_used,omitempty"`
	Citations    []string `json:"citations"`
}

type jsonSummary struct {
	Summary        string `json:"summary"`
	Kind           string `json:"kind"`
	OriginalLength int    `json:"original_length"`
	SummaryLength  int    `json:"summary_length"`
}

type jsonTemplate struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DocumentType string `json:"document_type,omitempty"`
}

type jsonCase struct {
	ID              int64      `json:"id"`
	ExpedientNumber string     `json:"expedient_number,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	CaseType        string     `json:"case_type,omitempty"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

type jsonCaseDocuments struct {
	CaseID          int64              `json:"case_id"`
	CaseTitle       string             `json:"case_title,omitempty"`
	ExpedientNumber string             `json:"expedient_number,omitempty"`
	Total           int                `json:"total"`
	Documents       []jsonCaseDocument `json:"documents"`
}

type jsonCaseDocument struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	DocumentType  string     `json:"document_type,omitempty"`
	ContentLength int        `json:"content_length"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

func toJSONNotification(n domain.Notification) jsonNotification {
	return jsonNotification{
		ID:        n.ID.String(),
		Level:     string(n.Level),
		Message:   n.Message,
		ExpiresAt: n.ExpiresAt.UTC(),
	}
}

func toJSONSession(state domain.SessionState, session domain.Session) jsonSession {
	out := jsonSession{State: string(state)}
	if session.User != nil {
		out.User = &jsonProfile{
			FullName:     session.User.FullName,
			Email:        session.User.Email,
			Username:     session.User.Username,
			IsPrivileged: session.User.IsPrivileged,
		}
	}
	return out
}

func toJSONAnalysis(result domain.AnalysisResult) jsonAnalysis {
	out := jsonAnalysis{
		Prediction:      result.Prediction,
		Confidence:      result.Confidence,
		SimilarCases:    make([]jsonCaseReference, 0, len(result.SimilarCases)),
		Explanation:     result.Explanation,
		Recommendations: append([]string{}, result.Recommendations...),
	}
	for _, ref := range result.SimilarCases {
		out.SimilarCases = append(out.SimilarCases, jsonCaseReference(ref))
	}
	return out
}

func toJSONSearch(results domain.SearchResultSet) jsonSearch {
	out := jsonSearch{
		Total:     results.Total,
		Judgments: make([]jsonJudgment, 0, len(results.Judgments)),
	}
	for _, j := range results.Judgments {
		out.Judgments = append(out.Judgments, jsonJudgment(j))
	}
	return out
}

func toJSONCases(cases []domain.Case) []jsonCase {
	out := make([]jsonCase, 0, len(cases))
	for _, c := range cases {
		out = append(out, toJSONCase(c))
	}
	return out
}

func toJSONCase(c domain.Case) jsonCase {
	item := jsonCase{
		ID:              int64(c.ID),
		ExpedientNumber: c.ExpedientNumber,
		Title:           c.Title,
		Description:     c.Description,
		CaseType:        c.CaseType,
		Status:          string(c.Status),
		Priority:        string(c.Priority),
	}
	if !c.CreatedAt.IsZero() {
		created := c.CreatedAt.UTC()
		item.CreatedAt = &created
	}
	return item
}

func toJSONCaseDocuments(docs domain.CaseDocuments) jsonCaseDocuments {
	out := jsonCaseDocuments{
		CaseID:          int64(docs.CaseID),
		CaseTitle:       docs.CaseTitle,
		ExpedientNumber: docs.ExpedientNumber,
		Total:           docs.Total,
		Documents:       make([]jsonCaseDocument, 0, len(docs.Documents)),
	}
	for _, doc := range docs.Documents {
		item := jsonCaseDocument{
			ID:            doc.ID,
			Title:         doc.Title,
			DocumentType:  doc.DocumentType,
			ContentLength: doc.ContentLength,
		}
		if !doc.CreatedAt.IsZero() {
			created := doc.CreatedAt.UTC()
			item.CreatedAt = &created
		}
		out.Documents = append(out.Documents, item)
	}
	return out
}

func toJSONTemplates(templates []domain.Template) []jsonTemplate {
	out := make([]jsonTemplate, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, jsonTemplate(tpl))
	}
	return out
}
