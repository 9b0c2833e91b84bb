package terminal

import (
	"fmt"
	"math"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	confidenceBarWidth = 24
	excerptWidth       = 160
)

func renderSession(state domain.SessionState, session domain.Session, s styles) string {
	switch {
	case state == domain.SessionAuthenticating:
		return s.meta.Render("Signing in...")
	case state == domain.SessionAuthenticated && session.User != nil:
		return renderProfile(*session.User, s)
	default:
		return s.empty.Render("Not signed in.")
	}
}

func renderProfile(user domain.UserProfile, s styles) string {
	lines := []string{
		s.item.Render(fmt.Sprintf("Signed in as %s", user.DisplayName())),
	}
	if user.Email != "" {
		lines = append(lines, keyValue("email", user.Email, s))
	}
	if user.Username != "" {
		lines = append(lines, keyValue("username", user.Username, s))
	}
	if user.IsPrivileged {
		lines = append(lines, keyValue("role", "administrator", s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPromptLogin(user domain.RegisteredUser, s styles) string {
	identifier := user.Username
	if identifier == "" {
		identifier = user.Email
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.item.Render(fmt.Sprintf("Account created for %s", displayRegistered(user))),
		s.meta.Render(fmt.Sprintf("Sign in with: legalai auth login --identifier %s", identifier)),
	)
}

func displayRegistered(user domain.RegisteredUser) string {
	if user.FullName != "" {
		return user.FullName
	}
	if user.Email != "" {
		return user.Email
	}
	return user.Username
}

func renderAnalysis(result domain.AnalysisResult, s styles) string {
	percent := result.ConfidencePercent()
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	lines := []string{
		s.title.Render("Case analysis"),
		keyValue("prediction", orPlaceholder(result.Prediction, "n/a"), s),
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			s.key.Render("confidence:"),
			" ",
			renderConfidenceBar(percent, confidenceBarWidth, s),
			" ",
			percentStyle.Render(fmt.Sprintf("%2.0f%%", percent)),
		),
	}

	if result.Explanation != "" {
		lines = append(lines, s.section.Render(s.detail.Render(result.Explanation)))
	}

	if len(result.Recommendations) > 0 {
		recs := []string{s.header.Render("recommendations")}
		for _, rec := range result.Recommendations {
			recs = append(recs, s.detail.Render("- "+rec))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, recs...)))
	}

	if len(result.SimilarCases) > 0 {
		similar := []string{s.header.Render(fmt.Sprintf("similar cases: %d", len(result.SimilarCases)))}
		for _, ref := range result.SimilarCases {
			similar = append(similar, s.detail.Render("- "+caseReferenceLine(ref)))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, similar...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func caseReferenceLine(ref domain.CaseReference) string {
	parts := nonBlank(ref.Tribunal, ref.Expedient, ref.Date)
	line := strings.Join(parts, " · ")
	if ref.Subject != "" {
		if line != "" {
			line += ": "
		}
		line += ref.Subject
	}
	if ref.URL != "" {
		line += " <" + ref.URL + ">"
	}
	return line
}

func renderSearch(results domain.SearchResultSet, s styles) string {
	lines := []string{
		s.title.Render("Jurisprudence search"),
		s.header.Render(fmt.Sprintf("results: %d", results.Total)),
	}

	if results.IsEmpty() {
		lines = append(lines, s.empty.Render("No judgments matched the query."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, judgment := range results.Judgments {
		lines = append(lines, s.section.Render(renderJudgment(judgment, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderJudgment(j domain.JudgmentSummary, s styles) string {
	heading := strings.Join(nonBlank(j.Tribunal, j.Expedient), " ")
	if heading == "" {
		heading = "Judgment"
	}
	if j.Score != nil {
		heading += " " + s.meta.Render(fmt.Sprintf("(%.0f%% match)", clampPercent(*j.Score*100)))
	}

	parts := []string{s.item.Render(heading)}
	if j.Date != "" {
		parts = append(parts, keyValue("date", j.Date, s))
	}
	if j.Subject != "" {
		parts = append(parts, keyValue("subject", j.Subject, s))
	}
	if j.Parties != "" {
		parts = append(parts, keyValue("parties", j.Parties, s))
	}
	if j.Excerpt != "" {
		parts = append(parts, s.detail.Render(truncate(j.Excerpt, excerptWidth)))
	}
	if j.URL != "" {
		parts = append(parts, s.meta.Render(j.URL))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderDocument(doc domain.GeneratedDocument, s styles) string {
	lines := []string{s.title.Render("Generated document")}
	if doc.TemplateUsed != "" {
		lines = append(lines, keyValue("template", doc.TemplateUsed, s))
	}
	lines = append(lines, s.section.Render(s.detail.Render(orPlaceholder(doc.Content, "(empty document)"))))

	if len(doc.Citations) > 0 {
		citations := []string{s.header.Render("citations")}
		for _, citation := range doc.Citations {
			citations = append(citations, s.detail.Render("- "+citation))
		}
		lines = append(lines, s.section.Render(lipgloss.JoinVertical(lipgloss.Left, citations...)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderSummary(summary domain.DocumentSummary, s styles) string {
	kind := string(summary.Kind)
	if kind == "" {
		kind = string(domain.SummaryTechnical)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.title.Render(fmt.Sprintf("Summary (%s)", kind)),
		s.header.Render(fmt.Sprintf("%d → %d characters", summary.OriginalLength, summary.SummaryLength)),
		s.section.Render(s.detail.Render(orPlaceholder(summary.Summary, "(empty summary)"))),
	)
}

func renderTemplates(templates []domain.Template, s styles) string {
	lines := []string{
		s.title.Render("Document templates"),
		s.header.Render(fmt.Sprintf("templates: %d", len(templates))),
	}

	if len(templates) == 0 {
		lines = append(lines, s.empty.Render("No templates available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, tpl := range templates {
		line := s.item.Render(tpl.Name)
		if tpl.DocumentType != "" {
			line += " " + s.meta.Render("("+tpl.DocumentType+")")
		}
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCases(cases []domain.Case, s styles) string {
	lines := []string{
		s.title.Render("My cases"),
		s.header.Render(fmt.Sprintf("cases: %d", len(cases))),
	}

	if len(cases) == 0 {
		lines = append(lines, s.empty.Render("No cases yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, c := range cases {
		lines = append(lines, s.section.Render(renderCase(c, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderCase(c domain.Case, s styles) string {
	title := fmt.Sprintf("#%d %s", c.ID, orPlaceholder(c.Title, "(untitled)"))
	status := fmt.Sprintf("%s · %s priority", c.Status.Label(), strings.ToLower(c.Priority.Label()))

	parts := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, s.item.Render(title), " ", s.meta.Render("["+status+"]")),
	}
	if c.ExpedientNumber != "" {
		parts = append(parts, keyValue("expedient", c.ExpedientNumber, s))
	}
	if c.CaseType != "" {
		parts = append(parts, keyValue("type", c.CaseType, s))
	}
	if !c.CreatedAt.IsZero() {
		parts = append(parts, keyValue("created", c.CreatedAt.Format("2006-01-02 15:04"), s))
	}
	if c.Description != "" {
		parts = append(parts, s.detail.Render(truncate(c.Description, excerptWidth)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCaseDetail(c domain.Case, s styles) string {
	parts := []string{s.title.Render("Case"), renderCase(c, s)}
	if c.Description != "" && len([]rune(c.Description)) > excerptWidth {
		parts = append(parts, s.section.Render(s.detail.Render(c.Description)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderCaseDocuments(docs domain.CaseDocuments, s styles) string {
	heading := fmt.Sprintf("Documents for case #%d", docs.CaseID)
	if docs.CaseTitle != "" {
		heading += " " + docs.CaseTitle
	}
	lines := []string{
		s.title.Render(heading),
		s.header.Render(fmt.Sprintf("documents: %d", docs.Total)),
	}
	if docs.ExpedientNumber != "" {
		lines = append(lines, keyValue("expedient", docs.ExpedientNumber, s))
	}

	if len(docs.Documents) == 0 {
		lines = append(lines, s.empty.Render("No documents generated for this case."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, doc := range docs.Documents {
		line := s.item.Render(fmt.Sprintf("#%d %s", doc.ID, orPlaceholder(doc.Title, "(untitled)")))
		meta := nonBlank(doc.DocumentType)
		if !doc.CreatedAt.IsZero() {
			meta = append(meta, doc.CreatedAt.Format("2006-01-02 15:04"))
		}
		meta = append(meta, fmt.Sprintf("%d chars", doc.ContentLength))
		line += " " + s.meta.Render("("+strings.Join(meta, " · ")+")")
		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderPlaceholder(message string, s styles) string {
	return s.empty.Render(message)
}

func renderNotification(n domain.Notification, s styles) string {
	var style lipgloss.Style
	switch n.Level {
	case domain.NotifySuccess:
		style = s.success
	case domain.NotifyWarning:
		style = s.warning
	case domain.NotifyError:
		style = s.failure
	default:
		style = s.info
	}

	level := string(n.Level)
	if level == "" {
		level = string(domain.NotifyInfo)
	}

	return style.Render(level+":") + " " + n.Message
}

func renderConfidenceBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}

func keyValue(key, value string, s styles) string {
	return s.key.Render(key+":") + " " + s.detail.Render(value)
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func nonBlank(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func truncate(value string, width int) string {
	runes := []rune(strings.TrimSpace(value))
	if len(runes) <= width {
		return string(runes)
	}
	return string(runes[:width-1]) + "…"
}
