package domain

type GeneratedDocument struct {
	Content      string
	TemplateUsed string
	Citations    []string
}

type SummaryKind string

const (
	SummaryTechnical SummaryKind = "technical"
	SummaryCitizen   SummaryKind = "citizen"
)

type DocumentSummary struct {
	Summary        string
	Kind           SummaryKind
	OriginalLength int
	SummaryLength  int
}

type Template struct {
	ID           int64
	Name         string
	DocumentType string
}
