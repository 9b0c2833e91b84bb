package application

import (
	"sync"

	"github.com/bnema/legalai-cli/internal/domain"
)

// Results holds the latest response of each kind. A nil pointer means the
// corresponding action has not succeeded yet.
type Results struct {
	Analysis         *domain.AnalysisResult
	Search           *domain.SearchResultSet
	Document         *domain.GeneratedDocument
	Summary          *domain.DocumentSummary
	Templates        []domain.Template
	Cases            []domain.Case
	CasesPlaceholder string
	Case             *domain.Case
	CaseDocuments    *domain.CaseDocuments
}

type resultStore struct {
	mu      sync.RWMutex
	current Results
}

func (s *resultStore) snapshot() Results {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.current
	snapshot.Templates = append([]domain.Template(nil), s.current.Templates...)
	snapshot.Cases = append([]domain.Case(nil), s.current.Cases...)
	if s.current.CaseDocuments != nil {
		docs := *s.current.CaseDocuments
		docs.Documents = append([]domain.CaseDocument(nil), docs.Documents...)
		snapshot.CaseDocuments = &docs
	}
	return snapshot
}

func (s *resultStore) setAnalysis(result domain.AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Analysis = &result
}

func (s *resultStore) setSearch(result domain.SearchResultSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Search = &result
}

func (s *resultStore) setDocument(doc domain.GeneratedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Document = &doc
}

func (s *resultStore) setSummary(summary domain.DocumentSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Summary = &summary
}

func (s *resultStore) setTemplates(templates []domain.Template) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Templates = templates
}

func (s *resultStore) setCases(cases []domain.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Cases = cases
	s.current.CasesPlaceholder = ""
}

func (s *resultStore) setCasesPlaceholder(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Cases = nil
	s.current.CasesPlaceholder = message
}

func (s *resultStore) setCase(c domain.Case) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Case = &c
}

func (s *resultStore) setCaseDocuments(docs domain.CaseDocuments) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.CaseDocuments = &docs
}
