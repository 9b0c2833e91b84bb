package domain

type Credentials struct {
	Identifier string
	Secret     string
}

type Registration struct {
	FullName string
	Email    string
	Username string
	Secret   string
}

type AnalysisRequest struct {
	Description string
	CaseType    string
	Facts       []string
}

type SearchQuery struct {
	Query    string
	Tribunal string
	Subject  string
	From     string
	To       string
	Limit    int
}

type Attachment struct {
	FileName string
	Content  []byte
}

type DocumentRequest struct {
	CaseID       CaseID
	DocumentType string
	TemplateName string
	Details      map[string]string
	Attachment   *Attachment
}

type CaseDraft struct {
	ExpedientNumber string
	Title           string
	Description     string
	CaseType        string
	Status          CaseStatus
	Priority        CasePriority
}

type CaseFilter struct {
	Status   CaseStatus
	CaseType string
}

// CaseUpdate lists the fields to change. Nil fields keep their value.
type CaseUpdate struct {
	Title       *string
	Description *string
	CaseType    *string
	Status      *CaseStatus
}

func (u CaseUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.CaseType == nil && u.Status == nil
}
