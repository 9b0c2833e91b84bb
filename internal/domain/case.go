package domain

import (
	"fmt"
	"strings"
	"time"
)

type CaseID int64

type CaseStatus string

const (
	CaseStatusInitiated  CaseStatus = "initiated"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusResolved   CaseStatus = "resolved"
	CaseStatusArchived   CaseStatus = "archived"
)

type CasePriority string

const (
	CasePriorityLow    CasePriority = "low"
	CasePriorityMedium CasePriority = "medium"
	CasePriorityHigh   CasePriority = "high"
	CasePriorityUrgent CasePriority = "urgent"
)

type Case struct {
	ID              CaseID
	ExpedientNumber string
	Title           string
	Description     string
	CaseType        string
	Status          CaseStatus
	Priority        CasePriority
	CreatedAt       time.Time
}

func ParseCaseStatus(raw string) (CaseStatus, error) {
	status := CaseStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case CaseStatusInitiated, CaseStatusInProgress, CaseStatusResolved, CaseStatusArchived:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unsupported case status %q", ErrValidation, raw)
	}
}

func ParseCasePriority(raw string) (CasePriority, error) {
	priority := CasePriority(strings.ToLower(strings.TrimSpace(raw)))
	switch priority {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return priority, nil
	default:
		return "", fmt.Errorf("%w: unsupported case priority %q", ErrValidation, raw)
	}
}

func (s CaseStatus) Label() string {
	switch s {
	case CaseStatusInitiated:
		return "Initiated"
	case CaseStatusInProgress:
		return "In progress"
	case CaseStatusResolved:
		return "Resolved"
	case CaseStatusArchived:
		return "Archived"
	case "":
		return "Unknown"
	default:
		return string(s)
	}
}

func (p CasePriority) Label() string {
	switch p {
	case CasePriorityLow:
		return "Low"
	case CasePriorityMedium:
		return "Medium"
	case CasePriorityHigh:
		return "High"
	case CasePriorityUrgent:
		return "Urgent"
	case "":
		return "Unknown"
	default:
		return string(p)
	}
}

// CaseDocument is a generated document filed under a case. Only its metadata
// is listed; the content stays on the server.
type CaseDocument struct {
	ID            int64
	Title         string
	DocumentType  string
	CreatedAt     time.Time
	ContentLength int
}

type CaseDocuments struct {
	CaseID          CaseID
	CaseTitle       string
	ExpedientNumber string
	Documents       []CaseDocument
	Total           int
}
