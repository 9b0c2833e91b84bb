package application

import (
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
)

type LoadCasesQuery struct {
	Status   string
	CaseType string
}

type GetCaseQuery struct {
	CaseID string
}

type CaseDocumentsQuery struct {
	CaseID string
}

// SessionInfo describes the current session for display. Claims are only
// present for JWT tokens and are never verified.
type SessionInfo struct {
	State    domain.SessionState
	User     *domain.UserProfile
	HasToken bool
	Claims   *domain.TokenClaims
}

func (i SessionInfo) Expired(now time.Time) bool {
	return i.Claims != nil && i.Claims.Expired(now)
}
