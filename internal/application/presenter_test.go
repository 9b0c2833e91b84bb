package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/bnema/legalai-cli/internal/ports"
	"github.com/google/uuid"
)

type recordingPresenter struct {
	mu            sync.Mutex
	busyOn        int
	busyOff       int
	notifications []domain.Notification
	dismissed     []uuid.UUID
	states        []domain.SessionState
	prompts       []domain.RegisteredUser
	analyses      []domain.AnalysisResult
	searches      []domain.SearchResultSet
	documents     []domain.GeneratedDocument
	summaries     []domain.DocumentSummary
	templates     [][]domain.Template
	caseLists     [][]domain.Case
	placeholders  []string
	caseDetails   []domain.Case
	caseDocuments []domain.CaseDocuments
}

func (p *recordingPresenter) SetBusy(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if visible {
		p.busyOn++
	} else {
		p.busyOff++
	}
}

func (p *recordingPresenter) Notify(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, n)
}

func (p *recordingPresenter) Dismiss(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dismissed = append(p.dismissed, id)
}

func (p *recordingPresenter) RenderSession(state domain.SessionState, _ domain.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, state)
}

func (p *recordingPresenter) PromptLogin(user domain.RegisteredUser) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompts = append(p.prompts, user)
}

func (p *recordingPresenter) RenderAnalysis(result domain.AnalysisResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.analyses = append(p.analyses, result)
}

func (p *recordingPresenter) RenderSearch(results domain.SearchResultSet) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches = append(p.searches, results)
}

func (p *recordingPresenter) RenderDocument(doc domain.GeneratedDocument) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.documents = append(p.documents, doc)
}

func (p *recordingPresenter) RenderSummary(summary domain.DocumentSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.summaries = append(p.summaries, summary)
}

func (p *recordingPresenter) RenderTemplates(templates []domain.Template) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.templates = append(p.templates, templates)
}

func (p *recordingPresenter) RenderCases(cases []domain.Case) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.caseLists = append(p.caseLists, cases)
}

func (p *recordingPresenter) RenderCasesPlaceholder(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.placeholders = append(p.placeholders, message)
}

func (p *recordingPresenter) RenderCase(c domain.Case) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.caseDetails = append(p.caseDetails, c)
}

func (p *recordingPresenter) RenderCaseDocuments(docs domain.CaseDocuments) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.caseDocuments = append(p.caseDocuments, docs)
}

func (p *recordingPresenter) busy() (on, off int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busyOn, p.busyOff
}

func (p *recordingPresenter) lastNotification() domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notifications) == 0 {
		return domain.Notification{}
	}
	return p.notifications[len(p.notifications)-1]
}

func (p *recordingPresenter) dismissedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dismissed)
}

func (p *recordingPresenter) dismissedIDs() []uuid.UUID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]uuid.UUID(nil), p.dismissed...)
}

func (p *recordingPresenter) caseDetailCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.caseDetails)
}

func (p *recordingPresenter) searchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.searches)
}

type memoryTokenStore struct {
	mu    sync.Mutex
	token string
	sets  int
}

func (s *memoryTokenStore) Get(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", domain.ErrTokenNotFound
	}
	return s.token, nil
}

func (s *memoryTokenStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.sets++
	return nil
}

func (s *memoryTokenStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memoryTokenStore) current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// manualClock only moves when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Time
	fn      func()
	stopped bool
}

func newManualClock(now time.Time) *manualClock {
	return &manualClock{now: now}
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &manualTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, timer)
	return timer
}

// Advance moves time forward and runs the timers that became due.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	pending := c.timers[:0]
	for _, timer := range c.timers {
		switch {
		case timer.stopped:
		case !timer.at.After(c.now):
			due = append(due, timer.fn)
		default:
			pending = append(pending, timer)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasPending := !t.stopped
	t.stopped = true
	return wasPending
}
