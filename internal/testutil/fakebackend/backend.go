// Package fakebackend serves an in-memory version of the Legal AI REST API for
// tests. It speaks the same wire format as the real service.
package fakebackend

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
)

const (
	APIPrefix = "/api/v1"

	detailBadCredentials = "Incorrect username or password"
	detailInvalidToken   = "Could not validate credentials"
)

var signingKey = []byte("fakebackend-signing-key")

type User struct {
	ID        int64
	Username  string
	Password  string
	Email     string
	FullName  string
	Superuser bool
}

type Judgment struct {
	Tribunal   string
	Expediente string
	Fecha      string
	Materia    string
	Partes     string
	FullText   string
	URL        string
	Score      float64
}

type Case struct {
	ID          int64
	Owner       string
	CaseNumber  string
	Title       string
	Description string
	CaseType    string
	Status      string
	Priority    string
	CreatedAt   time.Time
}

// Document is a generated document filed under a case.
type Document struct {
	ID           int64
	CaseID       int64
	Title        string
	DocumentType string
	Content      string
	CreatedAt    time.Time
}

type Prediction struct {
	Outcome         string
	Confidence      float64
	Explanation     string
	Recommendations []string
}

type Attachment struct {
	FileName string
	Content  string
}

// Request is one recorded call as the server saw it.
type Request struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	ContentType   string
	RequestID     string
}

type failure struct {
	status int
	detail string
}

type Backend struct {
	server *httptest.Server

	mu             sync.Mutex
	users          map[string]User
	tokens         map[string]string
	judgments      []Judgment
	cases          map[int64]Case
	documents      []Document
	nextUserID     int64
	nextCaseID     int64
	nextDocumentID int64
	issuedTokens   int
	prediction     Prediction
	requests       []Request
	failures       map[string]failure
	gates          map[string]chan struct{}
	lastAttachment *Attachment
	lastForm       map[string]string
}

// New starts the server and closes it when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		users:          map[string]User{},
		tokens:         map[string]string{},
		cases:          map[int64]Case{},
		nextUserID:     1,
		nextCaseID:     1,
		nextDocumentID: 1,
		prediction: Prediction{
			Outcome:         "favorable",
			Confidence:      0.72,
			Explanation:     "Similar claims were upheld when the contract terms were documented.",
			Recommendations: []string{"Collect the signed contract", "Request the payment records"},
		},
		failures: map[string]failure{},
		gates:    map[string]chan struct{}{},
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)

	return b
}

// URL is the API base URL, including the version prefix.
func (b *Backend) URL() string {
	return b.server.URL + APIPrefix
}

func (b *Backend) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix(APIPrefix).Subrouter()
	api.Use(b.record, b.injectFailures, b.waitForGate)

	api.HandleFunc("/auth/token", b.handleToken).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", b.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", b.authenticated(b.handleMe)).Methods(http.MethodGet)
	api.HandleFunc("/analysis/predict", b.authenticated(b.handlePredict)).Methods(http.MethodPost)
	api.HandleFunc("/search/query", b.handleSearch).Methods(http.MethodPost)
	api.HandleFunc("/documents/generate", b.authenticated(b.handleGenerate)).Methods(http.MethodPost)
	api.HandleFunc("/documents/summarize", b.authenticated(b.handleSummarize)).Methods(http.MethodPost)
	api.HandleFunc("/documents/templates", b.handleTemplates).Methods(http.MethodGet)
	api.HandleFunc("/cases/", b.authenticated(b.handleListCases)).Methods(http.MethodGet)
	api.HandleFunc("/cases/", b.authenticated(b.handleCreateCase)).Methods(http.MethodPost)
	api.HandleFunc("/cases/{id:[0-9]+}", b.authenticated(b.handleGetCase)).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id:[0-9]+}", b.authenticated(b.handleUpdateCase)).Methods(http.MethodPut)
	api.HandleFunc("/cases/{id:[0-9]+}", b.authenticated(b.handleDeleteCase)).Methods(http.MethodDelete)
	api.HandleFunc("/cases/{id:[0-9]+}/documents", b.authenticated(b.handleCaseDocuments)).Methods(http.MethodGet)
	api.HandleFunc("/cases/{id:[0-9]+}/change-status", b.authenticated(b.handleChangeStatus)).Methods(http.MethodPost)

	return r
}

func (b *Backend) AddUser(user User) User {
	b.mu.Lock()
	defer b.mu.Unlock()

	if user.ID == 0 {
		user.ID = b.nextUserID
	}
	b.nextUserID = max(b.nextUserID, user.ID) + 1
	b.users[user.Username] = user

	return user
}

// IssueToken mints a valid token for an existing user without an HTTP call.
func (b *Backend) IssueToken(username string) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.issueTokenLocked(username)
}

func (b *Backend) issueTokenLocked(username string) string {
	now := time.Now()
	b.issuedTokens++
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(30 * time.Minute)),
		ID:        fmt.Sprintf("%d", b.issuedTokens),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("sign fake token: %v", err))
	}
	b.tokens[signed] = username

	return signed
}

// RevokeTokens makes every issued token answer 401.
func (b *Backend) RevokeTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = map[string]string{}
}

func (b *Backend) AddJudgment(judgment Judgment) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.judgments = append(b.judgments, judgment)
}

func (b *Backend) AddCase(c Case) Case {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.addCaseLocked(c)
}

func (b *Backend) addCaseLocked(c Case) Case {
	c.ID = b.nextCaseID
	b.nextCaseID++
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	}
	b.cases[c.ID] = c
	return c
}

func (b *Backend) Cases(owner string) []Case {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.casesLocked(owner, "", "")
}

func (b *Backend) casesLocked(owner, status, caseType string) []Case {
	result := make([]Case, 0, len(b.cases))
	for _, c := range b.cases {
		if c.Owner != owner {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		if caseType != "" && c.CaseType != caseType {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// ownedCaseLocked finds a case only when owner may see it.
func (b *Backend) ownedCaseLocked(id int64, owner string) (Case, bool) {
	c, ok := b.cases[id]
	if !ok || c.Owner != owner {
		return Case{}, false
	}
	return c, true
}

func (b *Backend) AddDocument(doc Document) Document {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.addDocumentLocked(doc)
}

func (b *Backend) addDocumentLocked(doc Document) Document {
	doc.ID = b.nextDocumentID
	b.nextDocumentID++
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	}
	b.documents = append(b.documents, doc)
	return doc
}

// Documents lists the documents filed under a case, newest first.
func (b *Backend) Documents(caseID int64) []Document {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.documentsLocked(caseID)
}

func (b *Backend) documentsLocked(caseID int64) []Document {
	result := make([]Document, 0)
	for _, doc := range b.documents {
		if doc.CaseID == caseID {
			result = append(result, doc)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (b *Backend) SetPrediction(prediction Prediction) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prediction = prediction
}

// Fail makes every later request to method+path answer status with detail.
func (b *Backend) Fail(method, path string, status int, detail string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures[routeKey(method, path)] = failure{status: status, detail: detail}
}

// Hold blocks requests to method+path until the returned release func runs.
func (b *Backend) Hold(method, path string) (release func()) {
	gate := make(chan struct{})

	b.mu.Lock()
	b.gates[routeKey(method, path)] = gate
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.gates, routeKey(method, path))
			b.mu.Unlock()
			close(gate)
		})
	}
}

func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Request(nil), b.requests...)
}

// Count reports how many requests hit method+path, ignoring the query string.
func (b *Backend) Count(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	count := 0
	for _, req := range b.requests {
		if req.Method == method && req.Path == path {
			count++
		}
	}
	return count
}

func (b *Backend) LastAttachment() (Attachment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.lastAttachment == nil {
		return Attachment{}, false
	}
	return *b.lastAttachment, true
}

func (b *Backend) LastForm() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	form := make(map[string]string, len(b.lastForm))
	for key, value := range b.lastForm {
		form[key] = value
	}
	return form
}

func routeKey(method, path string) string {
	return method + " " + strings.TrimPrefix(path, APIPrefix)
}
