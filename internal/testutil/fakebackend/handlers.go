package fakebackend

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
)

var validStatuses = map[string]bool{"initiated": true, "in_progress": true, "resolved": true, "archived": true}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, APIPrefix),
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		fail, ok := b.failures[routeKey(r.Method, r.URL.Path)]
		b.mu.Unlock()

		if ok {
			writeDetail(w, fail.status, fail.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) waitForGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		gate, ok := b.gates[routeKey(r.Method, r.URL.Path)]
		b.mu.Unlock()

		if ok {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, user User)

func (b *Backend) authenticated(handler authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		b.mu.Lock()
		username, known := b.tokens[token]
		user, exists := b.users[username]
		b.mu.Unlock()

		if !known || !exists {
			writeDetail(w, http.StatusUnauthorized, detailInvalidToken)
			return
		}
		handler(w, r, user)
	}
}

func (b *Backend) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form body")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[r.PostForm.Get("username")]
	if !ok || user.Password != r.PostForm.Get("password") {
		writeDetail(w, http.StatusUnauthorized, detailBadCredentials)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": b.issueTokenLocked(user.Username),
		"token_type":   "bearer",
	})
}

func (b *Backend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Username == "" || body.Email == "" || body.Password == "" {
		writeValidation(w, "field required")
		return
	}

	b.mu.Lock()
	for _, existing := range b.users {
		if strings.EqualFold(existing.Email, body.Email) {
			b.mu.Unlock()
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
	}
	if _, exists := b.users[body.Username]; exists {
		b.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Username already taken")
		return
	}
	user := User{
		ID:       b.nextUserID,
		Username: body.Username,
		Password: body.Password,
		Email:    body.Email,
		FullName: body.FullName,
	}
	b.nextUserID++
	b.users[user.Username] = user
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, userPayload(user))
}

func (b *Backend) handleMe(w http.ResponseWriter, _ *http.Request, user User) {
	writeJSON(w, http.StatusOK, userPayload(user))
}

func (b *Backend) handlePredict(w http.ResponseWriter, r *http.Request, _ User) {
	var body struct {
		CaseDescription string   `json:"case_description"`
		CaseType        string   `json:"case_type"`
		RelevantFacts   []string `json:"relevant_facts"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.CaseDescription) == "" {
		writeValidation(w, "case_description must not be empty")
		return
	}

	b.mu.Lock()
	prediction := b.prediction
	similar := make([]map[string]any, 0, 1)
	if len(b.judgments) > 0 {
		similar = append(similar, judgmentPayload(b.judgments[0]))
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"predicted_outcome": prediction.Outcome,
		"confidence_score":  prediction.Confidence,
		"similar_cases":     similar,
		"explanation":       prediction.Explanation,
		"recommendations":   prediction.Recommendations,
	})
}

// handleSearch answers with the bare list shape the service uses, each hit
// nesting the judgment under legal_document.
func (b *Backend) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Query    string `json:"query"`
		Tribunal string `json:"tribunal"`
		Materia  string `json:"materia"`
		Limit    int    `json:"limit"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Limit <= 0 {
		body.Limit = 10
	}

	query := strings.ToLower(strings.TrimSpace(body.Query))

	b.mu.Lock()
	hits := make([]map[string]any, 0)
	for _, judgment := range b.judgments {
		haystack := strings.ToLower(strings.Join([]string{judgment.Materia, judgment.FullText, judgment.Partes}, " "))
		if query != "" && !strings.Contains(haystack, query) {
			continue
		}
		if body.Tribunal != "" && !strings.EqualFold(body.Tribunal, judgment.Tribunal) {
			continue
		}
		if body.Materia != "" && !strings.EqualFold(body.Materia, judgment.Materia) {
			continue
		}
		hits = append(hits, map[string]any{
			"legal_document":   judgmentPayload(judgment),
			"similarity_score": judgment.Score,
		})
		if len(hits) == body.Limit {
			break
		}
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, hits)
}

func (b *Backend) handleGenerate(w http.ResponseWriter, r *http.Request, user User) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "expected multipart form")
		return
	}

	form := map[string]string{}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			form[key] = values[0]
		}
	}

	var attachment *Attachment
	if file, header, err := r.FormFile("attachment"); err == nil {
		content, readErr := io.ReadAll(file)
		_ = file.Close()
		if readErr != nil {
			writeDetail(w, http.StatusBadRequest, "unreadable attachment")
			return
		}
		attachment = &Attachment{FileName: header.Filename, Content: string(content)}
	}

	b.mu.Lock()
	b.lastForm = form
	b.lastAttachment = attachment
	b.mu.Unlock()

	documentType := form["document_type"]
	if documentType == "" {
		writeValidation(w, "document_type field required")
		return
	}

	content := "DOCUMENTO: " + strings.ToUpper(documentType) + "\nCaso: " + form["case_id"]
	if attachment != nil {
		content += "\nAnexo: " + attachment.FileName
	}

	if caseID, err := strconv.ParseInt(form["case_id"], 10, 64); err == nil {
		b.mu.Lock()
		if c, ok := b.ownedCaseLocked(caseID, user.Username); ok {
			b.addDocumentLocked(Document{
				CaseID:       caseID,
				Title:        documentType + " - " + c.Title,
				DocumentType: documentType,
				Content:      content,
				CreatedAt:    time.Now().UTC(),
			})
		}
		b.mu.Unlock()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"generated_document": content,
		"template_used":      form["template_name"],
		"citations":          []string{"Código Civil, art. 1556"},
	})
}

func (b *Backend) handleSummarize(w http.ResponseWriter, r *http.Request, _ User) {
	content := r.URL.Query().Get("document_content")
	kind := r.URL.Query().Get("summary_type")
	if content == "" {
		writeValidation(w, "document_content field required")
		return
	}
	if kind == "" {
		kind = "technical"
	}

	summary := content
	if runes := []rune(content); len(runes) > 60 {
		summary = string(runes[:60]) + "..."
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"summary":         summary,
		"summary_type":    kind,
		"original_length": len([]rune(content)),
		"summary_length":  len([]rune(summary)),
	})
}

func (b *Backend) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, []map[string]any{
		{"id": 1, "name": "demanda_civil", "document_type": "demanda"},
		{"id": 2, "name": "contestacion_estandar", "document_type": "contestacion"},
		{"id": 3, "name": "recurso_apelacion", "document_type": "recurso"},
	})
}

func (b *Backend) handleListCases(w http.ResponseWriter, r *http.Request, user User) {
	status := r.URL.Query().Get("status_filter")
	if status != "" && !validStatuses[status] {
		writeValidation(w, "invalid status_filter")
		return
	}

	b.mu.Lock()
	cases := b.casesLocked(user.Username, status, r.URL.Query().Get("case_type_filter"))
	b.mu.Unlock()

	payload := make([]map[string]any, 0, len(cases))
	for _, c := range cases {
		payload = append(payload, casePayload(c))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (b *Backend) handleCreateCase(w http.ResponseWriter, r *http.Request, user User) {
	var body struct {
		CaseNumber  string `json:"case_number"`
		Title       string `json:"title"`
		Description string `json:"description"`
		CaseType    string `json:"case_type"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.CaseNumber == "" || body.Title == "" {
		writeValidation(w, "case_number and title are required")
		return
	}
	if body.Status == "" {
		body.Status = "initiated"
	}
	if body.Priority == "" {
		body.Priority = "medium"
	}

	b.mu.Lock()
	created := b.addCaseLocked(Case{
		Owner:       user.Username,
		CaseNumber:  body.CaseNumber,
		Title:       body.Title,
		Description: body.Description,
		CaseType:    body.CaseType,
		Status:      body.Status,
		Priority:    body.Priority,
	})
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, casePayload(created))
}

func (b *Backend) handleGetCase(w http.ResponseWriter, r *http.Request, user User) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	b.mu.Lock()
	c, ok := b.ownedCaseLocked(id, user.Username)
	b.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Case not found or access denied")
		return
	}
	writeJSON(w, http.StatusOK, casePayload(c))
}

func (b *Backend) handleUpdateCase(w http.ResponseWriter, r *http.Request, user User) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		CaseType    *string `json:"case_type"`
		Status      *string `json:"status"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Status != nil && !validStatuses[*body.Status] {
		writeValidation(w, "invalid status")
		return
	}

	b.mu.Lock()
	c, ok := b.ownedCaseLocked(id, user.Username)
	if ok {
		if body.Title != nil {
			c.Title = *body.Title
		}
		if body.Description != nil {
			c.Description = *body.Description
		}
		if body.CaseType != nil {
			c.CaseType = *body.CaseType
		}
		if body.Status != nil {
			c.Status = *body.Status
		}
		b.cases[id] = c
	}
	b.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Case not found or access denied")
		return
	}
	writeJSON(w, http.StatusOK, casePayload(c))
}

func (b *Backend) handleCaseDocuments(w http.ResponseWriter, r *http.Request, user User) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	b.mu.Lock()
	c, ok := b.ownedCaseLocked(id, user.Username)
	docs := b.documentsLocked(id)
	b.mu.Unlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Case not found or access denied")
		return
	}

	entries := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, map[string]any{
			"id":             doc.ID,
			"title":          doc.Title,
			"document_type":  doc.DocumentType,
			"created_at":     doc.CreatedAt.Format(time.RFC3339),
			"content_length": len(doc.Content),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"case": map[string]any{
			"id":          c.ID,
			"title":       c.Title,
			"case_number": c.CaseNumber,
		},
		"documents":       entries,
		"total_documents": len(docs),
	})
}

func (b *Backend) handleDeleteCase(w http.ResponseWriter, r *http.Request, user User) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)

	b.mu.Lock()
	c, ok := b.cases[id]
	if ok && c.Owner == user.Username {
		delete(b.cases, id)
		kept := b.documents[:0]
		for _, doc := range b.documents {
			if doc.CaseID != id {
				kept = append(kept, doc)
			}
		}
		b.documents = kept
	}
	b.mu.Unlock()

	if !ok || c.Owner != user.Username {
		writeDetail(w, http.StatusNotFound, "Case not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Case deleted successfully"})
}

func (b *Backend) handleChangeStatus(w http.ResponseWriter, r *http.Request, user User) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	status := r.URL.Query().Get("new_status")
	if !validStatuses[status] {
		writeValidation(w, "invalid new_status")
		return
	}

	b.mu.Lock()
	c, ok := b.cases[id]
	if ok && c.Owner == user.Username {
		c.Status = status
		b.cases[id] = c
	}
	b.mu.Unlock()

	if !ok || c.Owner != user.Username {
		writeDetail(w, http.StatusNotFound, "Case not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated to " + status})
}

func userPayload(user User) map[string]any {
	return map[string]any{
		"id":           user.ID,
		"username":     user.Username,
		"email":        user.Email,
		"full_name":    user.FullName,
		"is_active":    true,
		"is_superuser": user.Superuser,
	}
}

func judgmentPayload(j Judgment) map[string]any {
	return map[string]any{
		"tribunal":   j.Tribunal,
		"expediente": j.Expediente,
		"fecha":      j.Fecha,
		"materia":    j.Materia,
		"partes":     j.Partes,
		"full_text":  j.FullText,
		"url":        j.URL,
	}
}

func casePayload(c Case) map[string]any {
	return map[string]any{
		"id":          c.ID,
		"case_number": c.CaseNumber,
		"title":       c.Title,
		"description": c.Description,
		"case_type":   c.CaseType,
		"status":      c.Status,
		"priority":    c.Priority,
		"created_at":  c.CreatedAt.Format(time.RFC3339),
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(target); err != nil {
		writeValidation(w, "invalid JSON body")
		return false
	}
	return true
}

func writeValidation(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": []string{"body"}, "msg": msg, "type": "value_error"}},
	})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
