package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/legalai-cli/internal/domain"
	"github.com/google/uuid"
)

type Options struct {
	// JSON emits one JSON event per line instead of styled panels.
	JSON bool
	// Interactive enables the busy spinner. Use IsInteractive to detect it.
	Interactive bool
	// ShowSession renders session transitions. Commands that only restore a
	// session leave it off.
	ShowSession bool
}

// Presenter renders controller output to a terminal. Results go to out,
// notifications to errOut.
type Presenter struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	opts   Options
	styles styles
	busy   *busyIndicator
	active map[uuid.UUID]domain.Notification
	counts map[domain.NotificationLevel]int
}

func NewPresenter(out, errOut io.Writer, opts Options) *Presenter {
	p := &Presenter{
		out:    out,
		errOut: errOut,
		opts:   opts,
		styles: newStyles(),
		active: map[uuid.UUID]domain.Notification{},
		counts: map[domain.NotificationLevel]int{},
	}
	if opts.Interactive && !opts.JSON {
		p.busy = newBusyIndicator(out, p.styles)
	}
	return p
}

func (p *Presenter) SetBusy(visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.busy == nil {
		return
	}
	if visible {
		p.busy.start()
		return
	}
	p.busy.stop()
}

func (p *Presenter) Notify(n domain.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.active[n.ID] = n
	p.counts[n.Level]++

	if p.opts.JSON {
		p.emit(p.errOut, "notification", toJSONNotification(n))
		return
	}
	p.println(p.errOut, renderNotification(n, p.styles))
}

func (p *Presenter) Dismiss(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.active[id]; !ok {
		return
	}
	delete(p.active, id)

	if p.opts.JSON {
		p.emit(p.errOut, "dismiss", map[string]string{"id": id.String()})
	}
}

// Active returns the notifications not yet dismissed.
func (p *Presenter) Active() []domain.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.Notification, 0, len(p.active))
	for _, n := range p.active {
		out = append(out, n)
	}
	return out
}

// Count returns how many notifications of level were shown.
func (p *Presenter) Count(level domain.NotificationLevel) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.counts[level]
}

func (p *Presenter) RenderSession(state domain.SessionState, session domain.Session) {
	if !p.opts.ShowSession {
		return
	}
	p.render("session", toJSONSession(state, session), func(s styles) string {
		return renderSession(state, session, s)
	})
}

func (p *Presenter) PromptLogin(user domain.RegisteredUser) {
	p.render("prompt_login", jsonRegistered(user), func(s styles) string {
		return renderPromptLogin(user, s)
	})
}

func (p *Presenter) RenderAnalysis(result domain.AnalysisResult) {
	p.render("analysis", toJSONAnalysis(result), func(s styles) string {
		return renderAnalysis(result, s)
	})
}

func (p *Presenter) RenderSearch(results domain.SearchResultSet) {
	p.render("search", toJSONSearch(results), func(s styles) string {
		return renderSearch(results, s)
	})
}

func (p *Presenter) RenderDocument(doc domain.GeneratedDocument) {
	data := jsonDocument{
		Content:      doc.Content,
		TemplateUsed: doc.TemplateUsed,
		Citations:    append([]string{}, doc.Citations...),
	}
	p.render("document", data, func(s styles) string {
		return renderDocument(doc, s)
	})
}

func (p *Presenter) RenderSummary(summary domain.DocumentSummary) {
	data := jsonSummary{
		Summary:        summary.Summary,
		Kind:           string(summary.Kind),
		OriginalLength: summary.OriginalLength,
		SummaryLength:  summary.SummaryLength,
	}
	p.render("summary", data, func(s styles) string {
		return renderSummary(summary, s)
	})
}

func (p *Presenter) RenderTemplates(templates []domain.Template) {
	p.render("templates", toJSONTemplates(templates), func(s styles) string {
		return renderTemplates(templates, s)
	})
}

func (p *Presenter) RenderCases(cases []domain.Case) {
	p.render("cases", toJSONCases(cases), func(s styles) string {
		return renderCases(cases, s)
	})
}

func (p *Presenter) RenderCase(c domain.Case) {
	p.render("case", toJSONCase(c), func(s styles) string {
		return renderCaseDetail(c, s)
	})
}

func (p *Presenter) RenderCaseDocuments(docs domain.CaseDocuments) {
	p.render("case_documents", toJSONCaseDocuments(docs), func(s styles) string {
		return renderCaseDocuments(docs, s)
	})
}

func (p *Presenter) RenderCasesPlaceholder(message string) {
	p.render("cases_placeholder", map[string]string{"message": message}, func(s styles) string {
		return renderPlaceholder(message, s)
	})
}

func (p *Presenter) render(event string, data any, view func(styles) string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.JSON {
		p.emit(p.out, event, data)
		return
	}
	p.println(p.out, view(p.styles))
}

func (p *Presenter) emit(w io.Writer, event string, data any) {
	encoded, err := json.Marshal(jsonEvent{Event: event, Data: data})
	if err != nil {
		encoded, _ = json.Marshal(jsonEvent{Event: "render_error", Data: err.Error()})
	}
	_, _ = fmt.Fprintln(w, string(encoded))
}

// println prints above the spinner when w is the spinner's writer. Any other
// writer gets the spinner cleared first and redrawn after the line.
func (p *Presenter) println(w io.Writer, text string) {
	if p.busy == nil || !p.busy.running() {
		_, _ = fmt.Fprintln(w, text)
		return
	}
	if w == p.busy.output {
		p.busy.println(text)
		return
	}
	p.busy.stop()
	_, _ = fmt.Fprintln(w, text)
	p.busy.start()
}
