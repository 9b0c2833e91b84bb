package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bnema/legalai-cli/internal/domain"
)

type ActionID string

const (
	ActionLogin            ActionID = "login"
	ActionRegister         ActionID = "register"
	ActionLogout           ActionID = "logout"
	ActionRestoreSession   ActionID = "restore-session"
	ActionAnalyze          ActionID = "analyze"
	ActionSearch           ActionID = "search"
	ActionGenerateDocument ActionID = "generate-document"
	ActionSummarize        ActionID = "summarize"
	ActionLoadTemplates    ActionID = "load-templates"
	ActionLoadCases        ActionID = "load-cases"
	ActionCreateCase       ActionID = "create-case"
	ActionChangeCaseStatus ActionID = "change-case-status"
	ActionDeleteCase       ActionID = "delete-case"
	ActionGetCase          ActionID = "get-case"
	ActionUpdateCase       ActionID = "update-case"
	ActionCaseDocuments    ActionID = "case-documents"
)

var ErrUnknownAction = errors.New("unknown action")

const detailPrefix = "detail."

// Form carries the UI input of one action: text fields, possibly repeated,
// and file fields holding paths.
type Form struct {
	values map[string][]string
	files  map[string]string
}

func NewForm() Form {
	return Form{values: map[string][]string{}, files: map[string]string{}}
}

func (f Form) Set(key, value string) Form {
	f.values[key] = []string{value}
	return f
}

func (f Form) Add(key, value string) Form {
	f.values[key] = append(f.values[key], value)
	return f
}

func (f Form) SetFile(key, path string) Form {
	f.files[key] = path
	return f
}

func (f Form) Get(key string) string {
	if values := f.values[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// Lookup reports whether key was given at all, even with an empty value.
func (f Form) Lookup(key string) (string, bool) {
	values, ok := f.values[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func (f Form) All(key string) []string {
	return append([]string(nil), f.values[key]...)
}

func (f Form) File(key string) string {
	return f.files[key]
}

// Details collects "detail.<name>" fields.
func (f Form) Details() map[string]string {
	details := map[string]string{}
	for key, values := range f.values {
		name, ok := strings.CutPrefix(key, detailPrefix)
		if !ok || name == "" || len(values) == 0 {
			continue
		}
		details[name] = values[0]
	}
	return details
}

// Outcome is the result of one dispatched action. Err has already been
// surfaced as a notification.
type Outcome struct {
	Action ActionID
	Result any
	Err    error
}

type actionHandler func(ctx context.Context, c *Controller, form Form) (any, error)

var actionHandlers = map[ActionID]actionHandler{
	ActionLogin: func(ctx context.Context, c *Controller, form Form) (any, error) {
		err := c.Login(ctx, LoginCommand{Identifier: form.Get("identifier"), Secret: form.Get("secret")})
		if err != nil {
			return nil, err
		}
		return c.Session(), nil
	},
	ActionRegister: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.Register(ctx, RegisterCommand{
			FullName:     form.Get("full_name"),
			Email:        form.Get("email"),
			Username:     form.Get("username"),
			Secret:       form.Get("secret"),
			Confirmation: form.Get("confirmation"),
		})
	},
	ActionLogout: func(ctx context.Context, c *Controller, _ Form) (any, error) {
		c.Logout(ctx)
		return c.Session(), nil
	},
	ActionRestoreSession: func(ctx context.Context, c *Controller, _ Form) (any, error) {
		if err := c.RestoreSession(ctx); err != nil {
			return nil, err
		}
		return c.Session(), nil
	},
	ActionAnalyze: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.AnalyzeCase(ctx, AnalyzeCaseCommand{
			Description: form.Get("description"),
			CaseType:    form.Get("case_type"),
			Facts:       form.All("fact"),
		})
	},
	ActionSearch: func(ctx context.Context, c *Controller, form Form) (any, error) {
		limit, err := formInt(form, "limit")
		if err != nil {
			return nil, c.reject(ActionSearch, err)
		}
		return c.SearchJurisprudence(ctx, SearchCommand{
			Query:    form.Get("query"),
			Tribunal: form.Get("tribunal"),
			Subject:  form.Get("subject"),
			From:     form.Get("from"),
			To:       form.Get("to"),
			Limit:    limit,
		})
	},
	ActionGenerateDocument: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.GenerateDocument(ctx, GenerateDocumentCommand{
			CaseID:         form.Get("case_id"),
			DocumentType:   form.Get("document_type"),
			TemplateName:   form.Get("template"),
			Details:        form.Details(),
			AttachmentPath: form.File("attachment"),
		})
	},
	ActionSummarize: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.SummarizeDocument(ctx, SummarizeCommand{
			Content:      form.Get("content"),
			DocumentPath: form.File("document"),
			Kind:         form.Get("kind"),
		})
	},
	ActionLoadTemplates: func(ctx context.Context, c *Controller, _ Form) (any, error) {
		return c.LoadTemplates(ctx)
	},
	ActionLoadCases: func(ctx context.Context, c *Controller, form Form) (any, error) {
		if err := c.LoadUserCases(ctx, LoadCasesQuery{Status: form.Get("status"), CaseType: form.Get("case_type")}); err != nil {
			return nil, err
		}
		return c.Results().Cases, nil
	},
	ActionCreateCase: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.CreateCase(ctx, CreateCaseCommand{
			ExpedientNumber: form.Get("expedient_number"),
			Title:           form.Get("title"),
			Description:     form.Get("description"),
			CaseType:        form.Get("case_type"),
			Status:          form.Get("status"),
			Priority:        form.Get("priority"),
		})
	},
	ActionChangeCaseStatus: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return nil, c.ChangeCaseStatus(ctx, ChangeCaseStatusCommand{CaseID: form.Get("case_id"), Status: form.Get("status")})
	},
	ActionDeleteCase: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return nil, c.DeleteCase(ctx, DeleteCaseCommand{CaseID: form.Get("case_id")})
	},
	ActionGetCase: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.GetCase(ctx, GetCaseQuery{CaseID: form.Get("case_id")})
	},
	ActionUpdateCase: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.UpdateCase(ctx, UpdateCaseCommand{
			CaseID:      form.Get("case_id"),
			Title:       formOptional(form, "title"),
			Description: formOptional(form, "description"),
			CaseType:    formOptional(form, "case_type"),
			Status:      formOptional(form, "status"),
		})
	},
	ActionCaseDocuments: func(ctx context.Context, c *Controller, form Form) (any, error) {
		return c.LoadCaseDocuments(ctx, CaseDocumentsQuery{CaseID: form.Get("case_id")})
	},
}

// Dispatch is the single entry point from the UI into the controller.
func (c *Controller) Dispatch(ctx context.Context, action ActionID, form Form) Outcome {
	if form.values == nil {
		form = NewForm()
	}

	handler, ok := actionHandlers[action]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownAction, action)
		c.notify(domain.NotifyWarning, err.Error())
		return Outcome{Action: action, Err: err}
	}

	c.logger.Debug("dispatch", "action", action)
	result, err := handler(ctx, c, form)
	return Outcome{Action: action, Result: result, Err: err}
}

// Actions lists the known action ids in a stable order.
func Actions() []ActionID {
	ids := make([]ActionID, 0, len(actionHandlers))
	for id := range actionHandlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func formOptional(form Form, key string) *string {
	value, ok := form.Lookup(key)
	if !ok {
		return nil
	}
	return &value
}

func formInt(form Form, key string) (int, error) {
	raw := strings.TrimSpace(form.Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, &domain.ValidationError{Field: key, Message: fmt.Sprintf("%s must be a whole number, zero or more", key)}
	}
	return value, nil
}
