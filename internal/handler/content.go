package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/completion"
	"github.com/copydesk/copydesk/internal/middleware"
	"github.com/copydesk/copydesk/internal/model"
	"github.com/copydesk/copydesk/internal/prompt"
	"github.com/copydesk/copydesk/internal/service"
	"github.com/copydesk/copydesk/internal/view"
)

// Generation failure messages.
const (
	msgGenerationBusy        = "The writing service is busy right now. Please try again in a few minutes."
	msgGenerationFailed      = "Content generation failed. Please try again."
	msgGenerationUnavailable = "Content generation is not available right now."
)

// ContentGenerator is the session-gated generation workflow.
type ContentGenerator interface {
	Generate(ctx context.Context, sess *model.Session, req model.PromptRequest) (string, error)
}

// ContentHandler serves one form per content kind.
type ContentHandler struct {
	pages   *Handler
	content ContentGenerator
	deny    http.HandlerFunc
	logger  *slog.Logger
}

// NewContentHandler creates a new ContentHandler. deny is served when the
// workflow reports the visitor is not signed in.
func NewContentHandler(pages *Handler, content ContentGenerator, deny http.HandlerFunc, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{
		pages:   pages,
		content: content,
		deny:    deny,
		logger:  logger,
	}
}

// Form renders the empty form for kind.
// GET /{kind}
func (h *ContentHandler) Form(kind prompt.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, ok := h.formData(w, r, kind, nil)
		if !ok {
			return
		}
		h.pages.views.Render(w, http.StatusOK, view.PageGenerate, data)
	}
}

// Generate builds the prompt for kind from the submitted form and renders
// the generated text. Failures are shown on the form.
// POST /{kind}
func (h *ContentHandler) Generate(kind prompt.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parseErr := r.ParseForm()

		def, err := h.pages.catalog.Lookup(kind)
		if err != nil {
			h.pages.NotFound(w, r)
			return
		}

		// Only declared fields are read; other form inputs are ignored.
		fields := make(map[string]string, len(def.Fields))
		for _, f := range def.Fields {
			if v, ok := r.PostForm[f.Name]; ok && len(v) > 0 {
				fields[f.Name] = v[0]
			}
		}

		data, ok := h.formData(w, r, kind, fields)
		if !ok {
			return
		}

		if parseErr != nil {
			data.Error = msgInvalidForm
			h.pages.views.Render(w, formErrorStatus(parseErr), view.PageGenerate, data)
			return
		}

		text, err := h.content.Generate(r.Context(), auth.SessionFromContext(r.Context()), model.PromptRequest{
			Kind:   string(kind),
			Fields: fields,
		})
		if err != nil {
			if errors.Is(err, service.ErrNotAuthenticated) {
				h.deny(w, r)
				return
			}
			status, msg := generationError(err)
			if status == http.StatusInternalServerError {
				h.logger.Error("generation request failed",
					slog.String("request_id", requestID(r)),
					slog.String("kind", string(kind)),
					slog.String("error", err.Error()),
				)
			}
			data.Error = msg
			h.pages.views.Render(w, status, view.PageGenerate, data)
			return
		}

		data.Result = text
		h.pages.views.Render(w, http.StatusOK, view.PageGenerate, data)
	}
}

func (h *ContentHandler) formData(w http.ResponseWriter, r *http.Request, kind prompt.Kind, values map[string]string) (view.Data, bool) {
	def, err := h.pages.catalog.Lookup(kind)
	if err != nil {
		h.pages.NotFound(w, r)
		return view.Data{}, false
	}

	form := &view.KindForm{
		Kind:        string(def.Kind),
		Title:       def.Title,
		Description: def.Description,
	}
	for _, f := range def.Fields {
		form.Fields = append(form.Fields, view.FieldInput{
			Name:        f.Name,
			Label:       f.Label,
			Placeholder: f.Placeholder,
			Value:       values[f.Name],
		})
	}

	data := h.pages.page(r, def.Title)
	data.Kind = form
	return data, true
}

// generationError maps a generation failure to a status and message.
func generationError(err error) (int, string) {
	switch {
	case errors.Is(err, prompt.ErrMissingField):
		return http.StatusBadRequest, msgFillAllFields
	case errors.Is(err, completion.ErrQuotaExceeded):
		return http.StatusTooManyRequests, msgGenerationBusy
	case errors.Is(err, completion.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, msgGenerationFailed
	case errors.Is(err, completion.ErrUnauthenticated):
		return http.StatusBadGateway, msgGenerationUnavailable
	case errors.Is(err, completion.ErrRequestRejected), errors.Is(err, completion.ErrEmptyCompletion):
		return http.StatusBadGateway, msgGenerationFailed
	default:
		return http.StatusInternalServerError, msgGenerationFailed
	}
}

func requestID(r *http.Request) string {
	return middleware.GetRequestID(r.Context())
}
