package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/pipeline"
	"contactvault/internal/contacts/properties"
	"contactvault/internal/contacts/service"
	"contactvault/internal/contacts/vcard"
	dErrors "contactvault/pkg/domain-errors"
	"contactvault/pkg/platform/httputil"
	"contactvault/pkg/requestcontext"

	"log/slog"
)

// Service defines the interface for contact operations.
type Service interface {
	Get(ctx context.Context, userID, contactID string) ([]properties.Property, bool, error)
	ExportAll(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string, contactIDs []string) error
	Clear(ctx context.Context, userID string) error
	ImportVCards(ctx context.Context, userID, text string, overwrite bool, tracker *pipeline.Tracker) (service.ImportSummary, error)
	ImportCSV(ctx context.Context, userID string, r io.Reader, overwrite bool, tracker *pipeline.Tracker) (service.ImportSummary, error)
	AddContacts(ctx context.Context, userID string, req models.AddContactsRequest) ([]models.ItemResponse, error)
	FindDuplicates(ctx context.Context, userID string) ([][]string, error)
	MergeGroups(ctx context.Context, userID string, groups [][]string, tracker *pipeline.Tracker) (pipeline.Result, error)
	ListContactIDs(ctx context.Context, userID string) ([]string, error)
}

// Handler wires contact endpoints to the contacts service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a contacts handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts contact endpoints on the router. The caller applies auth
// and ambient middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/contacts", h.HandleList)
	r.Post("/contacts", h.HandleAdd)
	r.Get("/contacts/export", h.HandleExport)
	r.Get("/contacts/duplicates", h.HandleDuplicates)
	r.Post("/contacts/merge", h.HandleMerge)
	r.Post("/contacts/delete", h.HandleDelete)
	r.Delete("/contacts", h.HandleClear)
	r.Post("/contacts/import/vcard", h.HandleImportVCard)
	r.Post("/contacts/import/csv", h.HandleImportCSV)
	r.Get("/contacts/{contactID}", h.HandleGet)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	ids, err := h.service.ListContactIDs(ctx, userID)
	if err != nil {
		h.fail(w, ctx, "list contacts failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{ContactIDs: ids})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	contactID := chi.URLParam(r, "contactID")

	props, verified, err := h.service.Get(ctx, userID, contactID)
	if err != nil {
		h.fail(w, ctx, "get contact failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ContactResponse{
		ID:       contactID,
		VCard:    vcard.Serialize(props),
		Verified: verified,
	})
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddContactsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	responses, err := h.service.AddContacts(ctx, userID, req.AddContactsRequest)
	if err != nil {
		h.fail(w, ctx, "add contacts failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]models.ItemResponse{"Responses": responses})
}

func (h *Handler) HandleImportVCard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ImportVCardRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tracker := pipeline.NewTracker(pipeline.ImportWeights, nil)
	summary, err := h.service.ImportVCards(ctx, userID, req.Data, req.Overwrite, tracker)
	if err != nil {
		h.fail(w, ctx, "vcard import failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromImportSummary(summary, tracker.Snapshot()))
}

func (h *Handler) HandleImportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	overwrite := r.URL.Query().Get("overwrite") == "true"

	tracker := pipeline.NewTracker(pipeline.ImportWeights, nil)
	summary, err := h.service.ImportCSV(ctx, userID, r.Body, overwrite, tracker)
	if err != nil {
		h.fail(w, ctx, "csv import failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromImportSummary(summary, tracker.Snapshot()))
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	text, err := h.service.ExportAll(ctx, userID)
	if err != nil {
		h.fail(w, ctx, "export failed", err)
		return
	}
	w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}

func (h *Handler) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	groups, err := h.service.FindDuplicates(ctx, userID)
	if err != nil {
		h.fail(w, ctx, "duplicate scan failed", err)
		return
	}
	if groups == nil {
		groups = [][]string{}
	}
	httputil.WriteJSON(w, http.StatusOK, DuplicatesResponse{Groups: groups})
}

func (h *Handler) HandleMerge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[MergeRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	tracker := pipeline.NewTracker(pipeline.MergeWeights, nil)
	result, err := h.service.MergeGroups(ctx, userID, req.Groups, tracker)
	if err != nil {
		h.fail(w, ctx, "merge failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MergeResponse{
		Groups:    len(req.Groups),
		Succeeded: len(result.Succeeded),
		Failures:  failuresFrom(result),
		Progress:  tracker.Snapshot().Percent(),
	})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[DeleteContactsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, userID, req.ContactIDs); err != nil {
		h.fail(w, ctx, "delete contacts failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}
	if err := h.service.Clear(ctx, userID); err != nil {
		h.fail(w, ctx, "clear contacts failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (string, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	return userID, true
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
