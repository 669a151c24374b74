package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"contactvault/internal/changelog"
	"contactvault/internal/contacts/cardcodec"
	"contactvault/internal/contacts/csvmap"
	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/pipeline"
	"contactvault/internal/contacts/properties"
	"contactvault/internal/contacts/vcard"
	dErrors "contactvault/pkg/domain-errors"
)

// ImportSummary reports a settled import run: a per-input-index partition
// into accepted and failed, plus the IDs of the stored contacts.
type ImportSummary struct {
	Total    int
	Accepted []string
	Result   pipeline.Result
}

// ImportVCards parses a vCard stream and imports every contact in it.
// Parsing the stream as a whole fails fast on unbalanced card delimiters;
// from there each contact proceeds through the staged run independently.
func (s *Service) ImportVCards(ctx context.Context, userID, text string, overwrite bool, tracker *pipeline.Tracker) (ImportSummary, error) {
	ctx, span := tracer.Start(ctx, "contacts.ImportVCards")
	defer span.End()

	lists, err := vcard.ParseAll(text)
	if err != nil {
		return ImportSummary{}, err
	}
	return s.importLists(ctx, userID, lists, overwrite, tracker)
}

// ImportCSV reads a spreadsheet export, maps its columns onto vCard
// properties with the default templates, and imports the resulting contacts.
func (s *Service) ImportCSV(ctx context.Context, userID string, r io.Reader, overwrite bool, tracker *pipeline.Tracker) (ImportSummary, error) {
	ctx, span := tracer.Start(ctx, "contacts.ImportCSV")
	defer span.End()

	source, err := csvmap.Read(r)
	if err != nil {
		return ImportSummary{}, err
	}
	source.Standardize()
	lists := csvmap.Contacts(source)
	return s.importLists(ctx, userID, lists, overwrite, tracker)
}

// importLists runs the staged import: a parse stage validating each property
// list, an encrypt stage producing stored cards, and a submit stage writing
// chunks to the store. Failures stay per-item; one bad contact never aborts
// the run.
func (s *Service) importLists(ctx context.Context, userID string, lists [][]properties.Property, overwrite bool, tracker *pipeline.Tracker) (ImportSummary, error) {
	start := time.Now()
	defer s.metrics.ObserveImport(start)

	recipient, signer, err := s.keys.Keys(ctx, userID)
	if err != nil {
		return ImportSummary{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve user keys")
	}

	summary := ImportSummary{Total: len(lists)}
	var result pipeline.Result

	parsed, parseFailures, err := pipeline.MapStage(ctx, pipeline.StageParse, tracker,
		pipeline.Items(lists), s.concurrency,
		func(_ context.Context, props []properties.Property) ([]properties.Property, error) {
			if len(props) == 0 {
				return nil, dErrors.New(dErrors.CodeInvalidInput, "contact has no properties")
			}
			return props, nil
		})
	if err != nil {
		return summary, err
	}
	result.Record(pipeline.StageParse, parseFailures)

	encoded, encryptFailures, err := pipeline.MapStage(ctx, pipeline.StageEncrypt, tracker,
		parsed, s.concurrency,
		func(ctx context.Context, props []properties.Property) (models.Contact, error) {
			cards, err := cardcodec.Encode(ctx, props, recipient, signer, s.cryptor)
			if err != nil {
				return models.Contact{}, err
			}
			return models.Contact{ID: uuid.NewString(), Cards: cards}, nil
		})
	if err != nil {
		return summary, err
	}
	result.Record(pipeline.StageEncrypt, encryptFailures)

	submitFailures, err := pipeline.SubmitStage(ctx, pipeline.StageSubmit, tracker, encoded,
		func(ctx context.Context, chunk []models.Contact) ([]error, error) {
			errs := make([]error, len(chunk))
			for i, contact := range chunk {
				errs[i] = s.store.Save(ctx, userID, contact, overwrite)
			}
			return errs, nil
		})
	if err != nil {
		return summary, err
	}
	result.Record(pipeline.StageSubmit, submitFailures)
	result.Finish(len(lists))

	failed := make(map[int]bool, len(result.Failures))
	for _, f := range result.Failures {
		failed[f.Index] = true
	}
	for _, item := range encoded {
		if !failed[item.Index] {
			summary.Accepted = append(summary.Accepted, item.Value.ID)
		}
	}
	summary.Result = result

	s.metrics.ContactsImported.Add(float64(len(summary.Accepted)))
	s.metrics.ContactsRejected.Add(float64(len(result.Failures)))
	s.logger.InfoContext(ctx, "import settled",
		"total", summary.Total,
		"accepted", len(summary.Accepted),
		"failed", len(result.Failures),
	)
	if len(summary.Accepted) > 0 {
		s.emit(ctx, userID, changelog.ActionContactCreated, summary.Accepted)
	}
	return summary, nil
}

// AddContacts stores cards a client already encoded. Responses line up with
// the request items; Code 1000 marks full acceptance.
func (s *Service) AddContacts(ctx context.Context, userID string, req models.AddContactsRequest) ([]models.ItemResponse, error) {
	ctx, span := tracer.Start(ctx, "contacts.AddContacts")
	defer span.End()
	span.SetAttributes(attribute.Int("contacts.count", len(req.Contacts)))

	if len(req.Contacts) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no contacts given")
	}
	overwrite := req.Overwrite != 0

	responses := make([]models.ItemResponse, len(req.Contacts))
	var created []string
	for i, encoded := range req.Contacts {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCancelled, "add contacts cancelled")
		}
		contact := models.Contact{ID: uuid.NewString(), Cards: encoded.Cards}
		if err := s.store.Save(ctx, userID, contact, overwrite); err != nil {
			responses[i] = models.ItemResponse{
				Code:  models.CodeRejected,
				Error: err.Error(),
			}
			continue
		}
		responses[i] = models.ItemResponse{Code: models.CodeSuccess, Contact: &contact}
		created = append(created, contact.ID)
	}
	if len(created) > 0 {
		s.emit(ctx, userID, changelog.ActionContactCreated, created)
	}
	return responses, nil
}
