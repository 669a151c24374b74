package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"contactvault/internal/changelog"
	"contactvault/internal/contacts/cardcodec"
	"contactvault/internal/contacts/dedupe"
	"contactvault/internal/contacts/merge"
	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/pipeline"
	"contactvault/internal/contacts/properties"
	dErrors "contactvault/pkg/domain-errors"
)

// FindDuplicates scans the address book and returns groups of contact IDs
// that share a display name or an email address, transitively. Singleton
// contacts are never reported.
func (s *Service) FindDuplicates(ctx context.Context, userID string) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "contacts.FindDuplicates")
	defer span.End()

	ids, err := s.store.ListIDs(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list contacts")
	}

	linkables := make([]dedupe.Linkable, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCancelled, "duplicate scan cancelled")
		}
		props, _, err := s.Get(ctx, userID, id)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping contact during duplicate scan",
				"contact_id", id, "error", err)
			continue
		}
		linkables = append(linkables, linkableFrom(id, props))
	}

	groups := dedupe.ExtractMergeable(linkables)
	out := make([][]string, len(groups))
	for i, group := range groups {
		idGroup := make([]string, len(group))
		for j, member := range group {
			idGroup[j] = member.ID
		}
		out[i] = idGroup
	}
	span.SetAttributes(attribute.Int("duplicates.groups", len(out)))
	return out, nil
}

func linkableFrom(id string, props []properties.Property) dedupe.Linkable {
	linkable := dedupe.Linkable{ID: id}
	if p, ok := properties.First(props, properties.FieldFN); ok {
		linkable.Name = p.Value.String()
	}
	for _, p := range properties.ByField(props, properties.FieldEmail) {
		linkable.Emails = append(linkable.Emails, p.Value.String())
	}
	return linkable
}

// MergeGroups folds each group into its first member. The first member's
// properties win every single-instance conflict; the losers are deleted only
// after the merged contact is stored, so a failed merge never loses data.
func (s *Service) MergeGroups(ctx context.Context, userID string, groups [][]string, tracker *pipeline.Tracker) (pipeline.Result, error) {
	ctx, span := tracer.Start(ctx, "contacts.MergeGroups")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveMerge(start)

	for _, group := range groups {
		if len(group) < 2 {
			return pipeline.Result{}, dErrors.New(dErrors.CodeBadRequest, "merge group needs at least two contacts")
		}
	}

	recipient, signer, err := s.keys.Keys(ctx, userID)
	if err != nil {
		return pipeline.Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve user keys")
	}

	var result pipeline.Result

	type mergedGroup struct {
		target models.Contact
		losers []string
	}

	merged, mergeFailures, err := pipeline.MapStage(ctx, pipeline.StageEncrypt, tracker,
		pipeline.Items(groups), s.concurrency,
		func(ctx context.Context, group []string) (mergedGroup, error) {
			lists := make([][]properties.Property, 0, len(group))
			for _, id := range group {
				props, _, err := s.Get(ctx, userID, id)
				if err != nil {
					return mergedGroup{}, err
				}
				lists = append(lists, props)
			}
			cards, err := cardcodec.Encode(ctx, merge.Merge(lists), recipient, signer, s.cryptor)
			if err != nil {
				return mergedGroup{}, err
			}
			return mergedGroup{
				target: models.Contact{ID: group[0], Cards: cards},
				losers: group[1:],
			}, nil
		})
	if err != nil {
		return result, err
	}
	result.Record(pipeline.StageEncrypt, mergeFailures)

	var mergedIDs []string
	submitFailures, err := pipeline.SubmitStage(ctx, pipeline.StageSubmit, tracker, merged,
		func(ctx context.Context, chunk []mergedGroup) ([]error, error) {
			errs := make([]error, len(chunk))
			for i, mg := range chunk {
				if err := s.store.Save(ctx, userID, mg.target, true); err != nil {
					errs[i] = err
					continue
				}
				if err := s.store.Delete(ctx, userID, mg.losers); err != nil {
					errs[i] = err
					continue
				}
				mergedIDs = append(mergedIDs, append([]string{mg.target.ID}, mg.losers...)...)
				s.metrics.ContactsMerged.Add(float64(len(mg.losers)))
			}
			return errs, nil
		})
	if err != nil {
		return result, err
	}
	result.Record(pipeline.StageSubmit, submitFailures)
	result.Finish(len(groups))

	s.logger.InfoContext(ctx, "merge settled",
		"groups", len(groups),
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failures),
	)
	if len(mergedIDs) > 0 {
		s.emit(ctx, userID, changelog.ActionContactsMerged, mergedIDs)
	}
	return result, nil
}
