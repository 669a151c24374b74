package handler

import (
	"contactvault/internal/contacts/pipeline"
	"contactvault/internal/contacts/service"
)

// FailureResponse reports one item that did not survive a staged run.
type FailureResponse struct {
	Index int    `json:"index"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// ImportResponse is the HTTP response for import endpoints.
type ImportResponse struct {
	Total    int               `json:"total"`
	Accepted []string          `json:"accepted"`
	Failures []FailureResponse `json:"failures"`
	Progress float64           `json:"progress"`
}

// FromImportSummary converts a settled import run to an HTTP response.
func FromImportSummary(summary service.ImportSummary, progress pipeline.Progress) *ImportResponse {
	resp := &ImportResponse{
		Total:    summary.Total,
		Accepted: summary.Accepted,
		Failures: failuresFrom(summary.Result),
		Progress: progress.Percent(),
	}
	if resp.Accepted == nil {
		resp.Accepted = []string{}
	}
	return resp
}

// MergeResponse is the HTTP response for POST /contacts/merge.
type MergeResponse struct {
	Groups    int               `json:"groups"`
	Succeeded int               `json:"succeeded"`
	Failures  []FailureResponse `json:"failures"`
	Progress  float64           `json:"progress"`
}

// ContactResponse is the HTTP response for GET /contacts/{id}: the decoded
// card serialized back to vCard text, with the verification verdict.
type ContactResponse struct {
	ID       string `json:"id"`
	VCard    string `json:"vcard"`
	Verified bool   `json:"verified"`
}

// ListResponse is the HTTP response for GET /contacts.
type ListResponse struct {
	ContactIDs []string `json:"contact_ids"`
}

// DuplicatesResponse is the HTTP response for GET /contacts/duplicates.
type DuplicatesResponse struct {
	Groups [][]string `json:"groups"`
}

func failuresFrom(result pipeline.Result) []FailureResponse {
	failures := make([]FailureResponse, len(result.Failures))
	for i, f := range result.Failures {
		failures[i] = FailureResponse{
			Index: f.Index,
			Stage: string(f.Stage),
			Error: f.Err.Error(),
		}
	}
	return failures
}
