package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"contactvault/internal/contacts/handler/mocks"
	"contactvault/internal/contacts/models"
	"contactvault/internal/contacts/pipeline"
	"contactvault/internal/contacts/properties"
	"contactvault/internal/contacts/service"
	dErrors "contactvault/pkg/domain-errors"
	"contactvault/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/contacts-mocks.go -package=mocks Service
type ContactsHandlerSuite struct {
	suite.Suite
}

func TestContactsHandlerSuite(t *testing.T) {
	suite.Run(t, new(ContactsHandlerSuite))
}

func newTestRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(mockService, logger).Register(r)
	return r, mockService
}

func (s *ContactsHandlerSuite) request(r chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := requestcontext.WithUserID(req.Context(), "user-1")
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	req = req.WithContext(ctx)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (s *ContactsHandlerSuite) decode(w *httptest.ResponseRecorder, v any) {
	s.Require().NoError(json.NewDecoder(w.Body).Decode(v))
}

func (s *ContactsHandlerSuite) TestListContacts() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().ListContactIDs(gomock.Any(), "user-1").
		Return([]string{"c1", "c2"}, nil)

	w := s.request(r, http.MethodGet, "/contacts", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp ListResponse
	s.decode(w, &resp)
	s.Equal([]string{"c1", "c2"}, resp.ContactIDs)
}

func (s *ContactsHandlerSuite) TestListContactsEmpty() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().ListContactIDs(gomock.Any(), "user-1").Return(nil, nil)

	w := s.request(r, http.MethodGet, "/contacts", nil)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"contact_ids":[]}`, w.Body.String())
}

func (s *ContactsHandlerSuite) TestGetContact() {
	r, mockService := newTestRouter(s.T())
	props := []properties.Property{
		{Field: properties.FieldFN, Value: properties.Text("Jane Roe")},
	}
	mockService.EXPECT().Get(gomock.Any(), "user-1", "c1").Return(props, true, nil)

	w := s.request(r, http.MethodGet, "/contacts/c1", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp ContactResponse
	s.decode(w, &resp)
	s.Equal("c1", resp.ID)
	s.True(resp.Verified)
	s.Contains(resp.VCard, "FN:Jane Roe")
}

func (s *ContactsHandlerSuite) TestGetContactNotFound() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().Get(gomock.Any(), "user-1", "missing").
		Return(nil, false, dErrors.New(dErrors.CodeNotFound, "contact not found"))

	w := s.request(r, http.MethodGet, "/contacts/missing", nil)

	s.Equal(http.StatusNotFound, w.Code)
}

func (s *ContactsHandlerSuite) TestUnauthenticatedRequest() {
	r, _ := newTestRouter(s.T())

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *ContactsHandlerSuite) TestAddContacts() {
	r, mockService := newTestRouter(s.T())
	body := AddContactsRequest{AddContactsRequest: models.AddContactsRequest{
		Contacts: []models.EncodedContact{
			{Cards: []models.Card{{Type: models.CardSigned, Data: "FN:Jane"}}},
		},
	}}
	mockService.EXPECT().AddContacts(gomock.Any(), "user-1", body.AddContactsRequest).
		Return([]models.ItemResponse{{Code: models.CodeSuccess}}, nil)

	w := s.request(r, http.MethodPost, "/contacts", body)

	s.Equal(http.StatusOK, w.Code)
	var resp map[string][]models.ItemResponse
	s.decode(w, &resp)
	s.Require().Len(resp["Responses"], 1)
	s.True(resp["Responses"][0].Accepted())
}

func (s *ContactsHandlerSuite) TestAddContactsRejectsEmptyBody() {
	r, _ := newTestRouter(s.T())

	w := s.request(r, http.MethodPost, "/contacts", AddContactsRequest{})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ContactsHandlerSuite) TestImportVCard() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().
		ImportVCards(gomock.Any(), "user-1", "BEGIN:VCARD\r\nEND:VCARD\r\n", true, gomock.Any()).
		Return(service.ImportSummary{Total: 1, Accepted: []string{"c1"}}, nil)

	w := s.request(r, http.MethodPost, "/contacts/import/vcard", ImportVCardRequest{
		Data:      "BEGIN:VCARD\r\nEND:VCARD\r\n",
		Overwrite: true,
	})

	s.Equal(http.StatusOK, w.Code)
	var resp ImportResponse
	s.decode(w, &resp)
	s.Equal(1, resp.Total)
	s.Equal([]string{"c1"}, resp.Accepted)
	s.Empty(resp.Failures)
}

func (s *ContactsHandlerSuite) TestImportVCardRequiresData() {
	r, _ := newTestRouter(s.T())

	w := s.request(r, http.MethodPost, "/contacts/import/vcard", ImportVCardRequest{Data: "  "})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ContactsHandlerSuite) TestImportVCardReportsFailures() {
	r, mockService := newTestRouter(s.T())
	summary := service.ImportSummary{
		Total: 2,
		Result: pipeline.Result{Failures: []pipeline.Failure{
			{Index: 1, Stage: pipeline.StageParse, Err: errors.New("contact has no properties")},
		}},
	}
	mockService.EXPECT().
		ImportVCards(gomock.Any(), "user-1", gomock.Any(), false, gomock.Any()).
		Return(summary, nil)

	w := s.request(r, http.MethodPost, "/contacts/import/vcard", ImportVCardRequest{Data: "BEGIN:VCARD"})

	s.Equal(http.StatusOK, w.Code)
	var resp ImportResponse
	s.decode(w, &resp)
	s.Equal([]string{}, resp.Accepted)
	s.Require().Len(resp.Failures, 1)
	s.Equal(1, resp.Failures[0].Index)
	s.Equal("parse", resp.Failures[0].Stage)
}

func (s *ContactsHandlerSuite) TestImportCSV() {
	r, mockService := newTestRouter(s.T())
	csv := "First Name,Last Name\nJohn,Doe\n"
	mockService.EXPECT().
		ImportCSV(gomock.Any(), "user-1", gomock.Any(), true, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, body io.Reader, _ bool, _ *pipeline.Tracker) (service.ImportSummary, error) {
			data, err := io.ReadAll(body)
			s.Require().NoError(err)
			s.Equal(csv, string(data))
			return service.ImportSummary{Total: 1, Accepted: []string{"c1"}}, nil
		})

	w := s.request(r, http.MethodPost, "/contacts/import/csv?overwrite=true", csv)

	s.Equal(http.StatusOK, w.Code)
	var resp ImportResponse
	s.decode(w, &resp)
	s.Equal([]string{"c1"}, resp.Accepted)
}

func (s *ContactsHandlerSuite) TestExport() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().ExportAll(gomock.Any(), "user-1").
		Return("BEGIN:VCARD\r\nFN:Jane Roe\r\nEND:VCARD\r\n", nil)

	w := s.request(r, http.MethodGet, "/contacts/export", nil)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("text/vcard; charset=utf-8", w.Header().Get("Content-Type"))
	s.Contains(w.Body.String(), "FN:Jane Roe")
}

func (s *ContactsHandlerSuite) TestDuplicates() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().FindDuplicates(gomock.Any(), "user-1").
		Return([][]string{{"c1", "c2"}}, nil)

	w := s.request(r, http.MethodGet, "/contacts/duplicates", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp DuplicatesResponse
	s.decode(w, &resp)
	s.Equal([][]string{{"c1", "c2"}}, resp.Groups)
}

func (s *ContactsHandlerSuite) TestDuplicatesEmpty() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().FindDuplicates(gomock.Any(), "user-1").Return(nil, nil)

	w := s.request(r, http.MethodGet, "/contacts/duplicates", nil)

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"groups":[]}`, w.Body.String())
}

func (s *ContactsHandlerSuite) TestMerge() {
	r, mockService := newTestRouter(s.T())
	groups := [][]string{{"c1", "c2"}}
	mockService.EXPECT().MergeGroups(gomock.Any(), "user-1", groups, gomock.Any()).
		Return(pipeline.Result{Succeeded: []int{0}}, nil)

	w := s.request(r, http.MethodPost, "/contacts/merge", MergeRequest{Groups: groups})

	s.Equal(http.StatusOK, w.Code)
	var resp MergeResponse
	s.decode(w, &resp)
	s.Equal(1, resp.Groups)
	s.Equal(1, resp.Succeeded)
	s.Empty(resp.Failures)
}

func (s *ContactsHandlerSuite) TestMergeRejectsSingletonGroup() {
	r, _ := newTestRouter(s.T())

	w := s.request(r, http.MethodPost, "/contacts/merge", MergeRequest{Groups: [][]string{{"c1"}}})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ContactsHandlerSuite) TestDeleteContacts() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().Delete(gomock.Any(), "user-1", []string{"c1", "c2"}).Return(nil)

	w := s.request(r, http.MethodPost, "/contacts/delete", DeleteContactsRequest{
		ContactIDs: []string{"c1", "c2"},
	})

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *ContactsHandlerSuite) TestDeleteContactsRejectsBlankIDs() {
	r, _ := newTestRouter(s.T())

	w := s.request(r, http.MethodPost, "/contacts/delete", DeleteContactsRequest{
		ContactIDs: []string{"c1", " "},
	})

	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *ContactsHandlerSuite) TestClearContacts() {
	r, mockService := newTestRouter(s.T())
	mockService.EXPECT().Clear(gomock.Any(), "user-1").Return(nil)

	w := s.request(r, http.MethodDelete, "/contacts", nil)

	s.Equal(http.StatusNoContent, w.Code)
}
