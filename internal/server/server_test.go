package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josego85/pdf-content-search/internal/service"
	"github.com/josego85/pdf-content-search/internal/translation"
)

type stubService struct {
	requestResult *service.RequestResult
	statusResult  *service.StatusResult
	err           error
}

func (s *stubService) RequestTranslation(context.Context, string, int, string) (*service.RequestResult, error) {
	return s.requestResult, s.err
}

func (s *stubService) CheckStatus(context.Context, string, int, string) (*service.StatusResult, error) {
	return s.statusResult, s.err
}

func doRequest(t *testing.T, svc TranslationService, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, nil)
	rec := httptest.NewRecorder()
	NewServer(svc).Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_RequestTranslationSuccess(t *testing.T) {
	svc := &stubService{requestResult: &service.RequestResult{
		Status:         service.StatusSuccess,
		Translation:    "hola mundo",
		SourceLanguage: "en",
		Origin:         translation.OriginStore,
	}}

	rec := doRequest(t, svc, http.MethodPost, "/api/documents/report.pdf/pages/3/translation?lang=es")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body service.RequestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "hola mundo", body.Translation)
	assert.Equal(t, translation.OriginStore, body.Origin)
}

func TestServer_RequestTranslationQueued(t *testing.T) {
	svc := &stubService{requestResult: &service.RequestResult{Status: service.StatusQueued}}

	rec := doRequest(t, svc, http.MethodPost, "/api/documents/report.pdf/pages/3/translation?lang=es")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestServer_StatusCodeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &translation.ValidationError{Field: "page", Reason: "must be positive"}, http.StatusBadRequest},
		{"not found", translation.ErrDocumentNotFound, http.StatusNotFound},
		{"empty page", translation.ErrEmptyPage, http.StatusUnprocessableEntity},
		{"transient", &translation.TransientError{Op: "translate", Err: errors.New("timeout")}, http.StatusBadGateway},
		{"unknown", errors.New("db exploded"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(t, &stubService{err: tc.err},
				http.MethodPost, "/api/documents/report.pdf/pages/3/translation?lang=es")
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestServer_BadPageParam(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodPost, "/api/documents/report.pdf/pages/three/translation?lang=es")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_MissingLang(t *testing.T) {
	rec := doRequest(t, &stubService{}, http.MethodGet, "/api/documents/report.pdf/pages/3/translation")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CheckStatus(t *testing.T) {
	svc := &stubService{statusResult: &service.StatusResult{Status: service.StatusProcessing, Ready: false}}

	rec := doRequest(t, svc, http.MethodGet, "/api/documents/report.pdf/pages/3/translation?lang=es")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body service.StatusResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Equal(t, service.StatusProcessing, body.Status)
}
