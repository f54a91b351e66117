package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/rentaldocs/internal/config"
	documentdomain "github.com/smallbiznis/rentaldocs/internal/document/domain"
	gitedomain "github.com/smallbiznis/rentaldocs/internal/gite/domain"
	"github.com/smallbiznis/rentaldocs/internal/renderer"
	"github.com/smallbiznis/rentaldocs/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeDocumentService struct {
	documentdomain.Service

	preview      documentdomain.Preview
	previewErr   error
	lastPayload  documentdomain.Payload
	pages        [][]documentdomain.Document
	listCalls    int
	artifact     documentdomain.Artifact
	err          error
	lastStatus   string
	lastFilter   documentdomain.ListFilter
	previewCalls int
}

func (f *fakeDocumentService) PreviewHTML(ctx context.Context, kind documentdomain.Kind, payload documentdomain.Payload) (documentdomain.Preview, error) {
	f.previewCalls++
	f.lastPayload = payload
	return f.preview, f.previewErr
}

func (f *fakeDocumentService) PreviewPDF(ctx context.Context, kind documentdomain.Kind, payload documentdomain.Payload) (documentdomain.Preview, error) {
	return f.PreviewHTML(ctx, kind, payload)
}

func (f *fakeDocumentService) Create(ctx context.Context, kind documentdomain.Kind, payload documentdomain.Payload) (documentdomain.Document, error) {
	f.lastPayload = payload
	return documentdomain.Document{Kind: kind, Numero: "LIB-2026-000001"}, f.err
}

func (f *fakeDocumentService) Get(ctx context.Context, kind documentdomain.Kind, id string) (documentdomain.Document, error) {
	return documentdomain.Document{}, f.err
}

func (f *fakeDocumentService) Delete(ctx context.Context, kind documentdomain.Kind, id string) error {
	return f.err
}

func (f *fakeDocumentService) List(ctx context.Context, kind documentdomain.Kind, filter documentdomain.ListFilter) ([]documentdomain.Document, pagination.PageInfo, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, pagination.PageInfo{}, f.err
	}
	page := f.pages[f.listCalls]
	f.listCalls++
	if f.listCalls < len(f.pages) {
		return page, pagination.PageInfo{HasMore: true, NextPageToken: fmt.Sprintf("page-%d", f.listCalls)}, nil
	}
	return page, pagination.PageInfo{}, nil
}

func (f *fakeDocumentService) Artifact(ctx context.Context, kind documentdomain.Kind, id string) (documentdomain.Artifact, error) {
	return f.artifact, f.err
}

func (f *fakeDocumentService) SetPaymentStatus(ctx context.Context, id, status string) (documentdomain.Document, error) {
	f.lastStatus = status
	return documentdomain.Document{StatutPaiement: status}, f.err
}

type fakeGiteService struct {
	gitedomain.Service
	err error
}

func (f *fakeGiteService) Get(ctx context.Context, id string) (gitedomain.Gite, error) {
	return gitedomain.Gite{Nom: "Gîte"}, f.err
}

func (f *fakeGiteService) Create(ctx context.Context, input gitedomain.GiteInput) (gitedomain.Gite, error) {
	return gitedomain.Gite{Nom: input.Nom}, f.err
}

func newTestServer(t *testing.T, cfg config.Config, docs documentdomain.Service, gites gitedomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	useJSONFieldNames()

	router := gin.New()
	router.Use(CORS(cfg))
	router.Use(ErrorHandlingMiddleware())
	NewServer(ServerParams{Gin: router, Cfg: cfg, GiteSvc: gites, DocumentSvc: docs})
	return router
}

func do(router http.Handler, method, path string, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body == "" {
		reader = &bytes.Buffer{}
	} else {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body.Error
}

func TestPreviewSetsOverflowHeaders(t *testing.T) {
	docs := &fakeDocumentService{preview: documentdomain.Preview{
		Body:           []byte("<html></html>"),
		ContentType:    "text/html; charset=utf-8",
		OverflowBefore: true,
		CompactApplied: true,
	}}
	router := newTestServer(t, config.Config{}, docs, &fakeGiteService{})

	resp := do(router, http.MethodPost, "/api/contracts/preview-html", `{"gite_id":"1"}`, "X-Preview-Generation", "01HZX")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("X-Contract-Overflow"))
	assert.Equal(t, "0", resp.Header().Get("X-Contract-Overflow-After"))
	assert.Equal(t, "1", resp.Header().Get("X-Contract-Compact"))
	assert.Equal(t, "01HZX", resp.Header().Get("X-Preview-Generation"))
	assert.Equal(t, "no-store", resp.Header().Get("Cache-Control"))
	assert.Equal(t, "<html></html>", resp.Body.String())
	assert.Equal(t, "1", docs.lastPayload.GiteID)

	resp = do(router, http.MethodPost, "/api/invoices/preview-pdf", `{}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("X-Invoice-Overflow"))
	assert.Empty(t, resp.Header().Get("X-Contract-Overflow"))
	assert.Empty(t, resp.Header().Get("X-Preview-Generation"))
}

func TestErrorMapping(t *testing.T) {
	verr := &documentdomain.ValidationError{}
	verr.Required("locataire_nom")

	cases := []struct {
		name    string
		path    string
		err     error
		status  int
		errType string
		message string
		field   string
	}{
		{"date range", "/api/contracts/1", fmt.Errorf("resolve: %w", documentdomain.ErrInvalidDateRange), http.StatusBadRequest, "validation_error", "validation error", "date_fin"},
		{"fields", "/api/contracts/1", verr, http.StatusBadRequest, "validation_error", "validation error", "locataire_nom"},
		{"contract missing", "/api/contracts/1", documentdomain.ErrNotFound, http.StatusNotFound, "not_found", "Contrat introuvable", ""},
		{"invoice missing", "/api/invoices/1", documentdomain.ErrNotFound, http.StatusNotFound, "not_found", "Facture introuvable", ""},
		{"row missing", "/api/contracts/1", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "not_found", "not found", ""},
		{"gite missing", "/api/invoices/1", documentdomain.ErrGiteNotFound, http.StatusNotFound, "not_found", "Gîte introuvable", ""},
		{"bad id", "/api/invoices/x", documentdomain.ErrInvalidID, http.StatusBadRequest, "validation_error", "validation error", "id"},
		{"renderer down", "/api/contracts/1", fmt.Errorf("render: %w", renderer.ErrRenderFailed), http.StatusServiceUnavailable, "render_unavailable", "", ""},
		{"unexpected", "/api/contracts/1", fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error", "internal server error", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestServer(t, config.Config{}, &fakeDocumentService{err: tc.err}, &fakeGiteService{})
			resp := do(router, http.MethodGet, tc.path, "")
			require.Equal(t, tc.status, resp.Code)

			payload := decodeError(t, resp)
			assert.Equal(t, tc.errType, payload.Type)
			if tc.message != "" {
				assert.Equal(t, tc.message, payload.Message)
			}
			if tc.field != "" {
				require.NotEmpty(t, payload.Errors)
				assert.Equal(t, tc.field, payload.Errors[0].Field)
			}
		})
	}
}

func TestDateRangeErrorCarriesFrenchMessage(t *testing.T) {
	router := newTestServer(t, config.Config{}, &fakeDocumentService{previewErr: documentdomain.ErrInvalidDateRange}, &fakeGiteService{})

	resp := do(router, http.MethodPost, "/api/contracts/preview-html", `{"date_debut":"2026-03-04","date_fin":"2026-03-01"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	payload := decodeError(t, resp)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, documentdomain.DateRangeMessage, payload.Errors[0].Message)
}

func TestBindingErrorsAreKeyedByJSONField(t *testing.T) {
	docs := &fakeDocumentService{}
	router := newTestServer(t, config.Config{}, docs, &fakeGiteService{})

	resp := do(router, http.MethodPost, "/api/contracts", `{"nb_adultes":0,"statut_paiement":"bientot"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	payload := decodeError(t, resp)
	fields := map[string]string{}
	for _, e := range payload.Errors {
		fields[e.Field] = e.Code
	}
	assert.Equal(t, "min", fields["nb_adultes"])
	assert.Equal(t, "oneof", fields["statut_paiement"])

	resp = do(router, http.MethodPost, "/api/contracts", `{"nb_adultes":"deux"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "nb_adultes", decodeError(t, resp).Errors[0].Field)
}

func TestGiteRoutes(t *testing.T) {
	router := newTestServer(t, config.Config{}, &fakeDocumentService{}, &fakeGiteService{})

	resp := do(router, http.MethodPost, "/api/gites", `{"nom":"Le Liberté"}`)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	fields := map[string]bool{}
	for _, e := range decodeError(t, resp).Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["prefixe_contrat"])
	assert.True(t, fields["iban"])

	router = newTestServer(t, config.Config{}, &fakeDocumentService{}, &fakeGiteService{err: gitedomain.ErrDuplicatePrefix})
	body := `{"nom":"Le Liberté","prefixe_contrat":"LIB","adresse_ligne1":"2 rue","capacite_max":4,
		"proprietaires_noms":"Martin","proprietaires_adresse":"2 rue","iban":"FR76","titulaire":"Martin"}`
	resp = do(router, http.MethodPost, "/api/gites", body)
	assert.Equal(t, http.StatusConflict, resp.Code)

	router = newTestServer(t, config.Config{}, &fakeDocumentService{}, &fakeGiteService{err: gitedomain.ErrNotFound})
	resp = do(router, http.MethodGet, "/api/gites/42", "")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Gîte introuvable", decodeError(t, resp).Message)
}

func TestBasicAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	for name, cfg := range map[string]config.Config{
		"plain": {BasicAuthUser: "admin", BasicAuthPassword: "s3cret"},
		"hash":  {BasicAuthUser: "admin", BasicAuthPasswordHash: string(hash)},
	} {
		t.Run(name, func(t *testing.T) {
			router := newTestServer(t, cfg, &fakeDocumentService{}, &fakeGiteService{})

			resp := do(router, http.MethodGet, "/api/gites/1", "")
			require.Equal(t, http.StatusUnauthorized, resp.Code)
			assert.Contains(t, resp.Header().Get("WWW-Authenticate"), "Basic")

			req := httptest.NewRequest(http.MethodGet, "/api/gites/1", nil)
			req.SetBasicAuth("admin", "wrong")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			req = httptest.NewRequest(http.MethodGet, "/api/gites/1", nil)
			req.SetBasicAuth("admin", "s3cret")
			rec = httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	router := newTestServer(t, config.Config{}, &fakeDocumentService{}, &fakeGiteService{})
	assert.Equal(t, http.StatusOK, do(router, http.MethodGet, "/api/gites/1", "").Code)
}

func TestCORSExposesPreviewHeaders(t *testing.T) {
	docs := &fakeDocumentService{preview: documentdomain.Preview{ContentType: "text/html; charset=utf-8"}}
	router := newTestServer(t, config.Config{ClientOrigin: "http://localhost:5173"}, docs, &fakeGiteService{})

	resp := do(router, http.MethodPost, "/api/contracts/preview-html", `{}`, "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "http://localhost:5173", resp.Header().Get("Access-Control-Allow-Origin"))
	exposed := resp.Header().Get("Access-Control-Expose-Headers")
	for _, h := range []string{"X-Contract-Overflow", "X-Invoice-Compact", "X-Preview-Generation"} {
		assert.Contains(t, exposed, h)
	}
}

func TestDownloadSetsNoCacheHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "LIB-2026-000001.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	docs := &fakeDocumentService{artifact: documentdomain.Artifact{Path: path, Filename: "contrat-lib-2026-000001-dupont.pdf"}}
	router := newTestServer(t, config.Config{}, docs, &fakeGiteService{})

	resp := do(router, http.MethodGet, "/api/contracts/1/pdf", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "no-store, no-cache, must-revalidate", resp.Header().Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header().Get("Pragma"))
	assert.Equal(t, "0", resp.Header().Get("Expires"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "contrat-lib-2026-000001-dupont.pdf")
	assert.Equal(t, "%PDF-1.4", resp.Body.String())
}

func TestListPassesFilters(t *testing.T) {
	docs := &fakeDocumentService{pages: [][]documentdomain.Document{{{Numero: "LIB-2026-01"}}}}
	router := newTestServer(t, config.Config{}, docs, &fakeGiteService{})

	resp := do(router, http.MethodGet, "/api/invoices?q=dupont&giteId=7&from=2026-01-01&page_size=10", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "dupont", docs.lastFilter.Query)
	assert.Equal(t, "7", docs.lastFilter.GiteID)
	assert.Equal(t, "2026-01-01", docs.lastFilter.From)
	assert.Equal(t, 10, docs.lastFilter.PageSize)

	resp = do(router, http.MethodGet, "/api/invoices?to=demain", "")
	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "to", decodeError(t, resp).Errors[0].Field)
}

func TestExportWalksEveryPage(t *testing.T) {
	docs := &fakeDocumentService{pages: [][]documentdomain.Document{
		{{Numero: "LIB-2026-000001"}},
		{{Numero: "LIB-2026-000002"}},
	}}
	router := newTestServer(t, config.Config{}, docs, &fakeGiteService{})

	resp := do(router, http.MethodGet, "/api/contracts/export.xlsx", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, docs.listCalls)
	assert.Contains(t, resp.Header().Get("Content-Disposition"), "contracts.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(resp.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestPaymentStatusPatch(t *testing.T) {
	docs := &fakeDocumentService{}
	router := newTestServer(t, config.Config{}, docs, &fakeGiteService{})

	resp := do(router, http.MethodPatch, "/api/invoices/1/payment", `{"statut_paiement":"reglee"}`)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "reglee", docs.lastStatus)

	resp = do(router, http.MethodPatch, "/api/invoices/1/payment", `{}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteReturnsNoContent(t *testing.T) {
	router := newTestServer(t, config.Config{}, &fakeDocumentService{}, &fakeGiteService{})
	resp := do(router, http.MethodDelete, "/api/contracts/1", "")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.String())
}
