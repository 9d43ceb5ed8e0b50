package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/BriefMPI/internal/config"
	"github.com/MikeSquared-Agency/BriefMPI/internal/events"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

type mockEvents struct {
	mock.Mock
}

func (m *mockEvents) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

func (m *mockEvents) Close() {}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			MaxUploadBytes:     1 << 20,
			RateLimitPerMinute: 1000,
		},
		Batch:   config.BatchConfig{MaxRows: 100},
		Report:  config.ReportConfig{Title: "Relatório Brief-MPI"},
		Logging: config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func setupTestRouter(t *testing.T, cfg *config.Config) (http.Handler, *mockEvents) {
	t.Helper()
	ev := &mockEvents{}
	ev.On("Publish", mock.AnythingOfType("string"), mock.Anything).Return(nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(ev, cfg, logger), ev
}

func do(router http.Handler, method, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const independentAssessment = `{
	"patient": "Maria",
	"adl": ["Sim", "Sim", "Sim"],
	"iadl": ["Sim", "Sim", "Sim"],
	"mobility": ["Sim", "Sim", "Sim"],
	"cognitive": ["Sim", "Sim", "Sim"],
	"nutritional": ["Não", "Não", "Não"],
	"comorbidity": 0,
	"drugs": 0,
	"cohabitation": "Com família"
}`

const impairedAssessment = `{
	"adl": ["Não", "Não", "Não"],
	"iadl": ["Não", "Não", "Não"],
	"mobility": ["Não", "Não", "Não"],
	"cognitive": ["Não", "Não", "Não"],
	"nutritional": ["Sim", "Sim", "Sim"],
	"comorbidity": 3,
	"drugs": 7,
	"cohabitation": "Sozinho"
}`

func TestListDomains(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "GET", "/api/v1/domains", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var catalog []scoring.DomainInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&catalog))
	assert.Len(t, catalog, scoring.DomainCount)
	assert.Equal(t, scoring.DomainADL, catalog[0].Domain)
}

func TestEncodeDomain(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/domains/adl/encode", "application/json",
		strings.NewReader(`{"items":["Sim","Sim","Não"]}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp encodeResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, scoring.DomainADL, resp.Domain)
	assert.Equal(t, 0.5, resp.Value)
}

func TestEncodeUnknownDomain(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/domains/sleep/encode", "application/json", strings.NewReader(`{}`))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAssessment(t *testing.T) {
	router, ev := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(independentAssessment))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp scoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0.0, resp.Result.MPI)
	assert.Equal(t, scoring.TierMild, resp.Result.Tier)
	assert.Equal(t, "Mild (MPI 1)", resp.Result.Risk)
	assert.Len(t, resp.Domains, scoring.DomainCount)

	ev.AssertCalled(t, "Publish", events.SubjectAssessmentScored(resp.ID.String()), mock.AnythingOfType("events.AssessmentScoredEvent"))
}

func TestCreateAssessmentAllImpaired(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(impairedAssessment))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp scoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1.0, resp.Result.MPI)
	assert.Equal(t, "High (MPI 3)", resp.Result.Risk)
}

func TestCreateAssessmentValidation(t *testing.T) {
	router, ev := setupTestRouter(t, testConfig())

	body := strings.Replace(impairedAssessment, `"drugs": 7`, `"drugs": -1`, 1)
	body = strings.Replace(body, `"Sozinho"`, `"amigos"`, 1)
	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(body))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Details, 2)
	assert.Equal(t, scoring.DomainDrugs, resp.Details[0].Domain)
	assert.Equal(t, scoring.DomainCohabitation, resp.Details[1].Domain)
	ev.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCreateAssessmentPatientTooLong(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	body := strings.Replace(independentAssessment, `"Maria"`, `"`+strings.Repeat("x", 201)+`"`, 1)
	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(body))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "patient", resp.Details[0].Column)
}

func TestCreateAssessmentBadJSON(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(`{"adl":`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(`{"adls":["Sim"]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAssessmentBodyTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 64
	router, _ := setupTestRouter(t, cfg)

	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(independentAssessment))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAggregateScoreMap(t *testing.T) {
	router, ev := setupTestRouter(t, testConfig())

	body := `{"ADL":0,"IADL":0.5,"Mobility":1,"Cognitive":0.5,"Nutritional":0,"Comorbidity":1,"Drugs":0.5,"Cohabitation":0}`
	w := do(router, "POST", "/api/v1/aggregate", "application/json", strings.NewReader(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp scoreResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 0.44, resp.Result.MPI)
	assert.Equal(t, scoring.TierModerate, resp.Result.Tier)
	ev.AssertCalled(t, "Publish", events.SubjectAggregateScored(resp.ID.String()), mock.Anything)
}

func TestAggregateRejectsIncompleteMap(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/aggregate", "application/json", strings.NewReader(`{"ADL":0,"IADL":0.25}`))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Details)
}

func TestExportAssessmentCSV(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/assessments/export?format=csv", "application/json", strings.NewReader(impairedAssessment))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mpi_report.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "ADL,IADL,Mobility,Cognitive,Nutritional,Comorbidity,Drugs,Cohabitation,MPI,risk", lines[0])
	assert.True(t, strings.HasSuffix(lines[1], ",1.00,High (MPI 3)"), lines[1])
}

func TestExportAssessmentPDF(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/assessments/export", "application/json", strings.NewReader(independentAssessment))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mpi_report.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestExportAssessmentUnknownFormat(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/assessments/export?format=docx", "application/json", strings.NewReader(independentAssessment))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

const batchCSV = "patient,ADL,IADL,Mobility,Cognitive,Nutritional,Comorbidity,Drugs,Cohabitation\n" +
	"a,0,0.5,1,0.5,0,1,0.5,0\n" +
	"b,0,abc,0,0,0,0,0,0\n" +
	"c,1,1,1,1,1,1,1,1\n"

func TestBatchRawCSV(t *testing.T) {
	router, ev := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/batch", "text/csv", strings.NewReader(batchCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp batchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Rows, 3)
	assert.Equal(t, 2, resp.Scored)
	assert.Equal(t, 1, resp.Failed)
	assert.Equal(t, 0.44, resp.Rows[0].Result.MPI)
	assert.Nil(t, resp.Rows[1].Result)
	assert.Equal(t, "IADL", resp.Rows[1].Issues[0].Column)
	assert.Equal(t, scoring.TierHigh, resp.Rows[2].Result.Tier)

	ev.AssertCalled(t, "Publish", events.SubjectBatchScored(resp.ID.String()), mock.AnythingOfType("events.BatchScoredEvent"))
}

func TestBatchMissingColumn(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	body := "ADL,IADL,Mobility,Cognitive,Nutritional,Comorbidity,Cohabitation\n0,0,0,0,0,0,0\n"
	w := do(router, "POST", "/api/v1/batch", "text/csv", strings.NewReader(body))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "Drugs", resp.Details[0].Column)
}

func TestBatchEmptyBody(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/batch", "text/csv", strings.NewReader(""))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBatchTooManyRows(t *testing.T) {
	cfg := testConfig()
	cfg.Batch.MaxRows = 2
	router, _ := setupTestRouter(t, cfg)

	w := do(router, "POST", "/api/v1/batch", "text/csv", strings.NewReader(batchCSV))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func multipartBody(t *testing.T, filename string, content []byte) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func TestBatchMultipartUpload(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	ct, body := multipartBody(t, "pacientes.csv", []byte(batchCSV))
	w := do(router, "POST", "/api/v1/batch", ct, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp batchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Rows, 3)
}

func TestBatchMultipartUnsupportedExtension(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	ct, body := multipartBody(t, "pacientes.txt", []byte(batchCSV))
	w := do(router, "POST", "/api/v1/batch", ct, body)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestBatchMultipartMissingFile(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("other", "x"))
	require.NoError(t, mw.Close())

	w := do(router, "POST", "/api/v1/batch", mw.FormDataContentType(), &buf)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchExportCSV(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/batch/export", "text/csv", strings.NewReader(batchCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mpi_results.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], ",MPI,risk,error"), lines[0])
	assert.Contains(t, lines[1], "0.44,Moderate (MPI 2),")
	assert.Contains(t, lines[2], "IADL")
}

func TestBatchExportXLSX(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/batch/export?format=xlsx", "text/csv", strings.NewReader(batchCSV))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "mpi_results.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "MPI", rows[0][9])
}

func TestBatchExportUnknownFormat(t *testing.T) {
	router, _ := setupTestRouter(t, testConfig())

	w := do(router, "POST", "/api/v1/batch/export?format=pdf", "text/csv", strings.NewReader(batchCSV))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRouterWithoutEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(nil, testConfig(), logger)

	w := do(router, "POST", "/api/v1/assessments", "application/json", strings.NewReader(independentAssessment))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsRouterHealth(t *testing.T) {
	router := NewMetricsRouter()

	w := do(router, "GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(router, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
