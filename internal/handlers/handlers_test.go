package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/findosh/brandsales/internal/config"
	"github.com/findosh/brandsales/internal/metrics"
	"github.com/findosh/brandsales/internal/models"
	"github.com/findosh/brandsales/internal/services/analytics"
	"github.com/findosh/brandsales/internal/services/auth"
	"github.com/findosh/brandsales/internal/services/ingest"
	"github.com/findosh/brandsales/internal/storage"
)

const sampleCSV = "sale_date,selling_price,brand,type,material,rank,model_number,adjusted_exp_sale_price,appraised_price\n" +
	"2024/01/10,100000,CHANEL,バッグ,キャビアスキン,A,A01112,90000,80000\n" +
	"2024/02/10,200000,CHANEL,バッグ,ラムスキン,S,A01113,210000,150000\n" +
	"2024/02/11,50000,HERMES,財布,トゴ,B,H001,45000,40000\n"

// brokenStore fails every query
type brokenStore struct {
	*storage.MemoryStore
}

// flakyStore fails the upsert calls whose 1-based index is listed
type flakyStore struct {
	*storage.MemoryStore
	calls  int
	failOn map[int]bool
}

func (f *flakyStore) UpsertSales(ctx context.Context, batch []models.SalesRecord) error {
	f.calls++
	if f.failOn[f.calls] {
		return errors.New("connection reset")
	}
	return f.MemoryStore.UpsertSales(ctx, batch)
}

func (b *brokenStore) FindSales(ctx context.Context, filter models.SalesFilter) ([]models.SalesRecord, error) {
	return nil, errors.New("connection refused")
}

func testConfig() *config.Config {
	return &config.Config{
		DashboardPassword: "pw",
		SecretKey:         "k",
		SessionDuration:   time.Hour,
		CSVMaxRows:        5,
		UploadMaxBytes:    1 << 20,
	}
}

func newTestHandler(t *testing.T, store storage.Store, opts ...ingest.Option) *Handler {
	t.Helper()
	cfg := testConfig()
	authService, err := auth.NewService(cfg)
	if err != nil {
		t.Fatalf("Failed to create auth service: %v", err)
	}
	reg := metrics.NewRegistry()
	opts = append(opts, ingest.WithMetrics(reg))
	ingestService := ingest.NewService(store, store, cfg.CSVMaxRows, opts...)
	return New(cfg, store, ingestService, analytics.NewService(), authService, reg)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	part.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestIngest(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		errorMsg string
	}{
		{"success", "chanel.csv", sampleCSV, http.StatusOK, ""},
		{"upper-case extension", "CHANEL.CSV", sampleCSV, http.StatusOK, ""},
		{"non csv", "chanel.xlsx", sampleCSV, http.StatusBadRequest, "Only CSV files are allowed"},
		{"csv in the middle", "chanel.csv.xlsx", sampleCSV, http.StatusBadRequest, "Only CSV files are allowed"},
		{"all rows invalid", "bad.csv", "sale_date,selling_price\n2024/13/01,100\n", http.StatusBadRequest, "ValidationFailed"},
		{"too many rows", "big.csv", "sale_date,selling_price\n" + strings.Repeat("2024/01/01,1\n", 6), http.StatusRequestEntityTooLarge, "CSV file exceeds maximum"},
		{"malformed", "broken.csv", "sale_date,selling_price\n2024/01/01,10\"0\n", http.StatusBadRequest, "CSV parse error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(t, storage.NewMemoryStore())
			rec := httptest.NewRecorder()

			h.Ingest(rec, uploadRequest(t, tt.filename, tt.content))

			if rec.Code != tt.status {
				t.Fatalf("Expected status %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			body := decode(t, rec)
			if tt.errorMsg == "" {
				if body["ok"] != true || body["upserted"] != float64(3) {
					t.Errorf("Unexpected success body: %v", body)
				}
				return
			}
			msg, _ := body["error"].(string)
			if !strings.HasPrefix(msg, tt.errorMsg) {
				t.Errorf("Expected error starting with %q, got %q", tt.errorMsg, msg)
			}
		})
	}
}

func TestIngest_ValidationDetails(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	rec := httptest.NewRecorder()

	h.Ingest(rec, uploadRequest(t, "bad.csv", "sale_date,selling_price\n2024/01/01,-5\n"))

	body := decode(t, rec)
	details, ok := body["details"].([]interface{})
	if !ok || len(details) != 1 {
		t.Fatalf("Expected one failure detail, got %v", body["details"])
	}
	first := details[0].(map[string]interface{})
	if first["row"] != float64(1) {
		t.Errorf("Expected row 1, got %v", first["row"])
	}
}

func TestIngest_PartialFailure(t *testing.T) {
	store := &flakyStore{MemoryStore: storage.NewMemoryStore(), failOn: map[int]bool{2: true}}
	h := newTestHandler(t, store, ingest.WithBatchSize(1))
	rec := httptest.NewRecorder()

	h.Ingest(rec, uploadRequest(t, "sales.csv", sampleCSV))

	if rec.Code != http.StatusMultiStatus {
		t.Fatalf("Expected 207, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)

	tests := []struct {
		key  string
		want interface{}
	}{
		{"ok", false},
		{"error", "PartialFailure"},
		{"processed", float64(3)},
		{"upserted", float64(2)},
		{"failed", float64(0)},
	}
	for _, tt := range tests {
		if body[tt.key] != tt.want {
			t.Errorf("Expected %s = %v, got %v", tt.key, tt.want, body[tt.key])
		}
	}

	batchErrors, ok := body["batchErrors"].([]interface{})
	if !ok || len(batchErrors) != 1 {
		t.Fatalf("Expected one batch error, got %v", body["batchErrors"])
	}
	first := batchErrors[0].(map[string]interface{})
	if first["batch"] != float64(2) || first["error"] != "connection reset" {
		t.Errorf("Unexpected batch error: %v", first)
	}
	if store.Len() != 2 {
		t.Errorf("Expected 2 stored rows, got %d", store.Len())
	}
}

func TestIngest_UploadTooLarge(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	h.cfg.UploadMaxBytes = 1024
	rec := httptest.NewRecorder()

	content := "sale_date,selling_price\n" + strings.Repeat("2024/01/01,1\n", 400)
	h.Ingest(rec, uploadRequest(t, "big.csv", content))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d: %s", rec.Code, rec.Body.String())
	}
	if msg := decode(t, rec)["error"]; msg != "Upload exceeds maximum size" {
		t.Errorf("Unexpected error message: %v", msg)
	}
}

func TestIngestLogs_LimitIsCapped(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	tests := []struct {
		query  string
		status int
	}{
		{"limit=4611686018427387904", http.StatusOK},
		{"limit=1000000000", http.StatusOK},
		{"limit=99999999999999999999999", http.StatusBadRequest},
		{"limit=-1", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.IngestLogs(rec, httptest.NewRequest(http.MethodGet, "/api/ingest-logs?"+tt.query, nil))

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d", tt.status, rec.Code)
			}
			if tt.status == http.StatusOK {
				if data := decode(t, rec)["data"].([]interface{}); len(data) != 1 {
					t.Errorf("Expected 1 entry, got %d", len(data))
				}
			}
		})
	}
}

func TestAPISales_LimitIsCapped(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	rec := httptest.NewRecorder()
	h.APISales(rec, httptest.NewRequest(http.MethodGet, "/api/sales?limit=4611686018427387904", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	body := decode(t, rec)
	if n := len(body["data"].([]interface{})); n != 3 {
		t.Errorf("Expected 3 rows, got %d", n)
	}
	page := body["pagination"].(map[string]interface{})
	if page["limit"] != float64(models.MaxPageSize) {
		t.Errorf("Expected limit capped at %d, got %v", models.MaxPageSize, page["limit"])
	}
}

func TestIngest_MissingFile(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	rec := httptest.NewRecorder()

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", strings.NewReader("nothing"))
	h.Ingest(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestIngest_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	rec := httptest.NewRecorder()

	h.Ingest(rec, httptest.NewRequest(http.MethodGet, "/api/ingest", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func seed(t *testing.T, h *Handler) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Ingest(rec, uploadRequest(t, "sales.csv", sampleCSV))
	if rec.Code != http.StatusOK {
		t.Fatalf("Seeding failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestAPIAnalytics(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	rec := httptest.NewRecorder()
	h.APIAnalytics(rec, httptest.NewRequest(http.MethodGet, "/api/analytics?brand=chanel", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body["totalCount"] != float64(2) {
		t.Errorf("Expected totalCount 2, got %v", body["totalCount"])
	}
	if body["gmv"] != float64(300000) {
		t.Errorf("Expected gmv 300000, got %v", body["gmv"])
	}
}

func TestAPIAnalytics_NoData(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	rec := httptest.NewRecorder()
	h.APIAnalytics(rec, httptest.NewRequest(http.MethodGet, "/api/analytics?brand=gucci&startDate=2024/01/01", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}
	body := decode(t, rec)
	if body["error"] != "No data found" {
		t.Errorf("Unexpected error: %v", body["error"])
	}
	filters := body["filters"].(map[string]interface{})
	if filters["brand"] != "GUCCI" || filters["startDate"] != "2024-01-01" {
		t.Errorf("Expected applied filters echoed, got %v", filters)
	}
}

func TestAPIAnalytics_StoreError(t *testing.T) {
	h := newTestHandler(t, &brokenStore{storage.NewMemoryStore()})

	rec := httptest.NewRecorder()
	h.APIAnalytics(rec, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestAPIMetrics_EmptyIsZeroed(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())

	rec := httptest.NewRecorder()
	h.APIMetrics(rec, httptest.NewRequest(http.MethodGet, "/api/metrics?brand=chanel", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := decode(t, rec)["data"].(map[string]interface{})
	if data["totalCount"] != float64(0) {
		t.Errorf("Expected zero count, got %v", data["totalCount"])
	}
	if leaders, ok := data["marginLeaders"].([]interface{}); !ok || len(leaders) != 0 {
		t.Errorf("Expected empty leaders array, got %v", data["marginLeaders"])
	}
}

func TestAPISales(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	rec := httptest.NewRecorder()
	h.APISales(rec, httptest.NewRequest(http.MethodGet, "/api/sales?brand=chanel&limit=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	data := decode(t, rec)["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(data))
	}
	if got := data[0].(map[string]interface{})["sale_date"]; got != "2024-02-10" {
		t.Errorf("Expected newest sale first, got %v", got)
	}

	rec = httptest.NewRecorder()
	h.APISales(rec, httptest.NewRequest(http.MethodGet, "/api/sales?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid limit, got %d", rec.Code)
	}
}

func TestAPIBrands(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	rec := httptest.NewRecorder()
	h.APIBrands(rec, httptest.NewRequest(http.MethodGet, "/api/brands", nil))
	data := decode(t, rec)["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("Expected 2 brands, got %d", len(data))
	}
	if slug := data[0].(map[string]interface{})["slug"]; slug != "chanel" {
		t.Errorf("Expected slug chanel, got %v", slug)
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/api/brands/chanel", http.StatusOK},
		{"/api/brands/hermes", http.StatusOK},
		{"/api/brands/gucci", http.StatusNotFound},
		{"/api/brands/", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.APIBrand(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, rec.Code)
			}
		})
	}
}

func TestIngestLogs(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	seed(t, h)

	rec := httptest.NewRecorder()
	h.IngestLogs(rec, httptest.NewRequest(http.MethodGet, "/api/ingest-logs", nil))

	data := decode(t, rec)["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("Expected 1 audit entry, got %d", len(data))
	}
	if name := data[0].(map[string]interface{})["filename"]; name != "sales.csv" {
		t.Errorf("Expected filename sales.csv, got %v", name)
	}
}

func TestLoginLogout(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	h.Login(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("password=pw"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.Login(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value == "" {
		t.Fatalf("Expected session cookie, got %v", cookies)
	}

	rec = httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/logout", nil))
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Errorf("Expected cleared cookie, got %v", cookies)
	}
}

func TestDownloadTemplate(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	rec := httptest.NewRecorder()
	h.DownloadTemplate(rec, httptest.NewRequest(http.MethodGet, "/api/template.csv", nil))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "sale_date,selling_price") {
		t.Errorf("Unexpected header %q", lines[0])
	}
}

func TestTemplateRoundTripsThroughIngest(t *testing.T) {
	h := newTestHandler(t, storage.NewMemoryStore())
	tmpl := httptest.NewRecorder()
	h.DownloadTemplate(tmpl, httptest.NewRequest(http.MethodGet, "/api/template.csv", nil))

	rec := httptest.NewRecorder()
	h.Ingest(rec, uploadRequest(t, "template.csv", tmpl.Body.String()))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected template to ingest cleanly, got %d: %s", rec.Code, rec.Body.String())
	}
}
