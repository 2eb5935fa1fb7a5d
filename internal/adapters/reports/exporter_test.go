package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ipstudio/internal/blob"
	"ipstudio/internal/infra/persistence/memory"
	"ipstudio/pkg/domain"
)

func seedReport(t *testing.T) (*memory.Store, domain.WeeklyReport) {
	t.Helper()
	store := memory.NewStore(nil)
	var report domain.WeeklyReport
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		org, err := tx.CreateOrg(domain.Org{Name: "工作室"})
		if err != nil {
			return err
		}
		persona, err := tx.CreatePersona(domain.Persona{OrgID: org.ID, Name: "转行教练"})
		if err != nil {
			return err
		}
		report, err = tx.CreateWeeklyReport(domain.WeeklyReport{
			OrgID:      org.ID,
			PersonaID:  persona.ID,
			WeekNumber: 12,
			TopContent: []domain.ReportContentStat{
				{ContentID: "c1", Title: "转行第一课", Platform: domain.PlatformDouyin, Views: 900, Leads: 3},
				{ContentID: "c2", Title: "简历改造", Platform: domain.PlatformXiaohongshu, Views: 400, Leads: 1},
			},
			Funnel:     map[domain.LeadStatus]int{domain.LeadNew: 4, domain.LeadWon: 1},
			NextTopics: []string{"面试复盘"},
		})
		return err
	})
	if err != nil {
		t.Fatalf("seed report: %v", err)
	}
	return store, report
}

func TestExportJSONAndCSV(t *testing.T) {
	store, report := seedReport(t)
	blobs := blob.NewMemory()
	exp := NewExporter(store, blobs)
	ctx := context.Background()

	info, err := exp.Export(ctx, report.ID, FormatJSON)
	if err != nil {
		t.Fatalf("export json: %v", err)
	}
	if info.Key != ExportKey(report, FormatJSON) || !strings.HasSuffix(info.Key, ".json") {
		t.Fatalf("json key = %q", info.Key)
	}
	_, body, err := blobs.Get(ctx, info.Key)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	raw, _ := io.ReadAll(body)
	_ = body.Close()
	var decoded domain.WeeklyReport
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("decode json export: %v", err)
	}
	if decoded.ID != report.ID || len(decoded.TopContent) != 2 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}

	csvInfo, err := exp.Export(ctx, report.ID, FormatCSV)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}
	_, body, err = blobs.Get(ctx, csvInfo.Key)
	if err != nil {
		t.Fatalf("read csv export: %v", err)
	}
	rows, err := csv.NewReader(body).ReadAll()
	_ = body.Close()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	// header + 2 content rows + 2 funnel rows + 1 topic row
	if len(rows) != 6 {
		t.Fatalf("csv rows = %d, want 6", len(rows))
	}
	if rows[1][0] != "top_content" || rows[1][1] != "转行第一课" {
		t.Fatalf("first content row = %v", rows[1])
	}
	if rows[3][0] != "funnel" {
		t.Fatalf("funnel row = %v", rows[3])
	}
}

func TestExportUnknownReport(t *testing.T) {
	store, _ := seedReport(t)
	exp := NewExporter(store, blob.NewMemory())
	if _, err := exp.Export(context.Background(), "missing", FormatJSON); err == nil {
		t.Fatal("expected error for unknown report")
	}
}

func TestExportIsCreateOnly(t *testing.T) {
	store, report := seedReport(t)
	exp := NewExporter(store, blob.NewMemory())
	ctx := context.Background()
	if _, err := exp.Export(ctx, report.ID, FormatJSON); err != nil {
		t.Fatalf("first export: %v", err)
	}
	if _, err := exp.Export(ctx, report.ID, FormatJSON); err == nil {
		t.Fatal("expected second export of same key to fail")
	}
}

func TestHandlerReportFlow(t *testing.T) {
	store, report := seedReport(t)
	exp := NewExporter(store, blob.NewMemory())
	h := NewHandler(store, exp)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Reports []domain.WeeklyReport `json:"reports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Reports) != 1 || listed.Reports[0].ID != report.ID {
		t.Fatalf("listed = %+v", listed.Reports)
	}

	exportBody, _ := json.Marshal(map[string]string{"report_id": report.ID, "format": "csv"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/export", bytes.NewReader(exportBody)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("export status = %d (body %s)", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/exports?persona_id="+report.PersonaID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list exports status = %d", rec.Code)
	}
	var exports struct {
		Exports []blob.Info `json:"exports"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &exports); err != nil {
		t.Fatalf("decode exports: %v", err)
	}
	if len(exports.Exports) != 1 {
		t.Fatalf("exports = %+v", exports.Exports)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/exports/download?key="+exports.Exports[0].Key, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("download status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "top_content") {
		t.Fatalf("download body = %s", rec.Body.String())
	}
}

func TestHandlerExportValidation(t *testing.T) {
	store, report := seedReport(t)
	h := NewHandler(store, NewExporter(store, blob.NewMemory()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/export", strings.NewReader(`{"format":"csv"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing report_id status = %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]string{"report_id": report.ID, "format": "xml"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reports/export", bytes.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad format status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reports/exports/download?key=../etc/passwd", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("traversal key status = %d", rec.Code)
	}
}
