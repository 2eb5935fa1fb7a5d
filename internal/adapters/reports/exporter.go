// Package reports renders weekly reports to blob storage and serves them over
// HTTP. Exports are immutable: each report and format pair maps to one blob
// key, and re-exporting an existing key fails at the blob layer.
package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"ipstudio/internal/blob"
	"ipstudio/pkg/domain"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ParseFormat validates a format string, defaulting empty to JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) contentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json"
}

// ExportKey is the deterministic blob key for a report export.
func ExportKey(report domain.WeeklyReport, format Format) string {
	return fmt.Sprintf("reports/%s/week-%02d-%s.%s", report.PersonaID, report.WeekNumber, report.ID, format)
}

// Exporter renders weekly reports into a blob store.
type Exporter struct {
	store domain.PersistentStore
	blobs blob.Store
}

// NewExporter constructs a report exporter.
func NewExporter(store domain.PersistentStore, blobs blob.Store) *Exporter {
	return &Exporter{store: store, blobs: blobs}
}

func (e *Exporter) findReport(id string) (domain.WeeklyReport, bool) {
	for _, report := range e.store.ListWeeklyReports() {
		if report.ID == id {
			return report, true
		}
	}
	return domain.WeeklyReport{}, false
}

// Export renders the report in the requested format and writes it to blob
// storage, returning the stored object info.
func (e *Exporter) Export(ctx context.Context, reportID string, format Format) (blob.Info, error) {
	report, ok := e.findReport(reportID)
	if !ok {
		return blob.Info{}, fmt.Errorf("weekly report %s not found", reportID)
	}
	var body []byte
	var err error
	switch format {
	case FormatCSV:
		body, err = encodeCSV(report)
	default:
		body, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		return blob.Info{}, fmt.Errorf("encode report %s: %w", reportID, err)
	}
	return e.blobs.Put(ctx, ExportKey(report, format), bytes.NewReader(body), blob.PutOptions{
		ContentType: format.contentType(),
		Metadata: map[string]string{
			"report_id":  report.ID,
			"persona_id": report.PersonaID,
			"week":       strconv.Itoa(report.WeekNumber),
		},
	})
}

// ListExports returns stored exports, optionally narrowed to one persona.
func (e *Exporter) ListExports(ctx context.Context, personaID string) ([]blob.Info, error) {
	prefix := "reports/"
	if personaID != "" {
		prefix += personaID + "/"
	}
	return e.blobs.List(ctx, prefix)
}

// encodeCSV flattens a report into sections: top content rows, then the lead
// funnel, then next-week topics.
func encodeCSV(report domain.WeeklyReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{
		{"section", "field1", "field2", "field3", "field4"},
	}
	for _, stat := range report.TopContent {
		rows = append(rows, []string{"top_content", stat.Title, string(stat.Platform), strconv.Itoa(stat.Views), strconv.Itoa(stat.Leads)})
	}
	statuses := make([]string, 0, len(report.Funnel))
	for status := range report.Funnel {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		rows = append(rows, []string{"funnel", status, strconv.Itoa(report.Funnel[domain.LeadStatus(status)]), "", ""})
	}
	for _, topic := range report.NextTopics {
		rows = append(rows, []string{"next_topic", topic, "", "", ""})
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
