package core

import (
	"context"
	"fmt"
	"testing"

	"ipstudio/pkg/domain"
)

func publishWithViews(t *testing.T, svc *Service, personaID, title string, week, views int) Content {
	t.Helper()
	ctx := context.Background()
	content := seedContent(t, svc, personaID, func(c *Content) {
		c.Title = title
		c.Status = StatusPublished
		c.WeekNumber = week
	})
	v := views
	if _, _, err := svc.UpdateContentMetrics(ctx, content.ID, MetricsPatch{Views: &v}); err != nil {
		t.Fatalf("patch metrics: %v", err)
	}
	return content
}

func TestGenerateWeeklyReport(t *testing.T) {
	svc := newTestService(t)
	org, persona := seedWorkspace(t, svc)
	ctx := context.Background()

	top := publishWithViews(t, svc, persona.ID, "爆款", 12, 5000)
	publishWithViews(t, svc, persona.ID, "普通", 12, 800)
	publishWithViews(t, svc, persona.ID, "别的周", 11, 9000)
	seedContent(t, svc, persona.ID, func(c *Content) {
		c.Title = "草稿不计入"
		c.WeekNumber = 12
	})

	for _, status := range []LeadStatus{domain.LeadNew, domain.LeadNew, domain.LeadWon} {
		if _, _, err := svc.CreateLead(ctx, Lead{PersonaID: persona.ID, OrgID: org.ID, Name: "线索", Status: status}); err != nil {
			t.Fatalf("create lead: %v", err)
		}
	}

	if _, _, err := svc.AddDraftSource(ctx, org.ID, "下周讲简历"); err != nil {
		t.Fatalf("add draft source: %v", err)
	}

	report, _, err := svc.GenerateWeeklyReport(ctx, persona.ID, 12)
	if err != nil {
		t.Fatalf("generate report: %v", err)
	}
	if report.WeekNumber != 12 || report.OrgID != org.ID {
		t.Fatalf("report = %+v", report)
	}
	if len(report.TopContent) != 2 || report.TopContent[0].ContentID != top.ID {
		t.Fatalf("top content = %+v", report.TopContent)
	}
	if report.TopContent[0].Views != 5000 {
		t.Fatalf("views = %d", report.TopContent[0].Views)
	}
	if report.Funnel[domain.LeadNew] != 2 || report.Funnel[domain.LeadWon] != 1 {
		t.Fatalf("funnel = %v", report.Funnel)
	}
	if len(report.NextTopics) != 1 || report.NextTopics[0] != "下周讲简历" {
		t.Fatalf("next topics = %v", report.NextTopics)
	}

	// The inspiration pool is consumed in the same transaction.
	settings, _ := svc.Store().SettingsForOrg(org.ID)
	if len(settings.DraftSources) != 0 {
		t.Fatalf("draft sources not cleared: %v", settings.DraftSources)
	}

	second, _, err := svc.GenerateWeeklyReport(ctx, persona.ID, 12)
	if err != nil {
		t.Fatalf("second report: %v", err)
	}
	if len(second.NextTopics) != 0 {
		t.Fatalf("second run reused topics: %v", second.NextTopics)
	}
}

func TestGenerateWeeklyReportTopContentLimit(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)

	for i := 0; i < reportTopContentLimit+2; i++ {
		publishWithViews(t, svc, persona.ID, fmt.Sprintf("第%d篇", i), 3, 100*(i+1))
	}
	report, _, err := svc.GenerateWeeklyReport(context.Background(), persona.ID, 3)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(report.TopContent) != reportTopContentLimit {
		t.Fatalf("top content = %d, want %d", len(report.TopContent), reportTopContentLimit)
	}
	for i := 1; i < len(report.TopContent); i++ {
		if report.TopContent[i-1].Views < report.TopContent[i].Views {
			t.Fatalf("top content not sorted by views: %+v", report.TopContent)
		}
	}
}

func TestGenerateWeeklyReportAllWeeks(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	publishWithViews(t, svc, persona.ID, "a", 1, 10)
	publishWithViews(t, svc, persona.ID, "b", 2, 20)

	report, _, err := svc.GenerateWeeklyReport(context.Background(), persona.ID, 0)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(report.TopContent) != 2 {
		t.Fatalf("week 0 should include every week: %+v", report.TopContent)
	}
}

func TestGenerateWeeklyReportUnknownPersona(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.GenerateWeeklyReport(context.Background(), "missing", 1); err == nil {
		t.Fatal("expected error")
	}
}
