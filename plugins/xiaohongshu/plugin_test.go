package xiaohongshu

import (
	"context"
	"strings"
	"testing"

	"ipstudio/internal/core"
	"ipstudio/plugins/testhelper"
)

func TestRegisterContributions(t *testing.T) {
	registry := core.NewPluginRegistry()
	if err := New().Register(registry); err != nil {
		t.Fatalf("register: %v", err)
	}
	defaults, ok := registry.PublishDefaults()[core.PlatformXiaohongshu]
	if !ok {
		t.Fatal("missing publish defaults for xiaohongshu")
	}
	if defaults.Hashtag == "" || defaults.PinnedComment == "" || defaults.ABTestHint == "" {
		t.Fatalf("incomplete defaults: %+v", defaults)
	}
	rules := registry.QARules()[core.PlatformXiaohongshu]
	if len(rules) != 1 || rules[0].Name() != "xiaohongshu_lead_capture" {
		t.Fatalf("qa rules = %v", rules)
	}
}

func TestLeadCaptureRule(t *testing.T) {
	rule := leadCaptureRule{}

	clean := testhelper.QAInput(testhelper.ContentFixtureConfig{
		Platform:   core.PlatformXiaohongshu,
		Title:      "三招搞定简历排版",
		FullScript: "完整教程见正文。",
	})
	if findings := rule.Check(context.Background(), clean); len(findings) != 0 {
		t.Fatalf("clean text flagged: %+v", findings)
	}

	flagged := testhelper.QAInput(testhelper.ContentFixtureConfig{
		Platform:   core.PlatformXiaohongshu,
		Title:      "三招搞定简历排版",
		FullScript: "想要模板的加微信，也可以私信我。",
	})
	findings := rule.Check(context.Background(), flagged)
	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want one joint finding", findings)
	}
	f := findings[0]
	if f.Verdict != core.VerdictBlock || f.Penalty != 30 {
		t.Fatalf("finding = %+v, want block with penalty 30", f)
	}
	if !strings.Contains(f.Issue, "加微信") || !strings.Contains(f.Issue, "私信我") {
		t.Fatalf("issue should list matched phrases: %s", f.Issue)
	}
}

func TestLeadCaptureBlocksQA(t *testing.T) {
	svc := core.NewInMemoryService(core.DefaultRulesEngine())
	if _, err := svc.InstallPlugin(New()); err != nil {
		t.Fatalf("install plugin: %v", err)
	}
	ctx := context.Background()

	org, _, err := svc.CreateOrg(ctx, core.Org{Name: "studio"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	persona, _, err := svc.CreatePersona(ctx, core.Persona{OrgID: org.ID, Name: "coach"})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}
	content, _, err := svc.CreateContent(ctx, core.Content{
		PersonaID:  persona.ID,
		Platform:   core.PlatformXiaohongshu,
		Title:      "转行避坑指南",
		Status:     core.StatusQAPending,
		Script:     core.Script{FullScript: "想交流的加微信。"},
	})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}

	// No evidence and lead capture wording: 90 - 15 - 30 = 45, blocked.
	qa, _, err := svc.RunQA(ctx, content.ID)
	if err != nil {
		t.Fatalf("run qa: %v", err)
	}
	if qa.Verdict != core.VerdictBlock {
		t.Fatalf("verdict = %s, want block", qa.Verdict)
	}
	if qa.Score != 45 {
		t.Fatalf("score = %d, want 45", qa.Score)
	}

	stored, ok := svc.Store().GetContent(content.ID)
	if !ok {
		t.Fatal("content missing after qa")
	}
	if stored.Status != core.StatusQAFix {
		t.Fatalf("status = %s, want qa_fix", stored.Status)
	}
	if _, _, err := svc.SetContentStatus(ctx, content.ID, core.StatusPublished); err == nil {
		t.Fatal("expected publish of blocked content to fail")
	}
}
