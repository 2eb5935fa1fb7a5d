package core

import (
	"context"
	"errors"
	"testing"

	"ipstudio/pkg/domain"
)

func TestCrudFlow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	org, persona := seedWorkspace(t, svc)

	evidence, _, err := svc.CreateEvidence(ctx, Evidence{PersonaID: persona.ID, Title: "学员案例", Kind: domain.EvidenceCaseStudy})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.EvidenceIDs = []string{evidence.ID}
	})

	updated, _, err := svc.UpdateContent(ctx, content.ID, func(c *Content) error {
		c.Title = "三个月转行的完整路线（更新版）"
		return nil
	})
	if err != nil {
		t.Fatalf("update content: %v", err)
	}
	if updated.Title == content.Title {
		t.Fatal("title not updated")
	}

	lead, _, err := svc.CreateLead(ctx, Lead{PersonaID: persona.ID, OrgID: org.ID, Name: "小林", Status: domain.LeadNew})
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	if _, _, err := svc.SetLeadStatus(ctx, lead.ID, domain.LeadContacted); err != nil {
		t.Fatalf("set lead status: %v", err)
	}
	got, ok := svc.Store().GetLead(lead.ID)
	if !ok || got.Status != domain.LeadContacted {
		t.Fatalf("lead = %+v", got)
	}

	if _, err := svc.DeleteContent(ctx, content.ID); err != nil {
		t.Fatalf("delete content: %v", err)
	}
	if _, ok := svc.Store().GetContent(content.ID); ok {
		t.Fatal("content survived delete")
	}
}

func TestCreatePersonaUnknownOrg(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.CreatePersona(context.Background(), Persona{OrgID: "missing", Name: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestSetContentStatusRejectsInvalidStatus(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	content := seedContent(t, svc, persona.ID, nil)

	_, _, err := svc.SetContentStatus(context.Background(), content.ID, ContentStatus("limbo"))
	var viol RuleViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
	got, _ := svc.Store().GetContent(content.ID)
	if got.Status != StatusDraft {
		t.Fatalf("status = %s, want draft preserved", got.Status)
	}
}

func TestPublishGuardBlocksQABlockedContent(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusQAFix
		c.QAResult = &QAResult{Verdict: VerdictBlock, Score: 45}
	})

	ctx := context.Background()
	_, _, err := svc.SetContentStatus(ctx, content.ID, StatusPublished)
	var viol RuleViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("publish of blocked content: err = %v, want RuleViolationError", err)
	}

	// A direct update attempt is guarded the same way.
	_, _, err = svc.UpdateContent(ctx, content.ID, func(c *Content) error {
		c.Status = StatusPublished
		return nil
	})
	if !errors.As(err, &viol) {
		t.Fatalf("update to published: err = %v, want RuleViolationError", err)
	}
}

func TestPublishAllowedAfterPassVerdict(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusApproved
		c.QAResult = &QAResult{Verdict: VerdictPass, Score: 90}
	})

	if _, _, err := svc.SetContentStatus(context.Background(), content.ID, StatusPublished); err != nil {
		t.Fatalf("publish approved content: %v", err)
	}
	got, _ := svc.Store().GetContent(content.ID)
	if got.Status != StatusPublished {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestEpochExclusivityForcesHelper(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	ctx := context.Background()

	// Creating an epoch that claims currency directly leaves the persona
	// pointer behind, which the exclusivity rule blocks.
	_, _, err := svc.CreateEpoch(ctx, Epoch{PersonaID: persona.ID, Name: "抢跑", IsCurrent: true})
	var viol RuleViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("direct current epoch: err = %v, want RuleViolationError", err)
	}

	epoch, _, err := svc.CreateEpoch(ctx, Epoch{PersonaID: persona.ID, Name: "冷启动"})
	if err != nil {
		t.Fatalf("create epoch: %v", err)
	}
	if _, _, err := svc.SetCurrentEpoch(ctx, persona.ID, epoch.ID); err != nil {
		t.Fatalf("set current epoch: %v", err)
	}

	second, _, err := svc.CreateEpoch(ctx, Epoch{PersonaID: persona.ID, Name: "放大"})
	if err != nil {
		t.Fatalf("create second epoch: %v", err)
	}
	if _, _, err := svc.SetCurrentEpoch(ctx, persona.ID, second.ID); err != nil {
		t.Fatalf("switch current epoch: %v", err)
	}

	currents := 0
	for _, e := range svc.Store().ListEpochs() {
		if e.IsCurrent {
			currents++
		}
	}
	if currents != 1 {
		t.Fatalf("current epochs = %d, want 1", currents)
	}
	p, _ := svc.Store().GetPersona(persona.ID)
	if p.CurrentEpochID == nil || *p.CurrentEpochID != second.ID {
		t.Fatalf("pointer = %v, want %s", p.CurrentEpochID, second.ID)
	}
}

func TestUpdateContentMetricsMerges(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusPublished
	})
	ctx := context.Background()

	views := 3000
	if _, _, err := svc.UpdateContentMetrics(ctx, content.ID, MetricsPatch{Views: &views}); err != nil {
		t.Fatalf("patch views: %v", err)
	}
	leads := 7
	if _, _, err := svc.UpdateContentMetrics(ctx, content.ID, MetricsPatch{Leads: &leads}); err != nil {
		t.Fatalf("patch leads: %v", err)
	}

	got, _ := svc.Store().GetContent(content.ID)
	if got.Metrics == nil || got.Metrics.Views != 3000 || got.Metrics.Leads != 7 {
		t.Fatalf("metrics = %+v", got.Metrics)
	}
}

func TestBannedWordManagement(t *testing.T) {
	svc := newTestService(t)
	org, _ := seedWorkspace(t, svc)
	ctx := context.Background()

	if _, _, err := svc.PutSettings(ctx, Settings{OrgID: org.ID}); err != nil {
		t.Fatalf("put settings: %v", err)
	}
	if _, _, err := svc.AddBannedWord(ctx, org.ID, "最便宜"); err != nil {
		t.Fatalf("add banned word: %v", err)
	}
	if _, _, err := svc.AddBannedWord(ctx, org.ID, "第一名"); err != nil {
		t.Fatalf("add second word: %v", err)
	}
	if _, _, err := svc.RemoveBannedWord(ctx, org.ID, "最便宜"); err != nil {
		t.Fatalf("remove banned word: %v", err)
	}

	settings, ok := svc.Store().SettingsForOrg(org.ID)
	if !ok {
		t.Fatal("settings missing")
	}
	if len(settings.BannedWords) != 1 || settings.BannedWords[0] != "第一名" {
		t.Fatalf("banned words = %v", settings.BannedWords)
	}
}

func TestErrNotFoundMessage(t *testing.T) {
	err := ErrNotFound{Entity: EntityContent, ID: "c9"}
	if err.Error() != "content c9 not found" {
		t.Fatalf("message = %q", err.Error())
	}
}
