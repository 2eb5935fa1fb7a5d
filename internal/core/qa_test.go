package core

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRunQACleanContentApproves(t *testing.T) {
	checked := time.Date(2025, 5, 12, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, fixedClock(checked))
	_, persona := seedWorkspace(t, svc)
	ctx := context.Background()

	evidence, _, err := svc.CreateEvidence(ctx, Evidence{PersonaID: persona.ID, Title: "学员案例"})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusQAPending
		c.EvidenceIDs = []string{evidence.ID}
		c.Script = Script{Hook: "转行不是赌运气", FullScript: "先盘点技能，再选赛道。"}
	})

	result, _, err := svc.RunQA(ctx, content.ID)
	if err != nil {
		t.Fatalf("run qa: %v", err)
	}
	if result.Verdict != VerdictPass || result.Score != 90 {
		t.Fatalf("result = %+v, want pass 90", result)
	}
	if len(result.Issues) != 0 {
		t.Fatalf("issues = %v", result.Issues)
	}
	if len(result.Suggestions) != 1 || !strings.Contains(result.Suggestions[0], "confirm data accuracy") {
		t.Fatalf("suggestions = %v, want the default reminder", result.Suggestions)
	}
	if !result.CheckedAt.Equal(checked) {
		t.Fatalf("checkedAt = %v", result.CheckedAt)
	}

	got, _ := svc.Store().GetContent(content.ID)
	if got.Status != StatusApproved {
		t.Fatalf("status = %s, want approved", got.Status)
	}
	if got.QAResult == nil || got.QAResult.Verdict != VerdictPass {
		t.Fatalf("persisted qa = %+v", got.QAResult)
	}
}

func TestRunQAPromiseLanguageSingleFinding(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	ctx := context.Background()

	evidence, _, err := svc.CreateEvidence(ctx, Evidence{PersonaID: persona.ID, Title: "数据"})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}
	// Multiple promise phrases still produce one finding and one penalty.
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusQAPending
		c.EvidenceIDs = []string{evidence.ID}
		c.Script = Script{FullScript: "跟着做保证上岸，绝对不会走弯路，100%见效。"}
	})

	result, _, err := svc.RunQA(ctx, content.ID)
	if err != nil {
		t.Fatalf("run qa: %v", err)
	}
	if result.Verdict != VerdictFix {
		t.Fatalf("verdict = %s, want fix", result.Verdict)
	}
	if result.Score != 80 {
		t.Fatalf("score = %d, want 80", result.Score)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("issues = %v, want single promise finding", result.Issues)
	}
	got, _ := svc.Store().GetContent(content.ID)
	if got.Status != StatusQAFix {
		t.Fatalf("status = %s, want qa_fix", got.Status)
	}
}

func TestRunQAMissingEvidencePenalty(t *testing.T) {
	svc := newTestService(t)
	_, persona := seedWorkspace(t, svc)
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusQAPending
	})

	result, _, err := svc.RunQA(context.Background(), content.ID)
	if err != nil {
		t.Fatalf("run qa: %v", err)
	}
	if result.Verdict != VerdictFix || result.Score != 75 {
		t.Fatalf("result = %+v, want fix 75", result)
	}
}

func TestRunQABannedWordsPenaltyPerWord(t *testing.T) {
	svc := newTestService(t)
	org, persona := seedWorkspace(t, svc)
	ctx := context.Background()

	if _, _, err := svc.PutSettings(ctx, Settings{OrgID: org.ID, BannedWords: []string{"最便宜", "第一名", "内幕"}}); err != nil {
		t.Fatalf("put settings: %v", err)
	}
	evidence, _, err := svc.CreateEvidence(ctx, Evidence{PersonaID: persona.ID, Title: "案例"})
	if err != nil {
		t.Fatalf("create evidence: %v", err)
	}
	content := seedContent(t, svc, persona.ID, func(c *Content) {
		c.Status = StatusQAPending
		c.EvidenceIDs = []string{evidence.ID}
		c.Script = Script{FullScript: "我们是行业第一名，价格最便宜。"}
	})

	result, _, err := svc.RunQA(ctx, content.ID)
	if err != nil {
		t.Fatalf("run qa: %v", err)
	}
	// Two matched words, one joint issue, ten points each.
	if result.Score != 70 {
		t.Fatalf("score = %d, want 70", result.Score)
	}
	if len(result.Issues) != 1 {
		t.Fatalf("issues = %v, want one joint issue", result.Issues)
	}
	if !strings.Contains(result.Issues[0], "最便宜") || !strings.Contains(result.Issues[0], "第一名") {
		t.Fatalf("issue should name matched words: %s", result.Issues[0])
	}
	if strings.Contains(result.Issues[0], "内幕") {
		t.Fatalf("unmatched word reported: %s", result.Issues[0])
	}
}

func TestRunQAUnknownContent(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.RunQA(context.Background(), "missing")
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
