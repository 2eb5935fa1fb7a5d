package domain

import (
	"testing"
	"time"
)

func TestCombineVerdictLattice(t *testing.T) {
	cases := []struct {
		a, b, want Verdict
	}{
		{VerdictPass, VerdictPass, VerdictPass},
		{VerdictPass, VerdictFix, VerdictFix},
		{VerdictFix, VerdictPass, VerdictFix},
		{VerdictFix, VerdictBlock, VerdictBlock},
		{VerdictBlock, VerdictFix, VerdictBlock},
		{VerdictBlock, VerdictPass, VerdictBlock},
		{VerdictPass, Verdict("bogus"), VerdictPass},
	}
	for _, c := range cases {
		if got := CombineVerdict(c.a, c.b); got != c.want {
			t.Fatalf("CombineVerdict(%s, %s) = %s, want %s", c.a, c.b, got, c.want)
		}
	}
}

func TestVerdictAtLeast(t *testing.T) {
	if !VerdictBlock.AtLeast(VerdictFix) {
		t.Fatal("block should be at least fix")
	}
	if VerdictPass.AtLeast(VerdictFix) {
		t.Fatal("pass should not be at least fix")
	}
	if Verdict("bogus").AtLeast(VerdictPass) {
		t.Fatal("unknown verdict should rank below pass")
	}
}

func TestFoldQAFindings(t *testing.T) {
	checked := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	empty := FoldQAFindings(nil, checked)
	if empty.Verdict != VerdictPass || empty.Score != QABaselineScore {
		t.Fatalf("empty fold = %+v", empty)
	}
	if !empty.CheckedAt.Equal(checked) {
		t.Fatalf("checkedAt = %v", empty.CheckedAt)
	}

	findings := []QAFinding{
		{Rule: "a", Verdict: VerdictFix, Penalty: 15, Issue: "no evidence", Suggestion: "link evidence"},
		{Rule: "b", Verdict: VerdictBlock, Penalty: 30, Issue: "lead capture"},
	}
	folded := FoldQAFindings(findings, checked)
	if folded.Verdict != VerdictBlock {
		t.Fatalf("verdict = %s, want block", folded.Verdict)
	}
	if folded.Score != 45 {
		t.Fatalf("score = %d, want 45", folded.Score)
	}
	if len(folded.Issues) != 2 || len(folded.Suggestions) != 1 {
		t.Fatalf("issues/suggestions = %v / %v", folded.Issues, folded.Suggestions)
	}
}

func TestFoldQAFindingsOrderIndependent(t *testing.T) {
	checked := time.Now().UTC()
	findings := []QAFinding{
		{Rule: "a", Verdict: VerdictBlock, Penalty: 30},
		{Rule: "b", Verdict: VerdictFix, Penalty: 10},
		{Rule: "c", Verdict: VerdictFix, Penalty: 15},
	}
	reversed := []QAFinding{findings[2], findings[1], findings[0]}

	forward := FoldQAFindings(findings, checked)
	backward := FoldQAFindings(reversed, checked)
	if forward.Verdict != backward.Verdict || forward.Score != backward.Score {
		t.Fatalf("fold depends on order: %+v vs %+v", forward, backward)
	}
}

func TestFoldQAFindingsScoreFloor(t *testing.T) {
	findings := []QAFinding{
		{Verdict: VerdictFix, Penalty: 50},
		{Verdict: VerdictFix, Penalty: 60},
	}
	folded := FoldQAFindings(findings, time.Now().UTC())
	if folded.Score != 0 {
		t.Fatalf("score = %d, want floor 0", folded.Score)
	}
}
