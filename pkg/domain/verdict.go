package domain

import "time"

// Verdict is the outcome grade of a QA evaluation. Verdicts form a total
// order pass < fix < block; evaluation folds findings through CombineVerdict
// so escalation can never be undone by a later rule.
type Verdict string

// QA verdicts in ascending severity.
const (
	VerdictPass  Verdict = "pass"
	VerdictFix   Verdict = "fix"
	VerdictBlock Verdict = "block"
)

var verdictRank = map[Verdict]int{
	VerdictPass:  0,
	VerdictFix:   1,
	VerdictBlock: 2,
}

// Rank returns the lattice position of the verdict. Unknown verdicts rank
// below pass so they can never mask a real finding.
func (v Verdict) Rank() int {
	if r, ok := verdictRank[v]; ok {
		return r
	}
	return -1
}

// AtLeast reports whether v is as severe as other.
func (v Verdict) AtLeast(other Verdict) bool {
	return v.Rank() >= other.Rank()
}

// CombineVerdict returns the more severe of two verdicts.
func CombineVerdict(a, b Verdict) Verdict {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// QABaselineScore is the starting score before penalties are applied.
const QABaselineScore = 90

// QAFinding is the outcome of one QA rule evaluation against one content item.
type QAFinding struct {
	Rule       string  `json:"rule"`
	Verdict    Verdict `json:"verdict"`
	Penalty    int     `json:"penalty"`
	Issue      string  `json:"issue"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// QAResult aggregates QA findings for a content item.
type QAResult struct {
	Verdict     Verdict   `json:"verdict"`
	Score       int       `json:"score"`
	Issues      []string  `json:"issues"`
	Suggestions []string  `json:"suggestions"`
	CheckedAt   time.Time `json:"checked_at"`
}

// FoldQAFindings assembles a QAResult from independently evaluated findings.
// Score is QABaselineScore minus the summed penalties, floored at zero; the
// verdict is the lattice maximum over all findings.
func FoldQAFindings(findings []QAFinding, checkedAt time.Time) QAResult {
	result := QAResult{
		Verdict:   VerdictPass,
		Score:     QABaselineScore,
		CheckedAt: checkedAt,
	}
	for _, f := range findings {
		result.Verdict = CombineVerdict(result.Verdict, f.Verdict)
		result.Score -= f.Penalty
		if f.Issue != "" {
			result.Issues = append(result.Issues, f.Issue)
		}
		if f.Suggestion != "" {
			result.Suggestions = append(result.Suggestions, f.Suggestion)
		}
	}
	if result.Score < 0 {
		result.Score = 0
	}
	return result
}
