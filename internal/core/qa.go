package core

import (
	"context"
	"fmt"
	"strings"

	"ipstudio/pkg/domain"
)

// PlatformAny registers a QA rule for every platform.
const PlatformAny Platform = ""

// QAInput carries everything a QA rule may inspect for one content item. Text
// is the title, hook, and full script joined with newlines; rules that scan
// wording operate on it so all of them see the same surface.
type QAInput struct {
	Content  Content
	Persona  Persona
	Settings Settings
	Text     string
}

// QARule evaluates one compliance aspect of a content item. Rules are
// independent: each returns its own findings and the evaluator folds them
// through the verdict lattice, so registration order never matters.
type QARule interface {
	Name() string
	Check(ctx context.Context, input QAInput) []QAFinding
}

func coreQARules() []QARule {
	return []QARule{
		evidenceRequiredRule{},
		bannedWordsRule{},
		promiseLanguageRule{},
	}
}

type evidenceRequiredRule struct{}

func (evidenceRequiredRule) Name() string { return "evidence_required" }

func (evidenceRequiredRule) Check(_ context.Context, input QAInput) []QAFinding {
	if len(input.Content.EvidenceIDs) > 0 {
		return nil
	}
	return []QAFinding{{
		Rule:       "evidence_required",
		Verdict:    VerdictFix,
		Penalty:    15,
		Issue:      "content has no linked evidence",
		Suggestion: "link at least one case study, testimonial, or data point to back the claims",
	}}
}

type bannedWordsRule struct{}

func (bannedWordsRule) Name() string { return "banned_words" }

func (bannedWordsRule) Check(_ context.Context, input QAInput) []QAFinding {
	var matched []string
	for _, word := range input.Settings.BannedWords {
		if word == "" {
			continue
		}
		if strings.Contains(input.Text, word) {
			matched = append(matched, word)
		}
	}
	if len(matched) == 0 {
		return nil
	}
	return []QAFinding{{
		Rule:       "banned_words",
		Verdict:    VerdictFix,
		Penalty:    10 * len(matched),
		Issue:      fmt.Sprintf("banned words present: %s", strings.Join(matched, ", ")),
		Suggestion: "rephrase or remove the flagged wording",
	}}
}

// promisePhrases is the fixed absolute-guarantee vocabulary. A single finding
// is produced no matter how many phrases match.
var promisePhrases = []string{"保证", "绝对", "100%", "稳赚", "包过"}

type promiseLanguageRule struct{}

func (promiseLanguageRule) Name() string { return "promise_language" }

func (promiseLanguageRule) Check(_ context.Context, input QAInput) []QAFinding {
	for _, phrase := range promisePhrases {
		if strings.Contains(input.Text, phrase) {
			return []QAFinding{{
				Rule:       "promise_language",
				Verdict:    VerdictFix,
				Penalty:    10,
				Issue:      "absolute guarantee language detected",
				Suggestion: "soften promises into verifiable, specific statements",
			}}
		}
	}
	return nil
}

// qaRulesFor returns the rules applicable to a platform: the platform-agnostic
// set plus any platform pack contributions.
func (s *Service) qaRulesFor(platform Platform) []QARule {
	rules := append([]QARule(nil), s.qaRules[PlatformAny]...)
	if platform != PlatformAny {
		rules = append(rules, s.qaRules[platform]...)
	}
	return rules
}

// qaText joins the scannable surfaces of a content item.
func qaText(content Content) string {
	return strings.Join([]string{content.Title, content.Script.Hook, content.Script.FullScript}, "\n")
}

// RunQA evaluates all applicable QA rules against a content item, persists the
// result, and moves the item to approved on a pass verdict or qa_fix
// otherwise. The result and the status transition commit in one transaction.
func (s *Service) RunQA(ctx context.Context, contentID string) (QAResult, Result, error) {
	ctx, finish := s.begin(ctx, "run_qa")
	var result QAResult
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		content, ok := tx.FindContent(contentID)
		if !ok {
			return ErrNotFound{Entity: EntityContent, ID: contentID}
		}
		persona, ok := tx.FindPersona(content.PersonaID)
		if !ok {
			return ErrNotFound{Entity: EntityPersona, ID: content.PersonaID}
		}
		settings, _ := tx.SettingsForOrg(persona.OrgID)

		input := QAInput{
			Content:  content,
			Persona:  persona,
			Settings: settings,
			Text:     qaText(content),
		}
		var findings []QAFinding
		for _, rule := range s.qaRulesFor(content.Platform) {
			findings = append(findings, rule.Check(ctx, input)...)
		}
		result = domain.FoldQAFindings(findings, s.now())
		if len(result.Issues) == 0 {
			result.Suggestions = append(result.Suggestions, "confirm data accuracy before publishing")
		}

		status := StatusQAFix
		if result.Verdict == VerdictPass {
			status = StatusApproved
		}
		_, err := tx.UpdateContent(contentID, func(c *Content) error {
			qa := result
			c.QAResult = &qa
			c.Status = status
			return nil
		})
		return err
	})
	finish(EntityContent, contentID, err)
	return result, res, err
}
