package core

import (
	"context"
	"fmt"

	"ipstudio/pkg/domain"
)

// ContentStatusRule blocks unknown workflow states and guards the publish
// transition: a content item whose latest QA verdict is block can never reach
// published, no matter which caller attempts the transition.
func ContentStatusRule() domain.Rule {
	return contentStatusRule{}
}

type contentStatusRule struct{}

var validContentStatuses = func() map[ContentStatus]struct{} {
	set := make(map[ContentStatus]struct{})
	for _, status := range domain.ContentStatuses() {
		set[status] = struct{}{}
	}
	return set
}()

func (contentStatusRule) Name() string { return "content_status" }

func (contentStatusRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != EntityContent || change.Action == ActionDelete {
			continue
		}
		content, ok := change.After.(Content)
		if !ok {
			continue
		}
		if _, valid := validContentStatuses[content.Status]; !valid {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "content_status",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("content %s is set to invalid status %s", content.ID, content.Status),
				Entity:   EntityContent,
				EntityID: content.ID,
			})
			continue
		}
		if content.Status == StatusPublished && content.QAResult != nil && content.QAResult.Verdict == VerdictBlock {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "content_status",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("content %s cannot be published while its QA verdict is block", content.ID),
				Entity:   EntityContent,
				EntityID: content.ID,
			})
		}
	}
	return res, nil
}
