package core

import (
	"context"
	"fmt"

	"ipstudio/pkg/domain"
)

// SessionValidityRule blocks commits that leave a session pointing at an org
// outside the user's memberships, a missing org, or a persona that does not
// belong to the session's current org.
func SessionValidityRule() domain.Rule {
	return sessionValidityRule{}
}

type sessionValidityRule struct{}

func (sessionValidityRule) Name() string { return "session_validity" }

func (sessionValidityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(userID, message string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "session_validity",
			Severity: SeverityBlock,
			Message:  message,
			Entity:   EntitySession,
			EntityID: userID,
		})
	}

	for _, session := range view.ListSessions() {
		if session.CurrentOrgID == nil {
			if session.CurrentPersonaID != nil {
				block(session.UserID, fmt.Sprintf("session %s selects a persona without an org", session.UserID))
			}
			continue
		}
		orgID := *session.CurrentOrgID
		if _, ok := view.FindOrg(orgID); !ok {
			block(session.UserID, fmt.Sprintf("session %s selects missing org %s", session.UserID, orgID))
			continue
		}
		member := false
		for _, id := range session.OrgIDs {
			if id == orgID {
				member = true
				break
			}
		}
		if !member {
			block(session.UserID, fmt.Sprintf("session %s selects org %s outside its memberships", session.UserID, orgID))
			continue
		}
		if session.CurrentPersonaID == nil {
			continue
		}
		persona, ok := view.FindPersona(*session.CurrentPersonaID)
		if !ok {
			block(session.UserID, fmt.Sprintf("session %s selects missing persona %s", session.UserID, *session.CurrentPersonaID))
			continue
		}
		if persona.OrgID != orgID {
			block(session.UserID, fmt.Sprintf("session %s selects persona %s outside org %s", session.UserID, persona.ID, orgID))
		}
	}
	return res, nil
}
