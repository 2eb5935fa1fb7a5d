package core

import (
	"context"
	"fmt"

	"ipstudio/pkg/domain"
)

// ReferentialIntegrityRule blocks commits that would leave orphaned child
// records. Paired with the persona delete cascade, the committed tree never
// holds a child whose owner is gone.
func ReferentialIntegrityRule() domain.Rule {
	return referentialIntegrityRule{}
}

type referentialIntegrityRule struct{}

func (referentialIntegrityRule) Name() string { return "referential_integrity" }

func (referentialIntegrityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	orphan := func(entity EntityType, id, message string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "referential_integrity",
			Severity: SeverityBlock,
			Message:  message,
			Entity:   entity,
			EntityID: id,
		})
	}

	for _, persona := range view.ListPersonas() {
		if _, ok := view.FindOrg(persona.OrgID); !ok {
			orphan(EntityPersona, persona.ID, fmt.Sprintf("persona %s references missing org %s", persona.ID, persona.OrgID))
		}
	}
	for _, epoch := range view.ListEpochs() {
		if _, ok := view.FindPersona(epoch.PersonaID); !ok {
			orphan(EntityEpoch, epoch.ID, fmt.Sprintf("epoch %s references missing persona %s", epoch.ID, epoch.PersonaID))
		}
	}
	for _, evidence := range view.ListEvidences() {
		if _, ok := view.FindPersona(evidence.PersonaID); !ok {
			orphan(EntityEvidence, evidence.ID, fmt.Sprintf("evidence %s references missing persona %s", evidence.ID, evidence.PersonaID))
		}
	}
	for _, reference := range view.ListReferences() {
		if _, ok := view.FindPersona(reference.PersonaID); !ok {
			orphan(EntityReference, reference.ID, fmt.Sprintf("reference %s references missing persona %s", reference.ID, reference.PersonaID))
		}
	}
	for _, content := range view.ListContents() {
		if _, ok := view.FindPersona(content.PersonaID); !ok {
			orphan(EntityContent, content.ID, fmt.Sprintf("content %s references missing persona %s", content.ID, content.PersonaID))
		}
	}
	for _, lead := range view.ListLeads() {
		if _, ok := view.FindPersona(lead.PersonaID); !ok {
			orphan(EntityLead, lead.ID, fmt.Sprintf("lead %s references missing persona %s", lead.ID, lead.PersonaID))
		}
		if _, ok := view.FindOrg(lead.OrgID); !ok {
			orphan(EntityLead, lead.ID, fmt.Sprintf("lead %s references missing org %s", lead.ID, lead.OrgID))
		}
	}
	for _, item := range view.ListInboxItems() {
		if _, ok := view.FindPersona(item.PersonaID); !ok {
			orphan(EntityInboxItem, item.ID, fmt.Sprintf("inbox item %s references missing persona %s", item.ID, item.PersonaID))
		}
	}
	for _, report := range view.ListWeeklyReports() {
		if _, ok := view.FindPersona(report.PersonaID); !ok {
			orphan(EntityWeeklyReport, report.ID, fmt.Sprintf("weekly report %s references missing persona %s", report.ID, report.PersonaID))
		}
	}
	return res, nil
}
