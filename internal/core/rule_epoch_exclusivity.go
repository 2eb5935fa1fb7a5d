package core

import (
	"context"
	"fmt"

	"ipstudio/pkg/domain"
)

// EpochExclusivityRule enforces the current-epoch invariant: at most one epoch
// per persona carries IsCurrent, and the persona's CurrentEpochID pointer must
// agree with the flag. Writes that flip the flag outside SetCurrentEpoch fail
// here.
func EpochExclusivityRule() domain.Rule {
	return epochExclusivityRule{}
}

type epochExclusivityRule struct{}

func (epochExclusivityRule) Name() string { return "epoch_exclusivity" }

func (epochExclusivityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	block := func(entity EntityType, id, message string) {
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "epoch_exclusivity",
			Severity: SeverityBlock,
			Message:  message,
			Entity:   entity,
			EntityID: id,
		})
	}

	currentByPersona := make(map[string][]string)
	for _, epoch := range view.ListEpochs() {
		if epoch.IsCurrent {
			currentByPersona[epoch.PersonaID] = append(currentByPersona[epoch.PersonaID], epoch.ID)
		}
	}

	for _, persona := range view.ListPersonas() {
		current := currentByPersona[persona.ID]
		if len(current) > 1 {
			block(EntityPersona, persona.ID, fmt.Sprintf("persona %s has %d current epochs", persona.ID, len(current)))
			continue
		}
		switch {
		case persona.CurrentEpochID == nil && len(current) == 1:
			block(EntityPersona, persona.ID, fmt.Sprintf("persona %s has current epoch %s but no pointer", persona.ID, current[0]))
		case persona.CurrentEpochID != nil && len(current) == 0:
			block(EntityPersona, persona.ID, fmt.Sprintf("persona %s points at epoch %s which is not current", persona.ID, *persona.CurrentEpochID))
		case persona.CurrentEpochID != nil && len(current) == 1 && *persona.CurrentEpochID != current[0]:
			block(EntityPersona, persona.ID, fmt.Sprintf("persona %s points at epoch %s but epoch %s is current", persona.ID, *persona.CurrentEpochID, current[0]))
		}
	}
	return res, nil
}
