package core

import (
	"context"
	"fmt"

	"ipstudio/pkg/domain"
)

// Login creates or replaces the user's session. The current org becomes the
// first membership and the current persona cascades to that org's first
// persona in creation order, or nil when the org has none.
func (s *Service) Login(ctx context.Context, userID string, orgIDs []string) (Session, Result, error) {
	ctx, finish := s.begin(ctx, "login")
	var session Session
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		record := Session{
			UserID: userID,
			OrgIDs: append([]string(nil), orgIDs...),
		}
		if len(orgIDs) > 0 {
			orgID := orgIDs[0]
			if _, ok := tx.FindOrg(orgID); !ok {
				return ErrNotFound{Entity: EntityOrg, ID: orgID}
			}
			record.CurrentOrgID = &orgID
			if persona, ok := tx.FirstPersonaForOrg(orgID); ok {
				personaID := persona.ID
				record.CurrentPersonaID = &personaID
			}
		}
		var err error
		session, err = tx.PutSession(record)
		return err
	})
	finish(EntitySession, userID, err)
	return session, res, err
}

// Logout removes the user's session entirely. The workspace selection resets
// as a whole, never field by field.
func (s *Service) Logout(ctx context.Context, userID string) (Result, error) {
	ctx, finish := s.begin(ctx, "logout")
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeleteSession(userID)
	})
	finish(EntitySession, userID, err)
	return res, err
}

// SetCurrentOrg switches the session to another org membership and recomputes
// the current persona as that org's first persona in creation order, or nil
// when the org has none. The cascade runs on every switch so the persona
// pointer can never go stale.
func (s *Service) SetCurrentOrg(ctx context.Context, userID, orgID string) (Session, Result, error) {
	ctx, finish := s.begin(ctx, "set_current_org")
	var session Session
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		record, ok := tx.FindSession(userID)
		if !ok {
			return ErrNotFound{Entity: EntitySession, ID: userID}
		}
		if _, ok := tx.FindOrg(orgID); !ok {
			return ErrNotFound{Entity: EntityOrg, ID: orgID}
		}
		if !containsString(record.OrgIDs, orgID) {
			return fmt.Errorf("user %s is not a member of org %s", userID, orgID)
		}
		record.CurrentOrgID = &orgID
		record.CurrentPersonaID = nil
		if persona, ok := tx.FirstPersonaForOrg(orgID); ok {
			personaID := persona.ID
			record.CurrentPersonaID = &personaID
		}
		var err error
		session, err = tx.PutSession(record)
		return err
	})
	finish(EntitySession, userID, err)
	return session, res, err
}

// SetCurrentPersona points the session at a specific persona of the current
// org.
func (s *Service) SetCurrentPersona(ctx context.Context, userID, personaID string) (Session, Result, error) {
	ctx, finish := s.begin(ctx, "set_current_persona")
	var session Session
	res, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		record, ok := tx.FindSession(userID)
		if !ok {
			return ErrNotFound{Entity: EntitySession, ID: userID}
		}
		persona, ok := tx.FindPersona(personaID)
		if !ok {
			return ErrNotFound{Entity: EntityPersona, ID: personaID}
		}
		if record.CurrentOrgID == nil || *record.CurrentOrgID != persona.OrgID {
			return fmt.Errorf("persona %s does not belong to the current org", personaID)
		}
		record.CurrentPersonaID = &personaID
		var err error
		session, err = tx.PutSession(record)
		return err
	})
	finish(EntitySession, userID, err)
	return session, res, err
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
