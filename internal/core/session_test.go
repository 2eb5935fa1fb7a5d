package core

import (
	"context"
	"errors"
	"testing"

	"ipstudio/pkg/domain"
)

func TestLoginCascadesToFirstPersona(t *testing.T) {
	svc := newTestService(t)
	org, first := seedWorkspace(t, svc)
	ctx := context.Background()

	if _, _, err := svc.CreatePersona(ctx, Persona{OrgID: org.ID, Name: "后来者"}); err != nil {
		t.Fatalf("create second persona: %v", err)
	}

	session, _, err := svc.Login(ctx, "u1", []string{org.ID})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.CurrentOrgID == nil || *session.CurrentOrgID != org.ID {
		t.Fatalf("current org = %v", session.CurrentOrgID)
	}
	if session.CurrentPersonaID == nil || *session.CurrentPersonaID != first.ID {
		t.Fatalf("current persona = %v, want first created %s", session.CurrentPersonaID, first.ID)
	}
}

func TestLoginWithoutPersonasLeavesPointerNil(t *testing.T) {
	svc := newTestService(t)
	org, _, err := svc.CreateOrg(context.Background(), Org{Name: "空组织"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	session, _, err := svc.Login(context.Background(), "u1", []string{org.ID})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.CurrentPersonaID != nil {
		t.Fatalf("persona pointer = %v, want nil", session.CurrentPersonaID)
	}
}

func TestLoginUnknownOrg(t *testing.T) {
	svc := newTestService(t)
	_, _, err := svc.Login(context.Background(), "u1", []string{"missing"})
	var notFound ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestSetCurrentOrgRecomputesPersona(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	orgA, personaA := seedWorkspace(t, svc)
	orgB, _, err := svc.CreateOrg(ctx, Org{Name: "第二工作室"})
	if err != nil {
		t.Fatalf("create second org: %v", err)
	}
	personaB, _, err := svc.CreatePersona(ctx, Persona{OrgID: orgB.ID, Name: "乙号"})
	if err != nil {
		t.Fatalf("create persona b: %v", err)
	}

	if _, _, err := svc.Login(ctx, "u1", []string{orgA.ID, orgB.ID}); err != nil {
		t.Fatalf("login: %v", err)
	}

	session, _, err := svc.SetCurrentOrg(ctx, "u1", orgB.ID)
	if err != nil {
		t.Fatalf("switch org: %v", err)
	}
	if session.CurrentOrgID == nil || *session.CurrentOrgID != orgB.ID {
		t.Fatalf("current org = %v", session.CurrentOrgID)
	}
	if session.CurrentPersonaID == nil || *session.CurrentPersonaID != personaB.ID {
		t.Fatalf("current persona = %v, want %s", session.CurrentPersonaID, personaB.ID)
	}
	_ = personaA

	if _, _, err := svc.SetCurrentOrg(ctx, "u1", "missing"); err == nil {
		t.Fatal("expected unknown org to fail")
	}
}

func TestSetCurrentOrgRequiresMembership(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	orgA, _ := seedWorkspace(t, svc)
	orgB, _, err := svc.CreateOrg(ctx, Org{Name: "外部组织"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}

	if _, _, err := svc.Login(ctx, "u1", []string{orgA.ID}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.SetCurrentOrg(ctx, "u1", orgB.ID); err == nil {
		t.Fatal("expected non-member switch to fail")
	}
}

func TestSetCurrentPersonaValidatesOrg(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	orgA, _ := seedWorkspace(t, svc)
	orgB, _, err := svc.CreateOrg(ctx, Org{Name: "另一家"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	foreign, _, err := svc.CreatePersona(ctx, Persona{OrgID: orgB.ID, Name: "别人家的"})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}

	if _, _, err := svc.Login(ctx, "u1", []string{orgA.ID}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.SetCurrentPersona(ctx, "u1", foreign.ID); err == nil {
		t.Fatal("expected persona of another org to be rejected")
	}

	mine, _, err := svc.CreatePersona(ctx, Persona{OrgID: orgA.ID, Name: "自己的"})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}
	session, _, err := svc.SetCurrentPersona(ctx, "u1", mine.ID)
	if err != nil {
		t.Fatalf("set persona: %v", err)
	}
	if session.CurrentPersonaID == nil || *session.CurrentPersonaID != mine.ID {
		t.Fatalf("pointer = %v", session.CurrentPersonaID)
	}
}

func TestLogoutRemovesSession(t *testing.T) {
	svc := newTestService(t)
	org, _ := seedWorkspace(t, svc)
	ctx := context.Background()

	if _, _, err := svc.Login(ctx, "u1", []string{org.ID}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.Logout(ctx, "u1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := svc.Store().GetSession("u1"); ok {
		t.Fatal("session survived logout")
	}
	if _, err := svc.Logout(ctx, "u1"); err == nil {
		t.Fatal("second logout should fail")
	}
}

func TestSessionValidityRuleBlocksInconsistentWrites(t *testing.T) {
	svc := newTestService(t)
	org, _ := seedWorkspace(t, svc)

	// A session pointing at an org outside its memberships cannot commit.
	orgID := org.ID
	_, err := svc.Store().RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.PutSession(domain.Session{
			UserID:       "intruder",
			OrgIDs:       []string{"some-other-org"},
			CurrentOrgID: &orgID,
		})
		return err
	})
	var viol RuleViolationError
	if !errors.As(err, &viol) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
}
